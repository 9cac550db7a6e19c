package eligibility

import (
	"testing"
)

func int64p(v int64) *int64 { return &v }

func activeInputs() FlagInputs {
	return FlagInputs{
		PlanStatus:           PlanActive,
		AnnualRemainingCents: int64p(145000),
	}
}

func hasFlag(flags []Flag, f Flag) bool {
	for _, x := range flags {
		if x == f {
			return true
		}
	}
	return false
}

func TestDeriveFlags_InactiveShortCircuits(t *testing.T) {
	for _, status := range []string{"inactive", "unknown", "", "Active", "terminated"} {
		in := FlagInputs{
			PlanStatus:               status,
			AnnualRemainingCents:     int64p(0),
			MissingToothClause:       MissingToothClause{Applies: true, ExcludedServices: []string{"D6010"}},
			CleaningFrequency:        &CleaningFrequency{TimesPerPeriod: 2, UsedThisPeriod: 2},
			BasicCompositeDowngrade:  true,
			MajorWaitingPeriodMonths: 12,
		}
		flags := DeriveFlags(in)
		if len(flags) != 1 || flags[0] != FlagPlanInactive {
			t.Errorf("status %q: expected [plan_inactive], got %v", status, flags)
		}
		if got := DeriveStatus(status, flags); got != StatusInactive {
			t.Errorf("status %q: expected inactive, got %s", status, got)
		}
	}
}

func TestDeriveFlags_NoneFire(t *testing.T) {
	flags := DeriveFlags(activeInputs())
	if flags == nil {
		t.Fatal("expected empty non-nil slice")
	}
	if len(flags) != 0 {
		t.Errorf("expected no flags, got %v", flags)
	}
	if got := DeriveStatus(PlanActive, flags); got != StatusVerified {
		t.Errorf("expected verified, got %s", got)
	}
}

func TestDeriveFlags_AnnualMax(t *testing.T) {
	tests := []struct {
		name      string
		remaining *int64
		want      []Flag
	}{
		{"absent", nil, []Flag{}},
		{"exhausted", int64p(0), []Flag{FlagAnnualMaxExhausted}},
		{"one cent", int64p(1), []Flag{FlagAnnualMaxLow}},
		{"just under threshold", int64p(29999), []Flag{FlagAnnualMaxLow}},
		{"at threshold", int64p(30000), []Flag{}},
		{"plenty", int64p(200000), []Flag{}},
		{"negative", int64p(-500), []Flag{FlagAnnualMaxLow}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := activeInputs()
			in.AnnualRemainingCents = tt.remaining
			got := DeriveFlags(in)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
			}
			if hasFlag(got, FlagAnnualMaxExhausted) && hasFlag(got, FlagAnnualMaxLow) {
				t.Error("exhausted and low must not both fire")
			}
		})
	}
}

func TestDeriveFlags_MissingTooth(t *testing.T) {
	in := activeInputs()
	in.MissingToothClause = MissingToothClause{Applies: true, ExcludedServices: []string{}}
	flags := DeriveFlags(in)
	if !hasFlag(flags, FlagMissingToothClause) {
		t.Error("expected missing_tooth_clause")
	}
	if hasFlag(flags, FlagPreAuthRequired) {
		t.Error("pre_auth_required needs excluded services")
	}

	in.MissingToothClause.ExcludedServices = []string{"D6010"}
	flags = DeriveFlags(in)
	if len(flags) != 2 || flags[0] != FlagMissingToothClause || flags[1] != FlagPreAuthRequired {
		t.Errorf("expected [missing_tooth_clause pre_auth_required], got %v", flags)
	}

	in.MissingToothClause.Applies = false
	if flags := DeriveFlags(in); hasFlag(flags, FlagPreAuthRequired) {
		t.Error("pre_auth_required must not fire without the clause")
	}
}

func TestDeriveFlags_Frequency(t *testing.T) {
	tests := []struct {
		name string
		freq *CleaningFrequency
		want bool
	}{
		{"absent", nil, false},
		{"under", &CleaningFrequency{TimesPerPeriod: 2, UsedThisPeriod: 1}, false},
		{"at limit", &CleaningFrequency{TimesPerPeriod: 2, UsedThisPeriod: 2}, true},
		{"over limit", &CleaningFrequency{TimesPerPeriod: 2, UsedThisPeriod: 3}, true},
		{"zero allowed", &CleaningFrequency{TimesPerPeriod: 0, UsedThisPeriod: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := activeInputs()
			in.CleaningFrequency = tt.freq
			if got := hasFlag(DeriveFlags(in), FlagFrequencyLimit); got != tt.want {
				t.Errorf("expected frequency_limit=%v, got %v", tt.want, got)
			}
		})
	}
}

func TestDeriveFlags_RuleOrder(t *testing.T) {
	in := FlagInputs{
		PlanStatus:               PlanActive,
		AnnualRemainingCents:     int64p(100),
		MissingToothClause:       MissingToothClause{Applies: true, ExcludedServices: []string{"D6240"}},
		CleaningFrequency:        &CleaningFrequency{TimesPerPeriod: 1, UsedThisPeriod: 1},
		BasicCompositeDowngrade:  true,
		MajorWaitingPeriodMonths: 6,
	}
	want := []Flag{
		FlagMissingToothClause,
		FlagPreAuthRequired,
		FlagFrequencyLimit,
		FlagAnnualMaxLow,
		FlagCompositeDowngrade,
		FlagWaitingPeriodActive,
	}
	got := DeriveFlags(in)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestDeriveFlags_DeductibleNeverFlags(t *testing.T) {
	in := activeInputs()
	in.DeductibleMetCents = 0
	in.DeductibleIndividualCents = int64p(5000)
	if flags := DeriveFlags(in); len(flags) != 0 {
		t.Errorf("unmet deductible must not flag, got %v", flags)
	}
}

func TestDeriveStatus_AnyFlagEscalates(t *testing.T) {
	for _, f := range AllFlags() {
		if !f.Critical() {
			t.Errorf("flag %s is not critical", f)
		}
		if f == FlagPlanInactive {
			continue
		}
		if got := DeriveStatus(PlanActive, []Flag{f}); got != StatusActionRequired {
			t.Errorf("flag %s: expected action_required, got %s", f, got)
		}
	}
}

func TestDeriveStatus_Coupling(t *testing.T) {
	cases := []FlagInputs{
		activeInputs(),
		{PlanStatus: "inactive"},
		{PlanStatus: PlanActive, AnnualRemainingCents: int64p(0)},
		{PlanStatus: PlanActive, BasicCompositeDowngrade: true},
	}
	for _, in := range cases {
		flags := DeriveFlags(in)
		status := DeriveStatus(in.PlanStatus, flags)
		switch {
		case in.PlanStatus != PlanActive:
			if status != StatusInactive {
				t.Errorf("%+v: expected inactive, got %s", in, status)
			}
		case len(flags) == 0:
			if status != StatusVerified {
				t.Errorf("%+v: expected verified, got %s", in, status)
			}
		default:
			if status != StatusActionRequired {
				t.Errorf("%+v: expected action_required, got %s", in, status)
			}
		}
	}
}
