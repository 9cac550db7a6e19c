package eligibility

import (
	"reflect"
	"testing"
)

func TestLoadFixtures(t *testing.T) {
	table, err := LoadFixtures()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list := table.List()
	if len(list) < 7 {
		t.Fatalf("expected at least 7 reference patients, got %d", len(list))
	}
	for i, info := range list {
		if info.FixtureID == "" || info.Description == "" {
			t.Errorf("%s: fixture id and description required", info.PatientID)
		}
		if i > 0 && list[i-1].PatientID >= info.PatientID {
			t.Error("list not ordered by patient id")
		}
	}
	if _, ok := table.Lookup("p99"); ok {
		t.Error("expected no fixture for p99")
	}
}

func TestFixtures_Expectations(t *testing.T) {
	table := MustLoadFixtures()
	tests := []struct {
		patientID  string
		status     VerificationStatus
		flags      []Flag
		remaining  *int64
		checkExtra func(t *testing.T, r *Result)
	}{
		{
			patientID: "p1",
			status:    StatusVerified,
			flags:     []Flag{},
			remaining: int64p(145000),
			checkExtra: func(t *testing.T, r *Result) {
				if r.IndividualDeductibleMetCents != 5000 {
					t.Errorf("deductible met = %d, want 5000", r.IndividualDeductibleMetCents)
				}
				if r.Preventive.CleaningFrequency == nil || r.Preventive.CleaningFrequency.UsedThisPeriod != 1 {
					t.Error("expected 1 cleaning used")
				}
				if r.Preventive.BitewingFrequency == nil {
					t.Error("expected bitewing frequency")
				}
			},
		},
		{
			patientID: "p2",
			status:    StatusActionRequired,
			flags:     []Flag{FlagAnnualMaxLow, FlagCompositeDowngrade},
			remaining: int64p(22000),
			checkExtra: func(t *testing.T, r *Result) {
				if r.Restorative.CompositePosteriorNote == nil {
					t.Error("expected downgrade note")
				}
			},
		},
		{
			patientID: "p3",
			status:    StatusInactive,
			flags:     []Flag{FlagPlanInactive},
			remaining: int64p(0),
			checkExtra: func(t *testing.T, r *Result) {
				if r.TerminationReason == nil || *r.TerminationReason != "employment_terminated" {
					t.Errorf("termination_reason = %v", r.TerminationReason)
				}
			},
		},
		{
			patientID: "p4",
			status:    StatusActionRequired,
			flags:     []Flag{FlagMissingToothClause, FlagPreAuthRequired},
			remaining: int64p(138000),
			checkExtra: func(t *testing.T, r *Result) {
				if !reflect.DeepEqual(r.MissingToothClause.AffectedTeeth, []string{"#14"}) {
					t.Errorf("affected teeth = %v", r.MissingToothClause.AffectedTeeth)
				}
				if r.MissingToothClause.CoverageBegin == nil || *r.MissingToothClause.CoverageBegin != "2025-01-01" {
					t.Error("expected coverage_begin 2025-01-01")
				}
			},
		},
		{
			patientID: "p5",
			status:    StatusVerified,
			flags:     []Flag{},
			remaining: int64p(145000),
			checkExtra: func(t *testing.T, r *Result) {
				if r.IndividualDeductibleMetCents != 0 {
					t.Errorf("deductible met = %d, want 0", r.IndividualDeductibleMetCents)
				}
			},
		},
		{
			patientID: "p6",
			status:    StatusActionRequired,
			flags:     []Flag{FlagFrequencyLimit},
			remaining: int64p(88000),
			checkExtra: func(t *testing.T, r *Result) {
				cf := r.Preventive.CleaningFrequency
				if cf == nil || cf.NextEligibleDate == nil || *cf.NextEligibleDate != "2027-01-01" {
					t.Error("expected next eligible 2027-01-01")
				}
			},
		},
		{
			patientID: "p7",
			status:    StatusVerified,
			flags:     []Flag{},
			remaining: int64p(105000),
			checkExtra: func(t *testing.T, r *Result) {
				if r.InNetwork {
					t.Error("expected out of network")
				}
				if len(r.OONEstimate) == 0 {
					t.Error("expected oon_estimate pass-through")
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.patientID, func(t *testing.T) {
			doc, ok := table.Lookup(tt.patientID)
			if !ok {
				t.Fatalf("fixture %s missing", tt.patientID)
			}
			r := Normalize(doc)
			if r.VerificationStatus != tt.status {
				t.Errorf("status = %s, want %s", r.VerificationStatus, tt.status)
			}
			if !reflect.DeepEqual(r.ActionFlags, tt.flags) {
				t.Errorf("flags = %v, want %v", r.ActionFlags, tt.flags)
			}
			if r.AnnualRemainingCents == nil || *r.AnnualRemainingCents != *tt.remaining {
				t.Errorf("remaining = %v, want %d", r.AnnualRemainingCents, *tt.remaining)
			}
			if r.FixtureID == nil {
				t.Error("expected fixture id")
			}
			tt.checkExtra(t, r)
		})
	}
}

func TestFixtures_Generic(t *testing.T) {
	r := Normalize(MustLoadFixtures().Generic())
	if r.VerificationStatus != StatusVerified {
		t.Errorf("status = %s, want verified", r.VerificationStatus)
	}
	if r.Subscriber.FirstName == nil || *r.Subscriber.FirstName != "Patient" {
		t.Errorf("first_name = %v", r.Subscriber.FirstName)
	}
	if r.Subscriber.MemberID == nil || *r.Subscriber.MemberID != "UNKNOWN" {
		t.Errorf("member_id = %v", r.Subscriber.MemberID)
	}
}
