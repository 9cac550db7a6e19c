package stedi

import (
	"os"
	"reflect"
	"testing"

	"github.com/goccy/go-json"

	"github.com/pulpai/pulp/internal/domain/eligibility"
)

func loadResponse(t *testing.T) *eligibilityResponse {
	t.Helper()
	data, err := os.ReadFile("testdata/271_dental_active.json")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	var resp eligibilityResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return &resp
}

func TestMapResponse(t *testing.T) {
	res := eligibility.Normalize(mapResponse(loadResponse(t), "62308"))

	if res.PlanStatus != eligibility.PlanActive {
		t.Errorf("plan_status = %s", res.PlanStatus)
	}
	if !res.InNetwork {
		t.Error("expected in network")
	}
	if res.InsuranceType == nil || *res.InsuranceType != "PPO" {
		t.Errorf("insurance_type = %v", res.InsuranceType)
	}
	if res.PlanBeginDate == nil || *res.PlanBeginDate != "2023-07-01" {
		t.Errorf("plan_begin_date = %v", res.PlanBeginDate)
	}
	if res.Subscriber.DOB == nil || *res.Subscriber.DOB != "1972-11-08" {
		t.Errorf("dob = %v", res.Subscriber.DOB)
	}
	if res.Subscriber.PlanName == nil || *res.Subscriber.PlanName != "Cigna Dental PPO" {
		t.Errorf("plan_name = %v", res.Subscriber.PlanName)
	}

	checkCents := func(name string, got *int64, want int64) {
		t.Helper()
		if got == nil || *got != want {
			t.Errorf("%s = %v, want %d", name, got, want)
		}
	}
	checkCents("annual_maximum", res.AnnualMaximumCents, 150000)
	checkCents("annual_remaining", res.AnnualRemainingCents, 22000)
	checkCents("annual_used", res.AnnualUsedCents, 128000)
	checkCents("individual_deductible", res.IndividualDeductibleCents, 5000)
	checkCents("family_deductible_met", res.FamilyDeductibleMetCents, 5000)
	if res.IndividualDeductibleMetCents != 5000 {
		t.Errorf("individual met = %d", res.IndividualDeductibleMetCents)
	}

	if res.Preventive.CoveragePct == nil || *res.Preventive.CoveragePct != 100 {
		t.Errorf("preventive pct = %v", res.Preventive.CoveragePct)
	}
	if res.Restorative.CoveragePct == nil || *res.Restorative.CoveragePct != 80 {
		t.Errorf("restorative pct = %v", res.Restorative.CoveragePct)
	}
	if !res.Restorative.CompositePosteriorDowngrade || res.Restorative.CompositePosteriorNote == nil {
		t.Error("expected composite downgrade with note")
	}
	if res.Restorative.CrownWaitingPeriodMonths != 12 {
		t.Errorf("waiting months = %d", res.Restorative.CrownWaitingPeriodMonths)
	}

	cf := res.Preventive.CleaningFrequency
	if cf == nil {
		t.Fatal("expected cleaning frequency")
	}
	if cf.TimesPerPeriod != 2 || cf.UsedThisPeriod != 1 || cf.Period != "calendar_year" {
		t.Errorf("cleaning frequency = %+v", cf)
	}
	if cf.LastServiceDate == nil || *cf.LastServiceDate != "2026-02-19" {
		t.Errorf("last service = %v", cf.LastServiceDate)
	}

	mtc := res.MissingToothClause
	if !mtc.Applies {
		t.Error("expected missing tooth clause")
	}
	if !reflect.DeepEqual(mtc.AffectedTeeth, []string{"#14", "#19"}) {
		t.Errorf("affected teeth = %v", mtc.AffectedTeeth)
	}
	if !reflect.DeepEqual(mtc.ExcludedServices, []string{"D6010", "D6240"}) {
		t.Errorf("excluded services = %v", mtc.ExcludedServices)
	}

	want := []eligibility.Flag{
		eligibility.FlagMissingToothClause,
		eligibility.FlagPreAuthRequired,
		eligibility.FlagAnnualMaxLow,
		eligibility.FlagCompositeDowngrade,
		eligibility.FlagWaitingPeriodActive,
	}
	if !reflect.DeepEqual(res.ActionFlags, want) {
		t.Errorf("flags = %v, want %v", res.ActionFlags, want)
	}
}

func TestMapResponse_Inactive(t *testing.T) {
	resp := &eligibilityResponse{
		PlanStatus:          []apiPlanStatus{{StatusCode: "6", Status: "Inactive", PlanDetails: "employment_terminated"}},
		PlanDateInformation: apiPlanDates{Plan: "20220101-20260531"},
	}
	res := eligibility.Normalize(mapResponse(resp, "65978"))
	if res.VerificationStatus != eligibility.StatusInactive {
		t.Errorf("status = %s", res.VerificationStatus)
	}
	if res.TerminationReason == nil || *res.TerminationReason != "employment_terminated" {
		t.Errorf("termination_reason = %v", res.TerminationReason)
	}
	if res.PlanEndDate == nil || *res.PlanEndDate != "2026-05-31" {
		t.Errorf("plan_end_date = %v", res.PlanEndDate)
	}
	if res.PayerID == nil || *res.PayerID != "65978" {
		t.Errorf("payer_id = %v", res.PayerID)
	}
}

func TestMapResponse_OutOfNetworkOnly(t *testing.T) {
	resp := &eligibilityResponse{
		PlanStatus: []apiPlanStatus{{StatusCode: "1"}},
		BenefitsInformation: []apiBenefit{
			{Code: "F", ServiceTypeCodes: []string{"35"}, TimeQualifierCode: "29", BenefitAmount: "1000", InPlanNetworkIndicatorCode: "N"},
		},
	}
	res := eligibility.Normalize(mapResponse(resp, ""))
	if res.InNetwork {
		t.Error("expected out of network")
	}
	if res.AnnualRemainingCents == nil || *res.AnnualRemainingCents != 100000 {
		t.Errorf("remaining = %v", res.AnnualRemainingCents)
	}
}

func TestMapResponse_StatusFromBenefitCode(t *testing.T) {
	resp := &eligibilityResponse{
		BenefitsInformation: []apiBenefit{{Code: "1", ServiceTypeCodes: []string{"35"}}},
	}
	if got := eligibility.Normalize(mapResponse(resp, "")).PlanStatus; got != eligibility.PlanActive {
		t.Errorf("plan_status = %s", got)
	}
	if got := eligibility.Normalize(mapResponse(&eligibilityResponse{}, "")).PlanStatus; got != eligibility.DefaultPlanStatus {
		t.Errorf("plan_status = %s, want unknown", got)
	}
}

func TestMapResponse_MissingToothClause(t *testing.T) {
	tests := []struct {
		name    string
		benefit apiBenefit
		want    bool
	}{
		{
			name:    "exclusion on prosthodontics",
			benefit: apiBenefit{Code: "I", Name: "Non-Covered", ServiceTypeCodes: []string{"F9"}},
			want:    true,
		},
		{
			name: "clause explicitly absent",
			benefit: apiBenefit{Code: "F", ServiceTypeCodes: []string{"38"},
				AdditionalInformation: []apiAdditionalInfo{{Description: "No missing tooth clause for this group"}}},
			want: false,
		},
		{
			name: "pre-existing language",
			benefit: apiBenefit{Code: "F", ServiceTypeCodes: []string{"38"},
				AdditionalInformation: []apiAdditionalInfo{{Description: "Replacement of teeth extracted prior to coverage is not a benefit"}}},
			want: true,
		},
		{
			name:    "exclusion on preventive",
			benefit: apiBenefit{Code: "I", ServiceTypeCodes: []string{"41"}},
			want:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &eligibilityResponse{
				PlanStatus:          []apiPlanStatus{{StatusCode: "1"}},
				BenefitsInformation: []apiBenefit{tt.benefit},
			}
			doc := mapResponse(resp, "")
			got := doc.Benefits.MissingToothClause.Applies
			if got == nil || *got != tt.want {
				t.Errorf("applies = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCoverageFromPatientShare(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"0.2", intp(80)},
		{"20", intp(80)},
		{"0", intp(100)},
		{"1", intp(0)},
		{"", nil},
		{"abc", nil},
	}
	for _, tt := range tests {
		got := coverageFromPatientShare(tt.in)
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("coverageFromPatientShare(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDollarsToCents(t *testing.T) {
	if got := dollarsToCents("1500.55"); got == nil || *got != 150055 {
		t.Errorf("got %v", got)
	}
	if got := dollarsToCents(""); got != nil {
		t.Errorf("expected nil, got %v", *got)
	}
}

func intp(v int) *int { return &v }
