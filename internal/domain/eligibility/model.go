package eligibility

import (
	"encoding/json"
)

// RawDocument is a pre-parsed 271 eligibility response as produced by a
// clearinghouse mapper or a fixture file. Every leaf is optional: a nil
// pointer means the producer did not send the field.
type RawDocument struct {
	FixtureID   *string         `json:"_fixture_id,omitempty"`
	Description *string         `json:"_description,omitempty"`
	Subscriber  *RawSubscriber  `json:"subscriber,omitempty"`
	Payer       *RawPayer       `json:"payer,omitempty"`
	Coverage    *RawCoverage    `json:"coverage,omitempty"`
	Benefits    *RawBenefits    `json:"benefits,omitempty"`
	OONEstimate json.RawMessage `json:"oon_estimate,omitempty"`
}

type RawSubscriber struct {
	MemberID    *string `json:"member_id,omitempty"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	GroupNumber *string `json:"group_number,omitempty"`
	PlanName    *string `json:"plan_name,omitempty"`
}

type RawPayer struct {
	Name    *string `json:"name,omitempty"`
	PayerID *string `json:"payer_id,omitempty"`
}

type RawCoverage struct {
	PlanStatus        *string `json:"plan_status,omitempty"`
	PlanBeginDate     *string `json:"plan_begin_date,omitempty"`
	PlanEndDate       *string `json:"plan_end_date,omitempty"`
	TerminationReason *string `json:"termination_reason,omitempty"`
	InsuranceType     *string `json:"insurance_type,omitempty"`
	InNetwork         *bool   `json:"in_network,omitempty"`
}

type RawBenefits struct {
	CalendarYearMaximum *RawAnnualMaximum      `json:"calendar_year_maximum,omitempty"`
	Deductible          *RawDeductible         `json:"deductible,omitempty"`
	Preventive          *RawPreventive         `json:"preventive,omitempty"`
	BasicRestorative    *RawRestorative        `json:"basic_restorative,omitempty"`
	MajorRestorative    *RawRestorative        `json:"major_restorative,omitempty"`
	MissingToothClause  *RawMissingToothClause `json:"missing_tooth_clause,omitempty"`
}

type RawAnnualMaximum struct {
	AmountCents    *int64 `json:"amount_cents,omitempty"`
	UsedCents      *int64 `json:"used_cents,omitempty"`
	RemainingCents *int64 `json:"remaining_cents,omitempty"`
}

type RawDeductible struct {
	IndividualCents *int64   `json:"individual_cents,omitempty"`
	MetCents        *int64   `json:"met_cents,omitempty"`
	FamilyCents     *int64   `json:"family_cents,omitempty"`
	FamilyMetCents  *int64   `json:"family_met_cents,omitempty"`
	AppliesTo       []string `json:"applies_to,omitempty"`
	WaivedFor       []string `json:"waived_for,omitempty"`
}

type RawPreventive struct {
	CoveragePct       *int                    `json:"coverage_pct,omitempty"`
	CopayCents        *int64                  `json:"copay_cents,omitempty"`
	DeductibleApplies *bool                   `json:"deductible_applies,omitempty"`
	Frequency         *RawPreventiveFrequency `json:"frequency,omitempty"`
}

type RawPreventiveFrequency struct {
	Cleanings     *RawFrequency `json:"cleanings,omitempty"`
	BitewingXrays *RawFrequency `json:"bitewing_xrays,omitempty"`
}

// RawFrequency is a frequency-limit record. An object with no fields set is
// treated the same as an absent one.
type RawFrequency struct {
	TimesPerPeriod   *int    `json:"times_per_period,omitempty"`
	UsedThisPeriod   *int    `json:"used_this_period,omitempty"`
	Period           *string `json:"period,omitempty"`
	LastServiceDate  *string `json:"last_service_date,omitempty"`
	NextEligibleDate *string `json:"next_eligible_date,omitempty"`
}

func (f *RawFrequency) present() bool {
	if f == nil {
		return false
	}
	return f.TimesPerPeriod != nil || f.UsedThisPeriod != nil || f.Period != nil ||
		f.LastServiceDate != nil || f.NextEligibleDate != nil
}

type RawRestorative struct {
	CoveragePct                     *int    `json:"coverage_pct,omitempty"`
	CopayCents                      *int64  `json:"copay_cents,omitempty"`
	DeductibleApplies               *bool   `json:"deductible_applies,omitempty"`
	CompositePosteriorDowngrade     *bool   `json:"composite_posterior_downgrade,omitempty"`
	CompositePosteriorDowngradeNote *string `json:"composite_posterior_downgrade_note,omitempty"`
	WaitingPeriodMonths             *int    `json:"waiting_period_months,omitempty"`
}

type RawMissingToothClause struct {
	Applies              *bool    `json:"applies,omitempty"`
	AffectedTeeth        []string `json:"affected_teeth,omitempty"`
	ExcludedServices     []string `json:"excluded_services,omitempty"`
	ExtractionDateOnFile *string  `json:"extraction_date_on_file,omitempty"`
	ExceptionPathway     *string  `json:"exception_pathway,omitempty"`
}

// Result is the canonical, UI-ready verification snapshot. Nullable fields
// are pointers without omitempty so absent data serializes as null; only
// OONEstimate is omitted when the source document carried none.
type Result struct {
	VerificationStatus           VerificationStatus `json:"verification_status"`
	PlanStatus                   string             `json:"plan_status"`
	PayerName                    *string            `json:"payer_name"`
	PayerID                      *string            `json:"payer_id"`
	InsuranceType                *string            `json:"insurance_type"`
	InNetwork                    bool               `json:"in_network"`
	PlanBeginDate                *string            `json:"plan_begin_date"`
	PlanEndDate                  *string            `json:"plan_end_date"`
	TerminationReason            *string            `json:"termination_reason"`
	AnnualMaximumCents           *int64             `json:"annual_maximum_cents"`
	AnnualUsedCents              *int64             `json:"annual_used_cents"`
	AnnualRemainingCents         *int64             `json:"annual_remaining_cents"`
	IndividualDeductibleCents    *int64             `json:"individual_deductible_cents"`
	IndividualDeductibleMetCents int64              `json:"individual_deductible_met_cents"`
	FamilyDeductibleCents        *int64             `json:"family_deductible_cents"`
	FamilyDeductibleMetCents     *int64             `json:"family_deductible_met_cents"`
	DeductibleAppliesTo          []string           `json:"deductible_applies_to"`
	DeductibleWaivedFor          []string           `json:"deductible_waived_for"`
	Preventive                   Preventive         `json:"preventive"`
	Restorative                  Restorative        `json:"restorative"`
	MissingToothClause           MissingToothClause `json:"missing_tooth_clause"`
	ActionFlags                  []Flag             `json:"action_flags"`
	Subscriber                   Subscriber         `json:"subscriber"`
	FixtureID                    *string            `json:"_fixture_id"`
	NormalizedAt                 string             `json:"_normalized_at"`
	OONEstimate                  json.RawMessage    `json:"oon_estimate,omitempty"`
}

type Preventive struct {
	CoveragePct       *int               `json:"coverage_pct"`
	CopayCents        *int64             `json:"copay_cents"`
	DeductibleApplies bool               `json:"deductible_applies"`
	CleaningFrequency *CleaningFrequency `json:"cleaning_frequency"`
	BitewingFrequency *BitewingFrequency `json:"bitewing_frequency"`
}

type CleaningFrequency struct {
	TimesPerPeriod   int     `json:"times_per_period"`
	UsedThisPeriod   int     `json:"used_this_period"`
	Period           string  `json:"period"`
	LastServiceDate  *string `json:"last_service_date"`
	NextEligibleDate *string `json:"next_eligible_date"`
}

type BitewingFrequency struct {
	TimesPerPeriod   int     `json:"times_per_period"`
	UsedThisPeriod   int     `json:"used_this_period"`
	NextEligibleDate *string `json:"next_eligible_date"`
}

type Restorative struct {
	CoveragePct                 *int    `json:"coverage_pct"`
	CopayCents                  *int64  `json:"copay_cents"`
	DeductibleApplies           bool    `json:"deductible_applies"`
	CompositePosteriorDowngrade bool    `json:"composite_posterior_downgrade"`
	CompositePosteriorNote      *string `json:"composite_posterior_note"`
	CrownWaitingPeriodMonths    int     `json:"crown_waiting_period_months"`
}

type MissingToothClause struct {
	Applies          bool     `json:"applies"`
	AffectedTeeth    []string `json:"affected_teeth"`
	ExcludedServices []string `json:"excluded_services"`
	ExceptionPathway *string  `json:"exception_pathway"`
	ExtractionDate   *string  `json:"extraction_date"`
	CoverageBegin    *string  `json:"coverage_begin"`
}

type Subscriber struct {
	MemberID  *string `json:"member_id"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	DOB       *string `json:"dob"`
	Group     *string `json:"group"`
	PlanName  *string `json:"plan_name"`
}

// ProviderRequest carries the caller-supplied identity forwarded to a live
// eligibility provider.
type ProviderRequest struct {
	MemberID      string
	FirstName     string
	LastName      string
	DateOfBirth   string
	PayerID       string
	InsuranceName string
}

// ProviderResult is what a live provider returns on success.
type ProviderResult struct {
	Normalized *Result
	Raw        json.RawMessage
	DurationMs int64
}
