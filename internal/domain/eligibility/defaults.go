package eligibility

// Defaults applied when the raw document omits a field.
const (
	DefaultPlanStatus            = "unknown"
	DefaultInNetwork             = true
	DefaultDeductibleMetCents    = 0
	DefaultPreventiveDeductible  = false
	DefaultRestorativeDeductible = true
	DefaultCompositeDowngrade    = false
	DefaultWaitingPeriodMonths   = 0
	DefaultMissingToothApplies   = false

	DefaultCleaningTimesPerPeriod = 2
	DefaultBitewingTimesPerPeriod = 1
	DefaultUsedThisPeriod         = 0
	DefaultFrequencyPeriod        = "calendar_year"

	// AnnualMaxLowThresholdCents is the remaining-maximum level below which
	// annual_max_low fires.
	AnnualMaxLowThresholdCents int64 = 30000
)

// FieldDefault names one output path of a Result (dot separated, JSON
// names) and the value it takes when the source omits the field.
type FieldDefault struct {
	Path  string
	Value any
}

// DocumentDefaults is the default for every output field of a Result
// normalized from an empty document. Frequency blocks are null here because
// they are only emitted when the source carries frequency data; see
// CleaningFrequencyDefaults and BitewingFrequencyDefaults.
var DocumentDefaults = []FieldDefault{
	{"verification_status", string(StatusInactive)},
	{"plan_status", DefaultPlanStatus},
	{"payer_name", nil},
	{"payer_id", nil},
	{"insurance_type", nil},
	{"in_network", DefaultInNetwork},
	{"plan_begin_date", nil},
	{"plan_end_date", nil},
	{"termination_reason", nil},
	{"annual_maximum_cents", nil},
	{"annual_used_cents", nil},
	{"annual_remaining_cents", nil},
	{"individual_deductible_cents", nil},
	{"individual_deductible_met_cents", DefaultDeductibleMetCents},
	{"family_deductible_cents", nil},
	{"family_deductible_met_cents", nil},
	{"deductible_applies_to", []string{}},
	{"deductible_waived_for", []string{}},
	{"preventive.coverage_pct", nil},
	{"preventive.copay_cents", nil},
	{"preventive.deductible_applies", DefaultPreventiveDeductible},
	{"preventive.cleaning_frequency", nil},
	{"preventive.bitewing_frequency", nil},
	{"restorative.coverage_pct", nil},
	{"restorative.copay_cents", nil},
	{"restorative.deductible_applies", DefaultRestorativeDeductible},
	{"restorative.composite_posterior_downgrade", DefaultCompositeDowngrade},
	{"restorative.composite_posterior_note", nil},
	{"restorative.crown_waiting_period_months", DefaultWaitingPeriodMonths},
	{"missing_tooth_clause.applies", DefaultMissingToothApplies},
	{"missing_tooth_clause.affected_teeth", []string{}},
	{"missing_tooth_clause.excluded_services", []string{}},
	{"missing_tooth_clause.exception_pathway", nil},
	{"missing_tooth_clause.extraction_date", nil},
	{"missing_tooth_clause.coverage_begin", nil},
	{"action_flags", []string{string(FlagPlanInactive)}},
	{"subscriber.member_id", nil},
	{"subscriber.first_name", nil},
	{"subscriber.last_name", nil},
	{"subscriber.dob", nil},
	{"subscriber.group", nil},
	{"subscriber.plan_name", nil},
	{"_fixture_id", nil},
}

// CleaningFrequencyDefaults applies once a cleanings record is present.
var CleaningFrequencyDefaults = []FieldDefault{
	{"times_per_period", DefaultCleaningTimesPerPeriod},
	{"used_this_period", DefaultUsedThisPeriod},
	{"period", DefaultFrequencyPeriod},
	{"last_service_date", nil},
	{"next_eligible_date", nil},
}

// BitewingFrequencyDefaults applies once a bitewing record is present.
var BitewingFrequencyDefaults = []FieldDefault{
	{"times_per_period", DefaultBitewingTimesPerPeriod},
	{"used_this_period", DefaultUsedThisPeriod},
	{"next_eligible_date", nil},
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
