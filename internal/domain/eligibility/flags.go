package eligibility

// Flag is a policy condition that needs human review before treatment or
// billing proceeds.
type Flag string

const (
	FlagPlanInactive        Flag = "plan_inactive"
	FlagMissingToothClause  Flag = "missing_tooth_clause"
	FlagPreAuthRequired     Flag = "pre_auth_required"
	FlagFrequencyLimit      Flag = "frequency_limit"
	FlagAnnualMaxExhausted  Flag = "annual_max_exhausted"
	FlagAnnualMaxLow        Flag = "annual_max_low"
	FlagCompositeDowngrade  Flag = "composite_downgrade"
	FlagWaitingPeriodActive Flag = "waiting_period_active"
)

// AllFlags lists every flag the engine can emit, in rule order.
func AllFlags() []Flag {
	return []Flag{
		FlagPlanInactive,
		FlagMissingToothClause,
		FlagPreAuthRequired,
		FlagFrequencyLimit,
		FlagAnnualMaxExhausted,
		FlagAnnualMaxLow,
		FlagCompositeDowngrade,
		FlagWaitingPeriodActive,
	}
}

// Critical reports whether the flag escalates an active plan to
// action_required. New flags must be added to this switch.
func (f Flag) Critical() bool {
	switch f {
	case FlagPlanInactive,
		FlagMissingToothClause,
		FlagPreAuthRequired,
		FlagFrequencyLimit,
		FlagAnnualMaxExhausted,
		FlagAnnualMaxLow,
		FlagCompositeDowngrade,
		FlagWaitingPeriodActive:
		return true
	}
	return false
}

// VerificationStatus is the overall outcome shown to front-desk staff.
type VerificationStatus string

const (
	StatusVerified       VerificationStatus = "verified"
	StatusActionRequired VerificationStatus = "action_required"
	StatusInactive       VerificationStatus = "inactive"
)

// PlanActive is the only plan_status value treated as active coverage.
const PlanActive = "active"

// FlagInputs are the normalized figures the flag rules read. The deductible
// figures are part of the input set but no rule currently fires on them.
type FlagInputs struct {
	PlanStatus                string
	AnnualRemainingCents      *int64
	DeductibleMetCents        int64
	DeductibleIndividualCents *int64
	CleaningFrequency         *CleaningFrequency
	MissingToothClause        MissingToothClause
	BasicCompositeDowngrade   bool
	MajorWaitingPeriodMonths  int
}

// DeriveFlags evaluates the action-flag rules in order. An inactive plan
// yields exactly [plan_inactive]; otherwise rules accumulate.
func DeriveFlags(in FlagInputs) []Flag {
	if in.PlanStatus != PlanActive {
		return []Flag{FlagPlanInactive}
	}

	flags := []Flag{}

	if in.MissingToothClause.Applies {
		flags = append(flags, FlagMissingToothClause)
		if len(in.MissingToothClause.ExcludedServices) > 0 {
			flags = append(flags, FlagPreAuthRequired)
		}
	}

	if cf := in.CleaningFrequency; cf != nil && cf.UsedThisPeriod >= cf.TimesPerPeriod {
		flags = append(flags, FlagFrequencyLimit)
	}

	if rem := in.AnnualRemainingCents; rem != nil {
		if *rem == 0 {
			flags = append(flags, FlagAnnualMaxExhausted)
		} else if *rem < AnnualMaxLowThresholdCents {
			flags = append(flags, FlagAnnualMaxLow)
		}
	}

	if in.BasicCompositeDowngrade {
		flags = append(flags, FlagCompositeDowngrade)
	}

	if in.MajorWaitingPeriodMonths > 0 {
		flags = append(flags, FlagWaitingPeriodActive)
	}

	return flags
}

// DeriveStatus maps plan status and flags to the overall verification status.
func DeriveStatus(planStatus string, flags []Flag) VerificationStatus {
	if planStatus != PlanActive {
		return StatusInactive
	}
	for _, f := range flags {
		if f.Critical() {
			return StatusActionRequired
		}
	}
	return StatusVerified
}
