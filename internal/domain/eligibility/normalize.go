package eligibility

import (
	"time"
)

// Normalize maps a raw eligibility document to a Result stamped with the
// current time. It never fails: absent sub-trees are read as empty objects
// and every absent leaf takes its documented default.
func Normalize(doc *RawDocument) *Result {
	return NormalizeAt(doc, time.Now())
}

// NormalizeAt is Normalize with an explicit normalization timestamp.
func NormalizeAt(doc *RawDocument, at time.Time) *Result {
	if doc == nil {
		doc = &RawDocument{}
	}
	coverage := valueOr(doc.Coverage, RawCoverage{})
	benefits := valueOr(doc.Benefits, RawBenefits{})
	payer := valueOr(doc.Payer, RawPayer{})
	sub := valueOr(doc.Subscriber, RawSubscriber{})

	planStatus := valueOr(coverage.PlanStatus, DefaultPlanStatus)

	yearMax := valueOr(benefits.CalendarYearMaximum, RawAnnualMaximum{})
	ded := valueOr(benefits.Deductible, RawDeductible{})
	basic := valueOr(benefits.BasicRestorative, RawRestorative{})
	major := valueOr(benefits.MajorRestorative, RawRestorative{})

	res := &Result{
		PlanStatus:                   planStatus,
		PayerName:                    payer.Name,
		PayerID:                      payer.PayerID,
		InsuranceType:                coverage.InsuranceType,
		InNetwork:                    valueOr(coverage.InNetwork, DefaultInNetwork),
		PlanBeginDate:                coverage.PlanBeginDate,
		PlanEndDate:                  coverage.PlanEndDate,
		TerminationReason:            coverage.TerminationReason,
		AnnualMaximumCents:           yearMax.AmountCents,
		AnnualUsedCents:              yearMax.UsedCents,
		AnnualRemainingCents:         yearMax.RemainingCents,
		IndividualDeductibleCents:    ded.IndividualCents,
		IndividualDeductibleMetCents: valueOr(ded.MetCents, DefaultDeductibleMetCents),
		FamilyDeductibleCents:        ded.FamilyCents,
		FamilyDeductibleMetCents:     ded.FamilyMetCents,
		DeductibleAppliesTo:          copyStrings(ded.AppliesTo),
		DeductibleWaivedFor:          copyStrings(ded.WaivedFor),
		Preventive:                   normalizePreventive(benefits.Preventive),
		Restorative:                  normalizeRestorative(basic, major),
		MissingToothClause:           normalizeMissingTooth(benefits.MissingToothClause, coverage.PlanBeginDate),
		Subscriber: Subscriber{
			MemberID:  sub.MemberID,
			FirstName: sub.FirstName,
			LastName:  sub.LastName,
			DOB:       sub.DateOfBirth,
			Group:     sub.GroupNumber,
			PlanName:  sub.PlanName,
		},
		FixtureID:    doc.FixtureID,
		NormalizedAt: at.UTC().Format(time.RFC3339Nano),
	}

	if len(doc.OONEstimate) > 0 {
		res.OONEstimate = append([]byte(nil), doc.OONEstimate...)
	}

	res.ActionFlags = DeriveFlags(FlagInputs{
		PlanStatus:                planStatus,
		AnnualRemainingCents:      res.AnnualRemainingCents,
		DeductibleMetCents:        res.IndividualDeductibleMetCents,
		DeductibleIndividualCents: res.IndividualDeductibleCents,
		CleaningFrequency:         res.Preventive.CleaningFrequency,
		MissingToothClause:        res.MissingToothClause,
		BasicCompositeDowngrade:   valueOr(basic.CompositePosteriorDowngrade, DefaultCompositeDowngrade),
		MajorWaitingPeriodMonths:  valueOr(major.WaitingPeriodMonths, DefaultWaitingPeriodMonths),
	})
	res.VerificationStatus = DeriveStatus(planStatus, res.ActionFlags)

	return res
}

func normalizePreventive(p *RawPreventive) Preventive {
	prev := valueOr(p, RawPreventive{})
	freq := valueOr(prev.Frequency, RawPreventiveFrequency{})

	out := Preventive{
		CoveragePct:       prev.CoveragePct,
		CopayCents:        prev.CopayCents,
		DeductibleApplies: valueOr(prev.DeductibleApplies, DefaultPreventiveDeductible),
	}
	if c := freq.Cleanings; c.present() {
		out.CleaningFrequency = &CleaningFrequency{
			TimesPerPeriod:   valueOr(c.TimesPerPeriod, DefaultCleaningTimesPerPeriod),
			UsedThisPeriod:   valueOr(c.UsedThisPeriod, DefaultUsedThisPeriod),
			Period:           valueOr(c.Period, DefaultFrequencyPeriod),
			LastServiceDate:  c.LastServiceDate,
			NextEligibleDate: c.NextEligibleDate,
		}
	}
	if b := freq.BitewingXrays; b.present() {
		out.BitewingFrequency = &BitewingFrequency{
			TimesPerPeriod:   valueOr(b.TimesPerPeriod, DefaultBitewingTimesPerPeriod),
			UsedThisPeriod:   valueOr(b.UsedThisPeriod, DefaultUsedThisPeriod),
			NextEligibleDate: b.NextEligibleDate,
		}
	}
	return out
}

func normalizeRestorative(basic, major RawRestorative) Restorative {
	pct := basic.CoveragePct
	if pct == nil {
		pct = major.CoveragePct
	}
	return Restorative{
		CoveragePct:                 pct,
		CopayCents:                  basic.CopayCents,
		DeductibleApplies:           valueOr(basic.DeductibleApplies, DefaultRestorativeDeductible),
		CompositePosteriorDowngrade: valueOr(basic.CompositePosteriorDowngrade, DefaultCompositeDowngrade),
		CompositePosteriorNote:      basic.CompositePosteriorDowngradeNote,
		CrownWaitingPeriodMonths:    valueOr(major.WaitingPeriodMonths, DefaultWaitingPeriodMonths),
	}
}

func normalizeMissingTooth(m *RawMissingToothClause, coverageBegin *string) MissingToothClause {
	mtc := valueOr(m, RawMissingToothClause{})
	return MissingToothClause{
		Applies:          valueOr(mtc.Applies, DefaultMissingToothApplies),
		AffectedTeeth:    copyStrings(mtc.AffectedTeeth),
		ExcludedServices: copyStrings(mtc.ExcludedServices),
		ExceptionPathway: mtc.ExceptionPathway,
		ExtractionDate:   mtc.ExtractionDateOnFile,
		CoverageBegin:    coverageBegin,
	}
}
