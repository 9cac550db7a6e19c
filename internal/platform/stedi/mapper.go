package stedi

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pulpai/pulp/internal/domain/eligibility"
	"github.com/pulpai/pulp/internal/domain/mtc"
)

// X12 service type codes used by dental payers.
var (
	preventiveServiceTypes = []string{"41", "23"}
	basicServiceTypes      = []string{"25"}
	majorServiceTypes      = []string{"36", "39"}
	dentalServiceTypes     = []string{"35"}
)

var insuranceTypes = map[string]string{
	"PR": "PPO",
	"HM": "HMO",
	"HN": "HMO",
	"EP": "EPO",
	"PS": "POS",
	"IN": "Indemnity",
	"C1": "Commercial",
	"MC": "Medicaid",
}

var (
	waitingPeriodRe = regexp.MustCompile(`(\d+)[\s-]*months?\s+waiting\s+period`)
	toothRe         = regexp.MustCompile(`#\s?(\d{1,2})\b`)
	cdtCodeRe       = regexp.MustCompile(`\bD\d{4}\b`)
)

// mapResponse converts a 271 response into the raw eligibility document the
// normalizer consumes. Figures are taken from in-network entries when the
// payer reports both tiers.
func mapResponse(resp *eligibilityResponse, payerID string) *eligibility.RawDocument {
	m := &responseMapper{resp: resp}
	m.scanNetwork()
	for i := range resp.BenefitsInformation {
		b := &resp.BenefitsInformation[i]
		if m.sawInNetwork && b.InPlanNetworkIndicatorCode == "N" {
			continue
		}
		m.benefit(b)
	}
	return m.document(payerID)
}

type responseMapper struct {
	resp *eligibilityResponse

	sawInNetwork  bool
	sawOutNetwork bool

	planStatus    string
	insuranceType string
	planName      string

	annualAmount    *int64
	annualRemaining *int64

	dedIndividual          *int64
	dedIndividualRemaining *int64
	dedFamily              *int64
	dedFamilyRemaining     *int64

	preventivePct   *int
	preventiveCopay *int64
	basicPct        *int
	basicCopay      *int64
	majorPct        *int

	cleaningTimes     *int
	cleaningRemaining *int
	cleaningPeriod    string
	cleaningLast      string
	bitewingTimes     *int

	missingTooth     bool
	mtcSegments      []mtc.Segment
	affectedTeeth    []string
	excludedServices []string
	downgrade        bool
	downgradeNote    string
	waitingMonths    *int
}

func (m *responseMapper) scanNetwork() {
	for _, b := range m.resp.BenefitsInformation {
		switch b.InPlanNetworkIndicatorCode {
		case "Y":
			m.sawInNetwork = true
		case "N":
			m.sawOutNetwork = true
		}
	}
}

func (m *responseMapper) benefit(b *apiBenefit) {
	if b.InsuranceTypeCode != "" && m.insuranceType == "" {
		if t, ok := insuranceTypes[b.InsuranceTypeCode]; ok {
			m.insuranceType = t
		} else {
			m.insuranceType = b.InsuranceTypeCode
		}
	}
	if b.PlanCoverage != "" && m.planName == "" {
		m.planName = b.PlanCoverage
	}

	switch b.Code {
	case "1":
		if m.planStatus == "" {
			m.planStatus = eligibility.PlanActive
		}
	case "6":
		if m.planStatus == "" {
			m.planStatus = "inactive"
		}
	case "F":
		m.limitation(b)
	case "C":
		m.deductible(b)
	case "A":
		pct := coverageFromPatientShare(b.BenefitPercent)
		switch {
		case hasServiceType(b, preventiveServiceTypes):
			m.preventivePct = firstInt(m.preventivePct, pct)
		case hasServiceType(b, basicServiceTypes):
			m.basicPct = firstInt(m.basicPct, pct)
		case hasServiceType(b, majorServiceTypes):
			m.majorPct = firstInt(m.majorPct, pct)
		}
	case "B":
		copay := dollarsToCents(b.BenefitAmount)
		switch {
		case hasServiceType(b, preventiveServiceTypes):
			m.preventiveCopay = firstInt64(m.preventiveCopay, copay)
		case hasServiceType(b, basicServiceTypes):
			m.basicCopay = firstInt64(m.basicCopay, copay)
		}
	}

	texts := []string{b.Name}
	for _, info := range b.AdditionalInformation {
		m.note(b, info.Description)
		texts = append(texts, info.Description)
	}
	m.mtcSegments = append(m.mtcSegments, mtc.Segment{
		Code:         b.Code,
		ServiceTypes: b.ServiceTypeCodes,
		Text:         strings.Join(texts, " "),
	})
}

func (m *responseMapper) limitation(b *apiBenefit) {
	if len(b.BenefitsServiceDelivery) > 0 {
		m.frequency(b)
		return
	}
	if len(b.ServiceTypeCodes) > 0 && !hasServiceType(b, dentalServiceTypes) {
		return
	}
	amount := dollarsToCents(b.BenefitAmount)
	switch b.TimeQualifierCode {
	case "22", "23":
		m.annualAmount = firstInt64(m.annualAmount, amount)
	case "29":
		m.annualRemaining = firstInt64(m.annualRemaining, amount)
	}
}

func (m *responseMapper) frequency(b *apiBenefit) {
	bitewing := false
	for _, info := range b.AdditionalInformation {
		if strings.Contains(strings.ToLower(info.Description), "bitewing") {
			bitewing = true
		}
	}
	if !bitewing && !hasServiceType(b, preventiveServiceTypes) {
		return
	}
	for _, d := range b.BenefitsServiceDelivery {
		qty, err := strconv.Atoi(strings.TrimSpace(d.Quantity))
		if err != nil {
			continue
		}
		switch {
		case bitewing:
			if b.TimeQualifierCode != "29" {
				m.bitewingTimes = firstInt(m.bitewingTimes, &qty)
			}
		case b.TimeQualifierCode == "29":
			m.cleaningRemaining = firstInt(m.cleaningRemaining, &qty)
		default:
			m.cleaningTimes = firstInt(m.cleaningTimes, &qty)
			if m.cleaningPeriod == "" {
				m.cleaningPeriod = periodName(d.TimePeriodQualifierCode)
			}
		}
	}
	if last := b.BenefitsDateInformation.LatestVisitOrConsultation; last != "" && !bitewing {
		m.cleaningLast = x12Date(last)
	}
}

func (m *responseMapper) deductible(b *apiBenefit) {
	amount := dollarsToCents(b.BenefitAmount)
	remaining := b.TimeQualifierCode == "29"
	switch b.CoverageLevelCode {
	case "IND", "":
		if remaining {
			m.dedIndividualRemaining = firstInt64(m.dedIndividualRemaining, amount)
		} else {
			m.dedIndividual = firstInt64(m.dedIndividual, amount)
		}
	case "FAM":
		if remaining {
			m.dedFamilyRemaining = firstInt64(m.dedFamilyRemaining, amount)
		} else {
			m.dedFamily = firstInt64(m.dedFamily, amount)
		}
	}
}

func (m *responseMapper) note(b *apiBenefit, text string) {
	lower := strings.ToLower(text)

	if strings.Contains(lower, "missing tooth") {
		m.missingTooth = true
		for _, t := range toothRe.FindAllStringSubmatch(text, -1) {
			m.affectedTeeth = appendUnique(m.affectedTeeth, "#"+t[1])
		}
		for _, code := range cdtCodeRe.FindAllString(text, -1) {
			m.excludedServices = appendUnique(m.excludedServices, code)
		}
	}

	if strings.Contains(lower, "downgrade") &&
		(strings.Contains(lower, "composite") || strings.Contains(lower, "posterior") || strings.Contains(lower, "amalgam")) {
		m.downgrade = true
		if m.downgradeNote == "" {
			m.downgradeNote = text
		}
	}

	if match := waitingPeriodRe.FindStringSubmatch(lower); match != nil {
		if len(b.ServiceTypeCodes) == 0 || hasServiceType(b, majorServiceTypes) {
			if months, err := strconv.Atoi(match[1]); err == nil {
				m.waitingMonths = firstInt(m.waitingMonths, &months)
			}
		}
	}
}

func (m *responseMapper) document(payerID string) *eligibility.RawDocument {
	resp := m.resp
	doc := &eligibility.RawDocument{
		Subscriber: &eligibility.RawSubscriber{
			MemberID:    strp(resp.Subscriber.MemberID),
			FirstName:   strp(resp.Subscriber.FirstName),
			LastName:    strp(resp.Subscriber.LastName),
			DateOfBirth: strp(x12Date(resp.Subscriber.DateOfBirth)),
			GroupNumber: strp(firstNonEmpty(resp.PlanInformation.GroupNumber, resp.Subscriber.GroupNumber)),
			PlanName:    strp(firstNonEmpty(m.planName, resp.PlanInformation.PlanDescription, resp.PlanInformation.GroupDescription)),
		},
		Payer: &eligibility.RawPayer{
			Name:    strp(resp.Payer.Name),
			PayerID: strp(firstNonEmpty(payerID, resp.TradingPartnerID, resp.Payer.PayorIdentification)),
		},
		Coverage: m.coverage(),
		Benefits: &eligibility.RawBenefits{},
	}

	if m.annualAmount != nil || m.annualRemaining != nil {
		doc.Benefits.CalendarYearMaximum = &eligibility.RawAnnualMaximum{
			AmountCents:    m.annualAmount,
			UsedCents:      difference(m.annualAmount, m.annualRemaining),
			RemainingCents: m.annualRemaining,
		}
	}

	if m.dedIndividual != nil || m.dedFamily != nil {
		doc.Benefits.Deductible = &eligibility.RawDeductible{
			IndividualCents: m.dedIndividual,
			MetCents:        difference(m.dedIndividual, m.dedIndividualRemaining),
			FamilyCents:     m.dedFamily,
			FamilyMetCents:  difference(m.dedFamily, m.dedFamilyRemaining),
		}
	}

	prev := &eligibility.RawPreventive{
		CoveragePct: m.preventivePct,
		CopayCents:  m.preventiveCopay,
	}
	if m.cleaningTimes != nil || m.bitewingTimes != nil {
		prev.Frequency = &eligibility.RawPreventiveFrequency{}
		if m.cleaningTimes != nil {
			prev.Frequency.Cleanings = &eligibility.RawFrequency{
				TimesPerPeriod:  m.cleaningTimes,
				UsedThisPeriod:  usedVisits(m.cleaningTimes, m.cleaningRemaining),
				Period:          strp(m.cleaningPeriod),
				LastServiceDate: strp(m.cleaningLast),
			}
		}
		if m.bitewingTimes != nil {
			prev.Frequency.BitewingXrays = &eligibility.RawFrequency{TimesPerPeriod: m.bitewingTimes}
		}
	}
	doc.Benefits.Preventive = prev

	doc.Benefits.BasicRestorative = &eligibility.RawRestorative{
		CoveragePct:                     m.basicPct,
		CopayCents:                      m.basicCopay,
		CompositePosteriorDowngrade:     boolp(m.downgrade),
		CompositePosteriorDowngradeNote: strp(m.downgradeNote),
	}
	doc.Benefits.MajorRestorative = &eligibility.RawRestorative{
		CoveragePct:         m.majorPct,
		WaitingPeriodMonths: m.waitingMonths,
	}
	applies := mtc.Extract(m.mtcSegments).Applies()
	if applies == nil {
		applies = boolp(m.missingTooth)
	}
	doc.Benefits.MissingToothClause = &eligibility.RawMissingToothClause{
		Applies:          applies,
		AffectedTeeth:    m.affectedTeeth,
		ExcludedServices: m.excludedServices,
	}

	return doc
}

func (m *responseMapper) coverage() *eligibility.RawCoverage {
	resp := m.resp
	cov := &eligibility.RawCoverage{
		PlanStatus:    strp(m.statusFromPlanStatus()),
		InsuranceType: strp(m.insuranceType),
	}
	if m.sawOutNetwork && !m.sawInNetwork {
		cov.InNetwork = boolp(false)
	} else if m.sawInNetwork {
		cov.InNetwork = boolp(true)
	}

	begin, end := resp.PlanDateInformation.PlanBegin, resp.PlanDateInformation.PlanEnd
	if begin == "" && resp.PlanDateInformation.Plan != "" {
		begin, end = splitDateRange(resp.PlanDateInformation.Plan)
	}
	if begin == "" {
		begin = resp.PlanDateInformation.EligibilityBegin
	}
	if end == "" {
		end = resp.PlanDateInformation.EligibilityEnd
	}
	cov.PlanBeginDate = strp(x12Date(begin))
	cov.PlanEndDate = strp(x12Date(end))

	if cov.PlanStatus != nil && *cov.PlanStatus != eligibility.PlanActive {
		for _, ps := range resp.PlanStatus {
			if ps.PlanDetails != "" {
				cov.TerminationReason = strp(ps.PlanDetails)
				break
			}
		}
	}
	return cov
}

// statusFromPlanStatus maps EB01 eligibility codes: 1-5 are active
// variants, 6-8 inactive variants.
func (m *responseMapper) statusFromPlanStatus() string {
	for _, ps := range m.resp.PlanStatus {
		switch ps.StatusCode {
		case "1", "2", "3", "4", "5":
			return eligibility.PlanActive
		case "6", "7", "8":
			return "inactive"
		}
	}
	return m.planStatus
}

func hasServiceType(b *apiBenefit, codes []string) bool {
	for _, st := range b.ServiceTypeCodes {
		for _, c := range codes {
			if st == c {
				return true
			}
		}
	}
	return false
}

func dollarsToCents(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	c := int64(math.Round(f * 100))
	return &c
}

// coverageFromPatientShare turns a coinsurance figure (the patient's share,
// either a fraction like "0.2" or a percent like "20") into the plan's
// coverage percentage.
func coverageFromPatientShare(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return nil
	}
	if f <= 1 {
		f *= 100
	}
	pct := 100 - int(math.Round(f))
	if pct < 0 {
		pct = 0
	}
	return &pct
}

func periodName(code string) string {
	switch code {
	case "23":
		return "calendar_year"
	case "22":
		return "benefit_year"
	case "21":
		return "years"
	case "34":
		return "month"
	}
	return ""
}

// x12Date converts CCYYMMDD to YYYY-MM-DD; other shapes pass through.
func x12Date(s string) string {
	s = strings.TrimSpace(s)
	if len(s) != 8 {
		return s
	}
	if _, err := strconv.Atoi(s); err != nil {
		return s
	}
	return s[:4] + "-" + s[4:6] + "-" + s[6:]
}

func splitDateRange(s string) (string, string) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return s, ""
	}
	return parts[0], parts[1]
}

func difference(total, remaining *int64) *int64 {
	if total == nil || remaining == nil {
		return nil
	}
	d := *total - *remaining
	if d < 0 {
		d = 0
	}
	return &d
}

func usedVisits(times, remaining *int) *int {
	if times == nil || remaining == nil {
		return nil
	}
	used := *times - *remaining
	if used < 0 {
		used = 0
	}
	return &used
}

func firstInt64(cur, next *int64) *int64 {
	if cur != nil {
		return cur
	}
	return next
}

func firstInt(cur, next *int) *int {
	if cur != nil {
		return cur
	}
	return next
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func strp(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func boolp(b bool) *bool { return &b }
