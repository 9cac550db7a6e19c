package oon

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Validation errors. Handlers map these to 400.
var (
	ErrProcedureCodeRequired = errors.New("procedure_code is required")
	ErrOfficeFeeInvalid      = errors.New("office_fee_cents must be greater than 0")
	ErrCoveragePctInvalid    = errors.New("oon_coverage_pct must be between 0 and 100")
	ErrDeductibleInvalid     = errors.New("remaining_deductible_cents must not be negative")
)

const (
	contractedRatePct = 85
	ucrFallbackPct    = 65
)

// Service runs the out-of-network allowable-amount waterfall: network
// check, remittance history, payer fee schedule, then the patient/insurer
// split.
type Service struct {
	history  ClaimHistory
	schedule FeeSchedule
	logger   zerolog.Logger
}

func NewService(history ClaimHistory, schedule FeeSchedule, logger zerolog.Logger) *Service {
	return &Service{
		history:  history,
		schedule: schedule,
		logger:   logger.With().Str("component", "oon").Logger(),
	}
}

func validate(req *Request) error {
	req.ProcedureCode = strings.ToUpper(strings.TrimSpace(req.ProcedureCode))
	if req.ProcedureCode == "" {
		return ErrProcedureCodeRequired
	}
	if req.OfficeFeeCents <= 0 {
		return ErrOfficeFeeInvalid
	}
	if req.CoveragePct != nil && (*req.CoveragePct < 0 || *req.CoveragePct > 100) {
		return ErrCoveragePctInvalid
	}
	if req.RemainingDeductibleCents != nil && *req.RemainingDeductibleCents < 0 {
		return ErrDeductibleInvalid
	}
	return nil
}

// Estimate runs the waterfall. Only validation errors are returned.
func (s *Service) Estimate(req Request) (*Estimate, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	payerID := strings.ToUpper(strings.TrimSpace(req.PayerID))
	if payerID == "" {
		payerID = DefaultPayerID
	}
	pct := DefaultCoveragePct
	if req.CoveragePct != nil {
		pct = *req.CoveragePct
	}
	var deductible int64
	if req.RemainingDeductibleCents != nil {
		deductible = *req.RemainingDeductibleCents
	}
	credentialing := req.ProviderCredentialing
	if credentialing == nil {
		credentialing = DefaultCredentialing
	}

	est := &Estimate{
		ProcedureCode:            req.ProcedureCode,
		OfficeFeeCents:           req.OfficeFeeCents,
		CoveragePct:              pct,
		RemainingDeductibleCents: deductible,
	}

	if credentialed(payerID, credentialing) {
		est.WaterfallSteps = append(est.WaterfallSteps, Step{1, "Network Check", StepComplete,
			fmt.Sprintf("In-Network: %s found in provider credentialing list", payerID)})

		rate := percentOf(req.OfficeFeeCents, contractedRatePct)
		est.NetworkStatus = InNetwork
		est.ContractedRateCents = &rate
		est.DataSource = SourceContracted
		est.DataSourceLabel = "In-Network Contracted Rate"
		est.EstimatedInsurancePaymentCents = percentOf(rate, pct)
		est.PatientResponsibilityCents = req.OfficeFeeCents - est.EstimatedInsurancePaymentCents
		est.WaterfallSteps = append(est.WaterfallSteps,
			Step{2, "Historical Scrubbing", StepSkipped, "Not needed: plan is in-network"},
			Step{3, "RPA Scrape", StepSkipped, "Not needed: plan is in-network"},
			Step{4, "Calculation", StepSkipped, "Contracted rate used directly"},
		)
		s.logged(req, est)
		return est, nil
	}

	est.NetworkStatus = OutOfNetwork
	est.WaterfallSteps = append(est.WaterfallSteps, Step{1, "Network Check", StepComplete,
		fmt.Sprintf("Out-of-Network: %s not in provider credentialing list", payerID)})

	var allowable int64
	if amounts := s.allowedAmounts(payerID, req.ProcedureCode); len(amounts) > 0 {
		allowable = average(amounts)
		est.DataSource = SourceHistorical
		est.DataSourceLabel = "Sourced via Historical Claims Data"
		est.WaterfallSteps = append(est.WaterfallSteps,
			Step{2, "Historical Scrubbing", StepComplete, fmt.Sprintf("Found %d historical ERAs for %s / %s, avg allowed: %s",
				len(amounts), req.ProcedureCode, payerID, formatCents(allowable))},
			Step{3, "RPA Scrape", StepSkipped, "Not needed: history data sufficient"},
		)
	} else {
		est.WaterfallSteps = append(est.WaterfallSteps, Step{2, "Historical Scrubbing", StepComplete,
			fmt.Sprintf("No ERA history found for %s / %s, escalating to RPA", req.ProcedureCode, payerID)})

		est.DataSource = SourceFeeSched
		est.DataSourceLabel = "Sourced via RPA Portal Scrape"
		if mac, ok := s.maxAllowable(payerID, req.ProcedureCode); ok && mac > 0 {
			allowable = mac
			est.WaterfallSteps = append(est.WaterfallSteps, Step{3, "RPA Scrape", StepComplete,
				fmt.Sprintf("Scraped MAC from %s portal: %s", payerID, formatCents(mac))})
		} else {
			allowable = percentOf(req.OfficeFeeCents, ucrFallbackPct)
			est.WaterfallSteps = append(est.WaterfallSteps, Step{3, "RPA Scrape", StepComplete,
				fmt.Sprintf("No MAC on file, using %d%% UCR estimate", ucrFallbackPct)})
		}
	}
	est.AllowableAmountCents = &allowable

	billable := allowable - deductible
	if billable < 0 {
		billable = 0
	}
	est.EstimatedInsurancePaymentCents = percentOf(billable, pct)
	est.PatientResponsibilityCents = req.OfficeFeeCents - est.EstimatedInsurancePaymentCents
	est.WaterfallSteps = append(est.WaterfallSteps, Step{4, "Calculation", StepComplete,
		fmt.Sprintf("(%s allowable - %s deductible) x %d%% = %s est. insurance pmt",
			formatCents(allowable), formatCents(deductible), pct, formatCents(est.EstimatedInsurancePaymentCents))})

	s.logged(req, est)
	return est, nil
}

func (s *Service) allowedAmounts(payerID, code string) []int64 {
	if s.history == nil {
		return nil
	}
	return s.history.AllowedAmounts(payerID, code)
}

func (s *Service) maxAllowable(payerID, code string) (int64, bool) {
	if s.schedule == nil {
		return 0, false
	}
	return s.schedule.MaxAllowable(payerID, code)
}

func (s *Service) logged(req Request, est *Estimate) {
	s.logger.Debug().
		Str("patient_id", req.PatientID).
		Str("procedure_code", est.ProcedureCode).
		Str("network_status", est.NetworkStatus).
		Str("data_source", est.DataSource).
		Msg("oon estimate computed")
}

func credentialed(payerID string, list []string) bool {
	for _, p := range list {
		if strings.EqualFold(strings.TrimSpace(p), payerID) {
			return true
		}
	}
	return false
}

// percentOf returns amount*pct/100 rounded half up.
func percentOf(amount int64, pct int) int64 {
	return (amount*int64(pct) + 50) / 100
}

// average returns the mean rounded half up to the cent.
func average(amounts []int64) int64 {
	var sum int64
	for _, a := range amounts {
		sum += a
	}
	n := int64(len(amounts))
	return (sum + n/2) / n
}

// formatCents renders cents as dollars with thousands separators, e.g.
// 145000 -> "$1,450.00".
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), cents%100)
}
