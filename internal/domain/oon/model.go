package oon

// Network statuses.
const (
	InNetwork    = "in_network"
	OutOfNetwork = "out_of_network"
)

// Allowable-amount sources, in waterfall order.
const (
	SourceContracted = "contracted"
	SourceHistorical = "historical_claims"
	SourceFeeSched   = "rpa_scrape"
)

// Step statuses.
const (
	StepComplete = "complete"
	StepSkipped  = "skipped"
)

const (
	DefaultCoveragePct = 50
	DefaultPayerID     = "UNKNOWN"
)

// Request is the body of POST /oon-estimate. Pointer fields distinguish an
// omitted value from an explicit zero.
type Request struct {
	PatientID                string   `json:"patient_id"`
	ProcedureCode            string   `json:"procedure_code"`
	OfficeFeeCents           int64    `json:"office_fee_cents"`
	PayerID                  string   `json:"payer_id"`
	CoveragePct              *int     `json:"oon_coverage_pct"`
	RemainingDeductibleCents *int64   `json:"remaining_deductible_cents"`
	ProviderCredentialing    []string `json:"provider_credentialing"`
}

// Step records one stage of the waterfall.
type Step struct {
	Step   int    `json:"step"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Result string `json:"result"`
}

// Estimate is the waterfall outcome. It has the same shape as the
// oon_estimate block carried on out-of-network eligibility documents.
type Estimate struct {
	NetworkStatus                  string `json:"network_status"`
	ProcedureCode                  string `json:"procedure_code"`
	OfficeFeeCents                 int64  `json:"office_fee_cents"`
	AllowableAmountCents           *int64 `json:"allowable_amount_cents"`
	ContractedRateCents            *int64 `json:"contracted_rate_cents"`
	DataSource                     string `json:"data_source"`
	DataSourceLabel                string `json:"data_source_label"`
	CoveragePct                    int    `json:"oon_coverage_pct"`
	RemainingDeductibleCents       int64  `json:"remaining_deductible_cents"`
	EstimatedInsurancePaymentCents int64  `json:"estimated_insurance_payment_cents"`
	PatientResponsibilityCents     int64  `json:"patient_responsibility_cents"`
	WaterfallSteps                 []Step `json:"waterfall_steps"`
}
