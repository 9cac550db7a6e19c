// Package adjustment maps HIPAA claim adjustment reason codes returned by
// payers to the action front-desk staff should take.
package adjustment

import "fmt"

// Severity ranks how urgently staff must act on a code.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Entry is the staff guidance for one reason code.
type Entry struct {
	Label    string   `json:"label"`
	Severity Severity `json:"severity"`
	Action   string   `json:"action"`
}

// Resolved is an Entry tagged with its code.
type Resolved struct {
	Code int `json:"code"`
	Entry
}

var codes = map[int]Entry{
	1: {"Deductible Amount", SeverityInfo,
		"Confirm patient's remaining deductible before collecting. Cross-check with EOB if available."},
	2: {"Coinsurance Amount", SeverityInfo,
		"Review coinsurance percentage in the benefit breakdown and inform patient of estimated out-of-pocket."},
	3: {"Co-payment Amount", SeverityInfo,
		"Collect copay at time of service. Verify copay tier for this procedure type."},
	4: {"Procedure not covered", SeverityWarning,
		"Confirm CDT code matches the treatment being rendered. Consider alternative covered codes or submit a narrative."},
	5: {"Service Not Authorized", SeverityCritical,
		"Pre-authorization required. Do NOT render service until auth number is obtained from carrier."},
	16: {"Claim/service lacks info", SeverityCritical,
		"Missing pre-op X-ray or required clinical narrative. Attach documentation and resubmit before proceeding."},
	18: {"Duplicate claim/service", SeverityWarning,
		"Check for duplicate entry in your PMS. Verify claim number against original submission."},
	22: {"This care may be covered by another payer", SeverityWarning,
		"Coordinate benefits: confirm primary vs. secondary payer order. Request COB information from patient."},
	27: {"Expenses incurred after policy terminated", SeverityCritical,
		"Insurance was not active on date of service. Collect full fee from patient and advise them to contact carrier."},
	29: {"Claim received after filing limit", SeverityCritical,
		"Filing deadline has passed. Review timely filing policy and consider appeal with proof of timely submission."},
	45: {"Charge exceeds fee schedule", SeverityInfo,
		"Carrier has a contracted maximum. Adjust write-off per your PPO agreement; do not balance-bill patient."},
	96: {"Non-covered charge", SeverityWarning,
		"Service is excluded under this plan. Obtain Advance Beneficiary Notice (ABN) signed by patient before proceeding."},
	97: {"Payment included in allowance for another service", SeverityInfo,
		"Bundled into a primary procedure. Check CDT bundling rules for this carrier."},
	109: {"Claim not covered by payer", SeverityCritical,
		"Wrong payer or plan. Verify insurance card and resubmit to correct carrier."},
	119: {"Benefit maximum for this period has been reached", SeverityWarning,
		"Annual maximum exhausted. Collect full fee from patient or postpone non-urgent treatment to next benefit year."},
	131: {"Claim specific negotiated discount", SeverityInfo,
		"Contracted discount applied. Confirm write-off amount matches your fee schedule."},
	197: {"Pre-cert/prior auth not received", SeverityCritical,
		"Authorization missing. Pause treatment, obtain auth number, then resubmit claim with auth reference."},
	252: {"An attachment is required", SeverityWarning,
		"Attach supporting documentation (X-ray, periodontal charting, narrative) and resubmit."},
}

// Codes returns a copy of the full dictionary.
func Codes() map[int]Entry {
	out := make(map[int]Entry, len(codes))
	for k, v := range codes {
		out[k] = v
	}
	return out
}

// Lookup returns the guidance for a known code.
func Lookup(code int) (Entry, bool) {
	e, ok := codes[code]
	return e, ok
}

// Resolve enriches codes in input order. Zero codes and repeats are
// dropped; unknown codes get an informational placeholder.
func Resolve(in []int) []Resolved {
	out := make([]Resolved, 0, len(in))
	seen := make(map[int]bool, len(in))
	for _, c := range in {
		if c == 0 || seen[c] {
			continue
		}
		seen[c] = true
		e, ok := codes[c]
		if !ok {
			e = Entry{
				Label:    fmt.Sprintf("Adjustment Code %d", c),
				Severity: SeverityInfo,
				Action:   fmt.Sprintf("Review carrier documentation for code %d.", c),
			}
		}
		out = append(out, Resolved{Code: c, Entry: e})
	}
	return out
}
