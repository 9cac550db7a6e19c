package stedi

import "strings"

// dentalPayer maps a fragment of a carrier name to its Stedi trading partner
// service id.
type dentalPayer struct {
	match string
	id    string
}

// dentalPayers is matched in order, so more specific names come first.
var dentalPayers = []dentalPayer{
	{"delta dental of california", "77777"},
	{"delta dental", "77777"},
	{"cigna", "62308"},
	{"aetna", "60054"},
	{"metlife", "65978"},
	{"met life", "65978"},
	{"guardian", "64246"},
	{"united concordia", "89070"},
	{"unitedhealthcare", "52133"},
	{"united healthcare", "52133"},
	{"uhc", "52133"},
	{"humana", "61101"},
	{"principal", "61271"},
	{"ameritas", "47009"},
	{"sun life", "CX014"},
	{"blue cross", "BCBSD"},
	{"bcbs", "BCBSD"},
	{"anthem", "BCBSD"},
	{"dentemax", "DNTMX"},
	{"geha", "39026"},
}

// ResolvePayerID picks the trading partner id for a request. A non-blank
// explicit payer id wins; otherwise the insurance name is matched
// case-insensitively against the dental payer table.
func ResolvePayerID(insuranceName, payerID string) (string, bool) {
	if id := strings.TrimSpace(payerID); id != "" {
		return id, true
	}
	name := strings.ToLower(strings.TrimSpace(insuranceName))
	if name == "" {
		return "", false
	}
	for _, p := range dentalPayers {
		if strings.Contains(name, p.match) {
			return p.id, true
		}
	}
	return "", false
}
