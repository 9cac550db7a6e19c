// Package mtc evaluates missing tooth clause exposure: whether a plan
// carries the clause, and whether a treatment plan's prosthetic procedures
// are likely to be denied under it.
package mtc

import (
	"sort"
	"strings"
)

type Category string

const (
	CategoryImplant Category = "implant"
	CategoryBridge  Category = "bridge"
	CategoryDenture Category = "denture"
)

type Risk string

const (
	RiskHigh   Risk = "HIGH"
	RiskMedium Risk = "MEDIUM"
)

// Procedure is a CDT code whose coverage a missing tooth clause can deny.
type Procedure struct {
	Code        string   `json:"code"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Risk        Risk     `json:"risk"`
}

var procedures = map[string]Procedure{}

func register(cat Category, risk Risk, entries ...[2]string) {
	for _, e := range entries {
		procedures[e[0]] = Procedure{Code: e[0], Category: cat, Description: e[1], Risk: risk}
	}
}

func init() {
	register(CategoryImplant, RiskHigh,
		[2]string{"D6010", "Surgical placement of implant body"},
		[2]string{"D6011", "Second stage implant surgery"},
		[2]string{"D6012", "Surgical placement, interim implant body"},
		[2]string{"D6013", "Surgical placement, mini implant"},
		[2]string{"D6040", "Implant supported eposteal crown"},
		[2]string{"D6041", "Interim implant crown"},
		[2]string{"D6055", "Connecting bar, implant supported"},
		[2]string{"D6056", "Prefabricated abutment"},
		[2]string{"D6057", "Custom fabricated abutment"},
		[2]string{"D6058", "Implant-supported porcelain/ceramic crown"},
		[2]string{"D6059", "Implant-supported PFM crown"},
		[2]string{"D6065", "Implant-supported metal crown"},
		[2]string{"D6066", "Implant-supported PFM retainer"},
		[2]string{"D6067", "Implant-supported metal retainer"},
		[2]string{"D6068", "Implant-supported retainer, porcelain/ceramic"},
		[2]string{"D6069", "Implant-supported retainer, PFM"},
		[2]string{"D6070", "Implant-supported retainer, base metal"},
		[2]string{"D6071", "Implant-supported retainer, noble metal"},
	)

	// Pontics replace the missing tooth itself.
	register(CategoryBridge, RiskHigh,
		[2]string{"D6210", "Pontic, cast high noble metal"},
		[2]string{"D6211", "Pontic, cast predominantly base metal"},
		[2]string{"D6212", "Pontic, cast noble metal"},
		[2]string{"D6214", "Pontic, titanium and titanium alloys"},
		[2]string{"D6240", "Pontic, porcelain fused to high noble metal"},
		[2]string{"D6241", "Pontic, PFM predominantly base metal"},
		[2]string{"D6242", "Pontic, PFM noble metal"},
		[2]string{"D6243", "Pontic, porcelain/ceramic"},
		[2]string{"D6245", "Pontic, porcelain/ceramic"},
		[2]string{"D6250", "Pontic, resin with high noble metal"},
		[2]string{"D6251", "Pontic, resin with predominantly base metal"},
		[2]string{"D6252", "Pontic, resin with noble metal"},
	)
	register(CategoryBridge, RiskMedium,
		[2]string{"D6710", "Retainer crown, indirect resin"},
		[2]string{"D6720", "Retainer crown, resin with high noble metal"},
		[2]string{"D6721", "Retainer crown, resin/base metal"},
		[2]string{"D6722", "Retainer crown, resin/noble metal"},
		[2]string{"D6740", "Retainer crown, porcelain/ceramic"},
		[2]string{"D6750", "Retainer crown, PFM high noble"},
		[2]string{"D6751", "Retainer crown, PFM base metal"},
		[2]string{"D6752", "Retainer crown, PFM noble metal"},
		[2]string{"D6780", "Retainer crown, 3/4 cast high noble"},
		[2]string{"D6781", "Retainer crown, 3/4 cast base metal"},
		[2]string{"D6782", "Retainer crown, 3/4 cast noble"},
		[2]string{"D6783", "Retainer crown, 3/4 porcelain/ceramic"},
		[2]string{"D6790", "Retainer crown, full cast high noble"},
		[2]string{"D6791", "Retainer crown, full cast base metal"},
		[2]string{"D6792", "Retainer crown, full cast noble"},
	)

	register(CategoryDenture, RiskMedium,
		[2]string{"D5110", "Complete denture, maxillary"},
		[2]string{"D5120", "Complete denture, mandibular"},
		[2]string{"D5130", "Immediate denture, maxillary"},
		[2]string{"D5140", "Immediate denture, mandibular"},
	)
	register(CategoryDenture, RiskHigh,
		[2]string{"D5211", "Maxillary partial denture, resin base"},
		[2]string{"D5212", "Mandibular partial denture, resin base"},
		[2]string{"D5213", "Maxillary partial denture, cast metal"},
		[2]string{"D5214", "Mandibular partial denture, cast metal"},
		[2]string{"D5221", "Immediate maxillary partial, resin base"},
		[2]string{"D5222", "Immediate mandibular partial, resin base"},
		[2]string{"D5223", "Immediate maxillary partial, cast metal"},
		[2]string{"D5224", "Immediate mandibular partial, cast metal"},
		[2]string{"D5225", "Maxillary partial denture, flexible base"},
		[2]string{"D5226", "Mandibular partial denture, flexible base"},
	)
}

// extractionCodes are the CDT codes that remove a tooth.
var extractionCodes = map[string]bool{
	"D7140": true,
	"D7210": true,
	"D7220": true,
	"D7230": true,
	"D7240": true,
	"D7250": true,
	"D7251": true,
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Lookup returns the clause-sensitive procedure for a CDT code.
func Lookup(code string) (Procedure, bool) {
	p, ok := procedures[normalizeCode(code)]
	return p, ok
}

// IsExtraction reports whether code is a tooth extraction.
func IsExtraction(code string) bool {
	return extractionCodes[normalizeCode(code)]
}

// Procedures returns the registry ordered by code.
func Procedures() []Procedure {
	out := make([]Procedure, 0, len(procedures))
	for _, p := range procedures {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
