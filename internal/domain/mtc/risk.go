package mtc

import (
	"fmt"
	"strings"
	"time"

	"github.com/pulpai/pulp/internal/domain/eligibility"
)

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
)

type Flag string

const (
	FlagUnknown               Flag = "mtc_unknown_bot_required"
	FlagPreExisting           Flag = "mtc_pre_existing_critical"
	FlagToothInCoverage       Flag = "mtc_present_tooth_in_coverage"
	FlagExtractionDateUnknown Flag = "mtc_extraction_date_unknown"
)

const dateLayout = "2006-01-02"

// ToothRecord is one entry of a patient's charted procedure history.
type ToothRecord struct {
	Tooth     string `json:"tooth"`
	Procedure string `json:"procedure"`
	Date      string `json:"date"`
}

// Input is everything Evaluate needs about the plan and the patient.
type Input struct {
	PlannedCodes   []string
	Presence       Presence
	CoverageBegin  string
	ExtractionDate string
	ToothHistory   []ToothRecord
}

// Assessment is the clause risk for a treatment plan. Flag and Severity are
// null when there is nothing for the front desk to act on.
type Assessment struct {
	Flag                *Flag      `json:"flag"`
	Severity            *Severity  `json:"severity"`
	Description         string     `json:"description"`
	Presence            Presence   `json:"presence"`
	AffectedCodes       []string   `json:"affected_codes"`
	AffectedCategories  []Category `json:"affected_categories"`
	ExtractionDate      *string    `json:"extraction_date"`
	CoverageBegin       *string    `json:"coverage_begin"`
	ToothWasPreExisting *bool      `json:"tooth_was_pre_existing"`
	RequiresPortalCheck bool       `json:"requires_portal_check"`
}

// Evaluate decides whether the planned procedures are exposed to a missing
// tooth clause. When the clause is confirmed, the earliest charted
// extraction is compared to the coverage start; an unknown extraction date
// is treated as the worst case.
func Evaluate(in Input) Assessment {
	a := Assessment{
		Presence:           in.Presence,
		AffectedCodes:      []string{},
		AffectedCategories: []Category{},
	}
	if a.Presence == "" {
		a.Presence = PresenceUnknown
	}

	seen := map[Category]bool{}
	for _, code := range in.PlannedCodes {
		p, ok := Lookup(code)
		if !ok {
			continue
		}
		a.AffectedCodes = append(a.AffectedCodes, p.Code)
		if !seen[p.Category] {
			seen[p.Category] = true
			a.AffectedCategories = append(a.AffectedCategories, p.Category)
		}
	}
	if len(a.AffectedCodes) == 0 {
		a.Description = "No missing tooth clause sensitive procedures in the treatment plan."
		return a
	}
	codes := strings.Join(a.AffectedCodes, ", ")

	switch a.Presence {
	case PresenceNo:
		f := false
		a.ToothWasPreExisting = &f
		a.Description = "Plan has no missing tooth clause. Prosthetic codes are eligible."
		return a
	case PresenceUnknown:
		a.set(FlagUnknown, SeverityWarning)
		a.RequiresPortalCheck = true
		a.Description = fmt.Sprintf("Missing tooth clause status unknown for this plan. Cannot confirm coverage for %s. "+
			"Check the carrier portal limitations and collect a full patient responsibility estimate until resolved.", codes)
		return a
	}

	coverage := parseDate(in.CoverageBegin)
	extraction := earliestExtraction(in.ToothHistory)
	if extraction == nil {
		extraction = parseDate(in.ExtractionDate)
	}
	a.CoverageBegin = formatDate(coverage)
	a.ExtractionDate = formatDate(extraction)

	if extraction == nil || coverage == nil {
		a.set(FlagExtractionDateUnknown, SeverityCritical)
		a.Description = fmt.Sprintf("Potential denial: plan has a missing tooth clause and the extraction date for %s cannot be verified. "+
			"Pull extraction records from the chart or prior provider before proceeding.", codes)
		return a
	}

	pre := extraction.Before(*coverage)
	a.ToothWasPreExisting = &pre
	if pre {
		a.set(FlagPreExisting, SeverityCritical)
		a.Description = fmt.Sprintf("Potential denial: plan has a missing tooth clause and the tooth was extracted %s, before the %s coverage effective date. "+
			"Collect patient responsibility before treatment or pursue pre-authorization with extraction records for %s.",
			extraction.Format(dateLayout), coverage.Format(dateLayout), codes)
		return a
	}
	a.set(FlagToothInCoverage, SeverityWarning)
	a.Description = fmt.Sprintf("Plan has a missing tooth clause but the tooth was extracted %s, after the %s coverage effective date. "+
		"Document the extraction date in the chart. Affected codes: %s.",
		extraction.Format(dateLayout), coverage.Format(dateLayout), codes)
	return a
}

// EvaluateResult evaluates a treatment plan against a normalized
// verification result.
func EvaluateResult(res *eligibility.Result, planned []string, history []ToothRecord) Assessment {
	return Evaluate(resultInput(res, Input{PlannedCodes: planned, ToothHistory: history}))
}

func resultInput(res *eligibility.Result, in Input) Input {
	in.Presence = PresenceNo
	m := res.MissingToothClause
	if m.Applies {
		in.Presence = PresenceYes
	}
	if m.CoverageBegin != nil {
		in.CoverageBegin = *m.CoverageBegin
	} else if res.PlanBeginDate != nil {
		in.CoverageBegin = *res.PlanBeginDate
	}
	if m.ExtractionDate != nil {
		in.ExtractionDate = *m.ExtractionDate
	}
	return in
}

func (a *Assessment) set(f Flag, s Severity) {
	a.Flag = &f
	a.Severity = &s
}

func earliestExtraction(history []ToothRecord) *time.Time {
	var earliest *time.Time
	for _, r := range history {
		if !IsExtraction(r.Procedure) {
			continue
		}
		d := parseDate(r.Date)
		if d != nil && (earliest == nil || d.Before(*earliest)) {
			earliest = d
		}
	}
	return earliest
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
