package eligibility

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

// genericFixture is served when no reference patient matches.
const genericFixture = "271_generic_active.json"

// fixtureFiles maps reference patient ids to their embedded 271 documents.
var fixtureFiles = map[string]string{
	"p1": "271_active_clean.json",
	"p2": "271_composite_downgrade_low_max.json",
	"p3": "271_inactive_plan.json",
	"p4": "271_missing_tooth_clause.json",
	"p5": "271_active_deductible_not_met.json",
	"p6": "271_frequency_limit.json",
	"p7": "271_out_of_network_estimate.json",
}

// FixtureInfo describes one reference patient.
type FixtureInfo struct {
	PatientID   string `json:"patient_id"`
	FixtureID   string `json:"fixture_id"`
	Description string `json:"description"`
}

// FixtureTable is the read-only set of canned eligibility documents. It is
// built once at startup and shared by all requests; callers must not write
// through the returned documents.
type FixtureTable struct {
	docs    map[string]*RawDocument
	generic *RawDocument
}

// LoadFixtures parses every embedded fixture document.
func LoadFixtures() (*FixtureTable, error) {
	t := &FixtureTable{docs: make(map[string]*RawDocument, len(fixtureFiles))}
	for id, name := range fixtureFiles {
		doc, err := readFixture(name)
		if err != nil {
			return nil, err
		}
		t.docs[id] = doc
	}
	generic, err := readFixture(genericFixture)
	if err != nil {
		return nil, err
	}
	t.generic = generic
	return t, nil
}

// MustLoadFixtures is LoadFixtures that panics on a malformed embedded file.
func MustLoadFixtures() *FixtureTable {
	t, err := LoadFixtures()
	if err != nil {
		panic(err)
	}
	return t
}

func readFixture(name string) (*RawDocument, error) {
	data, err := fixtureFS.ReadFile("fixtures/" + name)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", name, err)
	}
	var doc RawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", name, err)
	}
	return &doc, nil
}

// Lookup returns the reference document for a patient id.
func (t *FixtureTable) Lookup(patientID string) (*RawDocument, bool) {
	doc, ok := t.docs[patientID]
	return doc, ok
}

// Generic returns the generic active-plan document.
func (t *FixtureTable) Generic() *RawDocument {
	return t.generic
}

// List returns the reference patients ordered by patient id.
func (t *FixtureTable) List() []FixtureInfo {
	out := make([]FixtureInfo, 0, len(t.docs))
	for id, doc := range t.docs {
		info := FixtureInfo{PatientID: id}
		if doc.FixtureID != nil {
			info.FixtureID = *doc.FixtureID
		}
		if doc.Description != nil {
			info.Description = *doc.Description
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PatientID < out[j].PatientID })
	return out
}
