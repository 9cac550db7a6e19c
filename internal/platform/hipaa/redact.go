package hipaa

import (
	"regexp"
	"sort"
	"strings"
)

// minRedactLen skips values too short to identify anyone; redacting a single
// initial would mangle unrelated text.
const minRedactLen = 2

// Redactor strips known PHI values from free-form diagnostic text.
type Redactor struct {
	values []redactValue
}

type redactValue struct {
	field   PHIField
	value   string
	pattern *regexp.Regexp
}

// NewRedactor builds a Redactor for the given field values. Empty and very
// short values are ignored.
func NewRedactor(values map[PHIField]string) *Redactor {
	r := &Redactor{}
	for _, f := range PHIFields() {
		v := strings.TrimSpace(values[f])
		if len(v) < minRedactLen {
			continue
		}
		r.values = append(r.values, redactValue{
			field:   f,
			value:   v,
			pattern: regexp.MustCompile("(?i)" + regexp.QuoteMeta(v)),
		})
	}
	// Longest first so a last name contained in a member id is not split.
	sort.SliceStable(r.values, func(i, j int) bool {
		return len(r.values[i].value) > len(r.values[j].value)
	})
	return r
}

// Redact replaces every case-insensitive occurrence of a known value with a
// placeholder naming the field. Matching is rune-aware, so text whose case
// mapping changes byte width cannot shift the match.
func (r *Redactor) Redact(s string) string {
	if r == nil {
		return s
	}
	for _, rv := range r.values {
		s = rv.pattern.ReplaceAllLiteralString(s, "["+string(rv.field)+"]")
	}
	return s
}
