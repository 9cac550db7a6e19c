package mtc

import (
	"regexp"
	"strings"
)

// Presence is whether a plan is known to carry a missing tooth clause.
type Presence string

const (
	PresenceYes     Presence = "yes"
	PresenceNo      Presence = "no"
	PresenceUnknown Presence = "unknown"
)

// ParsePresence maps free-form input to a Presence; anything unrecognized
// is unknown.
func ParsePresence(s string) Presence {
	switch Presence(strings.ToLower(strings.TrimSpace(s))) {
	case PresenceYes:
		return PresenceYes
	case PresenceNo:
		return PresenceNo
	}
	return PresenceUnknown
}

// Segment is one 271 eligibility/benefit entry as seen by the extractor.
type Segment struct {
	Code         string
	ServiceTypes []string
	Text         string
}

// Extraction is the clause presence inferred from a 271 response.
type Extraction struct {
	Presence   Presence `json:"presence"`
	Confidence float64  `json:"confidence"`
	Notes      []string `json:"notes"`
}

// Applies converts the presence to the tri-state used by normalized results.
func (e Extraction) Applies() *bool {
	switch e.Presence {
	case PresenceYes:
		v := true
		return &v
	case PresenceNo:
		v := false
		return &v
	}
	return nil
}

// Eligibility/benefit codes for non-covered services, exclusions and
// limitations.
var exclusionCodes = map[string]bool{"I": true, "X": true, "E": true, "5": true}

// Service types where a missing tooth clause is clinically relevant.
var prostheticServiceTypes = map[string]bool{
	"23": true, "24": true, "25": true, "26": true, "27": true, "28": true,
	"37": true, "40": true, "52": true, "53": true,
	"F3": true, "F4": true, "F6": true, "F7": true, "F8": true, "F9": true,
}

var positivePatterns = compileAll(
	`missing\s+tooth\s+clause`,
	`missing\s+tooth\s+exclusion`,
	`pre[- ]?existing\s+(tooth|teeth|edentulous)`,
	`tooth\s+(was\s+)?missing\s+prior`,
	`extracted\s+prior\s+to\s+(coverage|effective|enrollment)`,
	`\bmtc\b`,
	`missing\s+tooth\s+rule`,
	`prosthesis\s+not\s+covered.*prior`,
	`prior\s+to\s+(coverage|enrollment|effective).*missing`,
)

var negativePatterns = compileAll(
	`no\s+missing\s+tooth\s+(clause|exclusion)`,
	`missing\s+tooth\s+(clause|exclusion)\s+(not|does\s+not|doesn'?t)\s+apply`,
	`waived\s+missing\s+tooth`,
	`\bmtc\s+(not|waived|removed)`,
)

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

const (
	exclusionWeight = 2
	textWeight      = 3
	fullConfidence  = 6.0
)

const maxNoteLen = 200

// Extract scores 271 segments for clause language. An exclusion code on a
// prosthetic service type is a weak positive signal; explicit text is a
// strong one in either direction. Ties between explicit positive and
// negative text resolve to no.
func Extract(segments []Segment) Extraction {
	var pos, neg int
	var notes []string

	for _, s := range segments {
		text := strings.TrimSpace(s.Text)

		if exclusionCodes[strings.ToUpper(strings.TrimSpace(s.Code))] && anyProsthetic(s.ServiceTypes) {
			pos += exclusionWeight
			if text != "" {
				notes = append(notes, truncate(text))
			}
		}
		if text == "" {
			continue
		}
		if matchesAny(positivePatterns, text) {
			pos += textWeight
			notes = append(notes, truncate(text))
		}
		if matchesAny(negativePatterns, text) {
			neg += textWeight
		}
	}

	switch {
	case pos > 0 && pos > neg:
		return Extraction{Presence: PresenceYes, Confidence: confidence(pos), Notes: notes}
	case neg > 0 && neg >= pos:
		return Extraction{Presence: PresenceNo, Confidence: confidence(neg), Notes: notes}
	}
	return Extraction{Presence: PresenceUnknown}
}

func anyProsthetic(types []string) bool {
	for _, t := range types {
		if prostheticServiceTypes[strings.ToUpper(strings.TrimSpace(t))] {
			return true
		}
	}
	return false
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func confidence(signals int) float64 {
	c := float64(signals) / fullConfidence
	if c > 1 {
		return 1
	}
	return c
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) > maxNoteLen {
		return string(r[:maxNoteLen])
	}
	return s
}
