package verification

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pulpai/pulp/internal/domain/eligibility"
)

// Source tags where a verification result came from.
type Source string

const (
	SourceStedi           Source = "stedi"
	SourceFixture         Source = "fixture"
	SourceFallbackFixture Source = "stedi_fallback_fixture"
	SourceGeneric         Source = "mock_generic"
)

// DefaultTrigger is recorded when the caller does not say what started the
// verification.
const DefaultTrigger = "manual"

// Request is the body of POST /verify. Several fields accept a camelCase
// alias; the snake_case name wins when both are sent.
type Request struct {
	PatientID     string `json:"patient_id"`
	MemberID      string `json:"member_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	DateOfBirth   string `json:"date_of_birth"`
	InsuranceName string `json:"insurance_name"`
	PayerID       string `json:"payer_id"`
	Trigger       string `json:"trigger"`
}

type requestWire struct {
	PatientID      *string `json:"patient_id"`
	MemberID       *string `json:"member_id"`
	MemberIDAlt    *string `json:"memberId"`
	FirstName      *string `json:"first_name"`
	FirstNameAlt   *string `json:"firstName"`
	LastName       *string `json:"last_name"`
	LastNameAlt    *string `json:"lastName"`
	DateOfBirth    *string `json:"date_of_birth"`
	DateOfBirthAlt *string `json:"dob"`
	InsuranceName  *string `json:"insurance_name"`
	InsuranceAlt   *string `json:"insurance"`
	PayerID        *string `json:"payer_id"`
	Trigger        *string `json:"trigger"`
}

// UnmarshalJSON resolves field aliases and trims every value.
func (r *Request) UnmarshalJSON(data []byte) error {
	var w requestWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Request{
		PatientID:     pick(w.PatientID),
		MemberID:      pick(w.MemberID, w.MemberIDAlt),
		FirstName:     pick(w.FirstName, w.FirstNameAlt),
		LastName:      pick(w.LastName, w.LastNameAlt),
		DateOfBirth:   pick(w.DateOfBirth, w.DateOfBirthAlt),
		InsuranceName: pick(w.InsuranceName, w.InsuranceAlt),
		PayerID:       pick(w.PayerID),
		Trigger:       pick(w.Trigger),
	}
	return nil
}

func pick(vals ...*string) string {
	for _, v := range vals {
		if v == nil {
			continue
		}
		if s := strings.TrimSpace(*v); s != "" {
			return s
		}
	}
	return ""
}

// Response is a normalized result annotated with its data source.
type Response struct {
	*eligibility.Result
	Source Source `json:"_source"`
}

// Outcome is the record handed to the persistence sink after a live
// provider check.
type Outcome struct {
	ID                 uuid.UUID
	PracticeID         string
	MemberIDUsed       string
	PayerIDUsed        string
	Trigger            string
	VerificationStatus eligibility.VerificationStatus
	PlanStatus         string
	PayerName          string
	Source             Source
	RawResponse        json.RawMessage
	NormalizedResult   *eligibility.Result
	DurationMs         int64
	CreatedAt          time.Time
}

// OutcomeSummary is the listing view of a stored outcome. Payloads and the
// member id are never returned.
type OutcomeSummary struct {
	ID                 uuid.UUID                      `json:"id"`
	PracticeID         string                         `json:"practice_id"`
	PayerIDUsed        string                         `json:"payer_id_used"`
	PayerName          string                         `json:"payer_name"`
	Trigger            string                         `json:"trigger"`
	VerificationStatus eligibility.VerificationStatus `json:"verification_status"`
	PlanStatus         string                         `json:"plan_status"`
	Source             Source                         `json:"source"`
	DurationMs         int64                          `json:"duration_ms"`
	CreatedAt          time.Time                      `json:"created_at"`
}
