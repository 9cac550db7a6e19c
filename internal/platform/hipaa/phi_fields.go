package hipaa

// PHIField names a caller-supplied identity field that must never reach
// logs, error details or unencrypted storage.
type PHIField string

const (
	PHIMemberID    PHIField = "member_id"
	PHIFirstName   PHIField = "first_name"
	PHILastName    PHIField = "last_name"
	PHIDateOfBirth PHIField = "date_of_birth"
)

// PHIFields returns every identity field treated as PHI on a verification
// request, in the order they are redacted.
func PHIFields() []PHIField {
	return []PHIField{
		PHIMemberID,
		PHIDateOfBirth,
		PHIFirstName,
		PHILastName,
	}
}
