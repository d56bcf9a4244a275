package policy

// Severity represents the severity level of a policy violation.
type Severity string

const (
	// SeverityWarning is reported but does not block synthesis.
	SeverityWarning Severity = "warning"

	// SeverityError blocks synthesis unless policies are skipped.
	SeverityError Severity = "error"
)

// Policy is a named Rego module producing a deny set.
type Policy struct {
	// Name is the unique name of the policy.
	Name string `json:"name"`

	// Description provides a human-readable description.
	Description string `json:"description"`

	// Rego contains the policy source. It must define a deny set of
	// {"resource", "message"} objects or strings.
	Rego string `json:"rego"`

	// Severity is applied to every violation of the policy.
	Severity Severity `json:"severity"`
}

// Violation is a single deny result.
type Violation struct {
	Policy   string   `json:"policy"`
	Resource string   `json:"resource,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// HasErrors reports whether any violation has error severity.
func HasErrors(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}
