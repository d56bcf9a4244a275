package contextstore

import "fmt"

// MissingContextError reports a required context value that is absent or null.
// Assembly must stop when it is returned.
type MissingContextError struct {
	Key string
	// Profile is set when the key belongs to an environment profile.
	Profile string
}

func (e *MissingContextError) Error() string {
	if e.Profile != "" {
		return fmt.Sprintf("missing required context value %q in profile %q", e.Key, e.Profile)
	}
	return fmt.Sprintf("missing required context value %q", e.Key)
}
