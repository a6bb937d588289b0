package session

import "fmt"

// ValidationError reports an operation that is not allowed in the current
// state or with the given input. The state is unchanged.
type ValidationError struct {
	Op      string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}
