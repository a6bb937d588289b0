package wordstore

import (
	"fmt"
)

// NetworkError indicates the word store could not be reached, answered with
// a non-2xx status, or did not answer before the fetch timeout.
type NetworkError struct {
	Op      string
	Status  int
	Timeout bool
	Err     error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("%s: timed out waiting for word store", e.Op)
	case e.Status != 0:
		return fmt.Sprintf("%s: word store returned HTTP %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: word store unreachable: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: word store unreachable", e.Op)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedResponseError indicates the word store answered with a payload
// that does not match the expected contract.
type MalformedResponseError struct {
	Op   string
	Body []byte
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// RejectedError indicates the word store understood the request but
// answered success=false.
type RejectedError struct {
	Op      string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: rejected by word store: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: rejected by word store", e.Op)
}
