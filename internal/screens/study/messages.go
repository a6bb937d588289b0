package study

import (
	"github.com/abhisek/wordiz/internal/session"
)

// statusMsg carries the machine status after a load, answer or page turn.
type statusMsg struct {
	Status session.Status
	Err    error

	// newPage is set when the words may have changed, so the highlight
	// returns to the top.
	newPage bool
}

// submittedMsg is sent when a submit finishes.
type submittedMsg struct {
	Outcome session.Outcome
	Status  session.Status
	Err     error
}

// spokenMsg reports the result of pronouncing the highlighted word.
type spokenMsg struct {
	Word string
	Err  error
}
