package session

import (
	"fmt"

	"github.com/abhisek/wordiz/internal/vocab"
)

// Score is the known/unknown split of one submitted page.
type Score struct {
	Known   int
	Unknown int
}

// Total returns the number of answered words.
func (s Score) Total() int { return s.Known + s.Unknown }

// Ratio returns Known/Total, or 0 for an empty score.
func (s Score) Ratio() float64 {
	if s.Total() == 0 {
		return 0
	}
	return float64(s.Known) / float64(s.Total())
}

// String renders the score as "known/total".
func (s Score) String() string {
	return fmt.Sprintf("%d/%d", s.Known, s.Total())
}

// OutcomeKind tells the caller what a submit or load did to the session.
type OutcomeKind int

const (
	// OutcomeAdvanced means the session moved to the next page; the caller
	// loads it with Reload.
	OutcomeAdvanced OutcomeKind = iota + 1
	// OutcomeCompleted means the mode finished and the machine is idle.
	OutcomeCompleted
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeCompleted:
		return "completed"
	}
	return "unknown"
}

// Outcome describes the result of a submit or of a load that found no
// words left.
type Outcome struct {
	Kind OutcomeKind
	Mode vocab.Mode

	// Page is the page the session moved to. Set for OutcomeAdvanced.
	Page int

	Score         Score
	MistakesAdded []string

	// Message is the text shown on the completion screen.
	Message string
}

// Tally partitions the answered words, in batch order, into known and
// unknown. Words without a selection are skipped.
func Tally(batch vocab.Batch, selections map[string]vocab.Answer) (known, unknown []string) {
	for _, w := range batch.Words {
		switch selections[w] {
		case vocab.Known:
			known = append(known, w)
		case vocab.Unknown:
			unknown = append(unknown, w)
		}
	}
	return known, unknown
}

// completionMessage picks the text for a finished mode. A message sent by
// the server wins.
func completionMessage(mode vocab.Mode, batch vocab.Batch, submitted bool, score Score) string {
	if batch.Message != "" && batch.Completed {
		return batch.Message
	}
	switch mode {
	case vocab.ModeExam:
		if !submitted {
			return "No words found."
		}
		msg := fmt.Sprintf("Exam finished! Your score: %s", score)
		if score.Unknown > 0 {
			msg += fmt.Sprintf(". Added %d words to review list", score.Unknown)
		}
		return msg
	case vocab.ModeLearn:
		if submitted || batch.Completed {
			return "Congratulations! You have learned all the words."
		}
		return "You have learned all the words!"
	case vocab.ModeReview:
		if submitted || batch.Completed {
			return "Congratulations! You have reviewed all mistake words."
		}
		return "No words to review. Great job!"
	}
	return "Session complete! Your results have been saved."
}
