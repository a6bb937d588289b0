package vocab

import (
	"cmp"
	"fmt"
	"slices"
)

// Mode identifies which study flow is active.
type Mode string

const (
	ModeNone   Mode = ""
	ModeLearn  Mode = "learn"
	ModeExam   Mode = "exam"
	ModeReview Mode = "review"
	ModeListen Mode = "listen"
)

// StudyModes lists the modes that own a paginated session.
var StudyModes = []Mode{ModeLearn, ModeExam, ModeReview}

// IsStudy reports whether the mode owns a SessionState.
func (m Mode) IsStudy() bool {
	return m == ModeLearn || m == ModeExam || m == ModeReview
}

// Paginated reports whether the mode advances through pages.
// Exam is a single batch.
func (m Mode) Paginated() bool {
	return m == ModeLearn || m == ModeReview
}

// DisplayName returns the label used in menus and headers.
func (m Mode) DisplayName() string {
	switch m {
	case ModeLearn:
		return "Learn"
	case ModeExam:
		return "Exam"
	case ModeReview:
		return "Review"
	case ModeListen:
		return "Listen"
	default:
		return "Home"
	}
}

// ParseMode converts a stored or user-supplied string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeNone, ModeLearn, ModeExam, ModeReview, ModeListen:
		return m, nil
	}
	return ModeNone, fmt.Errorf("unknown mode %q", s)
}

// Answer is the learner's verdict on a single word.
type Answer string

const (
	Known   Answer = "know"
	Unknown Answer = "dont-know"
)

// Valid reports whether a is one of the two answer values.
func (a Answer) Valid() bool {
	return a == Known || a == Unknown
}

// Batch is one page of words for the active mode.
type Batch struct {
	Words      []string
	TotalPages int

	// Completed and Message are forwarded from the server when it
	// signals that a mode has nothing left.
	Completed bool
	Message   string
}

// EmptyBatch is the normalized result for rejected or unreadable payloads.
func EmptyBatch() Batch {
	return Batch{TotalPages: 1}
}

// Len returns the number of words in the batch.
func (b Batch) Len() int {
	return len(b.Words)
}

// Contains reports whether word is part of the batch.
func (b Batch) Contains(word string) bool {
	for _, w := range b.Words {
		if w == word {
			return true
		}
	}
	return false
}

// ReviewWord is an entry of the learner's mistake list.
type ReviewWord struct {
	Word     string `json:"word"`
	Mistakes int    `json:"mistakes"`
}

// SortByMistakes orders words by mistake count, highest first, then
// alphabetically.
func SortByMistakes(words []ReviewWord) {
	slices.SortStableFunc(words, func(a, b ReviewWord) int {
		if c := cmp.Compare(b.Mistakes, a.Mistakes); c != 0 {
			return c
		}
		return cmp.Compare(a.Word, b.Word)
	})
}

// Stats summarizes the learner's progress as reported by the word store.
type Stats struct {
	Total                int     `json:"total"`
	Known                int     `json:"known"`
	Review               int     `json:"review"`
	CurrentPosition      int     `json:"current_position"`
	CompletionPercentage float64 `json:"completion_percentage"`
}
