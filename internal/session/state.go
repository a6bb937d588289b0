package session

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/abhisek/wordiz/internal/schemas"
	"github.com/abhisek/wordiz/internal/vocab"
)

// SessionState is the progress of one study mode.
type SessionState struct {
	// CurrentPage is 1-based for Learn and Review and always 0 for Exam.
	CurrentPage int `json:"currentPage,omitempty"`

	// Selections holds the answers given on the current page.
	Selections map[string]vocab.Answer `json:"selections"`
}

// AppState is the single persisted document describing where the learner is.
type AppState struct {
	ActiveMode vocab.Mode `json:"activeMode"`

	// SuspendedMode is the study mode that was active when listen mode
	// started. It is empty unless ActiveMode is listen.
	SuspendedMode vocab.Mode `json:"suspendedMode,omitempty"`

	// ClientID identifies this installation. It survives everything except
	// a full reset.
	ClientID string `json:"clientId"`

	Learn  SessionState `json:"learn"`
	Exam   SessionState `json:"exam"`
	Review SessionState `json:"review"`
}

// DefaultSession returns the fresh state for mode.
func DefaultSession(mode vocab.Mode) SessionState {
	s := SessionState{Selections: map[string]vocab.Answer{}}
	if mode.Paginated() {
		s.CurrentPage = 1
	}
	return s
}

// DefaultState returns the state used on first run and after a reset.
func DefaultState() AppState {
	return AppState{
		ActiveMode: vocab.ModeNone,
		ClientID:   uuid.NewString(),
		Learn:      DefaultSession(vocab.ModeLearn),
		Exam:       DefaultSession(vocab.ModeExam),
		Review:     DefaultSession(vocab.ModeReview),
	}
}

// StudyMode returns the study mode that owns the learner's progress: the
// active mode, or the suspended one while listening.
func (s AppState) StudyMode() vocab.Mode {
	if s.ActiveMode == vocab.ModeListen {
		return s.SuspendedMode
	}
	if s.ActiveMode.IsStudy() {
		return s.ActiveMode
	}
	return vocab.ModeNone
}

// Session returns the session owned by mode, or nil for modes without one.
func (s *AppState) Session(mode vocab.Mode) *SessionState {
	switch mode {
	case vocab.ModeLearn:
		return &s.Learn
	case vocab.ModeExam:
		return &s.Exam
	case vocab.ModeReview:
		return &s.Review
	}
	return nil
}

// Clone returns a deep copy.
func (s AppState) Clone() AppState {
	s.Learn = s.Learn.clone()
	s.Exam = s.Exam.clone()
	s.Review = s.Review.clone()
	return s
}

func (s SessionState) clone() SessionState {
	if s.Selections == nil {
		s.Selections = map[string]vocab.Answer{}
	} else {
		s.Selections = maps.Clone(s.Selections)
	}
	return s
}

var appStateSchema = schemas.Definition{
	Name: "app_state",
	Schema: map[string]any{
		"type":     "object",
		"required": []string{"activeMode", "learn", "exam", "review"},
		"properties": map[string]any{
			"activeMode": map[string]any{
				"enum": []string{"", "learn", "exam", "review", "listen"},
			},
			"suspendedMode": map[string]any{
				"enum": []string{"", "learn", "exam", "review"},
			},
			"clientId": map[string]any{"type": "string"},
			"learn":    sessionSchema,
			"exam":     sessionSchema,
			"review":   sessionSchema,
		},
	},
}

var sessionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"currentPage": map[string]any{"type": "integer", "minimum": 0},
		"selections": map[string]any{
			"type": []string{"object", "null"},
			"additionalProperties": map[string]any{
				"enum": []string{string(vocab.Known), string(vocab.Unknown)},
			},
		},
	},
}

// EncodeState serializes s for storage.
func EncodeState(s AppState) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode app state: %w", err)
	}
	return b, nil
}

// DecodeState parses and validates a stored snapshot. Any error means the
// snapshot must be treated as absent; a partial state is never returned.
func DecodeState(data []byte) (AppState, error) {
	if err := schemas.ValidateBytes(appStateSchema, data); err != nil {
		return AppState{}, fmt.Errorf("decode app state: %w", err)
	}

	var s AppState
	if err := json.Unmarshal(data, &s); err != nil {
		return AppState{}, fmt.Errorf("decode app state: %w", err)
	}

	for _, mode := range vocab.StudyModes {
		sess := s.Session(mode)
		if sess.Selections == nil {
			sess.Selections = map[string]vocab.Answer{}
		}
		if mode.Paginated() && sess.CurrentPage < 1 {
			sess.CurrentPage = 1
		}
		if !mode.Paginated() {
			sess.CurrentPage = 0
		}
	}
	if s.ActiveMode != vocab.ModeListen {
		s.SuspendedMode = vocab.ModeNone
	}
	if s.ClientID == "" {
		s.ClientID = uuid.NewString()
	}
	return s, nil
}
