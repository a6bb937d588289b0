// Package study is the screen for the learn, exam and review modes.
package study

import (
	"context"
	"errors"
	"fmt"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/wordiz/internal/router"
	"github.com/abhisek/wordiz/internal/screen"
	"github.com/abhisek/wordiz/internal/screens/summary"
	"github.com/abhisek/wordiz/internal/session"
	"github.com/abhisek/wordiz/internal/ui/components"
	"github.com/abhisek/wordiz/internal/ui/layout"
	"github.com/abhisek/wordiz/internal/vocab"
)

// Machine is the part of session.Machine the screen drives.
type Machine interface {
	Enter(ctx context.Context, mode vocab.Mode) (session.Status, error)
	Reload(ctx context.Context) (session.Status, error)
	Record(ctx context.Context, word string, answer vocab.Answer) (session.Status, error)
	Submit(ctx context.Context) (session.Outcome, session.Status, error)
	NextPage(ctx context.Context) (session.Status, error)
	PrevPage(ctx context.Context) (session.Status, error)
	ReturnHome(ctx context.Context) session.Status
}

// Sayer pronounces a single word.
type Sayer interface {
	Say(word string) error
}

// StudyScreen shows one page of words and collects an answer for each.
type StudyScreen struct {
	machine Machine
	sayer   Sayer
	mode    vocab.Mode

	status  session.Status
	list    components.WordList
	spinner spinner.Model

	busy        bool // an operation is in flight
	confirmQuit bool
	leaving     bool // ReturnHome has been requested
	errMsg      string
	notice      string
}

var _ screen.Screen = (*StudyScreen)(nil)
var _ screen.KeyHintProvider = (*StudyScreen)(nil)
var _ screen.BackHandler = (*StudyScreen)(nil)
var _ screen.StatusProvider = (*StudyScreen)(nil)

// New creates a StudyScreen for mode. sayer may be nil when no speech
// engine is available.
func New(machine Machine, mode vocab.Mode, sayer Sayer) *StudyScreen {
	return &StudyScreen{
		machine: machine,
		sayer:   sayer,
		mode:    mode,
		busy:    true,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (s *StudyScreen) Init() tea.Cmd {
	return tea.Batch(s.spinner.Tick, s.enter())
}

func (s *StudyScreen) Title() string {
	return s.mode.DisplayName()
}

func (s *StudyScreen) HeaderStatus() string {
	if !s.mode.Paginated() || s.status.Page == 0 {
		return ""
	}
	if s.status.TotalPages == 0 {
		return fmt.Sprintf("Page %d", s.status.Page)
	}
	return fmt.Sprintf("Page %d/%d", s.status.Page, s.status.TotalPages)
}

func (s *StudyScreen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if s.busy {
		return []layout.KeyHint{{Key: "Esc", Description: "Home"}}
	}
	if !s.status.Loaded {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Home"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "K", Description: "Know"},
		{Key: "U", Description: "Don't know"},
	}
	if s.sayer != nil {
		hints = append(hints, layout.KeyHint{Key: "S", Description: "Say"})
	}
	if s.mode.Paginated() {
		hints = append(hints, layout.KeyHint{Key: "N/P", Description: "Page"})
	}
	if s.status.CanSubmit {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Submit"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Home"})
}

// Back asks for confirmation before abandoning the session. A second Esc
// dismisses the question.
func (s *StudyScreen) Back() tea.Cmd {
	s.confirmQuit = !s.confirmQuit
	return nil
}

func (s *StudyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if s.leaving {
		return s, nil
	}
	switch msg := msg.(type) {
	case statusMsg:
		return s.handleStatus(msg)

	case submittedMsg:
		return s.handleSubmitted(msg)

	case spokenMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		return s, nil

	case spinner.TickMsg:
		if !s.busy {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *StudyScreen) handleStatus(msg statusMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	s.applyStatus(msg.Status, msg.newPage)
	if msg.Err != nil {
		s.errMsg = describe(msg.Err)
		return s, nil
	}
	if done := msg.Status.Completed; done != nil {
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: summary.New(*done)} }
	}
	return s, nil
}

func (s *StudyScreen) handleSubmitted(msg submittedMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	s.applyStatus(msg.Status, false)
	if msg.Err != nil {
		s.errMsg = describe(msg.Err)
		return s, nil
	}

	out := msg.Outcome
	switch out.Kind {
	case session.OutcomeCompleted:
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: summary.New(out)} }
	case session.OutcomeAdvanced:
		s.notice = fmt.Sprintf("Page done: %s known. Loading page %d…", out.Score, out.Page)
		if n := len(out.MistakesAdded); n > 0 {
			s.notice = fmt.Sprintf("Page done: %s known, %d added to review. Loading page %d…", out.Score, n, out.Page)
		}
		return s.run(s.reload())
	}
	return s, nil
}

func (s *StudyScreen) applyStatus(st session.Status, newPage bool) {
	if newPage {
		s.list = components.NewWordList(st.Words)
	} else {
		s.list.SetWords(st.Words)
	}
	s.status = st
	if st.Warning != "" {
		s.notice = st.Warning
	}
}

func (s *StudyScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			if s.busy {
				// A pending Enter or Submit would reactivate the mode.
				s.notice = "Still waiting for the server. Try again in a moment."
				return s, nil
			}
			s.confirmQuit = false
			s.leaving = true
			return s, s.returnHome()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if s.busy {
		return s, nil
	}

	switch key {
	case "r":
		switch {
		case s.status.Loaded:
			return s, nil
		case s.status.Mode != s.mode:
			// Entering never succeeded.
			return s.run(s.enter())
		default:
			return s.run(s.reload())
		}
	case "up", "down", "home", "end":
		s.list, _ = s.list.Update(msg)
		return s, nil
	}

	if !s.status.Loaded {
		return s, nil
	}

	switch key {
	case "k", "right":
		return s.answer(vocab.Known)
	case "u", "left":
		return s.answer(vocab.Unknown)
	case "enter":
		return s.run(s.submit())
	case "n", "pgdown":
		if s.mode.Paginated() {
			return s.run(s.turn(s.machine.NextPage))
		}
	case "p", "pgup":
		if s.mode.Paginated() {
			return s.run(s.turn(s.machine.PrevPage))
		}
	case "s":
		return s, s.say()
	}
	return s, nil
}

func (s *StudyScreen) answer(a vocab.Answer) (screen.Screen, tea.Cmd) {
	word := s.list.Current()
	if word == "" {
		return s, nil
	}
	// Move ahead optimistically; the returned selections settle the view.
	answered := make(map[string]vocab.Answer, len(s.status.Selections)+1)
	for w, v := range s.status.Selections {
		answered[w] = v
	}
	answered[word] = a
	s.list.Next(answered)

	return s.run(func() tea.Msg {
		st, err := s.machine.Record(context.Background(), word, a)
		return statusMsg{Status: st, Err: err}
	})
}

// run marks the screen busy and clears transient messages before cmd.
func (s *StudyScreen) run(cmd tea.Cmd) (screen.Screen, tea.Cmd) {
	s.busy = true
	s.errMsg = ""
	return s, tea.Batch(cmd, s.spinner.Tick)
}

func (s *StudyScreen) enter() tea.Cmd {
	return func() tea.Msg {
		st, err := s.machine.Enter(context.Background(), s.mode)
		return statusMsg{Status: st, Err: err, newPage: true}
	}
}

func (s *StudyScreen) reload() tea.Cmd {
	return func() tea.Msg {
		st, err := s.machine.Reload(context.Background())
		return statusMsg{Status: st, Err: err, newPage: true}
	}
}

func (s *StudyScreen) turn(fn func(context.Context) (session.Status, error)) tea.Cmd {
	s.notice = ""
	return func() tea.Msg {
		st, err := fn(context.Background())
		return statusMsg{Status: st, Err: err, newPage: true}
	}
}

func (s *StudyScreen) submit() tea.Cmd {
	s.notice = ""
	return func() tea.Msg {
		out, st, err := s.machine.Submit(context.Background())
		return submittedMsg{Outcome: out, Status: st, Err: err}
	}
}

func (s *StudyScreen) returnHome() tea.Cmd {
	return func() tea.Msg {
		s.machine.ReturnHome(context.Background())
		return router.PopScreenMsg{}
	}
}

func (s *StudyScreen) say() tea.Cmd {
	word := s.list.Current()
	if word == "" {
		return nil
	}
	if s.sayer == nil {
		s.errMsg = "Speech is not available."
		return nil
	}
	sayer := s.sayer
	return func() tea.Msg {
		return spokenMsg{Word: word, Err: sayer.Say(word)}
	}
}

// describe turns an operation error into a line for the learner.
func describe(err error) string {
	var verr *session.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}
