package home

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/wordiz/internal/router"
	"github.com/abhisek/wordiz/internal/screen"
	listenscreen "github.com/abhisek/wordiz/internal/screens/listen"
	"github.com/abhisek/wordiz/internal/screens/placeholder"
	"github.com/abhisek/wordiz/internal/screens/study"
	"github.com/abhisek/wordiz/internal/session"
	"github.com/abhisek/wordiz/internal/ui/components"
	"github.com/abhisek/wordiz/internal/ui/layout"
	"github.com/abhisek/wordiz/internal/vocab"
)

const dashboardTimeout = 10 * time.Second

// Machine is the part of session.Machine reachable from the home screen.
type Machine interface {
	study.Machine
	listenscreen.Machine
	Reset(ctx context.Context) (session.Status, error)
	State() session.AppState
}

// StatsSource provides the dashboard figures.
type StatsSource interface {
	Stats(ctx context.Context) (vocab.Stats, error)
	ReviewWords(ctx context.Context) ([]vocab.ReviewWord, error)
}

// Options wires the home screen. Player and Sayer are nil when no speech
// engine is available, in which case SpeechErr says why.
type Options struct {
	Machine   Machine
	Player    listenscreen.Player
	Sayer     study.Sayer
	Stats     StatsSource
	SpeechErr error
}

type dashboardMsg struct {
	stats  vocab.Stats
	review []vocab.ReviewWord
	err    error
}

type resetMsg struct {
	err error
}

const (
	labelLearn  = "LEARN"
	labelExam   = "EXAM"
	labelReview = "REVIEW"
	labelListen = "LISTEN"
	labelReset  = "RESET PROGRESS"
	labelExit   = "EXIT"
)

// HomeScreen is the main menu with a dashboard of the learner's progress.
type HomeScreen struct {
	opts Options
	menu components.Menu

	stats    vocab.Stats
	review   []vocab.ReviewWord
	loaded   bool
	statsErr string

	confirmReset bool
	notice       string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Revealer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(opts Options) *HomeScreen {
	h := &HomeScreen{opts: opts}

	items := []components.MenuItem{
		{Label: labelLearn, Action: h.studyAction(vocab.ModeLearn)},
		{Label: labelExam, Action: h.studyAction(vocab.ModeExam)},
		{Label: labelReview, Action: h.studyAction(vocab.ModeReview)},
		{Label: labelListen, Action: h.listenAction},
		{Label: labelReset, Action: func() tea.Cmd {
			h.confirmReset = true
			return nil
		}},
		{Label: labelExit, Action: func() tea.Cmd { return tea.Quit }},
	}
	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) studyAction(mode vocab.Mode) func() tea.Cmd {
	return func() tea.Cmd {
		h.notice = ""
		s := study.New(h.opts.Machine, mode, h.opts.Sayer)
		return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
	}
}

func (h *HomeScreen) listenAction() tea.Cmd {
	h.notice = ""
	var next screen.Screen
	if h.opts.Player == nil {
		reason := "No speech engine found. Install espeak or festival, or set speech.remote_url."
		if h.opts.SpeechErr != nil {
			reason = h.opts.SpeechErr.Error()
		}
		next = placeholder.New("Listen", reason)
	} else {
		next = listenscreen.New(h.opts.Machine, h.opts.Player)
	}
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadDashboard()
}

// Reveal refreshes the dashboard after a study or listen screen closes.
func (h *HomeScreen) Reveal() tea.Cmd {
	return h.loadDashboard()
}

// loadDashboard fetches stats and the review list concurrently.
func (h *HomeScreen) loadDashboard() tea.Cmd {
	src := h.opts.Stats
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dashboardTimeout)
		defer cancel()

		var msg dashboardMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			stats, err := src.Stats(gctx)
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			msg.stats = stats
			return nil
		})
		g.Go(func() error {
			words, err := src.ReviewWords(gctx)
			if err != nil {
				return fmt.Errorf("review list: %w", err)
			}
			msg.review = words
			return nil
		})
		msg.err = g.Wait()
		return msg
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		if msg.err != nil {
			h.statsErr = msg.err.Error()
			return h, nil
		}
		h.statsErr = ""
		h.stats = msg.stats
		h.review = msg.review
		h.loaded = true
		return h, nil

	case resetMsg:
		if msg.err != nil {
			h.notice = "Reset failed: " + msg.err.Error()
			return h, nil
		}
		h.notice = "All progress has been reset."
		return h, h.loadDashboard()

	case tea.KeyMsg:
		if h.confirmReset {
			return h.handleConfirm(msg)
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) handleConfirm(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		h.confirmReset = false
		machine := h.opts.Machine
		return h, func() tea.Msg {
			_, err := machine.Reset(context.Background())
			return resetMsg{err: err}
		}
	case "n", "N", "esc":
		h.confirmReset = false
	}
	return h, nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	if h.confirmReset {
		return []layout.KeyHint{
			{Key: "Y", Description: "Reset"},
			{Key: "N", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) mood() mood {
	switch {
	case h.loaded && h.stats.Review >= worriedReviewCount:
		return moodWorried
	case h.loaded && h.stats.Total > 0 && h.stats.Known >= h.stats.Total:
		return moodProud
	}
	return moodIdle
}
