package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/wordiz/internal/listen"
	"github.com/abhisek/wordiz/internal/router"
	"github.com/abhisek/wordiz/internal/screen"
	"github.com/abhisek/wordiz/internal/screens/home"
	"github.com/abhisek/wordiz/internal/screens/study"
	"github.com/abhisek/wordiz/internal/session"
	"github.com/abhisek/wordiz/internal/ui/layout"
	"github.com/abhisek/wordiz/internal/vocab"
)

// Options holds the dependencies the TUI is built from.
type Options struct {
	Machine *session.Machine

	// Player is nil when no speech engine is available; SpeechErr then
	// explains why.
	Player    *listen.Scheduler
	SpeechErr error

	Stats  home.StatsSource
	Logger *zap.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int

	player   *listen.Scheduler
	logger   *zap.Logger
	initCmds []tea.Cmd
}

// newAppModel restores the saved session and builds the screen stack.
// When a study mode was active at exit, its screen opens on top of home.
func newAppModel(opts Options) AppModel {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	homeOpts := home.Options{
		Machine:   opts.Machine,
		Stats:     opts.Stats,
		SpeechErr: opts.SpeechErr,
	}
	var sayer study.Sayer
	if opts.Player != nil {
		homeOpts.Player = opts.Player
		sayer = opts.Player
		homeOpts.Sayer = sayer
	}

	homeScreen := home.New(homeOpts)
	m := AppModel{
		router: router.New(homeScreen),
		player: opts.Player,
		logger: logger,
	}
	m.initCmds = append(m.initCmds, homeScreen.Init())

	st, resume := opts.Machine.Restore(context.Background())
	if st.Warning != "" {
		logger.Warn("restore warning", zap.String("warning", st.Warning))
	}
	if resume != vocab.ModeNone {
		logger.Info("resuming session", zap.String("mode", string(resume)))
		m.initCmds = append(m.initCmds, m.router.Push(study.New(opts.Machine, resume, sayer)))
	}
	return m
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.initCmds...)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.stopPlayback()
			return m, tea.Quit
		case "esc":
			if back, ok := m.router.Active().(screen.BackHandler); ok {
				return m, back.Back()
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) stopPlayback() {
	if m.player != nil {
		m.player.Stop()
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the header, active screen and footer for the current size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
	}
	if sp, ok := active.(screen.StatusProvider); ok {
		status = sp.HeaderStatus()
	}
	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if opts.Player != nil {
		opts.Player.Stop()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
