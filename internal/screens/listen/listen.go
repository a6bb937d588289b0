// Package listen is the screen for reading pasted text aloud.
package listen

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/wordiz/internal/listen"
	"github.com/abhisek/wordiz/internal/router"
	"github.com/abhisek/wordiz/internal/screen"
	"github.com/abhisek/wordiz/internal/session"
	"github.com/abhisek/wordiz/internal/ui/components"
	"github.com/abhisek/wordiz/internal/ui/layout"
)

// Player is the part of listen.Scheduler the screen drives.
type Player interface {
	Start(text string) error
	Pause() listen.State
	Stop()
	JumpTo(index int) error
	Progress() listen.Progress
	SetObserver(fn func(listen.Event))
}

// Machine switches the session in and out of listen mode.
type Machine interface {
	EnterListen(ctx context.Context) (session.Status, error)
	LeaveListen(ctx context.Context) (session.Status, error)
}

// eventBuffer bounds how far the view may lag behind playback. Events
// beyond it are dropped; the next one refreshes from Progress anyway.
const eventBuffer = 64

type eventMsg struct {
	Event listen.Event
}

type enteredMsg struct {
	Status session.Status
	Err    error
}

// ListenScreen plays pasted text one word at a time.
type ListenScreen struct {
	player  Player
	machine Machine

	input    components.TextInput
	events   chan listen.Event
	closed   bool
	progress listen.Progress
	selected int

	errMsg string
	notice string
}

var _ screen.Screen = (*ListenScreen)(nil)
var _ screen.KeyHintProvider = (*ListenScreen)(nil)
var _ screen.BackHandler = (*ListenScreen)(nil)
var _ screen.StatusProvider = (*ListenScreen)(nil)

// New creates a ListenScreen. The screen owns the player's observer until
// it is left with Back.
func New(machine Machine, player Player) *ListenScreen {
	return &ListenScreen{
		player:  player,
		machine: machine,
		input:   components.NewTextInput("Paste or type text to hear it", 0),
		events:  make(chan listen.Event, eventBuffer),
	}
}

func (l *ListenScreen) Init() tea.Cmd {
	ch := l.events
	l.player.SetObserver(func(ev listen.Event) {
		select {
		case ch <- ev:
		default:
		}
	})
	l.progress = l.player.Progress()

	machine := l.machine
	enter := func() tea.Msg {
		st, err := machine.EnterListen(context.Background())
		return enteredMsg{Status: st, Err: err}
	}
	return tea.Batch(l.input.Init(), enter, waitForEvent(ch))
}

func waitForEvent(ch <-chan listen.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg{Event: ev}
	}
}

func (l *ListenScreen) Title() string {
	return "Listen"
}

func (l *ListenScreen) HeaderStatus() string {
	if l.progress.Total == 0 {
		return ""
	}
	return fmt.Sprintf("%s %d/%d", l.progress.State, l.position(), l.progress.Total)
}

// position is the 1-based number of the word being played, or of the last
// word played once the queue is idle.
func (l *ListenScreen) position() int {
	p := l.progress
	if p.State == listen.StateIdle {
		return 0
	}
	return min(p.Cursor+1, p.Total)
}

func (l *ListenScreen) KeyHints() []layout.KeyHint {
	if l.input.Focused() {
		hints := []layout.KeyHint{{Key: "Enter", Description: "Play"}}
		if l.progress.Total > 0 {
			hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Controls"})
		}
		return append(hints, layout.KeyHint{Key: "Esc", Description: "Home"})
	}
	hints := []layout.KeyHint{
		{Key: "Space", Description: "Pause/Resume"},
		{Key: "X", Description: "Stop"},
		{Key: "←→", Description: "Select"},
		{Key: "J", Description: "Say selected"},
		{Key: "R", Description: "Replay"},
		{Key: "Tab", Description: "Edit text"},
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Home"})
}

// Back stops playback, releases the observer and leaves listen mode.
func (l *ListenScreen) Back() tea.Cmd {
	l.release()
	l.player.Stop()
	machine := l.machine
	return func() tea.Msg {
		// Failing to leave only means listen mode was never entered.
		_, _ = machine.LeaveListen(context.Background())
		return router.PopScreenMsg{}
	}
}

// release detaches the observer before closing the channel so no send can
// race the close.
func (l *ListenScreen) release() {
	if l.closed {
		return
	}
	l.player.SetObserver(nil)
	close(l.events)
	l.closed = true
}

func (l *ListenScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case enteredMsg:
		if msg.Err != nil {
			l.errMsg = describe(msg.Err)
		} else if msg.Status.Warning != "" {
			l.notice = msg.Status.Warning
		}
		return l, nil

	case eventMsg:
		l.handleEvent(msg.Event)
		if l.closed {
			return l, nil
		}
		return l, waitForEvent(l.events)

	case tea.KeyMsg:
		return l.handleKey(msg)
	}

	if l.input.Focused() {
		var cmd tea.Cmd
		l.input, cmd = l.input.Update(msg)
		return l, cmd
	}
	return l, nil
}

func (l *ListenScreen) handleEvent(ev listen.Event) {
	l.progress = l.player.Progress()
	switch ev.Kind {
	case listen.EventWordStarted:
		l.selected = ev.Index
	case listen.EventFinished:
		l.notice = fmt.Sprintf("Finished %d words.", ev.Total)
	case listen.EventWordDone, listen.EventSpoken:
		if ev.Err != nil && !errors.Is(ev.Err, context.Canceled) {
			l.errMsg = fmt.Sprintf("Could not say %q: %v", ev.Word, ev.Err)
		}
	}
}

func (l *ListenScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if l.input.Focused() {
		switch key {
		case "enter":
			l.start(l.input.Value())
			return l, nil
		case "tab":
			if l.progress.Total > 0 {
				l.input.Blur()
			}
			return l, nil
		}
		var cmd tea.Cmd
		l.input, cmd = l.input.Update(msg)
		return l, cmd
	}

	switch key {
	case "tab", "i":
		return l, l.input.Focus()
	case "space", "p":
		l.clearMessages()
		l.player.Pause()
		l.progress = l.player.Progress()
	case "x":
		l.clearMessages()
		l.player.Stop()
		l.progress = l.player.Progress()
	case "r":
		l.start(l.input.Value())
	case "left", "h":
		if l.selected > 0 {
			l.selected--
		}
	case "right", "l":
		if l.selected < l.progress.Total-1 {
			l.selected++
		}
	case "home":
		l.selected = 0
	case "end":
		l.selected = max(l.progress.Total-1, 0)
	case "j", "enter":
		l.clearMessages()
		if err := l.player.JumpTo(l.selected); err != nil {
			l.errMsg = describe(err)
		}
		l.progress = l.player.Progress()
	}
	return l, nil
}

func (l *ListenScreen) start(text string) {
	l.clearMessages()
	if err := l.player.Start(text); err != nil {
		l.errMsg = describe(err)
		return
	}
	l.input.Blur()
	l.selected = 0
	l.progress = l.player.Progress()
}

func (l *ListenScreen) clearMessages() {
	l.errMsg = ""
	l.notice = ""
}

func describe(err error) string {
	var verr *listen.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	var serr *session.ValidationError
	if errors.As(err, &serr) {
		return serr.Message
	}
	return err.Error()
}
