package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/wordiz/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// BackHandler is an optional interface for screens that must clean up
// before Esc pops them. The returned command is responsible for popping.
type BackHandler interface {
	Back() tea.Cmd
}

// StatusProvider is an optional interface for screens that show a status
// in the header, such as the current page.
type StatusProvider interface {
	HeaderStatus() string
}

// Revealer is an optional interface for screens that refresh when the
// screen above them is popped.
type Revealer interface {
	Reveal() tea.Cmd
}
