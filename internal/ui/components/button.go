package components

import (
	"github.com/abhisek/wordiz/internal/ui/theme"
)

// Button is a styled, non-interactive button label. The owning screen
// decides what the key press does.
type Button struct {
	Label   string
	Enabled bool
}

// NewButton creates a new button.
func NewButton(label string, enabled bool) Button {
	return Button{Label: label, Enabled: enabled}
}

// View renders the button.
func (b Button) View() string {
	if b.Enabled {
		return theme.ButtonActive.Render("▸ " + b.Label)
	}
	return theme.ButtonInactive.Render(b.Label)
}
