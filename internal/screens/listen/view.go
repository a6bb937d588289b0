package listen

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordiz/internal/listen"
	"github.com/abhisek/wordiz/internal/ui/components"
	"github.com/abhisek/wordiz/internal/ui/theme"
)

func (l *ListenScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString("  " + l.input.View())
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	p := l.progress
	if p.Total == 0 {
		b.WriteString(theme.Hint.Render("  Type some text and press Enter. Each word is read aloud in turn."))
	} else {
		b.WriteString("  " + stateLabel(p))
		b.WriteString("\n\n")
		bar := components.NewProgressBar("Played", l.played(), p.Total, true, min(width-4, 60))
		b.WriteString("  " + bar.View())
		b.WriteString("\n\n")
		words := l.renderWords(width-4, max(height-12, 3))
		b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(words))
	}

	if l.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Warning.Render("  " + l.notice))
	}
	if l.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.ErrorText.Render("  " + l.errMsg))
	}
	return b.String()
}

// played counts the words already read from the current queue.
func (l *ListenScreen) played() int {
	p := l.progress
	if p.State == listen.StateIdle {
		if l.notice != "" {
			return p.Total
		}
		return 0
	}
	return p.Cursor
}

func stateLabel(p listen.Progress) string {
	switch p.State {
	case listen.StatePlaying:
		return lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
			Render(fmt.Sprintf("▶ Playing  %q", p.Word))
	case listen.StatePaused:
		return lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
			Render(fmt.Sprintf("⏸ Paused at %q", p.Word))
	}
	return lipgloss.NewStyle().Foreground(theme.TextDim).Render("■ Stopped")
}

// renderWords lays out the queue as wrapped text with the current word
// and the selection highlighted.
func (l *ListenScreen) renderWords(width, height int) string {
	p := l.progress
	current := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Underline(true)
	selected := lipgloss.NewStyle().Reverse(true)
	done := lipgloss.NewStyle().Foreground(theme.TextDim)
	pending := lipgloss.NewStyle().Foreground(theme.Text)

	parts := make([]string, len(p.Words))
	for i, w := range p.Words {
		style := pending
		switch {
		case p.State != listen.StateIdle && i == p.Cursor:
			style = current
		case p.State != listen.StateIdle && i < p.Cursor:
			style = done
		}
		if i == l.selected {
			style = style.Inherit(selected)
		}
		parts[i] = style.Render(w)
	}

	return lipgloss.NewStyle().
		Width(max(width, 10)).
		MaxHeight(height).
		Render(strings.Join(parts, " "))
}
