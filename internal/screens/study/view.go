package study

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordiz/internal/ui/components"
	"github.com/abhisek/wordiz/internal/ui/theme"
)

func (s *StudyScreen) View(width, height int) string {
	if s.confirmQuit {
		return renderQuitConfirm(s.Title(), width, height)
	}

	var b strings.Builder

	b.WriteString(s.renderInfoLine(width))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	// Rows left for the word list after the info, progress, button and
	// message lines.
	listHeight := height - 10
	if listHeight < 3 {
		listHeight = 3
	}

	switch {
	case s.status.Loaded:
		total := len(s.status.Words)
		bar := components.NewProgressBar("Answered", s.status.Answered(), total, true, min(width-4, 60))
		b.WriteString("  " + bar.View())
		b.WriteString("\n\n")
		b.WriteString(indent(s.list.View(s.status.Selections, listHeight), "  "))
		b.WriteString("\n\n")
		b.WriteString("  " + components.NewButton("Submit", s.status.CanSubmit).View())
	case s.busy:
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("  " + s.spinner.View() + " Loading words..."))
	default:
		b.WriteString(theme.Hint.Render("  No page loaded. Press R to retry."))
	}

	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Warning.Render("  " + s.notice))
	}
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.ErrorText.Render("  " + s.errMsg))
	}

	return b.String()
}

func (s *StudyScreen) renderInfoLine(width int) string {
	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + s.mode.DisplayName())

	var parts []string
	if s.mode.Paginated() && s.status.Page > 0 {
		if s.status.TotalPages > 0 {
			parts = append(parts, fmt.Sprintf("Page %d of %d", s.status.Page, s.status.TotalPages))
		} else {
			parts = append(parts, fmt.Sprintf("Page %d", s.status.Page))
		}
	}
	if s.status.Loaded {
		parts = append(parts, fmt.Sprintf("%d/%d answered", s.status.Answered(), len(s.status.Words)))
	}
	right := lipgloss.NewStyle().Foreground(theme.TextDim).Render(strings.Join(parts, "  ·  "))

	line := left
	if pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4; pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}
	return line
}

func renderQuitConfirm(mode string, width, height int) string {
	body := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Leave "+mode+"?") + "\n\n" +
		theme.Hint.Render("Progress in this mode will be reset.") + "\n\n" +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("Y to leave, N to keep going")

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(theme.Card.Render(body))
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
