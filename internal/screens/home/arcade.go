package home

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordiz/internal/ui/components"
	"github.com/abhisek/wordiz/internal/ui/layout"
	"github.com/abhisek/wordiz/internal/ui/theme"
	"github.com/abhisek/wordiz/internal/vocab"
)

const arcadeTitleFull = `██╗    ██╗ ██████╗ ██████╗ ██████╗ ██╗███████╗
██║    ██║██╔═══██╗██╔══██╗██╔══██╗██║╚══███╔╝
██║ █╗ ██║██║   ██║██████╔╝██║  ██║██║  ███╔╝
██║███╗██║██║   ██║██╔══██╗██║  ██║██║ ███╔╝
╚███╔███╔╝╚██████╔╝██║  ██║██████╔╝██║███████╗
 ╚══╝╚══╝  ╚═════╝ ╚═╝  ╚═╝╚═════╝ ╚═╝╚══════╝`

const arcadeTitleCompact = "W · O · R · D · I · Z"

// reviewListLimit caps the words shown in the review card.
const reviewListLimit = 5

// worriedReviewCount is the review list size at which the card worries.
const worriedReviewCount = 10

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header, footer and frame gaps.
	termHeight := height + 8
	compact := layout.IsCompactHeight(termHeight) || layout.IsCompactWidth(width)

	cw := components.ContentWidth(width)

	if h.confirmReset {
		return components.CabinetFrame(renderResetConfirm(cw), width, height)
	}

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if !compact {
		m := h.mood()
		sections = append(sections, renderCentered(renderFlashcard(m, flashcardWord(m, h.review)), cw))
	}
	sections = append(sections, h.renderStatsBar(cw, compact))
	if !compact && len(h.review) > 0 {
		sections = append(sections, renderReviewCard(h.review, cw))
	}
	sections = append(sections, components.ArcadeMenu(h.menu, cw, compact))

	if h.notice != "" {
		sections = append(sections, renderNote(h.notice, theme.Accent, cw))
	}

	return components.CabinetFrame(strings.Join(sections, "\n\n"), width, height)
}

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.ArcadeYellow).
		Bold(true)

	art := arcadeTitleFull
	if compact {
		art = arcadeTitleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(art))
}

// renderStatsBar renders the dashboard figures in a double-bordered box.
func (h *HomeScreen) renderStatsBar(cw int, compact bool) string {
	knownStyle := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	totalStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	reviewStyle := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var stats string
	switch {
	case h.statsErr != "":
		stats = dimStyle.Render("stats unavailable")
		if !compact {
			stats = dimStyle.Render(layout.Clamp(h.statsErr, cw-6))
		}
	case !h.loaded:
		stats = dimStyle.Render("loading stats…")
	case compact:
		stats = fmt.Sprintf("%s %s %s",
			knownStyle.Render(fmt.Sprintf("★%d", h.stats.Known)),
			totalStyle.Render(fmt.Sprintf("◆%d", h.stats.Total)),
			reviewText(h.stats.Review, true, reviewStyle, dimStyle),
		)
	default:
		stats = fmt.Sprintf("%s  %s  %s",
			knownStyle.Render(fmt.Sprintf("★ %d KNOWN", h.stats.Known)),
			totalStyle.Render(fmt.Sprintf("◆ %.0f%%", h.stats.CompletionPercentage)),
			reviewText(h.stats.Review, false, reviewStyle, dimStyle),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

func reviewText(n int, compact bool, active, dim lipgloss.Style) string {
	if n == 0 {
		if compact {
			return dim.Render("⚡0")
		}
		return dim.Render("⚡ NOTHING TO REVIEW")
	}
	if compact {
		return active.Render(fmt.Sprintf("⚡%d", n))
	}
	return active.Render(fmt.Sprintf("⚡ %d TO REVIEW", n))
}

// renderReviewCard lists the most missed words first.
func renderReviewCard(words []vocab.ReviewWord, cw int) string {
	sorted := make([]vocab.ReviewWord, len(words))
	copy(sorted, words)
	vocab.SortByMistakes(sorted)

	var lines []string
	for i, w := range sorted {
		if i == reviewListLimit {
			lines = append(lines, theme.Hint.Render(fmt.Sprintf("+%d more", len(sorted)-i)))
			break
		}
		lines = append(lines, fmt.Sprintf("%s %s",
			lipgloss.NewStyle().Foreground(theme.Text).Render(w.Word),
			theme.Hint.Render(fmt.Sprintf("×%d", w.Mistakes))))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

func renderResetConfirm(cw int) string {
	body := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Reset all progress?") + "\n\n" +
		theme.Hint.Render("Saved pages and answers for every mode are discarded.") + "\n\n" +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("Y to reset, N to cancel")
	return components.ArcadeCard(body, cw)
}

func renderNote(text string, fg color.Color, cw int) string {
	return lipgloss.NewStyle().
		Foreground(fg).
		Width(cw).
		Align(lipgloss.Center).
		Render(text)
}

func renderCentered(block string, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(block)
}
