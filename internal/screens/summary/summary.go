package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordiz/internal/router"
	"github.com/abhisek/wordiz/internal/screen"
	"github.com/abhisek/wordiz/internal/session"
	"github.com/abhisek/wordiz/internal/ui/components"
	"github.com/abhisek/wordiz/internal/ui/layout"
	"github.com/abhisek/wordiz/internal/ui/theme"
	"github.com/abhisek/wordiz/internal/vocab"
)

// maxListed caps the mistake words printed on the summary.
const maxListed = 12

// SummaryScreen shows how a study mode ended.
type SummaryScreen struct {
	outcome session.Outcome
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(outcome session.Outcome) *SummaryScreen {
	return &SummaryScreen{outcome: outcome}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return s.outcome.Mode.DisplayName() + " Complete"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	out := s.outcome
	cw := components.ContentWidth(width)
	center := func(style lipgloss.Style, text string) string {
		return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(style.Render(text))
	}

	var sections []string
	sections = append(sections, center(lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true), out.Message))

	if out.Mode == vocab.ModeExam && out.Score.Total() > 0 {
		bar := components.NewProgressBar("Score", out.Score.Known, out.Score.Total(), true, cw-4)
		sections = append(sections, components.ArcadeCard(bar.View(), cw))
		sections = append(sections, center(theme.Body, fmt.Sprintf("%.0f%% known", out.Score.Ratio()*100)))
	}

	if n := len(out.MistakesAdded); n > 0 {
		listed := out.MistakesAdded
		more := ""
		if len(listed) > maxListed {
			listed = listed[:maxListed]
			more = fmt.Sprintf("\n… and %d more", n-maxListed)
		}
		body := lipgloss.NewStyle().Foreground(theme.TextDim).Render("Added to review") + "\n\n" +
			theme.Unknown.Render(strings.Join(listed, "  ")) + more
		sections = append(sections, components.ArcadeCard(body, cw))
	}

	return components.CabinetFrame(strings.Join(sections, "\n\n"), width, height)
}
