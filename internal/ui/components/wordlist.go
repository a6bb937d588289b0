package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordiz/internal/ui/theme"
	"github.com/abhisek/wordiz/internal/vocab"
)

// WordList shows the words of a page with their answers and a movable
// highlight. Answers are owned by the caller and passed in on each render.
type WordList struct {
	Words    []string
	Selected int
}

// NewWordList creates a list with the first word highlighted.
func NewWordList(words []string) WordList {
	return WordList{Words: words}
}

// SetWords replaces the words, keeping the highlight in range.
func (l *WordList) SetWords(words []string) {
	l.Words = words
	if l.Selected >= len(words) {
		l.Selected = len(words) - 1
	}
	if l.Selected < 0 {
		l.Selected = 0
	}
}

// Current returns the highlighted word, or "" for an empty list.
func (l WordList) Current() string {
	if l.Selected < 0 || l.Selected >= len(l.Words) {
		return ""
	}
	return l.Words[l.Selected]
}

// Update moves the highlight with the arrow keys.
func (l WordList) Update(msg tea.Msg) (WordList, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}
	switch kmsg.String() {
	case "up":
		if l.Selected > 0 {
			l.Selected--
		}
	case "down":
		if l.Selected < len(l.Words)-1 {
			l.Selected++
		}
	case "home":
		l.Selected = 0
	case "end":
		if len(l.Words) > 0 {
			l.Selected = len(l.Words) - 1
		}
	}
	return l, nil
}

// Next moves the highlight to the first unanswered word after the current
// one, wrapping around. It stays put when everything is answered.
func (l *WordList) Next(answers map[string]vocab.Answer) {
	n := len(l.Words)
	for step := 1; step <= n; step++ {
		i := (l.Selected + step) % n
		if _, done := answers[l.Words[i]]; !done {
			l.Selected = i
			return
		}
	}
}

// View renders up to height rows, scrolling to keep the highlight visible.
func (l WordList) View(answers map[string]vocab.Answer, height int) string {
	if len(l.Words) == 0 {
		return theme.Pending.Render("No words on this page.")
	}

	start, end := 0, len(l.Words)
	if height > 0 && end > height {
		start = l.Selected - height/2
		if start < 0 {
			start = 0
		}
		if start+height > end {
			start = end - height
		}
		end = start + height
	}

	width := len(fmt.Sprint(len(l.Words)))
	var b strings.Builder
	for i := start; i < end; i++ {
		word := l.Words[i]

		var mark string
		switch answers[word] {
		case vocab.Known:
			mark = theme.Known.Render("✓")
		case vocab.Unknown:
			mark = theme.Unknown.Render("✗")
		default:
			mark = theme.Pending.Render("·")
		}

		prefix := "  "
		style := theme.Unselected
		if i == l.Selected {
			prefix = "▸ "
			style = theme.Selected
		}
		num := lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("%*d.", width, i+1))
		b.WriteString(style.Render(prefix) + num + " " + mark + " " + style.Render(word))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
