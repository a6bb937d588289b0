package home

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordiz/internal/ui/layout"
	"github.com/abhisek/wordiz/internal/ui/theme"
	"github.com/abhisek/wordiz/internal/vocab"
)

// mood is the face of the flash card drawn above the stats bar.
type mood int

const (
	moodIdle    mood = iota
	moodProud        // every word known
	moodWorried      // the review list is long
)

// cardInner is the width between the card's side borders.
const cardInner = 12

var cardFaces = map[mood][2]string{
	moodIdle:    {"◕    ◕", "‿"},
	moodProud:   {"★    ★", "◡"},
	moodWorried: {"◔    ◔", "︵"},
}

// flashcardWord is the word written on the card: the most missed word when
// worried, a cheer when proud, the alphabet otherwise.
func flashcardWord(m mood, review []vocab.ReviewWord) string {
	switch m {
	case moodProud:
		return "all known!"
	case moodWorried:
		if len(review) > 0 {
			sorted := append([]vocab.ReviewWord(nil), review...)
			vocab.SortByMistakes(sorted)
			return sorted[0].Word
		}
	}
	return "Aa Bb Cc"
}

// renderFlashcard draws a word card with a face on its upper half.
func renderFlashcard(m mood, word string) string {
	face := cardFaces[m]
	lines := []string{
		"╭" + strings.Repeat("─", cardInner) + "╮",
		"│" + centerCell(face[0]) + "│",
		"│" + centerCell(face[1]) + "│",
		"├" + strings.Repeat("─", cardInner) + "┤",
		"│" + centerCell(layout.Clamp(word, cardInner-2)) + "│",
		"╰" + strings.Repeat("─", cardInner) + "╯",
	}
	if m == moodWorried {
		lines[1] += " !"
	}

	fg := theme.Primary
	switch m {
	case moodProud:
		fg = theme.ArcadeYellow
	case moodWorried:
		fg = theme.Accent
	}
	return lipgloss.NewStyle().Foreground(fg).Render(strings.Join(lines, "\n"))
}

func centerCell(s string) string {
	pad := max(cardInner-lipgloss.Width(s), 0)
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
