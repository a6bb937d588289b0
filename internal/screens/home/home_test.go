package home

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/wordiz/internal/listen"
	"github.com/abhisek/wordiz/internal/router"
	"github.com/abhisek/wordiz/internal/session"
	"github.com/abhisek/wordiz/internal/speech"
	"github.com/abhisek/wordiz/internal/vocab"
)

type staticLoader struct{}

func (staticLoader) LoadBatch(_ context.Context, _ vocab.Mode, _ int) (vocab.Batch, error) {
	return vocab.Batch{Words: []string{"apple"}, TotalPages: 3}, nil
}

type nopReporter struct{}

func (nopReporter) ReportMistakes(context.Context, []string) error { return nil }

type memStore struct{ data []byte }

func (m *memStore) Save(_ context.Context, data []byte) error {
	m.data = data
	return nil
}

func (m *memStore) Load(context.Context) ([]byte, bool, error) {
	return m.data, m.data != nil, nil
}

func (m *memStore) Clear(context.Context) error {
	m.data = nil
	return nil
}

type fakeStats struct {
	stats  vocab.Stats
	review []vocab.ReviewWord
	err    error
}

func (f *fakeStats) Stats(context.Context) (vocab.Stats, error) {
	return f.stats, f.err
}

func (f *fakeStats) ReviewWords(context.Context) ([]vocab.ReviewWord, error) {
	return f.review, nil
}

func newMachine() *session.Machine {
	return session.NewMachine(staticLoader{}, nopReporter{}, &memStore{})
}

func down(h *HomeScreen, n int) {
	for range n {
		h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
}

func enter(h *HomeScreen) tea.Cmd {
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	return cmd
}

func pushedTitle(t *testing.T, cmd tea.Cmd) string {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	return push.Screen.Title()
}

func TestHomeMenuOpensStudyModes(t *testing.T) {
	tests := []struct {
		steps int
		want  string
	}{
		{0, "Learn"},
		{1, "Exam"},
		{2, "Review"},
	}
	for _, tt := range tests {
		h := New(Options{Machine: newMachine()})
		down(h, tt.steps)
		if got := pushedTitle(t, enter(h)); got != tt.want {
			t.Errorf("after %d steps pushed %q, want %q", tt.steps, got, tt.want)
		}
	}
}

func TestHomeListenWithoutSpeech(t *testing.T) {
	h := New(Options{Machine: newMachine(), SpeechErr: speech.ErrNoEngine})
	down(h, 3)
	cmd := enter(h)
	push := cmd().(router.PushScreenMsg)
	if push.Screen.Title() != "Listen" {
		t.Fatalf("pushed %q", push.Screen.Title())
	}
	if !strings.Contains(push.Screen.View(120, 30), "unavailable") {
		t.Error("expected the placeholder screen")
	}
}

func TestHomeListenWithSpeech(t *testing.T) {
	player := listen.NewScheduler(speech.NewMockSynthesizer(), listen.DefaultConfig())
	h := New(Options{Machine: newMachine(), Player: player})
	down(h, 3)
	push := enter(h)().(router.PushScreenMsg)
	if strings.Contains(push.Screen.View(120, 30), "unavailable") {
		t.Error("expected the listen screen, got the placeholder")
	}
}

func TestHomeDashboard(t *testing.T) {
	src := &fakeStats{
		stats: vocab.Stats{Total: 10, Known: 4, Review: 2, CompletionPercentage: 40},
		review: []vocab.ReviewWord{
			{Word: "banana", Mistakes: 1},
			{Word: "cherry", Mistakes: 3},
		},
	}
	h := New(Options{Machine: newMachine(), Stats: src})
	h.Update(h.Init()())

	view := h.View(120, 40)
	for _, want := range []string{"4 KNOWN", "40%", "2 TO REVIEW", "cherry", "banana"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Index(view, "cherry") > strings.Index(view, "banana") {
		t.Error("review words should list the most missed first")
	}
}

func TestHomeDashboardError(t *testing.T) {
	src := &fakeStats{err: errors.New("server down")}
	h := New(Options{Machine: newMachine(), Stats: src})
	h.Update(h.Init()())

	if !strings.Contains(h.statsErr, "server down") {
		t.Errorf("statsErr = %q", h.statsErr)
	}
	if !strings.Contains(h.View(120, 40), "server down") {
		t.Error("view does not show the stats error")
	}
}

func TestHomeRevealRefreshes(t *testing.T) {
	src := &fakeStats{stats: vocab.Stats{Total: 1}}
	h := New(Options{Machine: newMachine(), Stats: src})
	cmd := h.Reveal()
	if cmd == nil {
		t.Fatal("expected a dashboard refresh")
	}
	h.Update(cmd())
	if !h.loaded {
		t.Error("dashboard not loaded after reveal")
	}
}

func TestHomeResetConfirm(t *testing.T) {
	m := newMachine()
	m.Restore(context.Background())
	clientID := m.State().ClientID

	h := New(Options{Machine: m})
	down(h, 4)
	if cmd := enter(h); cmd != nil {
		t.Error("reset must ask before acting")
	}
	if !h.confirmReset {
		t.Fatal("expected confirmation")
	}

	_, cmd := h.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	if cmd != nil || h.confirmReset {
		t.Error("n should cancel without resetting")
	}

	enter(h)
	_, cmd = h.Update(tea.KeyPressMsg{Code: 'y', Text: "y"})
	if cmd == nil {
		t.Fatal("expected reset command")
	}
	h.Update(cmd())
	if h.notice != "All progress has been reset." {
		t.Errorf("notice = %q", h.notice)
	}
	if m.State().ClientID == clientID {
		t.Error("reset kept the client id")
	}
}

func TestHomeExit(t *testing.T) {
	h := New(Options{Machine: newMachine()})
	down(h, 5)
	cmd := enter(h)
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected quit")
	}
}

func TestHomeFlashcardMood(t *testing.T) {
	tests := []struct {
		name   string
		stats  vocab.Stats
		review []vocab.ReviewWord
		want   mood
		word   string
	}{
		{"fresh", vocab.Stats{Total: 10, Known: 2, Review: 1}, nil, moodIdle, "Aa Bb Cc"},
		{"all known", vocab.Stats{Total: 5, Known: 5}, nil, moodProud, "all known!"},
		{
			"long review list",
			vocab.Stats{Total: 50, Known: 10, Review: 12},
			[]vocab.ReviewWord{{Word: "gale", Mistakes: 1}, {Word: "quay", Mistakes: 4}},
			moodWorried,
			"quay",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(Options{Machine: newMachine(), Stats: &fakeStats{stats: tt.stats, review: tt.review}})
			h.Update(h.Init()())
			if got := h.mood(); got != tt.want {
				t.Fatalf("mood = %d, want %d", got, tt.want)
			}
			if got := flashcardWord(h.mood(), h.review); got != tt.word {
				t.Errorf("card word = %q, want %q", got, tt.word)
			}
			if card := renderFlashcard(tt.want, tt.word); !strings.Contains(card, tt.word) {
				t.Errorf("card does not show %q:\n%s", tt.word, card)
			}
		})
	}
}

func TestFlashcardClampsLongWords(t *testing.T) {
	card := renderFlashcard(moodWorried, "antidisestablishmentarianism")
	if strings.Contains(card, "antidisestablishmentarianism") {
		t.Error("long word was not clamped")
	}
	if !strings.Contains(card, "…") {
		t.Error("clamped word should end with an ellipsis")
	}
}
