package study

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/wordiz/internal/router"
	"github.com/abhisek/wordiz/internal/session"
	"github.com/abhisek/wordiz/internal/vocab"
)

type pageLoader struct {
	pages map[vocab.Mode][]vocab.Batch
	err   error
}

func (l *pageLoader) LoadBatch(_ context.Context, mode vocab.Mode, page int) (vocab.Batch, error) {
	if l.err != nil {
		return vocab.Batch{}, l.err
	}
	pages := l.pages[mode]
	if page < 1 || page > len(pages) {
		return vocab.EmptyBatch(), nil
	}
	return pages[page-1], nil
}

type mistakeLog struct {
	calls [][]string
	err   error
}

func (r *mistakeLog) ReportMistakes(_ context.Context, words []string) error {
	r.calls = append(r.calls, words)
	return r.err
}

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

type recordingSayer struct{ words []string }

func (r *recordingSayer) Say(word string) error {
	r.words = append(r.words, word)
	return nil
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func twoPageLearn() *pageLoader {
	return &pageLoader{pages: map[vocab.Mode][]vocab.Batch{
		vocab.ModeLearn: {
			{Words: []string{"apple", "berry"}, TotalPages: 2},
			{Words: []string{"cherry"}, TotalPages: 2},
		},
		vocab.ModeExam: {
			{Words: []string{"alpha", "beta", "gamma"}, TotalPages: 1},
		},
	}}
}

// drive runs cmd and feeds every resulting message back into s until no
// command is left. Navigation messages are collected instead of handled.
func drive(t *testing.T, s *StudyScreen, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var nav []tea.Msg
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("command loop did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case spinner.TickMsg:
		case router.PopScreenMsg, router.ReplaceScreenMsg:
			nav = append(nav, msg)
		default:
			_, next := s.Update(msg)
			queue = append(queue, next)
		}
	}
	return nav
}

func press(t *testing.T, s *StudyScreen, key tea.KeyPressMsg) []tea.Msg {
	t.Helper()
	_, cmd := s.Update(key)
	return drive(t, s, cmd)
}

func newScreen(t *testing.T, loader *pageLoader, rep *mistakeLog, mode vocab.Mode, sayer Sayer) (*StudyScreen, *session.Machine) {
	t.Helper()
	m := session.NewMachine(loader, rep, &memStore{})
	s := New(m, mode, sayer)
	if nav := drive(t, s, s.Init()); len(nav) != 0 {
		t.Fatalf("unexpected navigation on enter: %v", nav)
	}
	return s, m
}

func summaryTitle(t *testing.T, nav []tea.Msg) string {
	t.Helper()
	if len(nav) != 1 {
		t.Fatalf("navigation = %v, want one replace", nav)
	}
	rep, ok := nav[0].(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("navigation = %T, want ReplaceScreenMsg", nav[0])
	}
	return rep.Screen.Title()
}

func TestStudyLearnFlow(t *testing.T) {
	rep := &mistakeLog{}
	s, _ := newScreen(t, twoPageLearn(), rep, vocab.ModeLearn, nil)

	if !reflect.DeepEqual(s.status.Words, []string{"apple", "berry"}) {
		t.Fatalf("words = %v", s.status.Words)
	}

	press(t, s, keyPress('k'))
	if s.list.Current() != "berry" {
		t.Errorf("highlight = %q, want berry after answering apple", s.list.Current())
	}
	press(t, s, keyPress('u'))
	if !s.status.CanSubmit {
		t.Fatal("expected CanSubmit after answering every word")
	}

	press(t, s, specialKey(tea.KeyEnter))
	if !reflect.DeepEqual(rep.calls, [][]string{{"berry"}}) {
		t.Errorf("reported = %v, want [[berry]]", rep.calls)
	}
	if s.status.Page != 2 || !reflect.DeepEqual(s.status.Words, []string{"cherry"}) {
		t.Fatalf("after advance: page %d words %v", s.status.Page, s.status.Words)
	}
	if !strings.Contains(s.notice, "Page done") {
		t.Errorf("notice = %q", s.notice)
	}

	press(t, s, keyPress('k'))
	nav := press(t, s, specialKey(tea.KeyEnter))
	if got := summaryTitle(t, nav); got != "Learn Complete" {
		t.Errorf("summary title = %q", got)
	}
}

func TestStudySubmitBeforeAllAnswered(t *testing.T) {
	rep := &mistakeLog{}
	s, _ := newScreen(t, twoPageLearn(), rep, vocab.ModeLearn, nil)

	press(t, s, keyPress('k'))
	press(t, s, specialKey(tea.KeyEnter))

	if !strings.Contains(s.errMsg, "answer every word") {
		t.Errorf("errMsg = %q", s.errMsg)
	}
	if len(rep.calls) != 0 {
		t.Errorf("reporter called: %v", rep.calls)
	}
}

func TestStudyExamCompletes(t *testing.T) {
	rep := &mistakeLog{}
	s, _ := newScreen(t, twoPageLearn(), rep, vocab.ModeExam, nil)

	press(t, s, keyPress('k'))
	press(t, s, keyPress('k'))
	press(t, s, keyPress('u'))
	nav := press(t, s, specialKey(tea.KeyEnter))

	if got := summaryTitle(t, nav); got != "Exam Complete" {
		t.Errorf("summary title = %q", got)
	}
	if !reflect.DeepEqual(rep.calls, [][]string{{"gamma"}}) {
		t.Errorf("reported = %v", rep.calls)
	}
}

func TestStudyEmptyBatchCompletesOnEnter(t *testing.T) {
	loader := &pageLoader{pages: map[vocab.Mode][]vocab.Batch{}}
	m := session.NewMachine(loader, &mistakeLog{}, &memStore{})
	s := New(m, vocab.ModeReview, nil)

	nav := drive(t, s, s.Init())
	if got := summaryTitle(t, nav); got != "Review Complete" {
		t.Errorf("summary title = %q", got)
	}
}

func TestStudyReportFailureKeepsAnswers(t *testing.T) {
	rep := &mistakeLog{err: errors.New("connection refused")}
	s, m := newScreen(t, twoPageLearn(), rep, vocab.ModeLearn, nil)

	press(t, s, keyPress('u'))
	press(t, s, keyPress('u'))
	press(t, s, specialKey(tea.KeyEnter))

	if !strings.Contains(s.errMsg, "connection refused") {
		t.Errorf("errMsg = %q", s.errMsg)
	}
	if s.status.Answered() != 2 || s.status.Page != 1 {
		t.Errorf("status after failed submit: page %d, %d answered", s.status.Page, s.status.Answered())
	}
	if m.State().ActiveMode != vocab.ModeLearn {
		t.Errorf("active mode = %q", m.State().ActiveMode)
	}
}

func TestStudyLoadFailureRetry(t *testing.T) {
	loader := twoPageLearn()
	loader.err = errors.New("timeout")
	m := session.NewMachine(loader, &mistakeLog{}, &memStore{})
	s := New(m, vocab.ModeLearn, nil)
	drive(t, s, s.Init())

	if s.errMsg == "" || s.status.Loaded {
		t.Fatalf("expected load error, got errMsg=%q loaded=%v", s.errMsg, s.status.Loaded)
	}
	hints := s.KeyHints()
	if hints[0].Description != "Retry" {
		t.Errorf("first hint = %+v, want Retry", hints[0])
	}

	loader.err = nil
	press(t, s, keyPress('r'))
	if !s.status.Loaded || s.errMsg != "" {
		t.Errorf("retry: loaded=%v errMsg=%q", s.status.Loaded, s.errMsg)
	}
}

func TestStudyPageKeys(t *testing.T) {
	s, _ := newScreen(t, twoPageLearn(), &mistakeLog{}, vocab.ModeLearn, nil)

	press(t, s, keyPress('n'))
	if s.status.Page != 2 {
		t.Fatalf("page after n = %d, want 2", s.status.Page)
	}
	if s.HeaderStatus() != "Page 2/2" {
		t.Errorf("HeaderStatus = %q", s.HeaderStatus())
	}
	press(t, s, keyPress('n'))
	if s.status.Page != 2 {
		t.Errorf("page after n on last page = %d, want 2", s.status.Page)
	}
	press(t, s, keyPress('p'))
	if s.status.Page != 1 {
		t.Errorf("page after p = %d, want 1", s.status.Page)
	}
}

func TestStudyExamIgnoresPageKeys(t *testing.T) {
	s, _ := newScreen(t, twoPageLearn(), &mistakeLog{}, vocab.ModeExam, nil)
	_, cmd := s.Update(keyPress('n'))
	if cmd != nil {
		t.Error("expected no command for n in exam")
	}
	if s.HeaderStatus() != "" {
		t.Errorf("HeaderStatus = %q, want empty for exam", s.HeaderStatus())
	}
}

func TestStudySay(t *testing.T) {
	sayer := &recordingSayer{}
	s, _ := newScreen(t, twoPageLearn(), &mistakeLog{}, vocab.ModeLearn, sayer)

	press(t, s, specialKey(tea.KeyDown))
	press(t, s, keyPress('s'))
	if !reflect.DeepEqual(sayer.words, []string{"berry"}) {
		t.Errorf("said %v, want [berry]", sayer.words)
	}

	quiet, _ := newScreen(t, twoPageLearn(), &mistakeLog{}, vocab.ModeLearn, nil)
	press(t, quiet, keyPress('s'))
	if quiet.errMsg == "" {
		t.Error("expected an error without a speech engine")
	}
}

func TestStudyQuitConfirm(t *testing.T) {
	s, m := newScreen(t, twoPageLearn(), &mistakeLog{}, vocab.ModeLearn, nil)
	press(t, s, keyPress('k'))

	s.Back()
	if !s.confirmQuit {
		t.Fatal("expected quit confirmation")
	}
	if !strings.Contains(s.View(80, 24), "Leave Learn?") {
		t.Error("confirmation not rendered")
	}
	press(t, s, keyPress('n'))
	if s.confirmQuit {
		t.Error("expected confirmation dismissed")
	}
	if m.State().ActiveMode != vocab.ModeLearn {
		t.Errorf("active mode = %q after declining", m.State().ActiveMode)
	}

	s.Back()
	nav := press(t, s, keyPress('y'))
	if len(nav) != 1 {
		t.Fatalf("navigation = %v", nav)
	}
	if _, ok := nav[0].(router.PopScreenMsg); !ok {
		t.Errorf("navigation = %T, want PopScreenMsg", nav[0])
	}
	st := m.State()
	if st.ActiveMode != vocab.ModeNone || len(st.Learn.Selections) != 0 {
		t.Errorf("after leaving: mode %q, selections %v", st.ActiveMode, st.Learn.Selections)
	}
}

func TestStudyQuitWaitsForPendingLoad(t *testing.T) {
	m := session.NewMachine(twoPageLearn(), &mistakeLog{}, &memStore{})
	s := New(m, vocab.ModeLearn, nil)
	enter := s.Init()

	s.Back()
	_, cmd := s.Update(keyPress('y'))
	if cmd != nil {
		t.Fatal("leaving while the page loads must wait")
	}
	if !s.confirmQuit || s.notice == "" {
		t.Errorf("confirm %v notice %q, want the question kept with a notice", s.confirmQuit, s.notice)
	}

	if nav := drive(t, s, enter); len(nav) != 0 {
		t.Fatalf("unexpected navigation: %v", nav)
	}
	nav := press(t, s, keyPress('y'))
	if len(nav) != 1 {
		t.Fatalf("navigation = %v", nav)
	}
	if _, ok := nav[0].(router.PopScreenMsg); !ok {
		t.Errorf("navigation = %T, want PopScreenMsg", nav[0])
	}
	if m.State().ActiveMode != vocab.ModeNone {
		t.Errorf("active mode = %q after leaving", m.State().ActiveMode)
	}

	// Late results after leaving are dropped.
	if _, cmd := s.Update(statusMsg{Status: session.Status{Completed: &session.Outcome{}}}); cmd != nil {
		t.Error("status after leaving produced a command")
	}
}

func TestStudyView(t *testing.T) {
	s, _ := newScreen(t, twoPageLearn(), &mistakeLog{}, vocab.ModeLearn, nil)
	view := s.View(100, 30)
	for _, want := range []string{"apple", "berry", "Page 1 of 2", "0/2 answered", "Submit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
