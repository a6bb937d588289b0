package session

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/wordiz/internal/store"
	"github.com/abhisek/wordiz/internal/vocab"
)

// BatchLoader fetches one page of words for a study mode.
type BatchLoader interface {
	LoadBatch(ctx context.Context, mode vocab.Mode, page int) (vocab.Batch, error)
}

// MistakeReporter forwards unknown words to the learner's review list.
type MistakeReporter interface {
	ReportMistakes(ctx context.Context, words []string) error
}

// StateStore persists the encoded AppState.
type StateStore interface {
	Save(ctx context.Context, data []byte) error
	Load(ctx context.Context) (data []byte, ok bool, err error)
	Clear(ctx context.Context) error
}

// Stopper halts audio playback when the learner leaves listen mode.
type Stopper interface {
	Stop()
}

// HistoryRecorder receives one entry per submit and completion.
type HistoryRecorder interface {
	Append(ctx context.Context, ev store.StudyEvent) error
}

// Phase is the coarse state of the machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInSession
	PhaseListening
)

func (p Phase) String() string {
	switch p {
	case PhaseInSession:
		return "in-session"
	case PhaseListening:
		return "listening"
	}
	return "idle"
}

// Status is an immutable snapshot of the machine for rendering.
type Status struct {
	Phase      Phase
	Mode       vocab.Mode
	Page       int
	TotalPages int
	Words      []string
	Selections map[string]vocab.Answer

	// Loaded is false between a page advance and the following Reload.
	Loaded    bool
	CanSubmit bool

	// Completed is set when the call that produced this status finished
	// the mode because no words were left.
	Completed *Outcome

	// Warning carries a non-fatal problem, such as a failed save.
	Warning string
}

// Answered returns how many words on the page have a selection.
func (s Status) Answered() int { return len(s.Selections) }

// Machine owns the AppState and serializes every operation on it.
type Machine struct {
	mu sync.Mutex

	state  AppState
	batch  vocab.Batch
	loaded bool

	loader   BatchLoader
	reporter MistakeReporter
	store    StateStore
	stopper  Stopper
	history  HistoryRecorder
	logger   *zap.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithStopper sets the playback stopper used when leaving listen mode.
func WithStopper(s Stopper) Option {
	return func(m *Machine) { m.stopper = s }
}

// WithHistory records submits and completions.
func WithHistory(h HistoryRecorder) Option {
	return func(m *Machine) { m.history = h }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMachine returns an idle machine holding the default state. Call
// Restore to pick up a persisted session.
func NewMachine(loader BatchLoader, reporter MistakeReporter, st StateStore, opts ...Option) *Machine {
	m := &Machine{
		state:    DefaultState(),
		loader:   loader,
		reporter: reporter,
		store:    st,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetStopper replaces the playback stopper. The scheduler is usually built
// after the machine, so wiring happens late.
func (m *Machine) SetStopper(s Stopper) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopper = s
}

// Restore loads the persisted snapshot, falling back to defaults when it is
// missing or unreadable. It returns the study mode to resume, or ModeNone.
func (m *Machine) Restore(ctx context.Context) (Status, vocab.Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = m.loadState(ctx)
	m.batch = vocab.Batch{}
	m.loaded = false

	var warning string
	if m.state.ActiveMode == vocab.ModeListen {
		// The listen queue is never persisted; the suspended study mode
		// comes back instead.
		m.state.ActiveMode = m.state.SuspendedMode
		m.state.SuspendedMode = vocab.ModeNone
		warning = m.persist(ctx)
	}

	st := m.status()
	st.Warning = warning
	if m.state.ActiveMode.IsStudy() {
		return st, m.state.ActiveMode
	}
	return st, vocab.ModeNone
}

func (m *Machine) loadState(ctx context.Context) AppState {
	data, ok, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("load app state failed, starting fresh", zap.Error(err))
		return DefaultState()
	}
	if !ok {
		return DefaultState()
	}
	s, err := DecodeState(data)
	if err != nil {
		m.logger.Warn("stored app state unreadable, starting fresh", zap.Error(err))
		return DefaultState()
	}
	return s
}

// Status returns the current snapshot.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status()
}

// State returns a deep copy of the AppState.
func (m *Machine) State() AppState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Enter starts or resumes mode and loads its current page.
//
// The session is resumed when mode is already active, or suspended behind
// listen mode; otherwise it starts at the first page with no selections.
// Entering from listen mode stops playback first. On fetch failure the
// state is left as it was.
func (m *Machine) Enter(ctx context.Context, mode vocab.Mode) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !mode.IsStudy() {
		return m.status(), &ValidationError{Op: "enter", Message: fmt.Sprintf("%q is not a study mode", mode)}
	}
	if active := m.state.StudyMode(); active != vocab.ModeNone && active != mode {
		return m.status(), &ValidationError{
			Op:      "enter",
			Message: fmt.Sprintf("%s is in progress, return home first", active.DisplayName()),
		}
	}

	next := m.state.Clone()
	if next.StudyMode() != mode {
		*next.Session(mode) = DefaultSession(mode)
	}
	next.ActiveMode = mode
	next.SuspendedMode = vocab.ModeNone
	if m.state.ActiveMode == vocab.ModeListen {
		m.stopPlayback()
	}

	batch, err := m.fetch(ctx, mode, next.Session(mode).CurrentPage)
	if err != nil {
		return m.status(), err
	}
	return m.applyBatch(ctx, next, batch), nil
}

// Reload fetches the current page of the active mode again.
func (m *Machine) Reload(ctx context.Context) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mode := m.state.ActiveMode
	if !mode.IsStudy() {
		return m.status(), &ValidationError{Op: "reload", Message: "no study session is active"}
	}

	batch, err := m.fetch(ctx, mode, m.state.Session(mode).CurrentPage)
	if err != nil {
		return m.status(), err
	}
	return m.applyBatch(ctx, m.state.Clone(), batch), nil
}

// Record stores the answer for word and persists it.
func (m *Machine) Record(ctx context.Context, word string, answer vocab.Answer) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireLoaded("record"); err != nil {
		return m.status(), err
	}
	if !answer.Valid() {
		return m.status(), &ValidationError{Op: "record", Message: fmt.Sprintf("invalid answer %q", answer)}
	}
	if !m.batch.Contains(word) {
		return m.status(), &ValidationError{Op: "record", Message: fmt.Sprintf("%q is not on this page", word)}
	}

	m.state.Session(m.state.ActiveMode).Selections[word] = answer
	warning := m.persist(ctx)

	st := m.status()
	st.Warning = warning
	return st, nil
}

// CanSubmit reports whether every word on the loaded page has an answer.
func (m *Machine) CanSubmit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canSubmit()
}

func (m *Machine) canSubmit() bool {
	if !m.state.ActiveMode.IsStudy() || !m.loaded || m.batch.Len() == 0 {
		return false
	}
	return len(m.state.Session(m.state.ActiveMode).Selections) == m.batch.Len()
}

// Submit scores the page, reports mistakes and advances or completes.
//
// When mistakes exist they are reported exactly once; a failed report
// leaves the session and its selections untouched. On OutcomeAdvanced the
// caller loads the new page with Reload.
func (m *Machine) Submit(ctx context.Context) (Outcome, Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireLoaded("submit"); err != nil {
		return Outcome{}, m.status(), err
	}
	if !m.canSubmit() {
		sess := m.state.Session(m.state.ActiveMode)
		return Outcome{}, m.status(), &ValidationError{
			Op:      "submit",
			Message: fmt.Sprintf("answer every word first (%d of %d answered)", len(sess.Selections), m.batch.Len()),
		}
	}

	mode := m.state.ActiveMode
	sess := m.state.Session(mode)
	known, unknown := Tally(m.batch, sess.Selections)

	if len(unknown) > 0 {
		if err := m.reporter.ReportMistakes(ctx, unknown); err != nil {
			m.logger.Warn("report mistakes failed",
				zap.String("mode", string(mode)),
				zap.Int("mistakes", len(unknown)),
				zap.Error(err))
			return Outcome{}, m.status(), fmt.Errorf("report mistakes: %w", err)
		}
	}

	score := Score{Known: len(known), Unknown: len(unknown)}
	m.record(ctx, store.StudyEvent{
		Mode:     string(mode),
		Action:   store.ActionSubmitted,
		Page:     sess.CurrentPage,
		Known:    score.Known,
		Unknown:  score.Unknown,
		Mistakes: unknown,
	})

	if !mode.Paginated() || sess.CurrentPage >= m.batch.TotalPages {
		out, warning := m.complete(ctx, mode, m.batch, true, score)
		out.MistakesAdded = unknown
		st := m.status()
		st.Warning = warning
		return out, st, nil
	}

	next := m.state.Clone()
	nextSess := next.Session(mode)
	nextSess.CurrentPage++
	nextSess.Selections = map[string]vocab.Answer{}
	m.state = next
	m.batch = vocab.Batch{}
	m.loaded = false
	warning := m.persist(ctx)

	out := Outcome{
		Kind:          OutcomeAdvanced,
		Mode:          mode,
		Page:          nextSess.CurrentPage,
		Score:         score,
		MistakesAdded: unknown,
	}
	st := m.status()
	st.Warning = warning
	return out, st, nil
}

// NextPage moves Learn or Review one page forward without submitting.
// It is a no-op on the last page.
func (m *Machine) NextPage(ctx context.Context) (Status, error) {
	return m.turnPage(ctx, "next page", +1)
}

// PrevPage moves Learn or Review one page back. It is a no-op on page 1.
func (m *Machine) PrevPage(ctx context.Context) (Status, error) {
	return m.turnPage(ctx, "previous page", -1)
}

func (m *Machine) turnPage(ctx context.Context, op string, delta int) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireLoaded(op); err != nil {
		return m.status(), err
	}
	mode := m.state.ActiveMode
	if !mode.Paginated() {
		return m.status(), &ValidationError{Op: op, Message: mode.DisplayName() + " has a single page"}
	}

	page := m.state.Session(mode).CurrentPage + delta
	if page < 1 || page > m.batch.TotalPages {
		return m.status(), nil
	}

	next := m.state.Clone()
	sess := next.Session(mode)
	sess.CurrentPage = page
	sess.Selections = map[string]vocab.Answer{}

	batch, err := m.fetch(ctx, mode, page)
	if err != nil {
		return m.status(), err
	}
	return m.applyBatch(ctx, next, batch), nil
}

// ReturnHome abandons the active study session. Only that mode's progress
// is reset; the other modes keep theirs. From listen mode it stops playback
// and behaves like LeaveListen.
func (m *Machine) ReturnHome(ctx context.Context) Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.ActiveMode == vocab.ModeListen {
		m.leaveListen()
		warning := m.persist(ctx)
		st := m.status()
		st.Warning = warning
		return st
	}

	mode := m.state.ActiveMode
	if sess := m.state.Session(mode); sess != nil {
		*sess = DefaultSession(mode)
	}
	m.state.ActiveMode = vocab.ModeNone
	m.batch = vocab.Batch{}
	m.loaded = false
	warning := m.persist(ctx)

	st := m.status()
	st.Warning = warning
	return st
}

// EnterListen switches to listen mode. No SessionState is touched: an
// active study mode is suspended and comes back on LeaveListen.
func (m *Machine) EnterListen(ctx context.Context) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.ActiveMode == vocab.ModeListen {
		return m.status(), nil
	}
	m.state.SuspendedMode = m.state.StudyMode()
	m.state.ActiveMode = vocab.ModeListen
	m.batch = vocab.Batch{}
	m.loaded = false
	warning := m.persist(ctx)

	st := m.status()
	st.Warning = warning
	return st, nil
}

// LeaveListen stops playback and returns to the suspended study mode, or
// to idle when there is none. The resumed page is loaded by the next Enter.
func (m *Machine) LeaveListen(ctx context.Context) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.ActiveMode != vocab.ModeListen {
		return m.status(), &ValidationError{Op: "leave listen", Message: "listen mode is not active"}
	}
	m.leaveListen()
	warning := m.persist(ctx)

	st := m.status()
	st.Warning = warning
	return st, nil
}

// Reset discards all progress and clears the stored snapshot.
func (m *Machine) Reset(ctx context.Context) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.ActiveMode == vocab.ModeListen {
		m.stopPlayback()
	}
	m.state = DefaultState()
	m.batch = vocab.Batch{}
	m.loaded = false
	if err := m.store.Clear(ctx); err != nil {
		return m.status(), fmt.Errorf("reset: %w", err)
	}
	return m.status(), nil
}

// fetch wraps loader errors with the mode.
func (m *Machine) fetch(ctx context.Context, mode vocab.Mode, page int) (vocab.Batch, error) {
	if page < 1 {
		page = 1
	}
	batch, err := m.loader.LoadBatch(ctx, mode, page)
	if err != nil {
		m.logger.Warn("load batch failed",
			zap.String("mode", string(mode)),
			zap.Int("page", page),
			zap.Error(err))
		return vocab.Batch{}, fmt.Errorf("load %s words: %w", mode, err)
	}
	return batch, nil
}

// applyBatch commits next together with a freshly loaded batch. Selections
// for words no longer on the page are dropped. An empty batch completes
// the mode.
func (m *Machine) applyBatch(ctx context.Context, next AppState, batch vocab.Batch) Status {
	mode := next.ActiveMode
	sess := next.Session(mode)
	maps.DeleteFunc(sess.Selections, func(w string, _ vocab.Answer) bool {
		return !slices.Contains(batch.Words, w)
	})

	m.state = next
	m.batch = batch
	m.loaded = true

	if batch.Len() == 0 {
		out, warning := m.complete(ctx, mode, batch, false, Score{})
		st := m.status()
		st.Completed = &out
		st.Warning = warning
		return st
	}

	warning := m.persist(ctx)
	st := m.status()
	st.Warning = warning
	return st
}

// complete resets mode to its defaults and returns to idle.
func (m *Machine) complete(ctx context.Context, mode vocab.Mode, batch vocab.Batch, submitted bool, score Score) (Outcome, string) {
	*m.state.Session(mode) = DefaultSession(mode)
	m.state.ActiveMode = vocab.ModeNone
	m.batch = vocab.Batch{}
	m.loaded = false
	warning := m.persist(ctx)

	m.record(ctx, store.StudyEvent{
		Mode:    string(mode),
		Action:  store.ActionCompleted,
		Known:   score.Known,
		Unknown: score.Unknown,
	})
	m.logger.Info("mode completed", zap.String("mode", string(mode)), zap.Stringer("score", score))

	return Outcome{
		Kind:    OutcomeCompleted,
		Mode:    mode,
		Score:   score,
		Message: completionMessage(mode, batch, submitted, score),
	}, warning
}

// persist saves the state. Failures are logged and returned as a warning
// for the caller to display; the in-memory state stays authoritative.
func (m *Machine) persist(ctx context.Context) string {
	data, err := EncodeState(m.state)
	if err == nil {
		err = m.store.Save(ctx, data)
	}
	if err != nil {
		m.logger.Warn("save app state failed", zap.Error(err))
		return "progress could not be saved: " + err.Error()
	}
	return ""
}

func (m *Machine) record(ctx context.Context, ev store.StudyEvent) {
	if m.history == nil {
		return
	}
	if err := m.history.Append(ctx, ev); err != nil {
		m.logger.Warn("record study event failed", zap.Error(err))
	}
}

func (m *Machine) leaveListen() {
	m.stopPlayback()
	m.state.ActiveMode = m.state.SuspendedMode
	m.state.SuspendedMode = vocab.ModeNone
}

func (m *Machine) stopPlayback() {
	if m.stopper != nil {
		m.stopper.Stop()
	}
}

func (m *Machine) requireLoaded(op string) error {
	if !m.state.ActiveMode.IsStudy() {
		return &ValidationError{Op: op, Message: "no study session is active"}
	}
	if !m.loaded {
		return &ValidationError{Op: op, Message: "the page is not loaded yet"}
	}
	return nil
}

func (m *Machine) status() Status {
	st := Status{
		Phase: PhaseIdle,
		Mode:  m.state.ActiveMode,
	}
	switch {
	case m.state.ActiveMode == vocab.ModeListen:
		st.Phase = PhaseListening
	case m.state.ActiveMode.IsStudy():
		st.Phase = PhaseInSession
		sess := m.state.Session(m.state.ActiveMode)
		st.Page = sess.CurrentPage
		st.Selections = maps.Clone(sess.Selections)
		st.Loaded = m.loaded
		if m.loaded {
			st.Words = slices.Clone(m.batch.Words)
			st.TotalPages = m.batch.TotalPages
		}
		st.CanSubmit = m.canSubmit()
	}
	return st
}
