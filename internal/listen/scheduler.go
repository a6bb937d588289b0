// Package listen plays a queue of words one at a time with pause, resume
// and stop control.
package listen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/wordiz/internal/speech"
)

// Config holds playback settings.
type Config struct {
	// Rate is passed to the synthesizer, in words per minute.
	Rate int

	// Pause is the silence between two words.
	Pause time.Duration
}

// DefaultConfig returns the standard playback settings.
func DefaultConfig() Config {
	return Config{
		Rate:  speech.DefaultRate,
		Pause: 800 * time.Millisecond,
	}
}

// Scheduler owns the listen queue and the playback task.
//
// Every control operation bumps a generation counter. The playback task
// captures the generation it was started with and drops its results once
// the counter has moved on, so a cancelled request that returns late never
// touches the queue.
type Scheduler struct {
	cfg    Config
	voice  *voice
	logger *zap.Logger

	// emitMu orders observer calls and is always taken before mu. Once
	// Stop has returned no stale event can follow.
	emitMu   sync.Mutex
	observer func(Event)

	mu     sync.Mutex
	words  []string
	cursor int
	state  State
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithObserver registers fn to receive progress events. fn runs on the
// playback goroutine and must not call back into the Scheduler.
func WithObserver(fn func(Event)) Option {
	return func(s *Scheduler) { s.observer = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScheduler returns an idle scheduler speaking through synth.
func NewScheduler(synth speech.Synthesizer, cfg Config, opts ...Option) *Scheduler {
	if cfg.Rate <= 0 {
		cfg.Rate = speech.DefaultRate
	}
	if cfg.Pause < 0 {
		cfg.Pause = 0
	}
	s := &Scheduler{
		cfg:    cfg,
		voice:  newVoice(synth, cfg.Rate),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetObserver replaces the observer.
func (s *Scheduler) SetObserver(fn func(Event)) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	s.observer = fn
}

// Start replaces the queue with the words of text and plays it from the
// beginning. Any playback in progress is cancelled.
func (s *Scheduler) Start(text string) error {
	words := Tokenize(text)
	if len(words) == 0 {
		return &ValidationError{Op: "start", Message: "no words to play"}
	}

	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.haltLocked()
	s.words = words
	s.cursor = 0
	s.state = StatePlaying
	gen := s.gen
	s.launchLocked(gen)
	s.mu.Unlock()

	s.logger.Info("playback started", zap.Int("words", len(words)), zap.Uint64("generation", gen))
	s.deliverLocked(gen, Event{Kind: EventStarted, Index: 0, Total: len(words), Generation: gen})
	return nil
}

// Pause toggles between playing and paused and returns the new state.
// Pausing cancels the word in flight without moving the cursor, so resume
// replays it. Pause does nothing while idle.
func (s *Scheduler) Pause() State {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	var ev Event
	switch s.state {
	case StatePlaying:
		s.haltLocked()
		s.state = StatePaused
		ev = Event{Kind: EventPaused}
	case StatePaused:
		s.gen++
		s.state = StatePlaying
		s.launchLocked(s.gen)
		ev = Event{Kind: EventResumed}
	default:
		s.mu.Unlock()
		return StateIdle
	}
	state := s.state
	gen := s.gen
	ev.Index, ev.Word, ev.Total, ev.Generation = s.cursor, s.currentLocked(), len(s.words), gen
	s.mu.Unlock()

	s.deliverLocked(gen, ev)
	return state
}

// Stop cancels playback and any ad-hoc word, resets the cursor and goes
// idle. It is safe to call in any state.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	wasActive := s.state != StateIdle
	s.haltLocked()
	s.cursor = 0
	s.state = StateIdle
	gen := s.gen
	total := len(s.words)
	s.mu.Unlock()

	if wasActive {
		s.logger.Info("playback stopped", zap.Uint64("generation", gen))
	}
	s.emit(gen, Event{Kind: EventStopped, Total: total, Generation: gen})
}

// JumpTo speaks words[index] once, out of band. The cursor and queue are
// left alone. While playing, the queue is paused first so the two never
// compete; resume continues from the cursor.
func (s *Scheduler) JumpTo(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.words) {
		n := len(s.words)
		s.mu.Unlock()
		return &ValidationError{Op: "jump", Message: fmt.Sprintf("index %d outside queue of %d words", index, n)}
	}
	word := s.words[index]
	s.mu.Unlock()

	s.speakAdHoc(index, word)
	return nil
}

// Say speaks any single word out of band, with the same rules as JumpTo.
func (s *Scheduler) Say(word string) error {
	words := Tokenize(word)
	if len(words) != 1 {
		return &ValidationError{Op: "say", Message: fmt.Sprintf("%q is not a single word", word)}
	}
	s.speakAdHoc(-1, words[0])
	return nil
}

func (s *Scheduler) speakAdHoc(index int, word string) {
	s.mu.Lock()
	var paused *Event
	if s.state == StatePlaying {
		s.haltLocked()
		s.state = StatePaused
		paused = &Event{Kind: EventPaused, Index: s.cursor, Word: s.currentLocked(), Total: len(s.words)}
	} else {
		s.gen++
	}
	gen := s.gen
	total := len(s.words)
	ctx, cancel := context.WithCancel(context.Background())
	prevCancel := s.cancel
	s.cancel = func() {
		cancel()
		if prevCancel != nil {
			prevCancel()
		}
	}
	s.mu.Unlock()

	if paused != nil {
		paused.Generation = gen
		s.emit(gen, *paused)
	}

	go func() {
		defer cancel()
		err := s.voice.speak(ctx, word)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("ad-hoc speech failed", zap.String("word", word), zap.Error(err))
		}
		s.emit(gen, Event{Kind: EventSpoken, Index: index, Word: word, Total: total, Generation: gen, Err: err})
	}()
}

// Progress returns a snapshot of the queue.
func (s *Scheduler) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Progress{
		State:      s.state,
		Cursor:     s.cursor,
		Total:      len(s.words),
		Word:       s.currentLocked(),
		Words:      append([]string(nil), s.words...),
		Generation: s.gen,
	}
}

// State returns the current playback state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Wait blocks until the current playback task has exited or ctx is done.
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// haltLocked invalidates the running task and cancels its request and
// pending delay.
func (s *Scheduler) haltLocked() {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.voice.interrupt()
}

// launchLocked starts a playback task for gen. The task waits for the
// previous one to exit before it touches the queue.
func (s *Scheduler) launchLocked(gen uint64) {
	ctx, cancel := context.WithCancel(context.Background())
	prev := s.done
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	go s.run(ctx, gen, prev, done)
}

func (s *Scheduler) currentLocked() string {
	if s.cursor < len(s.words) {
		return s.words[s.cursor]
	}
	return ""
}

func (s *Scheduler) run(ctx context.Context, gen uint64, prev <-chan struct{}, done chan struct{}) {
	defer close(done)

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			return
		}
	}

	for {
		s.mu.Lock()
		if s.gen != gen || s.state != StatePlaying {
			s.mu.Unlock()
			return
		}
		index, word, total := s.cursor, s.words[s.cursor], len(s.words)
		s.mu.Unlock()

		s.emit(gen, Event{Kind: EventWordStarted, Index: index, Word: word, Total: total, Generation: gen})

		// Failures count as completion; one bad word does not end playback.
		err := s.voice.speak(ctx, word)
		if err != nil && ctx.Err() == nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("speech failed", zap.String("word", word), zap.Int("index", index), zap.Error(err))
		}

		s.mu.Lock()
		if s.gen != gen || s.state != StatePlaying {
			s.mu.Unlock()
			return
		}
		s.cursor++
		finished := s.cursor >= len(s.words)
		if finished {
			s.state = StateIdle
		}
		s.mu.Unlock()

		s.emit(gen, Event{Kind: EventWordDone, Index: index, Word: word, Total: total, Generation: gen, Err: err})
		if finished {
			s.logger.Info("playback finished", zap.Int("words", total))
			s.emit(gen, Event{Kind: EventFinished, Index: total, Total: total, Generation: gen})
			return
		}

		if s.cfg.Pause > 0 {
			t := time.NewTimer(s.cfg.Pause)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return
			}
		}
	}
}

// emit delivers ev if gen is still current.
func (s *Scheduler) emit(gen uint64, ev Event) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	s.deliverLocked(gen, ev)
}

// deliverLocked is emit for callers already holding emitMu. Start and
// Pause hold it across the launch so their event precedes the task's.
func (s *Scheduler) deliverLocked(gen uint64, ev Event) {
	if s.observer == nil {
		return
	}
	s.mu.Lock()
	current := s.gen == gen
	s.mu.Unlock()
	if !current {
		return
	}
	s.observer(ev)
}
