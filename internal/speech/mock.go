package speech

import (
	"context"
	"sync"
)

// MockSynthesizer is a deterministic Synthesizer for testing. It records
// every word and, when gated, blocks each Speak until Release is called.
type MockSynthesizer struct {
	mu    sync.Mutex
	calls []string

	// Err is returned from every Speak that is not cancelled.
	Err error

	gate    chan struct{}
	started chan string

	// ignoreCancel makes a gated Speak wait for Release even after its
	// context is cancelled, like an engine that finishes the word anyway.
	ignoreCancel bool
}

// NewMockSynthesizer returns a mock whose Speak returns immediately.
func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{started: make(chan string, 64)}
}

// NewGatedMockSynthesizer returns a mock whose Speak blocks until Release
// or cancellation.
func NewGatedMockSynthesizer() *MockSynthesizer {
	m := NewMockSynthesizer()
	m.gate = make(chan struct{})
	return m
}

// IgnoreCancel makes gated calls outlive their context.
func (m *MockSynthesizer) IgnoreCancel() *MockSynthesizer {
	m.ignoreCancel = true
	return m
}

func (m *MockSynthesizer) Name() string { return EngineMock }

func (m *MockSynthesizer) Speak(ctx context.Context, word string, _ int) error {
	m.mu.Lock()
	m.calls = append(m.calls, word)
	err := m.Err
	m.mu.Unlock()

	select {
	case m.started <- word:
	default:
	}

	if m.gate == nil {
		return err
	}
	select {
	case <-m.gate:
		return err
	case <-ctx.Done():
		if m.ignoreCancel {
			<-m.gate
			return err
		}
		return ctx.Err()
	}
}

// Started delivers each word as its Speak call begins.
func (m *MockSynthesizer) Started() <-chan string {
	return m.started
}

// Release lets one blocked Speak return. It blocks until a call takes it.
func (m *MockSynthesizer) Release() {
	m.gate <- struct{}{}
}

// Calls returns the words spoken so far, in order.
func (m *MockSynthesizer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns the number of Speak calls made.
func (m *MockSynthesizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
