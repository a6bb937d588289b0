package listen

import (
	"context"
	"sync"

	"github.com/abhisek/wordiz/internal/speech"
)

// voice admits one synthesis request at a time. A new request cancels the
// current one and waits for it to return before it starts.
type voice struct {
	synth speech.Synthesizer
	rate  int

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func newVoice(synth speech.Synthesizer, rate int) *voice {
	return &voice{synth: synth, rate: rate}
}

func (v *voice) speak(ctx context.Context, word string) error {
	reqCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
	}
	prev := v.done
	v.cancel, v.done = cancel, done
	v.mu.Unlock()

	defer func() {
		cancel()
		close(done)
		v.mu.Lock()
		if v.done == done {
			v.cancel, v.done = nil, nil
		}
		v.mu.Unlock()
	}()

	// prev was cancelled above; it still has to return before anything else
	// reaches the engine.
	if prev != nil {
		<-prev
	}
	if err := reqCtx.Err(); err != nil {
		return err
	}
	return v.synth.Speak(reqCtx, word, v.rate)
}

// interrupt cancels the request in flight, if any.
func (v *voice) interrupt() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
	}
}
