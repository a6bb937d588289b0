package speech

import (
	"context"
)

// Speaker is the word store's single-word pronunciation endpoint.
type Speaker interface {
	Speak(ctx context.Context, word string) error
}

// Remote asks the server to pronounce each word. The server picks the
// rate, so the rate argument is ignored.
type Remote struct {
	speaker Speaker
}

// NewRemote wraps a Speaker.
func NewRemote(s Speaker) *Remote {
	return &Remote{speaker: s}
}

func (r *Remote) Name() string { return EngineRemote }

func (r *Remote) Speak(ctx context.Context, word string, _ int) error {
	return r.speaker.Speak(ctx, word)
}
