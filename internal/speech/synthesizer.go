// Package speech turns single words into audio through a local TTS engine
// or the word store's /speak endpoint.
package speech

import (
	"context"
)

// Synthesizer speaks one word and returns when the audio has finished or
// ctx is cancelled. Implementations must stop promptly on cancellation.
type Synthesizer interface {
	Speak(ctx context.Context, word string, rate int) error

	// Name identifies the engine in logs and the UI.
	Name() string
}

// Engine names accepted by New.
const (
	EngineAuto     = "auto"
	EngineEspeak   = "espeak"
	EngineFestival = "festival"
	EngineRemote   = "remote"
	EngineMock     = "mock"
)

// DefaultRate is the espeak speed in words per minute.
const DefaultRate = 150
