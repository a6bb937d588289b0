package speech

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNoEngine is returned when auto detection finds neither a local engine
// nor a remote speaker.
var ErrNoEngine = errors.New("no speech engine available: install espeak or festival, or configure a remote speaker")

// New creates the Synthesizer named by engine, wrapped with logging.
// In auto mode local engines are tried first (espeak, then festival), then
// the remote speaker.
func New(engine string, remote Speaker, logger *zap.Logger) (Synthesizer, error) {
	var base Synthesizer

	switch engine {
	case "", EngineAuto:
		if local, ok := detectLocal(); ok {
			base = local
		} else if remote != nil {
			base = NewRemote(remote)
		} else {
			return nil, ErrNoEngine
		}
	case EngineEspeak, EngineFestival:
		p, err := lookPath(engine)
		if err != nil {
			return nil, fmt.Errorf("%s not found on PATH: %w", engine, err)
		}
		if engine == EngineEspeak {
			base = NewEspeak(p)
		} else {
			base = NewFestival(p)
		}
	case EngineRemote:
		if remote == nil {
			return nil, errors.New("remote speech engine selected but no speaker configured")
		}
		base = NewRemote(remote)
	case EngineMock:
		return NewMockSynthesizer(), nil
	default:
		return nil, fmt.Errorf("unknown speech engine: %q", engine)
	}

	return WithLogging(base, logger), nil
}
