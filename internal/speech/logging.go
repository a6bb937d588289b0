package speech

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// LoggingSynthesizer is a decorator that logs every synthesis request.
type LoggingSynthesizer struct {
	inner  Synthesizer
	logger *zap.Logger
}

// WithLogging wraps s with request logging.
func WithLogging(s Synthesizer, logger *zap.Logger) Synthesizer {
	if logger == nil {
		return s
	}
	return &LoggingSynthesizer{inner: s, logger: logger}
}

func (l *LoggingSynthesizer) Speak(ctx context.Context, word string, rate int) error {
	start := time.Now()
	err := l.inner.Speak(ctx, word, rate)

	fields := []zap.Field{
		zap.String("engine", l.inner.Name()),
		zap.String("word", word),
		zap.Int("rate", rate),
		zap.Duration("latency", time.Since(start)),
	}
	switch {
	case err == nil:
		l.logger.Debug("word spoken", fields...)
	case errors.Is(err, context.Canceled):
		l.logger.Debug("speech cancelled", fields...)
	default:
		l.logger.Warn("speech failed", append(fields, zap.Error(err))...)
	}
	return err
}

func (l *LoggingSynthesizer) Name() string {
	return l.inner.Name()
}
