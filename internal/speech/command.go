package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// lookPath is replaced in tests.
var lookPath = exec.LookPath

const waitDelay = 500 * time.Millisecond

// CommandSynthesizer runs a local TTS binary once per word. The process is
// started with the request context, so cancelling it kills the engine.
type CommandSynthesizer struct {
	name string
	path string

	// build returns the arguments and optional stdin for one word.
	build func(word string, rate int) (args []string, stdin string)
}

// NewEspeak returns a synthesizer backed by the espeak binary at path.
func NewEspeak(path string) *CommandSynthesizer {
	return &CommandSynthesizer{
		name: EngineEspeak,
		path: path,
		build: func(word string, rate int) ([]string, string) {
			if rate <= 0 {
				rate = DefaultRate
			}
			return []string{"-s", strconv.Itoa(rate), word}, ""
		},
	}
}

// NewFestival returns a synthesizer backed by festival in --tts mode. The
// word is fed on stdin; festival has no rate flag.
func NewFestival(path string) *CommandSynthesizer {
	return &CommandSynthesizer{
		name: EngineFestival,
		path: path,
		build: func(word string, _ int) ([]string, string) {
			return []string{"--tts"}, word + "\n"
		},
	}
}

func (c *CommandSynthesizer) Name() string { return c.name }

// Speak runs the engine and waits for it to exit.
func (c *CommandSynthesizer) Speak(ctx context.Context, word string, rate int) error {
	args, stdin := c.build(word, rate)
	cmd := exec.CommandContext(ctx, c.path, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// Engines may fork helpers that keep stderr open after a kill.
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s %q: %w: %s", c.name, word, err, msg)
		}
		return fmt.Errorf("%s %q: %w", c.name, word, err)
	}
	return nil
}

// detectLocal returns the first local engine found on PATH, espeak first.
func detectLocal() (*CommandSynthesizer, bool) {
	if p, err := lookPath("espeak"); err == nil {
		return NewEspeak(p), true
	}
	if p, err := lookPath("festival"); err == nil {
		return NewFestival(p), true
	}
	return nil, false
}
