package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/abhisek/wordiz/internal/listen"
)

var listenCmd = &cobra.Command{
	Use:   "listen [text...]",
	Short: "Read text aloud word by word",
	Long:  "Read the given text, or standard input when no text is given, aloud one word at a time. Ctrl+C stops playback.",
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if len(args) == 0 {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read text: %w", err)
			}
			text = string(b)
		}

		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		synth, err := d.synthesizer()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		done := make(chan struct{})
		var once sync.Once
		sched := d.scheduler(synth, listen.WithObserver(func(ev listen.Event) {
			switch ev.Kind {
			case listen.EventWordStarted:
				fmt.Fprintf(out, "[%d/%d] %s\n", ev.Index+1, ev.Total, ev.Word)
			case listen.EventWordDone:
				if ev.Err != nil {
					fmt.Fprintf(out, "        could not say %q: %v\n", ev.Word, ev.Err)
				}
			case listen.EventFinished, listen.EventStopped:
				once.Do(func() { close(done) })
			}
		}))

		if err := sched.Start(text); err != nil {
			return err
		}

		select {
		case <-done:
		case <-ctx.Done():
			sched.Stop()
			fmt.Fprintln(out, "Stopped.")
		}
		return sched.Wait(context.Background())
	},
}
