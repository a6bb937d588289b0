package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/wordiz/internal/listen"
)

var sayCmd = &cobra.Command{
	Use:   "say <word>",
	Short: "Pronounce a single word",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		synth, err := d.synthesizer()
		if err != nil {
			return err
		}

		spoken := make(chan error, 1)
		sched := d.scheduler(synth, listen.WithObserver(func(ev listen.Event) {
			if ev.Kind == listen.EventSpoken {
				spoken <- ev.Err
			}
		}))
		if err := sched.Say(args[0]); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), d.cfg.API.Timeout)
		defer cancel()
		select {
		case err := <-spoken:
			if err != nil {
				return fmt.Errorf("say %q: %w", args[0], err)
			}
			return nil
		case <-ctx.Done():
			sched.Stop()
			return fmt.Errorf("say %q: %w", args[0], ctx.Err())
		}
	},
}
