package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/wordiz/internal/app"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	d, err := openDeps(cmd, true)
	if err != nil {
		return err
	}
	defer d.Close()

	machine := d.machine()
	opts := app.Options{
		Machine: machine,
		Stats:   d.client,
		Logger:  d.logger,
	}

	synth, err := d.synthesizer()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Speech not available:", err)
		fmt.Fprintln(os.Stderr, "Listen mode and pronunciation will be disabled.")
		opts.SpeechErr = err
	} else {
		player := d.scheduler(synth)
		machine.SetStopper(player)
		opts.Player = player
	}

	return app.Run(opts)
}
