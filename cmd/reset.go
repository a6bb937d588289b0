package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset saved progress",
	Long:  "Discard the saved position and answers of every mode. With --history the study history is cleared too.",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, true)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		if _, err := d.machine().Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")

		if clearHistory, _ := cmd.Flags().GetBool("history"); clearHistory {
			if err := d.store.EventRepo().Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		}
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("history", false, "Also clear the study history")
}
