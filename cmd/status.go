package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/wordiz/internal/session"
	"github.com/abhisek/wordiz/internal/store"
	"github.com/abhisek/wordiz/internal/vocab"
)

const statusHistoryLimit = 5

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show saved progress, server stats and recent history",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, true)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if err := printSavedState(ctx, out, d.store.SessionRepo()); err != nil {
			return err
		}

		fmt.Fprintln(out)
		statsCtx, cancel := context.WithTimeout(ctx, d.cfg.API.Timeout)
		defer cancel()
		if stats, err := d.client.Stats(statsCtx); err != nil {
			fmt.Fprintf(out, "Server stats unavailable: %v\n", err)
		} else {
			printStats(out, d.cfg.API.BaseURL, stats)
		}

		events, err := d.store.EventRepo().Recent(ctx, statusHistoryLimit)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		printHistory(out, events)
		return nil
	},
}

func printSavedState(ctx context.Context, out io.Writer, repo *store.SessionRepo) error {
	data, ok, err := repo.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "No saved progress.")
		return nil
	}
	st, err := session.DecodeState(data)
	if err != nil {
		fmt.Fprintf(out, "Saved progress is unreadable and will be replaced: %v\n", err)
		return nil
	}

	active := "none"
	if st.ActiveMode != vocab.ModeNone {
		active = st.ActiveMode.DisplayName()
	}
	if st.SuspendedMode != vocab.ModeNone {
		active += " (" + st.SuspendedMode.DisplayName() + " suspended)"
	}
	fmt.Fprintf(out, "Active mode: %s\n", active)
	if at, ok, err := repo.UpdatedAt(ctx); err == nil && ok {
		fmt.Fprintf(out, "Saved:       %s\n", at.Local().Format(time.DateTime))
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODE\tPAGE\tANSWERED")
	for _, mode := range vocab.StudyModes {
		sess := st.Session(mode)
		page := "-"
		if mode.Paginated() {
			page = fmt.Sprint(sess.CurrentPage)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n", mode.DisplayName(), page, len(sess.Selections))
	}
	return tw.Flush()
}

func printStats(out io.Writer, baseURL string, s vocab.Stats) {
	fmt.Fprintf(out, "Server:      %s\n", baseURL)
	fmt.Fprintf(out, "Words:       %d total, %d known, %d to review\n", s.Total, s.Known, s.Review)
	fmt.Fprintf(out, "Progress:    %.0f%% (position %d)\n", s.CompletionPercentage, s.CurrentPosition)
}

func printHistory(out io.Writer, events []store.StudyEvent) {
	if len(events) == 0 {
		fmt.Fprintln(out, "No study history yet.")
		return
	}
	fmt.Fprintln(out, "Recent activity:")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, ev := range events {
		detail := fmt.Sprintf("%d/%d known", ev.Known, ev.Known+ev.Unknown)
		if len(ev.Mistakes) > 0 {
			detail += ", missed " + strings.Join(ev.Mistakes, ", ")
		}
		page := ""
		if ev.Page > 0 {
			page = fmt.Sprintf("page %d", ev.Page)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
			ev.Timestamp.Local().Format(time.DateTime), ev.Mode, ev.Action, page, detail)
	}
	tw.Flush()
}
