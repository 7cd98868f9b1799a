package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/handiism/audiotagtools/internal/journal"
)

func newHistoryCommand(cc *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recent runs, or show the steps of one",
		Long: "List recent runs. Given a run id (or a unique prefix), show every step the run\n" +
			"recorded, which is where a partially applied reorganization can be inspected.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := cc.ensureSettings()
			if err != nil {
				return err
			}
			store, err := journal.Open(settings.JournalPath())
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				runs, err := store.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderRuns(runs))
				return nil
			}

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			steps, err := store.Steps(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			printRun(out, run, steps)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to list")
	return cmd
}

func renderRuns(runs []journal.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			shortID(r.ID),
			string(r.Kind),
			string(r.Status),
			r.Started.Local().Format(time.DateTime),
			formatDuration(r),
			r.Root,
		})
	}
	return renderTable(
		[]string{"ID", "Kind", "Status", "Started", "Took", "Root"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func printRun(out io.Writer, run *journal.Run, steps []journal.Step) {
	fmt.Fprintf(out, "Run:      %s\n", run.ID)
	fmt.Fprintf(out, "Kind:     %s\n", run.Kind)
	fmt.Fprintf(out, "Root:     %s\n", run.Root)
	fmt.Fprintf(out, "Status:   %s\n", run.Status)
	fmt.Fprintf(out, "Started:  %s\n", run.Started.Local().Format(time.DateTime))
	if !run.Finished.IsZero() {
		fmt.Fprintf(out, "Took:     %s\n", formatDuration(*run))
	}
	if run.Detail != "" {
		fmt.Fprintf(out, "Detail:   %s\n", run.Detail)
	}
	if len(steps) == 0 {
		fmt.Fprintln(out, "No steps recorded")
		return
	}

	rows := make([][]string, 0, len(steps))
	for _, s := range steps {
		target := s.Target
		if target != "" {
			target = filepath.Base(target)
		}
		rows = append(rows, []string{
			s.Op,
			string(s.Status),
			s.Source,
			target,
			s.Error,
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Op", "Status", "Source", "Target", "Error"}, rows, nil))
}

func formatDuration(r journal.Run) string {
	if r.Finished.IsZero() {
		return "-"
	}
	return r.Duration().Round(time.Millisecond).String()
}
