package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"hush/internal/history"
)

func newHistoryCommand(cctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				status := run.Status
				if run.Status == history.StatusFailed && run.Stage != "" {
					status = fmt.Sprintf("%s (%s)", run.Status, run.Stage)
				}
				rows = append(rows, []string{
					run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					status,
					run.InputPath,
					run.OutputPath,
					formatElapsed(run.ElapsedMS),
					strconv.FormatInt(run.Warnings, 10),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Status", "Input", "Output", "Elapsed", "Warnings"},
				rows, 4, 5,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}

func formatElapsed(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return (time.Duration(ms) * time.Millisecond).Round(time.Millisecond).String()
}
