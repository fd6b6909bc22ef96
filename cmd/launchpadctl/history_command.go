package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
)

func newHistoryCommand(c *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <job>",
		Short: "Show recent runs of a server job recorded in Redis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tk, err := c.toolkit(ctx)
			if err != nil {
				return err
			}
			defer c.close()

			if tk.Redis == nil {
				return errors.New("run history needs Redis (set LAUNCHPAD_REDIS_ADDR)")
			}
			runs, err := tk.Redis.Runs(ctx, args[0], limit)
			if err != nil {
				return fmt.Errorf("load %s runs: %w", args[0], err)
			}
			if c.json() {
				if runs == nil {
					runs = []*domain.JobRun{}
				}
				return writeJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No recorded runs for %s\n", args[0])
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Started", "Trigger", "Status", "Duration", "Error"},
				historyRows(runs), nil))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show (0 = all kept)")
	return cmd
}

func historyRows(runs []*domain.JobRun) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		dur := "-"
		if d := run.Duration(); d > 0 {
			dur = d.Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Trigger,
			run.Status,
			dur,
			run.Error,
		})
	}
	return rows
}
