package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/launchpad/internal/app"
	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/fillpriority"
	"github.com/MrSnakeDoc/launchpad/internal/perksgap"
)

type jobFunc func(ctx context.Context, tk *app.Toolkit) (any, error)

// runJob loads the toolkit, runs fn and prints its summary. A cancelled run
// still prints what it got through.
func runJob(cmd *cobra.Command, c *commandContext, title string, fn jobFunc) error {
	ctx := cmd.Context()
	tk, err := c.toolkit(ctx)
	if err != nil {
		return err
	}
	defer c.close()

	summary, runErr := fn(ctx, tk)
	if summary != nil {
		if err := printSummary(cmd, c, title, summary); err != nil {
			return err
		}
	}
	return runErr
}

func printSummary(cmd *cobra.Command, c *commandContext, title string, summary any) error {
	if c.json() {
		return writeJSON(cmd, summary)
	}
	out, err := renderSummary(title, summary)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func newLinkAuditCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "link-audit",
		Short: "Check every listed program's apply link and record the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, c, "Link audit", func(ctx context.Context, tk *app.Toolkit) (any, error) {
				return tk.LinkAuditor().Run(ctx)
			})
		},
	}
}

func newEnrichCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "enrich",
		Short: "Extract offer, eligibility and how-to-apply text from program pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, c, "Enrichment", func(ctx context.Context, tk *app.Toolkit) (any, error) {
				return tk.Enricher().Run(ctx)
			})
		},
	}
}

func newDiscoverCommand(c *commandContext) *cobra.Command {
	var resetSeen bool
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Scan curated sources and file new program suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, c, "Discovery", func(ctx context.Context, tk *app.Toolkit) (any, error) {
				scanner, err := tk.Scanner()
				if err != nil {
					return nil, err
				}
				if resetSeen && tk.Redis != nil {
					if err := tk.Redis.ForgetSeen(ctx); err != nil {
						return nil, fmt.Errorf("failed to reset seen-set: %w", err)
					}
					tk.Logger.Info("discovery seen-set cleared")
				}
				return scanner.Run(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&resetSeen, "reset-seen", false, "forget previously seen candidates before scanning")
	return cmd
}

func newSeedCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "File the hand-curated suggestion seeds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, c, "Seeds", func(ctx context.Context, tk *app.Toolkit) (any, error) {
				seeder, err := tk.Seeder()
				if err != nil {
					return nil, err
				}
				return seeder.Run(ctx)
			})
		},
	}
}

func newCheckPendingCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check-pending",
		Short: "Check the links of suggestions awaiting review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, c, "Pending check", func(ctx context.Context, tk *app.Toolkit) (any, error) {
				checker, err := tk.PendingChecker()
				if err != nil {
					return nil, err
				}
				return checker.Run(ctx)
			})
		},
	}
}

func newFillReportCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fill-report",
		Short: "Rank programs by how much of their offer text is missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, c, "Fill priority", func(ctx context.Context, tk *app.Toolkit) (any, error) {
				report, err := fillpriority.Run(ctx, tk.Directory, config.LoadFillAudit(), tk.Logger)
				if err != nil {
					return nil, err
				}
				return report.Totals, nil
			})
		},
	}
}

type perksGapSummary struct {
	Deals    int    `json:"deals"`
	Programs int    `json:"programs"`
	Matched  int    `json:"matched"`
	Missing  int    `json:"missing"`
	Report   string `json:"report"`
}

func newPerksGapCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "perks-gap",
		Short: "List deals from a saved perks page that the directory is missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, c, "Perks gap", func(ctx context.Context, tk *app.Toolkit) (any, error) {
				r, path, err := perksgap.Run(ctx, tk.Directory, config.LoadPerksGap(), tk.Logger)
				if err != nil {
					return nil, err
				}
				return perksGapSummary{
					Deals:    r.Deals,
					Programs: r.Programs,
					Matched:  len(r.Matched),
					Missing:  len(r.Missing),
					Report:   path,
				}, nil
			})
		},
	}
}
