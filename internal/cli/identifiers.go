package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"salesdesk_backend/internal/leads/sequencing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NextCmd previews the next identifier for a base key.
func NextCmd(load Loader) *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "next [base]",
		Short: "Show the next free identifier for a base key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := sequencing.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
				id, err := svc.Sequencer.NextIdentifier(ctx, args[0], parsed)
				if err != nil {
					return fmt.Errorf("failed to compute next identifier: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (base %q, sequence %d)\n",
					color.New(color.FgGreen).Sprint(id.Title), id.BaseKey, id.Sequence)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", string(sequencing.StrategyTitle), "base key strategy: title or email")
	return cmd
}

// ReconcileCmd renumbers every deal identifier.
func ReconcileCmd(load Loader) *cobra.Command {
	var (
		strategy string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Renumber deal identifiers per base key in creation order",
		Long: `Groups deals by base key, orders each group by creation time and
rewrites titles to {base}-W001..N. Use --dry-run to list the changes
without writing them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := sequencing.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
				report, err := svc.Sequencer.ReconcileIdentifiers(ctx, parsed, dryRun)
				if err != nil {
					return fmt.Errorf("failed to reconcile identifiers: %w", err)
				}
				printReport(cmd, report)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", string(sequencing.StrategyTitle), "base key strategy: title or email")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list changes without applying them")
	return cmd
}

func printReport(cmd *cobra.Command, report sequencing.Report) {
	out := cmd.OutOrStdout()
	if len(report.Skipped) > 0 {
		defer fmt.Fprintf(out, "%s %d deals have no base key and were skipped\n",
			color.New(color.FgYellow).Sprint("!"), len(report.Skipped))
	}
	if len(report.Changes) == 0 {
		fmt.Fprintf(out, "%s %d deals scanned, identifiers already consistent\n",
			color.New(color.FgGreen).Sprint("✓"), report.Scanned)
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFROM\tTO")
	for _, change := range report.Changes {
		fmt.Fprintf(w, "%s\t%s\t%s\n", change.ID, change.From, change.To)
	}
	_ = w.Flush()

	verb := "renumbered"
	marker := color.New(color.FgGreen).Sprint("✓")
	if report.DryRun {
		verb = "would be renumbered"
		marker = color.New(color.FgYellow).Sprint("!")
	}
	fmt.Fprintf(out, "%s %d of %d deals %s (strategy %s)\n", marker, len(report.Changes), report.Scanned, verb, report.Strategy)
}
