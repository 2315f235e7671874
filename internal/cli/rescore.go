package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// RescoreCmd refreshes company scores for the given accounts.
func RescoreCmd(load Loader) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "rescore [account-id...]",
		Short: "Probe company domains again and restamp account deals",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uuid.UUID, 0, len(args))
			for _, arg := range args {
				id, err := uuid.Parse(arg)
				if err != nil {
					return fmt.Errorf("invalid account id %q: %w", arg, err)
				}
				ids = append(ids, id)
			}

			return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
				outcomes, err := svc.Accounts.RescoreAccounts(ctx, ids, concurrency)
				if err != nil {
					return fmt.Errorf("failed to rescore accounts: %w", err)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ACCOUNT\tSCORE\tGRADE\tDEALS")
				for _, o := range outcomes {
					fmt.Fprintf(w, "%s\t%d\t%s\t%d\n", o.AccountID, o.Score, o.Grade, o.DealsRestamped)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "parallel domain probes")
	return cmd
}
