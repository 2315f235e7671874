package cli

import (
	"context"
	"errors"
	"fmt"

	"salesdesk_backend/internal/leads/domain"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// AssignCmd hands out the next worker from the pool.
func AssignCmd(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "assign",
		Short: "Pick the next worker from the round-robin pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
				worker, err := svc.Assigner.AssignNext(ctx)
				if errors.Is(err, domain.ErrNoWorkersAvailable) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s no workers available\n", color.New(color.FgRed).Sprint("✗"))
					return err
				}
				if err != nil {
					return fmt.Errorf("failed to assign worker: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s <%s> (%d assignments)\n",
					color.New(color.FgGreen).Sprint("✓"), worker.Name, worker.Email, worker.AssignedCount)
				return nil
			})
		},
	}
}
