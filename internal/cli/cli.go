// Package cli implements the workid operator commands.
package cli

import (
	"context"

	"salesdesk_backend/internal/leads/accounts"
	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/sequencing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Sequencer previews and reconciles deal identifiers.
type Sequencer interface {
	NextIdentifier(ctx context.Context, baseKey string, strategy sequencing.Strategy) (sequencing.Identifier, error)
	ReconcileIdentifiers(ctx context.Context, strategy sequencing.Strategy, dryRun bool) (sequencing.Report, error)
}

// Assigner hands out the next worker.
type Assigner interface {
	AssignNext(ctx context.Context) (domain.Worker, error)
}

// AccountScorer refreshes account company scores.
type AccountScorer interface {
	RescoreAccounts(ctx context.Context, ids []uuid.UUID, concurrency int) ([]accounts.Outcome, error)
}

// Services is what the commands operate on.
type Services struct {
	Sequencer Sequencer
	Assigner  Assigner
	Accounts  AccountScorer
}

// Loader builds the services for one command run. The returned func releases
// whatever the loader opened.
type Loader func(ctx context.Context) (*Services, func(), error)

// RootCmd returns the workid command tree.
func RootCmd(load Loader) *cobra.Command {
	root := &cobra.Command{
		Use:           "workid",
		Short:         "Operate the pipeline core: identifiers, assignments and account scores",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(NextCmd(load))
	root.AddCommand(ReconcileCmd(load))
	root.AddCommand(AssignCmd(load))
	root.AddCommand(RescoreCmd(load))
	return root
}

func withServices(cmd *cobra.Command, load Loader, fn func(ctx context.Context, svc *Services) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, release, err := load(ctx)
	if err != nil {
		return err
	}
	if release != nil {
		defer release()
	}
	return fn(ctx, svc)
}
