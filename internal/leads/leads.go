// Package leads provides the pipeline core: scoring, identifier sequencing,
// worker assignment and lead conversion.
// This file defines the public API of the pipeline bounded context.
// Only types and interfaces defined here should be imported by other domains.
package leads

import (
	"context"

	"salesdesk_backend/internal/leads/accounts"
	"salesdesk_backend/internal/leads/sequencing"

	"github.com/google/uuid"
)

// IdentifierReconciler renumbers deal identifiers.
type IdentifierReconciler interface {
	ReconcileIdentifiers(ctx context.Context, strategy sequencing.Strategy, dryRun bool) (sequencing.Report, error)
}

// AccountScorer recomputes an account's company score and restamps its deals.
type AccountScorer interface {
	RescoreAccount(ctx context.Context, accountID uuid.UUID) (accounts.Outcome, error)
}

var (
	_ IdentifierReconciler = (*sequencing.Service)(nil)
	_ AccountScorer        = (*accounts.Service)(nil)
)
