package storage

import (
	"context"

	"github.com/heavybluesrocker/scout-ai/internal/pkg/models"
)

// Sink receives reconciled match records as the pipeline finishes each
// player. Sinks are optional side channels next to the CSV report; a sink
// failure is logged by the caller and never aborts the run.
type Sink interface {
	// StoreRecords persists one player's reconciled records. Called once per
	// player, possibly again on re-runs with identical data (idempotent).
	StoreRecords(ctx context.Context, player string, records []models.MatchRecord) error

	// Close releases the sink's resources.
	Close() error
}
