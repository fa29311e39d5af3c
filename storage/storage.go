package storage

import (
	"context"

	"github.com/sig-0/poerates/storage/types"
)

// Storage is an abstraction over refresh snapshot data
type Storage interface {
	// SaveSnapshot saves the given refresh snapshot
	SaveSnapshot(context.Context, *types.Snapshot) error

	// LatestSnapshot fetches the most recent snapshot for the market.
	// Returns nil if no snapshot was saved
	LatestSnapshot(ctx context.Context, market string) (*types.Snapshot, error)
}
