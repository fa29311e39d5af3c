package mock

import (
	"context"

	"github.com/sig-0/poerates/storage/types"
)

type (
	SaveSnapshotDelegate   func(context.Context, *types.Snapshot) error
	LatestSnapshotDelegate func(context.Context, string) (*types.Snapshot, error)
)

type Storage struct {
	SaveSnapshotFn   SaveSnapshotDelegate
	LatestSnapshotFn LatestSnapshotDelegate
}

func (m *Storage) SaveSnapshot(ctx context.Context, snapshot *types.Snapshot) error {
	if m.SaveSnapshotFn != nil {
		return m.SaveSnapshotFn(ctx, snapshot)
	}

	return nil
}

func (m *Storage) LatestSnapshot(ctx context.Context, market string) (*types.Snapshot, error) {
	if m.LatestSnapshotFn != nil {
		return m.LatestSnapshotFn(ctx, market)
	}

	return nil, nil
}
