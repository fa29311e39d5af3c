package memory

import (
	"context"
	"sync"

	"github.com/sig-0/poerates/storage/types"
)

type Storage struct {
	latest map[string]*types.Snapshot // market -> snapshot

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		latest: make(map[string]*types.Snapshot),
	}
}

func (s *Storage) SaveSnapshot(_ context.Context, snapshot *types.Snapshot) error {
	elem := *snapshot
	elem.TakenAt = elem.TakenAt.UTC()
	elem.Rows = append([]*types.Row(nil), snapshot.Rows...)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Keep the newest snapshot per market
	if cur, ok := s.latest[elem.Market]; ok && cur.TakenAt.After(elem.TakenAt) {
		return nil
	}

	s.latest[elem.Market] = &elem

	return nil
}

func (s *Storage) LatestSnapshot(_ context.Context, market string) (*types.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cur, ok := s.latest[market]
	if !ok {
		return nil, nil //nolint:nilnil // valid case
	}

	cp := *cur

	return &cp, nil
}
