package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sig-0/poerates/storage/types"
)

const keyPrefix = "poerates:latest:"

type Storage struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewStorage creates a new Redis snapshot store.
// A ttl of 0 keeps snapshots until they are overwritten
func NewStorage(client redis.UniversalClient, ttl time.Duration) *Storage {
	return &Storage{
		client: client,
		ttl:    ttl,
	}
}

func latestKey(market string) string {
	return keyPrefix + market
}

func (s *Storage) SaveSnapshot(ctx context.Context, snapshot *types.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("unable to marshal snapshot: %w", err)
	}

	if err = s.client.Set(ctx, latestKey(snapshot.Market), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("unable to save snapshot: %w", err)
	}

	return nil
}

func (s *Storage) LatestSnapshot(ctx context.Context, market string) (*types.Snapshot, error) {
	data, err := s.client.Get(ctx, latestKey(market)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil //nolint:nilnil // valid case
		}

		return nil, fmt.Errorf("unable to fetch snapshot: %w", err)
	}

	var snapshot types.Snapshot
	if err = json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unable to unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
