package sql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sig-0/poerates/storage/types"
)

const (
	saveSnapshotQuery = `INSERT INTO snapshots (id, market, taken_at, rows)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO NOTHING`

	latestSnapshotQuery = `SELECT id, market, taken_at, rows
FROM snapshots
WHERE market = $1
ORDER BY taken_at DESC
LIMIT 1`
)

// DB is the subset of the pgx connection used by the storage
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Storage struct {
	db DB
}

func NewStorage(db DB) *Storage {
	return &Storage{
		db: db,
	}
}

func (s *Storage) SaveSnapshot(ctx context.Context, snapshot *types.Snapshot) error {
	rows, err := json.Marshal(snapshot.Rows)
	if err != nil {
		return fmt.Errorf("unable to marshal snapshot rows: %w", err)
	}

	if _, err = s.db.Exec(
		ctx,
		saveSnapshotQuery,
		snapshot.ID,
		snapshot.Market,
		timeToTimestampz(snapshot.TakenAt),
		rows,
	); err != nil {
		return fmt.Errorf("unable to save snapshot: %w", err)
	}

	return nil
}

func (s *Storage) LatestSnapshot(ctx context.Context, market string) (*types.Snapshot, error) {
	var (
		snapshot types.Snapshot
		takenAt  pgtype.Timestamptz
		rows     []byte
	)

	err := s.db.QueryRow(ctx, latestSnapshotQuery, market).Scan(
		&snapshot.ID,
		&snapshot.Market,
		&takenAt,
		&rows,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil //nolint:nilnil // valid case
		}

		return nil, fmt.Errorf("unable to fetch snapshot: %w", err)
	}

	if err = json.Unmarshal(rows, &snapshot.Rows); err != nil {
		return nil, fmt.Errorf("unable to unmarshal snapshot rows: %w", err)
	}

	snapshot.TakenAt = timestampzToTime(takenAt)

	return &snapshot, nil
}

// timeToTimestampz converts the time value to postgres timestamp
func timeToTimestampz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{
		Time:  t.UTC(),
		Valid: true,
	}
}

// timestampzToTime converts the postgres timestamp value to time
func timestampzToTime(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}

	return ts.Time.UTC()
}
