package refresh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sig-0/poerates/aggregate"
	"github.com/sig-0/poerates/query"
	"github.com/sig-0/poerates/report"
	"github.com/sig-0/poerates/storage/types"
)

var (
	ErrRefreshInProgress = errors.New("refresh already in progress")

	errInvalidSession = errors.New("invalid session")
)

// Builder runs refresh cycles: it parses the query list,
// fetches and aggregates the offers of every query, and builds the deal table
type Builder struct {
	queries QuerySource
	offers  OfferSource

	logger   *slog.Logger
	progress Progress

	mu sync.Mutex
}

// New creates a new Builder instance
func New(queries QuerySource, offers OfferSource, opts ...Option) *Builder {
	b := &Builder{
		queries:  queries,
		offers:   offers,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		progress: func(float64) {},
	}

	// Apply the options
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Refresh runs a single refresh cycle [BLOCKING].
// Any malformed query or failed fetch aborts the whole cycle, leaving the session untouched.
// Concurrent calls fail with ErrRefreshInProgress
func (b *Builder) Refresh(ctx context.Context, session *Session) (*types.Snapshot, error) {
	if session == nil {
		return nil, errInvalidSession
	}

	if !b.mu.TryLock() {
		return nil, ErrRefreshInProgress
	}
	defer b.mu.Unlock()

	lines, err := b.queries.Lines(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load queries: %w", err)
	}

	// Parse everything before any request is made
	queries, err := query.ParseLines(lines)
	if err != nil {
		return nil, err
	}

	b.progress(0)

	deals := make([]*types.Deal, 0, len(queries))

	for i, q := range queries {
		deal, err := b.buildDeal(ctx, q)
		if err != nil {
			return nil, err
		}

		deals = append(deals, deal)

		b.logger.Debug(
			"built deal",
			"query", q.Label,
			"best", deal.Forward.Best,
			"average", deal.Forward.Average,
			"inverse_best", deal.Inverse.Best,
			"inverse_average", deal.Inverse.Average,
		)

		b.progress(100 * float64(i+1) / float64(len(queries)))
	}

	snapshot := &types.Snapshot{
		ID:      xid.New().String(),
		Market:  b.offers.Market(),
		TakenAt: time.Now().UTC(),
		Rows:    report.Rows(deals, session.Previous()),
	}

	session.update(deals)

	b.logger.Info(
		"refresh complete",
		"id", snapshot.ID,
		"market", snapshot.Market,
		"deals", len(deals),
	)

	return snapshot, nil
}

// buildDeal fetches and summarizes the offers for a single query
func (b *Builder) buildDeal(ctx context.Context, q *types.Query) (*types.Deal, error) {
	forward, err := b.summarize(ctx, q.WantIndex, q.HaveIndex)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch offers for %q: %w", q.Label, err)
	}

	// The inverse side stays empty unless requested
	var inverse types.RateSummary

	if q.InverseRequested {
		inverse, err = b.summarize(ctx, q.HaveIndex, q.WantIndex)
		if err != nil {
			return nil, fmt.Errorf("unable to fetch inverse offers for %q: %w", q.Label, err)
		}
	}

	return &types.Deal{
		Query:   q,
		Forward: forward,
		Inverse: inverse,
	}, nil
}

func (b *Builder) summarize(ctx context.Context, want, have int) (types.RateSummary, error) {
	offers, err := b.offers.Offers(ctx, want, have)
	if err != nil {
		return types.RateSummary{}, err
	}

	return aggregate.Summarize(offers), nil
}
