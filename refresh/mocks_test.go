package refresh

import (
	"context"

	"github.com/sig-0/poerates/storage/types"
)

type (
	linesDelegate   func(context.Context) ([]string, error)
	marketDelegate  func() string
	offersDelegate  func(context.Context, int, int) ([]*types.Offer, error)
	refreshDelegate func(context.Context, *Session) (*types.Snapshot, error)
)

type mockQuerySource struct {
	linesFn linesDelegate
}

func (m *mockQuerySource) Lines(ctx context.Context) ([]string, error) {
	if m.linesFn != nil {
		return m.linesFn(ctx)
	}

	return nil, nil
}

type mockOfferSource struct {
	marketFn marketDelegate
	offersFn offersDelegate
}

func (m *mockOfferSource) Market() string {
	if m.marketFn != nil {
		return m.marketFn()
	}

	return ""
}

func (m *mockOfferSource) Offers(ctx context.Context, want, have int) ([]*types.Offer, error) {
	if m.offersFn != nil {
		return m.offersFn(ctx, want, have)
	}

	return nil, nil
}

type mockRefresher struct {
	refreshFn refreshDelegate
}

func (m *mockRefresher) Refresh(ctx context.Context, session *Session) (*types.Snapshot, error) {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, session)
	}

	return nil, nil
}
