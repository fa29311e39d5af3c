package refresh

import (
	"context"

	"github.com/sig-0/poerates/storage/types"
)

// QuerySource yields the raw query directives for a refresh cycle
type QuerySource interface {
	// Lines returns the directive lines, in order
	Lines(context.Context) ([]string, error)
}

// OfferSource is the remote source of ranked currency offers
type OfferSource interface {
	// Market returns the market (league) offers are fetched for
	Market() string

	// Offers fetches the offers for buying want with have, best first
	Offers(ctx context.Context, want, have int) ([]*types.Offer, error)
}

// Progress receives the percentage of processed queries during a refresh
type Progress func(percent float64)
