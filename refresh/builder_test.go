package refresh

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/poerates/provider/poetrade"
	"github.com/sig-0/poerates/query"
	"github.com/sig-0/poerates/storage/types"
)

const testMarket = "Essence"

// staticLines returns a query source with the given lines
func staticLines(lines ...string) *mockQuerySource {
	return &mockQuerySource{
		linesFn: func(_ context.Context) ([]string, error) {
			return lines, nil
		},
	}
}

// offersWithRates creates ranked offers with the given rates
func offersWithRates(rates ...float64) []*types.Offer {
	offers := make([]*types.Offer, 0, len(rates))

	for _, rate := range rates {
		offers = append(offers, &types.Offer{
			Trader:    "seller",
			Account:   "account",
			BuyValue:  "1",
			SellValue: "1",
			Buy:       rate,
			Sell:      1,
		})
	}

	return offers
}

type pair struct {
	want, have int
}

// pairOffers returns an offer source serving fixed offers per pair
func pairOffers(offers map[pair][]*types.Offer) *mockOfferSource {
	return &mockOfferSource{
		marketFn: func() string {
			return testMarket
		},
		offersFn: func(_ context.Context, want, have int) ([]*types.Offer, error) {
			return offers[pair{want, have}], nil
		},
	}
}

// chaos = 4, alchemy = 3, exalted = 6
var (
	chaosForAlchemy = pair{4, 3}
	alchemyForChaos = pair{3, 4}
	exaltedForChaos = pair{6, 4}
)

func TestBuilder_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("nil session", func(t *testing.T) {
		t.Parallel()

		b := New(staticLines(), pairOffers(nil))

		_, err := b.Refresh(context.Background(), nil)
		assert.ErrorIs(t, err, errInvalidSession)
	})

	t.Run("forward only", func(t *testing.T) {
		t.Parallel()

		var (
			fetched []pair

			offers = &mockOfferSource{
				marketFn: func() string {
					return testMarket
				},
				offersFn: func(_ context.Context, want, have int) ([]*types.Offer, error) {
					fetched = append(fetched, pair{want, have})

					return offersWithRates(10, 9, 11), nil
				},
			}
			b = New(staticLines("buy chaos with alchemy"), offers)
		)

		snapshot, err := b.Refresh(context.Background(), NewSession())
		require.NoError(t, err)
		require.NotNil(t, snapshot)

		assert.NotEmpty(t, snapshot.ID)
		assert.Equal(t, testMarket, snapshot.Market)
		assert.WithinDuration(t, time.Now(), snapshot.TakenAt, time.Minute)

		assert.Equal(t, []pair{chaosForAlchemy}, fetched)

		require.Len(t, snapshot.Rows, 1)

		deal := snapshot.Rows[0].Deal
		assert.Equal(t, "buy chaos with alchemy", deal.Query.Label)
		assert.Equal(t, 10.0, deal.Forward.Best)
		assert.Equal(t, 10.0, deal.Forward.Average)
		assert.Equal(t, 3, deal.Forward.Count)

		assert.True(t, deal.Inverse.IsEmpty())
		assert.Equal(t, types.RateSummary{}, deal.Inverse)
		assert.Nil(t, snapshot.Rows[0].RelativeSpread)
	})

	t.Run("inverse requested", func(t *testing.T) {
		t.Parallel()

		b := New(
			staticLines("buy chaos with alchemy + inverse"),
			pairOffers(map[pair][]*types.Offer{
				chaosForAlchemy: offersWithRates(4, 4),
				alchemyForChaos: offersWithRates(5, 5),
			}),
		)

		snapshot, err := b.Refresh(context.Background(), NewSession())
		require.NoError(t, err)
		require.Len(t, snapshot.Rows, 1)

		row := snapshot.Rows[0]
		assert.Equal(t, 4.0, row.Deal.Forward.Average)
		assert.Equal(t, 5.0, row.Deal.Inverse.Average)

		require.NotNil(t, row.RelativeSpread)
		assert.Equal(t, 25.0, *row.RelativeSpread)
	})

	t.Run("deals keep file order", func(t *testing.T) {
		t.Parallel()

		b := New(
			staticLines("buy exalted with chaos", "buy chaos with alchemy"),
			pairOffers(map[pair][]*types.Offer{
				exaltedForChaos: offersWithRates(50),
				chaosForAlchemy: offersWithRates(4),
			}),
		)

		snapshot, err := b.Refresh(context.Background(), NewSession())
		require.NoError(t, err)
		require.Len(t, snapshot.Rows, 2)

		assert.Equal(t, "exalted", snapshot.Rows[0].Deal.Query.Want)
		assert.Equal(t, 50.0, snapshot.Rows[0].Deal.Forward.Best)
		assert.Equal(t, "chaos", snapshot.Rows[1].Deal.Query.Want)
		assert.Equal(t, 4.0, snapshot.Rows[1].Deal.Forward.Best)
	})

	t.Run("progress reported per line", func(t *testing.T) {
		t.Parallel()

		var reported []float64

		b := New(
			staticLines("buy exalted with chaos", "buy chaos with alchemy + inverse"),
			pairOffers(nil),
			WithProgress(func(percent float64) {
				reported = append(reported, percent)
			}),
		)

		_, err := b.Refresh(context.Background(), NewSession())
		require.NoError(t, err)

		assert.Equal(t, []float64{0, 50, 100}, reported)
	})

	t.Run("malformed line aborts before fetching", func(t *testing.T) {
		t.Parallel()

		var (
			fetchCount atomic.Int32

			offers = &mockOfferSource{
				offersFn: func(_ context.Context, _, _ int) ([]*types.Offer, error) {
					fetchCount.Add(1)

					return nil, nil
				},
			}
			b       = New(staticLines("buy chaos with alchemy", "buy chaos with nothing"), offers)
			session = NewSession()
		)

		snapshot, err := b.Refresh(context.Background(), session)
		assert.Nil(t, snapshot)
		assert.ErrorIs(t, err, query.ErrUnknownCurrency)

		assert.Zero(t, fetchCount.Load())
		assert.Nil(t, session.Previous())
	})

	t.Run("query source error", func(t *testing.T) {
		t.Parallel()

		sourceErr := errors.New("no file")

		b := New(
			&mockQuerySource{
				linesFn: func(_ context.Context) ([]string, error) {
					return nil, sourceErr
				},
			},
			pairOffers(nil),
		)

		_, err := b.Refresh(context.Background(), NewSession())
		assert.ErrorIs(t, err, sourceErr)
	})

	t.Run("fetch error aborts", func(t *testing.T) {
		t.Parallel()

		var (
			fetchErr = errors.New("invalid status code")
			session  = NewSession()

			offers = &mockOfferSource{
				offersFn: func(_ context.Context, want, have int) ([]*types.Offer, error) {
					if (pair{want, have}) == alchemyForChaos {
						return nil, fetchErr
					}

					return offersWithRates(4), nil
				},
			}
			b = New(staticLines("buy exalted with chaos", "buy chaos with alchemy + inverse"), offers)
		)

		snapshot, err := b.Refresh(context.Background(), session)
		assert.Nil(t, snapshot)
		assert.ErrorIs(t, err, fetchErr)
		assert.Nil(t, session.Previous())
	})

	t.Run("search page error aborts", func(t *testing.T) {
		t.Parallel()

		var (
			unavailable atomic.Bool

			srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if unavailable.Load() {
					w.WriteHeader(http.StatusServiceUnavailable)

					return
				}

				_, _ = w.Write([]byte(`<html><body>
<div class="displayoffer" data-buyvalue="10.0" data-sellvalue="1.0" data-ign="Seller" data-username="seller"></div>
</body></html>`))
			}))
		)

		t.Cleanup(srv.Close)

		var (
			session = NewSession()
			b       = New(
				staticLines("buy chaos with alchemy"),
				poetrade.NewProvider(srv.URL, testMarket, time.Second*5),
			)
		)

		_, err := b.Refresh(context.Background(), session)
		require.NoError(t, err)

		previous := session.Previous()
		require.Len(t, previous, 1)

		unavailable.Store(true)

		snapshot, err := b.Refresh(context.Background(), session)
		assert.Nil(t, snapshot)

		var fetchErr *poetrade.FetchError

		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)

		// The failed refresh leaves the previous deals in place
		require.Len(t, session.Previous(), 1)
		assert.Same(t, previous[0], session.Previous()[0])
	})

	t.Run("trends against previous refresh", func(t *testing.T) {
		t.Parallel()

		var (
			mu    sync.Mutex
			rates = []float64{10, 10, 10}

			offers = &mockOfferSource{
				offersFn: func(_ context.Context, _, _ int) ([]*types.Offer, error) {
					mu.Lock()
					defer mu.Unlock()

					return offersWithRates(rates...), nil
				},
			}
			b       = New(staticLines("buy chaos with alchemy"), offers)
			session = NewSession()
		)

		first, err := b.Refresh(context.Background(), session)
		require.NoError(t, err)
		assert.Equal(t, types.TrendUnchanged, first.Rows[0].ForwardTrend)
		require.Len(t, session.Previous(), 1)

		mu.Lock()
		rates = []float64{10, 11, 11}
		mu.Unlock()

		second, err := b.Refresh(context.Background(), session)
		require.NoError(t, err)
		assert.Equal(t, types.TrendUp, second.Rows[0].ForwardTrend)
		assert.Equal(t, types.TrendUnchanged, second.Rows[0].InverseTrend)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("same offers, same summaries", func(t *testing.T) {
		t.Parallel()

		b := New(
			staticLines("buy chaos with alchemy + inverse"),
			pairOffers(map[pair][]*types.Offer{
				chaosForAlchemy: offersWithRates(10, 9, 25, 2, 11),
				alchemyForChaos: offersWithRates(3, 3.1),
			}),
		)

		first, err := b.Refresh(context.Background(), NewSession())
		require.NoError(t, err)

		second, err := b.Refresh(context.Background(), NewSession())
		require.NoError(t, err)

		assert.Equal(t, first.Rows[0].Deal, second.Rows[0].Deal)
	})

	t.Run("concurrent refresh rejected", func(t *testing.T) {
		t.Parallel()

		var (
			started = make(chan struct{})
			release = make(chan struct{})

			offers = &mockOfferSource{
				offersFn: func(_ context.Context, _, _ int) ([]*types.Offer, error) {
					close(started)
					<-release

					return nil, nil
				},
			}
			b     = New(staticLines("buy chaos with alchemy"), offers)
			errCh = make(chan error, 1)
		)

		go func() {
			_, err := b.Refresh(context.Background(), NewSession())
			errCh <- err
		}()

		select {
		case <-started:
		case <-time.After(5 * time.Second):
			t.Fatal("refresh did not start in time")
		}

		_, err := b.Refresh(context.Background(), NewSession())
		assert.ErrorIs(t, err, ErrRefreshInProgress)

		close(release)
		require.NoError(t, <-errCh)
	})
}
