package aggregate

import (
	"math"

	"github.com/sig-0/poerates/storage/types"
)

const (
	// AverageWindow is the max number of rates (after the best) that are averaged
	AverageWindow = 5

	// outlierFactor bounds legitimate rates to [best / factor, best * factor]
	outlierFactor = 2
)

// Rate returns the offer's exchange rate, as the larger
// of the buy / sell values over the smaller one, rounded to 2dp
func Rate(offer *types.Offer) float64 {
	lo, hi := minMax(offer.Buy, offer.Sell)

	return round(hi/lo, 2)
}

// Summarize aggregates the offers of a single pair direction.
// The offers are expected in the source's rank order: the first one is the best,
// and it is never re-sorted
func Summarize(offers []*types.Offer) types.RateSummary {
	if len(offers) == 0 {
		return types.RateSummary{}
	}

	var (
		first = offers[0]
		best  = Rate(first)

		count    = len(offers)
		sum      float64
		averaged int
	)

	for _, offer := range offers[1:] {
		rate := Rate(offer)

		if isOutlier(rate, best) {
			count--

			continue
		}

		if averaged < AverageWindow {
			sum += rate
			averaged++
		}
	}

	var average float64
	if averaged != 0 {
		average = round(sum/float64(averaged), 2)
	}

	return types.RateSummary{
		Contact: &types.Contact{
			Trader:    first.Trader,
			Account:   first.Account,
			BuyValue:  first.BuyValue,
			SellValue: first.SellValue,
			Stock:     first.Stock,
		},
		Best:     best,
		Average:  average,
		Count:    count,
		Averaged: averaged,
	}
}

func isOutlier(rate, best float64) bool {
	return rate > best*outlierFactor || rate < best/outlierFactor
}

func minMax(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}

	return b, a
}

// round rounds half to even, so exact ties (9 / 8 = 1.125) go to the even digit
func round(v float64, places int) float64 {
	p := math.Pow10(places)

	return math.RoundToEven(v*p) / p
}
