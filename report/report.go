package report

import (
	"math"

	"github.com/sig-0/poerates/storage/types"
)

const (
	greatThreshold  = 0.92
	decentThreshold = 0.96
)

// Rows decorates the deals with their display values.
// Trends are computed against the same-position deal of the previous refresh, if any
func Rows(deals, previous []*types.Deal) []*types.Row {
	rows := make([]*types.Row, 0, len(deals))

	for i, deal := range deals {
		var prev *types.Deal
		if i < len(previous) {
			prev = previous[i]
		}

		row := &types.Row{
			Deal:           deal,
			ForwardQuality: Classify(deal.Forward),
			InverseQuality: Classify(deal.Inverse),
			ForwardTrend:   types.TrendUnchanged,
			InverseTrend:   types.TrendUnchanged,
		}

		if spread, ok := RelativeSpread(deal); ok {
			row.RelativeSpread = &spread
		}

		if prev != nil {
			row.ForwardTrend = TrendOf(deal.Forward.Average, prev.Forward.Average)
			row.InverseTrend = TrendOf(deal.Inverse.Average, prev.Inverse.Average)
		}

		rows = append(rows, row)
	}

	return rows
}

// RelativeSpread returns the percent difference between the forward
// and inverse averages, rounded half to even to 1dp. It's omitted when either is missing
func RelativeSpread(deal *types.Deal) (float64, bool) {
	var (
		avg    = deal.Forward.Average
		invAvg = deal.Inverse.Average
	)

	if avg == 0 || invAvg == 0 {
		return 0, false
	}

	lo, hi := minMax(avg, invAvg)

	return math.RoundToEven((hi/lo-1)*100*10) / 10, true
}

// TrendOf classifies the change of an average between refreshes
func TrendOf(current, previous float64) types.Trend {
	switch {
	case current > previous:
		return types.TrendUp
	case current < previous:
		return types.TrendDown
	default:
		return types.TrendUnchanged
	}
}

// Classify grades the best offer against the average of its direction
func Classify(summary types.RateSummary) types.Quality {
	if summary.IsEmpty() || summary.Best == 0 || !summary.HasAverage() {
		return types.QualityOrdinary
	}

	lo, hi := minMax(summary.Best, summary.Average)

	return QualityOf(lo / hi)
}

// QualityOf grades a best / average spread ratio
func QualityOf(ratio float64) types.Quality {
	switch {
	case ratio < greatThreshold:
		return types.QualityGreat
	case ratio < decentThreshold:
		return types.QualityDecent
	default:
		return types.QualityOrdinary
	}
}

func minMax(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}

	return b, a
}
