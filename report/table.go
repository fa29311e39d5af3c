package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sig-0/poerates/storage/types"
)

var headers = []string{
	"",
	"Best",
	"Average",
	"#",
	"Inverse best",
	"Inverse avg",
	"#",
	"Δ",
}

// Render writes the snapshot as a text table.
// Best offers are marked with ** (great) or * (decent),
// averages with ↑ / ↓ when they moved since the previous refresh
func Render(w io.Writer, snapshot *types.Snapshot) error {
	if _, err := fmt.Fprintf(
		w,
		"Currency in %s, last updated %s\n",
		snapshot.Market,
		snapshot.TakenAt.Local().Format("15:04:05"),
	); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	if _, err := fmt.Fprintln(tw, strings.Join(headers, "\t")+"\t"); err != nil {
		return err
	}

	for _, row := range snapshot.Rows {
		var (
			deal   = row.Deal
			spread string
		)

		if row.RelativeSpread != nil {
			spread = formatFloat(*row.RelativeSpread) + "%"
		}

		cells := []string{
			deal.Query.Label,
			bestCell(deal.Forward, row.ForwardQuality),
			averageCell(deal.Forward, row.ForwardTrend),
			countCell(deal.Forward),
			bestCell(deal.Inverse, row.InverseQuality),
			averageCell(deal.Inverse, row.InverseTrend),
			countCell(deal.Inverse),
			spread,
		}

		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t"); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func bestCell(summary types.RateSummary, quality types.Quality) string {
	if summary.IsEmpty() {
		return ""
	}

	cell := formatFloat(summary.Best)

	switch quality {
	case types.QualityGreat:
		cell += "**"
	case types.QualityDecent:
		cell += "*"
	default:
	}

	return cell
}

func averageCell(summary types.RateSummary, trend types.Trend) string {
	if !summary.HasAverage() {
		return ""
	}

	cell := formatFloat(summary.Average)

	switch trend {
	case types.TrendUp:
		cell += "↑"
	case types.TrendDown:
		cell += "↓"
	default:
	}

	return cell
}

func countCell(summary types.RateSummary) string {
	if summary.Count == 0 {
		return ""
	}

	return strconv.Itoa(summary.Count)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
