package types

import "time"

type Side string

const (
	SideForward Side = "forward"
	SideInverse Side = "inverse"
)

func (s Side) String() string {
	return string(s)
}

type Trend string

const (
	TrendUp        Trend = "up"
	TrendDown      Trend = "down"
	TrendUnchanged Trend = "unchanged"
)

func (t Trend) String() string {
	return string(t)
}

type Quality string

const (
	QualityGreat    Quality = "great"
	QualityDecent   Quality = "decent"
	QualityOrdinary Quality = "ordinary"
)

func (q Quality) String() string {
	return string(q)
}

// Query is a single parsed "buy X with Y [+ inverse]" directive
type Query struct {
	Raw   string `json:"raw"`
	Label string `json:"label"`

	Want string `json:"want"`
	Have string `json:"have"`

	WantIndex int `json:"want_index"`
	HaveIndex int `json:"have_index"`

	InverseRequested bool `json:"inverse_requested"`
}

// Offer is a single trade listing, as ranked by the source
type Offer struct {
	Trader  string `json:"trader"`
	Account string `json:"account"`

	// Raw values, as given by the source
	BuyValue  string `json:"buy_value"`
	SellValue string `json:"sell_value"`

	Buy   float64 `json:"-"`
	Sell  float64 `json:"-"`
	Stock int     `json:"stock"`
}

// Contact is the seller information of the best offer
type Contact struct {
	Trader    string `json:"trader"`
	Account   string `json:"account"`
	BuyValue  string `json:"buy_value"`
	SellValue string `json:"sell_value"`
	Stock     int    `json:"stock"`
}

// RateSummary aggregates the offers of one direction of a pair.
// A summary without a contact carries no data
type RateSummary struct {
	Contact *Contact `json:"contact,omitempty"`

	Best    float64 `json:"best"`
	Average float64 `json:"average"`

	// Count is the number of legitimate (non-outlier) offers
	Count int `json:"count"`

	// Averaged is the number of rates that went into Average
	Averaged int `json:"averaged"`
}

// IsEmpty returns true if the summary was built from no offers
func (s RateSummary) IsEmpty() bool {
	return s.Contact == nil
}

// HasAverage returns true if at least one rate was averaged
func (s RateSummary) HasAverage() bool {
	return s.Averaged > 0
}

// Deal is a query with its forward and inverse summaries
type Deal struct {
	Query   *Query      `json:"query"`
	Forward RateSummary `json:"forward"`
	Inverse RateSummary `json:"inverse"`
}

// Summary returns the summary for the given side
func (d *Deal) Summary(side Side) RateSummary {
	if side == SideInverse {
		return d.Inverse
	}

	return d.Forward
}

// Row is a deal decorated with its derived display values
type Row struct {
	Deal *Deal `json:"deal"`

	// RelativeSpread is the forward / inverse average spread (%), if any
	RelativeSpread *float64 `json:"relative_spread,omitempty"`

	ForwardTrend   Trend   `json:"forward_trend"`
	InverseTrend   Trend   `json:"inverse_trend"`
	ForwardQuality Quality `json:"forward_quality"`
	InverseQuality Quality `json:"inverse_quality"`
}

// Snapshot is the result of a single refresh cycle
type Snapshot struct {
	TakenAt time.Time `json:"taken_at"`
	ID      string    `json:"id"`
	Market  string    `json:"market"`
	Rows    []*Row    `json:"rows"`
}

// Deals returns the snapshot deals, in row order
func (s *Snapshot) Deals() []*Deal {
	deals := make([]*Deal, 0, len(s.Rows))

	for _, row := range s.Rows {
		deals = append(deals, row.Deal)
	}

	return deals
}

// RefreshStatus is the outcome of the latest refresh cycles
type RefreshStatus struct {
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
	LastFailureAt *time.Time `json:"last_failure_at,omitempty"`

	// LastError is the error of the latest failed refresh, if any
	LastError string `json:"last_error,omitempty"`

	// Failing is set when the latest refresh failed
	Failing bool `json:"failing"`
}
