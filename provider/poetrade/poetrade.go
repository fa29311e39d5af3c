package poetrade

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sig-0/poerates/storage/types"
)

const (
	DefaultBaseURL = "http://currency.poe.trade/"
	DefaultMarket  = "Essence"

	offerSelector = ".displayoffer"
)

var (
	errInvalidOffer = errors.New("invalid offer")
	errMissingAttr  = errors.New("missing attribute")
)

// FetchError is returned when the search page can't be retrieved
type FetchError struct {
	Err        error
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unable to fetch %s: %s", e.URL, e.Err)
	}

	return fmt.Sprintf("unable to fetch %s: invalid status code received: %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Provider scrapes currency offers from the trading site search pages
type Provider struct {
	client  *http.Client
	baseURL string
	market  string
}

// NewProvider creates a new instance of the trading site provider
func NewProvider(baseURL, market string, timeout time.Duration) *Provider {
	return &Provider{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		market:  market,
	}
}

// Market returns the market (league) the provider searches in
func (p *Provider) Market() string {
	return p.market
}

// SearchURL builds the search page URL for the given currency indices
func (p *Provider) SearchURL(want, have int) string {
	params := url.Values{}
	params.Set("league", p.market)
	params.Set("online", "x")
	params.Set("want", strconv.Itoa(want))
	params.Set("have", strconv.Itoa(have))

	return strings.TrimSuffix(p.baseURL, "/") + "/search?" + params.Encode()
}

// Offers fetches the online offers for buying want with have, in rank order
func (p *Provider) Offers(ctx context.Context, want, have int) ([]*types.Offer, error) {
	searchURL := p.SearchURL(want, have)

	// Prepare the request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("unable to create new GET request: %w", err)
	}

	// Execute the request
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &FetchError{
			URL: searchURL,
			Err: err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{
			URL:        searchURL,
			StatusCode: resp.StatusCode,
		}
	}

	// Construct document for parsing
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to construct query doc: %w", err)
	}

	return ParseOffers(doc)
}

// ParseOffers extracts the offers from a search page, in document order
func ParseOffers(doc *goquery.Document) ([]*types.Offer, error) {
	var (
		sel    = doc.Find(offerSelector)
		offers = make([]*types.Offer, 0, sel.Length())
		err    error
	)

	sel.EachWithBreak(func(i int, s *goquery.Selection) bool {
		offer, parseErr := parseOffer(s)
		if parseErr != nil {
			err = fmt.Errorf("offer #%d: %w", i, parseErr)

			return false
		}

		offers = append(offers, offer)

		return true
	})

	if err != nil {
		return nil, err
	}

	return offers, nil
}

func parseOffer(s *goquery.Selection) (*types.Offer, error) {
	buyRaw, buy, err := parseValue(s, "data-buyvalue")
	if err != nil {
		return nil, err
	}

	sellRaw, sell, err := parseValue(s, "data-sellvalue")
	if err != nil {
		return nil, err
	}

	return &types.Offer{
		Trader:    strings.TrimSpace(s.AttrOr("data-ign", "")),
		Account:   strings.TrimSpace(s.AttrOr("data-username", "")),
		BuyValue:  buyRaw,
		SellValue: sellRaw,
		Buy:       buy,
		Sell:      sell,
		Stock:     parseStock(s),
	}, nil
}

// parseValue parses a required, positive offer value attribute
func parseValue(s *goquery.Selection, attr string) (string, float64, error) {
	raw, ok := s.Attr(attr)
	if !ok {
		return "", 0, fmt.Errorf("%w %s", errMissingAttr, attr)
	}

	raw = strings.TrimSpace(raw)

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: unable to parse %s %q: %w", errInvalidOffer, attr, raw, err)
	}

	if v <= 0 {
		return "", 0, fmt.Errorf("%w: non-positive %s %q", errInvalidOffer, attr, raw)
	}

	return raw, v, nil
}

// parseStock parses the optional stock attribute, defaulting to 0
func parseStock(s *goquery.Selection) int {
	raw := strings.TrimSpace(s.AttrOr("data-stock", ""))
	if raw == "" {
		return 0
	}

	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}

	return int(f)
}
