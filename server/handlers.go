package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sig-0/poerates/provider/currencies"
	"github.com/sig-0/poerates/storage/types"
	"github.com/sig-0/poerates/trade"
)

var (
	errUnableToFetchDeals = errors.New("unable to fetch deals")
	errNoSnapshot         = errors.New("no refresh available for market")
	errRowNotFound        = errors.New("row not found")
	errRefreshPending     = errors.New("refresh already pending")
	errRefreshUnavailable = errors.New("on-demand refresh unavailable")
	errStatusUnavailable  = errors.New("refresh status unavailable")

	errInvalidMarket = errors.New("invalid market")
	errInvalidRow    = errors.New("invalid row")
	errInvalidSide   = errors.New("invalid side")
)

func (s *Server) Deals(w http.ResponseWriter, r *http.Request) {
	market, err := parseMarket(chi.URLParam(r, "market"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	snapshot, status, err := s.latestSnapshot(r, market)
	if err != nil {
		writeError(w, status, err)

		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) Contact(w http.ResponseWriter, r *http.Request) {
	var (
		marketParam = chi.URLParam(r, "market")
		rowParam    = chi.URLParam(r, "row")
		sideParam   = r.URL.Query().Get("side")
	)

	// Parse the market
	market, err := parseMarket(marketParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the table row (0-based)
	row, err := strconv.Atoi(strings.TrimSpace(rowParam))
	if err != nil || row < 0 {
		writeError(w, http.StatusBadRequest, errInvalidRow)

		return
	}

	// Parse the deal side (defaults to forward)
	side, err := parseSide(sideParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	snapshot, status, err := s.latestSnapshot(r, market)
	if err != nil {
		writeError(w, status, err)

		return
	}

	if row >= len(snapshot.Rows) {
		writeError(w, http.StatusNotFound, errRowNotFound)

		return
	}

	deal := snapshot.Rows[row].Deal

	message, err := trade.Compose(deal, side, snapshot.Market)
	if err != nil {
		writeError(w, http.StatusNotFound, err)

		return
	}

	contact := deal.Summary(side).Contact

	writeJSON(w, http.StatusOK, &ContactResponse{
		Message: message,
		Side:    side,
		Trader:  contact.Trader,
		Account: contact.Account,
		Stock:   contact.Stock,
	})
}

func (s *Server) Currencies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, &CurrenciesResponse{
		Results: currencies.All(),
	})
}

func (s *Server) Refresh(w http.ResponseWriter, _ *http.Request) {
	if s.trigger == nil {
		writeError(w, http.StatusServiceUnavailable, errRefreshUnavailable)

		return
	}

	if !s.trigger.Trigger() {
		writeError(w, http.StatusConflict, errRefreshPending)

		return
	}

	writeJSON(w, http.StatusAccepted, &RefreshResponse{
		Queued: true,
	})
}

func (s *Server) RefreshStatus(w http.ResponseWriter, _ *http.Request) {
	if s.status == nil {
		writeError(w, http.StatusServiceUnavailable, errStatusUnavailable)

		return
	}

	writeJSON(w, http.StatusOK, s.status.Status())
}

// latestSnapshot fetches the market's latest snapshot,
// returning the response status on error
func (s *Server) latestSnapshot(r *http.Request, market string) (*types.Snapshot, int, error) {
	snapshot, err := s.storage.LatestSnapshot(r.Context(), market)
	if err != nil {
		s.logger.Debug(
			"unable to fetch snapshot",
			"market", market,
			"err", err,
		)

		return nil, http.StatusInternalServerError, errUnableToFetchDeals
	}

	if snapshot == nil {
		return nil, http.StatusNotFound, errNoSnapshot
	}

	return snapshot, http.StatusOK, nil
}

func parseMarket(v string) (string, error) {
	market := strings.TrimSpace(v)
	if market == "" {
		return "", errInvalidMarket
	}

	return market, nil
}

func parseSide(v string) (types.Side, error) {
	switch side := types.Side(strings.ToLower(strings.TrimSpace(v))); side {
	case "", types.SideForward:
		return types.SideForward, nil
	case types.SideInverse:
		return types.SideInverse, nil
	default:
		return "", errInvalidSide
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}
