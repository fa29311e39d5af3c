package server

import (
	"github.com/sig-0/poerates/provider/currencies"
	"github.com/sig-0/poerates/storage/types"
)

type CurrenciesResponse struct {
	Results []currencies.Entry `json:"results"`
}

type ContactResponse struct {
	Message string     `json:"message"`
	Side    types.Side `json:"side"`
	Trader  string     `json:"trader"`
	Account string     `json:"account"`
	Stock   int        `json:"stock"`
}

type RefreshResponse struct {
	Queued bool `json:"queued"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
