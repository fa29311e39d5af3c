package source

import (
	"flag"
	"time"

	"github.com/sig-0/poerates/provider/poetrade"
	"github.com/sig-0/poerates/query"
)

const (
	defaultQueriesPath = "queries.txt"
	defaultTimeout     = time.Second * 30
)

// Config wraps the offer source configuration shared by the commands
type Config struct {
	QueriesPath string
	BaseURL     string
	Market      string
	Timeout     time.Duration
}

// RegisterFlags registers the offer source flags
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.QueriesPath,
		"queries",
		defaultQueriesPath,
		"the path to the query list (one \"buy X with Y [+ inverse]\" per line)",
	)

	fs.StringVar(
		&c.BaseURL,
		"base-url",
		poetrade.DefaultBaseURL,
		"the base URL of the currency trading site",
	)

	fs.StringVar(
		&c.Market,
		"market",
		poetrade.DefaultMarket,
		"the market (league) to search in",
	)

	fs.DurationVar(
		&c.Timeout,
		"timeout",
		defaultTimeout,
		"the request timeout for a single search page",
	)
}

// Provider creates the trading site offer provider
func (c *Config) Provider() *poetrade.Provider {
	return poetrade.NewProvider(c.BaseURL, c.Market, c.Timeout)
}

// Queries creates the query list file source
func (c *Config) Queries() *query.FileSource {
	return query.NewFileSource(c.QueriesPath)
}
