package once

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/poerates/cmd/env"
	"github.com/sig-0/poerates/cmd/source"
	"github.com/sig-0/poerates/refresh"
	"github.com/sig-0/poerates/report"
)

// onceCfg wraps the once configuration
type onceCfg struct {
	source source.Config

	verbose bool
}

// NewOnceCmd creates the once subcommand
func NewOnceCmd() *ffcli.Command {
	cfg := &onceCfg{}

	fs := flag.NewFlagSet("once", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "once",
		ShortUsage: "once [flags]",
		LongHelp:   "Runs a single refresh, and prints the deal table",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *onceCfg) registerFlags(fs *flag.FlagSet) {
	c.source.RegisterFlags(fs)

	fs.BoolVar(
		&c.verbose,
		"verbose",
		false,
		"log the refresh progress to stderr",
	)
}

func (c *onceCfg) exec(ctx context.Context, _ []string) error {
	var output io.Writer = io.Discard
	if c.verbose {
		output = os.Stderr
	}

	logger := slog.New(slog.NewTextHandler(output, nil))

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn("unable to load .env file")
	}

	builder := refresh.New(
		c.source.Queries(),
		c.source.Provider(),
		refresh.WithLogger(logger),
		refresh.WithProgress(func(percent float64) {
			logger.Info(
				"refresh progress",
				"percent", percent,
			)
		}),
	)

	snapshot, err := builder.Refresh(ctx, refresh.NewSession())
	if err != nil {
		return fmt.Errorf("unable to refresh, %w", err)
	}

	return report.Render(os.Stdout, snapshot)
}
