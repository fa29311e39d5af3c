package watch

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"golang.org/x/sync/errgroup"

	"github.com/sig-0/poerates/cmd/env"
	"github.com/sig-0/poerates/cmd/source"
	"github.com/sig-0/poerates/refresh"
	"github.com/sig-0/poerates/report"
	"github.com/sig-0/poerates/server"
	"github.com/sig-0/poerates/server/config"
	"github.com/sig-0/poerates/storage"
	"github.com/sig-0/poerates/storage/types"
)

const defaultInterval = time.Minute * 5

// watchCfg wraps the watch configuration
type watchCfg struct {
	config *config.Config
	source source.Config

	configPath string
	interval   time.Duration
}

// NewWatchCmd creates the watch subcommand
func NewWatchCmd() *ffcli.Command {
	cfg := &watchCfg{
		config: config.DefaultConfig(),
	}

	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	cfg.registerFlags(fs)

	cmd := &ffcli.Command{
		Name:       "watch",
		ShortUsage: "watch <subcommand> [flags]",
		LongHelp:   "Periodically refreshes the deal table, and serves it over HTTP",
		FlagSet:    fs,
		Exec: func(_ context.Context, _ []string) error {
			return flag.ErrHelp
		},
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}

	cmd.Subcommands = []*ffcli.Command{
		newWatchMemoryCmd(cfg),
		newWatchSQLCmd(cfg),
		newWatchRedisCmd(cfg),
	}

	return cmd
}

func (c *watchCfg) registerFlags(fs *flag.FlagSet) {
	c.source.RegisterFlags(fs)

	fs.DurationVar(
		&c.interval,
		"interval",
		defaultInterval,
		"the period between automatic refreshes",
	)

	fs.StringVar(
		&c.config.ListenAddress,
		"listen",
		config.DefaultListenAddress,
		"the IP:PORT URL for the server",
	)

	fs.StringVar(
		&c.configPath,
		"config",
		"",
		"the path to the server TOML configuration, if any",
	)
}

// newLogger creates the command logger.
// Logs go to stderr, the deal table goes to stdout
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// run runs the refresh scheduler and the HTTP server on top of the given storage [BLOCKING]
func (c *watchCfg) run(ctx context.Context, store storage.Storage, logger *slog.Logger) error {
	// Read the server configuration, if any
	if c.configPath != "" {
		serverCfg, err := config.Read(c.configPath)
		if err != nil {
			return fmt.Errorf("unable to read server config, %w", err)
		}

		c.config = serverCfg
	}

	builder := refresh.New(
		c.source.Queries(),
		c.source.Provider(),
		refresh.WithLogger(logger),
		refresh.WithProgress(func(percent float64) {
			logger.Debug(
				"refresh progress",
				"percent", percent,
			)
		}),
	)

	scheduler, err := refresh.NewScheduler(
		builder,
		store,
		c.interval,
		refresh.WithSchedulerLogger(logger),
		refresh.WithOnSnapshot(func(snapshot *types.Snapshot) {
			if err := report.Render(os.Stdout, snapshot); err != nil {
				logger.Error(
					"unable to render deal table",
					"err", err,
				)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("unable to create scheduler, %w", err)
	}

	// Create the server instance
	s, err := server.New(
		store,
		server.WithLogger(logger),
		server.WithConfig(c.config),
		server.WithTrigger(scheduler),
		server.WithStatus(scheduler),
	)
	if err != nil {
		return fmt.Errorf("unable to create server, %w", err)
	}

	runCtx, cancelFn := signal.NotifyContext(
		ctx,
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancelFn()

	group, gCtx := errgroup.WithContext(runCtx)

	// Start the HTTP server
	group.Go(func() error {
		return s.Serve(gCtx)
	})

	// Start the refresh service
	group.Go(func() error {
		return scheduler.Start(gCtx)
	})

	return group.Wait()
}
