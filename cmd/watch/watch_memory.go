package watch

import (
	"context"
	"flag"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/poerates/cmd/env"
	"github.com/sig-0/poerates/storage/memory"
)

type watchMemoryCfg struct {
	rootCfg *watchCfg
}

// newWatchMemoryCmd creates the watch memory command
func newWatchMemoryCmd(rootCfg *watchCfg) *ffcli.Command {
	cfg := &watchMemoryCfg{
		rootCfg: rootCfg,
	}

	fs := flag.NewFlagSet("memory", flag.ExitOnError)
	cfg.rootCfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "memory",
		ShortUsage: "watch memory [flags]",
		LongHelp:   "Watches the deal table, keeping snapshots in memory",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *watchMemoryCfg) exec(ctx context.Context, _ []string) error {
	logger := newLogger()

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn("unable to load .env file")
	}

	return c.rootCfg.run(ctx, memory.NewStorage(), logger)
}
