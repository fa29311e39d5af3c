package watch

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/poerates/cmd/env"
	"github.com/sig-0/poerates/storage/sql"
)

type watchSQLCfg struct {
	rootCfg *watchCfg
}

// newWatchSQLCmd creates the watch sql command
func newWatchSQLCmd(rootCfg *watchCfg) *ffcli.Command {
	cfg := &watchSQLCfg{
		rootCfg: rootCfg,
	}

	fs := flag.NewFlagSet("sql", flag.ExitOnError)
	cfg.rootCfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "sql",
		ShortUsage: "watch sql [flags]",
		LongHelp:   "Watches the deal table, keeping snapshots in Postgres",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

// exec executes the watch sql command
func (c *watchSQLCfg) exec(ctx context.Context, _ []string) error {
	logger := newLogger()

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn("unable to load .env file")
	}

	// DB
	dsn := os.Getenv(env.Prefix + env.DBURLSuffix)
	if dsn == "" {
		return fmt.Errorf("missing %s", env.Prefix+env.DBURLSuffix)
	}

	// Open DB connection
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("unable to open DB connection: %w", err)
	}

	defer func() {
		closeCtx, cancelFn := context.WithTimeout(context.Background(), time.Second*5)
		defer cancelFn()

		if err := conn.Close(closeCtx); err != nil {
			logger.Error(
				"unable to gracefully close DB connection",
				"err", err,
			)
		}
	}()

	// Check DB reachability
	pingCtx, cancelPing := context.WithTimeout(ctx, time.Second*5)
	defer cancelPing()

	if err = conn.Ping(pingCtx); err != nil {
		return fmt.Errorf("unable to reach DB (ping): %w", err)
	}

	logger.Info("DB ping success")

	return c.rootCfg.run(ctx, sql.NewStorage(conn), logger)
}
