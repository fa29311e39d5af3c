package watch

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	goredis "github.com/redis/go-redis/v9"

	"github.com/sig-0/poerates/cmd/env"
	"github.com/sig-0/poerates/storage/redis"
)

type watchRedisCfg struct {
	rootCfg *watchCfg

	ttl time.Duration
}

// newWatchRedisCmd creates the watch redis command
func newWatchRedisCmd(rootCfg *watchCfg) *ffcli.Command {
	cfg := &watchRedisCfg{
		rootCfg: rootCfg,
	}

	fs := flag.NewFlagSet("redis", flag.ExitOnError)
	cfg.rootCfg.registerFlags(fs)

	fs.DurationVar(
		&cfg.ttl,
		"ttl",
		0,
		"how long a snapshot is kept, 0 keeps it until it's replaced",
	)

	return &ffcli.Command{
		Name:       "redis",
		ShortUsage: "watch redis [flags]",
		LongHelp:   "Watches the deal table, keeping snapshots in Redis",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

// exec executes the watch redis command
func (c *watchRedisCfg) exec(ctx context.Context, _ []string) error {
	logger := newLogger()

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn("unable to load .env file")
	}

	url := os.Getenv(env.Prefix + env.RedisURLSuffix)
	if url == "" {
		return fmt.Errorf("missing %s", env.Prefix+env.RedisURLSuffix)
	}

	opts, err := goredis.ParseURL(url)
	if err != nil {
		return fmt.Errorf("invalid redis URL: %w", err)
	}

	client := goredis.NewClient(opts)

	defer func() {
		if err := client.Close(); err != nil {
			logger.Error(
				"unable to gracefully close redis connection",
				"err", err,
			)
		}
	}()

	// Check reachability
	pingCtx, cancelPing := context.WithTimeout(ctx, time.Second*5)
	defer cancelPing()

	if err = client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("unable to reach redis (ping): %w", err)
	}

	logger.Info("redis ping success")

	return c.rootCfg.run(ctx, redis.NewStorage(client, c.ttl), logger)
}
