package sql

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/poerates/cmd/env"
	dbpkg "github.com/sig-0/poerates/storage/sql"
)

const schemaDir = "schema"

// migrateCfg wraps the migrate configuration
type migrateCfg struct {
	rootCfg *sqlCfg
}

// newMigrateCmd creates the migrate command
func newMigrateCmd(rootCfg *sqlCfg) *ffcli.Command {
	cfg := &migrateCfg{
		rootCfg: rootCfg,
	}

	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	rootCfg.RegisterFlags(fs)

	return &ffcli.Command{
		Name:       "migrate",
		ShortUsage: "sql migrate [migration.sql, migration2.sql ...]",
		LongHelp:   "Runs the DB migrations (all embedded migrations, if none are specified)",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *migrateCfg) exec(ctx context.Context, args []string) error {
	migrations, err := migrationNames(args)
	if err != nil {
		return err
	}

	// Load .env
	if err = godotenv.Load(); err != nil {
		fmt.Println("Unable to load .env file")
	}

	dsn := os.Getenv(env.Prefix + env.DBURLSuffix)
	if dsn == "" {
		return fmt.Errorf("missing %s", env.Prefix+env.DBURLSuffix)
	}

	// Open the DB
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("unable to open DB connection: %w", err)
	}

	defer func() {
		closeCtx, cancelFn := context.WithTimeout(context.Background(), time.Second*5)
		defer cancelFn()

		if err := conn.Close(closeCtx); err != nil {
			fmt.Printf("Unable to gracefully close DB: %s\n", err.Error())
		}
	}()

	// Ping the DB
	if err = conn.Ping(ctx); err != nil {
		return fmt.Errorf("unable to ping DB: %w", err)
	}

	for _, name := range migrations {
		sqlBytes, err := dbpkg.SchemaFS.ReadFile(path.Join(schemaDir, name))
		if err != nil {
			return fmt.Errorf("unable to read migration %q: %w", name, err)
		}

		fmt.Printf("Running migration %s...\n", name)

		if _, err := conn.Exec(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("unable to run migration %q: %w", name, err)
		}

		fmt.Printf("Migration %q complete\n", name)
	}

	fmt.Println("All migrations complete!")

	return nil
}

// migrationNames returns the requested migrations,
// or all embedded migrations in name order
func migrationNames(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	entries, err := fs.ReadDir(dbpkg.SchemaFS, schemaDir)
	if err != nil {
		return nil, fmt.Errorf("unable to list migrations: %w", err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		names = append(names, entry.Name())
	}

	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("no migration files found")
	}

	return names, nil
}
