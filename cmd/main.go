package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/poerates/cmd/contact"
	"github.com/sig-0/poerates/cmd/once"
	"github.com/sig-0/poerates/cmd/sql"
	"github.com/sig-0/poerates/cmd/watch"
)

func main() {
	fs := flag.NewFlagSet("root", flag.ExitOnError)

	// Create the root command
	cmd := &ffcli.Command{
		ShortUsage: "<sub-command> [flags] [<arg>...]",
		LongHelp:   "Tracks currency exchange deals on currency.poe.trade",
		FlagSet:    fs,
		Exec: func(_ context.Context, _ []string) error {
			return flag.ErrHelp
		},
	}

	// Add the subcommands
	cmd.Subcommands = []*ffcli.Command{
		watch.NewWatchCmd(),
		once.NewOnceCmd(),
		contact.NewContactCmd(),
		sql.NewSQLCmd(),
	}

	if err := cmd.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
