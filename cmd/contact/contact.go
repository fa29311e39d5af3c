package contact

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/poerates/aggregate"
	"github.com/sig-0/poerates/cmd/env"
	"github.com/sig-0/poerates/cmd/source"
	"github.com/sig-0/poerates/query"
	"github.com/sig-0/poerates/storage/types"
	"github.com/sig-0/poerates/trade"
)

var errMissingQuery = errors.New("no query provided")

// contactCfg wraps the contact configuration
type contactCfg struct {
	source source.Config

	inverse bool
	noCopy  bool
}

// NewContactCmd creates the contact subcommand
func NewContactCmd() *ffcli.Command {
	cfg := &contactCfg{}

	fs := flag.NewFlagSet("contact", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "contact",
		ShortUsage: "contact [flags] buy <currency> with <currency>",
		LongHelp:   "Composes the trade message for the best offer of a pair, and copies it to the clipboard",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *contactCfg) registerFlags(fs *flag.FlagSet) {
	c.source.RegisterFlags(fs)

	fs.BoolVar(
		&c.inverse,
		"inverse",
		false,
		"contact the best offer of the inverse pair",
	)

	fs.BoolVar(
		&c.noCopy,
		"no-copy",
		false,
		"only print the message, without copying it to the clipboard",
	)
}

func (c *contactCfg) exec(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errMissingQuery
	}

	q, err := query.Parse(strings.Join(args, " "))
	if err != nil {
		return err
	}

	var (
		provider = c.source.Provider()
		side     = types.SideForward
		deal     = &types.Deal{
			Query: q,
		}
	)

	if c.inverse {
		side = types.SideInverse

		offers, err := provider.Offers(ctx, q.HaveIndex, q.WantIndex)
		if err != nil {
			return fmt.Errorf("unable to fetch inverse offers, %w", err)
		}

		deal.Inverse = aggregate.Summarize(offers)
	} else {
		offers, err := provider.Offers(ctx, q.WantIndex, q.HaveIndex)
		if err != nil {
			return fmt.Errorf("unable to fetch offers, %w", err)
		}

		deal.Forward = aggregate.Summarize(offers)
	}

	return deliver(deal, side, provider.Market(), clipboardFor(c.noCopy))
}

// clipboardFor returns the clipboard the message is copied to, if any
func clipboardFor(noCopy bool) trade.Clipboard {
	if noCopy {
		return nil
	}

	return trade.System{}
}

// deliver composes the message, prints it and copies it to the clipboard
func deliver(deal *types.Deal, side types.Side, market string, clipboard trade.Clipboard) error {
	message, err := trade.Compose(deal, side, market)
	if err != nil {
		return err
	}

	fmt.Println(message)

	if clipboard == nil {
		return nil
	}

	if err := clipboard.Copy(message); err != nil {
		return err
	}

	fmt.Println("Copied to clipboard")

	return nil
}
