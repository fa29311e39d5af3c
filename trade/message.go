package trade

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sig-0/poerates/storage/types"
)

var ErrNoOffer = errors.New("no best offer to contact")

// Compose builds the whisper for contacting the best offer seller
// of the given deal side:
//
//	@<trader> Hi, I'd like to buy your <sell> <currency> for my <buy> <currency> in <market>.
func Compose(deal *types.Deal, side types.Side, market string) (string, error) {
	summary := deal.Summary(side)
	if summary.IsEmpty() {
		return "", ErrNoOffer
	}

	var (
		contact = summary.Contact

		sellCurrency = deal.Query.Want
		buyCurrency  = deal.Query.Have
	)

	if side == types.SideInverse {
		sellCurrency, buyCurrency = buyCurrency, sellCurrency
	}

	return fmt.Sprintf(
		"@%s Hi, I'd like to buy your %s %s for my %s %s in %s.",
		contact.Trader,
		FormatAmount(contact.SellValue),
		sellCurrency,
		FormatAmount(contact.BuyValue),
		buyCurrency,
		market,
	), nil
}

// FormatAmount drops the decimal part of integer-valued amounts ("5.0" -> "5")
func FormatAmount(amount string) string {
	return strings.TrimSuffix(amount, ".0")
}
