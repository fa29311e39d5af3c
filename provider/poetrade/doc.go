// Package poetrade provides the currency offer provider for the
// currency.poe.trade style trading site.
//
// # Search
//
// URL: <base>/search?league=<market>&online=x&want=<want>&have=<have>
//
// The want / have values are currency indices from the currencies catalog.
// Only sellers that are online are listed.
//
// # Offers
//
// Every listing is an element with the "displayoffer" class, carrying:
//
//	data-buyvalue   how much of "have" the seller asks for
//	data-sellvalue  how much of "want" the seller gives
//	data-ign        the seller's in-game handle
//	data-username   the seller's account
//	data-stock      the seller's stock (optional, defaults to 0)
//
// Listings are returned in document order, which is the site's own ranking.
// The first listing is taken as the best offer without any re-ranking,
// so a change in the site's ranking criteria silently changes what "best" means.
//
// Any non-2xx response is reported as a *FetchError, and is never retried.
package poetrade
