package services

import "fmt"

// Currency is a closed set of the currencies a line item may be priced in.
// TRY is the settlement currency: every total is rolled up into it.
type Currency string

const (
	TRY Currency = "TRY"
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// Currencies lists all recognized codes in display order.
var Currencies = []Currency{TRY, USD, EUR}

// ParseCurrency converts a stored string into a Currency, rejecting anything
// outside the closed set so bad data fails at construction, not at computation.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(s) {
	case TRY, USD, EUR:
		return Currency(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
}

// RateSet is a quote-scoped snapshot of exchange rates into TRY. The TRY rate
// is implicitly 1. A RateSet is a value: it is copied into revisions, threaded
// into every pricing call, and never mutated in place.
type RateSet struct {
	USD float64
	EUR float64
}

// Complete reports whether both rates are populated with usable values.
func (r RateSet) Complete() bool {
	return r.USD > 0 && r.EUR > 0
}

// ToSettlement converts an amount in the given currency into TRY using the
// rate set. The rate set must be complete even for TRY amounts, so an
// incomplete set surfaces at the first pricing pass rather than only when a
// foreign-currency item shows up.
func ToSettlement(amount float64, currency Currency, rates RateSet) (float64, error) {
	if !rates.Complete() {
		return 0, fmt.Errorf("%w: USD=%v EUR=%v", ErrIncompleteRateSet, rates.USD, rates.EUR)
	}

	switch currency {
	case TRY:
		return amount, nil
	case USD:
		return amount * rates.USD, nil
	case EUR:
		return amount * rates.EUR, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCurrency, string(currency))
}
