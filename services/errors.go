package services

import "errors"

// Validation errors raised by the pricing functions. They are returned
// synchronously so the caller can reject an invalid line item before it
// contaminates a group or quote total; nothing is ever coerced to zero.
var (
	ErrInvalidCurrency   = errors.New("invalid currency code")
	ErrIncompleteRateSet = errors.New("exchange rate set is incomplete")
	ErrInvalidMargin     = errors.New("profit margin must be in [0,1)")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInvalidPrice      = errors.New("list price must be zero or greater")
)

// Precondition errors raised by the revision engine. They block the requested
// mutation entirely; a partial delete is never emitted.
var (
	ErrEmptyClusterDeletion = errors.New("cannot delete the only version of a quote")
	ErrUnknownVersion       = errors.New("version does not belong to this quote")
)
