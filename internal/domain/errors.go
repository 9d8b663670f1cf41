package domain

import "errors"

// Error kinds shared by the domain operations and the persistence layer.
// Callers branch on them with errors.Is; wrapping adds context.
var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrCouponInactive    = errors.New("coupon is not active")
	ErrNotFound          = errors.New("not found")
	ErrMalformedRecord   = errors.New("malformed record")
	ErrParse             = errors.New("content is not parseable")
)
