package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrOperationFailed    = errors.New("operation failed")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Checkout / coupon validation errors; surfaced to the caller with nothing persisted.
	ErrEmptyCart               = errors.New("cart is empty")
	ErrCouponInvalid           = errors.New("coupon code is invalid")
	ErrCouponExpired           = errors.New("coupon code has expired")
	ErrCouponUsageLimitReached = errors.New("coupon usage limit reached")
	ErrMinPurchaseNotMet       = errors.New("subtotal below coupon minimum purchase")

	// Payment / refund errors
	ErrOrderNotCompleted        = errors.New("order is not completed")
	ErrRefundWindowClosed       = errors.New("refund window has elapsed")
	ErrRefundAmountExceedsTotal = errors.New("refund amount exceeds order total")
	ErrProviderUnavailable      = errors.New("payment provider unavailable")
	ErrSessionNotPaid           = errors.New("checkout session is not paid")
)
