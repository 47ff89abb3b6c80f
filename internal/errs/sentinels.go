// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Scan payload decoding failures (expected operator-input conditions).
var (
	// ErrInvalidFormat indicates the scanned text is neither a JSON payload nor a legacy "type:userId" pair.
	ErrInvalidFormat = errors.New("invalid payload format")

	// ErrUnknownQRType indicates a well-formed payload that matches no known request shape.
	ErrUnknownQRType = errors.New("unknown qr type")

	// ErrMissingMerchant indicates a grant request with no cafe name and no operator affiliation to fall back on.
	ErrMissingMerchant = errors.New("missing merchant")

	// ErrMissingTimestamp indicates a grant request carrying no replay token.
	ErrMissingTimestamp = errors.New("missing timestamp")
)

// Redemption and grant failures.
var (
	// ErrAlreadyUsed indicates the scan token was consumed before.
	ErrAlreadyUsed = errors.New("already used")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMerchantMismatch indicates the coupon belongs to a different cafe than the redeeming one.
	ErrMerchantMismatch = errors.New("merchant mismatch")

	// ErrCouponExpired indicates the coupon exists but its expiry date has passed.
	ErrCouponExpired = errors.New("coupon expired")

	// ErrCoolingDown indicates the scanner has not re-armed since the previous scan.
	ErrCoolingDown = errors.New("cooling down")
)

// Account failures.
var (
	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")
)
