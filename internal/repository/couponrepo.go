package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/kahvekart/kahve-kart/internal/model"
)

// CouponRepository stores gift coupons. A coupon row existing means the
// coupon is still redeemable; redemption deletes it.
type CouponRepository interface {
	// Issue creates a coupon expiring after ttl.
	Issue(ctx context.Context, userID uuid.UUID, cafeName string, ttl time.Duration) (*model.Coupon, error)

	// Redeem deletes the coupon and returns the owner's display name for
	// operator confirmation. Fails with ErrNotFound when the user or coupon
	// is absent, ErrMerchantMismatch when the coupon belongs to another cafe,
	// and ErrCouponExpired past the expiry date.
	Redeem(ctx context.Context, userID uuid.UUID, cafeName string, couponID uuid.UUID) (displayName string, err error)

	// ListByUser returns the user's outstanding coupons, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Coupon, error)
}
