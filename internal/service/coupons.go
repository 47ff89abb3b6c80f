package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/kahvekart/kahve-kart/internal/errs"
	"github.com/kahvekart/kahve-kart/internal/model"
	"github.com/kahvekart/kahve-kart/internal/repository"
)

// CouponService is the coupon store: issuance, listing and one-time redemption.
type CouponService interface {
	// Issue creates a gift coupon for (user, cafe) with the standard expiry.
	Issue(ctx context.Context, userID uuid.UUID, cafeName string) (*model.Coupon, error)
	// Redeem consumes the coupon and returns the owner's display name.
	// The coupon id arrives as scanned text; anything that is not a valid id
	// is reported as not found, same as an already-consumed coupon.
	Redeem(ctx context.Context, userID uuid.UUID, cafeName, couponID string) (displayName string, err error)
	// ListForUser returns the user's outstanding coupons.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Coupon, error)
}

type CouponServiceImpl struct {
	repo repository.CouponRepository
}

// NewCouponService constructs CouponService.
func NewCouponService(repo repository.CouponRepository) *CouponServiceImpl {
	return &CouponServiceImpl{repo: repo}
}

// Issue creates a coupon with the standard TTL.
func (s *CouponServiceImpl) Issue(ctx context.Context, userID uuid.UUID, cafeName string) (*model.Coupon, error) {
	if userID == uuid.Nil || strings.TrimSpace(cafeName) == "" {
		return nil, errors.New("validation: empty userID/cafe")
	}
	return s.repo.Issue(ctx, userID, cafeName, model.CouponTTL)
}

// Redeem validates and delegates the delete-based redemption.
func (s *CouponServiceImpl) Redeem(ctx context.Context, userID uuid.UUID, cafeName, couponID string) (string, error) {
	if userID == uuid.Nil {
		return "", errs.ErrNotFound
	}
	if strings.TrimSpace(cafeName) == "" {
		return "", errs.ErrMissingMerchant
	}
	id, err := uuid.FromString(couponID)
	if err != nil || id == uuid.Nil {
		return "", errs.ErrNotFound
	}
	return s.repo.Redeem(ctx, userID, cafeName, id)
}

// ListForUser returns the user's outstanding coupons.
func (s *CouponServiceImpl) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Coupon, error) {
	if userID == uuid.Nil {
		return nil, errors.New("validation: empty userID")
	}
	return s.repo.ListByUser(ctx, userID)
}
