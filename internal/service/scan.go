package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/kahvekart/kahve-kart/internal/cooldown"
	"github.com/kahvekart/kahve-kart/internal/errs"
	"github.com/kahvekart/kahve-kart/internal/model"
	"github.com/kahvekart/kahve-kart/internal/observability"
	"github.com/kahvekart/kahve-kart/internal/qr"
	"github.com/kahvekart/kahve-kart/internal/repository"
)

// ScanService orchestrates one scan transaction: decode, replay-guard, then
// stamp grant or coupon redemption. Every scan ends in exactly one terminal
// outcome; expected operator-input failures come back as rejections, anything
// else as a system error.
type ScanService interface {
	HandleScan(ctx context.Context, op model.Operator, raw string) model.ScanOutcome
}

type ScanServiceImpl struct {
	stamps  StampService
	coupons CouponService
	tokens  repository.ScanTokenRepository
	gate    *cooldown.Gate
	metrics *observability.ScanMetrics
	log     *zap.Logger

	// backendTimeout bounds every backend call within one scan. A hung
	// store resolves to a system-error outcome instead of a stuck scanner.
	backendTimeout time.Duration

	// allowLegacyGrants accepts colon-delimited grant codes that carry no
	// replay token. Such grants bypass replay protection entirely, so the
	// default is to refuse them.
	allowLegacyGrants bool
}

// NewScanService constructs the orchestrator with injected collaborators.
func NewScanService(
	stamps StampService,
	coupons CouponService,
	tokens repository.ScanTokenRepository,
	gate *cooldown.Gate,
	metrics *observability.ScanMetrics,
	log *zap.Logger,
	backendTimeout time.Duration,
	allowLegacyGrants bool,
) *ScanServiceImpl {
	return &ScanServiceImpl{
		stamps:            stamps,
		coupons:           coupons,
		tokens:            tokens,
		gate:              gate,
		metrics:           metrics,
		log:               log,
		backendTimeout:    backendTimeout,
		allowLegacyGrants: allowLegacyGrants,
	}
}

// HandleScan runs the scan state machine to a terminal outcome.
func (s *ScanServiceImpl) HandleScan(ctx context.Context, op model.Operator, raw string) model.ScanOutcome {
	if !s.gate.Allow(op.ID) {
		return s.rejected(errs.ErrCoolingDown)
	}

	if s.backendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.backendTimeout)
		defer cancel()
	}

	req, err := qr.Decode(raw)
	if err != nil {
		return s.rejected(err)
	}

	switch r := req.(type) {
	case qr.CouponRedemption:
		return s.redeemCoupon(ctx, op, r)
	case qr.StampGrant:
		return s.grantStamp(ctx, op, r)
	default:
		return s.rejected(errs.ErrUnknownQRType)
	}
}

func (s *ScanServiceImpl) redeemCoupon(ctx context.Context, op model.Operator, r qr.CouponRedemption) model.ScanOutcome {
	cafe, err := resolveCafe(r.CafeName, op)
	if err != nil {
		return s.rejected(err)
	}
	userID, err := uuid.FromString(r.UserID)
	if err != nil {
		return s.rejected(errs.ErrInvalidFormat)
	}

	name, err := s.coupons.Redeem(ctx, userID, cafe, r.CouponID)
	switch {
	case err == nil:
		return s.accepted(fmt.Sprintf("Gift redeemed for %s.", name))
	case isRejection(err):
		return s.rejected(err)
	default:
		return s.systemError("redeem coupon", err)
	}
}

func (s *ScanServiceImpl) grantStamp(ctx context.Context, op model.Operator, r qr.StampGrant) model.ScanOutcome {
	cafe, err := resolveCafe(r.CafeName, op)
	if err != nil {
		return s.rejected(err)
	}
	userID, err := uuid.FromString(r.UserID)
	if err != nil {
		return s.rejected(errs.ErrInvalidFormat)
	}

	if r.TokenKey == "" {
		if !s.allowLegacyGrants {
			return s.rejected(errs.ErrMissingTimestamp)
		}
		// Known gap: grants via the legacy format cannot be replay-protected.
		s.log.Warn("legacy grant accepted without replay protection",
			zap.String("user", r.UserID),
			zap.String("cafe", cafe),
		)
	} else {
		err := s.tokens.CheckAndMark(ctx, userID, r.TokenKey, cafe)
		switch {
		case err == nil:
		case errors.Is(err, errs.ErrAlreadyUsed):
			return s.rejected(err)
		default:
			return s.systemError("mark scan token", err)
		}
	}

	res, err := s.stamps.AddStamp(ctx, userID, cafe)
	if err != nil {
		return s.systemError("add stamp", err)
	}
	if res.GiftIssued {
		return s.accepted("Card complete, gift coupon issued.")
	}
	return s.accepted(fmt.Sprintf("Stamp added (%d/%d).", res.NewCount, model.GiftThreshold))
}

// resolveCafe prefers the cafe named in the payload and falls back to the
// operator's affiliation for legacy payloads that carry none.
func resolveCafe(payloadCafe string, op model.Operator) (string, error) {
	if c := strings.TrimSpace(payloadCafe); c != "" {
		return c, nil
	}
	if c := strings.TrimSpace(op.CafeName); c != "" {
		return c, nil
	}
	return "", errs.ErrMissingMerchant
}

func (s *ScanServiceImpl) accepted(msg string) model.ScanOutcome {
	s.metrics.Observe(string(model.ScanAccepted), "")
	return model.ScanOutcome{Status: model.ScanAccepted, Message: msg}
}

func (s *ScanServiceImpl) rejected(err error) model.ScanOutcome {
	code, msg := rejectionFor(err)
	s.metrics.Observe(string(model.ScanRejected), code)
	return model.ScanOutcome{Status: model.ScanRejected, Reason: code, Message: msg}
}

func (s *ScanServiceImpl) systemError(stage string, err error) model.ScanOutcome {
	s.metrics.Observe(string(model.ScanError), "")
	s.log.Error("scan failed", zap.String("stage", stage), zap.Error(err))
	return model.ScanOutcome{Status: model.ScanError, Message: "System error, please retry."}
}

// isRejection reports whether the error is an expected operator-input
// condition rather than a backend failure.
func isRejection(err error) bool {
	for _, sentinel := range []error{
		errs.ErrInvalidFormat, errs.ErrUnknownQRType,
		errs.ErrMissingMerchant, errs.ErrMissingTimestamp,
		errs.ErrAlreadyUsed, errs.ErrNotFound,
		errs.ErrMerchantMismatch, errs.ErrCouponExpired,
		errs.ErrCoolingDown,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// rejectionFor maps a sentinel to its stable machine code and operator message.
func rejectionFor(err error) (code, msg string) {
	switch {
	case errors.Is(err, errs.ErrInvalidFormat):
		return "invalid_format", "Unrecognized code."
	case errors.Is(err, errs.ErrUnknownQRType):
		return "unknown_qr_type", "This is not a Kahve Kart code."
	case errors.Is(err, errs.ErrMissingMerchant):
		return "missing_merchant", "Code names no cafe and this scanner has no cafe assigned."
	case errors.Is(err, errs.ErrMissingTimestamp):
		return "missing_timestamp", "Outdated code format, ask the customer to refresh their card."
	case errors.Is(err, errs.ErrAlreadyUsed):
		return "already_used", "This code was already scanned."
	case errors.Is(err, errs.ErrNotFound):
		return "not_found", "Coupon or customer not found."
	case errors.Is(err, errs.ErrMerchantMismatch):
		return "merchant_mismatch", "Coupon belongs to a different cafe."
	case errors.Is(err, errs.ErrCouponExpired):
		return "coupon_expired", "Coupon has expired."
	case errors.Is(err, errs.ErrCoolingDown):
		return "cooling_down", "Scanner is re-arming, try again in a moment."
	default:
		return "rejected", "Scan rejected."
	}
}
