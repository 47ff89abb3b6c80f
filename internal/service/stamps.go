package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/kahvekart/kahve-kart/internal/model"
	"github.com/kahvekart/kahve-kart/internal/repository"
)

// StampService is the stamp ledger: it validates a grant and delegates the
// atomic increment-and-maybe-issue to the repository.
type StampService interface {
	// AddStamp adds one stamp for (user, cafe) and reports whether the card
	// completed and a coupon was issued.
	AddStamp(ctx context.Context, userID uuid.UUID, cafeName string) (model.StampResult, error)
	// Balance returns the current counter; absent balances read as zero.
	Balance(ctx context.Context, userID uuid.UUID, cafeName string) (*model.StampBalance, error)
}

type StampServiceImpl struct {
	repo repository.StampRepository
}

// NewStampService constructs StampService.
func NewStampService(repo repository.StampRepository) *StampServiceImpl {
	return &StampServiceImpl{repo: repo}
}

// AddStamp validates input and delegates to the repository, which performs
// the read-increment-issue-reset sequence as one transaction.
func (s *StampServiceImpl) AddStamp(ctx context.Context, userID uuid.UUID, cafeName string) (model.StampResult, error) {
	if userID == uuid.Nil {
		return model.StampResult{}, errors.New("validation: empty userID")
	}
	if strings.TrimSpace(cafeName) == "" {
		return model.StampResult{}, errors.New("validation: empty cafe name")
	}
	return s.repo.AddStamp(ctx, userID, cafeName)
}

// Balance returns the counter for the mobile app's card view.
func (s *StampServiceImpl) Balance(ctx context.Context, userID uuid.UUID, cafeName string) (*model.StampBalance, error) {
	if userID == uuid.Nil || strings.TrimSpace(cafeName) == "" {
		return nil, errors.New("validation: empty userID/cafe")
	}
	return s.repo.GetBalance(ctx, userID, cafeName)
}
