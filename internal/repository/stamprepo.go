package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/kahvekart/kahve-kart/internal/model"
)

// StampRepository owns the per-user, per-cafe stamp counters.
type StampRepository interface {
	// AddStamp increments the counter atomically. When the count reaches the
	// gift threshold it issues a coupon and resets the counter to zero inside
	// the same transaction, so no reader ever observes a full card for longer
	// than one update.
	AddStamp(ctx context.Context, userID uuid.UUID, cafeName string) (model.StampResult, error)

	// GetBalance returns the current balance; a missing row reads as zero.
	GetBalance(ctx context.Context, userID uuid.UUID, cafeName string) (*model.StampBalance, error)
}
