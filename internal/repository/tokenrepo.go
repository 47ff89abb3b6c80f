package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"
)

// ScanTokenRepository is the replay-protection primitive: a (userID, tokenKey)
// pair may be recorded as used at most once.
type ScanTokenRepository interface {
	// CheckAndMark records the token as used. If it was recorded before, it
	// fails with ErrAlreadyUsed and performs no mutation. The check and the
	// write are a single atomic statement.
	CheckAndMark(ctx context.Context, userID uuid.UUID, tokenKey, cafeName string) error
}
