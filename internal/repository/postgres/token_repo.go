package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/kahvekart/kahve-kart/internal/errs"
)

// ScanTokenRepo implements ScanTokenRepository using PostgreSQL.
type ScanTokenRepo struct{ db *DB }

// NewScanTokenRepo constructs a scan token repository.
func NewScanTokenRepo(db *DB) *ScanTokenRepo { return &ScanTokenRepo{db: db} }

// CheckAndMark records the token as used in a single conditional insert.
// The primary key on (user_id, token_key) makes the check-and-write atomic:
// a replayed token affects zero rows regardless of interleaving.
func (r *ScanTokenRepo) CheckAndMark(ctx context.Context, userID uuid.UUID, tokenKey, cafeName string) error {
	const q = `
INSERT INTO used_scan_tokens (user_id, token_key, cafe_name, used_at)
VALUES ($1,$2,$3,now())
ON CONFLICT (user_id, token_key) DO NOTHING`
	tag, err := r.db.Pool.Exec(ctx, q, userID, tokenKey, cafeName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrAlreadyUsed
	}
	return nil
}
