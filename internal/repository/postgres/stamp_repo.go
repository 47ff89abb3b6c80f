package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/kahvekart/kahve-kart/internal/model"
)

// StampRepo implements StampRepository using PostgreSQL.
type StampRepo struct{ db *DB }

// NewStampRepo constructs a stamp repository.
func NewStampRepo(db *DB) *StampRepo { return &StampRepo{db: db} }

// AddStamp performs the whole grant as one transaction. The increment is a
// single conditional upsert, never a read-then-write: two concurrent first
// scans cannot both observe an empty balance, because conflict arbitration
// inside the statement serializes them and each grant lands exactly once.
// The incremented row stays locked until commit, which covers the coupon
// issue and counter reset on a full card.
func (r *StampRepo) AddStamp(ctx context.Context, userID uuid.UUID, cafeName string) (res model.StampResult, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.StampResult{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const inc = `
INSERT INTO stamp_balances (user_id, cafe_name, count, has_pending_gift, updated_at)
VALUES ($1,$2,1,false,now())
ON CONFLICT (user_id, cafe_name)
DO UPDATE SET count = stamp_balances.count + 1, updated_at = now()
RETURNING count`

	var next int
	if err = tx.QueryRow(ctx, inc, userID, cafeName).Scan(&next); err != nil {
		return model.StampResult{}, err
	}

	if next < model.GiftThreshold {
		return model.StampResult{NewCount: next}, nil
	}

	// Full card. The count=5 row written by the increment is visible to
	// audit queries only for the duration of this transaction.
	couponID, err := uuid.NewV4()
	if err != nil {
		return model.StampResult{}, err
	}
	now := time.Now().UTC()
	coupon := &model.Coupon{
		ID:        couponID,
		UserID:    userID,
		CafeName:  cafeName,
		CreatedAt: now,
		ExpiresAt: now.Add(model.CouponTTL),
	}
	const insCoupon = `INSERT INTO coupons (id, user_id, cafe_name, created_at, expires_at) VALUES ($1,$2,$3,$4,$5)`
	if _, err = tx.Exec(ctx, insCoupon, coupon.ID, userID, cafeName, coupon.CreatedAt, coupon.ExpiresAt); err != nil {
		return model.StampResult{}, err
	}

	const reset = `
UPDATE stamp_balances SET count=0, has_pending_gift=true, updated_at=now()
WHERE user_id=$1 AND cafe_name=$2`
	if _, err = tx.Exec(ctx, reset, userID, cafeName); err != nil {
		return model.StampResult{}, err
	}
	return model.StampResult{NewCount: 0, GiftIssued: true, Coupon: coupon}, nil
}

// GetBalance returns the current counter; a missing row reads as zero.
func (r *StampRepo) GetBalance(ctx context.Context, userID uuid.UUID, cafeName string) (*model.StampBalance, error) {
	const q = `
SELECT count, has_pending_gift, updated_at
FROM stamp_balances WHERE user_id=$1 AND cafe_name=$2`
	b := model.StampBalance{UserID: userID, CafeName: cafeName}
	err := r.db.Pool.QueryRow(ctx, q, userID, cafeName).Scan(&b.Count, &b.HasPendingGift, &b.UpdatedAt)
	switch {
	case err == nil:
		return &b, nil
	case errors.Is(err, pgx.ErrNoRows):
		return &model.StampBalance{UserID: userID, CafeName: cafeName}, nil
	default:
		return nil, err
	}
}
