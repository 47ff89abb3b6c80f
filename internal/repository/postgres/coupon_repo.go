package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/kahvekart/kahve-kart/internal/errs"
	"github.com/kahvekart/kahve-kart/internal/model"
)

// CouponRepo implements CouponRepository using PostgreSQL.
type CouponRepo struct{ db *DB }

// NewCouponRepo constructs a coupon repository.
func NewCouponRepo(db *DB) *CouponRepo { return &CouponRepo{db: db} }

// Issue creates a coupon expiring after ttl.
func (r *CouponRepo) Issue(ctx context.Context, userID uuid.UUID, cafeName string, ttl time.Duration) (*model.Coupon, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := &model.Coupon{ID: id, UserID: userID, CafeName: cafeName, CreatedAt: now, ExpiresAt: now.Add(ttl)}

	const q = `INSERT INTO coupons (id, user_id, cafe_name, created_at, expires_at) VALUES ($1,$2,$3,$4,$5)`
	if _, err := r.db.Pool.Exec(ctx, q, c.ID, c.UserID, c.CafeName, c.CreatedAt, c.ExpiresAt); err != nil {
		return nil, err
	}
	return c, nil
}

// Redeem deletes the coupon after checking ownership, cafe binding and expiry,
// all under a row lock. Deletion is the terminal state: a repeat call fails
// with ErrNotFound.
func (r *CouponRepo) Redeem(ctx context.Context, userID uuid.UUID, cafeName string, couponID uuid.UUID) (displayName string, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
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

	const selUser = `SELECT name, surname FROM users WHERE id=$1`
	var name, surname string
	if err = tx.QueryRow(ctx, selUser, userID).Scan(&name, &surname); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errs.ErrNotFound
		}
		return "", err
	}

	const selCoupon = `SELECT cafe_name, expires_at FROM coupons WHERE id=$1 AND user_id=$2 FOR UPDATE`
	var couponCafe string
	var expiresAt time.Time
	if err = tx.QueryRow(ctx, selCoupon, couponID, userID).Scan(&couponCafe, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errs.ErrNotFound
		}
		return "", err
	}
	if couponCafe != cafeName {
		return "", errs.ErrMerchantMismatch
	}
	if time.Now().After(expiresAt) {
		return "", errs.ErrCouponExpired
	}

	const del = `DELETE FROM coupons WHERE id=$1`
	if _, err = tx.Exec(ctx, del, couponID); err != nil {
		return "", err
	}
	return name + " " + surname, nil
}

// ListByUser returns the user's outstanding coupons, newest first.
func (r *CouponRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Coupon, error) {
	const q = `
SELECT id, user_id, cafe_name, created_at, expires_at
FROM coupons WHERE user_id=$1
ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Coupon
	for rows.Next() {
		var c model.Coupon
		if err = rows.Scan(&c.ID, &c.UserID, &c.CafeName, &c.CreatedAt, &c.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
