package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/kahvekart/kahve-kart/internal/errs"
	"github.com/kahvekart/kahve-kart/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, email, name, surname, role, COALESCE(cafe_name,''), pwd_hash, salt_auth, email_verified, created_at`

// Create inserts a new user row with its pending verification token.
func (r *UserRepo) Create(ctx context.Context, u *model.User, verifyToken string) error {
	const q = `
INSERT INTO users (id, email, name, surname, role, cafe_name, pwd_hash, salt_auth, email_verified, verify_token)
VALUES ($1, $2, $3, $4, $5, NULLIF($6,''), $7, $8, $9, NULLIF($10,''))`
	_, err := r.db.Pool.Exec(ctx, q,
		u.ID, u.Email, u.Name, u.Surname, u.Role, u.CafeName, u.PwdHash, u.SaltAuth, u.EmailVerified, verifyToken)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, email))
}

// MarkVerifiedByToken flips email_verified for the account holding the token
// and clears it. Zero affected rows means the token is unknown or stale.
func (r *UserRepo) MarkVerifiedByToken(ctx context.Context, token string) error {
	const q = `UPDATE users SET email_verified=true, verify_token=NULL WHERE verify_token=$1`
	tag, err := r.db.Pool.Exec(ctx, q, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SetVerifyToken replaces the pending verification token.
func (r *UserRepo) SetVerifyToken(ctx context.Context, id uuid.UUID, token string) error {
	const q = `UPDATE users SET verify_token=$2 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SetRole updates role and cafe affiliation.
func (r *UserRepo) SetRole(ctx context.Context, id uuid.UUID, role, cafeName string) error {
	const q = `UPDATE users SET role=$2, cafe_name=NULLIF($3,'') WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, role, cafeName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ListByRole returns users holding the given role, oldest first.
func (r *UserRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE role=$1 ORDER BY created_at ASC`
	rows, err := r.db.Pool.Query(ctx, q, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err = rows.Scan(&u.ID, &u.Email, &u.Name, &u.Surname, &u.Role, &u.CafeName,
			&u.PwdHash, &u.SaltAuth, &u.EmailVerified, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Delete removes the account record.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM users WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *UserRepo) scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Surname, &u.Role, &u.CafeName,
		&u.PwdHash, &u.SaltAuth, &u.EmailVerified, &u.CreatedAt); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &u, nil
}
