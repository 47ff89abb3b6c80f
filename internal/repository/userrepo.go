// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/kahvekart/kahve-kart/internal/model"
)

// UserRepository provides account storage.
type UserRepository interface {
	// Create inserts a new user together with its verification token.
	Create(ctx context.Context, u *model.User, verifyToken string) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// MarkVerifiedByToken flips email_verified for the account holding the token.
	MarkVerifiedByToken(ctx context.Context, token string) error
	// SetVerifyToken replaces the pending verification token.
	SetVerifyToken(ctx context.Context, id uuid.UUID, token string) error
	// SetRole updates role and cafe affiliation (administrative action only).
	SetRole(ctx context.Context, id uuid.UUID, role, cafeName string) error
	// ListByRole returns users holding the given role, oldest first.
	ListByRole(ctx context.Context, role string) ([]model.User, error)
	// Delete removes the account record.
	Delete(ctx context.Context, id uuid.UUID) error
}
