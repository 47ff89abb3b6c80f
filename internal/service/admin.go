package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/kahvekart/kahve-kart/internal/crypto"
	"github.com/kahvekart/kahve-kart/internal/errs"
	"github.com/kahvekart/kahve-kart/internal/model"
	"github.com/kahvekart/kahve-kart/internal/repository"
)

// AddAdminInput collects fields for creating or promoting a cafe admin.
type AddAdminInput struct {
	Email    string
	Password string
	Name     string
	Surname  string
	CafeName string
}

// AdminService defines superadmin operations over cafe admin accounts.
type AdminService interface {
	// AddAdmin creates an admin account, or promotes an existing account to
	// admin when the email is already registered and the password matches.
	AddAdmin(ctx context.Context, in AddAdminInput) (userID string, err error)
	// ListAdmins returns all cafe admins.
	ListAdmins(ctx context.Context) ([]model.User, error)
	// RemoveAdmin deletes the admin's account record.
	RemoveAdmin(ctx context.Context, id uuid.UUID) error
}

type AdminServiceImpl struct {
	users repository.UserRepository
}

// NewAdminService constructs AdminService.
func NewAdminService(users repository.UserRepository) *AdminServiceImpl {
	return &AdminServiceImpl{users: users}
}

// AddAdmin creates the account with the admin role, pre-verified since a
// superadmin vouches for it. When the email is taken, the provided password
// must match the existing account before it is promoted.
func (s *AdminServiceImpl) AddAdmin(ctx context.Context, in AddAdminInput) (string, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	cafe := strings.TrimSpace(in.CafeName)
	if email == "" || cafe == "" || len(in.Password) < 8 {
		return "", fmt.Errorf("validation: email/cafe/password: %w", errs.ErrInvalidFormat)
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	salt, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return "", err
	}
	u := &model.User{
		ID:            uid,
		Email:         email,
		Name:          strings.TrimSpace(in.Name),
		Surname:       strings.TrimSpace(in.Surname),
		Role:          model.RoleAdmin,
		CafeName:      cafe,
		PwdHash:       pkgcrypto.HashPassword([]byte(in.Password), salt),
		SaltAuth:      salt,
		EmailVerified: true,
	}

	err = s.users.Create(ctx, u, "")
	if err == nil {
		return uid.String(), nil
	}
	if !errors.Is(err, errs.ErrAlreadyExists) {
		return "", err
	}

	// Existing account: prove ownership, then promote.
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if !pkgcrypto.VerifyPassword([]byte(in.Password), existing.SaltAuth, existing.PwdHash) {
		return "", errs.ErrUnauthorized
	}
	if err := s.users.SetRole(ctx, existing.ID, model.RoleAdmin, cafe); err != nil {
		return "", err
	}
	return existing.ID.String(), nil
}

// ListAdmins returns all cafe admins.
func (s *AdminServiceImpl) ListAdmins(ctx context.Context) ([]model.User, error) {
	return s.users.ListByRole(ctx, model.RoleAdmin)
}

// RemoveAdmin deletes the account record only; any stamps or coupons the
// person holds as a customer are removed with it by cascade.
func (s *AdminServiceImpl) RemoveAdmin(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.ErrNotFound
	}
	return s.users.Delete(ctx, id)
}
