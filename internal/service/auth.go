// Package service contains application services for accounts and scan processing.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/kahvekart/kahve-kart/internal/crypto"
	"github.com/kahvekart/kahve-kart/internal/errs"
	"github.com/kahvekart/kahve-kart/internal/mail"
	"github.com/kahvekart/kahve-kart/internal/model"
	"github.com/kahvekart/kahve-kart/internal/repository"
)

// AccessClaims is the JWT payload carried by mobile and scanner clients.
// Role and cafe ride along so the scan path needs no extra user lookup.
type AccessClaims struct {
	Role string `json:"role"`
	Cafe string `json:"cafe,omitempty"`
	jwt.RegisteredClaims
}

// RegisterInput collects signup fields.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Surname  string
}

// AuthService defines account operations.
type AuthService interface {
	// Register creates a user account and sends a verification mail.
	Register(ctx context.Context, in RegisterInput) (userID string, err error)
	// Login authenticates by email/password and issues an access token.
	Login(ctx context.Context, email, password string) (model.Tokens, model.User, error)
	// ConfirmVerification consumes an emailed token and marks the account verified.
	ConfirmVerification(ctx context.Context, token string) error
	// CheckVerification reports whether the account's email is verified.
	CheckVerification(ctx context.Context, userID uuid.UUID) (bool, error)
	// ResendVerification rotates the token and sends a fresh mail.
	ResendVerification(ctx context.Context, userID uuid.UUID) error
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	mailer    mail.Mailer
	signKey   []byte
	accessTTL time.Duration
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, mailer mail.Mailer, signKey []byte, accessTTL time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, mailer: mailer, signKey: signKey, accessTTL: accessTTL}
}

// Register creates a new user record with a per-user salt and a pending
// verification token.
func (s *AuthServiceImpl) Register(ctx context.Context, in RegisterInput) (string, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("validation: bad email: %w", errs.ErrInvalidFormat)
	}
	if len(in.Password) < 8 {
		return "", fmt.Errorf("validation: password too short: %w", errs.ErrInvalidFormat)
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Surname) == "" {
		return "", fmt.Errorf("validation: empty name/surname: %w", errs.ErrInvalidFormat)
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	salt, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return "", err
	}
	token, err := pkgcrypto.NewToken()
	if err != nil {
		return "", err
	}

	u := &model.User{
		ID:       uid,
		Email:    email,
		Name:     strings.TrimSpace(in.Name),
		Surname:  strings.TrimSpace(in.Surname),
		Role:     model.RoleUser,
		PwdHash:  pkgcrypto.HashPassword([]byte(in.Password), salt),
		SaltAuth: salt,
	}
	if err := s.users.Create(ctx, u, token); err != nil {
		return "", err
	}
	if err := s.mailer.SendVerification(ctx, email, token); err != nil {
		return "", fmt.Errorf("send verification: %w", err)
	}
	return uid.String(), nil
}

// Login authenticates by email/password. Lookup failures and wrong passwords
// are both reported as unauthorized so account existence stays hidden.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (model.Tokens, model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		if err != nil && errors.Is(err, context.Canceled) {
			return model.Tokens{}, model.User{}, err
		}
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}

	access, exp, err := s.issueAccessToken(u)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, *u, nil
}

// ConfirmVerification consumes an emailed token.
func (s *AuthServiceImpl) ConfirmVerification(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return errs.ErrNotFound
	}
	return s.users.MarkVerifiedByToken(ctx, token)
}

// CheckVerification reports the verified flag for polling clients.
func (s *AuthServiceImpl) CheckVerification(ctx context.Context, userID uuid.UUID) (bool, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return u.EmailVerified, nil
}

// ResendVerification rotates the pending token and sends a fresh mail.
// Already-verified accounts are a no-op.
func (s *AuthServiceImpl) ResendVerification(ctx context.Context, userID uuid.UUID) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.EmailVerified {
		return nil
	}
	token, err := pkgcrypto.NewToken()
	if err != nil {
		return err
	}
	if err := s.users.SetVerifyToken(ctx, userID, token); err != nil {
		return err
	}
	return s.mailer.SendVerification(ctx, u.Email, token)
}

// issueAccessToken creates a signed HS256 JWT for the given account.
func (s *AuthServiceImpl) issueAccessToken(u *model.User) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.accessTTL)
	claims := AccessClaims{
		Role: u.Role,
		Cafe: u.CafeName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}
