// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// GiftThreshold is the number of stamps that completes a card and issues a coupon.
const GiftThreshold = 5

// CouponTTL is how long an issued coupon stays redeemable.
const CouponTTL = 72 * time.Hour

// User roles.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// User represents an account. Admins carry the cafe they scan for.
type User struct {
	ID            uuid.UUID // PK
	Email         string    // unique
	Name          string
	Surname       string
	Role          string // user | admin | superadmin
	CafeName      string // admin affiliation, empty otherwise
	PwdHash       []byte // Argon2id(password, SaltAuth)
	SaltAuth      []byte // per-user auth salt
	EmailVerified bool
	CreatedAt     time.Time
}

// DisplayName is what the scanning operator sees on a successful redemption.
func (u *User) DisplayName() string { return u.Name + " " + u.Surname }

// StampBalance is the per-user, per-cafe loyalty counter.
// Count stays in [0,4] between scans; 5 is a transient state that exists
// only inside the transaction that converts a full card into a coupon.
type StampBalance struct {
	UserID         uuid.UUID
	CafeName       string
	Count          int
	HasPendingGift bool
	UpdatedAt      time.Time
}

// Coupon is a redeemable gift token. Existence equals validity: redemption
// deletes the row, so "used" and "absent" are the same terminal state.
type Coupon struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CafeName  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// StampResult reports the outcome of a single stamp grant.
type StampResult struct {
	NewCount   int
	GiftIssued bool
	Coupon     *Coupon // set when GiftIssued
}

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// Operator identifies the authenticated staff member driving the scanner.
type Operator struct {
	ID       uuid.UUID
	CafeName string
}

// ScanStatus is the terminal state of one scan transaction.
type ScanStatus string

// Scan outcomes.
const (
	ScanAccepted ScanStatus = "accepted"
	ScanRejected ScanStatus = "rejected"
	ScanError    ScanStatus = "error"
)

// ScanOutcome is what the scanning surface shows the operator after one scan.
// Reason is a stable machine code for rejections; Message is human-readable.
type ScanOutcome struct {
	Status  ScanStatus `json:"status"`
	Reason  string     `json:"reason,omitempty"`
	Message string     `json:"message"`
}
