package store

import (
	"context"
	"errors"
)

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists indicates a create collided with an existing record.
	ErrUserExists = errors.New("user already exists")
)

// Store is the contract the referral engine requires from the user-record
// backend. Implementations must keep each mutation internally consistent;
// callers are expected to serialize operations touching the same referral
// chain.
type Store interface {
	// GetUser returns the record for id or ErrUserNotFound.
	GetUser(ctx context.Context, id int64) (UserRecord, error)

	// CreateUser inserts a fresh record. Returns ErrUserExists on collision.
	CreateUser(ctx context.Context, user UserRecord) error

	// SetReferrer attaches the user to an upline and fixes its tree depth.
	SetReferrer(ctx context.Context, id, referrerID int64, level int) error

	// AddBalance credits amount to the user's balance and records a
	// balance transaction carrying the human-readable description.
	AddBalance(ctx context.Context, id int64, amount float64, description string) error

	// IncrementReferralCount bumps the direct-children counter.
	IncrementReferralCount(ctx context.Context, id int64) error

	// UpdateReferralEarnings adds delta to the cumulative earnings figure.
	UpdateReferralEarnings(ctx context.Context, id int64, delta float64) error

	// CreditBonus applies a commission credit: balance top-up, transaction
	// record and earnings update as one atomic mutation.
	CreditBonus(ctx context.Context, id int64, amount float64, description string) error

	// GetReferralsByUsers returns every user whose referrer is in ids.
	GetReferralsByUsers(ctx context.Context, ids []int64) ([]UserRecord, error)
}
