package store

import "time"

// UserRecord represents a platform user as seen by the referral engine.
// Balance and earnings are ruble amounts; precision handling lives in the
// store implementations, not in the callers.
type UserRecord struct {
	ID               int64     `json:"id"`
	ReferredBy       *int64    `json:"referred_by,omitempty"`
	ReferralLevel    int       `json:"referral_level"`
	Balance          float64   `json:"balance"`
	ReferralEarnings float64   `json:"referral_earnings"`
	ReferralCount    int       `json:"referral_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// HasReferrer reports whether the user was already attached to an upline.
func (u UserRecord) HasReferrer() bool {
	return u.ReferredBy != nil
}
