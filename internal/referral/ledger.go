package referral

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vpnflow/referral_engine/internal/notification"
	"github.com/vpnflow/referral_engine/internal/store"
)

// Ledger posts referral commissions and registers new referrals against the
// user store. It holds no state of its own; every figure lives in the store.
type Ledger struct {
	store       store.Store
	notifier    notification.Notifier
	logger      *slog.Logger
	signupBonus float64
}

// NewLedger builds a commission ledger. signupBonus is the fixed one-time
// credit paid to a referrer per invited friend (one day of service).
func NewLedger(st store.Store, notifier notification.Notifier, logger *slog.Logger, signupBonus float64) *Ledger {
	return &Ledger{store: st, notifier: notifier, logger: logger, signupBonus: signupBonus}
}

// DepositOutcome tallies a commission walk triggered by one deposit.
type DepositOutcome struct {
	LevelsPaid      int     `json:"levels_paid"`
	TotalCommission float64 `json:"total_commission"`
	Failures        int     `json:"failures"`
}

// ProcessDeposit walks up the depositor's referral chain and credits each
// ancestor its scheduled share of amount. The walk stops at the chain's
// root, at MaxDepth, or when the schedule runs out. A failed credit at one
// level is logged and counted but does not stop payouts further up.
func (l *Ledger) ProcessDeposit(ctx context.Context, depositorID int64, amount float64) DepositOutcome {
	var outcome DepositOutcome

	depositor, err := l.store.GetUser(ctx, depositorID)
	if err != nil || !depositor.HasReferrer() {
		return outcome
	}

	ancestorID := *depositor.ReferredBy
	for level := 1; level <= MaxDepth; level++ {
		percentage := LevelPercentage(level)
		if percentage == 0 {
			break
		}

		bonus := amount * percentage / 100
		description := fmt.Sprintf("Referral bonus (%g%%) from a level %d deposit", percentage, level)

		if err := l.store.CreditBonus(ctx, ancestorID, bonus, description); err != nil {
			outcome.Failures++
			l.logger.Error("commission credit failed",
				"user_id", ancestorID, "level", level, "bonus", bonus, "error", err)
		} else {
			outcome.LevelsPaid++
			outcome.TotalCommission += bonus
			l.logger.Info("commission credited",
				"user_id", ancestorID, "level", level, "bonus", bonus)
			l.notify(ctx, notification.KindReferralBonus, ancestorID,
				fmt.Sprintf("You earned %.2f from a level %d deposit", bonus, level))
		}

		ancestor, err := l.store.GetUser(ctx, ancestorID)
		if err != nil || !ancestor.HasReferrer() {
			break
		}
		ancestorID = *ancestor.ReferredBy
	}

	return outcome
}

// Register attaches userID to referrerID's downline and pays the signup
// bonus. It returns true only for a fresh registration: users already
// referred, unknown referrers and store failures all yield false.
func (l *Ledger) Register(ctx context.Context, userID, referrerID int64) bool {
	user, err := l.store.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			l.logger.Error("referral registration failed", "user_id", userID, "error", err)
			return false
		}
	} else if user.HasReferrer() {
		return false
	}

	referrer, err := l.store.GetUser(ctx, referrerID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			l.logger.Error("referral registration failed", "referrer_id", referrerID, "error", err)
		}
		return false
	}

	if err := l.store.SetReferrer(ctx, userID, referrerID, referrer.ReferralLevel+1); err != nil {
		l.logger.Error("referral registration failed", "user_id", userID, "referrer_id", referrerID, "error", err)
		return false
	}
	if err := l.store.IncrementReferralCount(ctx, referrerID); err != nil {
		l.logger.Error("referral registration failed", "user_id", userID, "referrer_id", referrerID, "error", err)
		return false
	}
	if err := l.store.AddBalance(ctx, referrerID, l.signupBonus,
		"Signup bonus for inviting a friend (1 day of service)"); err != nil {
		l.logger.Error("referral registration failed", "user_id", userID, "referrer_id", referrerID, "error", err)
		return false
	}

	l.logger.Info("referral registered", "user_id", userID, "referrer_id", referrerID)
	l.notify(ctx, notification.KindSignupBonus, referrerID,
		fmt.Sprintf("You earned %.2f for inviting a friend", l.signupBonus))
	return true
}

func (l *Ledger) notify(ctx context.Context, kind string, userID int64, body string) {
	if l.notifier == nil {
		return
	}
	_ = l.notifier.Send(ctx, notification.Message{Kind: kind, UserID: userID, Body: body})
}
