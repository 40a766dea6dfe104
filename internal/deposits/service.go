// Package deposits handles balance top-ups: the event that triggers
// commission propagation up the depositor's referral chain.
package deposits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vpnflow/referral_engine/internal/guard"
	"github.com/vpnflow/referral_engine/internal/notification"
	"github.com/vpnflow/referral_engine/internal/referral"
	"github.com/vpnflow/referral_engine/internal/store"
)

// ErrRejected wraps a validation rejection with its human-readable reason.
var ErrRejected = errors.New("deposit rejected")

// Service credits deposits to user balances and fans out referral
// commissions via the ledger.
type Service struct {
	store    store.Store
	ledger   *referral.Ledger
	guard    *guard.Guard
	notifier notification.Notifier
}

// NewService builds a deposit service.
func NewService(st store.Store, ledger *referral.Ledger, g *guard.Guard, notifier notification.Notifier) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("referral ledger is required")
	}
	return &Service{store: st, ledger: ledger, guard: g, notifier: notifier}, nil
}

// Input captures one deposit event.
type Input struct {
	UserID     int64
	Amount     float64
	ClientTxID string
}

// Result describes a processed deposit and its commission tally.
type Result struct {
	TransactionID string                  `json:"transaction_id"`
	UserID        int64                   `json:"user_id"`
	Amount        float64                 `json:"amount"`
	Commission    referral.DepositOutcome `json:"commission"`
	CompletedAt   time.Time               `json:"completed_at"`
}

// Deposit validates the event, credits the depositor's balance and runs the
// commission walk. The walk's partial failures are reported in the result,
// not as an error; a failed balance credit aborts before any commission.
func (s *Service) Deposit(ctx context.Context, input Input) (Result, error) {
	if ok, reason := guard.ValidateUserID(input.UserID); !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrRejected, reason)
	}
	if s.guard != nil {
		if ok, reason := s.guard.ValidateAmount(input.Amount); !ok {
			return Result{}, fmt.Errorf("%w: %s", ErrRejected, reason)
		}
	}
	if input.ClientTxID == "" {
		input.ClientTxID = uuid.NewString()
	}

	description := fmt.Sprintf("Balance top-up (%.2f)", input.Amount)
	if err := s.store.AddBalance(ctx, input.UserID, input.Amount, description); err != nil {
		return Result{}, err
	}

	outcome := s.ledger.ProcessDeposit(ctx, input.UserID, input.Amount)

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:   notification.KindDeposit,
			UserID: input.UserID,
			Body:   fmt.Sprintf("Your balance was topped up by %.2f", input.Amount),
		})
	}

	return Result{
		TransactionID: input.ClientTxID,
		UserID:        input.UserID,
		Amount:        input.Amount,
		Commission:    outcome,
		CompletedAt:   time.Now().UTC(),
	}, nil
}
