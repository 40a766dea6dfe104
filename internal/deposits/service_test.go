package deposits

import (
	"context"
	"errors"
	"testing"

	"github.com/vpnflow/referral_engine/internal/guard"
	"github.com/vpnflow/referral_engine/internal/logging"
	"github.com/vpnflow/referral_engine/internal/notification"
	"github.com/vpnflow/referral_engine/internal/referral"
	"github.com/vpnflow/referral_engine/internal/store"
)

type testNotifier struct {
	messages []notification.Message
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.messages = append(n.messages, msg)
	return nil
}

func newTestService(t *testing.T, st store.Store) (*Service, *testNotifier) {
	t.Helper()
	logger := logging.Discard()
	notifier := &testNotifier{}
	ledger := referral.NewLedger(st, notifier, logger, 4.0)
	g := guard.New(guard.Config{RequestsPerMinute: 60, RequestsPerHour: 1000, MinAmount: 1.0, MaxAmount: 10000.0}, logger)
	svc, err := NewService(st, ledger, g, notifier)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, notifier
}

func TestDepositCreditsBalanceAndCommission(t *testing.T) {
	st := store.NewMemoryStore()
	store.Seed(st, store.UserRecord{ID: 1})
	ref := int64(1)
	store.Seed(st, store.UserRecord{ID: 2, ReferredBy: &ref, ReferralLevel: 1})
	svc, notifier := newTestService(t, st)

	ctx := context.Background()
	res, err := svc.Deposit(ctx, Input{UserID: 2, Amount: 100, ClientTxID: "tx-1"})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if res.TransactionID != "tx-1" || res.Amount != 100 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Commission.LevelsPaid != 1 || res.Commission.TotalCommission != 10 {
		t.Fatalf("unexpected commission tally: %+v", res.Commission)
	}

	depositor, _ := st.GetUser(ctx, 2)
	if depositor.Balance != 100 {
		t.Fatalf("expected depositor balance 100, got %v", depositor.Balance)
	}
	referrer, _ := st.GetUser(ctx, 1)
	if referrer.Balance != 10 || referrer.ReferralEarnings != 10 {
		t.Fatalf("expected referrer credit 10, got %+v", referrer)
	}

	var kinds []string
	for _, msg := range notifier.messages {
		kinds = append(kinds, msg.Kind)
	}
	if len(kinds) != 2 {
		t.Fatalf("expected bonus and deposit notifications, got %v", kinds)
	}
}

func TestDepositGeneratesClientTxID(t *testing.T) {
	st := store.NewMemoryStore()
	store.Seed(st, store.UserRecord{ID: 1})
	svc, _ := newTestService(t, st)

	res, err := svc.Deposit(context.Background(), Input{UserID: 1, Amount: 50})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if res.TransactionID == "" {
		t.Fatalf("expected a generated transaction id")
	}
}

func TestDepositRejectsOutOfBoundsAmount(t *testing.T) {
	st := store.NewMemoryStore()
	store.Seed(st, store.UserRecord{ID: 1})
	svc, _ := newTestService(t, st)

	ctx := context.Background()
	if _, err := svc.Deposit(ctx, Input{UserID: 1, Amount: 0.5}); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection for amount below minimum, got %v", err)
	}
	if _, err := svc.Deposit(ctx, Input{UserID: 1, Amount: 20000}); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection for amount above maximum, got %v", err)
	}

	user, _ := st.GetUser(ctx, 1)
	if user.Balance != 0 {
		t.Fatalf("rejected deposits must not mutate balance, got %v", user.Balance)
	}
}

func TestDepositRejectsInvalidUserID(t *testing.T) {
	st := store.NewMemoryStore()
	svc, _ := newTestService(t, st)

	if _, err := svc.Deposit(context.Background(), Input{UserID: -1, Amount: 10}); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection for invalid user id, got %v", err)
	}
}

func TestDepositUnknownUser(t *testing.T) {
	st := store.NewMemoryStore()
	svc, _ := newTestService(t, st)

	_, err := svc.Deposit(context.Background(), Input{UserID: 42, Amount: 10})
	if !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}
