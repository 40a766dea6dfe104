package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	if err := st.CreateUser(ctx, UserRecord{ID: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.CreateUser(ctx, UserRecord{ID: 1}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	if _, err := st.GetUser(ctx, 2); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	user, err := st.GetUser(ctx, 1)
	if err != nil || user.ID != 1 {
		t.Fatalf("get: %v %+v", err, user)
	}
}

func TestMemoryStoreSetReferrerOnce(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	Seed(st, UserRecord{ID: 1})
	Seed(st, UserRecord{ID: 2})

	if err := st.SetReferrer(ctx, 2, 1, 1); err != nil {
		t.Fatalf("set referrer: %v", err)
	}
	if err := st.SetReferrer(ctx, 2, 1, 1); err == nil {
		t.Fatalf("referrer must be set exactly once")
	}

	user, _ := st.GetUser(ctx, 2)
	if user.ReferredBy == nil || *user.ReferredBy != 1 || user.ReferralLevel != 1 {
		t.Fatalf("unexpected record: %+v", user)
	}
}

func TestMemoryStoreCreditBonusMovesBothFigures(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	Seed(st, UserRecord{ID: 1})

	if err := st.CreditBonus(ctx, 1, 2.5, "bonus"); err != nil {
		t.Fatalf("credit bonus: %v", err)
	}
	user, _ := st.GetUser(ctx, 1)
	if user.Balance != 2.5 || user.ReferralEarnings != 2.5 {
		t.Fatalf("expected balance and earnings 2.5, got %+v", user)
	}

	if err := st.AddBalance(ctx, 1, 1.5, "top-up"); err != nil {
		t.Fatalf("add balance: %v", err)
	}
	user, _ = st.GetUser(ctx, 1)
	if user.Balance != 4 || user.ReferralEarnings != 2.5 {
		t.Fatalf("top-up must not touch earnings, got %+v", user)
	}
}

func TestMemoryStoreGetReferralsByUsers(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	Seed(st, UserRecord{ID: 1})
	Seed(st, UserRecord{ID: 2})
	parent1, parent2 := int64(1), int64(2)
	Seed(st, UserRecord{ID: 3, ReferredBy: &parent1})
	Seed(st, UserRecord{ID: 4, ReferredBy: &parent2})
	Seed(st, UserRecord{ID: 5, ReferredBy: &parent1})

	children, err := st.GetReferralsByUsers(ctx, []int64{1, 2})
	if err != nil {
		t.Fatalf("get referrals: %v", err)
	}
	if len(children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(children))
	}
	// Deterministic order by id.
	if children[0].ID != 3 || children[1].ID != 4 || children[2].ID != 5 {
		t.Fatalf("unexpected order: %+v", children)
	}

	none, err := st.GetReferralsByUsers(ctx, []int64{5})
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no children for leaf, got %v %v", none, err)
	}
}
