package guard

import (
	"strings"
	"testing"
	"time"

	"github.com/vpnflow/referral_engine/internal/logging"
)

// fakeClock drives the guard's view of time in tests.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestGuard(cfg Config) (*Guard, *fakeClock) {
	g := New(cfg, logging.Discard())
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	g.now = clock.Now
	return g, clock
}

func TestMinuteLimitBlocksForFiveMinutes(t *testing.T) {
	g, clock := newTestGuard(Config{RequestsPerMinute: 2, RequestsPerHour: 1000})

	const userID = 7
	for i := 0; i < 2; i++ {
		if allowed, reason := g.CheckRateLimit(userID); !allowed {
			t.Fatalf("request %d should be allowed, got %q", i+1, reason)
		}
		clock.Advance(100 * time.Millisecond)
	}

	allowed, reason := g.CheckRateLimit(userID)
	if allowed {
		t.Fatalf("third request within a second should be rejected")
	}
	if !strings.Contains(reason, "5 minutes") {
		t.Fatalf("expected a 5-minute block message, got %q", reason)
	}

	// Still blocked shortly before expiry.
	clock.Advance(4 * time.Minute)
	if allowed, _ := g.CheckRateLimit(userID); allowed {
		t.Fatalf("request during block window should be rejected")
	}

	// Accepted again once the block expires and the minute window has drained.
	clock.Advance(2 * time.Minute)
	if allowed, reason := g.CheckRateLimit(userID); !allowed {
		t.Fatalf("request after block expiry should be allowed, got %q", reason)
	}
}

func TestHourLimitBlocksForAnHourAndCountsSuspicion(t *testing.T) {
	g, clock := newTestGuard(Config{RequestsPerMinute: 1000, RequestsPerHour: 5})

	const userID = 9
	for i := 0; i < 5; i++ {
		if allowed, _ := g.CheckRateLimit(userID); !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		clock.Advance(2 * time.Minute)
	}

	allowed, reason := g.CheckRateLimit(userID)
	if allowed {
		t.Fatalf("sixth request within the hour should be rejected")
	}
	if !strings.Contains(reason, "hour") {
		t.Fatalf("expected an hourly limit message, got %q", reason)
	}
	if g.users[userID].blockCount != 1 {
		t.Fatalf("expected suspicious counter 1, got %d", g.users[userID].blockCount)
	}

	clock.Advance(30 * time.Minute)
	if allowed, _ := g.CheckRateLimit(userID); allowed {
		t.Fatalf("request during hourly block should be rejected")
	}
}

func TestBlockedMessageCarriesRemainingSeconds(t *testing.T) {
	g, clock := newTestGuard(Config{RequestsPerMinute: 1, RequestsPerHour: 1000})

	const userID = 3
	g.CheckRateLimit(userID)
	g.CheckRateLimit(userID) // triggers a 5-minute block

	clock.Advance(time.Minute)
	allowed, reason := g.CheckRateLimit(userID)
	if allowed {
		t.Fatalf("expected rejection during block")
	}
	if !strings.Contains(reason, "240 seconds") {
		t.Fatalf("expected 240 seconds remaining, got %q", reason)
	}
}

func TestDetectSuspiciousActivity(t *testing.T) {
	g, clock := newTestGuard(Config{RequestsPerMinute: 1, RequestsPerHour: 1000})

	const userID = 5
	if g.DetectSuspiciousActivity(userID) {
		t.Fatalf("fresh user must not be suspicious")
	}

	// Each pair of requests earns one block; five blocks flag the user.
	for i := 0; i < 5; i++ {
		g.CheckRateLimit(userID)
		g.CheckRateLimit(userID)
		clock.Advance(6 * time.Minute)
	}

	if !g.DetectSuspiciousActivity(userID) {
		t.Fatalf("user with 5 blocks should be flagged")
	}
	if g.IsBlocked(userID) {
		// The final advance expired the last block.
		t.Fatalf("expired block should have been cleared")
	}
}

func TestResetUserLimits(t *testing.T) {
	g, _ := newTestGuard(Config{RequestsPerMinute: 1, RequestsPerHour: 1000})

	const userID = 6
	g.CheckRateLimit(userID)
	g.CheckRateLimit(userID)
	if allowed, _ := g.CheckRateLimit(userID); allowed {
		t.Fatalf("expected user to be blocked")
	}

	g.ResetUserLimits(userID)
	if allowed, reason := g.CheckRateLimit(userID); !allowed {
		t.Fatalf("request after reset should be allowed, got %q", reason)
	}
}

func TestCleanupOldDataDropsStaleEntries(t *testing.T) {
	g, clock := newTestGuard(Config{RequestsPerMinute: 10, RequestsPerHour: 1000})

	g.CheckRateLimit(1)
	g.CheckRateLimit(2)

	clock.Advance(2 * time.Hour)
	g.CleanupOldData()

	if len(g.users) != 0 {
		t.Fatalf("expected all stale entries dropped, still tracking %d", len(g.users))
	}
}

func TestCleanupKeepsUsersWithHistory(t *testing.T) {
	g, clock := newTestGuard(Config{RequestsPerMinute: 1, RequestsPerHour: 1000})

	const userID = 8
	g.CheckRateLimit(userID)
	g.CheckRateLimit(userID) // blocked, blockCount = 1

	clock.Advance(2 * time.Hour)
	g.CleanupOldData()

	// Block count history is retained for suspicion tracking.
	state := g.users[userID]
	if state == nil || state.blockCount != 1 {
		t.Fatalf("expected block history to survive cleanup, got %+v", state)
	}
	if !state.blockedUntil.IsZero() {
		t.Fatalf("expired block should be cleared by cleanup")
	}
}

func TestSnapshotCounts(t *testing.T) {
	g, _ := newTestGuard(Config{RequestsPerMinute: 1, RequestsPerHour: 1000})

	g.CheckRateLimit(1)
	g.CheckRateLimit(2)
	g.CheckRateLimit(2) // blocks user 2

	stats := g.Snapshot()
	if stats.TrackedUsers != 2 {
		t.Fatalf("expected 2 tracked users, got %d", stats.TrackedUsers)
	}
	if stats.ActiveUsers != 2 {
		t.Fatalf("expected 2 active users, got %d", stats.ActiveUsers)
	}
	if stats.BlockedUsers != 1 {
		t.Fatalf("expected 1 blocked user, got %d", stats.BlockedUsers)
	}
	if stats.RPMLimit != 1 || stats.RPHLimit != 1000 {
		t.Fatalf("unexpected limits in snapshot: %+v", stats)
	}
}
