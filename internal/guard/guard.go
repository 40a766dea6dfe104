// Package guard protects the referral engine's user-facing entry points
// with a per-user sliding-window rate limiter, escalating temporary blocks
// and a set of input validators.
package guard

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	minuteWindow = time.Minute
	hourWindow   = time.Hour

	minuteBlockDuration = 5 * time.Minute
	hourBlockDuration   = 60 * time.Minute

	// suspiciousBlockThreshold is how many blocks flag a user as suspicious.
	suspiciousBlockThreshold = 5
)

// Config bounds how often a single user may trigger guarded actions.
type Config struct {
	RequestsPerMinute int
	RequestsPerHour   int
	MinAmount         float64
	MaxAmount         float64
}

type userState struct {
	requests     []time.Time
	blockedUntil time.Time
	blockCount   int
}

// Guard is a process-wide abuse guard. All state is in memory and protected
// by a single mutex; entries are pruned on each check and swept by
// CleanupOldData.
type Guard struct {
	cfg    Config
	logger *slog.Logger

	mu    sync.Mutex
	users map[int64]*userState

	// now is swapped out in tests to drive the clock.
	now func() time.Time
}

// New constructs a guard. Non-positive limits fall back to 60 rpm / 1000 rph.
func New(cfg Config, logger *slog.Logger) *Guard {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.RequestsPerHour <= 0 {
		cfg.RequestsPerHour = 1000
	}
	return &Guard{
		cfg:    cfg,
		logger: logger,
		users:  make(map[int64]*userState),
		now:    time.Now,
	}
}

// CheckRateLimit admits or rejects one request from userID. A rejection
// carries a human-readable reason; it is a normal outcome, not an error.
func (g *Guard) CheckRateLimit(userID int64) (bool, string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	state := g.users[userID]
	if state == nil {
		state = &userState{}
		g.users[userID] = state
	}

	if !state.blockedUntil.IsZero() {
		if now.Before(state.blockedUntil) {
			remaining := int(state.blockedUntil.Sub(now).Seconds())
			return false, fmt.Sprintf("you are temporarily blocked, %d seconds remaining", remaining)
		}
		state.blockedUntil = time.Time{}
		g.logger.Info("user unblocked", "user_id", userID)
	}

	state.requests = pruneBefore(state.requests, now.Add(-hourWindow))

	if len(state.requests) >= g.cfg.RequestsPerHour {
		g.block(userID, state, now, hourBlockDuration)
		return false, "hourly request limit exceeded, try again in 1 hour"
	}

	recent := 0
	for _, t := range state.requests {
		if now.Sub(t) < minuteWindow {
			recent++
		}
	}
	if recent >= g.cfg.RequestsPerMinute {
		g.block(userID, state, now, minuteBlockDuration)
		return false, "too many requests, please wait 5 minutes"
	}

	state.requests = append(state.requests, now)
	return true, ""
}

// IsBlocked reports whether userID currently sits in a block window,
// clearing the block if it already expired.
func (g *Guard) IsBlocked(userID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	state := g.users[userID]
	if state == nil || state.blockedUntil.IsZero() {
		return false
	}
	if !g.now().Before(state.blockedUntil) {
		state.blockedUntil = time.Time{}
		return false
	}
	return true
}

// DetectSuspiciousActivity flags users blocked five or more times.
// Informational only; it does not itself block.
func (g *Guard) DetectSuspiciousActivity(userID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	state := g.users[userID]
	if state == nil {
		return false
	}
	if state.blockCount >= suspiciousBlockThreshold {
		g.logger.Warn("suspicious activity detected", "user_id", userID, "block_count", state.blockCount)
		return true
	}
	return false
}

// ResetUserLimits clears all tracked state for a user. Manual intervention.
func (g *Guard) ResetUserLimits(userID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.users, userID)
	g.logger.Info("user limits reset", "user_id", userID)
}

// CleanupOldData drops users whose request history aged out entirely and
// clears expired blocks. Intended to run periodically to bound memory.
func (g *Guard) CleanupOldData() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	cutoff := now.Add(-hourWindow)
	for userID, state := range g.users {
		state.requests = pruneBefore(state.requests, cutoff)
		if !state.blockedUntil.IsZero() && !now.Before(state.blockedUntil) {
			state.blockedUntil = time.Time{}
		}
		if len(state.requests) == 0 && state.blockedUntil.IsZero() && state.blockCount == 0 {
			delete(g.users, userID)
		}
	}
	g.logger.Debug("guard cleanup completed", "tracked_users", len(g.users))
}

// Stats describes the guard's current view for operators.
type Stats struct {
	ActiveUsers     int `json:"active_users"`
	BlockedUsers    int `json:"blocked_users"`
	SuspiciousUsers int `json:"suspicious_users"`
	TrackedUsers    int `json:"tracked_users"`
	RPMLimit        int `json:"rate_limit_rpm"`
	RPHLimit        int `json:"rate_limit_rph"`
}

// Snapshot returns current guard statistics.
func (g *Guard) Snapshot() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	cutoff := now.Add(-hourWindow)
	stats := Stats{
		TrackedUsers: len(g.users),
		RPMLimit:     g.cfg.RequestsPerMinute,
		RPHLimit:     g.cfg.RequestsPerHour,
	}
	for _, state := range g.users {
		for _, t := range state.requests {
			if t.After(cutoff) {
				stats.ActiveUsers++
				break
			}
		}
		if !state.blockedUntil.IsZero() && now.Before(state.blockedUntil) {
			stats.BlockedUsers++
		}
		if state.blockCount >= 3 {
			stats.SuspiciousUsers++
		}
	}
	return stats
}

// block must be called with the mutex held.
func (g *Guard) block(userID int64, state *userState, now time.Time, d time.Duration) {
	state.blockedUntil = now.Add(d)
	state.blockCount++
	g.logger.Warn("user blocked", "user_id", userID, "duration", d, "block_count", state.blockCount)
}

func pruneBefore(requests []time.Time, cutoff time.Time) []time.Time {
	kept := requests[:0]
	for _, t := range requests {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
