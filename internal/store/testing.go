package store

// Seed is a test helper that inserts or replaces a user record when using
// the in-memory store.
func Seed(s Store, user UserRecord) {
	if mem, ok := s.(*memoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.users[user.ID] = user
	}
}

// FailCredits is a test helper that makes every balance credit for the
// given user fail when using the in-memory store.
func FailCredits(s Store, id int64) {
	if mem, ok := s.(*memoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.failCredits[id] = true
	}
}
