package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type memoryStore struct {
	mu          sync.RWMutex
	users       map[int64]UserRecord
	failCredits map[int64]bool
}

// NewMemoryStore constructs a concurrency-safe in-memory store for tests
// and dev mode runs without a database.
func NewMemoryStore() Store {
	return &memoryStore{
		users:       make(map[int64]UserRecord),
		failCredits: make(map[int64]bool),
	}
}

func (s *memoryStore) GetUser(_ context.Context, id int64) (UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return user, nil
}

func (s *memoryStore) CreateUser(_ context.Context, user UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.ID]; exists {
		return ErrUserExists
	}
	s.users[user.ID] = user
	return nil
}

func (s *memoryStore) SetReferrer(_ context.Context, id, referrerID int64, level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok || user.ReferredBy != nil {
		return ErrUserNotFound
	}
	ref := referrerID
	user.ReferredBy = &ref
	user.ReferralLevel = level
	s.users[id] = user
	return nil
}

func (s *memoryStore) AddBalance(_ context.Context, id int64, amount float64, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credit(id, amount, 0)
}

func (s *memoryStore) IncrementReferralCount(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.ReferralCount++
	s.users[id] = user
	return nil
}

func (s *memoryStore) UpdateReferralEarnings(_ context.Context, id int64, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.ReferralEarnings += delta
	s.users[id] = user
	return nil
}

func (s *memoryStore) CreditBonus(_ context.Context, id int64, amount float64, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credit(id, amount, amount)
}

func (s *memoryStore) GetReferralsByUsers(_ context.Context, ids []int64) ([]UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parents := make(map[int64]bool, len(ids))
	for _, id := range ids {
		parents[id] = true
	}
	var users []UserRecord
	for _, user := range s.users {
		if user.ReferredBy != nil && parents[*user.ReferredBy] {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// credit applies a balance change and, for commission credits, the matching
// earnings update. Callers must hold the write lock.
func (s *memoryStore) credit(id int64, amount, earningsDelta float64) error {
	if s.failCredits[id] {
		return fmt.Errorf("credit %d: simulated store failure", id)
	}
	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.Balance += amount
	user.ReferralEarnings += earningsDelta
	s.users[id] = user
	return nil
}
