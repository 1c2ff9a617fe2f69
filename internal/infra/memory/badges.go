package memory

import (
	"context"
	"sort"
	"sync"
)

// BadgeStore keeps unlocked badges per user in memory.
type BadgeStore struct {
	mu       sync.RWMutex
	unlocked map[string]map[string]struct{}
}

func NewBadgeStore() *BadgeStore {
	return &BadgeStore{unlocked: make(map[string]map[string]struct{})}
}

func (s *BadgeStore) Unlocked(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.unlocked[userID]))
	for id := range s.unlocked[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *BadgeStore) Unlock(_ context.Context, userID string, badgeIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unlocked[userID] == nil {
		s.unlocked[userID] = make(map[string]struct{})
	}
	for _, id := range badgeIDs {
		s.unlocked[userID][id] = struct{}{}
	}
	return nil
}
