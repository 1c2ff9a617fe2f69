package memory

import (
	"context"
	"sync"
	"time"

	"edulearn-engine/internal/domain"
)

// SetStore is an in-memory implementation of app.SetStore. Expiry is checked
// lazily on Fetch/Consume; Purge exists for deployments that want a sweep.
type SetStore struct {
	expiry time.Duration
	clock  func() time.Time

	mu   sync.Mutex
	sets map[string]*domain.QuestionSet
}

func NewSetStore(expiry time.Duration) *SetStore {
	return &SetStore{
		expiry: expiry,
		clock:  time.Now,
		sets:   make(map[string]*domain.QuestionSet),
	}
}

// NewSetStoreWithClock is test-only for deterministic expiry.
func NewSetStoreWithClock(expiry time.Duration, now func() time.Time) *SetStore {
	store := NewSetStore(expiry)
	store.clock = now
	return store
}

func (s *SetStore) Create(_ context.Context, set domain.QuestionSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := set
	s.sets[set.ID] = &stored
	return nil
}

func (s *SetStore) Fetch(_ context.Context, id string) (domain.QuestionSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[id]
	if !ok {
		return domain.QuestionSet{}, domain.ErrNotFound
	}
	s.expireLocked(set)
	if set.Status == domain.SetExpired {
		return domain.QuestionSet{}, domain.ErrExpired
	}
	return *set, nil
}

// Consume transitions Open -> Graded under the store lock, so exactly one of
// any concurrent callers wins; losers observe ErrAlreadyGraded.
func (s *SetStore) Consume(_ context.Context, id string) (domain.QuestionSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[id]
	if !ok {
		return domain.QuestionSet{}, domain.ErrNotFound
	}
	s.expireLocked(set)
	switch set.Status {
	case domain.SetGraded:
		return domain.QuestionSet{}, domain.ErrAlreadyGraded
	case domain.SetExpired:
		return domain.QuestionSet{}, domain.ErrExpired
	}
	set.Status = domain.SetGraded
	return *set, nil
}

func (s *SetStore) Reopen(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[id]
	if !ok {
		return domain.ErrNotFound
	}
	set.Status = domain.SetOpen
	return nil
}

// Purge drops expired and graded sets; callers may run it periodically.
func (s *SetStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, set := range s.sets {
		s.expireLocked(set)
		if set.Status != domain.SetOpen {
			delete(s.sets, id)
			removed++
		}
	}
	return removed
}

func (s *SetStore) expireLocked(set *domain.QuestionSet) {
	if set.Status == domain.SetOpen && s.expiry > 0 && s.clock().Sub(set.CreatedAt) > s.expiry {
		set.Status = domain.SetExpired
	}
}
