package memory

import (
	"context"
	"sort"
	"sync"

	"edulearn-engine/internal/domain"
)

// Ledger is an in-memory append-only event store keyed by user.
type Ledger struct {
	mu     sync.RWMutex
	events map[string][]domain.ProgressEvent
}

func NewLedger() *Ledger {
	return &Ledger{events: make(map[string][]domain.ProgressEvent)}
}

func (l *Ledger) Append(_ context.Context, event domain.ProgressEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events[event.UserID] = append(l.events[event.UserID], event)
	return nil
}

// ListByUser returns the user's events in chronological order. The slice is
// a copy; the ledger itself is never handed out for mutation.
func (l *Ledger) ListByUser(_ context.Context, userID string) ([]domain.ProgressEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	events := make([]domain.ProgressEvent, len(l.events[userID]))
	copy(events, l.events[userID])
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events, nil
}
