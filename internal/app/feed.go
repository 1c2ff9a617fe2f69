package app

import (
	"sync"

	"edulearn-engine/internal/domain"
)

// Feed fans progress updates out to per-user subscribers. Sends never block:
// a slow consumer has its stale update dropped in favor of the newest one.
type Feed struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.ProgressUpdate]struct{}
}

func NewFeed() *Feed {
	return &Feed{subscribers: make(map[string]map[chan domain.ProgressUpdate]struct{})}
}

// Subscribe registers a channel for one user's updates. The caller must
// invoke cancel to release it.
func (f *Feed) Subscribe(userID string) (<-chan domain.ProgressUpdate, func()) {
	ch := make(chan domain.ProgressUpdate, 8)

	f.mu.Lock()
	if f.subscribers[userID] == nil {
		f.subscribers[userID] = make(map[chan domain.ProgressUpdate]struct{})
	}
	f.subscribers[userID][ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if set, ok := f.subscribers[userID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(f.subscribers, userID)
			}
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an update to every subscriber of the update's user.
func (f *Feed) Publish(update domain.ProgressUpdate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[update.UserID] {
		select {
		case ch <- update:
		default:
			// Drop the stale update so a slow client never blocks grading.
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
}
