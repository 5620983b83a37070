package app

import (
	"sync"

	"scisoc-quiz-service/internal/domain"
)

// LeaderboardHub fans ranked snapshots out to live subscribers.
type LeaderboardHub struct {
	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardHub() *LeaderboardHub {
	return &LeaderboardHub{subscribers: make(map[chan domain.Leaderboard]struct{})}
}

// Subscribe registers a channel that first receives initial and then every
// published snapshot. The caller must invoke cancel to avoid leaks.
func (h *LeaderboardHub) Subscribe(initial domain.Leaderboard) (<-chan domain.Leaderboard, func()) {
	ch, cancel, _ := h.SubscribeWith(func() (domain.Leaderboard, error) {
		return initial, nil
	})
	return ch, cancel
}

// SubscribeWith loads the initial snapshot while holding the hub lock, so a
// Publish or Subscribers call racing with the load waits for the
// registration and its snapshot is delivered after the initial one.
func (h *LeaderboardHub) SubscribeWith(load func() (domain.Leaderboard, error)) (<-chan domain.Leaderboard, func(), error) {
	h.mu.Lock()
	initial, err := load()
	if err != nil {
		h.mu.Unlock()
		return nil, nil, err
	}
	ch := make(chan domain.Leaderboard, 8)
	ch <- initial
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel, nil
}

// Publish delivers lb to every subscriber without blocking on slow readers.
func (h *LeaderboardHub) Publish(lb domain.Leaderboard) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- lb:
		default:
			// Slow reader: drop its oldest snapshot so the newest always lands.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (h *LeaderboardHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
