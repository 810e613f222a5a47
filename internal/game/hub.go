package game

import (
	"sync"

	"flashquiz/internal/domain"
)

// Hub fans leaderboard snapshots out to every active connection handler.
// It is deliberately decoupled from the Scoreboard's own locking so that a
// broadcast never nests under the leaderboard lock.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan []domain.LeaderboardEntry]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan []domain.LeaderboardEntry]struct{}),
	}
}

// Subscribe registers a new subscriber primed with the given snapshot.
// The cancel function is idempotent and closes the channel.
func (h *Hub) Subscribe(initial []domain.LeaderboardEntry) (<-chan []domain.LeaderboardEntry, func()) {
	ch := make(chan []domain.LeaderboardEntry, 8)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	ch <- initial

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the snapshot to every subscriber without ever blocking on
// a slow one: if a subscriber's buffer is full, the oldest pending snapshot
// is dropped in favor of the new one.
func (h *Hub) Publish(entries []domain.LeaderboardEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- entries:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- entries
		}
	}
}
