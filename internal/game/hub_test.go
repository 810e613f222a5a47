package game

import (
	"testing"

	"flashquiz/internal/domain"
)

func snapshotWithScore(score int) []domain.LeaderboardEntry {
	return []domain.LeaderboardEntry{{Username: "alice", Score: score}}
}

func TestHubPrimesSubscriberWithInitialSnapshot(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(snapshotWithScore(7))
	defer cancel()

	initial := <-ch
	if len(initial) != 1 || initial[0].Score != 7 {
		t.Fatalf("expected primed snapshot, got %+v", initial)
	}
}

func TestHubNeverBlocksOnSlowSubscriber(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(nil)
	defer cancel()

	// Publish far more snapshots than the subscriber buffer holds without
	// draining; Publish must drop stale entries instead of blocking.
	for i := 1; i <= 50; i++ {
		hub.Publish(snapshotWithScore(i))
	}

	var last []domain.LeaderboardEntry
	for {
		select {
		case entries := <-ch:
			last = entries
			continue
		default:
		}
		break
	}
	if len(last) != 1 || last[0].Score != 50 {
		t.Fatalf("expected the newest snapshot to survive, got %+v", last)
	}
}

func TestHubCancelIsIdempotent(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(nil)
	<-ch

	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after cancel")
	}

	// A canceled subscriber must no longer receive anything.
	hub.Publish(snapshotWithScore(1))
}
