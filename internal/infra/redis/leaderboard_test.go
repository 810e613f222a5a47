package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"flashquiz/internal/domain"
	"flashquiz/internal/infra/memory"
)

func newMirror(t *testing.T) (*Leaderboard, *goredis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return NewLeaderboard(client, memory.NewLeaderboard(), time.Minute), client
}

func TestMirrorsScoresIntoSortedSet(t *testing.T) {
	board, client := newMirror(t)
	ctx := context.Background()

	if err := board.Register("alice"); err != nil {
		t.Fatalf("register: %v", err)
	}
	score, err := client.ZScore(ctx, "flashquiz:leaderboard", "alice").Result()
	if err != nil || score != 0 {
		t.Fatalf("expected alice mirrored at 0, got %v err=%v", score, err)
	}

	board.Upsert("alice", 4)
	score, _ = client.ZScore(ctx, "flashquiz:leaderboard", "alice").Result()
	if score != 4 {
		t.Fatalf("expected mirrored score 4, got %v", score)
	}
}

func TestRemoveClearsMirrorEntry(t *testing.T) {
	board, client := newMirror(t)
	ctx := context.Background()

	_ = board.Register("alice")
	board.Remove("alice")

	if _, err := client.ZScore(ctx, "flashquiz:leaderboard", "alice").Result(); err != goredis.Nil {
		t.Fatalf("expected alice gone from mirror, got err=%v", err)
	}
}

func TestLocalScoreboardStaysAuthoritative(t *testing.T) {
	board, _ := newMirror(t)

	_ = board.Register("alice")
	_ = board.Register("bob")
	board.Upsert("bob", 2)

	want := []domain.LeaderboardEntry{{Username: "bob", Score: 2}, {Username: "alice", Score: 0}}
	got := board.Snapshot()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	if err := board.Register("alice"); err != domain.ErrUsernameTaken {
		t.Fatalf("expected duplicate rejected locally, got %v", err)
	}
}
