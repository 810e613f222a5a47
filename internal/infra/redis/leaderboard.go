package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"flashquiz/internal/domain"
	"flashquiz/internal/game"
)

const leaderboardKey = "flashquiz:leaderboard"

// Leaderboard mirrors an in-process scoreboard into a Redis sorted set so
// external dashboards can watch live standings. The local scoreboard stays
// authoritative; Redis writes are best-effort and never block gameplay on a
// Redis hiccup.
type Leaderboard struct {
	local  game.Scoreboard
	client *redis.Client
	ttl    time.Duration
}

func NewLeaderboard(client *redis.Client, local game.Scoreboard, ttl time.Duration) *Leaderboard {
	return &Leaderboard{
		local:  local,
		client: client,
		ttl:    ttl,
	}
}

func (l *Leaderboard) Register(username string) error {
	if err := l.local.Register(username); err != nil {
		return err
	}
	l.mirror(username, 0)
	return nil
}

func (l *Leaderboard) Upsert(username string, score int) {
	l.local.Upsert(username, score)
	l.mirror(username, score)
}

func (l *Leaderboard) Remove(username string) {
	l.local.Remove(username)
	_ = l.client.ZRem(context.Background(), leaderboardKey, username).Err()
}

func (l *Leaderboard) Snapshot() []domain.LeaderboardEntry {
	return l.local.Snapshot()
}

func (l *Leaderboard) mirror(username string, score int) {
	ctx := context.Background()
	_ = l.client.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(score), Member: username}).Err()
	if l.ttl > 0 {
		_ = l.client.Expire(ctx, leaderboardKey, l.ttl).Err()
	}
}
