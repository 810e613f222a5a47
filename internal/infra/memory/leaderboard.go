package memory

import (
	"sort"
	"sync"

	"flashquiz/internal/domain"
)

// Leaderboard is the in-memory implementation of game.Scoreboard. A single
// mutex makes every operation atomic with respect to concurrent connection
// handlers; no caller ever holds it across a socket operation.
type Leaderboard struct {
	mu     sync.Mutex
	scores map[string]int
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{
		scores: make(map[string]int),
	}
}

func (l *Leaderboard) Register(username string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.scores[username]; ok {
		return domain.ErrUsernameTaken
	}
	l.scores[username] = 0
	return nil
}

func (l *Leaderboard) Upsert(username string, score int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scores[username] = score
}

func (l *Leaderboard) Remove(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.scores, username)
}

func (l *Leaderboard) Snapshot() []domain.LeaderboardEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]domain.LeaderboardEntry, 0, len(l.scores))
	for username, score := range l.scores {
		entries = append(entries, domain.LeaderboardEntry{Username: username, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Username < entries[j].Username
	})
	return entries
}
