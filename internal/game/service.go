package game

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"flashquiz/internal/domain"
)

// Scoreboard is the shared leaderboard every connection handler reads and
// writes. Implementations must make each operation atomic with respect to
// concurrent handlers (in-memory, Redis-mirrored, etc).
type Scoreboard interface {
	// Register claims a username with score 0, failing with
	// domain.ErrUsernameTaken if another live session holds it.
	Register(username string) error
	// Upsert sets a username's score to the session's authoritative value.
	Upsert(username string, score int)
	// Remove drops a username, typically on disconnect.
	Remove(username string)
	// Snapshot returns the entries sorted by score descending, ties broken
	// by username ascending.
	Snapshot() []domain.LeaderboardEntry
}

// Service contains the core game use cases shared by all connections:
// username registration, round construction, score recording, and
// leaderboard fan-out.
type Service struct {
	bank         domain.Bank
	board        Scoreboard
	hub          *Hub
	maxQuestions int

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewService(bank domain.Bank, board Scoreboard, maxQuestions int) *Service {
	return newServiceWithRand(bank, board, maxQuestions, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// newServiceWithRand allows deterministic question draws in tests.
func newServiceWithRand(bank domain.Bank, board Scoreboard, maxQuestions int, rnd *rand.Rand) *Service {
	return &Service{
		bank:         bank,
		board:        board,
		hub:          NewHub(),
		maxQuestions: maxQuestions,
		rnd:          rnd,
	}
}

// Topics lists the selectable quiz topics.
func (s *Service) Topics() []string {
	return s.bank.Topics()
}

// MaxQuestions is the round length.
func (s *Service) MaxQuestions() int {
	return s.maxQuestions
}

// Register claims a username and announces the newcomer to all clients.
func (s *Service) Register(username string) error {
	if strings.TrimSpace(username) == "" {
		return domain.ErrEmptyUsername
	}
	if err := s.board.Register(username); err != nil {
		return err
	}
	s.publish()
	return nil
}

// Unregister releases a username and drops its leaderboard entry.
func (s *Service) Unregister(username string) {
	s.board.Remove(username)
	s.publish()
}

// RecordScore mirrors a session's running score onto the shared leaderboard
// and broadcasts the updated standings.
func (s *Service) RecordScore(username string, score int) {
	s.board.Upsert(username, score)
	s.publish()
}

// Snapshot returns the current sorted leaderboard.
func (s *Service) Snapshot() []domain.LeaderboardEntry {
	return s.board.Snapshot()
}

// Subscribe returns a channel receiving leaderboard updates, primed with the
// current snapshot. The caller must invoke the returned cancel function to
// avoid leaks.
func (s *Service) Subscribe() (<-chan []domain.LeaderboardEntry, func()) {
	return s.hub.Subscribe(s.board.Snapshot())
}

// NewRound draws maxQuestions distinct random questions from the topic.
func (s *Service) NewRound(topic string) (*Round, error) {
	questions, ok := s.bank[topic]
	if !ok {
		return nil, domain.ErrUnknownTopic
	}

	s.mu.Lock()
	perm := s.rnd.Perm(len(questions))
	s.mu.Unlock()

	drawn := make([]domain.Question, 0, s.maxQuestions)
	for _, i := range perm[:s.maxQuestions] {
		drawn = append(drawn, questions[i])
	}
	return &Round{topic: topic, remaining: drawn, total: s.maxQuestions}, nil
}

func (s *Service) publish() {
	s.hub.Publish(s.board.Snapshot())
}
