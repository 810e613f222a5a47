// Package protocol defines the JSON frames exchanged between the quiz server
// and its clients. One complete message per frame, in each direction.
package protocol

import (
	"encoding/json"
	"fmt"

	"flashquiz/internal/domain"
)

// Client-to-server message types.
const (
	TypeRegister  = "register"
	TypeTopic     = "topic"
	TypeAnswer    = "answer"
	TypeNextRound = "next_round"
	TypeLogout    = "logout"
)

// Server-to-client message types.
const (
	TypeRegistered    = "registered"
	TypeTopics        = "topics"
	TypeQuestion      = "question"
	TypeResult        = "result"
	TypeRoundComplete = "round_complete"
	TypeLeaderboard   = "leaderboard"
	TypeError         = "error"
)

// ClientMessage is a decoded client frame. Fields beyond Type are populated
// depending on the message type.
type ClientMessage struct {
	Type     string  `json:"type"`
	Username string  `json:"username,omitempty"`
	Topic    string  `json:"topic,omitempty"`
	Choice   *Choice `json:"choice,omitempty"`
}

// Choice is an answer payload: either a 0-based index into the question's
// choices or the answer text itself.
type Choice struct {
	ByIndex bool
	Index   int
	Text    string
}

func (c *Choice) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		c.ByIndex = true
		c.Index = n
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.ByIndex = false
		c.Text = s
		return nil
	}
	return fmt.Errorf("choice must be a choice index or answer text")
}

func (c Choice) MarshalJSON() ([]byte, error) {
	if c.ByIndex {
		return json.Marshal(c.Index)
	}
	return json.Marshal(c.Text)
}

// Registered confirms a successful registration and lists the topics the
// client may pick from.
type Registered struct {
	Type     string   `json:"type"`
	Username string   `json:"username"`
	Topics   []string `json:"topics"`
}

func NewRegistered(username string, topics []string) Registered {
	return Registered{Type: TypeRegistered, Username: username, Topics: topics}
}

// Topics re-offers the topic menu, e.g. before another round.
type Topics struct {
	Type   string   `json:"type"`
	Topics []string `json:"topics"`
}

func NewTopics(topics []string) Topics {
	return Topics{Type: TypeTopics, Topics: topics}
}

// Question carries one question with the correct answer withheld. Number is
// 1-based within the round.
type Question struct {
	Type    string   `json:"type"`
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
	Number  int      `json:"number"`
	Total   int      `json:"total"`
}

func NewQuestion(q domain.Question, number, total int) Question {
	return Question{
		Type:    TypeQuestion,
		Prompt:  q.Prompt,
		Choices: q.Choices,
		Number:  number,
		Total:   total,
	}
}

// Result reveals the correct answer and the session's running score.
type Result struct {
	Type          string `json:"type"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Score         int    `json:"score"`
}

func NewResult(correct bool, correctAnswer string, score int) Result {
	return Result{Type: TypeResult, Correct: correct, CorrectAnswer: correctAnswer, Score: score}
}

// RoundComplete reports the final score for one round.
type RoundComplete struct {
	Type       string  `json:"type"`
	Topic      string  `json:"topic"`
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

func NewRoundComplete(topic string, score, total int, percentage float64) RoundComplete {
	return RoundComplete{Type: TypeRoundComplete, Topic: topic, Score: score, Total: total, Percentage: percentage}
}

// Leaderboard is a broadcast snapshot of the shared scoreboard.
type Leaderboard struct {
	Type    string                    `json:"type"`
	Entries []domain.LeaderboardEntry `json:"entries"`
}

func NewLeaderboard(entries []domain.LeaderboardEntry) Leaderboard {
	return Leaderboard{Type: TypeLeaderboard, Entries: entries}
}

// Error is a recoverable protocol error; the connection stays open.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(message string) Error {
	return Error{Type: TypeError, Message: message}
}
