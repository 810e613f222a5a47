package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ChoicesPerQuestion is the fixed number of answer choices per question.
const ChoicesPerQuestion = 4

// Question is a single multiple-choice flashcard. The correct answer is
// always one of the choices.
type Question struct {
	Prompt  string   `json:"prompt"`
	Answer  string   `json:"answer"`
	Choices []string `json:"choices"`
}

// Grade reports whether the given answer text matches this question's
// correct answer, ignoring case and surrounding whitespace.
func (q Question) Grade(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), q.Answer)
}

// Bank maps a topic name to its ordered question list. It is immutable after
// load, so concurrent readers need no synchronization.
type Bank map[string][]Question

// Topics returns the bank's topic names sorted for stable menus.
func (b Bank) Topics() []string {
	topics := make([]string, 0, len(b))
	for topic := range b {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// Validate checks that every topic can fill a round of minPerTopic distinct
// questions and that each question is well-formed. A failure here aborts
// server startup.
func (b Bank) Validate(minPerTopic int) error {
	if len(b) == 0 {
		return fmt.Errorf("%w: no topics loaded", ErrInvalidBank)
	}
	for topic, questions := range b {
		if len(questions) < minPerTopic {
			return fmt.Errorf("%w: topic %q has %d questions, need at least %d",
				ErrInvalidBank, topic, len(questions), minPerTopic)
		}
		for i, q := range questions {
			if len(q.Choices) != ChoicesPerQuestion {
				return fmt.Errorf("%w: topic %q question %d has %d choices, want %d",
					ErrInvalidBank, topic, i, len(q.Choices), ChoicesPerQuestion)
			}
			if !answerAmongChoices(q) {
				return fmt.Errorf("%w: topic %q question %d answer %q not among choices",
					ErrInvalidBank, topic, i, q.Answer)
			}
		}
	}
	return nil
}

func answerAmongChoices(q Question) bool {
	for _, c := range q.Choices {
		if q.Grade(c) {
			return true
		}
	}
	return false
}

// LeaderboardEntry is one row of a leaderboard snapshot.
type LeaderboardEntry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}
