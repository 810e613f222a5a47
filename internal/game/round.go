package game

import (
	"math"

	"flashquiz/internal/domain"
)

// Answer is a submitted answer: either a 0-based choice index or the answer
// text itself. An out-of-range index is a wrong answer, not an error.
type Answer struct {
	ByIndex bool
	Index   int
	Text    string
}

// Result summarizes grading one answer.
type Result struct {
	Correct       bool
	CorrectAnswer string
	Score         int
	Done          bool
}

// Round holds one session's progress through a drawn question set. It is
// owned by a single connection handler and needs no locking.
type Round struct {
	topic     string
	remaining []domain.Question
	current   *domain.Question
	served    int
	total     int
	score     int
}

// Topic is the topic this round was drawn from.
func (r *Round) Topic() string {
	return r.topic
}

// Next pops the next question into the outstanding slot. The returned number
// is 1-based for display. ok is false when the round is exhausted.
func (r *Round) Next() (q domain.Question, number int, ok bool) {
	if len(r.remaining) == 0 {
		return domain.Question{}, 0, false
	}
	q = r.remaining[0]
	r.remaining = r.remaining[1:]
	r.current = &q
	r.served++
	return q, r.served, true
}

// Grade scores the outstanding question against the submitted answer and
// clears the outstanding slot. It fails only when no question is pending.
func (r *Round) Grade(a Answer) (Result, error) {
	if r.current == nil {
		return Result{}, domain.ErrNoQuestionPending
	}
	q := *r.current
	r.current = nil

	var correct bool
	if a.ByIndex {
		correct = a.Index >= 0 && a.Index < len(q.Choices) && q.Grade(q.Choices[a.Index])
	} else {
		correct = q.Grade(a.Text)
	}
	if correct {
		r.score++
	}
	return Result{
		Correct:       correct,
		CorrectAnswer: q.Answer,
		Score:         r.score,
		Done:          len(r.remaining) == 0,
	}, nil
}

// Score is the number of correct answers so far.
func (r *Round) Score() int {
	return r.score
}

// Total is the round length.
func (r *Round) Total() int {
	return r.total
}

// Percentage is the final score as a percentage, rounded to one decimal.
func (r *Round) Percentage() float64 {
	if r.total == 0 {
		return 0
	}
	return math.Round(float64(r.score)/float64(r.total)*1000) / 10
}
