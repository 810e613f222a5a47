package domain

import "errors"

var (
	// ErrUsernameTaken is returned when a registration names a username held
	// by another live session.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmptyUsername is returned when a registration carries a blank name.
	ErrEmptyUsername = errors.New("username cannot be empty")
	// ErrUnknownTopic indicates a topic selection not present in the bank.
	ErrUnknownTopic = errors.New("unknown topic")
	// ErrNoQuestionPending indicates an answer arrived with no question outstanding.
	ErrNoQuestionPending = errors.New("no question pending")
	// ErrInvalidBank indicates the question bank failed startup validation.
	ErrInvalidBank = errors.New("invalid question bank")
)
