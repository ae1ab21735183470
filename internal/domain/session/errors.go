package session

import "errors"

var (
	// ErrNotAttached means no live engine exists for the interview.
	ErrNotAttached = errors.New("no active session for interview")
	// ErrCompleted means the interview is finished and accepts no input.
	ErrCompleted = errors.New("interview already completed")
	// ErrNotRunning means an input arrived while the timer was not running.
	ErrNotRunning = errors.New("session is not running")
	// ErrAdvancing means input arrived while a question transition was in
	// flight.
	ErrAdvancing = errors.New("session is advancing to the next question")
)
