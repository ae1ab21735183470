package interview

import "errors"

var (
	// ErrNotFound indicates the interview doesn't exist.
	ErrNotFound = errors.New("interview not found")
	// ErrAlreadyCompleted indicates a mutation was attempted on a completed interview.
	ErrAlreadyCompleted = errors.New("interview already completed")
	// ErrNoActiveAnswer indicates the interview has no answer record to mutate.
	ErrNoActiveAnswer = errors.New("interview has no active answer")
	// ErrInvalidInput indicates invalid interview input.
	ErrInvalidInput = errors.New("invalid interview input")
)
