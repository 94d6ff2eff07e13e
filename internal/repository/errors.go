package repository

import "errors"

var (
	// ErrAttemptLimitReached is returned when a start would exceed the quiz's attempt cap.
	ErrAttemptLimitReached = errors.New("attempt limit reached")
	// ErrAttemptAlreadyCompleted is returned when completing an attempt that was already submitted.
	ErrAttemptAlreadyCompleted = errors.New("attempt already completed")
)
