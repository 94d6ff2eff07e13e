package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	// ErrForbidden indicates the caller lacks the role or ownership required.
	ErrForbidden = errors.New("forbidden")
	// ErrNotApproved indicates an educator whose account is not yet approved.
	ErrNotApproved = errors.New("educator account is not approved")
	// ErrNotFound is wrapped by every entity-specific not-found error.
	ErrNotFound = errors.New("not found")
	// ErrQuizNotFound indicates the quiz does not exist.
	ErrQuizNotFound = fmt.Errorf("quiz %w", ErrNotFound)
	// ErrQuestionNotFound indicates the question does not exist within the quiz.
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	// ErrAttemptNotFound indicates the attempt does not exist.
	ErrAttemptNotFound = fmt.Errorf("attempt %w", ErrNotFound)
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	// ErrQuizInactive indicates the quiz has been deactivated.
	ErrQuizInactive = errors.New("quiz is not active")
	// ErrAlreadyEnrolled indicates the student already holds an enrollment for the quiz.
	ErrAlreadyEnrolled = errors.New("already enrolled in this quiz")
	// ErrNotEnrolled indicates the student has no enrollment for the quiz.
	ErrNotEnrolled = errors.New("not enrolled in this quiz")
	// ErrMaxAttemptsReached indicates the attempt cap is exhausted.
	ErrMaxAttemptsReached = errors.New("maximum attempts reached")
	// ErrAlreadySubmitted indicates the attempt was already completed.
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	// ErrNotCompleted indicates a result was requested for an attempt still in progress.
	ErrNotCompleted = errors.New("attempt not completed")
	// ErrConflict indicates a uniqueness clash that is not one of the named conflicts.
	ErrConflict = errors.New("conflict")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = fmt.Errorf("email already registered: %w", ErrConflict)
	// ErrValidation is wrapped by domain validation failures.
	ErrValidation = errors.New("validation failed")
	// ErrUploadUnavailable indicates material storage is not configured.
	ErrUploadUnavailable = errors.New("material storage is not configured")
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
