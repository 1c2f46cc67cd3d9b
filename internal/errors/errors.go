package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an error so callers can branch without string matching
type Kind int

const (
	ErrInternal Kind = iota
	ErrNotFound
	ErrInvalidInput
	ErrInvalidPeriod
	ErrQuotaExceeded
	ErrCompetitionNotFound
	ErrInvalidRankingSize
	ErrSelfVote
	ErrSubmissionNotFound
	ErrAlreadyInPhase
)

// Error is an application-level error with a kind for classification
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Constructor functions for common error types

func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidInput(msg string) *Error {
	return &Error{Kind: ErrInvalidInput, Message: msg}
}

func InvalidInputf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func InvalidPeriod(msg string) *Error {
	return &Error{Kind: ErrInvalidPeriod, Message: msg}
}

func InvalidPeriodf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInvalidPeriod, Message: fmt.Sprintf(format, args...)}
}

func QuotaExceededf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrQuotaExceeded, Message: fmt.Sprintf(format, args...)}
}

func CompetitionNotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrCompetitionNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidRankingSizef(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInvalidRankingSize, Message: fmt.Sprintf(format, args...)}
}

func SelfVote(msg string) *Error {
	return &Error{Kind: ErrSelfVote, Message: msg}
}

func SubmissionNotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrSubmissionNotFound, Message: fmt.Sprintf(format, args...)}
}

func AlreadyInPhasef(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrAlreadyInPhase, Message: fmt.Sprintf(format, args...)}
}

func Internal(err error) *Error {
	return &Error{Kind: ErrInternal, Message: "internal error", Err: err}
}

func Internalf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
