package couple

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by this package wraps exactly one of them,
// so callers can branch with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("invalid input")
)

// Error is a user-facing failure of a known kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

var (
	ErrRelationshipNotFound  = &Error{ErrNotFound, "relationship not found"}
	ErrQuestionNotFound      = &Error{ErrNotFound, "question not found"}
	ErrInvalidPartnerCode    = &Error{ErrNotFound, "invalid partner code"}
	ErrAlreadyInRelationship = &Error{ErrConflict, "user already has a relationship"}
	ErrAlreadyLinked         = &Error{ErrConflict, "this relationship already has a partner"}
	ErrSelfLink              = &Error{ErrConflict, "cannot link with your own relationship"}
	ErrPartnerRequired       = &Error{ErrConflict, "a linked partner is required"}
	ErrAlreadyAnswered       = &Error{ErrConflict, "question already answered by both partners"}
	ErrUsernameTaken         = &Error{ErrConflict, "username already taken"}
	ErrWrongAnswerSlot       = &Error{ErrForbidden, "cannot answer for your partner"}
)

// Invalid returns a validation failure with a formatted message.
func Invalid(format string, args ...any) error {
	return &Error{ErrValidation, fmt.Sprintf(format, args...)}
}
