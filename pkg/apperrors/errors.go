package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error by how callers are expected to recover from it.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindExternalService Kind = "external_service"
	KindPersistence     Kind = "persistence"
	KindNotFound        Kind = "not_found"
)

// Error carries a user-facing message plus the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
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

func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func ExternalService(message string, err error) error {
	return &Error{Kind: KindExternalService, Message: message, Err: err}
}

func Persistence(message string, err error) error {
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}

func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Message returns the user-facing message without the wrapped cause.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

func IsExternalService(err error) bool {
	return KindOf(err) == KindExternalService
}

func IsPersistence(err error) bool {
	return KindOf(err) == KindPersistence
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
