package models

import (
	"errors"
	"strings"
)

// ErrInvalidToken is returned for any entry token that does not resolve to a participant.
// Empty, malformed and unknown tokens are deliberately indistinguishable.
var ErrInvalidToken = errors.New("invalid entry pass")

// ValidationError reports input that cannot be accepted as submitted.
type ValidationError struct {
	Fields  []string // labels of missing or invalid fields, in form order
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "please fill in: " + strings.Join(e.Fields, ", ")
}

// DuplicateKind says which uniqueness rule a registration broke.
type DuplicateKind string

const (
	DuplicateEmail DuplicateKind = "email"
	DuplicateTeam  DuplicateKind = "team"
)

// DuplicateError is returned when a registration collides with an existing one.
type DuplicateError struct {
	Kind DuplicateKind
}

func (e *DuplicateError) Error() string {
	if e.Kind == DuplicateTeam {
		return "this team has already registered for this event"
	}
	return "you have already registered for this event"
}

// NotFoundError is returned when a referenced record does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// IdentityErrorKind classifies identity provider failures so callers can branch without parsing text.
type IdentityErrorKind string

const (
	IdentityInvalidInput       IdentityErrorKind = "invalid_input"
	IdentityAlreadyExists      IdentityErrorKind = "already_exists"
	IdentityInvalidCredentials IdentityErrorKind = "invalid_credentials"
	IdentityInvalidSession     IdentityErrorKind = "invalid_session"
	IdentityUnavailable        IdentityErrorKind = "unavailable"
)

// IdentityError is a sign-in, sign-up or session failure.
type IdentityError struct {
	Kind    IdentityErrorKind
	Message string
	Err     error
}

func (e *IdentityError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *IdentityError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
