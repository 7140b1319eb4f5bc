package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("access forbidden")
)

// ValidationError carries field-level messages keyed by the JSON field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError is a shortcut for a single failing field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(msgs, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// TokenErrorKind classifies why a bearer token was rejected. Clients only
// ever see a 401; the kind is for logs and metrics.
type TokenErrorKind string

const (
	TokenMalformed      TokenErrorKind = "malformed"
	TokenBadSignature   TokenErrorKind = "bad_signature"
	TokenExpired        TokenErrorKind = "expired"
	TokenClaimsMismatch TokenErrorKind = "claims_mismatch"
)

type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return "token " + string(e.Kind)
	}
	return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
}

func (e *TokenError) Unwrap() error { return e.Err }

func (e *TokenError) Is(target error) bool {
	return target == ErrUnauthenticated
}

// TokenErrorKindOf returns the kind of a wrapped TokenError, if any.
func TokenErrorKindOf(err error) (TokenErrorKind, bool) {
	var te *TokenError
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return "", false
}
