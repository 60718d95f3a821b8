package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotInRelation      = errors.New("relation does not exist")
	ErrSelfSubscription   = errors.New("you cannot subscribe to yourself")
	ErrStorageDisabled    = errors.New("image upload is not available")
)

// ValidationError reports request data that is well-formed but unacceptable,
// such as an unknown tag id or a taken username.
type ValidationError struct {
	Fields map[string][]string
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// notFound maps gorm's missing-row error onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// RelationError carries a user-facing message for a favorite, cart or
// subscription conflict. Kind is one of the sentinel errors above.
type RelationError struct {
	Msg  string
	Kind error
}

func (e *RelationError) Error() string { return e.Msg }

func (e *RelationError) Unwrap() error { return e.Kind }

func relationErr(kind error, format string, args ...interface{}) error {
	return &RelationError{Msg: fmt.Sprintf(format, args...), Kind: kind}
}
