package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness violation on the platform (e.g. duplicate customer email).
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict indicates the expected version no longer matches the platform's version.
	ErrConflict = errors.New("version conflict")
	// ErrUnauthenticated indicates a token was missing, invalid or expired.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUpstream indicates a transport failure or 5xx from an external platform.
	ErrUpstream = errors.New("upstream failure")
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
)

// kinds is ordered by how specific the classification is.
var kinds = []error{ErrConflict, ErrUnauthenticated, ErrNotFound, ErrAlreadyExists, ErrValidation, ErrUpstream}

// Error attaches the operation name and a taxonomy kind to an underlying error.
type Error struct {
	Op   string
	Kind error
	Err  error
}

// E builds an *Error. A nil err is replaced by the kind itself.
func E(op string, kind error, err error) error {
	if err == nil {
		err = kind
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Invalid builds a validation error with a message.
func Invalid(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrValidation, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil || e.Err == e.Kind {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	if errors.Is(e.Err, e.Kind) {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// ConflictError reports a stale-write rejection. The caller must refetch and retry.
type ConflictError struct {
	Op              string
	ResourceID      string
	ExpectedVersion int64
	// CurrentVersion is zero when the platform did not report it.
	CurrentVersion int64
}

func (e *ConflictError) Error() string {
	if e.CurrentVersion > 0 {
		return fmt.Sprintf("%s: version conflict on %s: expected %d, current %d", e.Op, e.ResourceID, e.ExpectedVersion, e.CurrentVersion)
	}
	return fmt.Sprintf("%s: version conflict on %s: expected %d", e.Op, e.ResourceID, e.ExpectedVersion)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// KindOf returns the taxonomy sentinel err belongs to, or nil when unclassified.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
