package httpserver

import (
	"errors"

	"commercetools-gateway/internal/domain"
)

// Codes exposed in GraphQL error extensions.
const (
	codeNotFound        = "NOT_FOUND"
	codeConflict        = "CONFLICT"
	codeUnauthenticated = "UNAUTHENTICATED"
	codeUpstream        = "UPSTREAM"
	codeValidation      = "VALIDATION"
	codeAlreadyExists   = "ALREADY_EXISTS"
	codeInternal        = "INTERNAL"
)

// resolverError is returned from resolvers; graphql-go copies Extensions into the response.
type resolverError struct {
	message    string
	extensions map[string]any
}

func (e *resolverError) Error() string { return e.message }

func (e *resolverError) Extensions() map[string]any { return e.extensions }

func errorCode(err error) string {
	switch domain.KindOf(err) {
	case domain.ErrConflict:
		return codeConflict
	case domain.ErrNotFound:
		return codeNotFound
	case domain.ErrUnauthenticated:
		return codeUnauthenticated
	case domain.ErrValidation:
		return codeValidation
	case domain.ErrAlreadyExists:
		return codeAlreadyExists
	case domain.ErrUpstream:
		return codeUpstream
	}
	return codeInternal
}

// publicError converts err into a client-facing error. Upstream and internal details
// stay in the logs.
func publicError(err error) *resolverError {
	code := errorCode(err)
	out := &resolverError{message: err.Error(), extensions: map[string]any{"code": code}}
	switch code {
	case codeUpstream:
		out.message = "upstream service unavailable"
	case codeInternal:
		out.message = "internal error"
	case codeConflict:
		out.message = "version conflict: refetch and retry"
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			out.extensions["expectedVersion"] = conflict.ExpectedVersion
			if conflict.CurrentVersion > 0 {
				out.extensions["currentVersion"] = conflict.CurrentVersion
			}
		}
	}
	return out
}
