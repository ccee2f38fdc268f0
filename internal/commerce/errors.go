package commerce

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"commercetools-gateway/internal/domain"
	"golang.org/x/oauth2"
)

// APIError is the error body returned by the commerce platform.
type APIError struct {
	StatusCode int          `json:"statusCode"`
	Message    string       `json:"message"`
	Errors     []errorEntry `json:"errors"`
	// OAuth endpoints use a different shape.
	OAuthError       string `json:"error"`
	OAuthDescription string `json:"error_description"`
}

type errorEntry struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	CurrentVersion int64  `json:"currentVersion"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.OAuthDescription
	}
	if msg == "" {
		msg = e.OAuthError
	}
	if code := e.code(); code != "" {
		return fmt.Sprintf("status %d: %s: %s", e.StatusCode, code, msg)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, msg)
}

func (e *APIError) code() string {
	if len(e.Errors) > 0 {
		return e.Errors[0].Code
	}
	return e.OAuthError
}

func (e *APIError) has(code string) (errorEntry, bool) {
	for _, entry := range e.Errors {
		if entry.Code == code {
			return entry, true
		}
	}
	return errorEntry{}, false
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{}
	if err := json.Unmarshal(body, apiErr); err != nil || (apiErr.Message == "" && apiErr.OAuthError == "" && len(apiErr.Errors) == 0) {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}
	apiErr.StatusCode = status
	return apiErr
}

// classifyStatus maps a non-2xx response onto the domain taxonomy.
func classifyStatus(cl call, status int, body []byte) error {
	apiErr := parseAPIError(status, body)
	if entry, ok := apiErr.has("ConcurrentModification"); ok || status == http.StatusConflict {
		return &domain.ConflictError{
			Op:              cl.op,
			ResourceID:      cl.resourceID,
			ExpectedVersion: cl.version,
			CurrentVersion:  entry.CurrentVersion,
		}
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.E(cl.op, domain.ErrUnauthenticated, apiErr)
	case status == http.StatusNotFound:
		return domain.E(cl.op, domain.ErrNotFound, apiErr)
	}
	if _, ok := apiErr.has("DuplicateField"); ok {
		return domain.E(cl.op, domain.ErrAlreadyExists, apiErr)
	}
	if status >= 400 && status < 500 {
		return domain.E(cl.op, domain.ErrValidation, apiErr)
	}
	return domain.E(cl.op, domain.ErrUpstream, apiErr)
}

// classifyTransport wraps failures that happened before a response was read.
func classifyTransport(op string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return domain.E(op, domain.ErrUpstream, fmt.Errorf("client credentials: %w", err))
	}
	return domain.E(op, domain.ErrUpstream, err)
}

// classifyPasswordGrant maps password-flow failures; rejected credentials are unauthenticated.
func classifyPasswordGrant(op string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		status := retrieveErr.Response.StatusCode
		if status == http.StatusBadRequest || status == http.StatusUnauthorized {
			return domain.E(op, domain.ErrUnauthenticated, parseAPIError(status, retrieveErr.Body))
		}
		return domain.E(op, domain.ErrUpstream, parseAPIError(status, retrieveErr.Body))
	}
	return domain.E(op, domain.ErrUpstream, err)
}
