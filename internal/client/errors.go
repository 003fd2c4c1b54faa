// ABOUTME: Error taxonomy for calls to the game authority
// ABOUTME: Maps HTTP statuses and transport failures to sentinel kinds

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error kinds. Match with errors.Is.
var (
	ErrUnauthenticated = errors.New("not logged in")
	ErrForbidden       = errors.New("action not allowed")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrRejected        = errors.New("request rejected")
	ErrServer          = errors.New("backend error")
	ErrNetwork         = errors.New("network failure")
)

// Error is returned by every Client call that fails
type Error struct {
	Kind      error
	Status    int
	Message   string
	RequestID string
	Cause     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

// Unwrap exposes both the kind and any transport cause
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// ErrorResponse represents an API error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Detail  string `json:"detail,omitempty"`
	Details string `json:"details,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// kindForStatus maps an HTTP status to an error kind
func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthenticated
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status >= 500:
		return ErrServer
	default:
		return ErrRejected
	}
}

// handleRequestError converts transport failures to user-friendly errors
func (c *Client) handleRequestError(ctx context.Context, requestID string, err error) error {
	e := &Error{Kind: ErrNetwork, RequestID: requestID, Cause: err}
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		e.Message = "request canceled"
		e.Cause = context.Canceled
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		e.Message = "request timed out"
		e.Cause = context.DeadlineExceeded
	default:
		e.Message = fmt.Sprintf("cannot connect to backend at %s: %v", c.baseURL, err)
	}
	return e
}

// handleErrorResponse parses API error responses. The authority uses
// either "error" or "detail" for the message.
func handleErrorResponse(resp *http.Response, requestID string) error {
	e := &Error{
		Kind:      kindForStatus(resp.StatusCode),
		Status:    resp.StatusCode,
		RequestID: requestID,
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		e.Message = firstNonEmpty(errResp.Error, errResp.Detail, errResp.Details)
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("backend returned status %d", resp.StatusCode)
	}
	return e
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// IsUnauthenticated reports whether err means the token is missing or invalid
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// IsNetwork reports whether err is a transport failure
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}
