package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNoToken is returned before any I/O when the caller has no bearer token.
	ErrNoToken = errors.New("no auth token available")
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("resource not found")
)

// APIError is a non-2xx response from the RFQ backend.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
}

// Is makes 404 responses match ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// newAPIError extracts a message from body: the JSON "detail" field, else the
// raw text, else fallback.
func newAPIError(status int, body []byte, fallback string) *APIError {
	detail := fallback
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	text := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := detailText(payload.Detail); msg != "" {
			detail = msg
		}
	} else if text != "" {
		detail = text
	}
	return &APIError{Status: status, Detail: detail}
}

// detailText accepts a string detail or FastAPI style validation lists.
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// Detail returns the user-facing message for err: the backend detail when err
// wraps an APIError, else fallback.
func Detail(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if errors.Is(err, ErrNoToken) {
		return "Authentication required"
	}
	return fallback
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
