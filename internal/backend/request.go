package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// DefaultOrgHeader is the header carrying the organization id on backend calls.
const DefaultOrgHeader = "X-Org-Id"

// RequestOptions describes one backend call before it is bound to a URL.
type RequestOptions struct {
	Method string
	Header http.Header
	Body   []byte
}

// NewRequestOptions builds the options for a backend call using the default
// organization header.
func NewRequestOptions(method, token string, body any, orgID string) (RequestOptions, error) {
	return newRequestOptions(DefaultOrgHeader, method, token, body, orgID)
}

func newRequestOptions(orgHeader, method, token string, body any, orgID string) (RequestOptions, error) {
	opts := RequestOptions{
		Method: method,
		Header: http.Header{},
	}
	opts.Header.Set("Content-Type", "application/json")
	opts.Header.Set("Authorization", "Bearer "+token)
	if orgID != "" {
		opts.Header.Set(orgHeader, orgID)
	}
	if method == http.MethodGet || body == nil {
		return opts, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return RequestOptions{}, fmt.Errorf("failed to encode request body: %w", err)
	}
	opts.Body = data
	return opts, nil
}
