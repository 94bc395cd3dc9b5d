package services

import (
	"smartrfq/desk/internal/backend"
	"smartrfq/desk/internal/selection"
)

// Caller is the authenticated user on whose behalf a service call runs.
type Caller struct {
	UserID string
	OrgID  string
	Token  string
}

// Auth returns the credentials forwarded to the RFQ backend.
func (c Caller) Auth() backend.Auth {
	return backend.Auth{Token: c.Token, OrgID: c.OrgID}
}

// Scope returns the selection scope of the caller.
func (c Caller) Scope() selection.Scope {
	return selection.Scope{UserID: c.UserID, OrgID: c.OrgID}
}

// Key identifies the caller's workspace, notice feed and locks.
func (c Caller) Key() string {
	return c.UserID + ":" + c.OrgID
}
