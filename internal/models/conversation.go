package models

import "time"

// ConversationStatus is the state of a supplier conversation.
type ConversationStatus string

const (
	ConversationOpen     ConversationStatus = "open"
	ConversationClosed   ConversationStatus = "closed"
	ConversationArchived ConversationStatus = "archived"
)

// ConversationAction is one of the status transitions exposed by the backend.
type ConversationAction string

const (
	ActionClose   ConversationAction = "close"
	ActionArchive ConversationAction = "archive"
	ActionReopen  ConversationAction = "reopen"
)

// Valid reports whether a is a known transition.
func (a ConversationAction) Valid() bool {
	switch a {
	case ActionClose, ActionArchive, ActionReopen:
		return true
	}
	return false
}

// RfqConversation is a supplier-scoped inquiry thread.
type RfqConversation struct {
	ID            string             `json:"id"`
	ProjectID     string             `json:"project_id"`
	SupplierID    string             `json:"supplier_id"`
	Status        ConversationStatus `json:"status"`
	LastActivity  time.Time          `json:"last_activity"`
	CreatedAt     time.Time          `json:"created_at"`
	ProjectName   *string            `json:"project_name,omitempty"`
	SupplierName  *string            `json:"supplier_name,omitempty"`
	SupplierEmail *string            `json:"supplier_email,omitempty"`
}

// ConversationQuery filters the conversation list.
type ConversationQuery struct {
	ProjectID string
	Status    ConversationStatus
	Page      int
	PageSize  int
}

// ConversationDetail is the conversation pane of the emails tab.
type ConversationDetail struct {
	Conversation *RfqConversation `json:"conversation,omitempty"`
	Emails       []EmailHistory   `json:"emails"`
	Items        []RfqItem        `json:"items"`
	RfqStatus    map[string]any   `json:"rfq_status,omitempty"`
}
