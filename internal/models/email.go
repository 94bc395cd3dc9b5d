package models

import (
	"strings"
	"time"
)

// EmailStatus is the delivery result of an inquiry email.
type EmailStatus string

const (
	EmailSent   EmailStatus = "sent"
	EmailFailed EmailStatus = "failed"
)

// EmailHistory is a read-only record of a sent (or failed) inquiry email.
type EmailHistory struct {
	ID             string      `json:"id"`
	ProjectID      string      `json:"project_id"`
	ConversationID *string     `json:"conversation_id,omitempty"`
	ToEmail        string      `json:"to_email"`
	Subject        string      `json:"subject"`
	Content        *string     `json:"content,omitempty"`
	Status         EmailStatus `json:"status"`
	SentAt         *time.Time  `json:"sent_at,omitempty"`
	RfqItems       []string    `json:"rfq_items,omitempty"`
}

// EmailFilter selects a subset of the email history.
type EmailFilter string

const (
	EmailFilterAll    EmailFilter = "all"
	EmailFilterSent   EmailFilter = "sent"
	EmailFilterFailed EmailFilter = "fail"
)

// FilterEmails applies f to emails; unknown filters behave like "all".
func FilterEmails(emails []EmailHistory, f EmailFilter) []EmailHistory {
	if f != EmailFilterSent && f != EmailFilterFailed {
		return emails
	}
	out := make([]EmailHistory, 0, len(emails))
	for _, e := range emails {
		if (e.Status == EmailSent) == (f == EmailFilterSent) {
			out = append(out, e)
		}
	}
	return out
}

// EmailPreviewLength is the content length above which an email renders
// collapsed.
const EmailPreviewLength = 100

// EmailView is an email list item with its collapse affordance.
type EmailView struct {
	EmailHistory
	Collapsible bool   `json:"collapsible"`
	Preview     string `json:"preview"`
}

// NewEmailView builds the list item for e.
func NewEmailView(e EmailHistory) EmailView {
	v := EmailView{EmailHistory: e}
	if e.Content == nil {
		return v
	}
	content := []rune(*e.Content)
	if len(content) > EmailPreviewLength {
		v.Collapsible = true
		v.Preview = string(content[:EmailPreviewLength])
	} else {
		v.Preview = *e.Content
	}
	return v
}

// TemplateRequest is the body of a generate-template call. ItemIDs is never
// nil when marshalled.
type TemplateRequest struct {
	ItemIDs []string `json:"item_ids"`
}

// NewTemplateRequest builds a request whose ItemIDs is an empty array when no
// items are given.
func NewTemplateRequest(itemIDs []string) TemplateRequest {
	ids := make([]string, 0, len(itemIDs))
	ids = append(ids, itemIDs...)
	return TemplateRequest{ItemIDs: ids}
}

// EmailTemplate is a draft inquiry generated by the backend.
type EmailTemplate struct {
	ToEmail        string  `json:"to_email"`
	Subject        string  `json:"subject"`
	Content        string  `json:"content"`
	ConversationID *string `json:"conversation_id,omitempty"`
	SupplierID     string  `json:"supplier_id,omitempty"`
}

// EmailDraft is the composer form.
type EmailDraft struct {
	To             string   `json:"to"`
	Subject        string   `json:"subject"`
	Content        string   `json:"content"`
	ConversationID string   `json:"conversation_id,omitempty"`
	SupplierID     string   `json:"supplier_id,omitempty"`
	ItemIDs        []string `json:"item_ids,omitempty"`
}

// Missing lists the required composer fields that are blank.
func (d EmailDraft) Missing() []string {
	var missing []string
	if strings.TrimSpace(d.To) == "" {
		missing = append(missing, "to")
	}
	if strings.TrimSpace(d.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(d.Content) == "" {
		missing = append(missing, "content")
	}
	return missing
}

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// SendEmailPayload is the JSON part of the multipart send request.
type SendEmailPayload struct {
	ToEmail        string   `json:"to_email"`
	Subject        string   `json:"subject"`
	Content        string   `json:"content"`
	ConversationID *string  `json:"conversation_id,omitempty"`
	SupplierID     *string  `json:"supplier_id,omitempty"`
	ItemIDs        []string `json:"item_ids"`
}

// Payload converts the draft into the send payload.
func (d EmailDraft) Payload() SendEmailPayload {
	p := SendEmailPayload{
		ToEmail: strings.TrimSpace(d.To),
		Subject: d.Subject,
		Content: d.Content,
		ItemIDs: NewTemplateRequest(d.ItemIDs).ItemIDs,
	}
	if d.ConversationID != "" {
		id := d.ConversationID
		p.ConversationID = &id
	}
	if d.SupplierID != "" {
		id := d.SupplierID
		p.SupplierID = &id
	}
	return p
}

// SendResult is the backend response to a send call.
type SendResult struct {
	ID             string      `json:"id,omitempty"`
	ConversationID *string     `json:"conversation_id,omitempty"`
	Status         EmailStatus `json:"status,omitempty"`
}
