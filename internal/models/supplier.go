package models

import (
	"strings"
	"time"
)

// Supplier is a vendor that can receive inquiry emails.
type Supplier struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContactName *string   `json:"contact_name,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Address     *string   `json:"address,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Matches reports whether term occurs in the name, contact, email or phone.
func (s *Supplier) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(s.Name), term) {
		return true
	}
	for _, f := range []*string{s.ContactName, s.Email, s.Phone} {
		if f != nil && strings.Contains(strings.ToLower(*f), term) {
			return true
		}
	}
	return false
}

// SupplierInput is the create/update payload sent to the backend. Optional
// fields are sent as null when blank.
type SupplierInput struct {
	Name        string   `json:"name"`
	ContactName *string  `json:"contact_name"`
	Email       *string  `json:"email"`
	Phone       *string  `json:"phone"`
	Address     *string  `json:"address"`
	Tags        []string `json:"tags"`
}

// SupplierForm is the supplier dialog as filled in by the user; Tags is a
// comma separated string.
type SupplierForm struct {
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Tags        string `json:"tags"`
}

// Input converts the form into the backend payload.
func (f SupplierForm) Input() SupplierInput {
	return SupplierInput{
		Name:        strings.TrimSpace(f.Name),
		ContactName: nullable(f.ContactName),
		Email:       nullable(f.Email),
		Phone:       nullable(f.Phone),
		Address:     nullable(f.Address),
		Tags:        SplitTags(f.Tags),
	}
}

// SplitTags splits a comma separated tag string, trimming blanks. It returns
// nil when no tag remains.
func SplitTags(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
