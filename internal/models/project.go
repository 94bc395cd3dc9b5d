package models

import (
	"strings"
	"time"
)

// ProjectStatus is the lifecycle state of a project as reported by the backend.
type ProjectStatus string

const (
	ProjectDraft    ProjectStatus = "draft"
	ProjectOpen     ProjectStatus = "open"
	ProjectClosed   ProjectStatus = "closed"
	ProjectArchived ProjectStatus = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectDraft, ProjectOpen, ProjectClosed, ProjectArchived:
		return true
	}
	return false
}

// Label is the human readable badge text for the status.
func (s ProjectStatus) Label() string {
	switch s {
	case ProjectOpen:
		return "In progress"
	case ProjectClosed:
		return "Closed"
	case ProjectArchived:
		return "Archived"
	case ProjectDraft:
		return "Draft"
	}
	return string(s)
}

// Project represents an RFQ project.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	PartsCount  *int          `json:"parts_count,omitempty"`
}

// AllowsSelection reports whether the project may become the selected project.
func (p *Project) AllowsSelection() bool {
	return p.Status != ProjectArchived
}

// AllowsMutation reports whether uploads, inquiry generation and item
// mutations are permitted for the project.
func (p *Project) AllowsMutation() bool {
	return p.Status != ProjectClosed && p.Status != ProjectArchived
}

// Matches reports whether the project name or description contains term,
// ignoring case. An empty term matches everything.
func (p *Project) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), term) {
		return true
	}
	return p.Description != nil && strings.Contains(strings.ToLower(*p.Description), term)
}

// ProjectInput is the create/update payload for a project.
type ProjectInput struct {
	Name        string        `json:"name" binding:"required"`
	Description *string       `json:"description,omitempty"`
	Status      ProjectStatus `json:"status,omitempty"`
}

// ProjectQuery carries list parameters for projects.
type ProjectQuery struct {
	Page     int
	PageSize int
	Status   ProjectStatus
}

// ProjectDetail is the project detail screen: overview, files and items.
type ProjectDetail struct {
	Project *Project  `json:"project"`
	Files   []RfqFile `json:"files"`
	Items   []RfqItem `json:"items"`
}
