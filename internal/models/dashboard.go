package models

import "time"

// ActivityKind is the closed set of activity types shown in the dashboard
// feed.
type ActivityKind string

const (
	ActivityEmailSent       ActivityKind = "email_sent"
	ActivityEmailFailed     ActivityKind = "email_failed"
	ActivityProjectCreated  ActivityKind = "project_created"
	ActivityProjectArchived ActivityKind = "project_archived"
	ActivityQuoteReceived   ActivityKind = "quote_received"
	ActivityFileUploaded    ActivityKind = "file_uploaded"
	ActivityFileParsed      ActivityKind = "file_parsed"
	ActivitySupplierAdded   ActivityKind = "supplier_added"
	ActivityOther           ActivityKind = "other"
)

// ParseActivityKind maps the raw backend type onto a known kind.
func ParseActivityKind(raw string) ActivityKind {
	switch k := ActivityKind(raw); k {
	case ActivityEmailSent, ActivityEmailFailed, ActivityProjectCreated, ActivityProjectArchived,
		ActivityQuoteReceived, ActivityFileUploaded, ActivityFileParsed, ActivitySupplierAdded:
		return k
	}
	return ActivityOther
}

// ActivityStyle is the icon and colour category of an activity.
type ActivityStyle struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// Style returns the presentation category of k.
func (k ActivityKind) Style() ActivityStyle {
	switch k {
	case ActivityEmailSent:
		return ActivityStyle{Icon: "send", Color: "blue"}
	case ActivityEmailFailed:
		return ActivityStyle{Icon: "alert-circle", Color: "red"}
	case ActivityProjectCreated:
		return ActivityStyle{Icon: "check-circle", Color: "green"}
	case ActivityProjectArchived:
		return ActivityStyle{Icon: "archive", Color: "yellow"}
	case ActivityQuoteReceived:
		return ActivityStyle{Icon: "inbox", Color: "purple"}
	case ActivityFileUploaded:
		return ActivityStyle{Icon: "file-up", Color: "blue"}
	case ActivityFileParsed:
		return ActivityStyle{Icon: "file-text", Color: "green"}
	case ActivitySupplierAdded:
		return ActivityStyle{Icon: "star", Color: "purple"}
	case ActivityOther:
		return ActivityStyle{Icon: "clock", Color: "muted"}
	default:
		return ActivityStyle{Icon: "clock", Color: "muted"}
	}
}

// Activity is one entry of the backend's recent activity feed.
type Activity struct {
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// DashboardSummary is the aggregated summary returned by the backend.
type DashboardSummary struct {
	ProjectCount      int        `json:"project_count"`
	ItemCount         int        `json:"item_count"`
	SupplierCount     int        `json:"supplier_count"`
	ConversationCount int        `json:"conversation_count"`
	RecentActivity    []Activity `json:"recent_activity"`
}

// ActivityView is a classified feed entry ready for display.
type ActivityView struct {
	Kind        ActivityKind  `json:"kind"`
	Style       ActivityStyle `json:"style"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	TimeAgo     string        `json:"time_ago"`
}

// DashboardStats merges the summary counts with the open-conversation count.
type DashboardStats struct {
	Projects          int `json:"projects"`
	Items             int `json:"items"`
	Suppliers         int `json:"suppliers"`
	Conversations     int `json:"conversations"`
	OpenConversations int `json:"open_conversations"`
	OpenProjects      int `json:"open_projects"`
}

// Dashboard is the dashboard screen.
type Dashboard struct {
	Stats          DashboardStats `json:"stats"`
	Activity       []ActivityView `json:"activity"`
	RecentProjects []Project      `json:"recent_projects"`
	RecentEmails   []EmailView    `json:"recent_emails"`
	ProjectID      string         `json:"project_id,omitempty"`
	EmailFilter    EmailFilter    `json:"email_filter"`
}
