package backend

import (
	"context"
	"net/http"
	"net/url"

	"smartrfq/desk/internal/models"
)

// DashboardSummary fetches /dashboard/summary/{orgId}/{projectId|all}.
func (c *Client) DashboardSummary(ctx context.Context, auth Auth, projectID string) (*models.DashboardSummary, error) {
	if projectID == "" {
		projectID = "all"
	}
	org := auth.OrgID
	if org == "" {
		org = "default"
	}
	path := "/dashboard/summary/" + url.PathEscape(org) + "/" + url.PathEscape(projectID)
	var summary models.DashboardSummary
	if err := c.doJSON(ctx, auth, http.MethodGet, path, nil, nil, &summary, "Failed to fetch dashboard data"); err != nil {
		return nil, err
	}
	return &summary, nil
}

// SyncUser upserts the authenticated identity on the backend.
func (c *Client) SyncUser(ctx context.Context, auth Auth) error {
	return c.doJSON(ctx, auth, http.MethodPost, "/sync-user", nil, struct{}{}, nil, "Failed to sync user")
}
