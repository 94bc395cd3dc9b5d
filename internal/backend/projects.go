package backend

import (
	"context"
	"net/http"
	"net/url"

	"smartrfq/desk/internal/models"
)

func (c *Client) ListProjects(ctx context.Context, auth Auth, q models.ProjectQuery) (*models.Page[models.Project], error) {
	query := pageQuery(q.Page, q.PageSize)
	if q.Status != "" {
		query.Set("status", string(q.Status))
	}
	var page models.Page[models.Project]
	if err := c.doJSON(ctx, auth, http.MethodGet, "/projects", query, nil, &page, "Failed to fetch projects"); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetProject(ctx context.Context, auth Auth, id string) (*models.Project, error) {
	var project models.Project
	if err := c.doJSON(ctx, auth, http.MethodGet, "/projects/"+url.PathEscape(id), nil, nil, &project, "Failed to fetch project"); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) CreateProject(ctx context.Context, auth Auth, in models.ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := c.doJSON(ctx, auth, http.MethodPost, "/projects", nil, in, &project, "Failed to create project"); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) UpdateProject(ctx context.Context, auth Auth, id string, in models.ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := c.doJSON(ctx, auth, http.MethodPut, "/projects/"+url.PathEscape(id), nil, in, &project, "Failed to update project"); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) DeleteProject(ctx context.Context, auth Auth, id string) error {
	return c.doJSON(ctx, auth, http.MethodDelete, "/projects/"+url.PathEscape(id), nil, nil, nil, "Failed to delete project")
}
