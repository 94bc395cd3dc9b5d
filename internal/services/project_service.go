package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"smartrfq/desk/internal/backend"
	"smartrfq/desk/internal/models"
	"smartrfq/desk/internal/notify"
	"smartrfq/desk/internal/selection"
)

const (
	defaultProjectPageSize = 10
	selectorPageSize       = 100
)

// ProjectListQuery carries the projects screen filters.
type ProjectListQuery struct {
	Page     int
	PageSize int
	Status   models.ProjectStatus
	Search   string
}

// ProjectListing is the projects screen: one page of projects after the
// client-side search filter.
type ProjectListing struct {
	Projects   []models.Project     `json:"projects"`
	Pagination models.Pagination    `json:"pagination"`
	Status     models.ProjectStatus `json:"status,omitempty"`
	Search     string               `json:"search,omitempty"`
}

// ProjectSelector is the global project picker with the reconciled selection.
type ProjectSelector struct {
	Projects          []models.Project `json:"projects"`
	SelectedProjectID string           `json:"selected_project_id"`
}

// IProjectService defines project CRUD operations.
type IProjectService interface {
	List(ctx context.Context, c Caller, q ProjectListQuery) (*ProjectListing, error)
	Create(ctx context.Context, c Caller, in models.ProjectInput, q ProjectListQuery) (*ProjectListing, error)
	Update(ctx context.Context, c Caller, id string, in models.ProjectInput, q ProjectListQuery) (*ProjectListing, error)
	Delete(ctx context.Context, c Caller, id string, q ProjectListQuery) (*ProjectListing, error)
	Detail(ctx context.Context, c Caller, id string) (*models.ProjectDetail, error)
	Selector(ctx context.Context, c Caller) (*ProjectSelector, error)
}

// projectService implements IProjectService.
type projectService struct {
	client    backend.IClient
	selection *selection.Store
	notifier  notify.Notifier
}

// NewProjectService creates a new ProjectService.
func NewProjectService(client backend.IClient, store *selection.Store, notifier notify.Notifier) IProjectService {
	return &projectService{client: client, selection: store, notifier: notifier}
}

func (q ProjectListQuery) normalized() ProjectListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultProjectPageSize
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

func (s *projectService) List(ctx context.Context, c Caller, q ProjectListQuery) (*ProjectListing, error) {
	q = q.normalized()
	if q.Status != "" && !q.Status.Valid() {
		return nil, fmt.Errorf("unknown project status %q", q.Status)
	}
	page, err := s.client.ListProjects(ctx, c.Auth(), models.ProjectQuery{Page: q.Page, PageSize: q.PageSize, Status: q.Status})
	if err != nil {
		s.fail(ctx, c, "Failed to fetch projects", err)
		return nil, err
	}
	listing := &ProjectListing{
		Projects:   make([]models.Project, 0, len(page.Items)),
		Pagination: models.PaginationOf(page),
		Status:     q.Status,
		Search:     q.Search,
	}
	for _, p := range page.Items {
		if p.Matches(q.Search) {
			listing.Projects = append(listing.Projects, p)
		}
	}
	return listing, nil
}

func (s *projectService) Create(ctx context.Context, c Caller, in models.ProjectInput, q ProjectListQuery) (*ProjectListing, error) {
	if err := validateProjectInput(in); err != nil {
		return nil, err
	}
	project, err := s.client.CreateProject(ctx, c.Auth(), in)
	if err != nil {
		s.fail(ctx, c, "Failed to create project", err)
		return nil, err
	}
	log.Printf("Project %s created by %s", project.ID, c.UserID)
	s.notifier.Notify(ctx, c.Key(), notify.Success("Project created", fmt.Sprintf("Project %q has been created", project.Name)))
	return s.List(ctx, c, q)
}

func (s *projectService) Update(ctx context.Context, c Caller, id string, in models.ProjectInput, q ProjectListQuery) (*ProjectListing, error) {
	if err := validateProjectInput(in); err != nil {
		return nil, err
	}
	project, err := s.client.UpdateProject(ctx, c.Auth(), id, in)
	if err != nil {
		s.fail(ctx, c, "Failed to update project", err)
		return nil, err
	}
	s.notifier.Notify(ctx, c.Key(), notify.Success("Project updated", fmt.Sprintf("Project %q has been updated", project.Name)))
	return s.List(ctx, c, q)
}

func (s *projectService) Delete(ctx context.Context, c Caller, id string, q ProjectListQuery) (*ProjectListing, error) {
	if err := s.client.DeleteProject(ctx, c.Auth(), id); err != nil {
		s.fail(ctx, c, "Failed to delete project", err)
		return nil, err
	}
	if current, _ := s.selection.Get(ctx, c.Scope()); current == id {
		if err := s.selection.Clear(ctx, c.Scope()); err != nil {
			log.Printf("Failed to clear selection after deleting project %s: %v", id, err)
		}
	}
	s.notifier.Notify(ctx, c.Key(), notify.Success("Project deleted", ""))
	return s.List(ctx, c, q)
}

// Detail loads the project with its files and items concurrently. Failures of
// the files or items calls leave those lists empty.
func (s *projectService) Detail(ctx context.Context, c Caller, id string) (*models.ProjectDetail, error) {
	detail := &models.ProjectDetail{Files: []models.RfqFile{}, Items: []models.RfqItem{}}
	auth := c.Auth()

	var g errgroup.Group
	g.Go(func() error {
		project, err := s.client.GetProject(ctx, auth, id)
		if err != nil {
			return err
		}
		detail.Project = project
		return nil
	})
	g.Go(func() error {
		files, err := s.client.ListFiles(ctx, auth, id)
		if err != nil {
			log.Printf("Project detail %s: failed to fetch files: %v", id, err)
			return nil
		}
		detail.Files = files
		return nil
	})
	g.Go(func() error {
		items, err := s.client.ListItems(ctx, auth, id)
		if err != nil {
			log.Printf("Project detail %s: failed to fetch items: %v", id, err)
			return nil
		}
		detail.Items = items
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.notifier.Notify(ctx, c.Key(), notify.Error("Project not found", ""))
			return nil, ErrNotFound
		}
		s.fail(ctx, c, "Failed to fetch project", err)
		return nil, err
	}
	return detail, nil
}

// Selector fetches the project picker list and reconciles the stored selection
// against it.
func (s *projectService) Selector(ctx context.Context, c Caller) (*ProjectSelector, error) {
	page, err := s.client.ListProjects(ctx, c.Auth(), models.ProjectQuery{Page: 1, PageSize: selectorPageSize})
	if err != nil {
		s.fail(ctx, c, "Failed to fetch projects", err)
		return nil, err
	}
	selected, err := s.selection.Reconcile(ctx, c.Scope(), page.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile selected project: %w", err)
	}
	projects := page.Items
	if projects == nil {
		projects = []models.Project{}
	}
	return &ProjectSelector{Projects: projects, SelectedProjectID: selected}, nil
}

func (s *projectService) fail(ctx context.Context, c Caller, title string, err error) {
	log.Printf("%s for %s: %v", title, c.UserID, err)
	s.notifier.Notify(ctx, c.Key(), notify.Error(title, backend.Detail(err, title)))
}

func validateProjectInput(in models.ProjectInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Fields: []string{"name"}}
	}
	if in.Status != "" && !in.Status.Valid() {
		return fmt.Errorf("unknown project status %q", in.Status)
	}
	return nil
}
