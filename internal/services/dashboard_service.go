package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"smartrfq/desk/internal/backend"
	"smartrfq/desk/internal/models"
	"smartrfq/desk/internal/notify"
	"smartrfq/desk/internal/selection"
)

const (
	recentProjectsLimit = 4
	recentEmailsLimit   = 3
)

// IDashboardService builds the dashboard screen.
type IDashboardService interface {
	Load(ctx context.Context, c Caller, projectID string, filter models.EmailFilter) (*models.Dashboard, error)
}

type dashboardService struct {
	client    backend.IClient
	selection *selection.Store
	notifier  notify.Notifier
	jobs      IJobQueue
	now       func() time.Time
}

// NewDashboardService creates a new DashboardService. jobs and now may be nil;
// without a job queue the user sync runs inline.
func NewDashboardService(client backend.IClient, store *selection.Store, notifier notify.Notifier, jobs IJobQueue, now func() time.Time) IDashboardService {
	if now == nil {
		now = time.Now
	}
	return &dashboardService{client: client, selection: store, notifier: notifier, jobs: jobs, now: now}
}

// Load fans out to every dashboard source and waits for all of them. A failed
// source leaves its part of the dashboard empty and raises one notice; the
// others are not cancelled.
func (s *dashboardService) Load(ctx context.Context, c Caller, projectID string, filter models.EmailFilter) (*models.Dashboard, error) {
	if c.Token == "" {
		return nil, ErrNoToken
	}
	if projectID == "" {
		if selected, err := s.selection.Get(ctx, c.Scope()); err == nil {
			projectID = selected
		} else {
			log.Printf("Dashboard: failed to read selection for %s: %v", c.UserID, err)
		}
	}
	if filter == "" {
		filter = models.EmailFilterAll
	}

	auth := c.Auth()
	dash := &models.Dashboard{
		Activity:       []models.ActivityView{},
		RecentProjects: []models.Project{},
		RecentEmails:   []models.EmailView{},
		ProjectID:      projectID,
		EmailFilter:    filter,
	}

	var (
		mu       sync.Mutex
		failures []error
		summary  *models.DashboardSummary
		emails   []models.EmailHistory
	)
	record := func(source string, err error) {
		log.Printf("Dashboard: %s failed for %s: %v", source, c.UserID, err)
		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		s.syncUser(ctx, c)
		return nil
	})
	g.Go(func() error {
		sum, err := s.client.DashboardSummary(ctx, auth, projectID)
		if err != nil {
			record("summary", err)
			return nil
		}
		summary = sum
		return nil
	})
	g.Go(func() error {
		page, err := s.client.ListConversations(ctx, auth, models.ConversationQuery{Status: models.ConversationOpen, Page: 1, PageSize: 1})
		if err != nil {
			record("open conversations", err)
			return nil
		}
		dash.Stats.OpenConversations = page.Total
		return nil
	})
	g.Go(func() error {
		page, err := s.client.ListProjects(ctx, auth, models.ProjectQuery{Page: 1, PageSize: 1, Status: models.ProjectOpen})
		if err != nil {
			record("open projects", err)
			return nil
		}
		dash.Stats.OpenProjects = page.Total
		return nil
	})
	g.Go(func() error {
		page, err := s.client.ListProjects(ctx, auth, models.ProjectQuery{Page: 1, PageSize: recentProjectsLimit})
		if err != nil {
			record("recent projects", err)
			return nil
		}
		if page.Items != nil {
			dash.RecentProjects = page.Items
		}
		return nil
	})
	g.Go(func() error {
		list, err := s.recentEmails(ctx, auth, projectID)
		if err != nil {
			record("recent emails", err)
			return nil
		}
		emails = list
		return nil
	})
	g.Wait()

	if summary != nil {
		dash.Stats.Projects = summary.ProjectCount
		dash.Stats.Items = summary.ItemCount
		dash.Stats.Suppliers = summary.SupplierCount
		dash.Stats.Conversations = summary.ConversationCount
		now := s.now()
		for _, a := range summary.RecentActivity {
			kind := models.ParseActivityKind(a.Type)
			dash.Activity = append(dash.Activity, models.ActivityView{
				Kind:        kind,
				Style:       kind.Style(),
				Title:       a.Title,
				Description: a.Description,
				TimeAgo:     TimeAgo(now, a.Timestamp),
			})
		}
	}
	for _, e := range models.FilterEmails(emails, filter) {
		dash.RecentEmails = append(dash.RecentEmails, models.NewEmailView(e))
	}

	if len(failures) > 0 {
		for _, err := range failures {
			if errors.Is(err, ErrNoToken) {
				return nil, ErrNoToken
			}
		}
		s.notifier.Notify(ctx, c.Key(), notify.Error("Failed to fetch dashboard data", backend.Detail(failures[0], "Please try again later")))
	}
	return dash, nil
}

// syncUser runs on every dashboard load. Its failures never reach the user.
func (s *dashboardService) syncUser(ctx context.Context, c Caller) {
	if s.jobs != nil {
		if err := s.jobs.EnqueueUserSync(ctx, c); err != nil {
			log.Printf("Dashboard: failed to enqueue user sync for %s: %v", c.UserID, err)
		}
		return
	}
	if err := s.client.SyncUser(ctx, c.Auth()); err != nil {
		log.Printf("Dashboard: user sync for %s failed: %v", c.UserID, err)
	}
}

// recentEmails reads the history of projectID, or of the first project when
// none is given.
func (s *dashboardService) recentEmails(ctx context.Context, auth backend.Auth, projectID string) ([]models.EmailHistory, error) {
	if projectID == "" {
		page, err := s.client.ListProjects(ctx, auth, models.ProjectQuery{Page: 1, PageSize: 1})
		if err != nil {
			return nil, err
		}
		if len(page.Items) == 0 {
			return nil, nil
		}
		projectID = page.Items[0].ID
	}
	return s.client.EmailHistory(ctx, auth, projectID, recentEmailsLimit)
}
