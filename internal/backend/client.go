package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"smartrfq/desk/internal/config"
	"smartrfq/desk/internal/models"
)

// Auth identifies the caller on whose behalf the backend is called.
type Auth struct {
	Token string
	OrgID string
}

// Download is a streamed file from the backend. Callers must close Body.
type Download struct {
	Body               io.ReadCloser
	ContentType        string
	ContentDisposition string
	ContentLength      int64
}

// IClient is the RFQ backend surface used by the services.
type IClient interface {
	ListProjects(ctx context.Context, auth Auth, q models.ProjectQuery) (*models.Page[models.Project], error)
	GetProject(ctx context.Context, auth Auth, id string) (*models.Project, error)
	CreateProject(ctx context.Context, auth Auth, in models.ProjectInput) (*models.Project, error)
	UpdateProject(ctx context.Context, auth Auth, id string, in models.ProjectInput) (*models.Project, error)
	DeleteProject(ctx context.Context, auth Auth, id string) error

	ListFiles(ctx context.Context, auth Auth, projectID string) ([]models.RfqFile, error)
	UploadFile(ctx context.Context, auth Auth, projectID, filename string, content io.Reader) (*models.RfqFile, error)
	ParseFile(ctx context.Context, auth Auth, projectID, fileID string) (*models.ParseResult, error)
	DownloadFile(ctx context.Context, auth Auth, projectID, fileID string) (*Download, error)
	ListItems(ctx context.Context, auth Auth, projectID string) ([]models.RfqItem, error)
	UpdateItem(ctx context.Context, auth Auth, itemID string, patch map[string]any) (*models.RfqItem, error)
	BatchDeleteItems(ctx context.Context, auth Auth, projectID string, itemIDs []string) (*models.BatchDeleteResult, error)

	ListSuppliers(ctx context.Context, auth Auth) ([]models.Supplier, error)
	CreateSupplier(ctx context.Context, auth Auth, in models.SupplierInput) (*models.Supplier, error)
	UpdateSupplier(ctx context.Context, auth Auth, id string, in models.SupplierInput) (*models.Supplier, error)
	DeleteSupplier(ctx context.Context, auth Auth, id string) error

	GenerateTemplate(ctx context.Context, auth Auth, projectID, supplierID string, itemIDs []string) (*models.EmailTemplate, error)
	ListConversations(ctx context.Context, auth Auth, q models.ConversationQuery) (*models.Page[models.RfqConversation], error)
	ListProjectConversations(ctx context.Context, auth Auth, projectID string, page, pageSize int) (*models.Page[models.RfqConversation], error)
	ConversationEmails(ctx context.Context, auth Auth, conversationID string) ([]models.EmailHistory, error)
	ConversationItems(ctx context.Context, auth Auth, conversationID string) ([]models.RfqItem, error)
	ConversationRfqStatus(ctx context.Context, auth Auth, conversationID string) (map[string]any, error)
	SetConversationStatus(ctx context.Context, auth Auth, conversationID string, action models.ConversationAction) error
	SendConversationEmail(ctx context.Context, auth Auth, conversationID string, payload models.SendEmailPayload) (*models.SendResult, error)
	SendProjectEmail(ctx context.Context, auth Auth, projectID string, payload models.SendEmailPayload, attachments []models.Attachment) (*models.SendResult, error)
	EmailHistory(ctx context.Context, auth Auth, projectID string, limit int) ([]models.EmailHistory, error)

	DashboardSummary(ctx context.Context, auth Auth, projectID string) (*models.DashboardSummary, error)
	SyncUser(ctx context.Context, auth Auth) error
}

// Client talks to the external RFQ REST backend.
type Client struct {
	baseURL    string
	orgHeader  string
	httpClient *http.Client
}

// NewClient creates a backend client from configuration.
func NewClient(cfg *config.Config) *Client {
	return NewClientWithHTTP(cfg.BackendBaseURL, cfg.OrgHeader, &http.Client{Timeout: cfg.BackendTimeout})
}

// NewClientWithHTTP creates a backend client around an existing http.Client.
func NewClientWithHTTP(baseURL, orgHeader string, httpClient *http.Client) *Client {
	if orgHeader == "" {
		orgHeader = DefaultOrgHeader
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		orgHeader:  orgHeader,
		httpClient: httpClient,
	}
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// doJSON performs a JSON request once and decodes a 2xx response into out
// (if not nil). Failures are terminal for the user action.
func (c *Client) doJSON(ctx context.Context, auth Auth, method, path string, query url.Values, body, out any, fallback string) error {
	if auth.Token == "" {
		return ErrNoToken
	}
	opts, err := newRequestOptions(c.orgHeader, method, auth.Token, body, auth.OrgID)
	if err != nil {
		return err
	}
	var reader io.Reader
	if opts.Body != nil {
		reader = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("failed to create backend request: %w", err)
	}
	req.Header = opts.Header
	return c.send(req, out, fallback)
}

// doMultipart posts a multipart form built by write.
func (c *Client) doMultipart(ctx context.Context, auth Auth, path string, write func(*multipart.Writer) error, out any, fallback string) error {
	if auth.Token == "" {
		return ErrNoToken
	}
	opts, err := newRequestOptions(c.orgHeader, http.MethodPost, auth.Token, nil, auth.OrgID)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := write(mw); err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), &buf)
	if err != nil {
		return fmt.Errorf("failed to create backend request: %w", err)
	}
	req.Header = opts.Header
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, out, fallback)
}

func (c *Client) send(req *http.Request, out any, fallback string) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Backend %s %s failed: %v", req.Method, req.URL.Path, err)
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read backend response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, body, fallback)
		log.Printf("Backend %s %s returned %d: %s", req.Method, req.URL.Path, resp.StatusCode, apiErr.Detail)
		return apiErr
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

// stream performs a GET and hands the open body to the caller.
func (c *Client) stream(ctx context.Context, auth Auth, path, fallback string) (*Download, error) {
	if auth.Token == "" {
		return nil, ErrNoToken
	}
	opts, err := newRequestOptions(c.orgHeader, http.MethodGet, auth.Token, nil, auth.OrgID)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, nil), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend request: %w", err)
	}
	req.Header = opts.Header
	req.Header.Del("Content-Type")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fallback, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, newAPIError(resp.StatusCode, body, fallback)
	}
	return &Download{
		Body:               resp.Body,
		ContentType:        resp.Header.Get("Content-Type"),
		ContentDisposition: resp.Header.Get("Content-Disposition"),
		ContentLength:      resp.ContentLength,
	}, nil
}

func pageQuery(page, pageSize int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if pageSize > 0 {
		q.Set("page_size", fmt.Sprint(pageSize))
	}
	return q
}
