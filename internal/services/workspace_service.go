package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"smartrfq/desk/internal/backend"
	"smartrfq/desk/internal/models"
	"smartrfq/desk/internal/notify"
	"smartrfq/desk/internal/selection"
)

// DeleteConfirmText must be typed verbatim to enable item deletion.
const DeleteConfirmText = "delete"

// DeleteConfirmed reports whether the confirmation text enables deletion.
func DeleteConfirmed(text string) bool {
	return text == DeleteConfirmText
}

// IWorkspaceService drives the RFQ workspace: upload, parse, item editing,
// inquiry generation, sending and conversation management.
type IWorkspaceService interface {
	State(ctx context.Context, c Caller) (*WorkspaceView, error)
	SetTab(ctx context.Context, c Caller, tab Tab) (*WorkspaceView, error)
	SelectProject(ctx context.Context, c Caller, projectID string) (*WorkspaceView, error)
	Refresh(ctx context.Context, c Caller) (*WorkspaceView, error)

	Upload(ctx context.Context, c Caller, filename string, content io.Reader, parseNow bool) (*WorkspaceView, error)
	ConfirmParse(ctx context.Context, c Caller, accept bool) (*WorkspaceView, error)
	Parse(ctx context.Context, c Caller, fileID string) (*WorkspaceView, error)
	DownloadFile(ctx context.Context, c Caller, fileID string) (*backend.Download, error)

	PreviewItemEdit(ctx context.Context, c Caller, itemID string, edit ItemEdit) (*ItemDiff, error)
	SaveItemEdit(ctx context.Context, c Caller, itemID string, edit ItemEdit) (*WorkspaceView, error)
	ToggleItem(ctx context.Context, c Caller, itemID string) (*WorkspaceView, error)
	SelectAllItems(ctx context.Context, c Caller) (*WorkspaceView, error)
	ClearItemSelection(ctx context.Context, c Caller) (*WorkspaceView, error)
	DeleteSelected(ctx context.Context, c Caller, confirmText string) (*WorkspaceView, error)
	ExportItems(ctx context.Context, c Caller) (*Export, error)

	OpenInquiry(ctx context.Context, c Caller) (*WorkspaceView, error)
	CloseInquiry(ctx context.Context, c Caller) (*WorkspaceView, error)
	GenerateInquiry(ctx context.Context, c Caller, supplierID string) (*WorkspaceView, error)
	PrepareReply(ctx context.Context, c Caller, emailID string) (*WorkspaceView, error)
	PrepareForward(ctx context.Context, c Caller, emailID string) (*WorkspaceView, error)
	DiscardDraft(ctx context.Context, c Caller) (*WorkspaceView, error)
	SendEmail(ctx context.Context, c Caller, draft models.EmailDraft, attachments []models.Attachment) (*WorkspaceView, error)

	FilterConversations(ctx context.Context, c Caller, status models.ConversationStatus) (*WorkspaceView, error)
	SetConversationStatus(ctx context.Context, c Caller, conversationID string, action models.ConversationAction) (*WorkspaceView, error)
	OpenConversation(ctx context.Context, c Caller, conversationID string) (*WorkspaceView, error)
	CloseConversation(ctx context.Context, c Caller) (*WorkspaceView, error)
}

// workspaceService implements IWorkspaceService.
type workspaceService struct {
	client    backend.IClient
	sessions  ISessionStore
	selection *selection.Store
	notifier  notify.Notifier
	jobs      IJobQueue
	locks     *keyedMutex
	scopes    *loadScopes
}

// NewWorkspaceService creates a new WorkspaceService. jobs may be nil, in
// which case sent attachments are not archived.
func NewWorkspaceService(client backend.IClient, sessions ISessionStore, store *selection.Store, notifier notify.Notifier, jobs IJobQueue) IWorkspaceService {
	return &workspaceService{
		client:    client,
		sessions:  sessions,
		selection: store,
		notifier:  notifier,
		jobs:      jobs,
		locks:     newKeyedMutex(),
		scopes:    newLoadScopes(),
	}
}

// mutate runs fn on the caller's workspace under the caller lock and saves the
// result, including the changes fn made before failing.
func (s *workspaceService) mutate(ctx context.Context, c Caller, fn func(ws *Workspace) error) (*WorkspaceView, error) {
	unlock := s.locks.lock(c.Key())
	defer unlock()

	ws, err := s.sessions.Load(ctx, c.Key())
	if err != nil {
		return nil, err
	}
	fnErr := fn(ws)
	if err := s.sessions.Save(context.WithoutCancel(ctx), c.Key(), ws); err != nil {
		log.Printf("Workspace: failed to save state for %s: %v", c.Key(), err)
		if fnErr == nil {
			return nil, err
		}
	}
	return ws.View(), fnErr
}

func (s *workspaceService) notice(ctx context.Context, c Caller, n models.Notice) {
	if err := s.notifier.Notify(ctx, c.Key(), n); err != nil {
		log.Printf("Workspace: failed to deliver notice to %s: %v", c.Key(), err)
	}
}

// fail logs err and raises an error notice carrying the backend detail.
func (s *workspaceService) fail(ctx context.Context, c Caller, title string, err error) error {
	log.Printf("Workspace: %s for %s: %v", title, c.UserID, err)
	s.notice(ctx, c, notify.Error(title, backend.Detail(err, title)))
	return err
}

func (s *workspaceService) requireProject(ctx context.Context, c Caller, ws *Workspace) error {
	if ws.Project == nil {
		s.notice(ctx, c, notify.Error("No project selected", "Please select a project first"))
		return ErrNoProjectSelected
	}
	return nil
}

func (s *workspaceService) requireMutable(ctx context.Context, c Caller, ws *Workspace) error {
	if err := s.requireProject(ctx, c, ws); err != nil {
		return err
	}
	if !ws.Project.AllowsMutation() {
		s.notice(ctx, c, notify.Error("Project is locked",
			fmt.Sprintf("Project %q is %s; uploads, inquiries and item changes are disabled", ws.Project.Name, ws.Project.Status)))
		return ErrProjectLocked
	}
	return nil
}

// State returns the workspace, following selection changes made elsewhere
// (the global project picker or another tab).
func (s *workspaceService) State(ctx context.Context, c Caller) (*WorkspaceView, error) {
	ws, err := s.sessions.Load(ctx, c.Key())
	if err != nil {
		return nil, err
	}
	selected, err := s.selection.Get(ctx, c.Scope())
	if err != nil {
		log.Printf("Workspace: failed to read selection for %s: %v", c.Key(), err)
		return ws.View(), nil
	}
	if selected == ws.ProjectID() {
		return ws.View(), nil
	}
	if selected == "" {
		return s.mutate(ctx, c, func(ws *Workspace) error {
			ws.resetProject(nil)
			ws.Tab = TabProjects
			ws.LoadSeq++
			return nil
		})
	}
	return s.SelectProject(ctx, c, selected)
}

func (s *workspaceService) SetTab(ctx context.Context, c Caller, tab Tab) (*WorkspaceView, error) {
	if !tab.Valid() {
		return nil, ErrInvalidTab
	}
	return s.mutate(ctx, c, func(ws *Workspace) error {
		if tab != TabProjects {
			if err := s.requireProject(ctx, c, ws); err != nil {
				return err
			}
		}
		ws.Tab = tab
		if tab == TabEmails {
			s.refreshEmails(ctx, c, ws)
		}
		return nil
	})
}

// SelectProject makes projectID the active project. Archived projects are
// refused and leave the selection untouched.
func (s *workspaceService) SelectProject(ctx context.Context, c Caller, projectID string) (*WorkspaceView, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, &ValidationError{Fields: []string{"project_id"}}
	}
	project, err := s.client.GetProject(ctx, c.Auth(), projectID)
	if err != nil {
		return nil, s.fail(ctx, c, "Failed to select project", err)
	}
	if !project.AllowsSelection() {
		s.notice(ctx, c, notify.Error("Cannot select project", fmt.Sprintf("Project %q is archived", project.Name)))
		return nil, ErrProjectArchived
	}
	if err := s.selection.Set(ctx, c.Scope(), project.ID); err != nil {
		return nil, fmt.Errorf("failed to store selected project: %w", err)
	}

	var seq uint64
	if _, err := s.mutate(ctx, c, func(ws *Workspace) error {
		if ws.ProjectID() != project.ID {
			ws.resetProject(project)
		} else {
			ws.Project = project
		}
		if !ws.Tab.pastFiles() {
			ws.Tab = TabFiles
		}
		ws.LoadSeq++
		seq = ws.LoadSeq
		return nil
	}); err != nil {
		return nil, err
	}
	return s.loadProject(ctx, c, project.ID, seq)
}

func (s *workspaceService) Refresh(ctx context.Context, c Caller) (*WorkspaceView, error) {
	var (
		seq       uint64
		projectID string
	)
	view, err := s.mutate(ctx, c, func(ws *Workspace) error {
		if err := s.requireProject(ctx, c, ws); err != nil {
			return err
		}
		ws.LoadSeq++
		seq = ws.LoadSeq
		projectID = ws.ProjectID()
		return nil
	})
	if err != nil {
		return view, err
	}
	return s.loadProject(ctx, c, projectID, seq)
}

type projectData struct {
	project       *models.Project
	files         []models.RfqFile
	items         []models.RfqItem
	history       []models.EmailHistory
	conversations []models.RfqConversation
}

// loadProject fetches everything the workspace shows for projectID. A newer
// load for the same caller cancels this one, and results are only applied
// while seq is still the workspace's latest load.
func (s *workspaceService) loadProject(ctx context.Context, c Caller, projectID string, seq uint64) (*WorkspaceView, error) {
	lctx, release := s.scopes.begin(ctx, c.Key()+":project")
	defer release()

	ws, err := s.sessions.Load(ctx, c.Key())
	if err != nil {
		return nil, err
	}
	status := ws.ConversationStatus

	auth := c.Auth()
	var (
		data     projectData
		mu       sync.Mutex
		failures []error
	)
	record := func(what string, err error) {
		log.Printf("Workspace: loading %s of project %s failed: %v", what, projectID, err)
		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		p, err := s.client.GetProject(lctx, auth, projectID)
		if err != nil {
			record("project", err)
			return nil
		}
		data.project = p
		return nil
	})
	g.Go(func() error {
		files, err := s.client.ListFiles(lctx, auth, projectID)
		if err != nil {
			record("files", err)
			return nil
		}
		data.files = files
		return nil
	})
	g.Go(func() error {
		items, err := s.client.ListItems(lctx, auth, projectID)
		if err != nil {
			record("items", err)
			return nil
		}
		data.items = items
		return nil
	})
	g.Go(func() error {
		history, err := s.client.EmailHistory(lctx, auth, projectID, 100)
		if err != nil {
			record("email history", err)
			return nil
		}
		data.history = history
		return nil
	})
	g.Go(func() error {
		page, err := s.client.ListConversations(lctx, auth, models.ConversationQuery{ProjectID: projectID, Status: status, Page: 1, PageSize: 50})
		if err != nil {
			record("conversations", err)
			return nil
		}
		data.conversations = page.Items
		return nil
	})
	g.Wait()

	superseded := lctx.Err() != nil && ctx.Err() == nil
	return s.mutate(ctx, c, func(ws *Workspace) error {
		if superseded || ws.LoadSeq != seq || ws.ProjectID() != projectID {
			log.Printf("Workspace: discarding stale load %d of project %s for %s (current %d)", seq, projectID, c.Key(), ws.LoadSeq)
			return nil
		}
		if data.project != nil {
			ws.Project = data.project
		}
		if data.files != nil {
			ws.Files = data.files
		}
		if data.items != nil {
			ws.Items = data.items
			ws.SelectedItemIDs = keepExisting(ws.SelectedItemIDs, data.items)
		}
		if data.history != nil {
			ws.History = data.history
		}
		if data.conversations != nil {
			ws.Conversations = data.conversations
		}
		if len(failures) > 0 {
			s.notice(ctx, c, notify.Error("Failed to get RFQ data", backend.Detail(failures[0], "Failed to get RFQ data")))
			if errors.Is(failures[0], ErrNoToken) {
				return ErrNoToken
			}
		}
		return nil
	})
}

func keepExisting(selected []string, items []models.RfqItem) []string {
	present := make(map[string]bool, len(items))
	for _, it := range items {
		present[it.ID] = true
	}
	out := make([]string, 0, len(selected))
	for _, id := range selected {
		if present[id] {
			out = append(out, id)
		}
	}
	return out
}

func (s *workspaceService) Upload(ctx context.Context, c Caller, filename string, content io.Reader, parseNow bool) (*WorkspaceView, error) {
	return s.mutate(ctx, c, func(ws *Workspace) error {
		if err := s.requireMutable(ctx, c, ws); err != nil {
			return err
		}
		if strings.TrimSpace(filename) == "" {
			return &ValidationError{Fields: []string{"file"}}
		}
		projectID := ws.ProjectID()
		file, err := s.client.UploadFile(ctx, c.Auth(), projectID, filename, content)
		if err != nil {
			return s.fail(ctx, c, "Upload failed", err)
		}
		log.Printf("Workspace: %s uploaded %s (%s) to project %s", c.UserID, file.Filename, file.ID, projectID)
		s.notice(ctx, c, notify.Success("Upload successful", fmt.Sprintf("File %s has been uploaded", filename)))

		if files, err := s.client.ListFiles(ctx, c.Auth(), projectID); err != nil {
			log.Printf("Workspace: failed to refresh files after upload: %v", err)
			ws.Files = append(ws.Files, *file)
		} else {
			ws.Files = files
		}

		if parseNow {
			ws.Dialogs.PendingParseFileID = ""
			return s.parse(ctx, c, ws, file.ID)
		}
		ws.Dialogs.PendingParseFileID = file.ID
		return nil
	})
}

// ConfirmParse answers the "parse now?" prompt raised after an upload.
func (s *workspaceService) ConfirmParse(ctx context.Context, c Caller, accept bool) (*WorkspaceView, error) {
	return s.mutate(ctx, c, func(ws *Workspace) error {
		fileID := ws.Dialogs.PendingParseFileID
		if fileID == "" {
			return ErrNoPendingParse
		}
		ws.Dialogs.PendingParseFileID = ""
		if !accept {
			return nil
		}
		if err := s.requireMutable(ctx, c, ws); err != nil {
			return err
		}
		return s.parse(ctx, c, ws, fileID)
	})
}

func (s *workspaceService) Parse(ctx context.Context, c Caller, fileID string) (*WorkspaceView, error) {
	return s.mutate(ctx, c, func(ws *Workspace) error {
		if err := s.requireMutable(ctx, c, ws); err != nil {
			return err
		}
		return s.parse(ctx, c, ws, fileID)
	})
}

// parse replaces the item list with the parse result and moves to the items
// tab. In-flight project loads become stale.
func (s *workspaceService) parse(ctx context.Context, c Caller, ws *Workspace, fileID string) error {
	projectID := ws.ProjectID()
	result, err := s.client.ParseFile(ctx, c.Auth(), projectID, fileID)
	if err != nil {
		return s.fail(ctx, c, "Parse failed", err)
	}
	ws.Items = result.Items
	ws.SelectedItemIDs = []string{}
	ws.Tab = TabItems
	ws.LoadSeq++
	s.notice(ctx, c, notify.Success("Parse successful", fmt.Sprintf("Successfully parsed %d parts", len(result.Items))))

	if files, err := s.client.ListFiles(ctx, c.Auth(), projectID); err != nil {
		log.Printf("Workspace: failed to refresh files after parse: %v", err)
	} else {
		ws.Files = files
	}
	return nil
}

func (s *workspaceService) DownloadFile(ctx context.Context, c Caller, fileID string) (*backend.Download, error) {
	ws, err := s.sessions.Load(ctx, c.Key())
	if err != nil {
		return nil, err
	}
	if err := s.requireProject(ctx, c, ws); err != nil {
		return nil, err
	}
	dl, err := s.client.DownloadFile(ctx, c.Auth(), ws.ProjectID(), fileID)
	if err != nil {
		return nil, s.fail(ctx, c, "Failed to download file", err)
	}
	return dl, nil
}

// PreviewItemEdit returns the field-level diff shown for confirmation.
func (s *workspaceService) PreviewItemEdit(ctx context.Context, c Caller, itemID string, edit ItemEdit) (*ItemDiff, error) {
	ws, err := s.sessions.Load(ctx, c.Key())
	if err != nil {
		return nil, err
	}
	_, item := ws.item(itemID)
	if item == nil {
		return nil, ErrNotFound
	}
	return DiffItem(*item, edit), nil
}

// SaveItemEdit PATCHes the changed editable fields. An empty diff raises a "no
// changes" notice and sends nothing.
func (s *workspaceService) SaveItemEdit(ctx context.Context, c Caller, itemID string, edit ItemEdit) (*WorkspaceView, error) {
	return s.mutate(ctx, c, func(ws *Workspace) error {
		if err := s.requireMutable(ctx, c, ws); err != nil {
			return err
		}
		_, item := ws.item(itemID)
		if item == nil {
			s.notice(ctx, c, notify.Error("Item not found", ""))
			return ErrNotFound
		}
		diff := DiffItem(*item, edit)
		if diff.Empty() {
			ws.Dialogs.EditItemID = ""
			s.notice(ctx, c, notify.Info("No changes", "No fields were modified"))
			return nil
		}
		updated, err := s.client.UpdateItem(ctx, c.Auth(), itemID, diff.Patch)
		if err != nil {
			ws.Dialogs.EditItemID = itemID
			return s.fail(ctx, c, "Failed to update item", err)
		}
		if updated.ID == "" {
			updated.ID = itemID
		}
		if updated.ProjectID == "" {
			updated.ProjectID = item.ProjectID
		}
		if idx, _ := ws.item(itemID); idx >= 0 {
			ws.Items[idx] = *updated
		}
		ws.Dialogs.EditItemID = ""
		s.notice(ctx, c, notify.Success("Item updated", fmt.Sprintf("%d field(s) updated", len(diff.Changes))))
		return nil
	})
}

func (s *workspaceService) ToggleItem(ctx context.Context, c Caller, itemID string) (*WorkspaceView, error) {
	return s.mutate(ctx, c, func(ws *Workspace) error {
		if _, item := ws.item(itemID); item == nil {
			return ErrNotFound
		}
		if ws.isSelected(itemID) {
			out := ws.SelectedItemIDs[:0]
			for _, id := range ws.SelectedItemIDs {
				if id != itemID {
					out = append(out, id)
				}
			}
			ws.SelectedItemIDs = out
			return nil
		}
		ws.SelectedItemIDs = append(ws.SelectedItemIDs, itemID)
		return nil
	})
}

func (s *workspaceService) SelectAllItems(ctx context.Context, c Caller) (*WorkspaceView, error) {
	return s.mutate(ctx, c, func(ws *Workspace) error {
		ids := make([]string, 0, len(ws.Items))
		for _, it := range ws.Items {
			ids = append(ids, it.ID)
		}
		ws.SelectedItemIDs = ids
		return nil
	})
}

func (s *workspaceService) ClearItemSelection(ctx context.Context, c Caller) (*WorkspaceView, error) {
	return s.mutate(ctx, c, func(ws *Workspace) error {
		ws.SelectedItemIDs = []string{}
		return nil
	})
}

// DeleteSelected deletes the selected items in one batch. Only the ids the
// backend acknowledges are removed locally.
func (s *workspaceService) DeleteSelected(ctx context.Context, c Caller, confirmText string) (*WorkspaceView, error) {
	return s.mutate(ctx, c, func(ws *Workspace) error {
		if !DeleteConfirmed(confirmText) {
			ws.Dialogs.DeleteConfirm = true
			return ErrDeleteNotConfirmed
		}
		if err := s.requireMutable(ctx, c, ws); err != nil {
			return err
		}
		if len(ws.SelectedItemIDs) == 0 {
			s.notice(ctx, c, notify.Error("No items selected", "Please select items to delete"))
			return ErrNoItemsSelected
		}
		requested := append([]string{}, ws.SelectedItemIDs...)
		result, err := s.client.BatchDeleteItems(ctx, c.Auth(), ws.ProjectID(), requested)
		if err != nil {
			return s.fail(ctx, c, "Failed to delete items", err)
		}
		acked := result.Acknowledged(requested)
		ws.removeItems(acked)
		ws.Dialogs.DeleteConfirm = false
		ws.LoadSeq++

		if len(acked) < len(requested) {
			s.notice(ctx, c, notify.Success("Items deleted", fmt.Sprintf("Deleted %d of %d selected items", len(acked), len(requested))))
		} else {
			s.notice(ctx, c, notify.Success("Items deleted", fmt.Sprintf("Successfully deleted %d items", len(acked))))
		}
		return nil
	})
}

func (s *workspaceService) ExportItems(ctx context.Context, c Caller) (*Export, error) {
	ws, err := s.sessions.Load(ctx, c.Key())
	if err != nil {
		return nil, err
	}
	if err := s.requireProject(ctx, c, ws); err != nil {
		return nil, err
	}
	items, err := s.client.ListItems(ctx, c.Auth(), ws.ProjectID())
	if err != nil {
		return nil, s.fail(ctx, c, "Failed to export items", err)
	}
	return ExportItemsXLSX(ws.Project, items)
}

// OpenInquiry opens the supplier picker. An empty supplier list is re-fetched
// once; if it is still empty the picker stays closed.
func (s *workspaceService) OpenInquiry(ctx context.Context, c Caller) (*WorkspaceView, error) {
	return s.mutate(ctx, c, func(ws *Workspace) error {
		if err := s.requireMutable(ctx, c, ws); err != nil {
			return err
		}
		if len(ws.Suppliers) == 0 {
			suppliers, err := s.client.ListSuppliers(ctx, c.Auth())
			if err != nil {
				ws.Dialogs.SupplierPicker = false
				return s.fail(ctx, c, "Failed to fetch suppliers", err)
			}
			ws.Suppliers = suppliers
		}
		if len(ws.Suppliers) == 0 {
			ws.Dialogs.SupplierPicker = false
			s.notice(ctx, c, notify.Error("No suppliers available", "Please add suppliers before generating an inquiry"))
			return ErrNoSuppliers
		}
		ws.Dialogs.SupplierPicker = true
		return nil
	})
}

func (s *workspaceService) CloseInquiry(ctx context.Context, c Caller) (*WorkspaceView, error) {
	return s.mutate(ctx, c, func(ws *Workspace) error {
		ws.Dialogs.SupplierPicker = false
		return nil
	})
}

// GenerateInquiry asks the backend for a draft addressed to supplierID covering
// the selected items and loads it into the composer. The supplier picker must
// be open and list supplierID.
func (s *workspaceService) GenerateInquiry(ctx context.Context, c Caller, supplierID string) (*WorkspaceView, error) {
	return s.mutate(ctx, c, func(ws *Workspace) error {
		if err := s.requireMutable(ctx, c, ws); err != nil {
			return err
		}
		if !ws.Dialogs.SupplierPicker || !ws.hasSupplier(supplierID) {
			ws.Dialogs.SupplierPicker = false
			s.notice(ctx, c, notify.Error("No supplier selected", "Choose a supplier from the inquiry dialog"))
			return ErrNoSuppliers
		}
		itemIDs := append([]string{}, ws.SelectedItemIDs...)
		tmpl, err := s.client.GenerateTemplate(ctx, c.Auth(), ws.ProjectID(), supplierID, itemIDs)
		if err != nil {
			return s.fail(ctx, c, "Failed to generate template", err)
		}
		draft := &models.EmailDraft{
			To:         tmpl.ToEmail,
			Subject:    tmpl.Subject,
			Content:    tmpl.Content,
			SupplierID: supplierID,
			ItemIDs:    itemIDs,
		}
		if tmpl.ConversationID != nil {
			draft.ConversationID = *tmpl.ConversationID
		}
		if draft.To == "" {
			for _, sup := range ws.Suppliers {
				if sup.ID == supplierID && sup.Email != nil {
					draft.To = *sup.Email
				}
			}
		}
		ws.Draft = draft
		ws.Dialogs.SupplierPicker = false
		ws.Tab = TabEmails
		s.notice(ctx, c, notify.Success("Template generated", "The inquiry draft is ready for review"))
		return nil
	})
}

func (ws *Workspace) hasSupplier(id string) bool {
	for _, sup := range ws.Suppliers {
		if sup.ID == id {
			return true
		}
	}
	return false
}

func (ws *Workspace) findEmail(id string) *models.EmailHistory {
	for i := range ws.History {
		if ws.History[i].ID == id {
			return &ws.History[i]
		}
	}
	if ws.Conversation != nil {
		for i := range ws.Conversation.Emails {
			if ws.Conversation.Emails[i].ID == id {
				return &ws.Conversation.Emails[i]
			}
		}
	}
	return nil
}

func prefixSubject(prefix, subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), strings.ToLower(prefix)) {
		return subject
	}
	return prefix + subject
}

func quote(content string) string {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}

// PrepareReply fills the composer with a reply in the same conversation.
func (s *workspaceService) PrepareReply(ctx context.Context, c Caller, emailID string) (*WorkspaceView, error) {
	return s.mutate(ctx, c, func(ws *Workspace) error {
		e := ws.findEmail(emailID)
		if e == nil {
			return ErrNotFound
		}
		draft := &models.EmailDraft{
			To:      e.ToEmail,
			Subject: prefixSubject("Re: ", e.Subject),
		}
		if e.Content != nil {
			draft.Content = "\n\n" + quote(*e.Content)
		}
		if e.ConversationID != nil {
			draft.ConversationID = *e.ConversationID
		}
		draft.ItemIDs = append([]string{}, e.RfqItems...)
		ws.Draft = draft
		ws.Tab = TabEmails
		return nil
	})
}

// PrepareForward fills the composer with a forwarded copy and no recipient.
func (s *workspaceService) PrepareForward(ctx context.Context, c Caller, emailID string) (*WorkspaceView, error) {
	return s.mutate(ctx, c, func(ws *Workspace) error {
		e := ws.findEmail(emailID)
		if e == nil {
			return ErrNotFound
		}
		var b strings.Builder
		b.WriteString("\n\n---------- Forwarded message ----------\n")
		fmt.Fprintf(&b, "To: %s\nSubject: %s\n\n", e.ToEmail, e.Subject)
		if e.Content != nil {
			b.WriteString(*e.Content)
		}
		ws.Draft = &models.EmailDraft{
			Subject: prefixSubject("Fwd: ", e.Subject),
			Content: b.String(),
			ItemIDs: append([]string{}, e.RfqItems...),
		}
		ws.Tab = TabEmails
		return nil
	})
}

func (s *workspaceService) DiscardDraft(ctx context.Context, c Caller) (*WorkspaceView, error) {
	return s.mutate(ctx, c, func(ws *Workspace) error {
		ws.Draft = nil
		return nil
	})
}

// SendEmail validates and sends draft with attachments, then refreshes the
// history and conversations.
func (s *workspaceService) SendEmail(ctx context.Context, c Caller, draft models.EmailDraft, attachments []models.Attachment) (*WorkspaceView, error) {
	return s.mutate(ctx, c, func(ws *Workspace) error {
		if missing := draft.Missing(); len(missing) > 0 {
			s.notice(ctx, c, notify.Error("Missing fields", "Recipient, subject and content are required"))
			return &ValidationError{Fields: missing}
		}
		if err := s.requireMutable(ctx, c, ws); err != nil {
			return err
		}
		if ws.Draft != nil {
			if draft.ConversationID == "" {
				draft.ConversationID = ws.Draft.ConversationID
			}
			if draft.SupplierID == "" {
				draft.SupplierID = ws.Draft.SupplierID
			}
			if draft.ItemIDs == nil {
				draft.ItemIDs = ws.Draft.ItemIDs
			}
		}
		projectID := ws.ProjectID()
		result, err := s.client.SendProjectEmail(ctx, c.Auth(), projectID, draft.Payload(), attachments)
		if err != nil {
			ws.Draft = &draft
			return s.fail(ctx, c, "Failed to send email", err)
		}
		s.notice(ctx, c, notify.Success("Email sent", fmt.Sprintf("Inquiry sent to %s", draft.To)))
		ws.Draft = nil

		if s.jobs != nil && len(attachments) > 0 {
			if err := s.jobs.EnqueueAttachmentArchive(ctx, c, projectID, result.ID, attachments); err != nil {
				log.Printf("Workspace: failed to enqueue attachment archive for project %s: %v", projectID, err)
			}
		}
		s.refreshEmails(ctx, c, ws)
		return nil
	})
}

// refreshEmails re-fetches history and conversations concurrently. Failures
// keep the previous lists.
func (s *workspaceService) refreshEmails(ctx context.Context, c Caller, ws *Workspace) {
	projectID := ws.ProjectID()
	if projectID == "" {
		return
	}
	auth := c.Auth()
	var (
		history       []models.EmailHistory
		conversations []models.RfqConversation
		historyErr    error
		convErr       error
	)
	var g errgroup.Group
	g.Go(func() error {
		history, historyErr = s.client.EmailHistory(ctx, auth, projectID, 100)
		return nil
	})
	g.Go(func() error {
		var page *models.Page[models.RfqConversation]
		page, convErr = s.client.ListConversations(ctx, auth, models.ConversationQuery{ProjectID: projectID, Status: ws.ConversationStatus, Page: 1, PageSize: 50})
		if convErr == nil {
			conversations = page.Items
		}
		return nil
	})
	g.Wait()

	if historyErr != nil {
		log.Printf("Workspace: failed to refresh email history of %s: %v", projectID, historyErr)
	} else if history != nil {
		ws.History = history
	}
	if convErr != nil {
		log.Printf("Workspace: failed to refresh conversations of %s: %v", projectID, convErr)
	} else {
		ws.Conversations = conversations
		if ws.Conversations == nil {
			ws.Conversations = []models.RfqConversation{}
		}
	}
	if historyErr != nil && convErr != nil {
		s.notice(ctx, c, notify.Error("Failed to refresh emails", backend.Detail(historyErr, "Failed to refresh emails")))
	}
}

func (s *workspaceService) FilterConversations(ctx context.Context, c Caller, status models.ConversationStatus) (*WorkspaceView, error) {
	switch status {
	case "", models.ConversationOpen, models.ConversationClosed, models.ConversationArchived:
	default:
		return nil, fmt.Errorf("unknown conversation status %q", status)
	}
	return s.mutate(ctx, c, func(ws *Workspace) error {
		if err := s.requireProject(ctx, c, ws); err != nil {
			return err
		}
		ws.ConversationStatus = status
		return s.refreshConversations(ctx, c, ws)
	})
}

func (s *workspaceService) refreshConversations(ctx context.Context, c Caller, ws *Workspace) error {
	page, err := s.client.ListConversations(ctx, c.Auth(), models.ConversationQuery{ProjectID: ws.ProjectID(), Status: ws.ConversationStatus, Page: 1, PageSize: 50})
	if err != nil {
		return s.fail(ctx, c, "Failed to fetch conversations", err)
	}
	ws.Conversations = page.Items
	if ws.Conversations == nil {
		ws.Conversations = []models.RfqConversation{}
	}
	if ws.Conversation != nil && ws.Conversation.Conversation != nil {
		for i := range ws.Conversations {
			if ws.Conversations[i].ID == ws.Conversation.Conversation.ID {
				conv := ws.Conversations[i]
				ws.Conversation.Conversation = &conv
			}
		}
	}
	return nil
}

var actionLabels = map[models.ConversationAction]string{
	models.ActionClose:   "closed",
	models.ActionArchive: "archived",
	models.ActionReopen:  "reopened",
}

// SetConversationStatus closes, archives or reopens a conversation and
// refreshes the conversation list.
func (s *workspaceService) SetConversationStatus(ctx context.Context, c Caller, conversationID string, action models.ConversationAction) (*WorkspaceView, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("unknown conversation action %q", action)
	}
	return s.mutate(ctx, c, func(ws *Workspace) error {
		if err := s.client.SetConversationStatus(ctx, c.Auth(), conversationID, action); err != nil {
			return s.fail(ctx, c, fmt.Sprintf("Failed to %s conversation", action), err)
		}
		s.notice(ctx, c, notify.Success("Conversation "+actionLabels[action], ""))
		if ws.ProjectID() == "" {
			return nil
		}
		return s.refreshConversations(ctx, c, ws)
	})
}

// OpenConversation loads the emails, items and RFQ status of a conversation
// concurrently. Opening another conversation supersedes this load.
func (s *workspaceService) OpenConversation(ctx context.Context, c Caller, conversationID string) (*WorkspaceView, error) {
	var seq uint64
	if _, err := s.mutate(ctx, c, func(ws *Workspace) error {
		ws.ConversationSeq++
		seq = ws.ConversationSeq
		return nil
	}); err != nil {
		return nil, err
	}

	lctx, release := s.scopes.begin(ctx, c.Key()+":conversation")
	defer release()

	auth := c.Auth()
	detail := &models.ConversationDetail{Emails: []models.EmailHistory{}, Items: []models.RfqItem{}}
	var (
		mu       sync.Mutex
		failures []error
	)
	record := func(what string, err error) {
		log.Printf("Workspace: loading %s of conversation %s failed: %v", what, conversationID, err)
		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
	}
	var g errgroup.Group
	g.Go(func() error {
		emails, err := s.client.ConversationEmails(lctx, auth, conversationID)
		if err != nil {
			record("emails", err)
		} else if emails != nil {
			detail.Emails = emails
		}
		return nil
	})
	g.Go(func() error {
		items, err := s.client.ConversationItems(lctx, auth, conversationID)
		if err != nil {
			record("items", err)
		} else if items != nil {
			detail.Items = items
		}
		return nil
	})
	g.Go(func() error {
		status, err := s.client.ConversationRfqStatus(lctx, auth, conversationID)
		if err != nil {
			record("rfq status", err)
		} else {
			detail.RfqStatus = status
		}
		return nil
	})
	g.Wait()

	superseded := lctx.Err() != nil && ctx.Err() == nil
	return s.mutate(ctx, c, func(ws *Workspace) error {
		if superseded || ws.ConversationSeq != seq {
			log.Printf("Workspace: discarding stale conversation %s for %s", conversationID, c.Key())
			return nil
		}
		for i := range ws.Conversations {
			if ws.Conversations[i].ID == conversationID {
				conv := ws.Conversations[i]
				detail.Conversation = &conv
			}
		}
		ws.Conversation = detail
		ws.Tab = TabEmails
		if len(failures) > 0 {
			s.notice(ctx, c, notify.Error("Failed to load conversation", backend.Detail(failures[0], "Failed to load conversation")))
		}
		return nil
	})
}

func (s *workspaceService) CloseConversation(ctx context.Context, c Caller) (*WorkspaceView, error) {
	return s.mutate(ctx, c, func(ws *Workspace) error {
		ws.Conversation = nil
		ws.ConversationSeq++
		return nil
	})
}
