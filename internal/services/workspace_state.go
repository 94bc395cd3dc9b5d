package services

import (
	"time"

	"smartrfq/desk/internal/models"
)

// Tab is a step of the RFQ workspace.
type Tab string

const (
	TabProjects Tab = "projects"
	TabFiles    Tab = "files"
	TabItems    Tab = "items"
	TabEmails   Tab = "emails"
)

var tabOrder = map[Tab]int{TabProjects: 0, TabFiles: 1, TabItems: 2, TabEmails: 3}

// Valid reports whether t is a known tab.
func (t Tab) Valid() bool {
	_, ok := tabOrder[t]
	return ok
}

// pastFiles reports whether t comes after the files tab.
func (t Tab) pastFiles() bool {
	return tabOrder[t] > tabOrder[TabFiles]
}

// Dialogs tracks which workspace dialogs are open.
type Dialogs struct {
	PendingParseFileID string `json:"pending_parse_file_id,omitempty"`
	EditItemID         string `json:"edit_item_id,omitempty"`
	DeleteConfirm      bool   `json:"delete_confirm"`
	SupplierPicker     bool   `json:"supplier_picker"`
}

// Workspace is the server-side state of a user's RFQ workspace.
type Workspace struct {
	Tab                Tab                        `json:"tab"`
	Project            *models.Project            `json:"project,omitempty"`
	Files              []models.RfqFile           `json:"files"`
	Items              []models.RfqItem           `json:"items"`
	SelectedItemIDs    []string                   `json:"selected_item_ids"`
	Suppliers          []models.Supplier          `json:"suppliers"`
	Dialogs            Dialogs                    `json:"dialogs"`
	Draft              *models.EmailDraft         `json:"draft,omitempty"`
	History            []models.EmailHistory      `json:"history"`
	Conversations      []models.RfqConversation   `json:"conversations"`
	ConversationStatus models.ConversationStatus  `json:"conversation_status,omitempty"`
	Conversation       *models.ConversationDetail `json:"conversation,omitempty"`
	LoadSeq            uint64                     `json:"load_seq"`
	ConversationSeq    uint64                     `json:"conversation_seq"`
	UpdatedAt          time.Time                  `json:"updated_at"`
}

// NewWorkspace returns an empty workspace on the projects tab.
func NewWorkspace() *Workspace {
	return &Workspace{
		Tab:             TabProjects,
		Files:           []models.RfqFile{},
		Items:           []models.RfqItem{},
		SelectedItemIDs: []string{},
		Suppliers:       []models.Supplier{},
		History:         []models.EmailHistory{},
		Conversations:   []models.RfqConversation{},
	}
}

// ProjectID returns the id of the active project, or "".
func (w *Workspace) ProjectID() string {
	if w.Project == nil {
		return ""
	}
	return w.Project.ID
}

// Capabilities are the actions the active project allows.
type Capabilities struct {
	Upload       bool `json:"upload"`
	EditItems    bool `json:"edit_items"`
	DeleteItems  bool `json:"delete_items"`
	GenerateMail bool `json:"generate_mail"`
	SendMail     bool `json:"send_mail"`
}

// Capabilities derives the allowed actions from the project status and the
// current selection.
func (w *Workspace) Capabilities() Capabilities {
	if w.Project == nil || !w.Project.AllowsMutation() {
		return Capabilities{}
	}
	return Capabilities{
		Upload:       true,
		EditItems:    true,
		DeleteItems:  len(w.SelectedItemIDs) > 0,
		GenerateMail: true,
		SendMail:     w.Draft != nil,
	}
}

// WorkspaceView is the workspace as returned to clients.
type WorkspaceView struct {
	*Workspace
	Capabilities Capabilities       `json:"capabilities"`
	HistoryView  []models.EmailView `json:"history_view"`
}

// View decorates w for display.
func (w *Workspace) View() *WorkspaceView {
	v := &WorkspaceView{Workspace: w, Capabilities: w.Capabilities(), HistoryView: make([]models.EmailView, 0, len(w.History))}
	for _, e := range w.History {
		v.HistoryView = append(v.HistoryView, models.NewEmailView(e))
	}
	return v
}

func (w *Workspace) item(id string) (int, *models.RfqItem) {
	for i := range w.Items {
		if w.Items[i].ID == id {
			return i, &w.Items[i]
		}
	}
	return -1, nil
}

func (w *Workspace) isSelected(id string) bool {
	for _, s := range w.SelectedItemIDs {
		if s == id {
			return true
		}
	}
	return false
}

// removeItems drops ids from the item list and the selection.
func (w *Workspace) removeItems(ids []string) {
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}
	items := w.Items[:0]
	for _, it := range w.Items {
		if !gone[it.ID] {
			items = append(items, it)
		}
	}
	w.Items = items
	selected := make([]string, 0, len(w.SelectedItemIDs))
	for _, id := range w.SelectedItemIDs {
		if !gone[id] {
			selected = append(selected, id)
		}
	}
	w.SelectedItemIDs = selected
}

// resetProject clears everything that belongs to the previous project.
func (w *Workspace) resetProject(p *models.Project) {
	w.Project = p
	w.Files = []models.RfqFile{}
	w.Items = []models.RfqItem{}
	w.SelectedItemIDs = []string{}
	w.History = []models.EmailHistory{}
	w.Conversations = []models.RfqConversation{}
	w.Conversation = nil
	w.Draft = nil
	w.Dialogs = Dialogs{}
}
