package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"smartrfq/desk/internal/backend"
	"smartrfq/desk/internal/models"
	"smartrfq/desk/internal/notify"
	"smartrfq/desk/internal/selection"
	"smartrfq/desk/internal/services"
)

// Screen identifies the active console screen.
type Screen int

const (
	ScreenProjects Screen = iota
	ScreenFiles
	ScreenItems
)

var screenNames = []string{"Projects", "Files", "Items"}

const consolePageSize = 50

type projectsLoadedMsg struct {
	listing *services.ProjectListing
	err     error
}

type workspaceMsg struct {
	view *services.WorkspaceView
	err  error
}

type selectionChangedMsg struct {
	change selection.Change
	ok     bool
}

type noticeMsg struct {
	notice *models.Notice
}

// Model is the root bubbletea model of the console.
type Model struct {
	ctx       context.Context
	caller    services.Caller
	projects  services.IProjectService
	workspace services.IWorkspaceService
	feed      notify.Feed
	changes   <-chan selection.Change

	screen     Screen
	cursor     int
	listing    *services.ProjectListing
	view       *services.WorkspaceView
	confirming bool
	confirm    textinput.Model

	status    string
	statusErr bool
	width     int
	height    int
}

// NewModel creates the console model. changes is the selection subscription
// of the caller's scope; it may be nil.
func NewModel(ctx context.Context, caller services.Caller, projects services.IProjectService, workspace services.IWorkspaceService, feed notify.Feed, changes <-chan selection.Change) Model {
	ti := textinput.New()
	ti.Placeholder = "type delete to confirm"
	ti.CharLimit = 16
	ti.Width = 24

	return Model{
		ctx:       ctx,
		caller:    caller,
		projects:  projects,
		workspace: workspace,
		feed:      feed,
		changes:   changes,
		confirm:   ti,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadProjects(), m.loadState(), m.waitForChange())
}

func (m Model) loadProjects() tea.Cmd {
	return func() tea.Msg {
		listing, err := m.projects.List(m.ctx, m.caller, services.ProjectListQuery{PageSize: consolePageSize})
		return projectsLoadedMsg{listing: listing, err: err}
	}
}

func (m Model) loadState() tea.Cmd {
	return m.act(func(ctx context.Context, c services.Caller) (*services.WorkspaceView, error) {
		return m.workspace.State(ctx, c)
	})
}

// act runs a workspace operation off the update loop.
func (m Model) act(fn func(context.Context, services.Caller) (*services.WorkspaceView, error)) tea.Cmd {
	return func() tea.Msg {
		view, err := fn(m.ctx, m.caller)
		return workspaceMsg{view: view, err: err}
	}
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-m.changes
		return selectionChangedMsg{change: change, ok: ok}
	}
}

func (m Model) latestNotice() tea.Cmd {
	if m.feed == nil {
		return nil
	}
	return func() tea.Msg {
		recent, err := m.feed.Recent(m.ctx, m.caller.Key(), 1)
		if err != nil || len(recent) == 0 {
			return noticeMsg{}
		}
		return noticeMsg{notice: &recent[0]}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case projectsLoadedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.listing = msg.listing
		m.clampCursor()
		return m, nil

	case workspaceMsg:
		if msg.view != nil {
			m.view = msg.view
			m.followTab()
		}
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		return m, m.latestNotice()

	case selectionChangedMsg:
		if !msg.ok {
			return m, nil
		}
		return m, tea.Batch(m.loadState(), m.waitForChange())

	case noticeMsg:
		if msg.notice != nil {
			m.status = msg.notice.Title
			if msg.notice.Description != "" {
				m.status += ": " + msg.notice.Description
			}
			m.statusErr = msg.notice.Level == models.NoticeError
		}
		return m, nil

	case tea.KeyMsg:
		if m.confirming {
			return m.updateConfirm(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m.confirming = false
		m.confirm.Blur()
		m.confirm.SetValue("")
		return m, nil
	case isEnter(msg):
		text := m.confirm.Value()
		m.confirming = false
		m.confirm.Blur()
		m.confirm.SetValue("")
		return m, m.act(func(ctx context.Context, c services.Caller) (*services.WorkspaceView, error) {
			return m.workspace.DeleteSelected(ctx, c, text)
		})
	}
	var cmd tea.Cmd
	m.confirm, cmd = m.confirm.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isQuit(msg):
		return m, tea.Quit
	case isNextTab(msg):
		m.screen = (m.screen + 1) % Screen(len(screenNames))
		m.cursor = 0
		return m, nil
	case isUp(msg):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case isDown(msg):
		if m.cursor < m.rowCount()-1 {
			m.cursor++
		}
		return m, nil
	case isEnter(msg):
		return m.enter()
	case msg.String() == "r":
		if m.screen == ScreenProjects {
			return m, m.loadProjects()
		}
		return m, m.act(m.workspace.Refresh)
	}

	if m.screen != ScreenItems {
		return m, nil
	}
	switch {
	case isToggle(msg):
		items := m.items()
		if m.cursor >= len(items) {
			return m, nil
		}
		id := items[m.cursor].ID
		return m, m.act(func(ctx context.Context, c services.Caller) (*services.WorkspaceView, error) {
			return m.workspace.ToggleItem(ctx, c, id)
		})
	case msg.String() == "a":
		return m, m.act(m.workspace.SelectAllItems)
	case msg.String() == "c":
		return m, m.act(m.workspace.ClearItemSelection)
	case msg.String() == "d":
		if m.view == nil || len(m.view.SelectedItemIDs) == 0 {
			m.status = "Select items to delete first"
			m.statusErr = true
			return m, nil
		}
		m.confirming = true
		return m, m.confirm.Focus()
	}
	return m, nil
}

func (m Model) enter() (tea.Model, tea.Cmd) {
	switch m.screen {
	case ScreenProjects:
		if m.listing == nil || m.cursor >= len(m.listing.Projects) {
			return m, nil
		}
		id := m.listing.Projects[m.cursor].ID
		return m, m.act(func(ctx context.Context, c services.Caller) (*services.WorkspaceView, error) {
			return m.workspace.SelectProject(ctx, c, id)
		})
	case ScreenFiles:
		files := m.files()
		if m.cursor >= len(files) {
			return m, nil
		}
		id := files[m.cursor].ID
		m.status = "Parsing " + files[m.cursor].Filename + "..."
		m.statusErr = false
		return m, m.act(func(ctx context.Context, c services.Caller) (*services.WorkspaceView, error) {
			return m.workspace.Parse(ctx, c, id)
		})
	}
	return m, nil
}

// followTab moves the console to the screen matching the workspace tab.
func (m *Model) followTab() {
	next := m.screen
	switch m.view.Tab {
	case services.TabFiles:
		next = ScreenFiles
	case services.TabItems:
		next = ScreenItems
	}
	if next != m.screen {
		m.screen = next
		m.cursor = 0
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if n := m.rowCount(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setError(err error) {
	m.status = backend.Detail(err, err.Error())
	m.statusErr = true
}

func (m Model) files() []models.RfqFile {
	if m.view == nil {
		return nil
	}
	return m.view.Files
}

func (m Model) items() []models.RfqItem {
	if m.view == nil {
		return nil
	}
	return m.view.Items
}

func (m Model) rowCount() int {
	switch m.screen {
	case ScreenProjects:
		if m.listing == nil {
			return 0
		}
		return len(m.listing.Projects)
	case ScreenFiles:
		return len(m.files())
	case ScreenItems:
		return len(m.items())
	}
	return 0
}

func (m Model) View() string {
	var b strings.Builder

	tabs := make([]string, len(screenNames))
	for i, name := range screenNames {
		if Screen(i) == m.screen {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = dimStyle.Render(name)
		}
	}
	title := "SmartRFQ"
	if m.view != nil && m.view.Project != nil {
		title += " / " + m.view.Project.Name + " (" + string(m.view.Project.Status) + ")"
	}
	b.WriteString(headerStyle.Render(title) + "\n")
	b.WriteString(strings.Join(tabs, "  ") + "\n\n")

	switch m.screen {
	case ScreenProjects:
		b.WriteString(m.viewProjects())
	case ScreenFiles:
		b.WriteString(m.viewFiles())
	case ScreenItems:
		b.WriteString(m.viewItems())
	}

	if m.confirming {
		b.WriteString("\n" + boxStyle.Render("Delete selected items?\n"+m.confirm.View()) + "\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		if m.statusErr {
			b.WriteString(errorStyle.Render(m.status) + "\n")
		} else {
			b.WriteString(selectedStyle.Render(m.status) + "\n")
		}
	}
	b.WriteString(dimStyle.Render(m.help()))

	if m.width > 0 {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(b.String())
	}
	return b.String()
}

func (m Model) help() string {
	switch m.screen {
	case ScreenFiles:
		return "enter: parse  r: refresh  tab: next  q: quit"
	case ScreenItems:
		return "space: toggle  a: all  c: clear  d: delete  r: refresh  tab: next  q: quit"
	}
	return "enter: select  r: reload  tab: next  q: quit"
}

func (m Model) row(i int, line string) string {
	if i == m.cursor {
		return selectedStyle.Render("> "+line) + "\n"
	}
	return normalStyle.Render("  "+line) + "\n"
}

func (m Model) viewProjects() string {
	if m.listing == nil || len(m.listing.Projects) == 0 {
		return dimStyle.Render("No projects") + "\n"
	}
	selected := ""
	if m.view != nil {
		selected = m.view.ProjectID()
	}
	var b strings.Builder
	for i, p := range m.listing.Projects {
		mark := " "
		if p.ID == selected {
			mark = "*"
		}
		b.WriteString(m.row(i, fmt.Sprintf("%s %-32s %s", mark, p.Name, p.Status)))
	}
	return b.String()
}

func (m Model) viewFiles() string {
	files := m.files()
	if len(files) == 0 {
		return dimStyle.Render("No files uploaded") + "\n"
	}
	var b strings.Builder
	for i, f := range files {
		state := "pending"
		if f.Parsed() {
			state = "parsed"
		}
		b.WriteString(m.row(i, fmt.Sprintf("%-40s %s", f.Filename, state)))
	}
	return b.String()
}

func (m Model) viewItems() string {
	items := m.items()
	if len(items) == 0 {
		return dimStyle.Render("No items") + "\n"
	}
	selected := map[string]bool{}
	if m.view != nil {
		for _, id := range m.view.SelectedItemIDs {
			selected[id] = true
		}
	}
	var b strings.Builder
	for i, it := range items {
		box := "[ ]"
		if selected[it.ID] {
			box = "[x]"
		}
		b.WriteString(m.row(i, fmt.Sprintf("%s %-20s %-28s %s", box, value(it.PartNumber), value(it.Name), value(it.Quantity))))
	}
	return b.String()
}

func value(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
