// Package console is the interactive terminal front end over the workspace
// services.
package console

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"smartrfq/desk/internal/notify"
	"smartrfq/desk/internal/selection"
	"smartrfq/desk/internal/services"
)

// Run starts the console for caller and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, caller services.Caller, projects services.IProjectService, workspace services.IWorkspaceService, store *selection.Store, feed notify.Feed) error {
	changes, unsubscribe := store.Subscribe(caller.Scope())
	defer unsubscribe()

	m := NewModel(ctx, caller, projects, workspace, feed, changes)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}
