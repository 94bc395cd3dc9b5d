package services

import (
	"errors"
	"fmt"
	"strings"

	"smartrfq/desk/internal/backend"
)

var (
	ErrNotFound           = backend.ErrNotFound
	ErrNoToken            = backend.ErrNoToken
	ErrProjectLocked      = errors.New("project is closed or archived")
	ErrProjectArchived    = errors.New("archived projects cannot be selected")
	ErrNoProjectSelected  = errors.New("no project selected")
	ErrNoSuppliers        = errors.New("no suppliers available")
	ErrNoItemsSelected    = errors.New("no items selected")
	ErrDeleteNotConfirmed = errors.New("type delete to confirm")
	ErrNoPendingParse     = errors.New("no uploaded file awaiting parse")
	ErrInvalidTab         = errors.New("invalid workspace tab")
	ErrStaleResponse      = errors.New("response superseded by a newer load")
)

// ValidationError lists the required fields that were left blank.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}
