package services

import (
	"strconv"
	"strings"

	"smartrfq/desk/internal/models"
)

// ItemEdit is the edit dialog form. A nil field was not submitted and is left
// unchanged; an empty string clears the field.
type ItemEdit struct {
	IndexNo       *int    `json:"index_no,omitempty"`
	PartNumber    *string `json:"part_number,omitempty"`
	Name          *string `json:"name,omitempty"`
	Quantity      *string `json:"quantity,omitempty"`
	Material      *string `json:"material,omitempty"`
	Size          *string `json:"size,omitempty"`
	Process       *string `json:"process,omitempty"`
	DeliveryTime  *string `json:"delivery_time,omitempty"`
	Unit          *string `json:"unit,omitempty"`
	Tolerance     *string `json:"tolerance,omitempty"`
	DrawingURL    *string `json:"drawing_url,omitempty"`
	SurfaceFinish *string `json:"surface_finish,omitempty"`
	Remarks       *string `json:"remarks,omitempty"`
}

// FieldChange is one line of the edit confirmation.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// ItemDiff is the confirmed change set of an item edit.
type ItemDiff struct {
	ItemID  string         `json:"item_id"`
	Changes []FieldChange  `json:"changes"`
	Patch   map[string]any `json:"-"`
}

// Empty reports whether nothing changed.
func (d *ItemDiff) Empty() bool {
	return len(d.Changes) == 0
}

type editableField struct {
	name string
	orig func(*models.RfqItem) *string
	edit func(*ItemEdit) *string
}

// editableFields lists the string fields the backend accepts in a PATCH, in
// display order. id, project_id and created_at are never sent.
var editableFields = []editableField{
	{"part_number", func(i *models.RfqItem) *string { return i.PartNumber }, func(e *ItemEdit) *string { return e.PartNumber }},
	{"name", func(i *models.RfqItem) *string { return i.Name }, func(e *ItemEdit) *string { return e.Name }},
	{"quantity", func(i *models.RfqItem) *string { return i.Quantity }, func(e *ItemEdit) *string { return e.Quantity }},
	{"material", func(i *models.RfqItem) *string { return i.Material }, func(e *ItemEdit) *string { return e.Material }},
	{"size", func(i *models.RfqItem) *string { return i.Size }, func(e *ItemEdit) *string { return e.Size }},
	{"process", func(i *models.RfqItem) *string { return i.Process }, func(e *ItemEdit) *string { return e.Process }},
	{"delivery_time", func(i *models.RfqItem) *string { return i.DeliveryTime }, func(e *ItemEdit) *string { return e.DeliveryTime }},
	{"unit", func(i *models.RfqItem) *string { return i.Unit }, func(e *ItemEdit) *string { return e.Unit }},
	{"tolerance", func(i *models.RfqItem) *string { return i.Tolerance }, func(e *ItemEdit) *string { return e.Tolerance }},
	{"drawing_url", func(i *models.RfqItem) *string { return i.DrawingURL }, func(e *ItemEdit) *string { return e.DrawingURL }},
	{"surface_finish", func(i *models.RfqItem) *string { return i.SurfaceFinish }, func(e *ItemEdit) *string { return e.SurfaceFinish }},
	{"remarks", func(i *models.RfqItem) *string { return i.Remarks }, func(e *ItemEdit) *string { return e.Remarks }},
}

// DiffItem compares the edit form with the original item. Blank and missing
// values are treated as equal; surrounding whitespace is ignored.
func DiffItem(orig models.RfqItem, edit ItemEdit) *ItemDiff {
	diff := &ItemDiff{ItemID: orig.ID, Changes: []FieldChange{}, Patch: map[string]any{}}

	if edit.IndexNo != nil && (orig.IndexNo == nil || *orig.IndexNo != *edit.IndexNo) {
		diff.Changes = append(diff.Changes, FieldChange{Field: "index_no", Old: intText(orig.IndexNo), New: strconv.Itoa(*edit.IndexNo)})
		diff.Patch["index_no"] = *edit.IndexNo
	}
	for _, f := range editableFields {
		next := f.edit(&edit)
		if next == nil {
			continue
		}
		oldVal := text(f.orig(&orig))
		newVal := strings.TrimSpace(*next)
		if oldVal == newVal {
			continue
		}
		diff.Changes = append(diff.Changes, FieldChange{Field: f.name, Old: oldVal, New: newVal})
		if newVal == "" {
			diff.Patch[f.name] = nil
		} else {
			diff.Patch[f.name] = newVal
		}
	}
	return diff
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func intText(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
