package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smartrfq/desk/internal/models"
)

func TestDiffItem(t *testing.T) {
	two := 2
	five := 5
	orig := models.RfqItem{
		ID:       "i1",
		IndexNo:  &two,
		Name:     strPtr("Shaft"),
		Quantity: strPtr("10"),
		Unit:     nil,
		Remarks:  strPtr("urgent"),
	}

	tests := []struct {
		name    string
		edit    ItemEdit
		changes []string
		patch   map[string]any
	}{
		{
			name:    "nothing submitted",
			edit:    ItemEdit{},
			changes: []string{},
			patch:   map[string]any{},
		},
		{
			name:    "whitespace and blank are unchanged",
			edit:    ItemEdit{Name: strPtr(" Shaft\t"), Unit: strPtr(""), IndexNo: &two},
			changes: []string{},
			patch:   map[string]any{},
		},
		{
			name:    "changed values are trimmed",
			edit:    ItemEdit{Quantity: strPtr(" 12 "), Material: strPtr("Brass")},
			changes: []string{"quantity", "material"},
			patch:   map[string]any{"quantity": "12", "material": "Brass"},
		},
		{
			name:    "clearing sends null",
			edit:    ItemEdit{Remarks: strPtr("  ")},
			changes: []string{"remarks"},
			patch:   map[string]any{"remarks": nil},
		},
		{
			name:    "index number",
			edit:    ItemEdit{IndexNo: &five},
			changes: []string{"index_no"},
			patch:   map[string]any{"index_no": 5},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			diff := DiffItem(orig, tc.edit)
			fields := []string{}
			for _, ch := range diff.Changes {
				fields = append(fields, ch.Field)
			}
			assert.Equal(t, tc.changes, fields)
			assert.Equal(t, tc.patch, diff.Patch)
			assert.Equal(t, len(tc.changes) == 0, diff.Empty())
			assert.Equal(t, "i1", diff.ItemID)
		})
	}
}

func TestDiffItemReportsOldAndNew(t *testing.T) {
	diff := DiffItem(models.RfqItem{ID: "i1", Material: strPtr("Steel")}, ItemEdit{Material: strPtr("Aluminium")})
	assert.Equal(t, []FieldChange{{Field: "material", Old: "Steel", New: "Aluminium"}}, diff.Changes)
}
