package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"smartrfq/desk/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export is a generated file ready to be streamed to the client.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

var itemColumns = []string{
	"No.", "Part Number", "Name", "Quantity", "Unit", "Material", "Size", "Process",
	"Surface Finish", "Tolerance", "Delivery Time", "Drawing URL", "Remarks",
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ExportItemsXLSX renders the RFQ items of project as a single-sheet workbook
// with a frozen header row.
func ExportItemsXLSX(project *models.Project, items []models.RfqItem) (*Export, error) {
	f := excelize.NewFile()
	defer f.Close()

	const itemsSheet = "RFQ Items"
	index, err := f.NewSheet(itemsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(itemColumns))
	for i, col := range itemColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(itemsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(itemColumns))
	if err := f.SetCellStyle(itemsSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, it := range items {
		var no interface{} = i + 1
		if it.IndexNo != nil {
			no = *it.IndexNo
		}
		row := []interface{}{
			no, deref(it.PartNumber), deref(it.Name), deref(it.Quantity), deref(it.Unit),
			deref(it.Material), deref(it.Size), deref(it.Process), deref(it.SurfaceFinish),
			deref(it.Tolerance), deref(it.DeliveryTime), deref(it.DrawingURL), deref(it.Remarks),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(itemsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write item row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(itemsSheet, "B", lastCol, 18); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetPanes(itemsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	name := "project"
	if project != nil {
		if cleaned := strings.Trim(unsafeFilename.ReplaceAllString(project.Name, "_"), "_"); cleaned != "" {
			name = cleaned
		}
	}
	return &Export{
		Filename:    fmt.Sprintf("%s_rfq_items_%s.xlsx", name, time.Now().UTC().Format("20060102")),
		ContentType: xlsxContentType,
		Data:        buf.Bytes(),
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
