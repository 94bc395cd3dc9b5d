package models

import "time"

// RfqFile is an uploaded RFQ document.
type RfqFile struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	Filename   string    `json:"filename"`
	FileURL    *string   `json:"file_url,omitempty"`
	OCRText    *string   `json:"ocr_text,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Parsed reports whether the backend has extracted text from the file.
func (f *RfqFile) Parsed() bool {
	return f.OCRText != nil
}

// RfqItem is a part line-item extracted from an RFQ document.
type RfqItem struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	IndexNo       *int      `json:"index_no,omitempty"`
	PartNumber    *string   `json:"part_number,omitempty"`
	Name          *string   `json:"name,omitempty"`
	Quantity      *string   `json:"quantity,omitempty"`
	Material      *string   `json:"material,omitempty"`
	Size          *string   `json:"size,omitempty"`
	Process       *string   `json:"process,omitempty"`
	DeliveryTime  *string   `json:"delivery_time,omitempty"`
	Unit          *string   `json:"unit,omitempty"`
	Tolerance     *string   `json:"tolerance,omitempty"`
	DrawingURL    *string   `json:"drawing_url,omitempty"`
	SurfaceFinish *string   `json:"surface_finish,omitempty"`
	Remarks       *string   `json:"remarks,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ParseRequest is the body of a parse call.
type ParseRequest struct {
	FileID string `json:"file_id"`
}

// ParseResult is the backend response to a parse call; Items replaces the
// project's item list.
type ParseResult struct {
	Items []RfqItem `json:"items"`
}

// BatchDeleteRequest is the body of the rfq-items batch-delete call.
type BatchDeleteRequest struct {
	ItemIDs []string `json:"item_ids"`
}

// BatchDeleteResult reports how many items the backend deleted. DeletedIDs is
// optional; when absent the acknowledged ids are the first DeletedCount
// requested ids.
type BatchDeleteResult struct {
	DeletedCount int      `json:"deleted_count"`
	DeletedIDs   []string `json:"deleted_ids,omitempty"`
}

// Acknowledged returns the ids the backend reports as deleted, restricted to
// the requested ids. DeletedCount caps the result only when it is positive.
func (r *BatchDeleteResult) Acknowledged(requested []string) []string {
	n := r.DeletedCount
	if len(r.DeletedIDs) > 0 {
		want := make(map[string]bool, len(requested))
		for _, id := range requested {
			want[id] = true
		}
		var out []string
		for _, id := range r.DeletedIDs {
			if n > 0 && len(out) >= n {
				break
			}
			if want[id] {
				out = append(out, id)
				delete(want, id)
			}
		}
		return out
	}
	if n <= 0 {
		return nil
	}
	if n > len(requested) {
		n = len(requested)
	}
	return append([]string(nil), requested[:n]...)
}
