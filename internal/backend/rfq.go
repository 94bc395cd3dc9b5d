package backend

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"smartrfq/desk/internal/models"
)

func projectPath(projectID, suffix string) string {
	return "/projects/" + url.PathEscape(projectID) + suffix
}

func (c *Client) ListFiles(ctx context.Context, auth Auth, projectID string) ([]models.RfqFile, error) {
	var files []models.RfqFile
	if err := c.doJSON(ctx, auth, http.MethodGet, projectPath(projectID, "/rfq-files"), nil, nil, &files, "Failed to fetch RFQ files"); err != nil {
		return nil, err
	}
	return files, nil
}

// UploadFile posts a single file as the multipart field "file".
func (c *Client) UploadFile(ctx context.Context, auth Auth, projectID, filename string, content io.Reader) (*models.RfqFile, error) {
	var file models.RfqFile
	err := c.doMultipart(ctx, auth, projectPath(projectID, "/upload-rfq"), func(mw *multipart.Writer) error {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			return err
		}
		_, err = io.Copy(part, content)
		return err
	}, &file, "File upload failed")
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (c *Client) ParseFile(ctx context.Context, auth Auth, projectID, fileID string) (*models.ParseResult, error) {
	var result models.ParseResult
	body := models.ParseRequest{FileID: fileID}
	if err := c.doJSON(ctx, auth, http.MethodPost, projectPath(projectID, "/parse-rfq"), nil, body, &result, "RFQ parsing failed"); err != nil {
		return nil, err
	}
	if result.Items == nil {
		result.Items = []models.RfqItem{}
	}
	return &result, nil
}

func (c *Client) DownloadFile(ctx context.Context, auth Auth, projectID, fileID string) (*Download, error) {
	path := projectPath(projectID, fmt.Sprintf("/rfq-files/%s/download", url.PathEscape(fileID)))
	return c.stream(ctx, auth, path, "Failed to download file")
}

func (c *Client) ListItems(ctx context.Context, auth Auth, projectID string) ([]models.RfqItem, error) {
	var items []models.RfqItem
	if err := c.doJSON(ctx, auth, http.MethodGet, projectPath(projectID, "/rfq-items"), nil, nil, &items, "Failed to get RFQ data"); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateItem PATCHes only the fields present in patch.
func (c *Client) UpdateItem(ctx context.Context, auth Auth, itemID string, patch map[string]any) (*models.RfqItem, error) {
	var item models.RfqItem
	path := "/projects/rfq-items/" + url.PathEscape(itemID)
	if err := c.doJSON(ctx, auth, http.MethodPatch, path, nil, patch, &item, "Failed to update item"); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) BatchDeleteItems(ctx context.Context, auth Auth, projectID string, itemIDs []string) (*models.BatchDeleteResult, error) {
	var result models.BatchDeleteResult
	body := models.BatchDeleteRequest{ItemIDs: append([]string{}, itemIDs...)}
	if err := c.doJSON(ctx, auth, http.MethodPost, projectPath(projectID, "/rfq-items/batch-delete"), nil, body, &result, "Failed to delete items"); err != nil {
		return nil, err
	}
	return &result, nil
}
