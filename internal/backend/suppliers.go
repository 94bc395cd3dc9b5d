package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"

	"smartrfq/desk/internal/models"
)

// ListSuppliers returns the organization's suppliers. Payloads that are not a
// JSON array are coerced: an object with an "items" array yields those items,
// a single supplier object yields a one element slice, anything else is empty.
func (c *Client) ListSuppliers(ctx context.Context, auth Auth) ([]models.Supplier, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, auth, http.MethodGet, "/suppliers", nil, nil, &raw, "Failed to fetch suppliers"); err != nil {
		return nil, err
	}
	return coerceSuppliers(raw), nil
}

func coerceSuppliers(raw json.RawMessage) []models.Supplier {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []models.Supplier{}
	}
	var list []models.Supplier
	if err := json.Unmarshal(raw, &list); err == nil {
		if list == nil {
			list = []models.Supplier{}
		}
		return list
	}
	var wrapped struct {
		Items []models.Supplier `json:"items"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Items != nil {
		return wrapped.Items
	}
	var single models.Supplier
	if err := json.Unmarshal(raw, &single); err == nil && single.ID != "" {
		return []models.Supplier{single}
	}
	log.Printf("Unexpected suppliers payload, treating as empty: %.120s", string(raw))
	return []models.Supplier{}
}

func (c *Client) CreateSupplier(ctx context.Context, auth Auth, in models.SupplierInput) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := c.doJSON(ctx, auth, http.MethodPost, "/suppliers", nil, in, &supplier, "Failed to create supplier"); err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (c *Client) UpdateSupplier(ctx context.Context, auth Auth, id string, in models.SupplierInput) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := c.doJSON(ctx, auth, http.MethodPut, "/suppliers/"+url.PathEscape(id), nil, in, &supplier, "Failed to update supplier"); err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (c *Client) DeleteSupplier(ctx context.Context, auth Auth, id string) error {
	return c.doJSON(ctx, auth, http.MethodDelete, "/suppliers/"+url.PathEscape(id), nil, nil, nil, "Failed to delete supplier")
}
