package services

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"smartrfq/desk/internal/backend"
	"smartrfq/desk/internal/models"
	"smartrfq/desk/internal/notify"
)

// ISupplierService defines supplier CRUD operations.
type ISupplierService interface {
	List(ctx context.Context, c Caller, search string) ([]models.Supplier, error)
	Create(ctx context.Context, c Caller, form models.SupplierForm) ([]models.Supplier, error)
	Update(ctx context.Context, c Caller, id string, form models.SupplierForm) ([]models.Supplier, error)
	Delete(ctx context.Context, c Caller, id string) ([]models.Supplier, error)
	SyncUser(ctx context.Context, c Caller) error
}

// supplierService implements ISupplierService.
type supplierService struct {
	client   backend.IClient
	notifier notify.Notifier
}

// NewSupplierService creates a new SupplierService.
func NewSupplierService(client backend.IClient, notifier notify.Notifier) ISupplierService {
	return &supplierService{client: client, notifier: notifier}
}

// SyncUser upserts the caller on the backend. A 500 from the backend is logged
// and ignored.
func (s *supplierService) SyncUser(ctx context.Context, c Caller) error {
	err := s.client.SyncUser(ctx, c.Auth())
	if err == nil {
		return nil
	}
	if backend.IsStatus(err, http.StatusInternalServerError) {
		log.Printf("Sync-user for %s returned 500, continuing: %v", c.UserID, err)
		return nil
	}
	return err
}

// List syncs the user first; a failed sync never blocks the listing.
func (s *supplierService) List(ctx context.Context, c Caller, search string) ([]models.Supplier, error) {
	if err := s.SyncUser(ctx, c); err != nil {
		log.Printf("Sync-user for %s failed before listing suppliers: %v", c.UserID, err)
	}
	suppliers, err := s.client.ListSuppliers(ctx, c.Auth())
	if err != nil {
		log.Printf("Failed to fetch suppliers for %s: %v", c.UserID, err)
		s.notifier.Notify(ctx, c.Key(), notify.Error("Failed to fetch suppliers", backend.Detail(err, "Failed to fetch suppliers")))
		return nil, err
	}
	filtered := make([]models.Supplier, 0, len(suppliers))
	for _, sup := range suppliers {
		if sup.Matches(search) {
			filtered = append(filtered, sup)
		}
	}
	return filtered, nil
}

func (s *supplierService) Create(ctx context.Context, c Caller, form models.SupplierForm) ([]models.Supplier, error) {
	in := form.Input()
	if in.Name == "" {
		return nil, &ValidationError{Fields: []string{"name"}}
	}
	supplier, err := s.client.CreateSupplier(ctx, c.Auth(), in)
	if err != nil {
		s.notifier.Notify(ctx, c.Key(), notify.Error("Failed to create supplier", backend.Detail(err, "Failed to create supplier")))
		return nil, err
	}
	s.notifier.Notify(ctx, c.Key(), notify.Success("Supplier created", fmt.Sprintf("Supplier %q has been created", supplier.Name)))
	return s.List(ctx, c, "")
}

func (s *supplierService) Update(ctx context.Context, c Caller, id string, form models.SupplierForm) ([]models.Supplier, error) {
	in := form.Input()
	if in.Name == "" {
		return nil, &ValidationError{Fields: []string{"name"}}
	}
	supplier, err := s.client.UpdateSupplier(ctx, c.Auth(), id, in)
	if err != nil {
		s.notifier.Notify(ctx, c.Key(), notify.Error("Failed to update supplier", backend.Detail(err, "Failed to update supplier")))
		return nil, err
	}
	s.notifier.Notify(ctx, c.Key(), notify.Success("Supplier updated", fmt.Sprintf("Supplier %q has been updated", supplier.Name)))
	return s.List(ctx, c, "")
}

func (s *supplierService) Delete(ctx context.Context, c Caller, id string) ([]models.Supplier, error) {
	if err := s.client.DeleteSupplier(ctx, c.Auth(), id); err != nil {
		s.notifier.Notify(ctx, c.Key(), notify.Error("Failed to delete supplier", backend.Detail(err, "Failed to delete supplier")))
		return nil, err
	}
	s.notifier.Notify(ctx, c.Key(), notify.Success("Supplier deleted", ""))
	return s.List(ctx, c, "")
}
