package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartrfq/desk/internal/api/middleware"
	"smartrfq/desk/internal/models"
	"smartrfq/desk/internal/services"
)

// RestSupplierHandler handles REST requests for suppliers.
type RestSupplierHandler struct {
	supplierService services.ISupplierService
}

// NewRestSupplierHandler creates a new RestSupplierHandler.
func NewRestSupplierHandler(supplierService services.ISupplierService) *RestSupplierHandler {
	return &RestSupplierHandler{supplierService: supplierService}
}

// ListSuppliers handles GET /v1/suppliers
func (h *RestSupplierHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.supplierService.List(c.Request.Context(), middleware.CallerFrom(c), c.Query("q"))
	if err != nil {
		respondError(c, err, "Failed to fetch suppliers", nil)
		return
	}
	respond(c, http.StatusOK, suppliers)
}

// CreateSupplier handles POST /v1/suppliers
func (h *RestSupplierHandler) CreateSupplier(c *gin.Context) {
	var form models.SupplierForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Supplier name is required", "notices": notices(c)})
		return
	}
	suppliers, err := h.supplierService.Create(c.Request.Context(), middleware.CallerFrom(c), form)
	if err != nil {
		respondError(c, err, "Failed to create supplier", nil)
		return
	}
	respond(c, http.StatusCreated, suppliers)
}

// UpdateSupplier handles PUT /v1/suppliers/:id
func (h *RestSupplierHandler) UpdateSupplier(c *gin.Context) {
	var form models.SupplierForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Supplier name is required", "notices": notices(c)})
		return
	}
	suppliers, err := h.supplierService.Update(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), form)
	if err != nil {
		respondError(c, err, "Failed to update supplier", nil)
		return
	}
	respond(c, http.StatusOK, suppliers)
}

// DeleteSupplier handles DELETE /v1/suppliers/:id
func (h *RestSupplierHandler) DeleteSupplier(c *gin.Context) {
	suppliers, err := h.supplierService.Delete(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to delete supplier", nil)
		return
	}
	respond(c, http.StatusOK, suppliers)
}

// SyncUser handles POST /v1/suppliers/sync
func (h *RestSupplierHandler) SyncUser(c *gin.Context) {
	if err := h.supplierService.SyncUser(c.Request.Context(), middleware.CallerFrom(c)); err != nil {
		respondError(c, err, "Failed to sync user", nil)
		return
	}
	respond(c, http.StatusOK, "synced")
}
