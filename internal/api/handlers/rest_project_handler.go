package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"smartrfq/desk/internal/api/middleware"
	"smartrfq/desk/internal/models"
	"smartrfq/desk/internal/services"
)

// RestProjectHandler handles REST requests for projects.
type RestProjectHandler struct {
	projectService services.IProjectService
}

// NewRestProjectHandler creates a new RestProjectHandler.
func NewRestProjectHandler(projectService services.IProjectService) *RestProjectHandler {
	return &RestProjectHandler{projectService: projectService}
}

// listQuery reads the projects screen filters. Mutations accept the same
// parameters so the refreshed list matches what the user is looking at.
func listQuery(c *gin.Context) services.ProjectListQuery {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize > 100 {
		pageSize = 100
	}
	return services.ProjectListQuery{
		Page:     page,
		PageSize: pageSize,
		Status:   models.ProjectStatus(strings.ToLower(c.Query("status"))),
		Search:   c.Query("q"),
	}
}

// ListProjects handles GET /v1/projects
func (h *RestProjectHandler) ListProjects(c *gin.Context) {
	listing, err := h.projectService.List(c.Request.Context(), middleware.CallerFrom(c), listQuery(c))
	if err != nil {
		respondError(c, err, "Failed to fetch projects", nil)
		return
	}
	respond(c, http.StatusOK, listing)
}

// CreateProject handles POST /v1/projects
func (h *RestProjectHandler) CreateProject(c *gin.Context) {
	var in models.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project name is required", "notices": notices(c)})
		return
	}
	listing, err := h.projectService.Create(c.Request.Context(), middleware.CallerFrom(c), in, listQuery(c))
	if err != nil {
		respondError(c, err, "Failed to create project", nil)
		return
	}
	respond(c, http.StatusCreated, listing)
}

// UpdateProject handles PUT /v1/projects/:id
func (h *RestProjectHandler) UpdateProject(c *gin.Context) {
	var in models.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project name is required", "notices": notices(c)})
		return
	}
	listing, err := h.projectService.Update(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), in, listQuery(c))
	if err != nil {
		respondError(c, err, "Failed to update project", nil)
		return
	}
	respond(c, http.StatusOK, listing)
}

// DeleteProject handles DELETE /v1/projects/:id
func (h *RestProjectHandler) DeleteProject(c *gin.Context) {
	listing, err := h.projectService.Delete(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), listQuery(c))
	if err != nil {
		respondError(c, err, "Failed to delete project", nil)
		return
	}
	respond(c, http.StatusOK, listing)
}

// GetProject handles GET /v1/projects/:id
func (h *RestProjectHandler) GetProject(c *gin.Context) {
	detail, err := h.projectService.Detail(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load project", nil)
		return
	}
	respond(c, http.StatusOK, detail)
}

// GetSelector handles GET /v1/projects/selector, the global project picker.
func (h *RestProjectHandler) GetSelector(c *gin.Context) {
	selector, err := h.projectService.Selector(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err, "Failed to fetch projects", nil)
		return
	}
	respond(c, http.StatusOK, selector)
}
