package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smartrfq/desk/internal/api/handlers"
	"smartrfq/desk/internal/backend"
	"smartrfq/desk/internal/models"
	"smartrfq/desk/internal/services"
)

func setupDashboardRouter(svc services.IDashboardService) *gin.Engine {
	r := newTestEngine()
	r.GET("/v1/dashboard", handlers.NewRestDashboardHandler(svc).GetDashboard)
	return r
}

func TestRestDashboardHandler_GetDashboard(t *testing.T) {
	mockSvc := new(MockDashboardService)
	router := setupDashboardRouter(mockSvc)
	mockSvc.On("Load", mock.Anything, testCaller, "", models.EmailFilterAll).Return(&models.Dashboard{
		Stats:       models.DashboardStats{Projects: 3},
		EmailFilter: models.EmailFilterAll,
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/dashboard", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody struct {
		Data models.Dashboard `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, 3, respBody.Data.Stats.Projects)
	assert.Equal(t, models.EmailFilterAll, respBody.Data.EmailFilter)
	mockSvc.AssertExpectations(t)
}

func TestRestDashboardHandler_GetDashboard_ProjectAndFilter(t *testing.T) {
	mockSvc := new(MockDashboardService)
	router := setupDashboardRouter(mockSvc)
	mockSvc.On("Load", mock.Anything, testCaller, "p1", models.EmailFilterFailed).
		Return(&models.Dashboard{ProjectID: "p1", EmailFilter: models.EmailFilterFailed}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/dashboard?project_id=p1&filter=fail", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"project_id":"p1"`)
	assert.Contains(t, w.Body.String(), `"email_filter":"fail"`)
	mockSvc.AssertExpectations(t)
}

func TestRestDashboardHandler_GetDashboard_UnknownProject(t *testing.T) {
	mockSvc := new(MockDashboardService)
	router := setupDashboardRouter(mockSvc)
	mockSvc.On("Load", mock.Anything, testCaller, "gone", models.EmailFilterAll).
		Return(nil, &backend.APIError{Status: http.StatusNotFound, Detail: "Project not found"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/dashboard?project_id=gone", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Project not found")
	mockSvc.AssertExpectations(t)
}

func TestRestDashboardHandler_GetDashboard_ServiceError(t *testing.T) {
	mockSvc := new(MockDashboardService)
	router := setupDashboardRouter(mockSvc)
	mockSvc.On("Load", mock.Anything, testCaller, "", models.EmailFilterAll).
		Return(nil, errors.New("dial tcp: connection refused"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/dashboard", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to load dashboard")
	assert.NotContains(t, w.Body.String(), "connection refused")
	mockSvc.AssertExpectations(t)
}
