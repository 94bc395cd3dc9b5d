package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"smartrfq/desk/internal/api/handlers"
	"smartrfq/desk/internal/api/middleware"
	"smartrfq/desk/internal/auth"
	"smartrfq/desk/internal/config"
	"smartrfq/desk/internal/notify"
	"smartrfq/desk/internal/services"
)

// Services are the screen services served by the dashboard API.
type Services struct {
	Projects    services.IProjectService
	Suppliers   services.ISupplierService
	Workspace   services.IWorkspaceService
	Dashboard   services.IDashboardService
	Email       services.IEmailService
	Attachments services.IAttachmentService
	Feed        notify.Feed
}

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, verifier auth.IIdentityVerifier, svc Services) *gin.Engine {
	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)

	// Apply global middleware first (order matters)
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigin, cfg.OrgHeader))
	r.Use(rateLimiter.Limit())
	r.Use(middleware.NoticesMiddleware())

	jsonApiHandler := handlers.NewJsonApiHandler(svc.Workspace)
	workspaceHandler := handlers.NewRestWorkspaceHandler(svc.Workspace, svc.Attachments)
	projectHandler := handlers.NewRestProjectHandler(svc.Projects)
	supplierHandler := handlers.NewRestSupplierHandler(svc.Suppliers)
	dashboardHandler := handlers.NewRestDashboardHandler(svc.Dashboard)
	conversationHandler := handlers.NewRestConversationHandler(svc.Email)
	notificationHandler := handlers.NewRestNotificationHandler(svc.Feed)

	v1 := r.Group("/v1")
	{
		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		authRequired := v1.Group("/")
		authRequired.Use(middleware.AuthMiddleware(verifier, cfg.OrgHeader))
		{
			authRequired.GET("/dashboard", dashboardHandler.GetDashboard)

			// Projects
			authRequired.GET("/projects", projectHandler.ListProjects)
			authRequired.POST("/projects", projectHandler.CreateProject)
			authRequired.GET("/projects/selector", projectHandler.GetSelector)
			authRequired.GET("/projects/:id", projectHandler.GetProject)
			authRequired.PUT("/projects/:id", projectHandler.UpdateProject)
			authRequired.DELETE("/projects/:id", projectHandler.DeleteProject)
			authRequired.POST("/projects/:id/templates", conversationHandler.GenerateTemplate)
			authRequired.GET("/projects/:id/conversations", conversationHandler.ListProjectConversations)
			authRequired.GET("/projects/:id/history", conversationHandler.ProjectHistory)

			// Suppliers
			authRequired.GET("/suppliers", supplierHandler.ListSuppliers)
			authRequired.POST("/suppliers", supplierHandler.CreateSupplier)
			authRequired.POST("/suppliers/sync", supplierHandler.SyncUser)
			authRequired.PUT("/suppliers/:id", supplierHandler.UpdateSupplier)
			authRequired.DELETE("/suppliers/:id", supplierHandler.DeleteSupplier)

			// Conversations
			authRequired.GET("/conversations/:id/emails", conversationHandler.ConversationEmails)
			authRequired.GET("/conversations/:id/rfq-status", conversationHandler.ConversationRfqStatus)
			authRequired.POST("/conversations/:id/send-email", conversationHandler.SendConversationEmail)
			authRequired.POST("/conversations/:id/status/:action", conversationHandler.SetConversationStatus)

			// RFQ workspace
			authRequired.POST("/workspace/api", jsonApiHandler.HandleRequest)
			authRequired.POST("/workspace/files", workspaceHandler.UploadFile)
			authRequired.GET("/workspace/files/:id/download", workspaceHandler.DownloadFile)
			authRequired.POST("/workspace/send", workspaceHandler.SendEmail)
			authRequired.GET("/workspace/export", workspaceHandler.ExportItems)
			authRequired.GET("/workspace/emails/:id/attachments", workspaceHandler.ListAttachments)

			// Header notifications dropdown
			authRequired.GET("/notifications", notificationHandler.ListNotifications)
			authRequired.DELETE("/notifications", notificationHandler.ClearNotifications)
		}
	}

	return r
}

// SetupServiceRouter configures and returns the service Gin engine. It is
// bound to localhost and used by operators and end-to-end tests.
func SetupServiceRouter(rdb *redis.Client, feed notify.Feed, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			log.Println("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
				log.Println("Shutdown signal sent successfully.")
			default:
				log.Println("Shutdown channel already signaled or blocked.")
			}
		case "health":
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if rdb != nil {
				if err := rdb.Ping(ctx).Err(); err != nil {
					c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": fmt.Sprintf("Redis unreachable: %v", err)})
					return
				}
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "ok"})
		case "getNotices":
			var args []string // Expect ["user_id:org_id"]
			if err := json.Unmarshal(req.Arguments, &args); err != nil || len(args) != 1 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [recipient]"})
				return
			}
			recent, err := feed.Recent(c.Request.Context(), args[0], 0)
			if err != nil {
				log.Printf("Service API: Error reading notices for %s: %v", args[0], err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to read notices"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "data": recent})
		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}
