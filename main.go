package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"smartrfq/desk/internal/api"
	"smartrfq/desk/internal/auth"
	"smartrfq/desk/internal/backend"
	"smartrfq/desk/internal/cache"
	"smartrfq/desk/internal/config"
	"smartrfq/desk/internal/console"
	"smartrfq/desk/internal/notify"
	"smartrfq/desk/internal/selection"
	"smartrfq/desk/internal/services"
	"smartrfq/desk/internal/storage"
	"smartrfq/desk/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (background tasks), 'all' (default), 'console' (terminal UI)")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	backendClient := backend.NewClient(cfg)

	// The console runs as its own CONSOLE_TOKEN with local state, and the
	// worker never verifies tokens.
	allowUnverified := cfg.InsecureSkipTokenVerify || cfg.RunMode == "console" || cfg.RunMode == "bg"
	verifier, err := auth.NewIdentityVerifier(cfg.IdentityPublicKeyPEM, allowUnverified)
	if err != nil {
		log.Fatalf("Failed to initialize identity verifier: %v", err)
	}
	if strings.TrimSpace(cfg.IdentityPublicKeyPEM) == "" && (cfg.RunMode == "api" || cfg.RunMode == "all") {
		log.Println("WARNING: INSECURE_SKIP_TOKEN_VERIFY set: identity tokens are decoded and confirmed with the backend sync-user call.")
		verifier = auth.NewConfirmingVerifier(verifier, auth.BackendConfirmer(backendClient), 5*time.Minute)
	}

	if cfg.RunMode == "console" {
		if err := runConsole(cfg, verifier, backendClient); err != nil {
			log.Fatalf("Console error: %v", err)
		}
		return
	}

	// Initialize Cache (Redis)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Printf("Error disconnecting from Redis: %v", err)
		}
	}()

	// Setup Composite Notifier
	// The composite notifier always includes the Redis feed and the logger.
	feed := notify.NewRedisNotifier(redisClient, cfg.NoticeFeedSize, cfg.SessionTTL)
	compositeNotifier := notify.NewCompositeNotifier(feed, notify.NewLoggingNotifier())

	// Optionally add FileNotifier if LOG_NOTICES is set
	if cfg.NoticeLogPath != "" {
		log.Printf("LOG_NOTICES set to '%s', enabling file notice logger.", cfg.NoticeLogPath)
		fileNotifier, err := notify.NewFileNotifier(cfg.NoticeLogPath)
		if err != nil {
			log.Printf("WARNING: Failed to initialize file notifier (LOG_NOTICES='%s'): %v. Proceeding without file logging.", cfg.NoticeLogPath, err)
		} else {
			compositeNotifier.AddNotifier(fileNotifier)
			log.Println("File notice logger added to composite notifier.")
		}
	}

	// Initialize S3 archive (optional)
	var archive storage.IAttachmentArchive
	if cfg.ArchiveEnabled() {
		s3Client, err := storage.NewS3Client(context.TODO(), cfg)
		if err != nil {
			log.Fatalf("Failed to load AWS config for S3 client: %v", err)
		}
		archive = storage.NewS3Archive(s3Client, cfg.ArchiveS3Bucket)
		log.Printf("Attachment archive enabled (bucket '%s').", cfg.ArchiveS3Bucket)
	}

	// Initialize Task Client
	taskClient := tasks.NewClient(redisClient)
	defer taskClient.Close()
	jobQueue := tasks.NewQueue(taskClient, cfg.ArchiveEnabled())

	// Initialize Services needed by handlers and/or task processor
	selectionStore := selection.NewStore(selection.NewRedisPersister(redisClient, 0))
	sessions := services.NewRedisSessionStore(redisClient, cfg.SessionTTL)
	supplierService := services.NewSupplierService(backendClient, compositeNotifier)
	svc := api.Services{
		Projects:    services.NewProjectService(backendClient, selectionStore, compositeNotifier),
		Suppliers:   supplierService,
		Workspace:   services.NewWorkspaceService(backendClient, sessions, selectionStore, compositeNotifier, jobQueue),
		Dashboard:   services.NewDashboardService(backendClient, selectionStore, compositeNotifier, jobQueue, time.Now),
		Email:       services.NewEmailService(backendClient),
		Attachments: services.NewAttachmentService(sessions, archive),
		Feed:        feed,
	}

	// Initialize Task Processor
	taskProcessor := tasks.NewTaskProcessor(supplierService, archive, compositeNotifier)

	// WaitGroup for managing goroutines
	var wg sync.WaitGroup

	// Channel to signal shutdown from Service API
	shutdownChan := make(chan struct{}, 1) // Buffered channel

	// Start Service API (always runs, localhost only)
	serviceSrv := startServiceAPI(&wg, cfg, redisClient, feed, shutdownChan)

	// --- Mode-specific servers ---
	var mainApiSrv *http.Server
	var backgroundTaskSrv *asynq.Server

	fmt.Printf("Starting application in '%s' mode...\n", cfg.RunMode)

	apiMode := func() {
		fmt.Println("Starting main API server...")
		mainApiRouter := api.SetupRouter(cfg, verifier, svc)
		mainApiSrv = &http.Server{
			Addr:    ":" + cfg.ApiPort,
			Handler: mainApiRouter,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Printf("Main API listening on :%s\n", cfg.ApiPort)
			if err := mainApiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Main API ListenAndServe error: %v", err)
			}
			fmt.Println("Main API server stopped.")
		}()
	}

	bgMode := func() {
		fmt.Println("Starting background worker...")
		var mux *asynq.ServeMux
		backgroundTaskSrv, mux = tasks.SetupServer(redisClient, taskProcessor)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Println("Background task server starting...")
			if err := backgroundTaskSrv.Run(mux); err != nil {
				log.Fatalf("Background task server error: %v", err)
			}
			fmt.Println("Background task server stopped.")
		}()
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "all":
		apiMode()
		bgMode()
	default:
		log.Fatalf("Invalid run mode specified in config: %s.", cfg.RunMode)
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		fmt.Printf("\nReceived signal: %s. Shutting down gracefully...\n", sig)
	case <-shutdownChan: // Listen for shutdown signal from Service API
		fmt.Println("\nShutdown requested via Service API. Shutting down gracefully...")
	}

	// Create context with timeout for shutdown
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	fmt.Println("Shutting down Service API server...")
	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		log.Printf("Service API server shutdown error: %v", err)
	}

	if mainApiSrv != nil {
		fmt.Println("Shutting down Main API server...")
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Printf("Main API server shutdown error: %v", err)
		}
	}

	if backgroundTaskSrv != nil {
		fmt.Println("Shutting down Background Task server...")
		backgroundTaskSrv.Shutdown()
	}

	// Wait for all server goroutines to finish
	fmt.Println("Waiting for servers to stop...")
	wg.Wait()

	fmt.Println("Server gracefully stopped")
}

func startServiceAPI(wg *sync.WaitGroup, cfg *config.Config, rdb *redis.Client, feed notify.Feed, shutdownChan chan<- struct{}) *http.Server {
	serviceSrv := &http.Server{
		Addr:    "127.0.0.1:" + cfg.ServiceApiPort,
		Handler: api.SetupServiceRouter(rdb, feed, shutdownChan),
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		fmt.Printf("Service API listening on 127.0.0.1:%s\n", cfg.ServiceApiPort)
		if err := serviceSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Service API ListenAndServe error: %v", err)
		}
		fmt.Println("Service API server stopped.")
	}()
	return serviceSrv
}

// runConsole runs the terminal UI for the CONSOLE_TOKEN identity. State is
// kept in memory and the selected project in CONSOLE_STATE_FILE.
func runConsole(cfg *config.Config, verifier auth.IIdentityVerifier, client backend.IClient) error {
	claims, err := verifier.Verify(cfg.ConsoleToken)
	if err != nil {
		return fmt.Errorf("invalid CONSOLE_TOKEN: %w", err)
	}
	orgID := cfg.ConsoleOrgID
	if orgID == "" {
		orgID = claims.OrgID
	}
	caller := services.Caller{UserID: claims.UserID(), OrgID: orgID, Token: cfg.ConsoleToken}

	logPath := filepath.Join(filepath.Dir(cfg.ConsoleStateFile), "console.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create console state directory: %w", err)
	}
	logFile, err := tea.LogToFile(logPath, "console")
	if err != nil {
		return fmt.Errorf("failed to open console log: %w", err)
	}
	defer logFile.Close()

	feed := notify.NewMemoryFeed(cfg.NoticeFeedSize)
	notifier := notify.NewCompositeNotifier(feed, notify.NewLoggingNotifier())
	if cfg.NoticeLogPath != "" {
		if fileNotifier, err := notify.NewFileNotifier(cfg.NoticeLogPath); err != nil {
			log.Printf("WARNING: Failed to initialize file notifier (LOG_NOTICES='%s'): %v", cfg.NoticeLogPath, err)
		} else {
			notifier.AddNotifier(fileNotifier)
		}
	}

	store := selection.NewStore(selection.NewFilePersister(cfg.ConsoleStateFile))
	sessions := services.NewMemorySessionStore()
	projects := services.NewProjectService(client, store, notifier)
	workspace := services.NewWorkspaceService(client, sessions, store, notifier, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()
	return console.Run(ctx, caller, projects, workspace, store, feed)
}
