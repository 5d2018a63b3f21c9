package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"platconf/cli"
	"platconf/config"
	"platconf/database"
	"platconf/handlers"
	"platconf/hub"
	"platconf/secrets"
	"platconf/service"
	"platconf/storage"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load environment variables and parse CLI flags
	config.ParseFlags()

	logFile, err := setupLogging(config.Settings.LogFilePath)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// Check if CLI mode is requested
	if config.Settings.CLIMode {
		mainCLI()
		return
	}

	log.Println("Configuration service starting up...")

	// Initialize database
	if err := database.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Build the secret codec from the process-wide key
	codec, err := secrets.NewCodec(config.Settings.EncryptionKey)
	if err != nil {
		log.Fatalf("Failed to initialize secret codec: %v", err)
	}

	// Process-scoped observer registry for the settings channel
	eventHub := hub.New()

	store := storage.NewLocalStore(config.Settings.UploadDir)

	// Initialize services
	service.InitServices(database.DB, codec, eventHub, store)

	// Seed the default settings catalog (idempotent)
	if config.Settings.SeedDefaults {
		if err := service.GlobalServices.Settings.InitializeDefaults(); err != nil {
			log.Printf("Warning: Failed to seed default settings: %v", err)
		}
	}

	// Set Gin mode
	if config.Settings.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Direct Gin logs to the configured log file
	gin.DefaultWriter = log.Writer()
	gin.DefaultErrorWriter = log.Writer()
	gin.DisableConsoleColor()

	// Create router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Uploaded branding assets
	r.Static("/uploads", store.Dir())

	// Settings change channel (one-way fan-out to observers)
	r.GET("/ws/settings", eventHub.HandleWS)

	// API routes
	api := r.Group("/api")
	api.Use(handlers.ResolveTenant())
	{
		// Settings registry routes
		api.GET("/settings", handlers.ListSettings)
		api.GET("/settings/category/:category", handlers.ListSettingsByCategory)
		api.GET("/settings/:key", handlers.GetSetting)
		api.PUT("/settings/:key", handlers.UpdateSetting)
		api.DELETE("/settings/:key", handlers.DeleteSetting)
		api.POST("/settings/bulk", handlers.BulkUpdateSettings)
		api.POST("/settings/initialize", handlers.InitializeDefaultSettings)

		// Tenant platform config routes
		api.GET("/platform-config", handlers.GetPlatformConfig)
		api.GET("/platform-config/branding", handlers.GetBranding)
		api.PUT("/platform-config/branding", handlers.UpdateBranding)
		api.GET("/platform-config/features", handlers.GetFeatures)
		api.PUT("/platform-config/features", handlers.UpdateFeatures)
		api.GET("/platform-config/integrations", handlers.GetIntegrations)
		api.PUT("/platform-config/integrations", handlers.UpdateIntegrations)
		api.POST("/platform-config/assets/:type", handlers.UploadAsset)

		// Tenant registry routes
		api.GET("/tenants", handlers.ListTenants)
		api.POST("/tenants", handlers.CreateTenant)
		api.GET("/tenants/:id", handlers.GetTenant)
		api.DELETE("/tenants/:id", handlers.DeleteTenant)

		// Health and diagnostics routes
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/stats", func(c *gin.Context) {
			c.JSON(http.StatusOK, eventHub.ConnectionStats())
		})
	}

	// Create HTTP server
	addr := fmt.Sprintf("0.0.0.0:%d", config.Settings.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on http://127.0.0.1:%d", config.Settings.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for OS interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Received interrupt signal")

	log.Println("Configuration service shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	if err := database.CloseDB(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("Shutdown complete")
}

// mainCLI runs the interactive HTTP client against a running server.
func mainCLI() {
	c := cli.NewCLI(config.Settings.CLIServer)
	c.Start()
}
