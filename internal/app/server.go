package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fisker/nexforms-backend/internal/api/router"
	"github.com/fisker/nexforms-backend/pkg/config"
	"github.com/fisker/nexforms-backend/pkg/database"
	"github.com/fisker/nexforms-backend/pkg/logger"
	pkgredis "github.com/fisker/nexforms-backend/pkg/redis"
)

// StartServer 启动 HTTP 服务器
func StartServer(cfg *config.Config, handlers *Handlers) {
	// Setup router
	r := router.Setup(
		handlers.FormType,
		handlers.DataType,
		handlers.FieldType,
		handlers.Category,
		handlers.Form,
		handlers.FormDesign,
		handlers.FormDraft,
		handlers.BulkUpload,
		cfg.Security.JWTSecret,
		time.Duration(cfg.Redis.DropdownTTL)*time.Second,
		cfg.Server.Mode,
	)

	// Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.APIPort)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	printStartupBanner(cfg)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Infof("\nShutting down gracefully...")

	// Create shutdown context with 10s timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// 1. Shutdown HTTP server
	logger.Infof("  → Stopping HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Infof("  Warning: HTTP server shutdown error: %v", err)
	} else {
		logger.Infof("  ✓ HTTP server stopped")
	}

	// 2. Close database
	logger.Infof("  → Closing database...")
	database.Close()
	logger.Infof("  ✓ Database closed")

	// 3. Close Redis if enabled
	if cfg.Redis.Enabled {
		logger.Infof("  → Closing Redis...")
		pkgredis.Close()
		logger.Infof("  ✓ Redis closed")
	}

	logger.Infof("")
	logger.Infof("Shutdown complete")
	logger.Infof("")
}

// printStartupBanner 打印启动横幅
func printStartupBanner(cfg *config.Config) {
	logger.Infof("")
	logger.Infof("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Infof("NexForms Server - Dynamic Form Definition Platform")
	logger.Infof("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Infof("")
	logger.Infof("Features:")
	logger.Infof("   • Form Types / Data Types / Field Types catalog")
	logger.Infof("   • Dynamic form designer with sections and fields")
	logger.Infof("   • SCD Type 2 versioning for workflow-linked forms")
	logger.Infof("   • Draft autosave with version history")
	logger.Infof("   • Bulk import/export via Excel templates")
	logger.Infof("")
	logger.Infof("Listening on :%d", cfg.Server.APIPort)
	logger.Infof("")
	logger.Infof("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Infof("")
}
