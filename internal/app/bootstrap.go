package app

import (
	"log"
	"os"

	"github.com/fisker/nexforms-backend/pkg/config"
	"github.com/fisker/nexforms-backend/pkg/database"
	"github.com/fisker/nexforms-backend/pkg/logger"
	pkgredis "github.com/fisker/nexforms-backend/pkg/redis"
)

// Bootstrap 初始化基础设施（logger, database, redis）
func Bootstrap(cfgPath string) (*config.Config, error) {
	// 支持通过环境变量指定配置文件路径
	if cfgPath == "" {
		cfgPath = os.Getenv("NEXFORMS_CONFIG")
		if cfgPath == "" {
			cfgPath = "config/config.yaml"
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	// Initialize logger
	if err := logger.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize database
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (optional, for dropdown response cache)
	if err := pkgredis.Init(&cfg.Redis); err != nil {
		logger.Warnf("Redis initialization failed: %v", err)
		logger.Info("   → Dropdown responses will be served without cache")
	} else if cfg.Redis.Enabled {
		logger.Infof("Redis initialized successfully - dropdown cache enabled (TTL: %ds)", cfg.Redis.DropdownTTL)
	} else {
		logger.Info("Redis is disabled in config - dropdown cache off")
	}

	return cfg, nil
}
