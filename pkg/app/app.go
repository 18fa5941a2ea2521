// Package app 提供应用程序的初始化和装配.
package app

import (
	contextPkg "context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/drivevault/pkg/configs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/storage"
	"github.com/yeisme/drivevault/pkg/log"
	"github.com/yeisme/drivevault/pkg/metrics"
	"github.com/yeisme/drivevault/pkg/middleware"
	"github.com/yeisme/drivevault/pkg/rule"
)

type App struct {
	Engine  *gin.Engine
	config  *configs.AppConfig
	manager *storage.Manager
}

// NewApp 初始化配置、存储、监控与中间件链，返回可运行的应用实例.
func NewApp(configPath string) *App {
	ctx := contextPkg.Background()
	engine := gin.New()

	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	config := configs.GetConfig()

	if err := rule.RegisterDomainRules(); err != nil {
		fmt.Printf("Error registering validation rules: %v\n", err)
		os.Exit(1)
	}

	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	if err := migrate(manager); err != nil {
		fmt.Printf("Error migrating database: %v\n", err)
		os.Exit(1)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	if err := engine.SetTrustedProxies(config.Server.TrustedProxies); err != nil {
		fmt.Printf("Error setting trusted proxies: %v\n", err)
		os.Exit(1)
	}

	engine.Use(
		gin.Recovery(),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(config.Server),
		middleware.GzipMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.StorageMiddleware(manager),
	)

	if config.RateLimit.Enabled {
		engine.Use(middleware.RateLimitMiddleware(config.RateLimit))
	}

	if config.Breaker.Enabled {
		engine.Use(middleware.CircuitBreakerMiddleware(config.Breaker))
	}

	if config.Auth.Enabled {
		engine.Use(middleware.AuthMiddleware(config.Auth))
	}

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	return &App{
		Engine:  engine,
		config:  config,
		manager: manager,
	}
}

// migrate 同步数据库表结构.
func migrate(manager *storage.Manager) error {
	if manager.DB == nil {
		return fmt.Errorf("db client not initialized")
	}

	return manager.DB.GetDB().AutoMigrate(
		&model.User{},
		&model.Folder{},
		&model.File{},
		&model.Permission{},
		&model.ShareLink{},
	)
}

func (a *App) Run() error {
	return a.Engine.Run(fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port))
}

// Close 释放存储资源.
func (a *App) Close() error {
	if a.manager == nil {
		return nil
	}

	return a.manager.Close()
}
