package battle

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	custommiddleware "tsu-battle/internal/middleware"
	"tsu-battle/internal/modules/battle/engine"
	"tsu-battle/internal/modules/battle/handler"
	"tsu-battle/internal/modules/battle/service"
	"tsu-battle/internal/modules/battle/tasks"
	"tsu-battle/internal/pkg/i18n"
	"tsu-battle/internal/pkg/log"
	"tsu-battle/internal/pkg/metrics"
	"tsu-battle/internal/pkg/notify"
	redisClient "tsu-battle/internal/pkg/redis"
	"tsu-battle/internal/pkg/response"
	"tsu-battle/internal/pkg/trace"
	"tsu-battle/internal/pkg/validator"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/liangdas/mqant/conf"
	"github.com/liangdas/mqant/module"
	basemodule "github.com/liangdas/mqant/module/base"
	"github.com/liangdas/mqant/server"
	_ "github.com/lib/pq"
)

type BattleModule struct {
	basemodule.BaseModule
	db               *sql.DB
	redis            *redisClient.Client
	httpServer       *echo.Echo
	serviceContainer *service.ServiceContainer
	battleHandler    *handler.BattleHandler
	evictionTask     *tasks.EvictionTask
	respWriter       response.Writer
	schedulerCancel  context.CancelFunc
}

// GetType returns module type
func (m *BattleModule) GetType() string {
	return "battle"
}

// Version returns module version
func (m *BattleModule) Version() string {
	return "1.0.0"
}

// OnAppConfigurationLoaded 当App初始化时调用
func (m *BattleModule) OnAppConfigurationLoaded(app module.App) {
	m.BaseModule.OnAppConfigurationLoaded(app)
}

// OnInit module initialization
func (m *BattleModule) OnInit(app module.App, settings *conf.ModuleSettings) {
	metrics.SetServiceName("battle")
	// 按照 mqant 官方推荐：在每个模块的 OnInit 中配置服务注册参数
	// TTL = 30s, 心跳间隔 = 15s (TTL 必须大于心跳间隔)
	m.BaseModule.OnInit(m, app, settings,
		server.RegisterInterval(15*time.Second),
		server.RegisterTTL(30*time.Second),
	)

	// 1. Initialize database connection (optional - combat falls back to defaults)
	m.initDatabase(settings)

	// 2. Initialize Redis (optional - refresh cooldowns degrade to off)
	m.initRedis(settings)

	// 3. Initialize response writer
	m.initResponseWriter()

	// 4. Initialize HTTP server
	m.initHTTPServer()

	// 5. Initialize Services and Handlers
	m.initServicesAndHandlers()

	// 6. Setup routes
	m.setupRoutes()

	// 7. Start tick scheduler
	m.startScheduler()

	// 8. Start cron tasks
	m.startCronTasks()

	// 9. Start HTTP server in background
	go m.startHTTPServer(settings)

	m.GetServer().Options()
}

// initDatabase initializes database connection
// 战斗服没有数据库也能运行：角色数值回退到默认值，战报不落库
func (m *BattleModule) initDatabase(settings *conf.ModuleSettings) {
	// Read from environment variable first
	dbURL := os.Getenv("TSU_BATTLE_DATABASE_URL")
	if dbURL == "" {
		// Fallback to config file
		if settings != nil && settings.Settings != nil {
			dbURLInterface, ok := settings.Settings["database_url"]
			if ok {
				dbURL, _ = dbURLInterface.(string)
			}
		}
	}

	if dbURL == "" {
		fmt.Println("[Battle Module] TSU_BATTLE_DATABASE_URL not set, combat stats fall back to defaults")
		return
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		fmt.Printf("[Battle Module] Failed to open database: %v, combat stats fall back to defaults\n", err)
		return
	}

	// Test connection
	if err := db.Ping(); err != nil {
		fmt.Printf("[Battle Module] Failed to ping database: %v, combat stats fall back to defaults\n", err)
		return
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	m.db = db
	fmt.Println("[Battle Module] Database initialized successfully")

	// 启动数据库连接池监控
	go m.startDBPoolMonitoring(db)
}

// initRedis initializes Redis client for refresh cooldowns
func (m *BattleModule) initRedis(settings *conf.ModuleSettings) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}

	port := 6379
	if portStr := os.Getenv("REDIS_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	password := os.Getenv("REDIS_PASSWORD")

	dbIndex := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if d, err := strconv.Atoi(dbStr); err == nil {
			dbIndex = d
		}
	}

	client, err := redisClient.NewClient(redisClient.Config{
		Host:     host,
		Port:     port,
		Password: password,
		DB:       dbIndex,
	}, metrics.GetServiceName())
	if err != nil {
		fmt.Printf("[Battle Module] Failed to connect to Redis: %v, refresh cooldowns disabled\n", err)
		return
	}

	m.redis = client
	fmt.Printf("[Battle Module] Redis connected successfully (Host: %s:%d, DB: %d)\n", host, port, dbIndex)
}

// initResponseWriter initializes response writer
func (m *BattleModule) initResponseWriter() {
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	// 使用全局 logger
	logger := log.GetLogger()
	m.respWriter = response.NewResponseHandler(logger, environment)
	fmt.Println("[Battle Module] Response writer initialized")
}

// initHTTPServer initializes HTTP server
func (m *BattleModule) initHTTPServer() {
	m.httpServer = echo.New()

	// Hide banner
	m.httpServer.HideBanner = true
	m.httpServer.HidePort = true

	// Register validator
	m.httpServer.Validator = validator.New()

	// 获取全局 logger
	logger := log.GetLogger()

	// 获取环境变量
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	// ========== 中间件配置（顺序很重要！） ==========

	// 1. TraceID 中间件 - 最先执行，生成或提取 TraceID
	m.httpServer.Use(trace.Middleware())

	// 2. Metrics 中间件 - 记录 HTTP 方法到 context（用于 Prometheus）
	m.httpServer.Use(metrics.Middleware())

	// 3. i18n 中间件 - 语言检测和设置
	m.httpServer.Use(i18n.Middleware())

	// 4. Logging 中间件 - 记录请求日志（依赖 TraceID）
	loggingConfig := custommiddleware.DefaultLoggingConfig()
	if environment == "development" {
		// 开发环境启用详细日志
		loggingConfig.DetailedLog = true
		loggingConfig.LogRequestBody = true // 可以记录请求体
	}
	m.httpServer.Use(custommiddleware.LoggingMiddlewareWithConfig(logger, loggingConfig))

	// 5. Recovery 中间件 - 捕获 panic
	m.httpServer.Use(custommiddleware.RecoveryMiddleware(m.respWriter, logger))

	// 6. Error 中间件 - 统一错误处理
	m.httpServer.Use(custommiddleware.ErrorMiddleware(m.respWriter, logger))

	// 7. RateLimit 中间件 - 按客户端 IP 限流
	m.httpServer.Use(custommiddleware.RateLimitMiddleware())

	// 8. CORS 中间件
	m.httpServer.Use(middleware.CORS())

	fmt.Println("[Battle Module] HTTP middlewares configured:")
	fmt.Println("  ✓ TraceID (自动生成追踪ID)")
	fmt.Println("  ✓ Metrics (Prometheus 指标收集)")
	fmt.Println("  ✓ i18n (国际化支持)")
	fmt.Printf("  ✓ Logging (日志记录 - %s)\n", environment)
	fmt.Println("  ✓ Recovery (Panic 恢复)")
	fmt.Println("  ✓ Error (统一错误处理)")
	fmt.Println("  ✓ RateLimit (请求限流)")
	fmt.Println("  ✓ CORS (跨域支持)")
}

// initServicesAndHandlers initializes services and HTTP handlers
func (m *BattleModule) initServicesAndHandlers() {
	logger := log.GetLogger()

	// 战斗节奏参数：默认值 + 环境变量覆盖
	tuning := engine.TuningFromEnv()

	// 事件经由 NATS 批量发布（连接在 main 中通过 notify.SetNatsConn 注入）
	publisher := notify.NewBattleEventPublisher()

	// 创建服务容器（统一管理 Repository、引擎组件与 Service）
	// db 和 redis 都可能为 nil，容器内部会优雅降级
	m.serviceContainer = service.NewServiceContainer(m.db, m.redis, publisher, tuning, logger)

	// 初始化 HTTP Handlers
	m.battleHandler = handler.NewBattleHandler(m.serviceContainer, m.respWriter)

	fmt.Println("[Battle Module] Handlers initialized successfully")
}

// startScheduler 启动战斗 tick 调度循环
func (m *BattleModule) startScheduler() {
	ctx, cancel := context.WithCancel(context.Background())
	m.schedulerCancel = cancel
	go m.serviceContainer.Scheduler.Start(ctx)
	fmt.Println("[Battle Module] Tick scheduler started")
}

// startCronTasks starts cron scheduled tasks
func (m *BattleModule) startCronTasks() {
	logger := log.GetLogger()

	// 定时清理滞留战斗
	m.evictionTask = tasks.NewEvictionTask(m.serviceContainer.Registry, logger)
	m.evictionTask.Start()

	fmt.Println("[Battle Module] Cron tasks started")
}

// setupRoutes configures HTTP routes
func (m *BattleModule) setupRoutes() {
	v1 := m.httpServer.Group("/api/v1")

	battles := v1.Group("/battles")
	{
		battles.POST("", m.battleHandler.StartBattle)
		battles.GET("", m.battleHandler.ListActiveBattles)
		battles.GET("/:battle_id", m.battleHandler.GetBattleState)
		battles.POST("/:battle_id/actions", m.battleHandler.ExecuteAction)
		battles.POST("/:battle_id/pause", m.battleHandler.PauseBattle)
		battles.POST("/:battle_id/resume", m.battleHandler.ResumeBattle)
		battles.DELETE("/:battle_id", m.battleHandler.StopBattle)
	}

	players := v1.Group("/players")
	{
		players.GET("/:player_id/refresh", m.battleHandler.GetRefreshState)
	}

	// Health check
	m.httpServer.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status": "ok",
			"module": "battle",
		})
	})

	// Prometheus metrics endpoint
	m.httpServer.GET("/metrics", metrics.EchoHandler())

	fmt.Println("[Battle Module] Routes configured successfully")
	fmt.Println("[Battle Module] Battle API routes: /api/v1/battles/*")
	fmt.Println("[Battle Module] Prometheus metrics available at http://localhost:8073/metrics")
}

// startHTTPServer starts HTTP server
func (m *BattleModule) startHTTPServer(settings *conf.ModuleSettings) {
	// Read HTTP port from environment variable first
	port := os.Getenv("BATTLE_HTTP_PORT")
	if port == "" {
		// Fallback to config file
		if settings != nil && settings.Settings != nil {
			portInterface, ok := settings.Settings["http_port"]
			if ok {
				port, _ = portInterface.(string)
			}
		}
	}

	if port == "" {
		port = "8073" // Default port
	}

	fmt.Printf("[Battle Module] Starting HTTP server on port %s\n", port)

	if err := m.httpServer.Start(":" + port); err != nil {
		fmt.Printf("[Battle Module] HTTP server error: %v\n", err)
	}
}

// Run module run
func (m *BattleModule) Run(closeSig chan bool) {
	fmt.Println("[Battle Module] Started successfully")
	<-closeSig
}

// OnDestroy module destroy
func (m *BattleModule) OnDestroy() {
	// Stop tick scheduler
	if m.schedulerCancel != nil {
		m.schedulerCancel()
		fmt.Println("[Battle Module] Tick scheduler stopped")
	}

	// Stop cron tasks
	if m.evictionTask != nil {
		m.evictionTask.Stop()
		fmt.Println("[Battle Module] Cron tasks stopped")
	}

	// Close HTTP server
	if m.httpServer != nil {
		if err := m.httpServer.Close(); err != nil {
			fmt.Printf("[Battle Module] Failed to close HTTP server: %v\n", err)
		} else {
			fmt.Println("[Battle Module] HTTP server closed")
		}
	}

	// Close database connection
	if m.db != nil {
		if err := m.db.Close(); err != nil {
			fmt.Printf("[Battle Module] Failed to close database: %v\n", err)
		} else {
			fmt.Println("[Battle Module] Database connection closed")
		}
	}

	// Close Redis connection
	if m.redis != nil {
		if err := m.redis.Close(); err != nil {
			fmt.Printf("[Battle Module] Failed to close Redis: %v\n", err)
		} else {
			fmt.Println("[Battle Module] Redis connection closed")
		}
	}

	m.BaseModule.OnDestroy()
	fmt.Println("[Battle Module] Destroyed")
}

// Module creates Battle module instance
func Module() module.Module {
	return new(BattleModule)
}

// startDBPoolMonitoring 启动数据库连接池监控
// 每 30 秒报告一次连接池统计信息到 Prometheus
func (m *BattleModule) startDBPoolMonitoring(db *sql.DB) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		stats := db.Stats()

		// 记录数据库连接池指标
		metrics.DefaultResourceMetrics.RecordDBPoolStats(
			metrics.GetServiceName(),
			"postgres",            // 数据库名称
			stats.OpenConnections, // 当前打开的连接数
			stats.InUse,           // 正在使用的连接数
			stats.Idle,            // 空闲连接数
			25,                    // 最大连接数（与 SetMaxOpenConns 保持一致）
			stats.WaitCount,       // 等待连接的总次数
			stats.WaitDuration,    // 等待连接的总时长
		)
	}
}
