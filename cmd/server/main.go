// ShiftHours 周工时服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/paiban/shifthours/internal/config"
	"github.com/paiban/shifthours/internal/database"
	"github.com/paiban/shifthours/internal/handler"
	"github.com/paiban/shifthours/internal/metrics"
	"github.com/paiban/shifthours/internal/middleware"
	"github.com/paiban/shifthours/internal/repository"
	"github.com/paiban/shifthours/internal/telemetry"
	"github.com/paiban/shifthours/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})

	// 打印版本信息
	fmt.Printf("ShiftHours 周工时服务 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry)
	if err != nil {
		logger.Error().Err(err).Msg("初始化链路追踪失败")
		os.Exit(1)
	}

	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(&cfg.Database)
		if err != nil {
			logger.Error().Err(err).Msg("连接数据库失败")
			os.Exit(1)
		}
	}

	router := newRouter(cfg, db)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      otelhttp.NewHandler(router, cfg.App.Name),
		ReadTimeout:  cfg.API.Timeout,
		WriteTimeout: 2 * cfg.API.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("env", cfg.App.Env).
			Str("version", Version).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	if db != nil {
		go reportPoolStats(db)
	}

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭数据库失败")
		}
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("关闭链路追踪失败")
	}

	logger.Info().Msg("服务器已关闭")
}

// newRouter 注册路由和中间件，db 为 nil 时只支持请求体输入
func newRouter(cfg *config.Config, db *database.DB) *mux.Router {
	r := mux.NewRouter()

	// 中间件执行顺序：requestID -> logging -> rateLimit -> cors -> handler
	// logging 在限流之前，429 也会记录日志和指标
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	if cfg.API.RateLimit > 0 {
		r.Use(middleware.RateLimit(middleware.NewRateLimiter(float64(cfg.API.RateLimit))))
	}
	if cfg.API.CORS.Enabled {
		r.Use(middleware.CORS(cfg.API.CORS.Origins))
	}

	// ========================================
	// 系统端点
	// ========================================

	r.HandleFunc("/health", healthHandler(cfg, db)).Methods(http.MethodGet)
	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	}).Methods(http.MethodGet)

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, metrics.Handler()).Methods(http.MethodGet)
	}

	// ========================================
	// API v1 端点
	// ========================================

	var (
		shifts    handler.ShiftSource
		employees handler.EmployeeSource
	)
	if db != nil {
		shifts = repository.NewShiftRepository(db)
		employees = repository.NewEmployeeRepository(db)
	}
	handler.NewHoursHandler(cfg.Hours, shifts, employees, nil).Register(r)

	return r
}

// healthHandler 健康检查，启用数据库时一并检查连接
func healthHandler(cfg *config.Config, db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{
			"status":  "ok",
			"service": cfg.App.Name,
		}
		status := http.StatusOK

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Health(ctx); err != nil {
				body["status"] = "degraded"
				body["database"] = err.Error()
				status = http.StatusServiceUnavailable
			} else {
				body["database"] = "ok"
			}
		}

		writeJSON(w, status, body)
	}
}

// reportPoolStats 定期上报连接池指标
func reportPoolStats(db *database.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		stats := db.Stats()
		metrics.SetDatabaseConnections(stats.InUse, stats.Idle)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
