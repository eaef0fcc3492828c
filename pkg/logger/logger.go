// Package logger 提供统一的日志框架
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

type contextKey string

// RequestIDKey 上下文中请求ID的键
const RequestIDKey contextKey = "request_id"

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level" mapstructure:"level"`
	Format     string `yaml:"format" json:"format" mapstructure:"format"` // json/console
	Output     string `yaml:"output" json:"output" mapstructure:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty" mapstructure:"file_path"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty" mapstructure:"time_format"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		zerolog.SetGlobalLevel(parseLevel(cfg.Level))
		logger = New(openOutput(cfg), cfg)
	})
}

// New 基于给定输出创建独立日志器（不影响全局日志器）
func New(w io.Writer, cfg Config) zerolog.Logger {
	if cfg.Format == "console" {
		timeFormat := cfg.TimeFormat
		if timeFormat == "" {
			timeFormat = time.RFC3339
		}
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: timeFormat}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// openOutput 打开日志输出
func openOutput(cfg Config) io.Writer {
	switch cfg.Output {
	case "stderr":
		return os.Stderr
	case "file":
		if cfg.FilePath == "" {
			return os.Stdout
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return os.Stdout
		}
		return f
	default:
		return os.Stdout
	}
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	Init(DefaultConfig())
	return &logger
}

// WithContext 从上下文创建日志器
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}
	return &l
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// HoursLogger 工时引擎专用日志器
type HoursLogger struct {
	base *zerolog.Logger
}

// NewHoursLogger 创建工时引擎日志器
func NewHoursLogger() *HoursLogger {
	l := Get().With().Str("component", "hours").Logger()
	return &HoursLogger{base: &l}
}

// NewHoursLoggerWith 使用指定日志器创建（测试和CLI使用）
func NewHoursLoggerWith(l zerolog.Logger) *HoursLogger {
	l = l.With().Str("component", "hours").Logger()
	return &HoursLogger{base: &l}
}

// Aggregated 记录一次工时汇总
func (l *HoursLogger) Aggregated(period string, employees, shifts int, total float64) {
	l.base.Info().
		Str("period", period).
		Int("employees", employees).
		Int("shifts", shifts).
		Float64("total_hours", total).
		Msg("工时汇总完成")
}

// DiagnosticCase 记录自检用例结果
func (l *HoursLogger) DiagnosticCase(start, end string, expected, actual float64, passed bool) {
	ev := l.base.Debug()
	if !passed {
		ev = l.base.Warn()
	}
	ev.Str("start", start).
		Str("end", end).
		Float64("expected", expected).
		Float64("actual", actual).
		Bool("passed", passed).
		Msg("工时自检用例")
}

// DiagnosticComplete 记录自检完成
func (l *HoursLogger) DiagnosticComplete(runID string, failed, findings int, duration time.Duration) {
	ev := l.base.Info()
	if failed > 0 {
		ev = l.base.Error()
	}
	ev.Str("run_id", runID).
		Int("failed_cases", failed).
		Int("findings", findings).
		Dur("duration", duration).
		Msg("工时自检完成")
}
