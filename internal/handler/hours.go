// Package handler 提供API处理器
package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/paiban/shifthours/internal/config"
	"github.com/paiban/shifthours/internal/export"
	"github.com/paiban/shifthours/internal/metrics"
	"github.com/paiban/shifthours/internal/telemetry"
	"github.com/paiban/shifthours/pkg/diagnostic"
	"github.com/paiban/shifthours/pkg/errors"
	"github.com/paiban/shifthours/pkg/logger"
	"github.com/paiban/shifthours/pkg/model"
	"github.com/paiban/shifthours/pkg/stats"
	"github.com/paiban/shifthours/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
)

// maxBodyBytes 请求体上限
const maxBodyBytes = 10 << 20

// ShiftSource 班次数据源
type ShiftSource interface {
	ListByPeriod(ctx context.Context, period model.SchedulePeriod) ([]model.Shift, error)
}

// EmployeeSource 员工数据源
type EmployeeSource interface {
	List(ctx context.Context) ([]model.Employee, error)
}

// HoursRequest 工时请求，也是 CLI 输入文件的格式
type HoursRequest struct {
	Name      string           `json:"name,omitempty" yaml:"name,omitempty"`
	Period    model.DateRange  `json:"period" yaml:"period"`
	Shifts    []model.Shift    `json:"shifts" yaml:"shifts"`
	Employees []model.Employee `json:"employees" yaml:"employees"`
}

// WeeklyResponse 周工时响应
type WeeklyResponse struct {
	Success bool                 `json:"success"`
	Data    *stats.WeeklySummary `json:"data,omitempty"`
}

// DiagnosticResponse 自检响应
type DiagnosticResponse struct {
	Success bool               `json:"success"`
	Data    *diagnostic.Report `json:"data,omitempty"`
}

// HoursHandler 工时处理器
type HoursHandler struct {
	cfg       config.HoursConfig
	shifts    ShiftSource
	employees EmployeeSource
	harness   *diagnostic.Harness
	analyzer  *stats.FairnessAnalyzer
	log       *logger.HoursLogger
}

// NewHoursHandler 创建工时处理器；shifts/employees 为 nil 时只支持请求体输入
func NewHoursHandler(cfg config.HoursConfig, shifts ShiftSource, employees EmployeeSource, log *logger.HoursLogger) *HoursHandler {
	if log == nil {
		log = logger.NewHoursLogger()
	}
	return &HoursHandler{
		cfg:       cfg,
		shifts:    shifts,
		employees: employees,
		harness:   diagnostic.NewHarness(DiagnosticConfig(cfg), log),
		analyzer:  stats.NewFairnessAnalyzer(cfg.StandardWeeklyHours),
		log:       log,
	}
}

// DiagnosticConfig 由工时配置生成自检配置
func DiagnosticConfig(cfg config.HoursConfig) diagnostic.Config {
	dc := diagnostic.DefaultConfig()
	dc.Tolerance = cfg.Tolerance
	dc.Detector = &validator.DetectorConfig{
		MaxHoursPerWeek: cfg.MaxWeeklyHours,
		CheckDuplicates: cfg.CheckDuplicates,
	}
	return dc
}

// Register 注册路由；OPTIONS 需能匹配路由，CORS 预检才会经过中间件
func (h *HoursHandler) Register(r *mux.Router) {
	api := r.PathPrefix("/api/v1/hours").Subrouter()
	api.HandleFunc("/weekly", h.Weekly).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/weekly", h.WeeklyFromStore).Methods(http.MethodGet)
	api.HandleFunc("/diagnostic", h.Diagnostic).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/export", h.Export).Methods(http.MethodPost, http.MethodOptions)
}

// Weekly 根据请求体计算周工时
func (h *HoursHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	req, period, appErr := decodeRequest(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	summary := h.summarize(r.Context(), "request", period, req.Employees, req.Shifts)
	respondJSON(w, http.StatusOK, WeeklyResponse{Success: true, Data: summary})
}

// WeeklyFromStore 从数据库读取班次和员工计算周工时
func (h *HoursHandler) WeeklyFromStore(w http.ResponseWriter, r *http.Request) {
	if h.shifts == nil || h.employees == nil {
		respondError(w, errors.NotFound("数据源", "database"))
		return
	}

	startDate := r.URL.Query().Get("start_date")
	if startDate == "" {
		respondError(w, errors.InvalidInput("start_date", "不能为空"))
		return
	}
	period, err := model.ParsePeriod(model.DateRange{StartDate: startDate})
	if err != nil {
		respondError(w, toAppError(err))
		return
	}

	ctx := r.Context()
	employees, err := h.employees.List(ctx)
	if err != nil {
		logger.WithContext(ctx).Error().Err(err).Msg("读取员工失败")
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "读取员工失败"))
		return
	}
	shifts, err := h.shifts.ListByPeriod(ctx, period)
	if err != nil {
		logger.WithContext(ctx).Error().Err(err).Msg("读取班次失败")
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "读取班次失败"))
		return
	}

	summary := h.summarize(ctx, "database", period, employees, shifts)
	respondJSON(w, http.StatusOK, WeeklyResponse{Success: true, Data: summary})
}

// Diagnostic 执行工时自检；format=text 时返回文本报告
func (h *HoursHandler) Diagnostic(w http.ResponseWriter, r *http.Request) {
	req, period, appErr := decodeRequest(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	report := h.runDiagnostic(r.Context(), req, period)

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := report.Render(w); err != nil {
			logger.WithContext(r.Context()).Error().Err(err).Str("run_id", report.RunID).Msg("写出自检报告失败")
		}
		return
	}
	respondJSON(w, http.StatusOK, DiagnosticResponse{Success: true, Data: report})
}

// Export 导出 xlsx；自检未通过且启用拦截时返回 422
func (h *HoursHandler) Export(w http.ResponseWriter, r *http.Request) {
	req, period, appErr := decodeRequest(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	ctx := r.Context()
	report := h.runDiagnostic(ctx, req, period)
	if !report.Ready && h.cfg.BlockExportOnFailure {
		metrics.RecordExport("blocked")
		logger.WithContext(ctx).Warn().
			Str("run_id", report.RunID).
			Int("failed_cases", report.FailedCases).
			Msg("自检未通过，已阻止导出")

		appErr := errors.ExportBlocked(report.FailedCases).
			WithField("run_id", report.RunID).
			WithField("failed_cases", report.FailedCases)
		respondJSON(w, appErr.HTTPStatus, map[string]interface{}{
			"error":   true,
			"code":    appErr.Code,
			"message": appErr.Message,
			"fields":  appErr.Fields,
			"report":  report,
		})
		return
	}

	summary := h.summarize(ctx, "export", period, req.Employees, req.Shifts)

	_, span := telemetry.StartSpan(ctx, "hours.export")
	defer span.End()

	f, err := export.Build(summary, req.Employees, report)
	if err != nil {
		metrics.RecordExport("error")
		span.RecordError(err)
		respondError(w, errors.Wrap(err, errors.CodeInternal, "生成工作簿失败"))
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("shift-hours-%s.xlsx", summary.Period.StartDate)
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if err := f.Write(w); err != nil {
		metrics.RecordExport("error")
		logger.WithContext(ctx).Error().Err(err).Msg("写出工作簿失败")
		return
	}
	metrics.RecordExport("success")
}

// summarize 汇总并记录日志、指标和 span
func (h *HoursHandler) summarize(ctx context.Context, source string, period model.SchedulePeriod, employees []model.Employee, shifts []model.Shift) *stats.WeeklySummary {
	_, span := telemetry.StartSpan(ctx, "hours.aggregate",
		attribute.String("hours.source", source),
		attribute.Int("hours.shifts", len(shifts)),
		attribute.Int("hours.employees", len(employees)),
	)
	defer span.End()

	summary := stats.Summarize(period, employees, shifts, h.analyzer)

	gini := 0.0
	if summary.Fairness != nil {
		gini = summary.Fairness.WorkloadGini
	}
	metrics.RecordAggregation(source, summary.TotalHours, gini)
	h.log.Aggregated(period.String(), len(employees), len(shifts), summary.TotalHours)
	span.SetAttributes(attribute.Float64("hours.total", summary.TotalHours))

	return summary
}

// runDiagnostic 执行自检并记录指标和 span
func (h *HoursHandler) runDiagnostic(ctx context.Context, req *HoursRequest, period model.SchedulePeriod) *diagnostic.Report {
	_, span := telemetry.StartSpan(ctx, "hours.diagnostic")
	defer span.End()

	report := h.harness.Run(model.NewSchedule(req.Name, period), req.Shifts, req.Employees)

	types := make([]string, 0, len(report.Findings))
	for _, f := range report.Findings {
		types = append(types, string(f.Type))
	}
	metrics.RecordDiagnostic(report.Ready, types)
	span.SetAttributes(
		attribute.String("hours.run_id", report.RunID),
		attribute.Bool("hours.ready", report.Ready),
		attribute.Int("hours.findings", len(report.Findings)),
	)

	return report
}

// decodeRequest 解析请求体并校验周期
func decodeRequest(r *http.Request) (*HoursRequest, model.SchedulePeriod, *errors.AppError) {
	req, err := DecodeJSON(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, model.SchedulePeriod{}, toAppError(err)
	}

	if ve := ValidateRequest(req); ve.HasErrors() {
		return nil, model.SchedulePeriod{}, ve.ToAppError()
	}
	period, err := model.ParsePeriod(req.Period)
	if err != nil {
		return nil, model.SchedulePeriod{}, toAppError(err)
	}

	return req, period, nil
}

// DecodeJSON 解析 JSON 格式的工时请求，HTTP 与 CLI 共用。
// 未知字段忽略：数据层导出的班次常带 id 等额外字段，YAML 输入同样宽松。
func DecodeJSON(r io.Reader) (*HoursRequest, error) {
	var req HoursRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "请求体无效").WithDetails(err.Error())
	}
	return &req, nil
}

// ValidateRequest 检查请求结构：开始日期必填，员工ID不可重复
func ValidateRequest(req *HoursRequest) *errors.ValidationErrors {
	ve := &errors.ValidationErrors{}
	if req.Period.StartDate == "" {
		ve.Add("period.startDate", "不能为空")
	}
	seen := make(map[int]bool, len(req.Employees))
	for i, e := range req.Employees {
		if seen[e.ID] {
			ve.Add(fmt.Sprintf("employees[%d].id", i), fmt.Sprintf("员工ID %d 重复", e.ID))
		}
		seen[e.ID] = true
	}
	return ve
}

// toAppError 将错误转换为 AppError
func toAppError(err error) *errors.AppError {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return errors.Wrap(err, errors.CodeInternal, "内部错误")
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	respondJSON(w, err.HTTPStatus, map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
		"fields":  err.Fields,
	})
}
