// Package diagnostic 导出前的工时自检
//
// 自检分三部分：已知答案的时长用例、对输入数据的结构检查、逐条记录的问题检测。
// 自检只读，不修改输入，结果仅供操作员参考。
package diagnostic

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/shifthours/pkg/logger"
	"github.com/paiban/shifthours/pkg/model"
	"github.com/paiban/shifthours/pkg/stats"
	"github.com/paiban/shifthours/pkg/timecalc"
	"github.com/paiban/shifthours/pkg/validator"
)

// DefaultTolerance 用例允许的误差（小时）
const DefaultTolerance = 0.01

// TestCase 时长用例
type TestCase struct {
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Expected float64 `json:"expected"`
}

// TestResult 用例结果
type TestResult struct {
	TestCase
	Actual float64 `json:"actual"`
	Passed bool    `json:"passed"`
	Err    string  `json:"error,omitempty"`
}

// DefaultCases 返回内置的已知答案用例，包含一个跨午夜用例
func DefaultCases() []TestCase {
	return []TestCase{
		{Start: "04:00", End: "06:00", Expected: 2},
		{Start: "08:00", End: "12:30", Expected: 4.5},
		{Start: "14:00", End: "18:00", Expected: 4},
		{Start: "22:00", End: "02:00", Expected: 4},
	}
}

// RunTimeCases 逐个执行用例，失败只记录不中断
func RunTimeCases(cases []TestCase, tolerance float64) []TestResult {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	results := make([]TestResult, 0, len(cases))
	for _, tc := range cases {
		r := TestResult{TestCase: tc}
		actual, err := timecalc.ParseDuration(tc.Start, tc.End)
		if err != nil {
			r.Err = err.Error()
		}
		r.Actual = actual
		r.Passed = err == nil && math.Abs(actual-tc.Expected) < tolerance
		results = append(results, r)
	}
	return results
}

// FieldPresence 可选字段出现次数
type FieldPresence struct {
	Date       int `json:"date"`
	Day        int `json:"day"`
	EmployeeID int `json:"employeeId"`
	UserID     int `json:"userId"`
}

// DayBreakdown 某一天的班次分布
type DayBreakdown struct {
	Weekday string        `json:"weekday"`
	Count   int           `json:"count"`
	Shifts  []model.Shift `json:"shifts"`
}

// Inspection 对输入数据的结构检查结果
type Inspection struct {
	ScheduleID       uuid.UUID       `json:"scheduleId"`
	ScheduleName     string          `json:"scheduleName,omitempty"`
	Period           model.DateRange `json:"period"`
	ShiftCount       int             `json:"shiftCount"`
	EmployeeCount    int             `json:"employeeCount"`
	Presence         FieldPresence   `json:"presence"`
	ReferencedIDs    int             `json:"referencedIds"`
	ResolvedIDs      int             `json:"resolvedIds"`
	UnresolvedShifts int             `json:"unresolvedShifts"`
	PerDay           []DayBreakdown  `json:"perDay"`
	PerEmployee      model.HourTotal `json:"perEmployeeHours"`
	TotalHours       float64         `json:"totalHours"`
}

// Inspect 检查班次与员工数据
//
// ReferencedIDs 为班次引用的不同员工 ID 数，ResolvedIDs 为其中能在员工列表中找到的数量。
func Inspect(schedule model.Schedule, shifts []model.Shift, employees []model.Employee) *Inspection {
	in := &Inspection{
		ScheduleID:    schedule.ID,
		ScheduleName:  schedule.Name,
		Period:        schedule.Period.Range(),
		ShiftCount:    len(shifts),
		EmployeeCount: len(employees),
	}

	known := model.EmployeeIndex(employees)
	referenced := make(map[int]bool)
	for _, s := range shifts {
		if s.HasDate() {
			in.Presence.Date++
		}
		if s.HasDay() {
			in.Presence.Day++
		}
		if s.EmployeeID != nil {
			in.Presence.EmployeeID++
		}
		if s.UserID != nil {
			in.Presence.UserID++
		}

		id, ok := model.ResolveEmployeeID(s)
		if !ok {
			in.UnresolvedShifts++
			continue
		}
		referenced[id] = true
	}

	in.ReferencedIDs = len(referenced)
	for id := range referenced {
		if _, ok := known[id]; ok {
			in.ResolvedIDs++
		}
	}

	for _, bucket := range stats.DailyBuckets(schedule.Period, shifts) {
		in.PerDay = append(in.PerDay, DayBreakdown{
			Weekday: bucket.Weekday,
			Count:   len(bucket.Shifts),
			Shifts:  bucket.Shifts,
		})
	}

	in.PerEmployee = stats.PerEmployeeHours(employees, shifts)
	in.TotalHours = stats.TotalHours(shifts)
	return in
}

// Report 自检报告
type Report struct {
	RunID       string              `json:"runId"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Cases       []TestResult        `json:"cases"`
	FailedCases int                 `json:"failedCases"`
	Inspection  *Inspection         `json:"inspection"`
	Findings    []validator.Finding `json:"findings"`
	Errors      int                 `json:"errors"`
	Warnings    int                 `json:"warnings"`
	Ready       bool                `json:"ready"`
}

// Config 自检配置
type Config struct {
	Tolerance float64
	Cases     []TestCase
	Detector  *validator.DetectorConfig
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Tolerance: DefaultTolerance,
		Cases:     DefaultCases(),
		Detector:  validator.DefaultDetectorConfig(),
	}
}

// Harness 自检执行器，可并发使用
type Harness struct {
	config   Config
	detector *validator.Detector
	log      *logger.HoursLogger
	now      func() time.Time
}

// NewHarness 创建自检执行器，log 为 nil 时使用全局日志器
func NewHarness(cfg Config, log *logger.HoursLogger) *Harness {
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultTolerance
	}
	if len(cfg.Cases) == 0 {
		cfg.Cases = DefaultCases()
	}
	if log == nil {
		log = logger.NewHoursLogger()
	}
	return &Harness{
		config:   cfg,
		detector: validator.NewDetector(cfg.Detector),
		log:      log,
		now:      time.Now,
	}
}

// Run 执行完整自检
//
// Ready 只取决于时长用例是否全部通过；数据问题只做提示。
func (h *Harness) Run(schedule model.Schedule, shifts []model.Shift, employees []model.Employee) *Report {
	start := h.now()

	report := &Report{
		RunID:       uuid.New().String(),
		GeneratedAt: start.UTC(),
		Cases:       RunTimeCases(h.config.Cases, h.config.Tolerance),
		Inspection:  Inspect(schedule, shifts, employees),
		Findings:    h.detector.DetectAll(schedule.Period, shifts, employees),
	}

	for _, r := range report.Cases {
		h.log.DiagnosticCase(r.Start, r.End, r.Expected, r.Actual, r.Passed)
		if !r.Passed {
			report.FailedCases++
		}
	}
	if report.Findings == nil {
		report.Findings = []validator.Finding{}
	}
	report.Errors, report.Warnings = validator.CountBySeverity(report.Findings)
	report.Ready = report.FailedCases == 0

	h.log.DiagnosticComplete(report.RunID, report.FailedCases, len(report.Findings), time.Since(start))
	return report
}
