// Package validator 检查班次记录的数据质量问题
package validator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/paiban/shifthours/pkg/matcher"
	"github.com/paiban/shifthours/pkg/model"
	"github.com/paiban/shifthours/pkg/timecalc"
)

// FindingType 问题类型
type FindingType string

const (
	FindingInvalidTime        FindingType = "invalid_time"        // 时刻格式错误
	FindingUnmatchedDay       FindingType = "unmatched_day"       // 无可用的日期关联
	FindingOutsideWindow      FindingType = "outside_window"      // 不在统计窗口内
	FindingUnresolvedEmployee FindingType = "unresolved_employee" // 缺少员工关联
	FindingUnknownEmployee    FindingType = "unknown_employee"    // 员工不在列表中
	FindingUnknownType        FindingType = "unknown_type"        // 未知班次类型
	FindingDuplicate          FindingType = "duplicate"           // 重复记录
	FindingMaxHours           FindingType = "max_hours"           // 超过周工时上限
)

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Finding 单条检查结果
type Finding struct {
	Type       FindingType `json:"type"`
	Severity   string      `json:"severity"` // error/warning
	ShiftIndex []int       `json:"shiftIndex,omitempty"`
	EmployeeID *int        `json:"employeeId,omitempty"`
	Message    string      `json:"message"`
}

// DetectorConfig 检测器配置
type DetectorConfig struct {
	MaxHoursPerWeek float64 // 每周最大工时，<=0 表示不检查
	CheckDuplicates bool    // 是否检查重复记录
}

// DefaultDetectorConfig 返回默认配置
func DefaultDetectorConfig() *DetectorConfig {
	return &DetectorConfig{
		MaxHoursPerWeek: 44,
		CheckDuplicates: true,
	}
}

// Detector 班次记录检测器
type Detector struct {
	config *DetectorConfig
}

// NewDetector 创建检测器
func NewDetector(config *DetectorConfig) *Detector {
	if config == nil {
		config = DefaultDetectorConfig()
	}
	return &Detector{config: config}
}

// DetectAll 检测所有问题，只读不修改输入
func (d *Detector) DetectAll(period model.SchedulePeriod, shifts []model.Shift, employees []model.Employee) []Finding {
	known := model.EmployeeIndex(employees)
	days := period.Days()

	var findings []Finding
	for i, s := range shifts {
		findings = append(findings, d.detectRecord(i, s, known, days)...)
	}

	if d.config.CheckDuplicates {
		findings = append(findings, d.detectDuplicates(shifts)...)
	}
	if d.config.MaxHoursPerWeek > 0 {
		findings = append(findings, d.detectMaxHours(shifts, employees)...)
	}

	return findings
}

// detectRecord 检查单条记录
func (d *Detector) detectRecord(i int, s model.Shift, known map[int]model.Employee, days []time.Time) []Finding {
	var findings []Finding

	if _, err := timecalc.ParseDuration(s.StartTime, s.EndTime); err != nil {
		findings = append(findings, Finding{
			Type:       FindingInvalidTime,
			Severity:   SeverityError,
			ShiftIndex: []int{i},
			Message:    fmt.Sprintf("班次 #%d 时刻无效 (%q-%q)，按 0 小时计", i, s.StartTime, s.EndTime),
		})
	}

	if !s.IsKnownType() {
		findings = append(findings, Finding{
			Type:       FindingUnknownType,
			Severity:   SeverityWarning,
			ShiftIndex: []int{i},
			Message:    fmt.Sprintf("班次 #%d 类型 %q 未知，不计入工时", i, s.Type),
		})
	}

	ref := matcher.Resolve(s)
	switch {
	case !ref.Valid:
		findings = append(findings, Finding{
			Type:       FindingUnmatchedDay,
			Severity:   SeverityWarning,
			ShiftIndex: []int{i},
			Message:    fmt.Sprintf("班次 #%d 没有可解析的 date/day，不会出现在每日分组中", i),
		})
	case !matchesAny(ref, days):
		findings = append(findings, Finding{
			Type:       FindingOutsideWindow,
			Severity:   SeverityWarning,
			ShiftIndex: []int{i},
			Message:    fmt.Sprintf("班次 #%d 不在统计窗口内", i),
		})
	}

	id, ok := model.ResolveEmployeeID(s)
	switch {
	case !ok:
		findings = append(findings, Finding{
			Type:       FindingUnresolvedEmployee,
			Severity:   SeverityWarning,
			ShiftIndex: []int{i},
			Message:    fmt.Sprintf("班次 #%d 缺少 employeeId/userId，只计入总工时", i),
		})
	case !contains(known, id):
		findings = append(findings, Finding{
			Type:       FindingUnknownEmployee,
			Severity:   SeverityWarning,
			ShiftIndex: []int{i},
			EmployeeID: model.IntPtr(id),
			Message:    fmt.Sprintf("班次 #%d 的员工 %d 不在员工列表中", i, id),
		})
	}

	return findings
}

// detectDuplicates 检测同一员工、同一天、同一时段的重复记录
func (d *Detector) detectDuplicates(shifts []model.Shift) []Finding {
	groups := make(map[string][]int)
	var keys []string
	for i, s := range shifts {
		key, ok := duplicateKey(s)
		if !ok {
			continue
		}
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], i)
	}

	var findings []Finding
	for _, key := range keys {
		indexes := groups[key]
		if len(indexes) < 2 {
			continue
		}
		id, _ := model.ResolveEmployeeID(shifts[indexes[0]])
		findings = append(findings, Finding{
			Type:       FindingDuplicate,
			Severity:   SeverityWarning,
			ShiftIndex: indexes,
			EmployeeID: model.IntPtr(id),
			Message:    fmt.Sprintf("员工 %d 有 %d 条重复班次，工时将重复累加", id, len(indexes)),
		})
	}
	return findings
}

// detectMaxHours 检测周工时超限
func (d *Detector) detectMaxHours(shifts []model.Shift, employees []model.Employee) []Finding {
	byEmployee := make(map[int][]model.Shift)
	for _, s := range shifts {
		if id, ok := model.ResolveEmployeeID(s); ok {
			byEmployee[id] = append(byEmployee[id], s)
		}
	}

	ids := make([]int, 0, len(byEmployee))
	for id := range byEmployee {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	names := model.EmployeeIndex(employees)
	var findings []Finding
	for _, id := range ids {
		total := 0.0
		for _, s := range byEmployee[id] {
			if s.IsWork() {
				total += timecalc.Duration(s.StartTime, s.EndTime)
			}
		}
		total = timecalc.Round2(total)
		if total <= d.config.MaxHoursPerWeek {
			continue
		}
		name := names[id].FullName()
		if name == "" {
			name = fmt.Sprintf("#%d", id)
		}
		findings = append(findings, Finding{
			Type:       FindingMaxHours,
			Severity:   SeverityWarning,
			EmployeeID: model.IntPtr(id),
			Message:    fmt.Sprintf("员工 %s 周工作 %.2f 小时，超过限制 %.0f 小时", name, total, d.config.MaxHoursPerWeek),
		})
	}
	return findings
}

// CountBySeverity 统计各级别数量
func CountBySeverity(findings []Finding) (errs, warnings int) {
	for _, f := range findings {
		if f.Severity == SeverityError {
			errs++
		} else {
			warnings++
		}
	}
	return
}

// duplicateKey 生成重复检测键；无法归属或无日期关联的记录不参与
func duplicateKey(s model.Shift) (string, bool) {
	id, ok := model.ResolveEmployeeID(s)
	if !ok {
		return "", false
	}

	ref := matcher.Resolve(s)
	if !ref.Valid {
		return "", false
	}

	var day string
	switch ref.Kind {
	case matcher.RefByDate:
		day = ref.Date.Format(model.DateLayout)
	case matcher.RefByWeekdayName:
		if wd, ok := matcher.ParseWeekdayName(ref.Name); ok {
			day = wd.String()
		} else {
			day = strings.ToLower(ref.Name)
		}
	}

	// 未填类型按 work 计，与工时累加口径一致
	typ := s.Type
	if s.IsWork() {
		typ = model.ShiftWork
	}
	return fmt.Sprintf("%d|%s|%s|%s|%s", id, day, s.StartTime, s.EndTime, typ), true
}

func matchesAny(ref matcher.DayRef, days []time.Time) bool {
	for _, day := range days {
		if ref.Matches(day) {
			return true
		}
	}
	return false
}

func contains(known map[int]model.Employee, id int) bool {
	_, ok := known[id]
	return ok
}
