// Package stats 提供工时汇总与统计分析功能
package stats

import (
	"sort"

	"github.com/paiban/shifthours/pkg/matcher"
	"github.com/paiban/shifthours/pkg/model"
	"github.com/paiban/shifthours/pkg/timecalc"
)

// DayBucket 某一天的班次
type DayBucket struct {
	Date    string        `json:"date"`
	Weekday string        `json:"weekday"`
	Shifts  []model.Shift `json:"shifts"`
	Hours   float64       `json:"hours"`
}

// EmployeeHours 员工周工时
type EmployeeHours struct {
	EmployeeID   int     `json:"employeeId"`
	EmployeeName string  `json:"employeeName"`
	Hours        float64 `json:"hours"`
	Formatted    string  `json:"formatted"`
	ShiftCount   int     `json:"shiftCount"`
}

// WeeklySummary 周工时汇总
type WeeklySummary struct {
	Period            model.DateRange  `json:"period"`
	TotalHours        float64          `json:"totalHours"`
	UnattributedHours float64          `json:"unattributedHours"`
	PerEmployee       model.HourTotal  `json:"perEmployeeHours"`
	Employees         []EmployeeHours  `json:"employees"`
	Days              []DayBucket      `json:"days"`
	Fairness          *FairnessMetrics `json:"fairness,omitempty"`
}

// TotalHours 汇总工作类班次的工时
//
// 只统计 type 为 work 或未设置的班次；重叠或重复记录按原样累加。
func TotalHours(shifts []model.Shift) float64 {
	total := 0.0
	for _, s := range shifts {
		if !s.IsWork() {
			continue
		}
		total += timecalc.Duration(s.StartTime, s.EndTime)
	}
	return timecalc.Round2(total)
}

// PerEmployeeHours 计算每位员工的工时
//
// 每位员工都会出现在结果中，没有班次的记为 0。
func PerEmployeeHours(employees []model.Employee, shifts []model.Shift) model.HourTotal {
	byEmployee := groupByEmployee(shifts)

	result := make(model.HourTotal, len(employees))
	for _, e := range employees {
		result[e.ID] = TotalHours(byEmployee[e.ID])
	}
	return result
}

// UnattributedHours 无法归属员工的班次工时
func UnattributedHours(shifts []model.Shift) float64 {
	var orphaned []model.Shift
	for _, s := range shifts {
		if _, ok := model.ResolveEmployeeID(s); !ok {
			orphaned = append(orphaned, s)
		}
	}
	return TotalHours(orphaned)
}

// ShiftsPerDay 按星期名分组，窗口为 period.StartDate 起的7天
//
// 七个星期名都会出现在结果中；组内保持输入顺序。
func ShiftsPerDay(period model.SchedulePeriod, shifts []model.Shift) map[string][]model.Shift {
	result := make(map[string][]model.Shift, model.WeekLength)
	for _, bucket := range DailyBuckets(period, shifts) {
		result[bucket.Weekday] = bucket.Shifts
	}
	return result
}

// DailyBuckets 按日历顺序返回7天的班次分组
func DailyBuckets(period model.SchedulePeriod, shifts []model.Shift) []DayBucket {
	days := period.Days()
	refs := make([]matcher.DayRef, len(shifts))
	for i, s := range shifts {
		refs[i] = matcher.Resolve(s)
	}

	buckets := make([]DayBucket, len(days))
	for i, day := range days {
		matched := make([]model.Shift, 0)
		for j, s := range shifts {
			if refs[j].Matches(day) {
				matched = append(matched, s)
			}
		}
		buckets[i] = DayBucket{
			Date:    day.Format(model.DateLayout),
			Weekday: matcher.WeekdayName(day),
			Shifts:  matched,
			Hours:   TotalHours(matched),
		}
	}
	return buckets
}

// Summarize 生成周工时汇总
func Summarize(period model.SchedulePeriod, employees []model.Employee, shifts []model.Shift, analyzer *FairnessAnalyzer) *WeeklySummary {
	perEmployee := PerEmployeeHours(employees, shifts)
	byEmployee := groupByEmployee(shifts)

	rows := make([]EmployeeHours, 0, len(employees))
	for _, e := range employees {
		hours := perEmployee[e.ID]
		rows = append(rows, EmployeeHours{
			EmployeeID:   e.ID,
			EmployeeName: e.FullName(),
			Hours:        hours,
			Formatted:    timecalc.Format(hours),
			ShiftCount:   countWork(byEmployee[e.ID]),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].EmployeeID < rows[j].EmployeeID
	})

	summary := &WeeklySummary{
		Period:            period.Range(),
		TotalHours:        TotalHours(shifts),
		UnattributedHours: UnattributedHours(shifts),
		PerEmployee:       perEmployee,
		Employees:         rows,
		Days:              DailyBuckets(period, shifts),
	}
	if analyzer != nil {
		summary.Fairness = analyzer.Analyze(rows)
	}
	return summary
}

// groupByEmployee 按解析后的员工ID分组，无法归属的班次被丢弃
func groupByEmployee(shifts []model.Shift) map[int][]model.Shift {
	result := make(map[int][]model.Shift)
	for _, s := range shifts {
		if id, ok := model.ResolveEmployeeID(s); ok {
			result[id] = append(result[id], s)
		}
	}
	return result
}

func countWork(shifts []model.Shift) int {
	n := 0
	for _, s := range shifts {
		if s.IsWork() {
			n++
		}
	}
	return n
}
