package validator

import (
	"testing"
	"time"

	"github.com/paiban/shifthours/pkg/model"
)

var week = model.NewWeekPeriod(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))

func countType(findings []Finding, ft FindingType) int {
	n := 0
	for _, f := range findings {
		if f.Type == ft {
			n++
		}
	}
	return n
}

func TestDetector_CleanInput(t *testing.T) {
	detector := NewDetector(nil)

	employees := []model.Employee{{ID: 1, FirstName: "Ann"}}
	shifts := []model.Shift{
		{EmployeeID: model.IntPtr(1), Day: model.StringPtr("Monday"), StartTime: "08:00", EndTime: "16:00", Type: model.ShiftWork},
		{EmployeeID: model.IntPtr(1), Date: model.StringPtr("2026-01-06"), StartTime: "22:00", EndTime: "02:00"},
	}

	if findings := detector.DetectAll(week, shifts, employees); len(findings) != 0 {
		t.Errorf("干净输入不应有问题, 得到 %+v", findings)
	}
}

func TestDetector_RecordFindings(t *testing.T) {
	detector := NewDetector(&DetectorConfig{})

	employees := []model.Employee{{ID: 1}}
	tests := []struct {
		name     string
		shift    model.Shift
		expected FindingType
		severity string
	}{
		{
			name:     "时刻格式错误",
			shift:    model.Shift{EmployeeID: model.IntPtr(1), Day: model.StringPtr("mon"), StartTime: "8am", EndTime: "16:00"},
			expected: FindingInvalidTime,
			severity: SeverityError,
		},
		{
			name:     "未知类型",
			shift:    model.Shift{EmployeeID: model.IntPtr(1), Day: model.StringPtr("mon"), StartTime: "08:00", EndTime: "16:00", Type: "sick"},
			expected: FindingUnknownType,
			severity: SeverityWarning,
		},
		{
			name:     "无日期关联",
			shift:    model.Shift{EmployeeID: model.IntPtr(1), StartTime: "08:00", EndTime: "16:00"},
			expected: FindingUnmatchedDay,
			severity: SeverityWarning,
		},
		{
			name:     "日期无法解析",
			shift:    model.Shift{EmployeeID: model.IntPtr(1), Date: model.StringPtr("05/01/2026"), Day: model.StringPtr("Monday"), StartTime: "08:00", EndTime: "16:00"},
			expected: FindingUnmatchedDay,
			severity: SeverityWarning,
		},
		{
			name:     "窗口外",
			shift:    model.Shift{EmployeeID: model.IntPtr(1), Date: model.StringPtr("2026-01-12"), StartTime: "08:00", EndTime: "16:00"},
			expected: FindingOutsideWindow,
			severity: SeverityWarning,
		},
		{
			name:     "星期名拼写错误",
			shift:    model.Shift{EmployeeID: model.IntPtr(1), Day: model.StringPtr("Mond"), StartTime: "08:00", EndTime: "16:00"},
			expected: FindingOutsideWindow,
			severity: SeverityWarning,
		},
		{
			name:     "缺少员工",
			shift:    model.Shift{Day: model.StringPtr("mon"), StartTime: "08:00", EndTime: "16:00"},
			expected: FindingUnresolvedEmployee,
			severity: SeverityWarning,
		},
		{
			name:     "未知员工",
			shift:    model.Shift{UserID: model.IntPtr(42), Day: model.StringPtr("mon"), StartTime: "08:00", EndTime: "16:00"},
			expected: FindingUnknownEmployee,
			severity: SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := detector.DetectAll(week, []model.Shift{tt.shift}, employees)
			if len(findings) != 1 {
				t.Fatalf("期望1个问题, 得到 %+v", findings)
			}
			f := findings[0]
			if f.Type != tt.expected || f.Severity != tt.severity {
				t.Errorf("得到 {%s, %s}, 期望 {%s, %s}", f.Type, f.Severity, tt.expected, tt.severity)
			}
			if len(f.ShiftIndex) != 1 || f.ShiftIndex[0] != 0 {
				t.Errorf("ShiftIndex = %v, 期望 [0]", f.ShiftIndex)
			}
		})
	}
}

func TestDetector_Duplicates(t *testing.T) {
	detector := NewDetector(&DetectorConfig{CheckDuplicates: true})

	employees := []model.Employee{{ID: 1}, {ID: 2}}
	shifts := []model.Shift{
		{EmployeeID: model.IntPtr(1), Day: model.StringPtr("Monday"), StartTime: "08:00", EndTime: "16:00"},
		{UserID: model.IntPtr(1), Day: model.StringPtr("mon"), StartTime: "08:00", EndTime: "16:00"},
		{EmployeeID: model.IntPtr(1), Day: model.StringPtr("Tuesday"), StartTime: "08:00", EndTime: "16:00"},
		{EmployeeID: model.IntPtr(2), Date: model.StringPtr("2026-01-07"), StartTime: "22:00", EndTime: "06:00"},
		{EmployeeID: model.IntPtr(2), Date: model.StringPtr("2026-01-07T22:00:00Z"), StartTime: "22:00", EndTime: "06:00"},
		{Day: model.StringPtr("Monday"), StartTime: "08:00", EndTime: "16:00"},
		{Day: model.StringPtr("Monday"), StartTime: "08:00", EndTime: "16:00"},
	}

	findings := detector.DetectAll(week, shifts, employees)

	if got := countType(findings, FindingDuplicate); got != 2 {
		t.Fatalf("期望2组重复, 得到 %d: %+v", got, findings)
	}
	for _, f := range findings {
		if f.Type != FindingDuplicate {
			continue
		}
		if len(f.ShiftIndex) != 2 || f.EmployeeID == nil {
			t.Errorf("重复记录结果异常: %+v", f)
		}
	}
}

func TestDetector_DuplicatesNormalizeType(t *testing.T) {
	detector := NewDetector(&DetectorConfig{CheckDuplicates: true})
	employees := []model.Employee{{ID: 1}}

	tests := []struct {
		name  string
		types [2]model.ShiftType
		want  int
	}{
		{"work与空类型", [2]model.ShiftType{model.ShiftWork, ""}, 1},
		{"均为空类型", [2]model.ShiftType{"", ""}, 1},
		{"work与请假", [2]model.ShiftType{model.ShiftWork, model.ShiftLeave}, 0},
		{"休假与请假", [2]model.ShiftType{model.ShiftVacation, model.ShiftLeave}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shifts := []model.Shift{
				{EmployeeID: model.IntPtr(1), Day: model.StringPtr("Monday"), StartTime: "08:00", EndTime: "16:00", Type: tt.types[0]},
				{EmployeeID: model.IntPtr(1), Day: model.StringPtr("Monday"), StartTime: "08:00", EndTime: "16:00", Type: tt.types[1]},
			}
			findings := detector.DetectAll(week, shifts, employees)
			if got := countType(findings, FindingDuplicate); got != tt.want {
				t.Errorf("重复组数 = %d, 期望 %d: %+v", got, tt.want, findings)
			}
		})
	}
}

func TestDetector_MaxHours(t *testing.T) {
	detector := NewDetector(&DetectorConfig{MaxHoursPerWeek: 44})

	employees := []model.Employee{{ID: 1, FirstName: "Ann", LastName: "Lee"}, {ID: 2}}
	var shifts []model.Shift
	for _, day := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"} {
		shifts = append(shifts, model.Shift{EmployeeID: model.IntPtr(1), Day: model.StringPtr(day), StartTime: "07:00", EndTime: "16:00"})
		shifts = append(shifts, model.Shift{EmployeeID: model.IntPtr(2), Day: model.StringPtr(day), StartTime: "08:00", EndTime: "16:00"})
	}
	// 休假不计入
	shifts = append(shifts, model.Shift{EmployeeID: model.IntPtr(2), Day: model.StringPtr("Saturday"), StartTime: "00:00", EndTime: "23:00", Type: model.ShiftVacation})

	findings := detector.DetectAll(week, shifts, employees)

	if got := countType(findings, FindingMaxHours); got != 1 {
		t.Fatalf("期望1个超时, 得到 %d: %+v", got, findings)
	}
	f := findings[len(findings)-1]
	if f.EmployeeID == nil || *f.EmployeeID != 1 {
		t.Errorf("超时员工应为 1, 得到 %+v", f)
	}
}

func TestDetector_DoesNotMutateInput(t *testing.T) {
	shifts := []model.Shift{{UserID: model.IntPtr(3), Day: model.StringPtr("mon"), StartTime: "bad", EndTime: "16:00"}}
	before := shifts[0]

	NewDetector(nil).DetectAll(week, shifts, nil)

	if shifts[0].StartTime != before.StartTime || shifts[0].EmployeeID != nil || *shifts[0].Day != "mon" {
		t.Errorf("输入被修改: %+v", shifts[0])
	}
}

func TestCountBySeverity(t *testing.T) {
	findings := []Finding{
		{Severity: SeverityError},
		{Severity: SeverityWarning},
		{Severity: SeverityWarning},
	}
	errs, warnings := CountBySeverity(findings)
	if errs != 1 || warnings != 2 {
		t.Errorf("CountBySeverity() = (%d, %d), 期望 (1, 2)", errs, warnings)
	}
}
