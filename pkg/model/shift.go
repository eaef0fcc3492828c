// Package model 定义工时引擎的核心数据模型
package model

// ShiftType 班次类型
type ShiftType string

const (
	ShiftWork     ShiftType = "work"     // 工作
	ShiftVacation ShiftType = "vacation" // 休假
	ShiftLeave    ShiftType = "leave"    // 请假
)

// Shift 单个排班记录
//
// 日期关联二选一：Date 存在时优先，否则使用 Day（英文星期名）。
// 员工关联二选一：EmployeeID 存在时优先，否则使用 UserID。
type Shift struct {
	StartTime  string    `json:"startTime" yaml:"startTime"` // HH:MM
	EndTime    string    `json:"endTime" yaml:"endTime"`     // HH:MM
	Type       ShiftType `json:"type,omitempty" yaml:"type,omitempty"`
	Date       *string   `json:"date,omitempty" yaml:"date,omitempty"`
	Day        *string   `json:"day,omitempty" yaml:"day,omitempty"`
	EmployeeID *int      `json:"employeeId,omitempty" yaml:"employeeId,omitempty"`
	UserID     *int      `json:"userId,omitempty" yaml:"userId,omitempty"`
	Notes      string    `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// IsWork 是否计入工时（类型为 work 或未设置）
func (s Shift) IsWork() bool {
	return s.Type == "" || s.Type == ShiftWork
}

// IsKnownType 类型是否为已知取值
func (s Shift) IsKnownType() bool {
	switch s.Type {
	case "", ShiftWork, ShiftVacation, ShiftLeave:
		return true
	}
	return false
}

// EmployeeRef 返回班次归属的员工ID
func (s Shift) EmployeeRef() (int, bool) {
	return ResolveEmployeeID(s)
}

// ResolveEmployeeID 统一 employeeId/userId 两种历史字段
//
// employeeId 优先；两者都缺失时返回 false，该班次不归属任何员工。
func ResolveEmployeeID(s Shift) (int, bool) {
	if s.EmployeeID != nil {
		return *s.EmployeeID, true
	}
	if s.UserID != nil {
		return *s.UserID, true
	}
	return 0, false
}

// HasDate 是否携带非空日期
func (s Shift) HasDate() bool {
	return s.Date != nil && *s.Date != ""
}

// HasDay 是否携带非空星期名
func (s Shift) HasDay() bool {
	return s.Day != nil && *s.Day != ""
}

// StringPtr 返回字符串指针（构造班次记录时使用）
func StringPtr(v string) *string {
	return &v
}

// IntPtr 返回整数指针
func IntPtr(v int) *int {
	return &v
}
