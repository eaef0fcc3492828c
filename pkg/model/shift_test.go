package model

import "testing"

func TestResolveEmployeeID(t *testing.T) {
	tests := []struct {
		name   string
		shift  Shift
		wantID int
		wantOK bool
	}{
		{"仅employeeId", Shift{EmployeeID: IntPtr(3)}, 3, true},
		{"仅userId", Shift{UserID: IntPtr(9)}, 9, true},
		{"两者并存employeeId优先", Shift{EmployeeID: IntPtr(5), UserID: IntPtr(9)}, 5, true},
		{"employeeId为0仍优先", Shift{EmployeeID: IntPtr(0), UserID: IntPtr(9)}, 0, true},
		{"两者都缺失", Shift{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ResolveEmployeeID(tt.shift)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("ResolveEmployeeID() = (%d, %v), 期望 (%d, %v)", id, ok, tt.wantID, tt.wantOK)
			}
			if mid, mok := tt.shift.EmployeeRef(); mid != id || mok != ok {
				t.Errorf("EmployeeRef() 与 ResolveEmployeeID() 不一致")
			}
		})
	}
}

func TestShift_IsWork(t *testing.T) {
	tests := []struct {
		shiftType ShiftType
		expected  bool
	}{
		{"", true},
		{ShiftWork, true},
		{ShiftVacation, false},
		{ShiftLeave, false},
		{"sick", false},
	}

	for _, tt := range tests {
		s := Shift{Type: tt.shiftType}
		if got := s.IsWork(); got != tt.expected {
			t.Errorf("Shift{Type: %q}.IsWork() = %v, 期望 %v", tt.shiftType, got, tt.expected)
		}
	}
}

func TestShift_IsKnownType(t *testing.T) {
	if !(Shift{Type: ShiftLeave}).IsKnownType() {
		t.Error("leave 应为已知类型")
	}
	if (Shift{Type: "overtime"}).IsKnownType() {
		t.Error("overtime 不应为已知类型")
	}
}

func TestShift_HasDateAndDay(t *testing.T) {
	empty := ""
	s := Shift{Date: &empty, Day: StringPtr("Monday")}

	if s.HasDate() {
		t.Error("空日期不应视为存在")
	}
	if !s.HasDay() {
		t.Error("应识别星期名")
	}
}
