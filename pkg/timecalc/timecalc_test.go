package timecalc

import (
	"math"
	"testing"

	"github.com/paiban/shifthours/pkg/errors"
)

func TestToMinutes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
		wantErr  bool
	}{
		{"零点", "00:00", 0, false},
		{"早八点", "08:00", 480, false},
		{"带分钟", "12:30", 750, false},
		{"单位数", "8:5", 485, false},
		{"超范围小时保留", "25:00", 1500, false},
		{"负小时保留", "-1:30", -30, false},
		{"空字符串", "", 0, true},
		{"缺少冒号", "0800", 0, true},
		{"三段", "08:00:00", 0, true},
		{"非数字小时", "ab:00", 0, true},
		{"非数字分钟", "08:xx", 0, true},
		{"分钟为空", "08:", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMinutes(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ToMinutes(%q) 应返回错误", tt.input)
				}
				if !errors.Is(err, errors.CodeInvalidFormat) {
					t.Errorf("错误码 = %s, 期望 %s", errors.GetCode(err), errors.CodeInvalidFormat)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToMinutes(%q) 意外错误: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ToMinutes(%q) = %d, 期望 %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected float64
	}{
		{"两小时", "04:00", "06:00", 2.0},
		{"四个半小时", "08:00", "12:30", 4.5},
		{"下午四小时", "14:00", "18:00", 4.0},
		{"跨零点", "22:00", "02:00", 4.0},
		{"跨零点夜班", "22:00", "06:00", 8.0},
		{"开始等于结束", "09:00", "09:00", 0},
		{"结束在零点", "16:00", "00:00", 8.0},
		{"二十分钟四舍五入", "08:00", "08:20", 0.33},
		{"四十分钟四舍五入", "08:00", "08:40", 0.67},
		{"差一分钟整天", "00:01", "00:00", 23.98},
		{"开始格式错误", "abc", "10:00", 0},
		{"结束为空", "08:00", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Duration(tt.start, tt.end); got != tt.expected {
				t.Errorf("Duration(%q, %q) = %v, 期望 %v", tt.start, tt.end, got, tt.expected)
			}
		})
	}
}

func TestDuration_SameStartAndEndIsZero(t *testing.T) {
	for _, s := range []string{"00:00", "06:15", "12:00", "23:59"} {
		if got := Duration(s, s); got != 0 {
			t.Errorf("Duration(%q, %q) = %v, 期望 0", s, s, got)
		}
	}
}

func TestParseDuration_ReportsMalformedInput(t *testing.T) {
	if _, err := ParseDuration("8", "10:00"); !errors.Is(err, errors.CodeInvalidFormat) {
		t.Errorf("期望 INVALID_FORMAT, 得到 %v", err)
	}
	if _, err := ParseDuration("08:00", "10-00"); !errors.Is(err, errors.CodeInvalidFormat) {
		t.Errorf("期望 INVALID_FORMAT, 得到 %v", err)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{1.234, 1.23},
		{1.236, 1.24},
		{0.125, 0.13},
		{2.0 / 3.0, 0.67},
		{8, 8},
		{0, 0},
	}

	for _, tt := range tests {
		if got := Round2(tt.input); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("Round2(%v) = %v, 期望 %v", tt.input, got, tt.expected)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		hours    float64
		expected string
	}{
		{"零", 0, "0h"},
		{"NaN", math.NaN(), "0h"},
		{"负数", -1.5, "0h"},
		{"整小时", 2, "2h"},
		{"半小时", 4.5, "4h 30m"},
		{"不向上取整小时", 1.99, "1h 59m"},
		{"不足一小时", 0.25, "0h 15m"},
		{"分钟进位", 1.999, "2h"},
		{"三分之一小时", 0.33, "0h 20m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.hours); got != tt.expected {
				t.Errorf("Format(%v) = %q, 期望 %q", tt.hours, got, tt.expected)
			}
		})
	}
}
