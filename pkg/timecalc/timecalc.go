// Package timecalc 提供 "HH:MM" 时刻到工时的换算
package timecalc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paiban/shifthours/pkg/errors"
)

// MinutesPerDay 一天的分钟数，跨天班次按此补足
const MinutesPerDay = 24 * 60

// ToMinutes 将 "HH:MM" 转换为自零点起的分钟数
//
// 小时不做范围校验，超出 0-23 的值按原样参与计算。
func ToMinutes(hhmm string) (int, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return 0, errors.InvalidFormat(hhmm, "HH:MM")
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeInvalidFormat, fmt.Sprintf("小时部分无效: %q", hhmm))
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeInvalidFormat, fmt.Sprintf("分钟部分无效: %q", hhmm))
	}

	return hours*60 + minutes, nil
}

// ParseDuration 计算班次工时（小时，保留两位小数）
//
// 结束时刻早于开始时刻视为次日结束；开始与结束相同时结果为 0。
func ParseDuration(start, end string) (float64, error) {
	startMin, err := ToMinutes(start)
	if err != nil {
		return 0, err
	}
	endMin, err := ToMinutes(end)
	if err != nil {
		return 0, err
	}

	diff := endMin - startMin
	if diff < 0 {
		diff += MinutesPerDay
	}

	return Round2(float64(diff) / 60), nil
}

// Duration 宽松版工时计算，格式错误时返回 0
func Duration(start, end string) float64 {
	hours, err := ParseDuration(start, end)
	if err != nil {
		return 0
	}
	return hours
}

// Round2 四舍五入到两位小数
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// Format 将小时数渲染为 "8h" 或 "4h 30m"
func Format(hours float64) string {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 {
		return "0h"
	}

	h := math.Floor(hours)
	m := math.Round((hours - h) * 60)
	if m >= 60 {
		h++
		m = 0
	}

	if m == 0 {
		return fmt.Sprintf("%dh", int64(h))
	}
	return fmt.Sprintf("%dh %dm", int64(h), int64(m))
}
