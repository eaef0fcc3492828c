// Package matcher 判断班次是否属于某个日历日
package matcher

import (
	"strings"
	"time"

	"github.com/paiban/shifthours/pkg/model"
)

// RefKind 日期关联方式
type RefKind int

const (
	RefNone          RefKind = iota // 无日期关联
	RefByDate                       // 按具体日期
	RefByWeekdayName                // 按星期名
)

// String 返回关联方式名称
func (k RefKind) String() string {
	switch k {
	case RefByDate:
		return "by_date"
	case RefByWeekdayName:
		return "by_weekday_name"
	default:
		return "none"
	}
}

// DayRef 班次的日期关联
//
// Kind 为 RefByDate 时 Valid 表示日期能否解析；无法解析的日期不再回退到星期名。
type DayRef struct {
	Kind  RefKind
	Date  time.Time
	Name  string
	Valid bool
}

// dateLayouts 可接受的日期格式
var dateLayouts = []string{
	model.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate 按可接受的格式解析日期
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Resolve 解析班次的日期关联
func Resolve(s model.Shift) DayRef {
	if s.HasDate() {
		t, ok := ParseDate(*s.Date)
		return DayRef{Kind: RefByDate, Date: t, Valid: ok}
	}
	if s.HasDay() {
		return DayRef{Kind: RefByWeekdayName, Name: *s.Day, Valid: true}
	}
	return DayRef{Kind: RefNone}
}

// Matches 判断班次是否属于 target 所在日期
func Matches(s model.Shift, target time.Time) bool {
	return Resolve(s).Matches(target)
}

// Matches 判断日期关联是否命中 target
func (r DayRef) Matches(target time.Time) bool {
	if !r.Valid {
		return false
	}
	switch r.Kind {
	case RefByDate:
		return sameDay(r.Date, target)
	case RefByWeekdayName:
		return MatchWeekdayName(r.Name, target.Weekday())
	default:
		return false
	}
}

// MatchWeekdayName 按顺序尝试：完全匹配、忽略大小写、忽略大小写的三字母缩写
func MatchWeekdayName(name string, weekday time.Weekday) bool {
	full := weekday.String()
	if name == full {
		return true
	}
	if strings.EqualFold(name, full) {
		return true
	}
	return strings.EqualFold(name, full[:3])
}

// ParseWeekdayName 将星期名解析为 time.Weekday，规则同 MatchWeekdayName
func ParseWeekdayName(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if MatchWeekdayName(name, d) {
			return d, true
		}
	}
	return 0, false
}

// WeekdayName 返回英文星期名（Sunday..Saturday）
func WeekdayName(t time.Time) string {
	return t.Weekday().String()
}

// sameDay 按年月日比较，不做时区换算
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
