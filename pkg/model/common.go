// Package model 定义工时引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/paiban/shifthours/pkg/errors"
)

// DateLayout 日期格式 YYYY-MM-DD
const DateLayout = "2006-01-02"

// WeekLength 工时统计窗口天数
const WeekLength = 7

// DateRange 日期范围（请求中的文本形式）
type DateRange struct {
	StartDate string `json:"startDate" yaml:"startDate"` // YYYY-MM-DD
	EndDate   string `json:"endDate" yaml:"endDate"`     // YYYY-MM-DD
}

// SchedulePeriod 排班周期，起止日期均包含在内
type SchedulePeriod struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// NewWeekPeriod 以 start 所在日期为起点创建一周周期
func NewWeekPeriod(start time.Time) SchedulePeriod {
	start = truncateDay(start)
	return SchedulePeriod{
		StartDate: start,
		EndDate:   start.AddDate(0, 0, WeekLength-1),
	}
}

// ParsePeriod 解析日期范围；结束日期为空时按一周计算
func ParsePeriod(r DateRange) (SchedulePeriod, error) {
	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return SchedulePeriod{}, errors.InvalidFormat(r.StartDate, DateLayout).WithCause(err)
	}
	if r.EndDate == "" {
		return NewWeekPeriod(start), nil
	}
	end, err := time.Parse(DateLayout, r.EndDate)
	if err != nil {
		return SchedulePeriod{}, errors.InvalidFormat(r.EndDate, DateLayout).WithCause(err)
	}

	p := SchedulePeriod{StartDate: start, EndDate: end}
	if err := p.Validate(); err != nil {
		return SchedulePeriod{}, err
	}
	return p, nil
}

// Validate 检查周期是否有效
func (p SchedulePeriod) Validate() error {
	if p.EndDate.Before(p.StartDate) {
		return errors.InvalidTimeRange(p.StartDate.Format(DateLayout), p.EndDate.Format(DateLayout))
	}
	return nil
}

// Days 返回统计窗口内的7个日期
//
// 窗口固定为 StartDate 起的7天，与 EndDate 无关。
func (p SchedulePeriod) Days() []time.Time {
	start := truncateDay(p.StartDate)
	days := make([]time.Time, WeekLength)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// String 返回 "YYYY-MM-DD ~ YYYY-MM-DD"
func (p SchedulePeriod) String() string {
	return p.StartDate.Format(DateLayout) + " ~ " + p.EndDate.Format(DateLayout)
}

// Range 转换回文本日期范围
func (p SchedulePeriod) Range() DateRange {
	return DateRange{
		StartDate: p.StartDate.Format(DateLayout),
		EndDate:   p.EndDate.Format(DateLayout),
	}
}

// Schedule 排班表（诊断时使用的标识与周期）
type Schedule struct {
	ID     uuid.UUID      `json:"id"`
	Name   string         `json:"name,omitempty"`
	Period SchedulePeriod `json:"period"`
}

// NewSchedule 创建排班表
func NewSchedule(name string, period SchedulePeriod) Schedule {
	return Schedule{
		ID:     uuid.New(),
		Name:   name,
		Period: period,
	}
}

// HourTotal 员工ID到工时（小时）的映射，每次请求重新计算
type HourTotal = map[int]float64

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
