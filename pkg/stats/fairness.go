// Package stats 提供工时汇总与统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/paiban/shifthours/pkg/timecalc"
)

// DefaultStandardWeeklyHours 标准周工时
const DefaultStandardWeeklyHours = 40.0

// FairnessMetrics 工时公平性指标
type FairnessMetrics struct {
	WorkloadGini        float64        `json:"workloadGini"`        // 工时基尼系数 (0=完全公平, 1=完全不公平)
	WorkloadVariance    float64        `json:"workloadVariance"`    // 工时方差
	WorkloadStdDev      float64        `json:"workloadStdDev"`      // 工时标准差
	AvgHoursPerEmployee float64        `json:"avgHoursPerEmployee"` // 人均工时
	MaxHours            float64        `json:"maxHours"`
	MinHours            float64        `json:"minHours"`
	HoursRange          float64        `json:"hoursRange"`
	OvertimeHours       float64        `json:"overtimeHours"` // 超出标准周工时的合计
	EmployeeStats       []EmployeeStat `json:"employeeStats"`
	OverallScore        float64        `json:"overallScore"` // 综合公平性评分 (0-100)
}

// EmployeeStat 员工统计
type EmployeeStat struct {
	EmployeeID    int     `json:"employeeId"`
	EmployeeName  string  `json:"employeeName"`
	TotalHours    float64 `json:"totalHours"`
	ShiftCount    int     `json:"shiftCount"`
	OvertimeHours float64 `json:"overtimeHours"`
	Deviation     float64 `json:"deviation"` // 与平均值的偏差百分比
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct {
	standardWeeklyHours float64
}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer(standardWeeklyHours float64) *FairnessAnalyzer {
	if standardWeeklyHours <= 0 {
		standardWeeklyHours = DefaultStandardWeeklyHours
	}
	return &FairnessAnalyzer{standardWeeklyHours: standardWeeklyHours}
}

// Analyze 分析周工时分布
func (f *FairnessAnalyzer) Analyze(rows []EmployeeHours) *FairnessMetrics {
	if len(rows) == 0 {
		return &FairnessMetrics{
			EmployeeStats: []EmployeeStat{},
			OverallScore:  100,
		}
	}

	hours := make([]float64, len(rows))
	employeeStats := make([]EmployeeStat, len(rows))
	overtime := 0.0
	for i, r := range rows {
		hours[i] = r.Hours
		employeeStats[i] = EmployeeStat{
			EmployeeID:   r.EmployeeID,
			EmployeeName: r.EmployeeName,
			TotalHours:   r.Hours,
			ShiftCount:   r.ShiftCount,
		}
		if r.Hours > f.standardWeeklyHours {
			employeeStats[i].OvertimeHours = timecalc.Round2(r.Hours - f.standardWeeklyHours)
			overtime += employeeStats[i].OvertimeHours
		}
	}

	avgHours := mean(hours)
	variance := varianceOf(hours, avgHours)
	stdDev := math.Sqrt(variance)
	maxHours, minHours := valueRange(hours)

	for i := range employeeStats {
		if avgHours > 0 {
			employeeStats[i].Deviation = timecalc.Round2((employeeStats[i].TotalHours - avgHours) / avgHours * 100)
		}
	}

	// 按工时降序
	sort.SliceStable(employeeStats, func(i, j int) bool {
		return employeeStats[i].TotalHours > employeeStats[j].TotalHours
	})

	gini := giniOf(hours)

	return &FairnessMetrics{
		WorkloadGini:        gini,
		WorkloadVariance:    variance,
		WorkloadStdDev:      stdDev,
		AvgHoursPerEmployee: timecalc.Round2(avgHours),
		MaxHours:            maxHours,
		MinHours:            minHours,
		HoursRange:          timecalc.Round2(maxHours - minHours),
		OvertimeHours:       timecalc.Round2(overtime),
		EmployeeStats:       employeeStats,
		OverallScore:        overallScore(gini, stdDev, avgHours),
	}
}

// mean 计算平均值
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// varianceOf 计算方差
func varianceOf(values []float64, avg float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - avg
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// valueRange 计算极值
func valueRange(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// giniOf 计算基尼系数
func giniOf(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}

	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}

// overallScore 综合评分：基尼系数占 70%，变异系数占 30%
func overallScore(gini, stdDev, avgHours float64) float64 {
	const (
		giniWeight = 0.7
		cvWeight   = 0.3
	)

	giniScore := (1 - gini) * 100

	cvScore := 100.0
	if avgHours > 0 {
		cv := stdDev / avgHours
		cvScore = math.Max(0, 100-cv*200)
	}

	score := giniWeight*giniScore + cvWeight*cvScore
	return math.Max(0, math.Min(100, score))
}
