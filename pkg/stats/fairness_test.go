package stats

import (
	"testing"
)

func TestFairnessAnalyzer_Analyze(t *testing.T) {
	analyzer := NewFairnessAnalyzer(40)

	rows := []EmployeeHours{
		{EmployeeID: 1, EmployeeName: "员工1", Hours: 48, ShiftCount: 6},
		{EmployeeID: 2, EmployeeName: "员工2", Hours: 24, ShiftCount: 3},
	}

	metrics := analyzer.Analyze(rows)

	if metrics.WorkloadGini <= 0 || metrics.WorkloadGini > 1 {
		t.Errorf("Gini 应在 (0, 1] 之间, 得到 %f", metrics.WorkloadGini)
	}
	if len(metrics.EmployeeStats) != 2 {
		t.Fatalf("期望2条员工统计, 得到 %d", len(metrics.EmployeeStats))
	}
	if metrics.EmployeeStats[0].EmployeeID != 1 {
		t.Error("员工统计应按工时降序")
	}
	if metrics.EmployeeStats[0].OvertimeHours != 8 || metrics.OvertimeHours != 8 {
		t.Errorf("加班工时 = %v / %v, 期望 8", metrics.EmployeeStats[0].OvertimeHours, metrics.OvertimeHours)
	}
	if metrics.AvgHoursPerEmployee != 36 || metrics.HoursRange != 24 {
		t.Errorf("平均 = %v, 极差 = %v", metrics.AvgHoursPerEmployee, metrics.HoursRange)
	}
	if metrics.EmployeeStats[1].Deviation >= 0 {
		t.Errorf("低于平均的员工偏差应为负, 得到 %v", metrics.EmployeeStats[1].Deviation)
	}
}

func TestFairnessAnalyzer_EmptyInput(t *testing.T) {
	metrics := NewFairnessAnalyzer(40).Analyze(nil)

	if metrics == nil {
		t.Fatal("nil 输入应返回空指标")
	}
	if metrics.OverallScore != 100 {
		t.Errorf("空输入评分应为 100, 得到 %v", metrics.OverallScore)
	}
}

func TestFairnessAnalyzer_PerfectFairness(t *testing.T) {
	rows := []EmployeeHours{
		{EmployeeID: 1, Hours: 32},
		{EmployeeID: 2, Hours: 32},
	}

	metrics := NewFairnessAnalyzer(40).Analyze(rows)

	if metrics.WorkloadGini > 0.01 {
		t.Errorf("完全相同应有 Gini≈0, 得到 %f", metrics.WorkloadGini)
	}
	if metrics.OverallScore < 99.99 {
		t.Errorf("完全公平评分应为 100, 得到 %v", metrics.OverallScore)
	}
}

func TestFairnessAnalyzer_AllZeroHours(t *testing.T) {
	rows := []EmployeeHours{{EmployeeID: 1}, {EmployeeID: 2}}

	metrics := NewFairnessAnalyzer(0).Analyze(rows)

	if metrics.WorkloadGini != 0 || metrics.OverallScore < 0 || metrics.OverallScore > 100 {
		t.Errorf("全零工时指标异常: %+v", metrics)
	}
}
