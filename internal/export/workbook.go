// Package export 将周工时汇总导出为 xlsx 工作簿
package export

import (
	"fmt"
	"io"

	"github.com/paiban/shifthours/pkg/diagnostic"
	"github.com/paiban/shifthours/pkg/model"
	"github.com/paiban/shifthours/pkg/stats"
	"github.com/paiban/shifthours/pkg/timecalc"
	"github.com/xuri/excelize/v2"
)

// 工作表名称
const (
	WeeklySheet     = "Weekly Hours"
	DiagnosticSheet = "Diagnostics"
)

// ContentType xlsx 的 MIME 类型
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Build 生成工作簿，report 为 nil 时不生成自检工作表
func Build(summary *stats.WeeklySummary, employees []model.Employee, report *diagnostic.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", WeeklySheet); err != nil {
		f.Close()
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := writeWeekly(f, header, summary, employees); err != nil {
		f.Close()
		return nil, fmt.Errorf("写入周工时表: %w", err)
	}

	if report != nil {
		if _, err := f.NewSheet(DiagnosticSheet); err != nil {
			f.Close()
			return nil, err
		}
		if err := writeDiagnostic(f, header, report); err != nil {
			f.Close()
			return nil, fmt.Errorf("写入自检表: %w", err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write 生成工作簿并写入 w
func Write(w io.Writer, summary *stats.WeeklySummary, employees []model.Employee, report *diagnostic.Report) error {
	f, err := Build(summary, employees, report)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Write(w)
}

// writeWeekly 员工 × 星期的工时矩阵，末列为合计
func writeWeekly(f *excelize.File, header int, summary *stats.WeeklySummary, employees []model.Employee) error {
	title := fmt.Sprintf("Weekly hours %s ~ %s", summary.Period.StartDate, summary.Period.EndDate)
	if err := f.SetCellValue(WeeklySheet, "A1", title); err != nil {
		return err
	}

	cols := []interface{}{"ID", "Employee"}
	for _, day := range summary.Days {
		cols = append(cols, fmt.Sprintf("%s %s", day.Weekday, day.Date))
	}
	cols = append(cols, "Total", "Formatted")
	if err := f.SetSheetRow(WeeklySheet, "A3", &cols); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(cols), 3)
	if err := f.SetCellStyle(WeeklySheet, "A3", last, header); err != nil {
		return err
	}

	// 每天按员工拆分工时
	daily := make([]model.HourTotal, len(summary.Days))
	for i, day := range summary.Days {
		daily[i] = stats.PerEmployeeHours(employees, day.Shifts)
	}

	row := 4
	for _, e := range summary.Employees {
		values := []interface{}{e.EmployeeID, e.EmployeeName}
		for i := range summary.Days {
			values = append(values, daily[i][e.EmployeeID])
		}
		values = append(values, e.Hours, e.Formatted)

		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(WeeklySheet, cell, &values); err != nil {
			return err
		}
		row++
	}

	totals := []interface{}{"", "Total"}
	for _, day := range summary.Days {
		totals = append(totals, day.Hours)
	}
	totals = append(totals, summary.TotalHours, timecalc.Format(summary.TotalHours))
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(WeeklySheet, cell, &totals); err != nil {
		return err
	}
	end, _ := excelize.CoordinatesToCellName(len(totals), row)
	if err := f.SetCellStyle(WeeklySheet, cell, end, header); err != nil {
		return err
	}

	if summary.UnattributedHours > 0 {
		note, _ := excelize.CoordinatesToCellName(2, row+2)
		msg := fmt.Sprintf("Unattributed hours: %s", timecalc.Format(summary.UnattributedHours))
		if err := f.SetCellValue(WeeklySheet, note, msg); err != nil {
			return err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(cols))
	if err := f.SetColWidth(WeeklySheet, "B", "B", 24); err != nil {
		return err
	}
	return f.SetColWidth(WeeklySheet, "C", lastCol, 20)
}

// writeDiagnostic 自检用例与数据问题
func writeDiagnostic(f *excelize.File, header int, report *diagnostic.Report) error {
	status := "READY"
	if !report.Ready {
		status = "NOT READY"
	}
	rows := [][]interface{}{
		{"Run ID", report.RunID},
		{"Status", status},
		{"Failed cases", report.FailedCases},
		{},
		{"Start", "End", "Expected", "Actual", "Passed", "Error"},
	}
	headerRows := []int{5}

	for _, c := range report.Cases {
		rows = append(rows, []interface{}{c.Start, c.End, c.Expected, c.Actual, c.Passed, c.Err})
	}

	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"Severity", "Type", "Employee", "Shifts", "Message"})
	headerRows = append(headerRows, len(rows))
	for _, finding := range report.Findings {
		employee := ""
		if finding.EmployeeID != nil {
			employee = fmt.Sprint(*finding.EmployeeID)
		}
		rows = append(rows, []interface{}{
			finding.Severity, string(finding.Type), employee, fmt.Sprint(finding.ShiftIndex), finding.Message,
		})
	}

	for i, values := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(DiagnosticSheet, cell, &values); err != nil {
			return err
		}
	}
	for _, r := range headerRows {
		start, _ := excelize.CoordinatesToCellName(1, r)
		end, _ := excelize.CoordinatesToCellName(6, r)
		if err := f.SetCellStyle(DiagnosticSheet, start, end, header); err != nil {
			return err
		}
	}

	return f.SetColWidth(DiagnosticSheet, "E", "E", 60)
}
