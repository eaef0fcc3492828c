package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/paiban/shifthours/internal/export"
	"github.com/paiban/shifthours/internal/handler"
	"github.com/paiban/shifthours/pkg/diagnostic"
	"github.com/paiban/shifthours/pkg/errors"
	"github.com/paiban/shifthours/pkg/stats"
	"github.com/paiban/shifthours/pkg/timecalc"
	"github.com/spf13/cobra"
)

// =============================================================================
// weekly - 周工时汇总
// =============================================================================

func newWeeklyCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "汇总一周的工时",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, in, err := opts.load()
			if err != nil {
				return err
			}

			summary := stats.Summarize(in.period, in.Employees, in.Shifts,
				stats.NewFairnessAnalyzer(cfg.Hours.StandardWeeklyHours))
			opts.hoursLogger(cmd).Aggregated(in.period.String(), len(in.Employees), len(in.Shifts), summary.TotalHours)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			return renderWeekly(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出")
	return cmd
}

// renderWeekly 输出周工时表
func renderWeekly(w io.Writer, s *stats.WeeklySummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Weekly hours %s ~ %s\n\n", s.Period.StartDate, s.Period.EndDate)
	fmt.Fprintln(tw, "ID\tEMPLOYEE\tSHIFTS\tHOURS\tFORMATTED")
	for _, e := range s.Employees {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t%s\n", e.EmployeeID, e.EmployeeName, e.ShiftCount, e.Hours, e.Formatted)
	}
	fmt.Fprintf(tw, "\tTotal\t\t%.2f\t%s\n", s.TotalHours, timecalc.Format(s.TotalHours))
	if s.UnattributedHours > 0 {
		fmt.Fprintf(tw, "\tUnattributed\t\t%.2f\t%s\n", s.UnattributedHours, timecalc.Format(s.UnattributedHours))
	}

	fmt.Fprintln(tw, "\nDAY\tDATE\tSHIFTS\tHOURS")
	for _, d := range s.Days {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", d.Weekday, d.Date, len(d.Shifts), timecalc.Format(d.Hours))
	}

	if f := s.Fairness; f != nil && len(f.EmployeeStats) > 0 {
		fmt.Fprintf(tw, "\nFairness score %.1f (gini %.3f, overtime %s)\n",
			f.OverallScore, f.WorkloadGini, timecalc.Format(f.OvertimeHours))
	}

	return tw.Flush()
}

// =============================================================================
// diagnose - 导出前自检
// =============================================================================

func newDiagnoseCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "执行工时自检并输出报告，未通过时返回非零退出码",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, in, err := opts.load()
			if err != nil {
				return err
			}

			harness := diagnostic.NewHarness(handler.DiagnosticConfig(cfg.Hours), opts.hoursLogger(cmd))
			report := harness.Run(in.schedule(), in.Shifts, in.Employees)

			if asJSON {
				err = writeJSON(cmd.OutOrStdout(), report)
			} else {
				err = report.Render(cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}

			if !report.Ready {
				return errors.New(errors.CodeValidationFail,
					fmt.Sprintf("%d 项时长用例未通过", report.FailedCases))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出")
	return cmd
}

// =============================================================================
// export - 导出 xlsx
// =============================================================================

func newExportCmd(opts *options) *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "自检后导出周工时工作簿",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, in, err := opts.load()
			if err != nil {
				return err
			}

			log := opts.hoursLogger(cmd)
			report := diagnostic.NewHarness(handler.DiagnosticConfig(cfg.Hours), log).
				Run(in.schedule(), in.Shifts, in.Employees)
			if !report.Ready && cfg.Hours.BlockExportOnFailure && !force {
				report.Render(cmd.ErrOrStderr())
				return errors.ExportBlocked(report.FailedCases)
			}

			summary := stats.Summarize(in.period, in.Employees, in.Shifts,
				stats.NewFairnessAnalyzer(cfg.Hours.StandardWeeklyHours))

			if output == "" {
				output = fmt.Sprintf("shift-hours-%s.xlsx", summary.Period.StartDate)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("创建输出文件: %w", err)
			}
			if err := export.Write(f, summary, in.Employees, report); err != nil {
				f.Close()
				return fmt.Errorf("写入工作簿: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "已导出 %s (%s, %d 名员工)\n",
				output, timecalc.Format(summary.TotalHours), len(summary.Employees))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件，默认 shift-hours-<开始日期>.xlsx")
	cmd.Flags().BoolVar(&force, "force", false, "自检未通过时仍然导出")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
