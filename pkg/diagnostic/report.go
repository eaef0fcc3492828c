package diagnostic

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/paiban/shifthours/pkg/timecalc"
)

// Render 输出面向操作员的文本报告，返回首个写入错误
func (r *Report) Render(w io.Writer) error {
	ew := &errWriter{w: w}
	tw := tabwriter.NewWriter(ew, 0, 4, 2, ' ', 0)

	status := "READY"
	if !r.Ready {
		status = "NOT READY"
	}
	fmt.Fprintf(tw, "Hours diagnostic %s: %s\n", r.RunID, status)
	fmt.Fprintf(tw, "Generated at %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	fmt.Fprintln(tw, "Time cases")
	fmt.Fprintln(tw, "  START\tEND\tEXPECTED\tACTUAL\tRESULT")
	for _, c := range r.Cases {
		result := "pass"
		if !c.Passed {
			result = "FAIL"
			if c.Err != "" {
				result += " (" + c.Err + ")"
			}
		}
		fmt.Fprintf(tw, "  %s\t%s\t%.2f\t%.2f\t%s\n", c.Start, c.End, c.Expected, c.Actual, result)
	}
	fmt.Fprintf(tw, "  %d of %d failed\n\n", r.FailedCases, len(r.Cases))

	if in := r.Inspection; in != nil {
		fmt.Fprintf(tw, "Data (%s ~ %s)\n", in.Period.StartDate, in.Period.EndDate)
		fmt.Fprintf(tw, "  shifts\t%d\n", in.ShiftCount)
		fmt.Fprintf(tw, "  employees\t%d\n", in.EmployeeCount)
		fmt.Fprintf(tw, "  with date / day\t%d / %d\n", in.Presence.Date, in.Presence.Day)
		fmt.Fprintf(tw, "  with employeeId / userId\t%d / %d\n", in.Presence.EmployeeID, in.Presence.UserID)
		fmt.Fprintf(tw, "  referenced ids resolved\t%d of %d\n", in.ResolvedIDs, in.ReferencedIDs)
		fmt.Fprintf(tw, "  unattributed shifts\t%d\n", in.UnresolvedShifts)
		fmt.Fprintf(tw, "  total hours\t%s\n\n", timecalc.Format(in.TotalHours))

		fmt.Fprintln(tw, "Shifts per day")
		for _, d := range in.PerDay {
			fmt.Fprintf(tw, "  %s\t%d\n", d.Weekday, d.Count)
		}
		fmt.Fprintln(tw)

		fmt.Fprintln(tw, "Hours per employee")
		ids := make([]int, 0, len(in.PerEmployee))
		for id := range in.PerEmployee {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			fmt.Fprintf(tw, "  %d\t%s\n", id, timecalc.Format(in.PerEmployee[id]))
		}
		fmt.Fprintln(tw)
	}

	fmt.Fprintf(tw, "Findings (%d errors, %d warnings)\n", r.Errors, r.Warnings)
	for _, f := range r.Findings {
		fmt.Fprintf(tw, "  [%s]\t%s\t%s\n", f.Severity, f.Type, f.Message)
	}

	if err := tw.Flush(); err != nil {
		return err
	}
	return ew.err
}

// errWriter 记住首个写入错误，之后的写入直接丢弃
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
