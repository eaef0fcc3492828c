package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/paiban/shifthours/pkg/model"
)

// stubConnector 返回固定结果集的测试驱动
type stubConnector struct {
	columns []string
	rows    [][]driver.Value
	args    []driver.NamedValue
	err     error
}

func (c *stubConnector) Connect(context.Context) (driver.Conn, error) { return &stubConn{c: c}, nil }
func (c *stubConnector) Driver() driver.Driver                        { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return nil, errors.New("use connector") }

type stubConn struct{ c *stubConnector }

func (s *stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (s *stubConn) Close() error                        { return nil }
func (s *stubConn) Begin() (driver.Tx, error)           { return nil, errors.New("read only") }

func (s *stubConn) QueryContext(_ context.Context, _ string, args []driver.NamedValue) (driver.Rows, error) {
	if s.c.err != nil {
		return nil, s.c.err
	}
	s.c.args = args
	return &stubRows{columns: s.c.columns, rows: s.c.rows}, nil
}

type stubRows struct {
	columns []string
	rows    [][]driver.Value
	pos     int
}

func (r *stubRows) Columns() []string { return r.columns }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

func openStub(t *testing.T, c *stubConnector) *sql.DB {
	t.Helper()
	db := sql.OpenDB(c)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestShiftRepository_ListByPeriod(t *testing.T) {
	wednesday := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)
	stub := &stubConnector{
		columns: []string{"start_time", "end_time", "shift_type", "shift_date", "weekday", "employee_id", "user_id", "notes"},
		rows: [][]driver.Value{
			{"08:00", "16:00", "work", nil, "Monday", int64(1), nil, nil},
			{"22:00", "06:00", nil, wednesday, nil, nil, int64(2), "夜班"},
		},
	}

	period := model.NewWeekPeriod(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	shifts, err := NewShiftRepository(openStub(t, stub)).ListByPeriod(context.Background(), period)
	if err != nil {
		t.Fatalf("ListByPeriod() error = %v", err)
	}

	want := []model.Shift{
		{StartTime: "08:00", EndTime: "16:00", Type: model.ShiftWork, Day: model.StringPtr("Monday"), EmployeeID: model.IntPtr(1)},
		{StartTime: "22:00", EndTime: "06:00", Date: model.StringPtr("2026-01-07"), UserID: model.IntPtr(2), Notes: "夜班"},
	}
	if diff := cmp.Diff(want, shifts); diff != "" {
		t.Errorf("ListByPeriod() 不符 (-want +got):\n%s", diff)
	}

	if len(stub.args) != 2 || stub.args[0].Value != "2026-01-05" || stub.args[1].Value != "2026-01-11" {
		t.Errorf("查询参数 = %+v", stub.args)
	}
}

func TestShiftRepository_QueryError(t *testing.T) {
	stub := &stubConnector{err: errors.New("connection refused")}
	period := model.NewWeekPeriod(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))

	if _, err := NewShiftRepository(openStub(t, stub)).ListByPeriod(context.Background(), period); err == nil {
		t.Error("查询失败时应返回错误")
	}
}

func TestEmployeeRepository_List(t *testing.T) {
	stub := &stubConnector{
		columns: []string{"id", "first_name", "last_name"},
		rows: [][]driver.Value{
			{int64(1), "Ann", "Lee"},
			{int64(2), "Bo", nil},
		},
	}

	employees, err := NewEmployeeRepository(openStub(t, stub)).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []model.Employee{{ID: 1, FirstName: "Ann", LastName: "Lee"}, {ID: 2, FirstName: "Bo"}}
	if diff := cmp.Diff(want, employees); diff != "" {
		t.Errorf("List() 不符 (-want +got):\n%s", diff)
	}
}

func TestEmployeeRepository_List_Empty(t *testing.T) {
	stub := &stubConnector{columns: []string{"id", "first_name", "last_name"}}

	employees, err := NewEmployeeRepository(openStub(t, stub)).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if employees == nil || len(employees) != 0 {
		t.Errorf("空结果应返回空切片, 得到 %v", employees)
	}
}

func TestEmployeeRepository_GetByID(t *testing.T) {
	t.Run("存在", func(t *testing.T) {
		stub := &stubConnector{
			columns: []string{"id", "first_name", "last_name"},
			rows:    [][]driver.Value{{int64(7), "Cy", "Wu"}},
		}

		emp, err := NewEmployeeRepository(openStub(t, stub)).GetByID(context.Background(), 7)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if diff := cmp.Diff(&model.Employee{ID: 7, FirstName: "Cy", LastName: "Wu"}, emp); diff != "" {
			t.Errorf("GetByID() 不符 (-want +got):\n%s", diff)
		}
		if len(stub.args) != 1 || stub.args[0].Value != int64(7) {
			t.Errorf("查询参数 = %+v", stub.args)
		}
	})

	t.Run("不存在", func(t *testing.T) {
		stub := &stubConnector{columns: []string{"id", "first_name", "last_name"}}

		emp, err := NewEmployeeRepository(openStub(t, stub)).GetByID(context.Background(), 9)
		if err != nil || emp != nil {
			t.Errorf("GetByID() = %v, %v, 期望 nil, nil", emp, err)
		}
	})
}
