package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/paiban/shifthours/pkg/model"
)

// ShiftRepository 班次仓储
type ShiftRepository struct {
	db DB
}

// NewShiftRepository 创建班次仓储
func NewShiftRepository(db DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// ListByPeriod 查询统计窗口内的班次
//
// 返回 shift_date 落在窗口内的记录，以及只带星期名的记录；
// 后者是否属于窗口由工时引擎按星期名匹配决定。
func (r *ShiftRepository) ListByPeriod(ctx context.Context, period model.SchedulePeriod) ([]model.Shift, error) {
	days := period.Days()
	query := `
		SELECT start_time, end_time, shift_type, shift_date, weekday,
			employee_id, user_id, notes
		FROM shifts
		WHERE (shift_date BETWEEN $1 AND $2)
			OR (shift_date IS NULL AND weekday IS NOT NULL)
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query,
		days[0].Format(model.DateLayout), days[len(days)-1].Format(model.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("查询班次列表失败: %w", err)
	}
	defer rows.Close()

	shifts := []model.Shift{}
	for rows.Next() {
		s, err := r.scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历班次失败: %w", err)
	}

	return shifts, nil
}

// scanShift 扫描班次行，可空列映射为可选字段
func (r *ShiftRepository) scanShift(row Scanner) (model.Shift, error) {
	var (
		s          model.Shift
		shiftType  sql.NullString
		date       sql.NullTime
		weekday    sql.NullString
		employeeID sql.NullInt64
		userID     sql.NullInt64
		notes      sql.NullString
	)

	err := row.Scan(
		&s.StartTime, &s.EndTime, &shiftType, &date, &weekday,
		&employeeID, &userID, &notes,
	)
	if err != nil {
		return s, fmt.Errorf("扫描班次失败: %w", err)
	}

	s.Type = model.ShiftType(shiftType.String)
	if date.Valid {
		s.Date = model.StringPtr(date.Time.Format(model.DateLayout))
	}
	s.Day = nullString(weekday)
	s.EmployeeID = nullInt(employeeID)
	s.UserID = nullInt(userID)
	s.Notes = notes.String

	return s, nil
}
