package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/paiban/shifthours/pkg/model"
)

// EmployeeRepository 员工仓储
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository 创建员工仓储
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// List 查询在职员工
func (r *EmployeeRepository) List(ctx context.Context) ([]model.Employee, error) {
	query := `
		SELECT id, first_name, last_name
		FROM employees
		WHERE deleted_at IS NULL
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询员工列表失败: %w", err)
	}
	defer rows.Close()

	employees := []model.Employee{}
	for rows.Next() {
		emp, err := r.scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历员工失败: %w", err)
	}

	return employees, nil
}

// GetByID 根据ID获取员工，不存在时返回 nil
func (r *EmployeeRepository) GetByID(ctx context.Context, id int) (*model.Employee, error) {
	query := `
		SELECT id, first_name, last_name
		FROM employees
		WHERE id = $1 AND deleted_at IS NULL
	`

	emp, err := r.scanEmployee(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// scanEmployee 扫描员工行
func (r *EmployeeRepository) scanEmployee(row Scanner) (model.Employee, error) {
	var (
		emp       model.Employee
		firstName sql.NullString
		lastName  sql.NullString
	)

	if err := row.Scan(&emp.ID, &firstName, &lastName); err != nil {
		if err == sql.ErrNoRows {
			return emp, err
		}
		return emp, fmt.Errorf("扫描员工失败: %w", err)
	}

	emp.FirstName = firstName.String
	emp.LastName = lastName.String
	return emp, nil
}
