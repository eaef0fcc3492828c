// Package model 定义工时引擎的核心数据模型
package model

import "strings"

// Employee 员工
type Employee struct {
	ID        int    `json:"id" yaml:"id" db:"id"`
	FirstName string `json:"firstName" yaml:"firstName" db:"first_name"`
	LastName  string `json:"lastName" yaml:"lastName" db:"last_name"`
}

// FullName 返回 "名 姓"，缺失部分省略
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// EmployeeIndex 按ID建立员工索引
func EmployeeIndex(employees []Employee) map[int]Employee {
	index := make(map[int]Employee, len(employees))
	for _, e := range employees {
		index[e.ID] = e
	}
	return index
}
