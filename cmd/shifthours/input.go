package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paiban/shifthours/internal/handler"
	"github.com/paiban/shifthours/pkg/model"
	"gopkg.in/yaml.v3"
)

// input 解析后的输入文件，格式与 HTTP 请求体相同
type input struct {
	handler.HoursRequest
	period model.SchedulePeriod
}

// readInput 按扩展名解析 JSON 或 YAML，未知扩展名按 JSON 处理；
// 两种格式与 HTTP 请求体一致，均忽略未知字段
func readInput(path string) (*input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取输入文件: %w", err)
	}

	req := &handler.HoursRequest{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, req)
	default:
		req, err = handler.DecodeJSON(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("解析 %s: %w", filepath.Base(path), err)
	}

	if ve := handler.ValidateRequest(req); ve.HasErrors() {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ve)
	}
	period, err := model.ParsePeriod(req.Period)
	if err != nil {
		return nil, err
	}

	return &input{HoursRequest: *req, period: period}, nil
}

// schedule 输入对应的排班
func (in *input) schedule() model.Schedule {
	name := in.Name
	if name == "" {
		name = in.period.String()
	}
	return model.NewSchedule(name, in.period)
}
