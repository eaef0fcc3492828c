package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paiban/shifthours/internal/config"
	"github.com/paiban/shifthours/internal/metrics"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	return cfg
}

func TestRouter_SystemEndpoints(t *testing.T) {
	r := newRouter(testConfig(t), nil)

	tests := []struct {
		name     string
		path     string
		wantBody string
	}{
		{"健康检查", "/health", `"status":"ok"`},
		{"版本信息", "/version", `"version":"dev"`},
		{"监控指标", "/metrics", "shifthours_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("状态 = %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("响应缺少 %q:\n%s", tt.wantBody, rec.Body.String())
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("缺少 X-Request-ID")
			}
		})
	}
}

func TestRouter_HoursWithoutDatabase(t *testing.T) {
	r := newRouter(testConfig(t), nil)

	body := `{"period":{"startDate":"2026-01-05"},"shifts":[{"startTime":"22:00","endTime":"02:00","day":"Monday","employeeId":1}],"employees":[{"id":1,"firstName":"Ann","lastName":"Lee"}]}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/hours/weekly", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("状态 = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			TotalHours float64 `json:"totalHours"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Data.TotalHours != 4 {
		t.Errorf("TotalHours = %v, 期望 4", resp.Data.TotalHours)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/hours/weekly?start_date=2026-01-05", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("未启用数据库时状态 = %d, 期望 404", rec.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newRouter(testConfig(t), nil)

	for _, path := range []string{"/api/v1/hours/weekly", "/api/v1/hours/diagnostic", "/api/v1/hours/export"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, path, nil)
			req.Header.Set("Origin", "https://roster.example.com")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("预检状态 = %d, body = %s", rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("Access-Control-Allow-Origin = %q", got)
			}
			if rec.Body.Len() != 0 {
				t.Errorf("预检不应执行处理器: %s", rec.Body.String())
			}
		})
	}
}

func TestRouter_RateLimitedRequestsAreCounted(t *testing.T) {
	cfg := testConfig(t)
	cfg.API.RateLimit = 1
	r := newRouter(cfg, nil)

	counter := metrics.GetRegistry().GetCounter(metrics.HTTPRequestsTotal)
	before := counter.Value(http.MethodGet, "/health", "429")

	limited := 0
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	if limited == 0 {
		t.Fatal("期望触发限流")
	}
	if got := counter.Value(http.MethodGet, "/health", "429") - before; got != float64(limited) {
		t.Errorf("429 计数 = %v, 期望 %d", got, limited)
	}
}
