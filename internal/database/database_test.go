package database

import (
	"strings"
	"testing"
)

func TestTruncateQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantLen int
	}{
		{"短查询保持原样", "SELECT 1", 8},
		{"恰好200字符", strings.Repeat("x", 200), 200},
		{"超长查询截断", strings.Repeat("x", 250), 203},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateQuery(tt.query); len(got) != tt.wantLen {
				t.Errorf("len(truncateQuery()) = %d, 期望 %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestClose_NilDB(t *testing.T) {
	db := &DB{}
	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
