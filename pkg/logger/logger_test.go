package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"climb-planner/backend/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		wantErr bool
	}{
		{name: "json", cfg: config.LogConfig{Level: "info", Format: "json"}},
		{name: "console", cfg: config.LogConfig{Level: "debug", Format: "console"}},
		{name: "非法级别", cfg: config.LogConfig{Level: "loud", Format: "json"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(&tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("期望返回错误")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLogger 失败: %v", err)
			}
			lvl, _ := zapcore.ParseLevel(tt.cfg.Level)
			if !l.Core().Enabled(lvl) {
				t.Errorf("期望启用级别 %s", tt.cfg.Level)
			}
		})
	}
}
