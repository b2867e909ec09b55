package telemetry

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"climb-planner/backend/config"
)

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), &config.TelemetryConfig{Enabled: false}, zap.NewNop())
	if err != nil {
		t.Fatalf("Setup 失败: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("noop shutdown 不应返回错误: %v", err)
	}
}

func TestSetup_Stdout(t *testing.T) {
	cfg := &config.TelemetryConfig{Enabled: true, Exporter: "stdout", ServiceName: "climb-planner-test", SampleRatio: 1}
	shutdown, err := Setup(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Setup 失败: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown 失败: %v", err)
	}
}

func TestClampRatio(t *testing.T) {
	cases := map[float64]float64{-1: 0, 0.5: 0.5, 3: 1}
	for in, want := range cases {
		if got := clampRatio(in); got != want {
			t.Errorf("clampRatio(%v) 期望=%v，实际=%v", in, want, got)
		}
	}
}
