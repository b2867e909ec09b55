package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("CLIMB_AUTH_JWT_SECRET", "test-secret-key-for-config-2026")
	t.Setenv("CLIMB_DB_DRIVER", "sqlite")
	t.Setenv("CLIMB_SERVER_PORT", "8088")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 8088 {
		t.Errorf("期望 Port=8088，实际=%d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("期望 Driver=sqlite，实际=%s", cfg.Database.Driver)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("期望 Level=debug，实际=%s", cfg.Log.Level)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Errorf("期望 AccessTokenTTL=15m，实际=%s", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Planner.SessionDuration != 90*time.Minute {
		t.Errorf("期望 SessionDuration=90m，实际=%s", cfg.Planner.SessionDuration)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 3000},
			Database: DatabaseConfig{Driver: "postgres"},
			Auth:     AuthConfig{JWTSecret: "0123456789abcdef"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "合法配置", mutate: func(c *Config) {}, wantErr: false},
		{name: "密钥为空", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: true},
		{name: "密钥过短", mutate: func(c *Config) { c.Auth.JWTSecret = "short" }, wantErr: true},
		{name: "端口越界", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "未知驱动", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: true},
		{name: "未知导出器", mutate: func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Exporter = "jaeger"
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("期望 wantErr=%v，实际 err=%v", tt.wantErr, err)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := &DatabaseConfig{Driver: "sqlite", SQLitePath: "/tmp/x.db"}
	if got := c.DSN(); got != "/tmp/x.db?_foreign_keys=on&_busy_timeout=5000" {
		t.Errorf("sqlite DSN 不符合预期: %s", got)
	}

	c = &DatabaseConfig{Driver: "postgres", Host: "h", Port: 1, User: "u", Password: "p", Name: "n", SSLMode: "disable", Timezone: "UTC"}
	want := "host=h port=1 user=u password=p dbname=n sslmode=disable TimeZone=UTC"
	if got := c.DSN(); got != want {
		t.Errorf("postgres DSN 不符合预期: %s", got)
	}
}
