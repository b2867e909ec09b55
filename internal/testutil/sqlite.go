// Package testutil 提供测试共用的 sqlite 数据库
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"climb-planner/backend/config"
	"climb-planner/backend/pkg/database"
)

// NewSQLiteDB 在临时目录创建 sqlite 数据库并执行全部迁移
// 每个测试独立一个文件，测试之间互不影响
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "planner_test.db"),
	}
	db, err := database.NewDB(cfg, "error", zap.NewNop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(sqlDB, "sqlite", zap.NewNop()))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
