package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"climb-planner/backend/config"
	"climb-planner/backend/internal/repository"
	"climb-planner/backend/internal/service"
	"climb-planner/backend/pkg/database"
	applogger "climb-planner/backend/pkg/logger"
	"climb-planner/backend/pkg/redis"
)

var configPath string

// rootCmd resourcectl 根命令
var rootCmd = &cobra.Command{
	Use:   "resourcectl",
	Short: "管理公共训练资源",
	Long: `发布、列出、下架公共训练资源。

子命令：
  list    - 列出已发布资源
  create  - 从 YAML 种子文件发布资源
  remove  - 下架资源（用户已复制的内容不受影响）`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径（默认查找 ./config/config.yaml）")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(removeCmd)
}

// app 命令执行期间共享的依赖
type app struct {
	logger    *zap.Logger
	resources service.ResourceService
	close     func()
}

// openApp 按服务端相同的配置连接数据库与 Redis；Redis 可用时发布/下架会同步清理列表缓存
func openApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	if err := database.RunMigrations(sqlDB, cfg.Database.Driver, logger); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 不可用，资源列表缓存需等待过期", zap.Error(err))
			rdb = nil
		}
	}

	repo := repository.NewRepository(db)

	return &app{
		logger:    logger,
		resources: service.NewResourceService(repo, rdb, cfg.Planner.ResourceCacheTTL, logger),
		close: func() {
			if rdb != nil {
				rdb.Close()
			}
			sqlDB.Close()
			logger.Sync()
		},
	}, nil
}
