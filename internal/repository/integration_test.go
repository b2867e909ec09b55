//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"climb-planner/backend/config"
	"climb-planner/backend/internal/model"
	"climb-planner/backend/internal/repository"
	"climb-planner/backend/pkg/database"
	pkgerrors "climb-planner/backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup（真实 PostgreSQL，go test -tags integration）
// ═══════════════════════════════════════════════════════════

var pgDB *gorm.DB

func TestMain(m *testing.M) {
	cfg := &config.DatabaseConfig{
		Driver:   "postgres",
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     5433,
		User:     envOr("TEST_DB_USER", "climb"),
		Password: envOr("TEST_DB_PASSWORD", "climb_password"),
		Name:     envOr("TEST_DB_NAME", "climb_planner_test"),
		SSLMode:  "disable",
		Timezone: "UTC",
	}

	var err error
	pgDB, err = database.NewDB(cfg, "error", zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := pgDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, "postgres", zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	sqlDB.Close()
	os.Exit(code)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// pgUser 每个用例独立的用户，用例结束后删除（级联清理其训练块与计划）
func pgUser(t *testing.T, repo *repository.Repository) *model.User {
	t.Helper()
	u := &model.User{
		Email:        fmt.Sprintf("it-%d@climb.test", time.Now().UnixNano()),
		PasswordHash: "$2a$10$placeholder",
	}
	require.NoError(t, repo.User.Create(context.Background(), u))
	t.Cleanup(func() {
		pgDB.Exec("DELETE FROM users WHERE user_id = ?", u.UserID)
	})
	return u
}

// ═══════════════════════════════════════════════════════════
// Integration Tests
// ═══════════════════════════════════════════════════════════

func TestIntegration_DuplicateEmail(t *testing.T) {
	repo := repository.NewRepository(pgDB)
	u := pgUser(t, repo)

	err := repo.User.Create(context.Background(), &model.User{Email: u.Email, PasswordHash: "x"})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestIntegration_BlockDeleteCascadesAssignments(t *testing.T) {
	repo := repository.NewRepository(pgDB)
	ctx := context.Background()
	u := pgUser(t, repo)

	block := &model.TrainingBlock{UserID: &u.UserID, Title: "ARC Training"}
	require.NoError(t, repo.Block.Create(ctx, block))
	plan := &model.TrainingPlan{UserID: &u.UserID, Title: "集成测试计划"}
	require.NoError(t, repo.Plan.Create(ctx, plan))
	week := &model.PlanWeek{PlanID: plan.PlanID, WeekNumber: 1}
	require.NoError(t, repo.Plan.CreateWeek(ctx, week))
	require.NoError(t, repo.Plan.CreateAssignment(ctx, &model.DailyAssignment{
		WeekID: week.WeekID, DayOfWeek: 1, BlockID: block.BlockID, TimeSlot: "18:00",
	}))

	require.NoError(t, repo.Block.DeleteOwned(ctx, u.UserID, block.BlockID))

	var n int64
	require.NoError(t, pgDB.Model(&model.DailyAssignment{}).Where("week_id = ?", week.WeekID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestIntegration_ReconcileInTransaction(t *testing.T) {
	repo := repository.NewRepository(pgDB)
	ctx := context.Background()
	u := pgUser(t, repo)

	plan := &model.TrainingPlan{UserID: &u.UserID, Title: "集成测试计划"}
	require.NoError(t, repo.Plan.Create(ctx, plan))
	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Plan.CreateWeek(ctx, &model.PlanWeek{PlanID: plan.PlanID, WeekNumber: i}))
	}
	weeks, err := repo.Plan.ListWeeks(ctx, plan.PlanID)
	require.NoError(t, err)
	require.Len(t, weeks, 3)

	err = repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Plan.DeleteWeeksExcept(ctx, plan.PlanID, []string{weeks[2].WeekID}); err != nil {
			return err
		}
		return tx.Plan.RenumberWeeks(ctx, plan.PlanID)
	})
	require.NoError(t, err)

	got, err := repo.Plan.ListWeeks(ctx, plan.PlanID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, weeks[2].WeekID, got[0].WeekID)
	assert.Equal(t, 1, got[0].WeekNumber)
}

func TestIntegration_ForeignOwnerNotFound(t *testing.T) {
	repo := repository.NewRepository(pgDB)
	ctx := context.Background()
	a := pgUser(t, repo)
	b := pgUser(t, repo)

	plan := &model.TrainingPlan{UserID: &a.UserID, Title: "A 的计划"}
	require.NoError(t, repo.Plan.Create(ctx, plan))

	_, err := repo.Plan.GetOwnedDetail(ctx, b.UserID, plan.PlanID)
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
	assert.ErrorIs(t, repo.Plan.DeleteOwned(ctx, b.UserID, plan.PlanID), pkgerrors.ErrNotFound)
}
