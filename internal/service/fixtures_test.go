package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"climb-planner/backend/internal/dto"
	"climb-planner/backend/internal/model"
	"climb-planner/backend/internal/repository"
	"climb-planner/backend/internal/testutil"
)

// ── sqlite 事务型测试辅助 ──

type plannerFixture struct {
	db       *gorm.DB
	repo     *repository.Repository
	blocks   BlockService
	plans    PlanService
	copies   CopyService
	resource ResourceService
}

func newPlannerFixture(t *testing.T) *plannerFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewRepository(db)
	return &plannerFixture{
		db:       db,
		repo:     repo,
		blocks:   NewBlockService(repo, nopLogger()),
		plans:    NewPlanService(repo, nopLogger()),
		copies:   NewCopyService(repo, nopLogger()),
		resource: NewResourceService(repo, nil, 0, nopLogger()),
	}
}

func (f *plannerFixture) user(t *testing.T, email string) string {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "x"}
	require.NoError(t, f.repo.User.Create(context.Background(), u))
	return u.UserID
}

func (f *plannerFixture) block(t *testing.T, userID, title string) *dto.BlockResponse {
	t.Helper()
	b, err := f.blocks.Create(context.Background(), userID, &dto.CreateBlockRequest{Title: title})
	require.NoError(t, err)
	return b
}

func (f *plannerFixture) plan(t *testing.T, userID, title string) *dto.PlanDetailResponse {
	t.Helper()
	p, err := f.plans.Create(context.Background(), userID, &dto.CreatePlanRequest{Title: title})
	require.NoError(t, err)
	detail, err := f.plans.GetDetail(context.Background(), userID, p.ID)
	require.NoError(t, err)
	return detail
}

func (f *plannerFixture) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Table(table).Count(&n).Error)
	return n
}

// toEditRequest 把详情转换为可回传的编辑请求（保留全部 id）
func toEditRequest(d *dto.PlanDetailResponse) *dto.UpdatePlanRequest {
	req := &dto.UpdatePlanRequest{
		Title:       d.Title,
		Tags:        d.Tags,
		IsFavorited: d.IsFavorited,
		Weeks:       make([]dto.WeekInput, 0, len(d.Weeks)),
	}
	for _, w := range d.Weeks {
		week := dto.WeekInput{ID: w.ID, WeekNumber: w.WeekNumber}
		for day := 1; day <= dto.DaysInWeek; day++ {
			for _, a := range w.Days.Get(day) {
				week.Days.Add(day, dto.AssignmentInput{ID: a.ID, BlockID: a.BlockID, TimeSlot: a.TimeSlot})
			}
		}
		req.Weeks = append(req.Weeks, week)
	}
	return req
}
