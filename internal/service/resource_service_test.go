package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"climb-planner/backend/internal/dto"
)

func enduranceSeed() *dto.ResourceSeed {
	return &dto.ResourceSeed{
		Title:       "Sport Climbing Endurance Builder",
		Description: "Six weeks of route endurance",
		Content:     "# Overview\n\nClimb **a lot**.\n\n<script>alert(1)</script>",
		Tags:        "endurance, sport",
		Blocks: []dto.CopyBlockRequest{
			{Title: "ARC Training", Description: "30 minutes continuous", Tags: "endurance"},
			{Title: "4x4 Boulders", Description: "four problems four times", Tags: "power-endurance"},
			{Title: "Recovery", Description: "mobility and easy climbing", Tags: "recovery"},
		},
		Plans: []dto.SeedPlan{{
			Title: "6-Week Endurance Program",
			Tags:  "endurance",
			Weeks: []dto.SeedWeek{
				{WeekNumber: 1, Days: map[int][]dto.SeedAssignment{
					1: {{Block: "ARC Training", TimeSlot: "18:00"}},
					3: {{Block: "4x4 Boulders", TimeSlot: "18:00"}},
				}},
				{WeekNumber: 2, Days: map[int][]dto.SeedAssignment{
					2: {{Block: "ARC Training", TimeSlot: "18:00"}},
					6: {{Block: "Recovery", TimeSlot: "10:00"}},
				}},
			},
		}},
	}
}

func TestResourceService_PublishAndDetail(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	summary, err := f.resource.Publish(ctx, enduranceSeed())
	require.NoError(t, err)
	require.Equal(t, "endurance,sport", summary.Tags)

	list, err := f.resource.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	anon, err := f.resource.GetDetail(ctx, summary.ID, "")
	require.NoError(t, err)
	require.Len(t, anon.Blocks, 3)
	require.Equal(t, "ARC Training", anon.Blocks[0].Title)
	require.Len(t, anon.Plans, 1)
	require.Len(t, anon.Plans[0].Weeks, 2)
	require.Equal(t, "Recovery", anon.Plans[0].Weeks[1].Days.Get(6)[0].Title)
	require.Nil(t, anon.CopyableBlocks)
	require.Nil(t, anon.CopyablePlans)

	require.Contains(t, anon.ContentHTML, "<strong>a lot</strong>")
	require.False(t, strings.Contains(anon.ContentHTML, "<script>"), "原始 HTML 不应透传")

	caller := f.user(t, "a@example.com")
	detail, err := f.resource.GetDetail(ctx, summary.ID, caller)
	require.NoError(t, err)
	require.Len(t, detail.CopyableBlocks, 3)
	require.Len(t, detail.CopyablePlans, 1)
	require.Equal(t, "4x4 Boulders", detail.CopyablePlans[0].Weeks[0].Days.Get(3)[0].Title)
}

func TestResourceService_PublishRenumbersWeeks(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	seed := enduranceSeed()
	seed.Plans[0].Weeks = []dto.SeedWeek{
		{WeekNumber: 5, Days: map[int][]dto.SeedAssignment{1: {{Block: "ARC Training", TimeSlot: "18:00"}}}},
		{Days: map[int][]dto.SeedAssignment{2: {{Block: "4x4 Boulders", TimeSlot: "18:00"}}}},
		{WeekNumber: 5, Days: map[int][]dto.SeedAssignment{6: {{Block: "Recovery", TimeSlot: "10:00"}}}},
	}

	summary, err := f.resource.Publish(ctx, seed)
	require.NoError(t, err)

	detail, err := f.resource.GetDetail(ctx, summary.ID, "")
	require.NoError(t, err)
	weeks := detail.Plans[0].Weeks
	require.Len(t, weeks, 3)
	for i, w := range weeks {
		require.Equal(t, i+1, w.WeekNumber)
	}
	// 未写序号的第 2 项补为 2，排在两个 5 之前；两个 5 保持原有先后
	require.Equal(t, "4x4 Boulders", weeks[0].Days.Get(2)[0].Title)
	require.Equal(t, "ARC Training", weeks[1].Days.Get(1)[0].Title)
	require.Equal(t, "Recovery", weeks[2].Days.Get(6)[0].Title)
}

func TestResourceService_CopyableRoundTrip(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()
	summary, err := f.resource.Publish(ctx, enduranceSeed())
	require.NoError(t, err)

	uid := f.user(t, "a@example.com")
	detail, err := f.resource.GetDetail(ctx, summary.ID, uid)
	require.NoError(t, err)

	copied, err := f.copies.CopyPlan(ctx, uid, &detail.CopyablePlans[0])
	require.NoError(t, err)
	// 模板共 4 条排期，引用 3 个不同训练块
	require.Len(t, copied.Blocks, 3)

	mine, err := f.plans.GetDetail(ctx, uid, copied.PlanID)
	require.NoError(t, err)
	require.Equal(t, "6-Week Endurance Program", mine.Title)
	require.Equal(t, 2, mine.Weeks[0].Days.Len())
	require.Equal(t, 2, mine.Weeks[1].Days.Len())
	require.Equal(t, mine.Weeks[0].Days.Get(1)[0].BlockID, mine.Weeks[1].Days.Get(2)[0].BlockID)
}

func TestResourceService_Remove(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()
	summary, err := f.resource.Publish(ctx, enduranceSeed())
	require.NoError(t, err)

	// 用户复制出来的内容不受资源删除影响
	uid := f.user(t, "a@example.com")
	detail, err := f.resource.GetDetail(ctx, summary.ID, uid)
	require.NoError(t, err)
	_, err = f.copies.CopyPlan(ctx, uid, &detail.CopyablePlans[0])
	require.NoError(t, err)

	require.NoError(t, f.resource.Remove(ctx, summary.ID))

	require.Zero(t, f.count(t, "resources"))
	require.Zero(t, f.count(t, "resource_blocks"))
	require.Zero(t, f.count(t, "resource_plans"))
	require.EqualValues(t, 1, f.count(t, "training_plans"))
	require.EqualValues(t, 3, f.count(t, "training_blocks"))
	require.EqualValues(t, 4, f.count(t, "daily_assignments"))

	require.ErrorIs(t, f.resource.Remove(ctx, summary.ID), ErrResourceNotFound)
	_, err = f.resource.GetDetail(ctx, summary.ID, "")
	require.ErrorIs(t, err, ErrResourceNotFound)
}

func TestResourceService_PublishValidation(t *testing.T) {
	f := newPlannerFixture(t)

	tests := []struct {
		name   string
		mutate func(s *dto.ResourceSeed)
	}{
		{name: "资源标题为空", mutate: func(s *dto.ResourceSeed) { s.Title = "" }},
		{name: "训练块标题重复", mutate: func(s *dto.ResourceSeed) { s.Blocks[2].Title = "ARC Training" }},
		{name: "星期越界", mutate: func(s *dto.ResourceSeed) {
			s.Plans[0].Weeks[0].Days[8] = []dto.SeedAssignment{{Block: "ARC Training", TimeSlot: "18:00"}}
		}},
		{name: "时间点非法", mutate: func(s *dto.ResourceSeed) {
			s.Plans[0].Weeks[0].Days[1][0].TimeSlot = "7:00"
		}},
		{name: "引用未声明的训练块", mutate: func(s *dto.ResourceSeed) {
			s.Plans[0].Weeks[1].Days[2][0].Block = "Unknown"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed := enduranceSeed()
			tt.mutate(seed)
			_, err := f.resource.Publish(context.Background(), seed)
			require.ErrorIs(t, err, ErrValidation)
			require.Zero(t, f.count(t, "resources"))
			require.Zero(t, f.count(t, "training_blocks"))
		})
	}
}

func TestResourceService_ListCache(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()
	cache := newMockCache()
	svc := NewResourceService(f.repo, cache, 0, nopLogger())

	_, err := svc.Publish(ctx, enduranceSeed())
	require.NoError(t, err)
	require.Equal(t, 1, cache.deletes, "发布后应清除列表缓存")

	first, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)

	// 第二次命中缓存，不再回写
	second, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, cache.sets)

	// 缓存故障回落数据库
	cache.err = errors.New("redis down")
	third, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, third, 1)
}
