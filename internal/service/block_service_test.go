package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"climb-planner/backend/internal/dto"
	"climb-planner/backend/internal/model"
)

// ── mock 单元测试 ──

func TestBlockService_Create_Validation(t *testing.T) {
	repo, _, blocks := newMockRepository()
	svc := NewBlockService(repo, nopLogger())

	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{name: "正常标题", title: "ARC Training"},
		{name: "空标题", title: "", wantErr: true},
		{name: "纯空白", title: "   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "u1", &dto.CreateBlockRequest{Title: tt.title})
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("期望 ErrValidation，实际: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("创建应成功: %v", err)
			}
		})
	}
	if len(blocks.blocks) != 1 {
		t.Errorf("只应写入 1 个训练块，实际 %d", len(blocks.blocks))
	}
}

func TestBlockService_Create_NormalizesTags(t *testing.T) {
	repo, _, _ := newMockRepository()
	svc := NewBlockService(repo, nopLogger())

	resp, err := svc.Create(context.Background(), "u1", &dto.CreateBlockRequest{
		Title: "  Hangboard  ",
		Tags:  " strength, fingers ,strength,, ",
	})
	if err != nil {
		t.Fatalf("创建应成功: %v", err)
	}
	if resp.Title != "Hangboard" {
		t.Errorf("标题应去空白，实际: %q", resp.Title)
	}
	if resp.Tags != "strength,fingers" {
		t.Errorf("标签应去重去空白，实际: %q", resp.Tags)
	}
	if resp.IsFavorited {
		t.Error("新建训练块默认不收藏")
	}
}

func TestBlockService_ForeignCallerIsNotFound(t *testing.T) {
	repo, _, blocks := newMockRepository()
	svc := NewBlockService(repo, nopLogger())
	owner := "owner"
	blocks.blocks["b1"] = &model.TrainingBlock{BlockID: "b1", UserID: &owner, Title: "Limit Bouldering"}

	ctx := context.Background()
	if _, err := svc.Update(ctx, "intruder", "b1", &dto.UpdateBlockRequest{Title: "hacked"}); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("Update 期望 ErrBlockNotFound，实际: %v", err)
	}
	if _, err := svc.ToggleFavorite(ctx, "intruder", "b1"); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("ToggleFavorite 期望 ErrBlockNotFound，实际: %v", err)
	}
	if err := svc.Delete(ctx, "intruder", "b1"); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("Delete 期望 ErrBlockNotFound，实际: %v", err)
	}
	if err := svc.Delete(ctx, owner, "missing"); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("不存在的训练块期望 ErrBlockNotFound，实际: %v", err)
	}

	b := blocks.blocks["b1"]
	if b.Title != "Limit Bouldering" || b.IsFavorited {
		t.Error("他人操作后训练块不应变化")
	}
}

func TestBlockService_StorageErrorPassesThrough(t *testing.T) {
	repo, _, blocks := newMockRepository()
	svc := NewBlockService(repo, nopLogger())
	blocks.err = errors.New("disk full")

	_, err := svc.Create(context.Background(), "u1", &dto.CreateBlockRequest{Title: "ARC"})
	if err == nil || errors.Is(err, ErrBlockNotFound) {
		t.Errorf("存储错误应原样返回，实际: %v", err)
	}
}

// ── sqlite 事务测试 ──

func TestBlockService_UpdateAndToggle(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()
	uid := f.user(t, "a@example.com")
	b := f.block(t, uid, "ARC Training")

	updated, err := f.blocks.Update(ctx, uid, b.ID, &dto.UpdateBlockRequest{
		Title:       "ARC Training v2",
		Description: "30 min continuous",
		Tags:        "endurance",
		IsFavorited: true,
	})
	require.NoError(t, err)
	require.Equal(t, "ARC Training v2", updated.Title)
	require.Equal(t, "30 min continuous", updated.Description)
	require.True(t, updated.IsFavorited)

	fav, err := f.blocks.ToggleFavorite(ctx, uid, b.ID)
	require.NoError(t, err)
	require.False(t, fav.IsFavorited)

	fav, err = f.blocks.ToggleFavorite(ctx, uid, b.ID)
	require.NoError(t, err)
	require.True(t, fav.IsFavorited)

	list, err := f.blocks.List(ctx, uid, &dto.ListFilter{FavoritedOnly: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestBlockService_DeleteRemovesAssignments(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()
	uid := f.user(t, "a@example.com")
	b := f.block(t, uid, "Fingerboard")
	other := f.block(t, uid, "Core")
	p := f.plan(t, uid, "Base")

	req := toEditRequest(p)
	req.Weeks[0].Days.Add(1, dto.AssignmentInput{BlockID: b.ID, TimeSlot: "18:00"})
	req.Weeks[0].Days.Add(3, dto.AssignmentInput{BlockID: b.ID, TimeSlot: "18:00"})
	req.Weeks[0].Days.Add(5, dto.AssignmentInput{BlockID: other.ID, TimeSlot: "07:30"})
	_, err := f.plans.Edit(ctx, uid, p.ID, req)
	require.NoError(t, err)
	require.EqualValues(t, 3, f.count(t, "daily_assignments"))

	require.NoError(t, f.blocks.Delete(ctx, uid, b.ID))
	require.EqualValues(t, 1, f.count(t, "daily_assignments"))

	detail, err := f.plans.GetDetail(ctx, uid, p.ID)
	require.NoError(t, err)
	require.Equal(t, 1, detail.Weeks[0].Days.Len())
	require.Equal(t, "Core", detail.Weeks[0].Days.Get(5)[0].Title)
}
