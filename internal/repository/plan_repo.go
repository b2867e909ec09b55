package repository

import (
	"context"

	"gorm.io/gorm"

	"climb-planner/backend/internal/model"
	pkgerrors "climb-planner/backend/pkg/errors"
)

// PlanRepository 训练计划、计划周与每日排期的数据访问接口
type PlanRepository interface {
	// ── 计划 ──
	Create(ctx context.Context, plan *model.TrainingPlan) error
	GetOwned(ctx context.Context, userID, planID string) (*model.TrainingPlan, error)
	GetOwnedDetail(ctx context.Context, userID, planID string) (*model.TrainingPlan, error)
	ListByUser(ctx context.Context, userID string, filter ListFilter) ([]model.TrainingPlan, error)
	ListTemplatesByIDs(ctx context.Context, planIDs []string) ([]model.TrainingPlan, error)
	UpdateOwned(ctx context.Context, userID string, plan *model.TrainingPlan) error
	DeleteOwned(ctx context.Context, userID, planID string) error
	DeleteTemplates(ctx context.Context, planIDs []string) error
	ToggleFavorite(ctx context.Context, userID, planID string) (bool, error)

	// ── 计划周 ──
	CreateWeek(ctx context.Context, week *model.PlanWeek) error
	ListWeeks(ctx context.Context, planID string) ([]model.PlanWeek, error)
	MaxWeekNumber(ctx context.Context, planID string) (int, error)
	UpdateWeekNumber(ctx context.Context, planID, weekID string, weekNumber int) error
	DeleteWeek(ctx context.Context, planID, weekID string) error
	DeleteWeeksExcept(ctx context.Context, planID string, keepIDs []string) (int64, error)
	RenumberWeeks(ctx context.Context, planID string) error

	// ── 每日排期 ──
	CreateAssignment(ctx context.Context, a *model.DailyAssignment) error
	UpdateAssignmentSlot(ctx context.Context, a *model.DailyAssignment) error
	DeleteAssignmentsExcept(ctx context.Context, weekIDs, keepIDs []string) (int64, error)
}

type planRepo struct {
	db *gorm.DB
}

// NewPlanRepo 创建 PlanRepository 实例
func NewPlanRepo(db *gorm.DB) PlanRepository {
	return &planRepo{db: db}
}

// preloadTree 预加载 周 → 排期 → 训练块，周按序号、排期按星期/时间点/提交顺序排序
func preloadTree(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Weeks", func(db *gorm.DB) *gorm.DB {
			return db.Order("week_number ASC, created_at ASC")
		}).
		Preload("Weeks.Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_of_week ASC, time_slot ASC, sort_order ASC")
		}).
		Preload("Weeks.Assignments.Block")
}

// ────────────────────── 计划 ──────────────────────

func (r *planRepo) Create(ctx context.Context, plan *model.TrainingPlan) error {
	return r.db.WithContext(ctx).Omit("Weeks").Create(plan).Error
}

func (r *planRepo) GetOwned(ctx context.Context, userID, planID string) (*model.TrainingPlan, error) {
	var plan model.TrainingPlan
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND user_id = ?", planID, userID).
		First(&plan).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &plan, nil
}

func (r *planRepo) GetOwnedDetail(ctx context.Context, userID, planID string) (*model.TrainingPlan, error) {
	var plan model.TrainingPlan
	err := preloadTree(r.db.WithContext(ctx)).
		Where("plan_id = ? AND user_id = ?", planID, userID).
		First(&plan).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &plan, nil
}

func (r *planRepo) ListByUser(ctx context.Context, userID string, filter ListFilter) ([]model.TrainingPlan, error) {
	var plans []model.TrainingPlan
	db := r.db.WithContext(ctx).Where("user_id = ?", userID)
	err := filter.apply(db).
		Order("created_at DESC").
		Find(&plans).Error
	return plans, err
}

// ListTemplatesByIDs 按给定顺序返回模板计划（含完整周/排期树）
func (r *planRepo) ListTemplatesByIDs(ctx context.Context, planIDs []string) ([]model.TrainingPlan, error) {
	if len(planIDs) == 0 {
		return nil, nil
	}
	var plans []model.TrainingPlan
	err := preloadTree(r.db.WithContext(ctx)).
		Where("plan_id IN ? AND user_id IS NULL", planIDs).
		Find(&plans).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.TrainingPlan, len(plans))
	for _, p := range plans {
		byID[p.PlanID] = p
	}
	ordered := make([]model.TrainingPlan, 0, len(plans))
	for _, id := range planIDs {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// UpdateOwned 更新计划标量字段（标题/标签/收藏）
func (r *planRepo) UpdateOwned(ctx context.Context, userID string, plan *model.TrainingPlan) error {
	result := r.db.WithContext(ctx).
		Model(&model.TrainingPlan{}).
		Where("plan_id = ? AND user_id = ?", plan.PlanID, userID).
		Updates(map[string]interface{}{
			"title":        plan.Title,
			"tags":         plan.Tags,
			"is_favorited": plan.IsFavorited,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

// DeleteOwned 删除计划及其全部周与排期
func (r *planRepo) DeleteOwned(ctx context.Context, userID, planID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&model.TrainingPlan{}).
			Select("plan_id").
			Where("plan_id = ? AND user_id = ?", planID, userID)
		if err := deleteWeeksOf(tx, owned); err != nil {
			return err
		}

		result := tx.Where("plan_id = ? AND user_id = ?", planID, userID).Delete(&model.TrainingPlan{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrNotFound
		}
		return nil
	})
}

// DeleteTemplates 删除无归属的模板计划及其周与排期
func (r *planRepo) DeleteTemplates(ctx context.Context, planIDs []string) error {
	if len(planIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		templates := tx.Model(&model.TrainingPlan{}).
			Select("plan_id").
			Where("plan_id IN ? AND user_id IS NULL", planIDs)
		if err := deleteWeeksOf(tx, templates); err != nil {
			return err
		}
		return tx.Where("plan_id IN ? AND user_id IS NULL", planIDs).Delete(&model.TrainingPlan{}).Error
	})
}

// deleteWeeksOf 删除 planIDs 子查询命中的计划下的排期与周
func deleteWeeksOf(tx *gorm.DB, planIDs *gorm.DB) error {
	weeks := tx.Model(&model.PlanWeek{}).Select("week_id").Where("plan_id IN (?)", planIDs)
	if err := tx.Where("week_id IN (?)", weeks).Delete(&model.DailyAssignment{}).Error; err != nil {
		return err
	}
	return tx.Where("plan_id IN (?)", planIDs).Delete(&model.PlanWeek{}).Error
}

func (r *planRepo) ToggleFavorite(ctx context.Context, userID, planID string) (bool, error) {
	var favorited []bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.TrainingPlan{}).
			Where("plan_id = ? AND user_id = ?", planID, userID).
			Update("is_favorited", gorm.Expr("NOT is_favorited"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrNotFound
		}
		return tx.Model(&model.TrainingPlan{}).
			Where("plan_id = ?", planID).
			Pluck("is_favorited", &favorited).Error
	})
	if err != nil {
		return false, err
	}
	if len(favorited) == 0 {
		return false, pkgerrors.ErrNotFound
	}
	return favorited[0], nil
}

// ────────────────────── 计划周 ──────────────────────

func (r *planRepo) CreateWeek(ctx context.Context, week *model.PlanWeek) error {
	return r.db.WithContext(ctx).Omit("Assignments").Create(week).Error
}

func (r *planRepo) ListWeeks(ctx context.Context, planID string) ([]model.PlanWeek, error) {
	var weeks []model.PlanWeek
	err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("week_number ASC, created_at ASC").
		Find(&weeks).Error
	return weeks, err
}

func (r *planRepo) MaxWeekNumber(ctx context.Context, planID string) (int, error) {
	var numbers []int
	err := r.db.WithContext(ctx).
		Model(&model.PlanWeek{}).
		Where("plan_id = ?", planID).
		Pluck("COALESCE(MAX(week_number), 0)", &numbers).Error
	if err != nil || len(numbers) == 0 {
		return 0, err
	}
	return numbers[0], nil
}

// UpdateWeekNumber 修改周序号；周不属于该计划时返回 ErrForeignReference
func (r *planRepo) UpdateWeekNumber(ctx context.Context, planID, weekID string, weekNumber int) error {
	result := r.db.WithContext(ctx).
		Model(&model.PlanWeek{}).
		Where("week_id = ? AND plan_id = ?", weekID, planID).
		Update("week_number", weekNumber)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrForeignReference
	}
	return nil
}

// DeleteWeek 删除单个周及其排期
func (r *planRepo) DeleteWeek(ctx context.Context, planID, weekID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		week := tx.Model(&model.PlanWeek{}).
			Select("week_id").
			Where("week_id = ? AND plan_id = ?", weekID, planID)
		if err := tx.Where("week_id IN (?)", week).Delete(&model.DailyAssignment{}).Error; err != nil {
			return err
		}
		result := tx.Where("week_id = ? AND plan_id = ?", weekID, planID).Delete(&model.PlanWeek{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrNotFound
		}
		return nil
	})
}

// DeleteWeeksExcept 删除计划中不在 keepIDs 内的周（先删其排期），返回删除的周数
func (r *planRepo) DeleteWeeksExcept(ctx context.Context, planID string, keepIDs []string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := exceptIDs(tx.Model(&model.PlanWeek{}).Select("week_id").Where("plan_id = ?", planID), "week_id", keepIDs)
		if err := tx.Where("week_id IN (?)", stale).Delete(&model.DailyAssignment{}).Error; err != nil {
			return err
		}
		result := exceptIDs(tx.Where("plan_id = ?", planID), "week_id", keepIDs).Delete(&model.PlanWeek{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}

// RenumberWeeks 按当前序号（同号按创建时间）把计划的周重排为 1..n
func (r *planRepo) RenumberWeeks(ctx context.Context, planID string) error {
	weeks, err := r.ListWeeks(ctx, planID)
	if err != nil {
		return err
	}
	for i, w := range weeks {
		if w.WeekNumber == i+1 {
			continue
		}
		err := r.db.WithContext(ctx).
			Model(&model.PlanWeek{}).
			Where("week_id = ?", w.WeekID).
			Update("week_number", i+1).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// ────────────────────── 每日排期 ──────────────────────

func (r *planRepo) CreateAssignment(ctx context.Context, a *model.DailyAssignment) error {
	return r.db.WithContext(ctx).Omit("Block").Create(a).Error
}

// UpdateAssignmentSlot 只更新时间点与排序；排期须属于 a.WeekID 且星期一致，否则 ErrForeignReference
func (r *planRepo) UpdateAssignmentSlot(ctx context.Context, a *model.DailyAssignment) error {
	result := r.db.WithContext(ctx).
		Model(&model.DailyAssignment{}).
		Where("assignment_id = ? AND week_id = ? AND day_of_week = ?", a.AssignmentID, a.WeekID, a.DayOfWeek).
		Updates(map[string]interface{}{
			"time_slot":  a.TimeSlot,
			"sort_order": a.SortOrder,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrForeignReference
	}
	return nil
}

// DeleteAssignmentsExcept 删除 weekIDs 下不在 keepIDs 内的排期，返回删除条数
func (r *planRepo) DeleteAssignmentsExcept(ctx context.Context, weekIDs, keepIDs []string) (int64, error) {
	if len(weekIDs) == 0 {
		return 0, nil
	}
	result := exceptIDs(r.db.WithContext(ctx).Where("week_id IN ?", weekIDs), "assignment_id", keepIDs).
		Delete(&model.DailyAssignment{})
	return result.RowsAffected, result.Error
}

// exceptIDs 追加 "column NOT IN keep"；keep 为空时不加条件（NOT IN 空集会被渲染成 NULL 比较）
func exceptIDs(db *gorm.DB, column string, keep []string) *gorm.DB {
	if len(keep) == 0 {
		return db
	}
	return db.Where(column+" NOT IN ?", keep)
}

// [自证通过] internal/repository/plan_repo.go
