package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"climb-planner/backend/internal/dto"
	"climb-planner/backend/internal/model"
	"climb-planner/backend/internal/repository"
	pkgerrors "climb-planner/backend/pkg/errors"
	"climb-planner/backend/pkg/markdown"
	"climb-planner/backend/pkg/redis"
)

// ── 资源模块业务错误 ──

var (
	ErrResourceNotFound = errors.New("资源不存在")
)

const resourceListCacheKey = "resource:list"

// ResourceCache 资源列表缓存；*redis.Client 满足该接口，未配置 Redis 时始终未命中
type ResourceCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ResourceService 资源业务接口
type ResourceService interface {
	List(ctx context.Context) ([]dto.ResourceSummaryResponse, error)
	// GetDetail callerID 为空表示匿名访问，此时不返回 copyable_* 字段
	GetDetail(ctx context.Context, resourceID, callerID string) (*dto.ResourceDetailResponse, error)
	Publish(ctx context.Context, seed *dto.ResourceSeed) (*dto.ResourceSummaryResponse, error)
	Remove(ctx context.Context, resourceID string) error
}

type resourceService struct {
	repo     *repository.Repository
	cache    ResourceCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewResourceService 创建 ResourceService 实例
func NewResourceService(repo *repository.Repository, cache ResourceCache, cacheTTL time.Duration, logger *zap.Logger) ResourceService {
	return &resourceService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// ────────────────────── List ──────────────────────

// List 资源列表；缓存只是加速手段，读写失败都回落到数据库
func (s *resourceService) List(ctx context.Context) ([]dto.ResourceSummaryResponse, error) {
	if s.cache != nil {
		var cached []dto.ResourceSummaryResponse
		err := s.cache.GetJSON(ctx, resourceListCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("读取资源列表缓存失败", zap.Error(err))
		}
	}

	resources, err := s.repo.Resource.List(ctx)
	if err != nil {
		s.logger.Error("查询资源列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ResourceSummaryResponse, 0, len(resources))
	for i := range resources {
		result = append(result, *toResourceSummary(&resources[i]))
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, resourceListCacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn("写入资源列表缓存失败", zap.Error(err))
		}
	}
	return result, nil
}

// ────────────────────── GetDetail ──────────────────────

// GetDetail 在同一读事务内取资源、模板训练块与完整的模板计划树
func (s *resourceService) GetDetail(ctx context.Context, resourceID, callerID string) (*dto.ResourceDetailResponse, error) {
	var (
		resource *model.Resource
		blocks   []model.TrainingBlock
		plans    []model.TrainingPlan
	)
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		var err error
		if resource, err = txRepo.Resource.GetByID(ctx, resourceID); err != nil {
			return err
		}
		if blocks, err = txRepo.Resource.ListBlocks(ctx, resourceID); err != nil {
			return err
		}
		planIDs, err := txRepo.Resource.ListPlanIDs(ctx, resourceID)
		if err != nil {
			return err
		}
		plans, err = txRepo.Plan.ListTemplatesByIDs(ctx, planIDs)
		return err
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		s.logger.Error("查询资源详情失败", zap.String("resource_id", resourceID), zap.Error(err))
		return nil, err
	}

	detail := &dto.ResourceDetailResponse{
		ID:          resource.ResourceID,
		Title:       resource.Title,
		Description: resource.Description,
		Content:     resource.Content,
		ContentHTML: markdown.ToHTML(resource.Content),
		Tags:        resource.Tags,
		CreatedAt:   dto.FormatTime(resource.CreatedAt),
		Blocks:      make([]dto.BlockResponse, 0, len(blocks)),
		Plans:       make([]dto.PlanDetailResponse, 0, len(plans)),
	}
	for i := range blocks {
		detail.Blocks = append(detail.Blocks, *toBlockResponse(&blocks[i]))
	}
	for i := range plans {
		detail.Plans = append(detail.Plans, toPlanDetail(&plans[i]))
	}

	if callerID != "" {
		detail.CopyableBlocks = make([]dto.CopyBlockRequest, 0, len(blocks))
		for _, b := range blocks {
			detail.CopyableBlocks = append(detail.CopyableBlocks, dto.CopyBlockRequest{
				Title:       b.Title,
				Description: b.Description,
				Tags:        b.Tags,
			})
		}
		detail.CopyablePlans = make([]dto.CopyPlanRequest, 0, len(detail.Plans))
		for _, p := range detail.Plans {
			detail.CopyablePlans = append(detail.CopyablePlans, toCopyablePlan(p))
		}
	}
	return detail, nil
}

// ────────────────────── Publish ──────────────────────

// Publish 发布资源：模板训练块与模板计划均无归属，计划中的排期按标题引用同一种子里的训练块
func (s *resourceService) Publish(ctx context.Context, seed *dto.ResourceSeed) (*dto.ResourceSummaryResponse, error) {
	if err := validateSeed(seed); err != nil {
		return nil, err
	}

	resource := &model.Resource{
		Title:       strings.TrimSpace(seed.Title),
		Description: strings.TrimSpace(seed.Description),
		Content:     seed.Content,
		Tags:        normalizeTags(seed.Tags),
	}
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Resource.Create(ctx, resource); err != nil {
			return err
		}

		blockIDs := make(map[string]string, len(seed.Blocks))
		for i, b := range seed.Blocks {
			block := &model.TrainingBlock{
				Title:       strings.TrimSpace(b.Title),
				Description: strings.TrimSpace(b.Description),
				Tags:        normalizeTags(b.Tags),
			}
			if err := txRepo.Block.Create(ctx, block); err != nil {
				return err
			}
			if err := txRepo.Resource.LinkBlock(ctx, resource.ResourceID, block.BlockID, i); err != nil {
				return err
			}
			blockIDs[block.Title] = block.BlockID
		}

		for i, p := range seed.Plans {
			plan := &model.TrainingPlan{
				Title: strings.TrimSpace(p.Title),
				Tags:  normalizeTags(p.Tags),
			}
			if err := txRepo.Plan.Create(ctx, plan); err != nil {
				return err
			}
			if err := publishWeeks(ctx, txRepo, plan.PlanID, p.Weeks, blockIDs); err != nil {
				return err
			}
			if err := txRepo.Resource.LinkPlan(ctx, resource.ResourceID, plan.PlanID, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return nil, err
		}
		s.logger.Error("发布资源失败", zap.String("title", resource.Title), zap.Error(err))
		return nil, err
	}

	s.invalidateList(ctx)
	s.logger.Info("资源已发布",
		zap.String("resource_id", resource.ResourceID),
		zap.Int("blocks", len(seed.Blocks)),
		zap.Int("plans", len(seed.Plans)),
	)
	return toResourceSummary(resource), nil
}

func publishWeeks(ctx context.Context, txRepo *repository.Repository, planID string, weeks []dto.SeedWeek, blockIDs map[string]string) error {
	if len(weeks) == 0 {
		return txRepo.Plan.CreateWeek(ctx, &model.PlanWeek{PlanID: planID, WeekNumber: 1})
	}
	// 未写序号的周按出现位置补齐，再统一重排为 1..n
	ordered := make([]dto.SeedWeek, len(weeks))
	for wi, w := range weeks {
		if w.WeekNumber == 0 {
			w.WeekNumber = wi + 1
		}
		ordered[wi] = w
	}
	normalizeWeekNumbers(ordered, func(w *dto.SeedWeek) *int { return &w.WeekNumber })

	for _, w := range ordered {
		week := &model.PlanWeek{PlanID: planID, WeekNumber: w.WeekNumber}
		if err := txRepo.Plan.CreateWeek(ctx, week); err != nil {
			return err
		}
		for day := 1; day <= dto.DaysInWeek; day++ {
			for i, a := range w.Days[day] {
				blockID, ok := blockIDs[strings.TrimSpace(a.Block)]
				if !ok {
					return validationf("排期引用了未声明的训练块 %q", a.Block)
				}
				row := &model.DailyAssignment{
					WeekID:    week.WeekID,
					DayOfWeek: day,
					BlockID:   blockID,
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
}

// validateSeed 写入前校验种子文件
func validateSeed(seed *dto.ResourceSeed) error {
	if _, err := requireTitle(seed.Title); err != nil {
		return err
	}
	titles := make(map[string]struct{}, len(seed.Blocks))
	for _, b := range seed.Blocks {
		t, err := requireTitle(b.Title)
		if err != nil {
			return err
		}
		if _, ok := titles[t]; ok {
			return validationf("训练块标题 %q 重复", t)
		}
		titles[t] = struct{}{}
	}
	for _, p := range seed.Plans {
		if _, err := requireTitle(p.Title); err != nil {
			return err
		}
		for _, w := range p.Weeks {
			if w.WeekNumber < 0 {
				return validationf("周序号不能为负数")
			}
			for day, items := range w.Days {
				if day < 1 || day > dto.DaysInWeek {
					return validationf("星期 %d 无效，取值范围 1-7", day)
				}
				for _, a := range items {
					if !validTimeSlot(a.TimeSlot) {
						return validationf("时间点 %q 格式错误，应为 HH:MM", a.TimeSlot)
					}
				}
			}
		}
	}
	return nil
}

// ────────────────────── Remove ──────────────────────

// Remove 删除资源及其模板计划，模板训练块仅在不再被其他资源引用时删除
func (s *resourceService) Remove(ctx context.Context, resourceID string) error {
	var removedBlocks int64
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if _, err := txRepo.Resource.GetByID(ctx, resourceID); err != nil {
			return err
		}
		planIDs, err := txRepo.Resource.ListPlanIDs(ctx, resourceID)
		if err != nil {
			return err
		}
		blockIDs, err := txRepo.Resource.ListBlockIDs(ctx, resourceID)
		if err != nil {
			return err
		}
		if err := txRepo.Resource.UnlinkAll(ctx, resourceID); err != nil {
			return err
		}
		if err := txRepo.Plan.DeleteTemplates(ctx, planIDs); err != nil {
			return err
		}
		if removedBlocks, err = txRepo.Block.DeleteUnlinkedTemplates(ctx, blockIDs); err != nil {
			return err
		}
		return txRepo.Resource.Delete(ctx, resourceID)
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return ErrResourceNotFound
		}
		s.logger.Error("删除资源失败", zap.String("resource_id", resourceID), zap.Error(err))
		return err
	}

	s.invalidateList(ctx)
	s.logger.Info("资源已删除", zap.String("resource_id", resourceID), zap.Int64("blocks_removed", removedBlocks))
	return nil
}

// ── 内部辅助方法 ──

func (s *resourceService) invalidateList(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, resourceListCacheKey); err != nil {
		s.logger.Warn("清除资源列表缓存失败", zap.Error(err))
	}
}

func toResourceSummary(r *model.Resource) *dto.ResourceSummaryResponse {
	return &dto.ResourceSummaryResponse{
		ID:          r.ResourceID,
		Title:       r.Title,
		Description: r.Description,
		Tags:        r.Tags,
		CreatedAt:   dto.FormatTime(r.CreatedAt),
	}
}

// toCopyablePlan 把模板计划详情投影为可直接提交给 CopyPlan 的请求体
func toCopyablePlan(p dto.PlanDetailResponse) dto.CopyPlanRequest {
	req := dto.CopyPlanRequest{
		Title: p.Title,
		Tags:  p.Tags,
		Weeks: make([]dto.CopyWeekInput, 0, len(p.Weeks)),
	}
	for _, w := range p.Weeks {
		week := dto.CopyWeekInput{WeekNumber: w.WeekNumber}
		for day := 1; day <= dto.DaysInWeek; day++ {
			for _, a := range w.Days.Get(day) {
				week.Days.Add(day, dto.CopyAssignmentInput{
					Title:       a.Title,
					Description: a.Description,
					Tags:        a.Tags,
					TimeSlot:    a.TimeSlot,
				})
			}
		}
		req.Weeks = append(req.Weeks, week)
	}
	return req
}

// [自证通过] internal/service/resource_service.go
