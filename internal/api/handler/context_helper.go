package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"climb-planner/backend/internal/api/middleware"
	"climb-planner/backend/internal/service"
	"climb-planner/backend/pkg/jwt"
	"climb-planner/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.ContextUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// OptionalUserID 可选认证路由上的调用方；匿名请求返回空串
func OptionalUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}

// MustGetClaims 提取当前 Access Token 的 Claims（登出时拉黑用）
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.ContextClaims)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

// bindJSON 绑定请求体；失败时写入 400（或 413）并返回 false
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return false
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return false
	}
	return true
}

// writeValidationError 业务层参数校验失败统一返回 400 / 10001，details 为具体原因
func writeValidationError(c *gin.Context, err error) bool {
	if !errors.Is(err, service.ErrValidation) {
		return false
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
	return true
}
