package controller

import (
	"errors"
	"net/http"

	"skillpath_backend/internal/util"
	"skillpath_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// currentUserID 路由已挂载认证中间件，取不到用户时直接返回 401
func currentUserID(ctx *gin.Context) (uint, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return 0, false
	}
	return claims.UserID, true
}

// handleServiceError 把服务层的哨兵错误映射为 HTTP 响应
func handleServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrDomainRequired):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrCertificateNotFound),
		errors.Is(err, util.ErrLearningPathNotFound),
		errors.Is(err, util.ErrModuleNotFound),
		errors.Is(err, util.ErrProgressNotFound):
		util.NotFoundWithMessage(ctx, err.Error())
	case errors.Is(err, util.ErrCertificateExists),
		errors.Is(err, util.ErrCertificateRevoked),
		errors.Is(err, util.ErrLockNotAcquired),
		errors.Is(err, util.ErrEmailRegistered):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrContentGeneration):
		logger.Log.Warn("Content generation unavailable", zap.String("path", ctx.FullPath()), zap.Error(err))
		util.Error(ctx, http.StatusServiceUnavailable, "AI service is temporarily unavailable, please try again later")
	case errors.Is(err, util.ErrRenderFailed):
		logger.Log.Error("Certificate rendering failed", zap.String("path", ctx.FullPath()), zap.Error(err))
		util.Error(ctx, http.StatusInternalServerError, "Failed to render certificate image")
	default:
		util.LogInternalError(ctx, err)
	}
}
