package controller

import (
	"skillpath_backend/internal/service"
	"skillpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UserController 处理用户资料、注销和学习统计
type UserController struct {
	UserService      *service.UserService
	AnalyticsService *service.AnalyticsService
}

func NewUserController(userService *service.UserService, analyticsService *service.AnalyticsService) *UserController {
	return &UserController{
		UserService:      userService,
		AnalyticsService: analyticsService,
	}
}

// UpdateProfile godoc
// @Summary 更新个人资料
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ProfileUpdate true "资料"
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/users/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.ProfileUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateProfile(userID, req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.SuccessWithMessage(ctx, "Profile updated", user)
}

// DeleteAccount godoc
// @Summary 注销账号并清理所有数据
// @Tags 用户
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/users/delete-account [delete]
func (c *UserController) DeleteAccount(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.UserService.DeleteAccount(userID); err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.SuccessWithMessage(ctx, "Account deleted", nil)
}

// ProgressAnalytics godoc
// @Summary 学习数据统计
// @Description 读库失败时返回新用户默认数据，不返回错误
// @Tags 用户
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.ProgressAnalytics}
// @Router /api/users/progress-analytics [get]
func (c *UserController) ProgressAnalytics(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	util.Success(ctx, c.AnalyticsService.ProgressAnalytics(ctx.Request.Context(), userID))
}
