package controller

import (
	"strconv"

	"skillpath_backend/internal/service"
	"skillpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LearningPathController struct {
	Service *service.LearningPathService
}

func NewLearningPathController(svc *service.LearningPathService) *LearningPathController {
	return &LearningPathController{Service: svc}
}

// Create godoc
// @Summary 创建学习路径
// @Tags 学习路径
// @Security ApiKeyAuth
// @Param   body body service.CreatePathRequest true "学习路径"
// @Success 201 {object} util.Response{data=model.LearningPath}
// @Router /api/learning-paths [post]
func (c *LearningPathController) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.CreatePathRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	path, err := c.Service.Create(userID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, path)
}

// List godoc
// @Summary 我的学习路径
// @Tags 学习路径
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.LearningPath}
// @Router /api/learning-paths [get]
func (c *LearningPathController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	paths, err := c.Service.List(userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, paths)
}

func (c *LearningPathController) Get(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	path, err := c.Service.Get(userID, ctx.Param("id"))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, path)
}

// CompleteModule godoc
// @Summary 标记模块完成
// @Tags 学习路径
// @Security ApiKeyAuth
// @Param   id path string true "学习路径ID"
// @Param   index path int true "模块下标，从 0 开始"
// @Success 200 {object} util.Response{data=model.LearningPath}
// @Router /api/learning-paths/{id}/modules/{index}/complete [put]
func (c *LearningPathController) CompleteModule(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		util.BadRequest(ctx, "invalid module index")
		return
	}

	path, err := c.Service.CompleteModule(userID, ctx.Param("id"), index)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, path)
}

func (c *LearningPathController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.Service.Delete(userID, ctx.Param("id")); err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.SuccessWithMessage(ctx, "Learning path deleted", nil)
}
