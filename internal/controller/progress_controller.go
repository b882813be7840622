package controller

import (
	"errors"

	"skillpath_backend/internal/service"
	"skillpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	Service *service.ProgressService
}

func NewProgressController(svc *service.ProgressService) *ProgressController {
	return &ProgressController{Service: svc}
}

// Update godoc
// @Summary 更新学习进度（按 learningPathId upsert）
// @Tags 进度
// @Security ApiKeyAuth
// @Param   body body service.ProgressUpdate true "进度"
// @Success 200 {object} util.Response{data=model.Progress}
// @Router /api/progress [put]
func (c *ProgressController) Update(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.ProgressUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.TimeSpent < 0 {
		util.BadRequest(ctx, "timeSpent must not be negative")
		return
	}

	p, err := c.Service.Update(userID, req)
	if err != nil {
		if errors.Is(err, service.ErrProgressKeyMissing) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

func (c *ProgressController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	list, err := c.Service.List(userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

func (c *ProgressController) Get(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	p, err := c.Service.Get(userID, ctx.Param("learningPathId"))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, p)
}
