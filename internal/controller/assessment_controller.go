package controller

import (
	"errors"
	"strings"

	"skillpath_backend/internal/service"
	"skillpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Service *service.AssessmentService
}

func NewAssessmentController(svc *service.AssessmentService) *AssessmentController {
	return &AssessmentController{Service: svc}
}

// GenerateAssessment godoc
// @Summary 生成测评题目
// @Description AI 不可用时返回 503，不提供兜底题目
// @Tags 测评
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.GenerateAssessmentRequest true "测评参数"
// @Success 200 {object} util.Response{data=object}
// @Failure 503 {object} util.Response "AI 服务不可用"
// @Router /api/assessment/generate-assessment [post]
func (c *AssessmentController) GenerateAssessment(ctx *gin.Context) {
	var req service.GenerateAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Domain) == "" {
		util.BadRequest(ctx, "domain is required")
		return
	}
	if req.QuestionCount < 0 || req.QuestionCount > service.MaxQuestionCount {
		util.BadRequest(ctx, "questionCount must be between 1 and 30")
		return
	}

	assessment, err := c.Service.Generate(ctx.Request.Context(), req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"assessment": assessment})
}

// AnalyzeAssessment godoc
// @Summary 提交测评答案并评分
// @Tags 测评
// @Security ApiKeyAuth
// @Param   body body service.AnalyzeAssessmentRequest true "答案"
// @Success 200 {object} util.Response{data=service.AssessmentAnalysis}
// @Router /api/assessment/analyze-assessment [post]
func (c *AssessmentController) AnalyzeAssessment(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.AnalyzeAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if strings.TrimSpace(req.Domain) == "" {
		util.BadRequest(ctx, util.ErrDomainRequired.Error())
		return
	}

	analysis, err := c.Service.Analyze(ctx.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, service.ErrAnswersMismatch) {
			util.BadRequest(ctx, err.Error())
			return
		}
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, analysis)
}

// History godoc
// @Summary 最近 10 次测评
// @Tags 测评
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/assessment/history [get]
func (c *AssessmentController) History(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	history, err := c.Service.History(userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"history": history})
}

// Analytics godoc
// @Summary 测评统计
// @Tags 测评
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.AssessmentAnalytics}
// @Router /api/assessment/analytics [get]
func (c *AssessmentController) Analytics(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	analytics, err := c.Service.Analytics(userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, analytics)
}
