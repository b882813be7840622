package controller

import (
	"strings"

	"skillpath_backend/internal/service"
	"skillpath_backend/internal/util"
	"skillpath_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AIController AI 生成类接口，领域分析、技能资源和每日计划在 AI 不可用时返回兜底内容
type AIController struct {
	Content      *service.ContentGenerator
	LearningPath *service.LearningPathService
	Feedback     *service.FeedbackService
}

func NewAIController(content *service.ContentGenerator, learningPath *service.LearningPathService, feedback *service.FeedbackService) *AIController {
	return &AIController{
		Content:      content,
		LearningPath: learningPath,
		Feedback:     feedback,
	}
}

type AnalyzeDomainRequest struct {
	Domain string `json:"domain" binding:"required"`
	Level  string `json:"level"`
}

type DailyTasksRequest struct {
	Domain   string   `json:"domain" binding:"required"`
	Skills   []string `json:"skills"`
	Level    string   `json:"level"`
	Duration int      `json:"duration" binding:"omitempty,min=1,max=90"`
}

type SkillResourcesRequest struct {
	Skill string `json:"skill" binding:"required"`
	Level string `json:"level"`
}

// AnalyzeDomain godoc
// @Summary 分析学习领域
// @Tags AI
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body AnalyzeDomainRequest true "领域"
// @Success 200 {object} util.Response{data=object}
// @Router /api/ai/analyze-domain [post]
func (c *AIController) AnalyzeDomain(ctx *gin.Context) {
	var req AnalyzeDomainRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Domain) == "" {
		util.BadRequest(ctx, "domain is required")
		return
	}

	analysis := c.Content.AnalyzeDomain(ctx.Request.Context(), strings.TrimSpace(req.Domain), req.Level)
	util.Success(ctx, gin.H{"analysis": analysis})
}

// SkillResources godoc
// @Summary 获取技能学习资源
// @Tags AI
// @Security ApiKeyAuth
// @Param   body body SkillResourcesRequest true "技能"
// @Success 200 {object} util.Response{data=object}
// @Router /api/ai/skill-resources [post]
func (c *AIController) SkillResources(ctx *gin.Context) {
	var req SkillResourcesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Skill) == "" {
		util.BadRequest(ctx, "skill is required")
		return
	}

	res := c.Content.SkillResources(ctx.Request.Context(), strings.TrimSpace(req.Skill), req.Level)
	util.Success(ctx, gin.H{"resources": res})
}

// GenerateDailyTasks godoc
// @Summary 生成每日学习计划并保存为学习路径
// @Tags AI
// @Security ApiKeyAuth
// @Param   body body DailyTasksRequest true "计划参数"
// @Success 200 {object} util.Response{data=object}
// @Router /api/ai/generate-daily-tasks [post]
func (c *AIController) GenerateDailyTasks(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req DailyTasksRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	plan := c.Content.DailyPlan(ctx.Request.Context(), strings.TrimSpace(req.Domain), req.Skills, req.Level, req.Duration)

	data := gin.H{
		"dailyTasks": plan.DailyTasks,
		"domain":     plan.Domain,
		"level":      plan.Level,
		"duration":   plan.Duration,
		"source":     plan.Source,
	}

	// 保存失败不影响返回计划
	path, err := c.LearningPath.CreateFromDailyPlan(userID, plan, req.Skills)
	if err != nil {
		logger.Log.Error("Failed to save daily plan as learning path", zap.Uint("userID", userID), zap.Error(err))
	} else {
		data["learningPathId"] = path.ID
	}

	util.Success(ctx, data)
}

// SubmitFeedback godoc
// @Summary 提交反馈
// @Tags AI
// @Security ApiKeyAuth
// @Param   body body service.FeedbackRequest true "反馈"
// @Success 200 {object} util.Response{data=object}
// @Router /api/ai/feedback [post]
func (c *AIController) SubmitFeedback(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.FeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id := c.Feedback.Submit(userID, req)
	util.SuccessWithMessage(ctx, "Feedback received", gin.H{"feedbackId": id})
}
