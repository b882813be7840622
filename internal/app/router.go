package app

import (
	"skillpath_backend/docs"
	"skillpath_backend/internal/config"
	"skillpath_backend/internal/middleware"
	"skillpath_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c, repos, cfg)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerUserRoutes(authGroup, c)
		a.registerAIRoutes(authGroup, c)
		a.registerCertificateRoutes(authGroup, c)
		a.registerAssessmentRoutes(authGroup, c)
		a.registerLearningRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
		// 验证页面允许匿名访问，登录用户顺带记录活跃时间
		public.GET("/certificates/verify/:id",
			middleware.TryAuthMiddleware(cfg),
			middleware.ActivityMiddleware(repos.user),
			c.certificate.Verify)
	}
}

func (a *App) registerUserRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/auth/me", c.auth.Me)

	users := group.Group("/users")
	{
		users.PUT("/profile", c.user.UpdateProfile)
		users.DELETE("/delete-account", c.user.DeleteAccount)
		users.GET("/progress-analytics", c.user.ProgressAnalytics)
	}
}

func (a *App) registerAIRoutes(group *gin.RouterGroup, c *controllers) {
	ai := group.Group("/ai")
	{
		ai.POST("/analyze-domain", c.ai.AnalyzeDomain)
		ai.POST("/generate-daily-tasks", c.ai.GenerateDailyTasks)
		ai.POST("/skill-resources", c.ai.SkillResources)
		ai.POST("/feedback", c.ai.SubmitFeedback)
	}
}

func (a *App) registerCertificateRoutes(group *gin.RouterGroup, c *controllers) {
	certs := group.Group("/certificates")
	{
		certs.POST("/generate", c.certificate.Generate)
		certs.GET("", c.certificate.List)
		certs.GET("/:id", c.certificate.Get)
		certs.GET("/:id/image", c.certificate.Image)
		certs.POST("/:id/revoke", c.certificate.Revoke)
	}
}

func (a *App) registerAssessmentRoutes(group *gin.RouterGroup, c *controllers) {
	assessment := group.Group("/assessment")
	{
		assessment.POST("/generate-assessment", c.assessment.GenerateAssessment)
		assessment.POST("/analyze-assessment", c.assessment.AnalyzeAssessment)
		assessment.GET("/history", c.assessment.History)
		assessment.GET("/analytics", c.assessment.Analytics)
	}
}

func (a *App) registerLearningRoutes(group *gin.RouterGroup, c *controllers) {
	paths := group.Group("/learning-paths")
	{
		paths.POST("", c.learningPath.Create)
		paths.GET("", c.learningPath.List)
		paths.GET("/:id", c.learningPath.Get)
		paths.PUT("/:id/modules/:index/complete", c.learningPath.CompleteModule)
		paths.DELETE("/:id", c.learningPath.Delete)
	}

	progress := group.Group("/progress")
	{
		progress.PUT("", c.progress.Update)
		progress.GET("", c.progress.List)
		progress.GET("/:learningPathId", c.progress.Get)
	}
}
