package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillpath_backend/internal/config"
	"skillpath_backend/internal/controller"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/service"
	"skillpath_backend/pkg/configwatcher"
	"skillpath_backend/pkg/database"
	"skillpath_backend/pkg/logger"
	"skillpath_backend/pkg/monitoring"
	"skillpath_backend/pkg/renderer"
	"skillpath_backend/pkg/security"
	"skillpath_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []configwatcher.Reloader
	tracer          *sdktrace.TracerProvider
}

type repositories struct {
	user         *repository.UserRepository
	assessment   *repository.AssessmentRepository
	learningPath *repository.LearningPathRepository
	progress     *repository.ProgressRepository
	certificate  *repository.CertificateRepository
	feedback     *repository.FeedbackRepository
	cache        *repository.CacheRepository
}

type services struct {
	auth         *service.AuthService
	user         *service.UserService
	storage      *service.StorageService
	content      *service.ContentGenerator
	analytics    *service.AnalyticsService
	assessment   *service.AssessmentService
	learningPath *service.LearningPathService
	progress     *service.ProgressService
	certificate  *service.CertificateService
	feedback     *service.FeedbackService
	renderer     renderer.Renderer
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	ai           *controller.AIController
	certificate  *controller.CertificateController
	assessment   *controller.AssessmentController
	learningPath *controller.LearningPathController
	progress     *controller.ProgressController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback configwatcher.Reloader) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		assessment:   repository.NewAssessmentRepository(db),
		learningPath: repository.NewLearningPathRepository(db),
		progress:     repository.NewProgressRepository(db),
		certificate:  repository.NewCertificateRepository(db),
		feedback:     repository.NewFeedbackRepository(db),
		cache:        repository.NewCacheRepository(rdb),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, gen service.TextGenerator, r renderer.Renderer) *services {
	s := &services{renderer: r}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(
		repos.user,
		repos.progress,
		repos.learningPath,
		repos.assessment,
		repos.feedback,
		repos.certificate,
	)
	s.content = service.NewContentGenerator(gen, repos.cache, cfg.AI)
	s.analytics = service.NewAnalyticsService(repos.user, repos.learningPath, repos.progress, s.content)
	s.assessment = service.NewAssessmentService(repos.assessment, repos.user, s.content)
	s.learningPath = service.NewLearningPathService(repos.learningPath, repos.progress)
	s.progress = service.NewProgressService(repos.progress)
	s.feedback = service.NewFeedbackService(repos.feedback)
	s.certificate = service.NewCertificateService(
		repos.certificate,
		repos.user,
		repos.learningPath,
		repos.cache,
		s.storage,
		r,
		service.NewCertificateComposer(cfg.Server.PublicURL),
		cfg.CertificateSecret(),
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		user:         controller.NewUserController(s.user, s.analytics),
		ai:           controller.NewAIController(s.content, s.learningPath, s.feedback),
		certificate:  controller.NewCertificateController(s.certificate),
		assessment:   controller.NewAssessmentController(s.assessment),
		learningPath: controller.NewLearningPathController(s.learningPath),
		progress:     controller.NewProgressController(s.progress),
		health:       controller.NewHealthController(db, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// build 组装仓储、服务、控制器和路由，数据库与 Redis 由调用方提供
func (a *App) build(gen service.TextGenerator, r renderer.Renderer) {
	cfg := a.Config

	repos := a.initRepositories(a.DB, a.Redis)
	a.services = a.initServices(repos, cfg, gen, r)
	ctrls := a.initControllers(a.services, a.DB)

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode != gin.TestMode {
		router.Use(gin.Logger())
	}
	a.Router = router

	a.setupMiddlewares(router, cfg)
	a.registerRoutes(router, ctrls, repos, cfg)

	if cfg.Storage.Type == "local" && cfg.Storage.LocalPath != "" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	content := a.services.content
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
	})
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		content.ApplyConfig(newCfg.AI)
		logger.Log.Info("AI settings reloaded",
			zap.String("model", newCfg.AI.Model),
			zap.Int("maxRetries", newCfg.AI.MaxRetries))
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// release 模式默认不自动迁移，需要显式指定
	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 缓存和证书锁都可以在没有 Redis 时工作
		logger.Log.Error("Failed to initialize redis, continuing without cache", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(context.Background(), cfg.Tracing)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	gen, err := service.NewTextGenerator(context.Background(), cfg.AI)
	if err != nil {
		logger.Log.Warn("Text generator unavailable, AI features will use fallback content", zap.Error(err))
		gen = nil
	}

	app.build(gen, renderer.New(cfg.Renderer))
	return app
}

func (a *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.Config.ConfigDir != "" {
		if err := configwatcher.WatchConfig(ctx, a.Config.ConfigDir, a.configCallbacks...); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(shutdownCtx)
	logger.Log.Info("Server exiting")
}

// Close 释放后台资源：等待反馈写入、关闭浏览器、刷新追踪数据
func (a *App) Close(ctx context.Context) {
	if a.services != nil {
		a.services.feedback.Wait()
		if err := a.services.renderer.Close(); err != nil {
			logger.Log.Warn("Failed to close renderer", zap.Error(err))
		}
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}
