package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/rmn-lab/roster-api/api/swagger"
	"github.com/rmn-lab/roster-api/internal/handler"
	"github.com/rmn-lab/roster-api/internal/middleware"
	"github.com/rmn-lab/roster-api/internal/repository"
	"github.com/rmn-lab/roster-api/internal/service"
	redisCache "github.com/rmn-lab/roster-api/pkg/cache"
	"github.com/rmn-lab/roster-api/pkg/config"
	"github.com/rmn-lab/roster-api/pkg/database"
	"github.com/rmn-lab/roster-api/pkg/jobs"
	"github.com/rmn-lab/roster-api/pkg/logger"
	corsmiddleware "github.com/rmn-lab/roster-api/pkg/middleware/cors"
	reqidmiddleware "github.com/rmn-lab/roster-api/pkg/middleware/requestid"
	"github.com/rmn-lab/roster-api/pkg/storage"
)

// @title Roster API
// @version 1.0.0
// @description Seating, identity and screenshot service for computer lab 329
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := redisCache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	blobs, err := storage.NewLocalStorage(cfg.Screenshots.StorageDir)
	if err != nil {
		logr.Fatal("failed to init screenshot storage", zap.Error(err))
	}

	schedule, err := service.ParseSchedule(cfg.Classroom.LessonsSchedule)
	if err != nil {
		logr.Fatal("malformed lessons schedule", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	placementRepo := repository.NewPlacementRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	screenshotRepo := repository.NewScreenshotRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	collator := service.NewUkrainianCollator()
	moodle := service.NewMoodleClient(cfg.Moodle)
	validate := validator.New()

	authSvc := service.NewAuthService(cfg.Auth, logr)
	constraintSvc := service.NewConstraintService(placementRepo, groupRepo, schedule, cfg.Classroom.SeatCount, logr)
	placementSvc := service.NewPlacementService(placementRepo, userRepo, classroomRepo, constraintSvc, cacheRepo,
		schedule, cfg.Classroom.ID, cfg.Suggestions, logr)
	classroomSvc := service.NewClassroomService(placementRepo, screenshotRepo, classroomRepo, cacheRepo,
		schedule, collator, cfg.Classroom, cfg.Snapshot, logr)
	screenshotSvc := service.NewScreenshotService(screenshotRepo, classroomRepo, placementRepo, blobs,
		cfg.Screenshots, cfg.Classroom.ID, logr)
	screenshotSvc.SetMetrics(metricsSvc)
	userSvc := service.NewUserService(userRepo, moodle, placementSvc, logr)
	groupSvc := service.NewGroupService(groupRepo, userRepo, validate, logr)
	exportSvc := service.NewExportService(classroomSvc, logr)

	var retentionQueue *jobs.Queue
	if cfg.Screenshots.AsyncRetention {
		retentionQueue = jobs.NewQueue("screenshot_retention", screenshotSvc.RetentionHandler, jobs.QueueConfig{
			Workers: cfg.Screenshots.WorkerConcurrency,
			Logger:  logr,
		})
		retentionQueue.Start(ctx)
		defer retentionQueue.Stop()
		screenshotSvc.SetQueue(retentionQueue)
	}

	classroomHandler := handler.NewClassroomHandler(classroomSvc, screenshotSvc, exportSvc, cfg.Classroom.ID)
	placementHandler := handler.NewPlacementHandler(placementSvc, metricsSvc, cfg.Classroom.ID)
	screenshotHandler := handler.NewScreenshotHandler(screenshotSvc, cfg.Classroom.ID)
	userHandler := handler.NewUserHandler(userSvc)
	groupHandler := handler.NewGroupHandler(groupSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)

		rooms := api.Group("/classrooms/:id")
		{
			rooms.GET("", classroomHandler.Snapshot)
			rooms.GET("/export", classroomHandler.Export)
			rooms.GET("/screenshots", classroomHandler.GetScreenshotsToggle)
			rooms.GET("/screenshots/status", classroomHandler.ScreenshotsStatus)
			rooms.PATCH("/screenshots", middleware.JWT(authSvc), classroomHandler.SetScreenshotsToggle)

			rooms.POST("/workplaces/:seat/assign", placementHandler.Assign)
			rooms.DELETE("/workplaces/:seat", placementHandler.Remove)

			rooms.POST("/workplaces/:seat/screenshot", screenshotHandler.Upload)
			rooms.GET("/workplaces/:seat/screenshots", screenshotHandler.List)
			rooms.GET("/workplaces/:seat/screenshots/:filename", screenshotHandler.Serve)
		}

		api.GET("/workplaces/:seat/suggestions", placementHandler.Suggestions)

		api.GET("/users/search", userHandler.Search)
		api.POST("/users/identify", userHandler.Identify)

		groups := api.Group("/groups", middleware.JWT(authSvc))
		{
			groups.GET("", groupHandler.List)
			groups.POST("", groupHandler.Create)
			groups.GET("/:id", groupHandler.Get)
			groups.PUT("/:id", groupHandler.Update)
			groups.DELETE("/:id", groupHandler.Delete)
			groups.POST("/:id/members", groupHandler.AddMember)
			groups.DELETE("/:id/members/:userId", groupHandler.RemoveMember)
			groups.PUT("/:id/features/:key", groupHandler.SetFeature)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Info("server starting",
			zap.String("addr", addr),
			zap.String("env", cfg.Env),
			zap.String("classroom", cfg.Classroom.ID))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
