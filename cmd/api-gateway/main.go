package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campusflow/timetable-api/api/swagger"
	"github.com/campusflow/timetable-api/internal/handler"
	"github.com/campusflow/timetable-api/internal/middleware"
	"github.com/campusflow/timetable-api/internal/repository"
	"github.com/campusflow/timetable-api/internal/service"
	"github.com/campusflow/timetable-api/pkg/cache"
	"github.com/campusflow/timetable-api/pkg/config"
	"github.com/campusflow/timetable-api/pkg/database"
	"github.com/campusflow/timetable-api/pkg/logger"
	corsmiddleware "github.com/campusflow/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusflow/timetable-api/pkg/middleware/requestid"
)

// @title CampusFlow Timetable API
// @version 0.1.0
// @description Course timetabling engine: automatic scheduling, conflict detection and schedule optimization
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	courseRepo := repository.NewCourseRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.JWT)
	engine := service.NewAutoScheduleService(
		courseRepo, classroomRepo, timeSlotRepo, assignmentRepo, enrollmentRepo,
		cacheRepo, metricsSvc, validate, logr, cfg.Scheduler)
	reports := service.NewReportService(assignmentRepo, engine, validate, logr, cfg.Reports)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reports.Start(ctx)
	defer reports.Stop()

	scheduleHandler := handler.NewScheduleHandler(engine)
	reportHandler := handler.NewReportHandler(reports)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	r.GET("/downloads/exports", reportHandler.DownloadSigned)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))
	{
		schedules := api.Group("/schedules")
		{
			schedules.POST("/auto", scheduleHandler.AutoSchedule)
			schedules.POST("/validate", scheduleHandler.Validate)
			schedules.POST("/optimize", scheduleHandler.Optimize)
			schedules.POST("/import", scheduleHandler.Import)
			schedules.POST("/copy", scheduleHandler.Copy)
			schedules.DELETE("", scheduleHandler.Clear)
			schedules.GET("/statistics", scheduleHandler.Statistics)
			schedules.GET("/report", reportHandler.Report)
			schedules.POST("/report/exports", reportHandler.Export)
			schedules.GET("/report/exports/:id", reportHandler.ExportStatus)
			schedules.GET("/report/exports/:id/download", reportHandler.Download)
		}

		api.GET("/timeslots/available", scheduleHandler.AvailableTimeSlots)
		api.GET("/classrooms/recommended", scheduleHandler.RecommendedClassrooms)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
