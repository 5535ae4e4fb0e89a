package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/hospital-ops-api/api/swagger"
	"github.com/noah-isme/hospital-ops-api/internal/handler"
	"github.com/noah-isme/hospital-ops-api/internal/middleware"
	"github.com/noah-isme/hospital-ops-api/internal/repository"
	"github.com/noah-isme/hospital-ops-api/internal/service"
	"github.com/noah-isme/hospital-ops-api/pkg/cache"
	"github.com/noah-isme/hospital-ops-api/pkg/config"
	"github.com/noah-isme/hospital-ops-api/pkg/database"
	"github.com/noah-isme/hospital-ops-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/hospital-ops-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/hospital-ops-api/pkg/middleware/requestid"
)

// @title Hospital Ops API
// @version 0.1.0
// @description Per-doctor calendar scheduling and conflict validation engine
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
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		repo := repository.NewCacheRepository(redisClient, logr)
		defer repo.Close() //nolint:errcheck
		cacheRepo = repo
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Catalog.CacheTTL, logr)

	doctorRepo := repository.NewDoctorRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	catalogSvc := service.NewCatalogService(catalogRepo, cacheSvc, cfg.Catalog.CacheTTL, logr)
	store := service.NewScheduleStore(scheduleRepo, cfg.Scheduling.WindowDays, logr)
	sessionSvc := service.NewEditSessionService(store, scheduleRepo, catalogSvc, cacheSvc, metrics,
		cfg.Scheduling.EditHorizonDays, cfg.Scheduling.DefaultMaxAppointments, logr)
	scheduleSvc := service.NewScheduleService(store, scheduleRepo, catalogSvc, cacheSvc, metrics, sessionSvc, logr)
	monthViewSvc := service.NewMonthViewService(store, sessionSvc, catalogSvc, cacheSvc,
		cfg.MonthView.SummarySlots, cfg.MonthView.CacheTTL, logr)
	exportSvc := service.NewExportService(store, catalogSvc, logr, nil, nil)
	doctorSvc := service.NewDoctorService(doctorRepo, store, sessionSvc, logr)

	doctorHandler := handler.NewDoctorHandler(doctorSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, catalogSvc)
	sessionHandler := handler.NewEditSessionHandler(sessionSvc, catalogSvc)
	monthViewHandler := handler.NewMonthViewHandler(monthViewSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/catalog", catalogHandler.Get)
		api.POST("/catalog/refresh", catalogHandler.Refresh)

		doctors := api.Group("/doctors")
		{
			doctors.GET("", doctorHandler.List)
			doctors.GET("/:id", doctorHandler.Get)
			doctors.POST("/:id/select", doctorHandler.Select)
			doctors.DELETE("/:id/calendar", doctorHandler.Deactivate)
			doctors.GET("/:id/sessions", sessionHandler.Sessions)
			doctors.GET("/:id/month-view", monthViewHandler.Get)

			doctors.GET("/:id/schedule", scheduleHandler.Window)
			doctors.GET("/:id/schedule/:date", scheduleHandler.Day)
			doctors.PUT("/:id/schedule/:date", scheduleHandler.Replace)

			doctors.POST("/:id/schedule/:date/session", sessionHandler.Open)
			doctors.DELETE("/:id/schedule/:date/session", sessionHandler.Close)
			doctors.POST("/:id/schedule/:date/session/slots", sessionHandler.AddSlot)
			doctors.PATCH("/:id/schedule/:date/session/slots/:slotId", sessionHandler.UpdateField)
			doctors.DELETE("/:id/schedule/:date/session/slots/:slotId", sessionHandler.RemoveSlot)
			doctors.POST("/:id/schedule/:date/session/save", sessionHandler.Save)
			doctors.POST("/:id/schedule/:date/session/cancel", sessionHandler.Cancel)

			if cfg.Exports.Enabled {
				doctors.GET("/:id/exports", exportHandler.Range)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
