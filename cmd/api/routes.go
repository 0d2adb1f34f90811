package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/studysync-api/api/swagger"
	"github.com/noah-isme/studysync-api/internal/handler"
	"github.com/noah-isme/studysync-api/internal/middleware"
	"github.com/noah-isme/studysync-api/internal/service"
	"github.com/noah-isme/studysync-api/pkg/config"
	"github.com/noah-isme/studysync-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/studysync-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/studysync-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	homework    *handler.HomeworkHandler
	commitments *handler.CommitmentHandler
	preferences *handler.PreferenceHandler
	schedule    *handler.ScheduleHandler
	exports     *handler.ExportHandler
	metrics     *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, tokens *service.TokenService, metrics *service.MetricsService, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/schedule/preview", h.schedule.Preview)
	api.GET("/export/:token", h.exports.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))

	secured.GET("/homework", h.homework.List)
	secured.POST("/homework", h.homework.Create)
	secured.PUT("/homework/:id", h.homework.Update)
	secured.DELETE("/homework/:id", h.homework.Delete)

	secured.GET("/commitments", h.commitments.List)
	secured.POST("/commitments", h.commitments.Create)
	secured.DELETE("/commitments/:id", h.commitments.Delete)

	secured.GET("/preferences", h.preferences.Get)
	secured.PUT("/preferences", h.preferences.Update)

	secured.POST("/schedule/generate", h.schedule.Generate)
	secured.GET("/schedule", h.schedule.Current)
	secured.GET("/schedule/export.ics", h.schedule.ExportICS)

	secured.POST("/exports", h.exports.Create)
	secured.DELETE("/exports/ledger", h.exports.ResetLedger)
	secured.GET("/exports/:id", h.exports.Get)

	return r
}
