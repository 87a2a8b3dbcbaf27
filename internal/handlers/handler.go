package handlers

import (
	"sensor_simulator/internal/logger"
	"sensor_simulator/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services   *service.Service
	log        *logger.Logger
	batchTicks int
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log, batchTicks: service.DefaultBatchTicks}
}

// WithBatchTicks sets the tick count used by /simulate when the query omits it.
func (h *Handler) WithBatchTicks(n int) *Handler {
	if n > 0 {
		h.batchTicks = n
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.registerAPIRoutes(router)

	// live snapshot stream, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.authMiddleware)
	{
		api.GET("/sensors", h.getSensors)
		api.GET("/readings", h.getReadings)
		api.GET("/deliveries", h.getDeliveries)
		api.POST("/simulate", h.simulate)
	}
}
