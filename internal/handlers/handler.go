package handlers

import (
	"airsense_console/internal/logger"
	"airsense_console/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	gatherer prometheus.Gatherer
}

// NewHandler constructs a new HTTP handler with dependencies. A nil gatherer
// serves the default Prometheus registry.
func NewHandler(services *service.Service, log *logger.Logger, gatherer prometheus.Gatherer) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Handler{services: services, log: log, gatherer: gatherer}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(pageTemplates)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))

	h.registerPageRoutes(router)
	h.registerAPIRoutes(router)

	// live device view over WebSocket, same port
	router.GET("/ws/devices/:id", h.sessionMiddleware, h.requireTokenJSON, h.wsDevice)

	return router
}

func (h *Handler) registerPageRoutes(r *gin.Engine) {
	pages := r.Group("/", h.sessionMiddleware)
	{
		pages.GET("/", h.requireToken, func(c *gin.Context) { h.redirect(c, devicesPath) })
	}

	guest := pages.Group("/", h.guestOnly)
	{
		guest.GET("/login", h.loginPage)
		guest.POST("/login", h.login)
	}

	auth := pages.Group("/", h.requireToken)
	{
		auth.POST("/logout", h.logout)
		auth.GET("/devices", h.devicesPage)
		auth.POST("/devices", h.createDevice)
		auth.GET("/overview", h.overviewPage)
		h.registerDeviceRoutes(auth)
	}
}

func (h *Handler) registerDeviceRoutes(g *gin.RouterGroup) {
	device := g.Group("/devices/:id")
	{
		device.GET("", h.devicePage)
		device.POST("/code", h.authorizeDevice)
		device.POST("/delete", h.deleteDevice)
		device.POST("/triggers", h.createTrigger)
		device.POST("/window", h.openWindow)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.sessionMiddleware, h.requireTokenJSON)
	{
		api.GET("/devices/:id/charts", h.deviceCharts)
		api.GET("/activity", h.getActivity)
	}
}
