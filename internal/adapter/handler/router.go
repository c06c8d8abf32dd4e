package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/johnquangdev/meeting-processor/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	meetingHandler *Meeting
	schedHandler   *Scheduler
	webhookHandler *WebhookHandler
	authMiddleware echo.MiddlewareFunc
}

// NewRouter creates a new router with all handlers. A nil authMiddleware
// leaves the control API open.
func NewRouter(
	cfg *config.Config,
	meetingHandler *Meeting,
	schedHandler *Scheduler,
	webhookHandler *WebhookHandler,
	authMiddleware echo.MiddlewareFunc,
) *Router {
	return &Router{
		cfg:            cfg,
		meetingHandler: meetingHandler,
		schedHandler:   schedHandler,
		webhookHandler: webhookHandler,
		authMiddleware: authMiddleware,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupMeetingRoutes(v1)
	rt.setupSchedulerRoutes(v1)
	rt.setupWebhookRoutes(v1)
}

func (rt *Router) protected(g *echo.Group, prefix string) *echo.Group {
	if rt.authMiddleware == nil {
		return g.Group(prefix)
	}
	return g.Group(prefix, rt.authMiddleware)
}

// setupMeetingRoutes configures meeting processing and query routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := rt.protected(g, "/meetings")

	if rt.meetingHandler == nil {
		meetings.Any("*", rt.notImplemented)
		return
	}
	meetings.POST("/process", rt.meetingHandler.ProcessMeeting)
	meetings.GET("", rt.meetingHandler.ListMeetings)
	meetings.GET("/:id", rt.meetingHandler.GetMeeting)
	meetings.GET("/:id/logs", rt.meetingHandler.ListLogs)
	meetings.POST("/:id/reprocess", rt.meetingHandler.ReprocessMeeting)
}

// setupSchedulerRoutes configures scheduler control routes
func (rt *Router) setupSchedulerRoutes(g *echo.Group) {
	sched := rt.protected(g, "/scheduler")

	if rt.schedHandler == nil {
		sched.Any("*", rt.notImplemented)
		return
	}
	sched.POST("/start", rt.schedHandler.Start)
	sched.POST("/stop", rt.schedHandler.Stop)
	sched.POST("/trigger", rt.schedHandler.Trigger)
	sched.POST("/clear-cache", rt.schedHandler.ClearCache)
	sched.GET("/status", rt.schedHandler.Status)
}

// setupWebhookRoutes configures webhook routes. They authenticate with their
// own signatures, not the bearer token.
func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	hooks := g.Group("/webhooks")

	if rt.webhookHandler == nil {
		hooks.Any("*", rt.notImplemented)
		return
	}
	hooks.POST("/livekit", rt.webhookHandler.HandleLiveKitWebhook)
	hooks.POST("/assemblyai", rt.webhookHandler.HandleAssemblyAIWebhook)
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":  "This endpoint is not yet implemented",
		"path":   c.Request().URL.Path,
		"method": c.Request().Method,
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	env := ""
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"time":        time.Now().UTC().Format(time.RFC3339),
		"environment": env,
	})
}
