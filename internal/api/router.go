package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alerting-platform/internal/config"
	"alerting-platform/internal/logging"
)

func NewRouter(h *Handler, logger *logging.Logger, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	api := r.Group(cfg.API.BasePath, IdentityMiddleware())
	{
		admin := api.Group("", AdminRequired())
		{
			admin.POST("/alerts/:id/send", h.SendAlert)
			admin.POST("/alerts/:id/retry", h.RetryAlert)
			admin.GET("/alerts/:id/deliveries", h.DeliveryStatus)

			admin.GET("/scheduler/status", h.SchedulerStatus)
			admin.POST("/scheduler/start", h.StartScheduler)
			admin.POST("/scheduler/stop", h.StopScheduler)
			admin.POST("/scheduler/tasks/:name/run", h.RunTask)
			admin.PUT("/scheduler/tasks/:name/enabled", h.SetTaskEnabled)
		}

		api.POST("/alerts/:id/read", h.MarkRead)
		api.POST("/alerts/:id/snooze", h.SnoozeAlert)
		api.POST("/alerts/:id/unsnooze", h.UnsnoozeAlert)
		api.GET("/inbox", h.Inbox)
	}

	r.GET("/ws", IdentityMiddleware(), h.Websocket)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
