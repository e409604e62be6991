package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"alerting-platform/internal/delivery"
	"alerting-platform/internal/logging"
	"alerting-platform/internal/models"
	"alerting-platform/internal/scheduler"
	wshub "alerting-platform/internal/ws"
)

// InboxReader serves the caller's in-app messages.
type InboxReader interface {
	MessagesByUser(ctx context.Context, userID int64, limit int) ([]models.InAppMessage, error)
}

type Handler struct {
	engine *delivery.Engine
	sched  *scheduler.Scheduler
	inbox  InboxReader
	hub    *wshub.Hub
	logger *logging.Logger
}

func NewHandler(engine *delivery.Engine, sched *scheduler.Scheduler, inbox InboxReader, hub *wshub.Hub, logger *logging.Logger) *Handler {
	return &Handler{engine: engine, sched: sched, inbox: inbox, hub: hub, logger: logger}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyRunning):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func alertIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return 0, false
	}
	return id, true
}

// Delivery operations

func (h *Handler) SendAlert(c *gin.Context) {
	id, ok := alertIDParam(c)
	if !ok {
		return
	}
	report, err := h.engine.Send(c.Request.Context(), CallerFrom(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) RetryAlert(c *gin.Context) {
	id, ok := alertIDParam(c)
	if !ok {
		return
	}
	report, err := h.engine.Retry(c.Request.Context(), CallerFrom(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) DeliveryStatus(c *gin.Context) {
	id, ok := alertIDParam(c)
	if !ok {
		return
	}
	summary, err := h.engine.Status(c.Request.Context(), CallerFrom(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Recipient interaction operations

func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := alertIDParam(c)
	if !ok {
		return
	}
	if err := h.engine.MarkRead(c.Request.Context(), CallerFrom(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked read"})
}

func (h *Handler) SnoozeAlert(c *gin.Context) {
	id, ok := alertIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Hours int `json:"hours" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.engine.Snooze(c.Request.Context(), CallerFrom(c), id, req.Hours); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "snoozed"})
}

func (h *Handler) UnsnoozeAlert(c *gin.Context) {
	id, ok := alertIDParam(c)
	if !ok {
		return
	}
	if err := h.engine.Unsnooze(c.Request.Context(), CallerFrom(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unsnoozed"})
}

func (h *Handler) Inbox(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	messages, err := h.inbox.MessagesByUser(c.Request.Context(), CallerFrom(c).UserID, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// Scheduler control operations

func (h *Handler) SchedulerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.sched.Status())
}

func (h *Handler) StartScheduler(c *gin.Context) {
	h.sched.Start()
	c.JSON(http.StatusOK, gin.H{"running": true})
}

func (h *Handler) StopScheduler(c *gin.Context) {
	h.sched.Stop()
	c.JSON(http.StatusOK, gin.H{"running": false})
}

func (h *Handler) RunTask(c *gin.Context) {
	result, err := h.sched.RunTask(c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) SetTaskEnabled(c *gin.Context) {
	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.sched.SetEnabled(c.Param("name"), *req.Enabled); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": c.Param("name"), "enabled": *req.Enabled})
}

// Websocket attach for in-app push

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (h *Handler) Websocket(c *gin.Context) {
	caller := CallerFrom(c)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("websocket upgrade failed: %v", err)
		return
	}
	h.hub.Add(caller.UserID, conn)
	go func() {
		defer func() {
			h.hub.Remove(caller.UserID, conn)
			conn.Close()
		}()
		// Drain control frames; the hub only writes.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
