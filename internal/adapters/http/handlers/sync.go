package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// defaultNotificationLimit is used when GET /notifications names no limit.
const defaultNotificationLimit = 20

// NotificationFeed exposes recently posted notices.
type NotificationFeed interface {
	Recent(limit int) []ports.Notification
}

// SyncHandler handles manual sync triggers and the notification feed.
type SyncHandler struct {
	syncer app.Syncer
	feed   NotificationFeed
}

// NewSyncHandler creates a new sync handler. feed may be nil, in which case
// the notification endpoint always returns an empty list.
func NewSyncHandler(syncer app.Syncer, feed NotificationFeed) *SyncHandler {
	return &SyncHandler{
		syncer: syncer,
		feed:   feed,
	}
}

// TriggerSync handles POST /api/v1/sync
// Runs one sync cycle and returns its counts. A cycle already in flight
// yields 409; an unreachable remote yields 503.
//
// @Summary Run a sync cycle
// @Tags sync
// @Produce json
// @Success 200 {object} dto.SyncReportResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/sync [post]
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	report, err := h.syncer.SyncCycle(c.Request.Context(), app.TriggerManual)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSyncReportResponse(report))
}

// ListNotifications handles GET /api/v1/notifications
//
// @Summary Recent notifications
// @Tags sync
// @Produce json
// @Param limit query int false "Maximum notices to return (1-100)"
// @Success 200 {object} dto.NotificationListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/notifications [get]
func (h *SyncHandler) ListNotifications(c *gin.Context) {
	var q dto.NotificationQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	limit := q.Limit
	if limit == 0 {
		limit = defaultNotificationLimit
	}

	notices := []ports.Notification{}
	if h.feed != nil {
		notices = append(notices, h.feed.Recent(limit)...)
	}

	c.JSON(http.StatusOK, dto.NotificationListResponse{Notifications: notices})
}

// RegisterSyncRoutes registers sync and notification routes on the given router group.
func (h *SyncHandler) RegisterSyncRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync", h.TriggerSync)
	rg.GET("/notifications", h.ListNotifications)
}
