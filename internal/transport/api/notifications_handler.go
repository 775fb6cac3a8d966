package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kargopanel/backend/internal/domain"
)

type NotificationsHandler struct {
	notificationService NotificationServicer
}

func NewNotificationsHandler(notificationService NotificationServicer) *NotificationsHandler {
	return &NotificationsHandler{
		notificationService: notificationService,
	}
}

type NotificationResponseItem struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *NotificationsHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	notifications, err := h.notificationService.GetByUserID(reqCtx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	response := make([]NotificationResponseItem, len(notifications))
	for i, n := range notifications {
		response[i] = NotificationResponseItem{
			ID:        n.ID,
			Type:      string(n.Type),
			Title:     n.Title,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": response})
}

// MarkRead PUT RouteGroup + NotificationReadRoute. Чужое уведомление дает 404.
func (h *NotificationsHandler) MarkRead(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	id, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.notificationService.MarkRead(reqCtx, currentUserID, id); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}
	c.AbortWithStatus(http.StatusOK)
}
