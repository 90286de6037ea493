package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"gobarber/middleware"
	"gobarber/models"
	"gobarber/utils"
)

const notificationPageSize = 20

type NotificationStore interface {
	ListByRecipient(ctx context.Context, userID int64, limit int64) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string, userID int64) (*models.Notification, error)
}

// ProviderChecker is satisfied by the user directory.
type ProviderChecker interface {
	CountProviders(ctx context.Context, id int64) (int64, error)
}

type NotificationHandler struct {
	store     NotificationStore
	providers ProviderChecker
}

func NewNotificationHandler(store NotificationStore, providers ProviderChecker) *NotificationHandler {
	return &NotificationHandler{store: store, providers: providers}
}

// ListNotifications handles GET /notifications; providers only.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	actorID, _ := middleware.UserID(c)
	ctx := c.Request.Context()

	n, err := h.providers.CountProviders(ctx, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	if n != 1 {
		utils.JSONError(c, getLogger(c), http.StatusUnauthorized, "Only providers can load notifications.", "")
		return
	}

	list, err := h.store.ListByRecipient(ctx, actorID, notificationPageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// MarkNotificationRead handles PUT /notifications/:id.
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	actorID, _ := middleware.UserID(c)

	n, err := h.store.MarkRead(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	if n == nil {
		utils.JSONError(c, getLogger(c), http.StatusNotFound, "Notification not found.", "")
		return
	}
	c.JSON(http.StatusOK, n)
}
