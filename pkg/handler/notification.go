package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/middleware"
)

func (h *Handler) Notifications(c *gin.Context) {
	accountID := c.GetString(middleware.CtxAccountID)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifications, total, err := h.service.Notifications.List(accountID, models.NotificationFilter{
		Status: c.Query("status"),
		Kind:   c.Query("type"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		newErrorResponse(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"results":       len(notifications),
		"total":         total,
		"notifications": notifications,
	})
}

func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	accountID := c.GetString(middleware.CtxAccountID)

	var input struct {
		NotificationIDs []string `json:"notification_ids"`
	}
	if err := c.BindJSON(&input); err != nil {
		newBadRequest(c, "invalid request body")
		return
	}

	modified, err := h.service.Notifications.MarkRead(accountID, input.NotificationIDs)
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"message":  "notifications marked as read",
		"modified": modified,
	})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	accountID := c.GetString(middleware.CtxAccountID)

	count, err := h.service.Notifications.UnreadCount(accountID)
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"count": count,
	})
}
