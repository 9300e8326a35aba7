package public

import (
	"github.com/furom/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetMyNotifications 当前用户站内通知
func (h *Handler) GetMyNotifications(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := normalizePagination(c)
	unreadOnly := c.Query("unread") == "1" || c.Query("unread") == "true"

	items, total, err := h.NotificationService.ListForUser(uid, unreadOnly, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// GetUnreadNotificationCount 未读通知数
func (h *Handler) GetUnreadNotificationCount(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	count, err := h.NotificationService.CountUnread(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"unread": count})
}

// MarkNotificationsReadRequest 标记已读，ids 为空时全部标记
type MarkNotificationsReadRequest struct {
	IDs []uint `json:"ids"`
}

// MarkNotificationsRead 标记通知已读
func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req MarkNotificationsReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	affected, err := h.NotificationService.MarkRead(uid, req.IDs)
	if err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	response.Success(c, gin.H{"updated": affected})
}
