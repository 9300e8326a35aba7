package admin

import (
	"strings"

	handlershared "github.com/furom/internal/http/handlers/shared"
	"github.com/furom/internal/http/response"
	"github.com/furom/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetModerationLogs 审核日志
func (h *Handler) GetModerationLogs(c *gin.Context) {
	page, pageSize := normalizePagination(c)
	adminID, ok := handlershared.ParseUintQuery(c, "admin_id")
	if !ok {
		return
	}
	subjectID, ok := handlershared.ParseUintQuery(c, "subject_id")
	if !ok {
		return
	}
	logs, total, err := h.ModerationLogRepo.List(repository.ModerationLogListFilter{
		Page:        page,
		PageSize:    pageSize,
		AdminID:     adminID,
		SubjectKind: strings.TrimSpace(c.Query("subject_kind")),
		SubjectID:   subjectID,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, logs, response.BuildPagination(page, pageSize, total))
}

// GetAdminNotices 待办审核公告
func (h *Handler) GetAdminNotices(c *gin.Context) {
	page, pageSize := normalizePagination(c)
	notices, total, err := h.NotificationService.ListAdminNotices(page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, notices, response.BuildPagination(page, pageSize, total))
}
