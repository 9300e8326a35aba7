package admin

import (
	"strings"

	"github.com/furom/internal/constants"
	handlershared "github.com/furom/internal/http/handlers/shared"
	"github.com/furom/internal/http/response"
	"github.com/furom/internal/repository"

	"github.com/gin-gonic/gin"
)

// BatchUpdateUserStatusRequest 批量更新用户状态请求
type BatchUpdateUserStatusRequest struct {
	UserIDs []uint `json:"user_ids" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// AdjustExpRequest 人工调整经验请求
type AdjustExpRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}

// GetAdminUsers 获取用户列表
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, pageSize := normalizePagination(c)
	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	users, total, err := h.UserAuthService.ListUsers(repository.UserListFilter{
		Page:        page,
		PageSize:    pageSize,
		Keyword:     strings.TrimSpace(c.Query("keyword")),
		Status:      strings.TrimSpace(c.Query("status")),
		KYCStatus:   strings.TrimSpace(c.Query("kyc_status")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.SuccessWithPage(c, users, response.BuildPagination(page, pageSize, total))
}

// GetAdminUser 用户详情与等级进度
func (h *Handler) GetAdminUser(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(id)
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.Success(c, gin.H{
		"user":     user,
		"progress": h.Ledger.Levels().Progress(user.Exp),
	})
}

// BatchUpdateUserStatus 批量启用或禁用用户
func (h *Handler) BatchUpdateUserStatus(c *gin.Context) {
	var req BatchUpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.UserAuthService.UpdateUserStatus(req.UserIDs, req.Status); err != nil {
		respondWithMappedError(c, err, "error.save_failed")
		return
	}
	requestLog(c).Infow("admin_user_status_updated", "user_ids", req.UserIDs, "status", req.Status)
	response.Success(c, gin.H{"updated": len(req.UserIDs)})
}

// AdjustUserExp 人工调整经验值，负数扣减到 0 为止
func (h *Handler) AdjustUserExp(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req AdjustExpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = constants.ExpReasonAdminAdjust
	}
	total, err := h.Ledger.AdjustExperience(id, req.Delta, reason)
	if err != nil {
		respondWithMappedError(c, err, "error.save_failed")
		return
	}
	requestLog(c).Infow("admin_exp_adjusted", "admin_id", adminID, "user_id", id, "delta", req.Delta, "exp", total)
	response.Success(c, gin.H{
		"exp":      total,
		"progress": h.Ledger.Levels().Progress(total),
	})
}

// GetUserExpHistory 用户经验流水
func (h *Handler) GetUserExpHistory(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	page, pageSize := normalizePagination(c)
	logs, total, err := h.Ledger.History(id, page, pageSize)
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.SuccessWithPage(c, logs, response.BuildPagination(page, pageSize, total))
}
