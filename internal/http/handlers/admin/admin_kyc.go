package admin

import (
	"strings"

	handlershared "github.com/furom/internal/http/handlers/shared"
	"github.com/furom/internal/http/response"
	"github.com/furom/internal/models"
	"github.com/furom/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetKYCSubmissions 实名提交列表
func (h *Handler) GetKYCSubmissions(c *gin.Context) {
	page, pageSize := normalizePagination(c)
	userID, ok := handlershared.ParseUintQuery(c, "user_id")
	if !ok {
		return
	}
	submissions, total, err := h.KYCService.List(repository.KYCListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   models.KYCStatus(strings.TrimSpace(c.Query("status"))),
		WithUser: true,
	})
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.SuccessWithPage(c, submissions, response.BuildPagination(page, pageSize, total))
}

// GetKYCSubmission 实名提交详情
func (h *Handler) GetKYCSubmission(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	submission, err := h.KYCService.Get(id)
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.Success(c, submission)
}

// ApproveKYC 通过实名认证
func (h *Handler) ApproveKYC(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	submission, err := h.KYCService.Approve(id, adminID)
	if err != nil {
		respondWithMappedError(c, err, "error.save_failed")
		return
	}
	response.Success(c, submission)
}

// RejectKYC 驳回实名认证
func (h *Handler) RejectKYC(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	submission, err := h.KYCService.Reject(id, adminID, req.Reason)
	if err != nil {
		respondWithMappedError(c, err, "error.save_failed")
		return
	}
	response.Success(c, submission)
}
