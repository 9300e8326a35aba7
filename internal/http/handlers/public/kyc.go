package public

import (
	"github.com/furom/internal/http/response"
	"github.com/furom/internal/service"

	"github.com/gin-gonic/gin"
)

// GetKYCOverview 当前用户实名状态
func (h *Handler) GetKYCOverview(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	overview, err := h.KYCService.Overview(uid)
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.Success(c, overview)
}

// SubmitKYC 一次性提交证件照与证件文件
func (h *Handler) SubmitKYC(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req service.SubmitKYCInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	submission, err := h.KYCService.Submit(uid, req)
	if err != nil {
		respondWithMappedError(c, err, "error.save_failed")
		return
	}
	response.Success(c, submission)
}

// KYCDraftRequest 分步提交第一步：证件照
type KYCDraftRequest struct {
	PhotoPath string `json:"photo_path" binding:"required"`
}

// SaveKYCDraft 暂存证件照，草稿在缓存中限时保留
func (h *Handler) SaveKYCDraft(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req KYCDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	draft, err := h.KYCService.SaveKYCDraft(c.Request.Context(), uid, req.PhotoPath)
	if err != nil {
		respondWithMappedError(c, err, "error.save_failed")
		return
	}
	response.Success(c, draft)
}

// KYCCompleteRequest 分步提交第二步：证件文件
type KYCCompleteRequest struct {
	DocumentPath string `json:"document_path" binding:"required"`
}

// CompleteKYC 合并草稿与证件文件生成正式提交
func (h *Handler) CompleteKYC(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req KYCCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	submission, err := h.KYCService.CompleteKYC(c.Request.Context(), uid, req.DocumentPath)
	if err != nil {
		respondWithMappedError(c, err, "error.save_failed")
		return
	}
	response.Success(c, submission)
}
