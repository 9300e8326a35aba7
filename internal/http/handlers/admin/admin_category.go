package admin

import (
	"strings"

	handlershared "github.com/furom/internal/http/handlers/shared"
	"github.com/furom/internal/http/response"
	"github.com/furom/internal/models"
	"github.com/furom/internal/repository"

	"github.com/gin-gonic/gin"
)

// RejectRequest 驳回请求
type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// GetAdminCategories 分类审核列表，可按状态过滤
func (h *Handler) GetAdminCategories(c *gin.Context) {
	page, pageSize := normalizePagination(c)
	status := models.CategoryStatus(strings.TrimSpace(c.Query("status")))
	if status != "" && !status.Valid() {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	categories, total, err := h.CategoryService.List(repository.CategoryListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   status,
		Search:   c.Query("search"),
	})
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.SuccessWithPage(c, categories, response.BuildPagination(page, pageSize, total))
}

// ApproveCategory 通过分类
func (h *Handler) ApproveCategory(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	category, err := h.CategoryService.Approve(id, adminID)
	if err != nil {
		respondWithMappedError(c, err, "error.save_failed")
		return
	}
	response.Success(c, category)
}

// RejectCategory 驳回分类
func (h *Handler) RejectCategory(c *gin.Context) {
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
	category, err := h.CategoryService.Reject(id, adminID, req.Reason)
	if err != nil {
		respondWithMappedError(c, err, "error.save_failed")
		return
	}
	response.Success(c, category)
}
