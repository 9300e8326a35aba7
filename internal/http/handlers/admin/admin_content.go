package admin

import (
	handlershared "github.com/furom/internal/http/handlers/shared"
	"github.com/furom/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ModerateRequest 内容处理请求，status 为 active / removed
type ModerateRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// GetAdminPosts 帖子列表（含已移除）
func (h *Handler) GetAdminPosts(c *gin.Context) {
	page, pageSize := normalizePagination(c)
	posts, total, err := h.PostService.ListAdmin(c.Query("status"), c.Query("search"), page, pageSize)
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.SuccessWithPage(c, posts, response.BuildPagination(page, pageSize, total))
}

// ModeratePost 移除或恢复帖子
func (h *Handler) ModeratePost(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	post, err := h.PostService.Moderate(id, adminID, req.Status, req.Reason)
	if err != nil {
		respondWithMappedError(c, err, "error.save_failed")
		return
	}
	response.Success(c, post)
}

// ModerateComment 移除或恢复评论
func (h *Handler) ModerateComment(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	comment, err := h.CommentService.Moderate(id, adminID, req.Status, req.Reason)
	if err != nil {
		respondWithMappedError(c, err, "error.save_failed")
		return
	}
	response.Success(c, comment)
}
