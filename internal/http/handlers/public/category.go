package public

import (
	"github.com/furom/internal/http/response"
	"github.com/furom/internal/repository"
	"github.com/furom/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCategories 获取已生效分类
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.ListActive()
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.Success(c, categories)
}

// GetCategory 按 slug 获取已生效分类
func (h *Handler) GetCategory(c *gin.Context) {
	category, err := h.CategoryService.GetActiveBySlug(c.Param("slug"))
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.Success(c, category)
}

// SubmitCategory 提交分类，满足阈值时直接生效
func (h *Handler) SubmitCategory(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req service.SubmitCategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.CategoryService.Submit(uid, req)
	if err != nil {
		respondWithMappedError(c, err, "error.save_failed")
		return
	}
	response.Success(c, category)
}

// GetMyCategories 当前用户提交过的分类
func (h *Handler) GetMyCategories(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := normalizePagination(c)
	categories, total, err := h.CategoryService.List(repository.CategoryListFilter{
		Page:      page,
		PageSize:  pageSize,
		CreatorID: uid,
	})
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.SuccessWithPage(c, categories, response.BuildPagination(page, pageSize, total))
}
