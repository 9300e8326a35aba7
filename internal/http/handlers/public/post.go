package public

import (
	"strings"

	"github.com/furom/internal/constants"
	handlershared "github.com/furom/internal/http/handlers/shared"
	"github.com/furom/internal/http/response"
	"github.com/furom/internal/models"
	"github.com/furom/internal/service"

	"github.com/gin-gonic/gin"
)

// authorView 对外展示的作者信息
type authorView struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	Level       int    `json:"level"`
	LevelName   string `json:"level_name"`
}

// postView 帖子响应，附带当前用户投票方向
type postView struct {
	models.Post
	Author     *authorView `json:"author,omitempty"`
	ViewerVote string      `json:"viewer_vote"`
}

type commentView struct {
	models.Comment
	Author     *authorView `json:"author,omitempty"`
	ViewerVote string      `json:"viewer_vote"`
}

func (h *Handler) buildAuthorView(user *models.User) *authorView {
	if user == nil {
		return nil
	}
	level := h.Ledger.Levels().LevelFor(user.Exp)
	return &authorView{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Avatar:      user.Avatar,
		Level:       level.Number,
		LevelName:   level.Name,
	}
}

func (h *Handler) buildPostViews(c *gin.Context, posts []models.Post) []postView {
	votes := map[uint]string{}
	if uid := viewerID(c); uid != 0 && len(posts) > 0 {
		ids := make([]uint, 0, len(posts))
		for _, post := range posts {
			ids = append(ids, post.ID)
		}
		if loaded, err := h.VoteService.ViewerVotes(uid, constants.VoteTargetPost, ids); err == nil {
			votes = loaded
		} else {
			handlershared.RequestLog(c).Warnw("viewer_votes_load_failed", "error", err)
		}
	}
	views := make([]postView, 0, len(posts))
	for _, post := range posts {
		author := h.buildAuthorView(post.Author)
		post.Author = nil
		views = append(views, postView{Post: post, Author: author, ViewerVote: votes[post.ID]})
	}
	return views
}

// GetPosts 帖子列表，支持分类、作者、排序与关键字
func (h *Handler) GetPosts(c *gin.Context) {
	page, pageSize := normalizePagination(c)
	categoryID, ok := handlershared.ParseUintQuery(c, "category_id")
	if !ok {
		return
	}
	authorID, ok := handlershared.ParseUintQuery(c, "user_id")
	if !ok {
		return
	}
	if slug := strings.TrimSpace(c.Query("category")); slug != "" && categoryID == 0 {
		category, err := h.CategoryService.GetActiveBySlug(slug)
		if err != nil {
			respondWithMappedError(c, err, "error.internal")
			return
		}
		categoryID = category.ID
	}

	posts, total, err := h.PostService.List(service.PostQuery{
		CategoryID: categoryID,
		UserID:     authorID,
		Sort:       c.Query("sort"),
		Search:     c.Query("search"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.SuccessWithPage(c, h.buildPostViews(c, posts), response.BuildPagination(page, pageSize, total))
}

// GetPost 帖子详情，计入浏览量
func (h *Handler) GetPost(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	post, err := h.PostService.Get(id, true)
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.Success(c, h.buildPostViews(c, []models.Post{*post})[0])
}

// CreatePost 发帖
func (h *Handler) CreatePost(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req service.CreatePostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	post, err := h.PostService.Create(uid, req)
	if err != nil {
		respondWithMappedError(c, err, "error.save_failed")
		return
	}
	response.Success(c, post)
}

// GetPostComments 帖子评论列表
func (h *Handler) GetPostComments(c *gin.Context) {
	postID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	page, pageSize := normalizePagination(c)
	comments, total, err := h.CommentService.ListByPost(postID, page, pageSize)
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}

	votes := map[uint]string{}
	if uid := viewerID(c); uid != 0 && len(comments) > 0 {
		ids := make([]uint, 0, len(comments))
		for _, comment := range comments {
			ids = append(ids, comment.ID)
		}
		if loaded, err := h.VoteService.ViewerVotes(uid, constants.VoteTargetComment, ids); err == nil {
			votes = loaded
		}
	}
	views := make([]commentView, 0, len(comments))
	for _, comment := range comments {
		author := h.buildAuthorView(comment.Author)
		comment.Author = nil
		views = append(views, commentView{Comment: comment, Author: author, ViewerVote: votes[comment.ID]})
	}
	response.SuccessWithPage(c, views, response.BuildPagination(page, pageSize, total))
}

// CreateComment 发表评论
func (h *Handler) CreateComment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	postID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req service.CreateCommentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	comment, err := h.CommentService.Create(uid, postID, req)
	if err != nil {
		respondWithMappedError(c, err, "error.save_failed")
		return
	}
	response.Success(c, comment)
}
