package public

import (
	handlershared "github.com/furom/internal/http/handlers/shared"
	"github.com/furom/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CastVoteRequest 投票请求，direction 为 up / down
type CastVoteRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// CastVote 对帖子或评论投票；相同方向重复投票为撤销，反向为改票
func (h *Handler) CastVote(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	targetID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.VoteService.CastVote(uid, c.Param("kind"), targetID, req.Direction)
	if err != nil {
		respondWithMappedError(c, err, "error.save_failed")
		return
	}
	response.Success(c, result)
}

// RetractVote 撤销投票
func (h *Handler) RetractVote(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	targetID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	result, err := h.VoteService.RetractVote(uid, c.Param("kind"), targetID)
	if err != nil {
		respondWithMappedError(c, err, "error.save_failed")
		return
	}
	response.Success(c, result)
}

// GetMyVote 查询当前用户对目标的投票方向
func (h *Handler) GetMyVote(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	targetID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	direction, err := h.VoteService.GetVote(uid, c.Param("kind"), targetID)
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.Success(c, gin.H{"direction": direction})
}
