package public

import (
	"strconv"

	"github.com/furom/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetMyLevel 当前用户等级进度
func (h *Handler) GetMyLevel(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	progress, err := h.Ledger.LevelOf(uid)
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.Success(c, progress)
}

// GetMyExpHistory 当前用户经验流水
func (h *Handler) GetMyExpHistory(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := normalizePagination(c)
	logs, total, err := h.Ledger.History(uid, page, pageSize)
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.SuccessWithPage(c, logs, response.BuildPagination(page, pageSize, total))
}

// GetLevels 等级阈值表
func (h *Handler) GetLevels(c *gin.Context) {
	response.Success(c, h.Ledger.Levels().Levels())
}

// GetLeaderboard 经验排行榜
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	snapshot, err := h.LeaderboardService.Top(c.Request.Context(), limit)
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.Success(c, snapshot)
}
