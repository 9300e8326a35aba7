package admin

import (
	"time"

	"github.com/furom/internal/http/response"
	"github.com/furom/internal/queue"

	"github.com/gin-gonic/gin"
)

const leaderboardRefreshDedupe = 10 * time.Second

// RefreshLeaderboard 重建排行榜缓存；队列可用时异步执行
func (h *Handler) RefreshLeaderboard(c *gin.Context) {
	if h.QueueClient != nil && h.QueueClient.Enabled() {
		payload := queue.LeaderboardRefreshPayload{Limit: h.LeaderboardService.Size()}
		if err := h.QueueClient.EnqueueLeaderboardRefresh(payload, leaderboardRefreshDedupe); err != nil {
			respondError(c, response.CodeInternal, "error.internal", err)
			return
		}
		response.Success(c, gin.H{"queued": true})
		return
	}
	snapshot, err := h.LeaderboardService.Refresh(c.Request.Context())
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.Success(c, snapshot)
}
