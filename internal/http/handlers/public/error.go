package public

import (
	handlershared "github.com/furom/internal/http/handlers/shared"
	"github.com/furom/internal/http/response"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondWithMappedError(c *gin.Context, err error, fallbackKey string) {
	handlershared.RespondMappedError(c, err, handlershared.ForumErrorRules, response.CodeInternal, fallbackKey)
}

func normalizePagination(c *gin.Context) (int, int) {
	return handlershared.PaginationFromQuery(c)
}
