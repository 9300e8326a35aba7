package admin

import (
	handlershared "github.com/furom/internal/http/handlers/shared"
	"github.com/furom/internal/http/response"
	"github.com/furom/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var adminErrorRules = handlershared.ConcatMappedErrors(
	handlershared.CaptchaErrorRules,
	[]handlershared.MappedError{
		{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
		{Target: service.ErrInvalidPassword, Code: response.CodeBadRequest, Key: "error.invalid_password"},
	},
	handlershared.ForumErrorRules,
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondWithMappedError(c *gin.Context, err error, fallbackKey string) {
	handlershared.RespondMappedError(c, err, adminErrorRules, response.CodeInternal, fallbackKey)
}

func normalizePagination(c *gin.Context) (int, int) {
	return handlershared.PaginationFromQuery(c)
}
