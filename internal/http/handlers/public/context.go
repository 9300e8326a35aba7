package public

import (
	handlershared "github.com/furom/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "user_id", "error.unauthorized", "error.internal")
}

// viewerID 可选登录场景下的当前用户，匿名为 0
func viewerID(c *gin.Context) uint {
	return handlershared.OptionalContextUint(c, "user_id")
}

func requestID(c *gin.Context) string {
	if value, ok := c.Get("request_id"); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
