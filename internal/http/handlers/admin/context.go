package admin

import (
	handlershared "github.com/furom/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "admin_id", "error.unauthorized", "error.internal")
}

func currentAdminIsSuper(c *gin.Context) bool {
	if value, exists := c.Get("admin_is_super"); exists {
		if flag, ok := value.(bool); ok {
			return flag
		}
	}
	return false
}
