package public

import (
	"time"

	"github.com/furom/internal/cache"
	"github.com/furom/internal/constants"
	handlershared "github.com/furom/internal/http/handlers/shared"
	"github.com/furom/internal/http/response"

	"github.com/gin-gonic/gin"
)

const publicConfigCacheTTL = 60 * time.Second

// GetConfig 获取站点公开配置
func (h *Handler) GetConfig(c *gin.Context) {
	var cached map[string]interface{}
	if hit, err := cache.GetJSON(c.Request.Context(), constants.CacheKeyPublicConfig, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	defaults := map[string]interface{}{
		"site_name": "Furom",
		"languages": constants.SupportedLocales,
	}
	data, err := h.SettingService.GetConfig(defaults)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	data["levels"] = h.Ledger.Levels().Levels()
	if captcha, err := h.CaptchaService.GetPublicSetting(); err == nil {
		data["captcha"] = captcha
	}

	if err := cache.SetJSON(c.Request.Context(), constants.CacheKeyPublicConfig, data, publicConfigCacheTTL); err != nil {
		handlershared.RequestLog(c).Warnw("public_config_cache_set_failed", "error", err)
	}
	response.Success(c, data)
}
