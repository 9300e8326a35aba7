package admin

import (
	"github.com/furom/internal/cache"
	"github.com/furom/internal/constants"
	"github.com/furom/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetSetting 读取指定设置
func (h *Handler) GetSetting(c *gin.Context) {
	value, err := h.SettingService.GetByKey(c.Param("key"))
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.Success(c, value)
}

// UpdateSetting 更新指定设置，按键归一化后保存
func (h *Handler) UpdateSetting(c *gin.Context) {
	key := c.Param("key")
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	value, err := h.SettingService.Update(key, req)
	if err != nil {
		respondWithMappedError(c, err, "error.save_failed")
		return
	}

	if key == constants.SettingKeyCaptchaConfig {
		h.CaptchaService.InvalidateCache()
	}
	if err := cache.Del(c.Request.Context(), constants.CacheKeyPublicConfig); err != nil {
		requestLog(c).Warnw("public_config_cache_invalidate_failed", "error", err)
	}
	requestLog(c).Infow("admin_setting_updated", "key", key)
	response.Success(c, value)
}
