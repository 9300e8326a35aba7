package shared

import (
	"errors"

	"github.com/furom/internal/http/response"
	"github.com/furom/internal/i18n"
	"github.com/furom/internal/logger"
	"github.com/furom/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	respondAppError(c, response.WrapError(code, key, msg, err))
}

// RespondErrorWithMsg 返回自定义消息错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	respondAppError(c, response.WrapError(code, "", msg, err))
}

func respondAppError(c *gin.Context, appErr *response.AppError) {
	if appErr.Err != nil {
		log := RequestLog(c)
		kv := []interface{}{
			"code", appErr.Code,
			"key", appErr.Key,
			"message", appErr.Message,
			"error", appErr.Err,
		}
		if appErr.ServerSide() {
			log.Errorw("handler_error", kv...)
		} else {
			log.Warnw("handler_rejected", kv...)
		}
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondValidation 返回字段级校验错误，字段列表放在 data.fields
func RespondValidation(c *gin.Context, err error) bool {
	var verr *service.ValidationError
	if !errors.As(err, &verr) || verr == nil {
		return false
	}
	msg := i18n.T(i18n.ResolveLocale(c), "error.validation_failed")
	response.ErrorWithData(c, response.CodeBadRequest, msg, gin.H{"fields": verr.Fields})
	return true
}

// RespondPasswordPolicy 按密码策略错误携带的键值返回本地化提示
func RespondPasswordPolicy(c *gin.Context, err error) bool {
	var perr interface {
		Key() string
		Args() []interface{}
	}
	if !errors.As(err, &perr) {
		return false
	}
	msg := i18n.Sprintf(i18n.ResolveLocale(c), perr.Key(), perr.Args()...)
	RespondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
	return true
}
