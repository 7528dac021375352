package shared

import (
	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/i18n"
	"github.com/linkmall/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 返回带 request_id 字段的日志实例
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

func respondAppError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondError 按请求 locale 翻译 key 后返回错误响应
func RespondError(c *gin.Context, code int, key string, err error) {
	respondAppError(c, code, i18n.T(i18n.ResolveLocale(c), key), err)
}

// RespondErrorWithMsg 返回给定消息的错误响应，不走翻译
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	respondAppError(c, code, msg, err)
}
