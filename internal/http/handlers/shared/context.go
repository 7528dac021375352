package shared

import (
	"github.com/linkmall/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetContextUintWithKeys 从上下文读取 uint 身份值，缺失或类型不对时直接回写错误响应
func GetContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}

	// 中间件写入的是 uint，int/float64 出现在测试或 JSON 反序列化场景
	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v >= 0 {
			return uint(v), true
		}
	case float64:
		if v >= 0 {
			return uint(v), true
		}
	default:
		RespondError(c, response.CodeInternal, typeInvalidKey, nil)
		return 0, false
	}

	RespondError(c, response.CodeBadRequest, invalidKey, nil)
	return 0, false
}
