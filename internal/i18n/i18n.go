package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// 支持的站点语言
const (
	LocaleKO = "ko-KR"
	LocaleEN = "en-US"
)

// DefaultLocale 默认语言
const DefaultLocale = LocaleKO

// localeContextKey 请求上下文中缓存语言的键
const localeContextKey = "locale"

// Normalize 归一化语言标签，未识别时回退默认语言
func Normalize(locale string) string {
	l := strings.ToLower(strings.TrimSpace(locale))
	switch {
	case strings.HasPrefix(l, "en"):
		return LocaleEN
	case strings.HasPrefix(l, "ko"):
		return LocaleKO
	default:
		return DefaultLocale
	}
}

// ResolveLocale 从请求解析语言：query lang > cookie locale > Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if cached, ok := c.Get(localeContextKey); ok {
		if locale, ok := cached.(string); ok && locale != "" {
			return locale
		}
	}

	resolved := ""
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		resolved = Normalize(lang)
	}
	if resolved == "" {
		if cookie, err := c.Cookie(localeContextKey); err == nil && strings.TrimSpace(cookie) != "" {
			resolved = Normalize(cookie)
		}
	}
	if resolved == "" {
		if header := strings.TrimSpace(c.GetHeader("Accept-Language")); header != "" {
			first := strings.SplitN(header, ",", 2)[0]
			first = strings.SplitN(first, ";", 2)[0]
			resolved = Normalize(first)
		}
	}
	if resolved == "" {
		resolved = DefaultLocale
	}
	c.Set(localeContextKey, resolved)
	return resolved
}

// T 返回指定语言的文案；未命中时按 默认语言 > 英文 > 键名 回退
func T(locale, key string) string {
	normalized := Normalize(locale)
	if catalog, ok := catalogs[normalized]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if normalized != DefaultLocale {
		if msg, ok := catalogs[DefaultLocale][key]; ok {
			return msg
		}
	}
	if msg, ok := catalogs[LocaleEN][key]; ok {
		return msg
	}
	return key
}

// Sprintf 按指定语言格式化文案
func Sprintf(locale, key string, args ...interface{}) string {
	format := T(locale, key)
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
