package i18n

import (
	"fmt"
	"strings"

	"github.com/furom/internal/constants"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// 站点支持的语言
const (
	LocaleZH = constants.LocaleZhCN
	LocaleTW = constants.LocaleZhTW
	LocaleEN = constants.LocaleEnUS
)

// DefaultLocale 无法匹配时使用的语言
const DefaultLocale = LocaleEN

var (
	supportedTags = []language.Tag{
		language.AmericanEnglish,
		language.SimplifiedChinese,
		language.TraditionalChinese,
	}
	tagLocales = []string{LocaleEN, LocaleZH, LocaleTW}
	matcher    = language.NewMatcher(supportedTags)
)

// ResolveLocale 按 lang 参数、X-Locale 头、Accept-Language 的顺序解析请求语言
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if value, ok := c.Get("locale"); ok {
		if locale, ok := value.(string); ok && locale != "" {
			return locale
		}
	}
	candidates := []string{
		c.Query("lang"),
		c.GetHeader("X-Locale"),
		c.GetHeader("Accept-Language"),
	}
	for _, candidate := range candidates {
		if locale := MatchLocale(candidate); locale != "" {
			c.Set("locale", locale)
			return locale
		}
	}
	return DefaultLocale
}

// MatchLocale 将任意语言标签匹配到支持的语言，无法解析时返回空串
func MatchLocale(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return ""
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return ""
	}
	return tagLocales[index]
}

// T 翻译键值，缺失时回退英文，再回退为键本身
func T(locale, key string) string {
	if table, ok := messages[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译带参数的消息
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
