package service

import (
	"strings"

	"github.com/furom/internal/constants"
	"github.com/furom/internal/models"
)

const (
	settingSiteNameMaxRuneSize    = 80
	settingSiteNoticeMaxRuneSize  = 2000
	settingAutoApprovalMaxExp     = 1000000
	settingCaptchaDefaultProvider = constants.CaptchaProviderNone
)

// normalizeSettingValueByKey 按设置键执行归一化，避免非法值入库。
func normalizeSettingValueByKey(key string, value map[string]interface{}) models.JSON {
	switch key {
	case constants.SettingKeyModerationConfig:
		return normalizeModerationSetting(value)
	case constants.SettingKeySiteConfig:
		return normalizeSiteSetting(value)
	case constants.SettingKeyCaptchaConfig:
		return normalizeCaptchaSetting(value)
	default:
		return models.JSON(value)
	}
}

// normalizeModerationSetting 归一化审核设置，阈值为空表示关闭自动通过。
func normalizeModerationSetting(value map[string]interface{}) models.JSON {
	normalized := models.JSON{
		constants.SettingFieldKYCRequiredForCategories:      parseSettingBool(value[constants.SettingFieldKYCRequiredForCategories]),
		constants.SettingFieldKYCAutoApprovalThreshold:      normalizeThreshold(value[constants.SettingFieldKYCAutoApprovalThreshold]),
		constants.SettingFieldCategoryAutoApprovalThreshold: normalizeThreshold(value[constants.SettingFieldCategoryAutoApprovalThreshold]),
		constants.SettingFieldCategoryMinExp:                0,
	}
	if minExp, err := parseSettingInt(value[constants.SettingFieldCategoryMinExp]); err == nil && minExp > 0 {
		if minExp > settingAutoApprovalMaxExp {
			minExp = settingAutoApprovalMaxExp
		}
		normalized[constants.SettingFieldCategoryMinExp] = minExp
	}
	return normalized
}

func normalizeThreshold(raw interface{}) interface{} {
	threshold := parseSettingOptionalInt(raw)
	if threshold == nil {
		return nil
	}
	if *threshold > settingAutoApprovalMaxExp {
		return settingAutoApprovalMaxExp
	}
	return *threshold
}

// normalizeSiteSetting 归一化站点配置结构。
func normalizeSiteSetting(value map[string]interface{}) models.JSON {
	normalized := make(models.JSON, len(value)+3)
	for key, raw := range value {
		normalized[key] = raw
	}

	normalized["site_name"] = normalizeSettingTextWithRuneLimit(value["site_name"], settingSiteNameMaxRuneSize)
	normalized["notice"] = normalizeSiteLocalizedField(value["notice"])
	if raw, ok := value["languages"]; ok {
		normalized["languages"] = normalizeSiteLanguages(raw)
	}
	return normalized
}

// normalizeCaptchaSetting 归一化验证码设置。
func normalizeCaptchaSetting(value map[string]interface{}) models.JSON {
	provider := strings.ToLower(normalizeSettingText(value["provider"]))
	if provider != constants.CaptchaProviderImage {
		provider = settingCaptchaDefaultProvider
	}
	scenes := map[string]interface{}{
		constants.CaptchaSceneLogin:    false,
		constants.CaptchaSceneRegister: false,
	}
	if raw, ok := value["scenes"].(map[string]interface{}); ok {
		scenes[constants.CaptchaSceneLogin] = parseSettingBool(raw[constants.CaptchaSceneLogin])
		scenes[constants.CaptchaSceneRegister] = parseSettingBool(raw[constants.CaptchaSceneRegister])
	}
	return models.JSON{
		"provider": provider,
		"scenes":   scenes,
	}
}

func normalizeSiteLocalizedField(raw interface{}) map[string]interface{} {
	fieldResult := make(map[string]interface{}, len(constants.SupportedLocales))
	for _, language := range constants.SupportedLocales {
		fieldResult[language] = ""
	}

	fieldRaw, ok := raw.(map[string]interface{})
	if !ok {
		return fieldResult
	}

	for _, language := range constants.SupportedLocales {
		fieldResult[language] = normalizeSettingTextWithRuneLimit(fieldRaw[language], settingSiteNoticeMaxRuneSize)
	}

	return fieldResult
}

func normalizeSiteLanguages(raw interface{}) []string {
	list := make([]string, 0)
	switch value := raw.(type) {
	case []string:
		list = append(list, value...)
	case []interface{}:
		for _, item := range value {
			list = append(list, normalizeSettingText(item))
		}
	default:
		return append([]string(nil), constants.SupportedLocales...)
	}

	supported := make(map[string]struct{}, len(constants.SupportedLocales))
	for _, lang := range constants.SupportedLocales {
		supported[lang] = struct{}{}
	}
	result := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, item := range list {
		lang := strings.TrimSpace(item)
		if _, ok := supported[lang]; !ok {
			continue
		}
		if _, exists := seen[lang]; exists {
			continue
		}
		seen[lang] = struct{}{}
		result = append(result, lang)
	}
	if len(result) == 0 {
		return append([]string(nil), constants.SupportedLocales...)
	}
	return result
}

func normalizeSettingText(raw interface{}) string {
	text, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}

func normalizeSettingTextWithRuneLimit(raw interface{}, maxRuneCount int) string {
	text := normalizeSettingText(raw)
	if text == "" || maxRuneCount <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= maxRuneCount {
		return text
	}
	return string(runes[:maxRuneCount])
}

func parseSettingBool(raw interface{}) bool {
	switch value := raw.(type) {
	case bool:
		return value
	case int:
		return value != 0
	case int64:
		return value != 0
	case float64:
		return value != 0
	case string:
		normalized := strings.ToLower(strings.TrimSpace(value))
		return normalized == "1" || normalized == "true" || normalized == "yes" || normalized == "on"
	default:
		return false
	}
}
