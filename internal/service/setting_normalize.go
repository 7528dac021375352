package service

import (
	"strings"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"
)

var settingSupportedLanguages = []string{"ko-KR", "en-US"}

// normalizeSettingValueByKey 按设置键执行归一化，避免非法值入库。
func normalizeSettingValueByKey(key string, value map[string]interface{}) models.JSON {
	switch key {
	case constants.SettingKeyOrderConfig:
		return normalizeOrderSettingMap(value)
	case constants.SettingKeyCommissionConfig:
		return normalizeCommissionSettingMap(value)
	case constants.SettingKeySiteConfig:
		return normalizeSiteSetting(value)
	default:
		return models.JSON(value)
	}
}

// normalizeSiteSetting 归一化站点配置结构。
func normalizeSiteSetting(value map[string]interface{}) models.JSON {
	normalized := make(models.JSON, len(value)+3)
	for key, raw := range value {
		normalized[key] = raw
	}

	normalized["brand"] = normalizeSiteBrand(value["brand"])
	normalized["contact"] = normalizeSiteContact(value["contact"])

	if currencyRaw, ok := value[constants.SettingFieldSiteCurrency]; ok {
		currency := strings.ToUpper(normalizeSettingText(currencyRaw))
		if currency == "" {
			currency = constants.SiteCurrencyDefault
		}
		normalized[constants.SettingFieldSiteCurrency] = currency
	}
	if raw, ok := value["languages"]; ok {
		normalized["languages"] = normalizeSiteLanguages(raw)
	}

	return normalized
}

func normalizeSiteContact(raw interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"email": "",
		"phone": "",
	}
	contactMap, ok := raw.(map[string]interface{})
	if !ok {
		return result
	}
	result["email"] = normalizeSettingText(contactMap["email"])
	result["phone"] = normalizeSettingText(contactMap["phone"])
	return result
}

func normalizeSiteBrand(raw interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"site_name": "",
	}
	brandMap, ok := raw.(map[string]interface{})
	if !ok {
		return result
	}
	result["site_name"] = normalizeSettingText(brandMap["site_name"])
	return result
}

// normalizeSiteLanguages 去空去重，无有效项时退回默认语言集。
func normalizeSiteLanguages(raw interface{}) []string {
	var list []string
	switch value := raw.(type) {
	case []string:
		list = value
	case []interface{}:
		for _, item := range value {
			list = append(list, normalizeSettingText(item))
		}
	default:
		return cloneStringSlice(settingSupportedLanguages)
	}

	result := dedupeNonEmpty(list)
	if len(result) == 0 {
		return cloneStringSlice(settingSupportedLanguages)
	}
	return result
}

func dedupeNonEmpty(list []string) []string {
	result := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, item := range list {
		entry := strings.TrimSpace(item)
		if entry == "" {
			continue
		}
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		result = append(result, entry)
	}
	return result
}

func normalizeSettingText(raw interface{}) string {
	text, _ := raw.(string)
	return strings.TrimSpace(text)
}

var settingTruthyWords = map[string]struct{}{
	"1": {}, "true": {}, "yes": {}, "on": {},
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
		_, truthy := settingTruthyWords[strings.ToLower(strings.TrimSpace(value))]
		return truthy
	default:
		return false
	}
}

func cloneStringSlice(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}
