package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"
)

const (
	commissionRateMin           = 0
	commissionRateMax           = 100
	commissionReturnWindowMin   = 0
	commissionReturnWindowMax   = 365
	commissionAttributionMin    = 1
	commissionAttributionMax    = 365
	commissionClickDedupeMinMin = 0
	commissionClickDedupeMinMax = 1440
)

// CommissionSetting 合伙人佣金配置
type CommissionSetting struct {
	Enabled               bool               `json:"enabled"`
	ReturnWindowDays      int                `json:"return_window_days"`
	AttributionWindowDays int                `json:"attribution_window_days"`
	ClickDedupeMinutes    int                `json:"click_dedupe_minutes"`
	TierRates             map[string]float64 `json:"tier_rates"`
	TierThresholds        map[string]float64 `json:"tier_thresholds"`
}

// CommissionDefaultSetting 默认佣金配置
func CommissionDefaultSetting() CommissionSetting {
	return NormalizeCommissionSetting(CommissionSetting{
		Enabled:               true,
		ReturnWindowDays:      7,
		AttributionWindowDays: 30,
		ClickDedupeMinutes:    30,
		TierRates: map[string]float64{
			constants.PartnerTierBronze:   3,
			constants.PartnerTierSilver:   5,
			constants.PartnerTierGold:     8,
			constants.PartnerTierPlatinum: 12,
		},
		TierThresholds: map[string]float64{
			constants.PartnerTierSilver:   500000,
			constants.PartnerTierGold:     3000000,
			constants.PartnerTierPlatinum: 10000000,
		},
	})
}

// NormalizeCommissionSetting 归一化佣金配置
func NormalizeCommissionSetting(setting CommissionSetting) CommissionSetting {
	if setting.ReturnWindowDays < commissionReturnWindowMin {
		setting.ReturnWindowDays = commissionReturnWindowMin
	}
	if setting.ReturnWindowDays > commissionReturnWindowMax {
		setting.ReturnWindowDays = commissionReturnWindowMax
	}

	if setting.AttributionWindowDays < commissionAttributionMin {
		setting.AttributionWindowDays = 30
	}
	if setting.AttributionWindowDays > commissionAttributionMax {
		setting.AttributionWindowDays = commissionAttributionMax
	}

	if setting.ClickDedupeMinutes < commissionClickDedupeMinMin {
		setting.ClickDedupeMinutes = commissionClickDedupeMinMin
	}
	if setting.ClickDedupeMinutes > commissionClickDedupeMinMax {
		setting.ClickDedupeMinutes = commissionClickDedupeMinMax
	}

	rates := make(map[string]float64, len(constants.PartnerTierOrder))
	defaults := map[string]float64{
		constants.PartnerTierBronze:   3,
		constants.PartnerTierSilver:   5,
		constants.PartnerTierGold:     8,
		constants.PartnerTierPlatinum: 12,
	}
	for _, tier := range constants.PartnerTierOrder {
		rate, ok := setting.TierRates[tier]
		if !ok {
			rate = defaults[tier]
		}
		rate = roundCommissionDecimal(rate)
		if rate < commissionRateMin {
			rate = commissionRateMin
		}
		if rate > commissionRateMax {
			rate = commissionRateMax
		}
		rates[tier] = rate
	}
	setting.TierRates = rates

	thresholds := make(map[string]float64, 3)
	for _, tier := range []string{constants.PartnerTierSilver, constants.PartnerTierGold, constants.PartnerTierPlatinum} {
		value := setting.TierThresholds[tier]
		if value < 0 {
			value = 0
		}
		thresholds[tier] = roundCommissionDecimal(value)
	}
	setting.TierThresholds = thresholds

	return setting
}

// ValidateCommissionSetting 校验佣金配置
func ValidateCommissionSetting(setting CommissionSetting) error {
	normalized := NormalizeCommissionSetting(setting)
	for tier, rate := range normalized.TierRates {
		if rate < commissionRateMin || rate > commissionRateMax {
			return fmt.Errorf("%w: %s 等级佣金比例必须在 0-100 之间", ErrPartnerConfigInvalid, tier)
		}
	}
	if normalized.ReturnWindowDays < commissionReturnWindowMin || normalized.ReturnWindowDays > commissionReturnWindowMax {
		return fmt.Errorf("%w: 退货期天数必须在 0-365 之间", ErrPartnerConfigInvalid)
	}
	return nil
}

// CommissionSettingToMap 将佣金配置转换为 settings 存储结构
func CommissionSettingToMap(setting CommissionSetting) map[string]interface{} {
	normalized := NormalizeCommissionSetting(setting)
	rates := make(map[string]interface{}, len(normalized.TierRates))
	for tier, rate := range normalized.TierRates {
		rates[tier] = rate
	}
	thresholds := make(map[string]interface{}, len(normalized.TierThresholds))
	for tier, value := range normalized.TierThresholds {
		thresholds[tier] = value
	}
	return map[string]interface{}{
		"enabled":                 normalized.Enabled,
		"return_window_days":      normalized.ReturnWindowDays,
		"attribution_window_days": normalized.AttributionWindowDays,
		"click_dedupe_minutes":    normalized.ClickDedupeMinutes,
		"tier_rates":              rates,
		"tier_thresholds":         thresholds,
	}
}

func commissionSettingFromJSON(raw models.JSON, fallback CommissionSetting) CommissionSetting {
	result := fallback

	if enabledRaw, ok := raw["enabled"]; ok {
		result.Enabled = parseSettingBool(enabledRaw)
	}
	if windowRaw, ok := raw["return_window_days"]; ok {
		if parsed, err := parseSettingInt(windowRaw); err == nil {
			result.ReturnWindowDays = parsed
		}
	}
	if attributionRaw, ok := raw["attribution_window_days"]; ok {
		if parsed, err := parseSettingInt(attributionRaw); err == nil {
			result.AttributionWindowDays = parsed
		}
	}
	if dedupeRaw, ok := raw["click_dedupe_minutes"]; ok {
		if parsed, err := parseSettingInt(dedupeRaw); err == nil {
			result.ClickDedupeMinutes = parsed
		}
	}
	if ratesRaw, ok := raw["tier_rates"].(map[string]interface{}); ok {
		rates := make(map[string]float64, len(ratesRaw))
		for tier, valueRaw := range ratesRaw {
			if parsed, err := parseSettingFloat(valueRaw); err == nil {
				rates[strings.ToLower(strings.TrimSpace(tier))] = parsed
			}
		}
		result.TierRates = rates
	}
	if thresholdsRaw, ok := raw["tier_thresholds"].(map[string]interface{}); ok {
		thresholds := make(map[string]float64, len(thresholdsRaw))
		for tier, valueRaw := range thresholdsRaw {
			if parsed, err := parseSettingFloat(valueRaw); err == nil {
				thresholds[strings.ToLower(strings.TrimSpace(tier))] = parsed
			}
		}
		result.TierThresholds = thresholds
	}

	return NormalizeCommissionSetting(result)
}

func normalizeCommissionSettingMap(value map[string]interface{}) models.JSON {
	setting := commissionSettingFromJSON(models.JSON(value), CommissionDefaultSetting())
	return models.JSON(CommissionSettingToMap(setting))
}

// GetCommissionSetting 获取佣金设置（优先 settings，空时回退默认）
func (s *SettingService) GetCommissionSetting() (CommissionSetting, error) {
	fallback := CommissionDefaultSetting()
	if s == nil {
		return fallback, nil
	}

	value, err := s.GetByKey(constants.SettingKeyCommissionConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return commissionSettingFromJSON(value, fallback), nil
}

// UpdateCommissionSetting 更新佣金设置
func (s *SettingService) UpdateCommissionSetting(setting CommissionSetting) (CommissionSetting, error) {
	normalized := NormalizeCommissionSetting(setting)
	if err := ValidateCommissionSetting(normalized); err != nil {
		return CommissionDefaultSetting(), err
	}
	if _, err := s.Update(constants.SettingKeyCommissionConfig, CommissionSettingToMap(normalized)); err != nil {
		return CommissionDefaultSetting(), err
	}
	return normalized, nil
}

// RateForTier 获取指定等级的默认佣金比例
func (c CommissionSetting) RateForTier(tier string) float64 {
	rate, ok := c.TierRates[strings.ToLower(strings.TrimSpace(tier))]
	if !ok {
		return c.TierRates[constants.PartnerTierBronze]
	}
	return rate
}

func parseSettingFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, fmt.Errorf("empty string")
		}
		return strconv.ParseFloat(trimmed, 64)
	default:
		return 0, fmt.Errorf("unsupported value type")
	}
}

func roundCommissionDecimal(value float64) float64 {
	return math.Round(value*100) / 100
}
