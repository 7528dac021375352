package service

import (
	"fmt"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"
)

// OrderSetting 订单计价配置
type OrderSetting struct {
	Currency              string  `json:"currency"`
	TaxRatePercent        float64 `json:"tax_rate_percent"`
	ShippingFee           float64 `json:"shipping_fee"`
	FreeShippingThreshold float64 `json:"free_shipping_threshold"`
}

// OrderDefaultSetting 默认订单计价配置
func OrderDefaultSetting() OrderSetting {
	return NormalizeOrderSetting(OrderSetting{
		Currency:              constants.SiteCurrencyDefault,
		TaxRatePercent:        10,
		ShippingFee:           3000,
		FreeShippingThreshold: 20000,
	})
}

// NormalizeOrderSetting 归一化订单计价配置
func NormalizeOrderSetting(setting OrderSetting) OrderSetting {
	if setting.Currency == "" {
		setting.Currency = constants.SiteCurrencyDefault
	}
	setting.TaxRatePercent = roundCommissionDecimal(setting.TaxRatePercent)
	if setting.TaxRatePercent < 0 {
		setting.TaxRatePercent = 0
	}
	if setting.TaxRatePercent > 100 {
		setting.TaxRatePercent = 100
	}
	if setting.ShippingFee < 0 {
		setting.ShippingFee = 0
	}
	if setting.FreeShippingThreshold < 0 {
		setting.FreeShippingThreshold = 0
	}
	return setting
}

// ValidateOrderSetting 校验订单计价配置
func ValidateOrderSetting(setting OrderSetting) error {
	normalized := NormalizeOrderSetting(setting)
	if normalized.TaxRatePercent < 0 || normalized.TaxRatePercent > 100 {
		return fmt.Errorf("%w: 税率必须在 0-100 之间", ErrInvalidInput)
	}
	return nil
}

// OrderSettingToMap 将订单计价配置转换为 settings 存储结构
func OrderSettingToMap(setting OrderSetting) map[string]interface{} {
	normalized := NormalizeOrderSetting(setting)
	return map[string]interface{}{
		"currency":                normalized.Currency,
		"tax_rate_percent":        normalized.TaxRatePercent,
		"shipping_fee":            normalized.ShippingFee,
		"free_shipping_threshold": normalized.FreeShippingThreshold,
	}
}

func orderSettingFromJSON(raw models.JSON, fallback OrderSetting) OrderSetting {
	result := fallback

	if currencyRaw, ok := raw["currency"]; ok {
		if text := normalizeSettingText(currencyRaw); text != "" {
			result.Currency = text
		}
	}
	if taxRaw, ok := raw["tax_rate_percent"]; ok {
		if parsed, err := parseSettingFloat(taxRaw); err == nil {
			result.TaxRatePercent = parsed
		}
	}
	if feeRaw, ok := raw["shipping_fee"]; ok {
		if parsed, err := parseSettingFloat(feeRaw); err == nil {
			result.ShippingFee = parsed
		}
	}
	if thresholdRaw, ok := raw["free_shipping_threshold"]; ok {
		if parsed, err := parseSettingFloat(thresholdRaw); err == nil {
			result.FreeShippingThreshold = parsed
		}
	}

	return NormalizeOrderSetting(result)
}

func normalizeOrderSettingMap(value map[string]interface{}) models.JSON {
	setting := orderSettingFromJSON(models.JSON(value), OrderDefaultSetting())
	return models.JSON(OrderSettingToMap(setting))
}

// GetOrderSetting 获取订单计价设置（优先 settings，空时回退默认）
func (s *SettingService) GetOrderSetting() (OrderSetting, error) {
	fallback := OrderDefaultSetting()
	if s == nil {
		return fallback, nil
	}

	value, err := s.GetByKey(constants.SettingKeyOrderConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return orderSettingFromJSON(value, fallback), nil
}

// UpdateOrderSetting 更新订单计价设置
func (s *SettingService) UpdateOrderSetting(setting OrderSetting) (OrderSetting, error) {
	normalized := NormalizeOrderSetting(setting)
	if err := ValidateOrderSetting(normalized); err != nil {
		return OrderDefaultSetting(), err
	}
	if _, err := s.Update(constants.SettingKeyOrderConfig, OrderSettingToMap(normalized)); err != nil {
		return OrderDefaultSetting(), err
	}
	return normalized, nil
}
