package service

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"github.com/linkmall/internal/config"
	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"
)

// SMTPVerifyCodeSetting 邮箱验证码子配置，字段与 config.VerifyCodeConfig 对应
type SMTPVerifyCodeSetting struct {
	ExpireMinutes       int `json:"expire_minutes"`
	SendIntervalSeconds int `json:"send_interval_seconds"`
	MaxAttempts         int `json:"max_attempts"`
	Length              int `json:"length"`
}

// SMTPSetting 后台可编辑的 SMTP 配置，存储于 settings 表
type SMTPSetting struct {
	Enabled    bool                  `json:"enabled"`
	Host       string                `json:"host"`
	Port       int                   `json:"port"`
	Username   string                `json:"username"`
	Password   string                `json:"password"`
	From       string                `json:"from"`
	FromName   string                `json:"from_name"`
	UseTLS     bool                  `json:"use_tls"`
	UseSSL     bool                  `json:"use_ssl"`
	VerifyCode SMTPVerifyCodeSetting `json:"verify_code"`
}

// SMTPVerifyCodePatch 验证码子配置补丁
type SMTPVerifyCodePatch struct {
	ExpireMinutes       *int `json:"expire_minutes"`
	SendIntervalSeconds *int `json:"send_interval_seconds"`
	MaxAttempts         *int `json:"max_attempts"`
	Length              *int `json:"length"`
}

// SMTPSettingPatch SMTP 配置补丁，nil 字段保持原值
type SMTPSettingPatch struct {
	Enabled    *bool                `json:"enabled"`
	Host       *string              `json:"host"`
	Port       *int                 `json:"port"`
	Username   *string              `json:"username"`
	Password   *string              `json:"password"`
	From       *string              `json:"from"`
	FromName   *string              `json:"from_name"`
	UseTLS     *bool                `json:"use_tls"`
	UseSSL     *bool                `json:"use_ssl"`
	VerifyCode *SMTPVerifyCodePatch `json:"verify_code"`
}

// SMTPDefaultSetting 以静态配置为底生成默认 SMTP 设置
func SMTPDefaultSetting(cfg config.EmailConfig) SMTPSetting {
	return NormalizeSMTPSetting(SMTPSetting{
		Enabled:  cfg.Enabled,
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		FromName: cfg.FromName,
		UseTLS:   cfg.UseTLS,
		UseSSL:   cfg.UseSSL,
		VerifyCode: SMTPVerifyCodeSetting{
			ExpireMinutes:       cfg.VerifyCode.ExpireMinutes,
			SendIntervalSeconds: cfg.VerifyCode.SendIntervalSeconds,
			MaxAttempts:         cfg.VerifyCode.MaxAttempts,
			Length:              cfg.VerifyCode.Length,
		},
	})
}

// NormalizeSMTPSetting 去除首尾空白并为越界字段补默认值
func NormalizeSMTPSetting(setting SMTPSetting) SMTPSetting {
	setting.Host = strings.TrimSpace(setting.Host)
	setting.Username = strings.TrimSpace(setting.Username)
	setting.Password = strings.TrimSpace(setting.Password)
	setting.From = strings.TrimSpace(setting.From)
	setting.FromName = strings.TrimSpace(setting.FromName)

	if setting.Port <= 0 || setting.Port > 65535 {
		setting.Port = 587
	}

	vc := &setting.VerifyCode
	if vc.ExpireMinutes <= 0 {
		vc.ExpireMinutes = 10
	}
	if vc.SendIntervalSeconds <= 0 {
		vc.SendIntervalSeconds = 60
	}
	if vc.MaxAttempts <= 0 {
		vc.MaxAttempts = 5
	}
	if vc.Length < 4 || vc.Length > 10 {
		vc.Length = 6
	}
	return setting
}

// ValidateSMTPSetting 校验配置，关闭状态只检查通用字段
func ValidateSMTPSetting(setting SMTPSetting) error {
	fail := func(msg string) error {
		return fmt.Errorf("%w: %s", ErrSMTPConfigInvalid, msg)
	}

	if setting.Port <= 0 || setting.Port > 65535 {
		return fail("SMTP 端口必须在 1-65535")
	}
	if setting.UseTLS && setting.UseSSL {
		return fail("TLS 与 SSL 不能同时开启")
	}
	vc := setting.VerifyCode
	if vc.Length < 4 || vc.Length > 10 {
		return fail("验证码长度需在 4-10 之间")
	}
	if vc.ExpireMinutes <= 0 {
		return fail("验证码过期时间必须大于 0")
	}
	if vc.SendIntervalSeconds <= 0 {
		return fail("验证码发送间隔必须大于 0")
	}
	if vc.MaxAttempts <= 0 {
		return fail("验证码尝试次数必须大于 0")
	}

	if !setting.Enabled {
		return nil
	}
	if strings.TrimSpace(setting.Host) == "" {
		return fail("SMTP 主机不能为空")
	}
	from := strings.TrimSpace(setting.From)
	if from == "" {
		return fail("发件人邮箱不能为空")
	}
	if _, err := mail.ParseAddress(from); err != nil {
		return fail("发件人邮箱格式无效")
	}
	return nil
}

// SMTPSettingToConfig 将设置转换为运行时邮件配置
func SMTPSettingToConfig(setting SMTPSetting) config.EmailConfig {
	n := NormalizeSMTPSetting(setting)
	return config.EmailConfig{
		Enabled:  n.Enabled,
		Host:     n.Host,
		Port:     n.Port,
		Username: n.Username,
		Password: n.Password,
		From:     n.From,
		FromName: n.FromName,
		UseTLS:   n.UseTLS,
		UseSSL:   n.UseSSL,
		VerifyCode: config.VerifyCodeConfig{
			ExpireMinutes:       n.VerifyCode.ExpireMinutes,
			SendIntervalSeconds: n.VerifyCode.SendIntervalSeconds,
			MaxAttempts:         n.VerifyCode.MaxAttempts,
			Length:              n.VerifyCode.Length,
		},
	}
}

func smtpVerifyCodeMap(vc SMTPVerifyCodeSetting) map[string]interface{} {
	return map[string]interface{}{
		"expire_minutes":        vc.ExpireMinutes,
		"send_interval_seconds": vc.SendIntervalSeconds,
		"max_attempts":          vc.MaxAttempts,
		"length":                vc.Length,
	}
}

// SMTPSettingToMap 将设置序列化为 settings 表的 JSON 结构
func SMTPSettingToMap(setting SMTPSetting) map[string]interface{} {
	n := NormalizeSMTPSetting(setting)
	return map[string]interface{}{
		"enabled":     n.Enabled,
		"host":        n.Host,
		"port":        n.Port,
		"username":    n.Username,
		"password":    n.Password,
		"from":        n.From,
		"from_name":   n.FromName,
		"use_tls":     n.UseTLS,
		"use_ssl":     n.UseSSL,
		"verify_code": smtpVerifyCodeMap(n.VerifyCode),
	}
}

// MaskSMTPSettingForAdmin 返回后台展示用的脱敏视图，密码只暴露是否已设置
func MaskSMTPSettingForAdmin(setting SMTPSetting) models.JSON {
	n := NormalizeSMTPSetting(setting)
	return models.JSON{
		"enabled":      n.Enabled,
		"host":         n.Host,
		"port":         n.Port,
		"username":     n.Username,
		"password":     "",
		"has_password": n.Password != "",
		"from":         n.From,
		"from_name":    n.FromName,
		"use_tls":      n.UseTLS,
		"use_ssl":      n.UseSSL,
		"verify_code":  smtpVerifyCodeMap(n.VerifyCode),
	}
}

// GetSMTPSetting 读取 SMTP 设置，settings 表无记录时回退静态配置
func (s *SettingService) GetSMTPSetting(defaultCfg config.EmailConfig) (SMTPSetting, error) {
	fallback := SMTPDefaultSetting(defaultCfg)
	value, err := s.GetByKey(constants.SettingKeySMTPConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return NormalizeSMTPSetting(smtpSettingFromJSON(value, fallback)), nil
}

// PatchSMTPSetting 合并补丁后校验并落库，空密码表示保留原密码
func (s *SettingService) PatchSMTPSetting(defaultCfg config.EmailConfig, patch SMTPSettingPatch) (SMTPSetting, error) {
	next, err := s.GetSMTPSetting(defaultCfg)
	if err != nil {
		return SMTPSetting{}, err
	}

	patchBool(&next.Enabled, patch.Enabled)
	patchText(&next.Host, patch.Host)
	patchInt(&next.Port, patch.Port)
	patchText(&next.Username, patch.Username)
	patchSecret(&next.Password, patch.Password)
	patchText(&next.From, patch.From)
	patchText(&next.FromName, patch.FromName)
	patchBool(&next.UseTLS, patch.UseTLS)
	patchBool(&next.UseSSL, patch.UseSSL)
	if vc := patch.VerifyCode; vc != nil {
		patchInt(&next.VerifyCode.ExpireMinutes, vc.ExpireMinutes)
		patchInt(&next.VerifyCode.SendIntervalSeconds, vc.SendIntervalSeconds)
		patchInt(&next.VerifyCode.MaxAttempts, vc.MaxAttempts)
		patchInt(&next.VerifyCode.Length, vc.Length)
	}

	normalized := NormalizeSMTPSetting(next)
	if err := ValidateSMTPSetting(normalized); err != nil {
		return SMTPSetting{}, err
	}
	if _, err := s.Update(constants.SettingKeySMTPConfig, SMTPSettingToMap(normalized)); err != nil {
		return SMTPSetting{}, err
	}
	return normalized, nil
}

func smtpSettingFromJSON(raw models.JSON, fallback SMTPSetting) SMTPSetting {
	next := fallback
	if raw == nil {
		return next
	}

	next.Enabled = readBool(raw, "enabled", next.Enabled)
	next.Host = readString(raw, "host", next.Host)
	next.Port = readInt(raw, "port", next.Port)
	next.Username = readString(raw, "username", next.Username)
	next.Password = readString(raw, "password", next.Password)
	next.From = readString(raw, "from", next.From)
	next.FromName = readString(raw, "from_name", next.FromName)
	next.UseTLS = readBool(raw, "use_tls", next.UseTLS)
	next.UseSSL = readBool(raw, "use_ssl", next.UseSSL)

	if verifyMap := toStringAnyMap(raw["verify_code"]); verifyMap != nil {
		vc := &next.VerifyCode
		vc.ExpireMinutes = readInt(verifyMap, "expire_minutes", vc.ExpireMinutes)
		vc.SendIntervalSeconds = readInt(verifyMap, "send_interval_seconds", vc.SendIntervalSeconds)
		vc.MaxAttempts = readInt(verifyMap, "max_attempts", vc.MaxAttempts)
		vc.Length = readInt(verifyMap, "length", vc.Length)
	}
	return next
}

// 补丁字段为 nil 时保持原值
func patchBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func patchInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func patchText(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// patchSecret 提交空值视为保留原密钥
func patchSecret(dst *string, src *string) {
	if src == nil {
		return
	}
	if secret := strings.TrimSpace(*src); secret != "" {
		*dst = secret
	}
}

func toStringAnyMap(value interface{}) map[string]interface{} {
	if m, ok := value.(map[string]interface{}); ok {
		return m
	}
	j, ok := value.(models.JSON)
	if !ok {
		return nil
	}
	result := make(map[string]interface{}, len(j))
	for key, item := range j {
		result[key] = item
	}
	return result
}

func readString(source map[string]interface{}, key, fallback string) string {
	if v, ok := source[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

func readBool(source map[string]interface{}, key string, fallback bool) bool {
	switch v := source[key].(type) {
	case bool:
		return v
	case string:
		word := strings.ToLower(strings.TrimSpace(v))
		if _, truthy := settingTruthyWords[word]; truthy {
			return true
		}
		switch word {
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

// readInt 容忍 settings JSON 反序列化出的各种数值形态
func readInt(source map[string]interface{}, key string, fallback int) int {
	switch v := source[key].(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float32:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		if f, err := v.Float64(); err == nil {
			return int(f)
		}
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return fallback
}
