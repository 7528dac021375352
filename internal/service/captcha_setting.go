package service

import (
	"fmt"
	"strings"

	"github.com/linkmall/internal/config"
	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"
)

// CaptchaSceneSetting 各业务场景是否要求验证码
// login 同时覆盖前台用户登录与后台管理员登录
type CaptchaSceneSetting struct {
	Login            bool `json:"login"`
	RegisterSendCode bool `json:"register_send_code"`
	ResetSendCode    bool `json:"reset_send_code"`
	PartnerSignup    bool `json:"partner_signup"`
}

// CaptchaImageSetting 图片验证码参数
type CaptchaImageSetting struct {
	Length        int `json:"length"`
	Width         int `json:"width"`
	Height        int `json:"height"`
	NoiseCount    int `json:"noise_count"`
	ShowLine      int `json:"show_line"`
	ExpireSeconds int `json:"expire_seconds"`
	MaxStore      int `json:"max_store"`
}

// CaptchaTurnstileSetting Cloudflare Turnstile 参数
type CaptchaTurnstileSetting struct {
	SiteKey   string `json:"site_key"`
	SecretKey string `json:"secret_key"`
	VerifyURL string `json:"verify_url"`
	TimeoutMS int    `json:"timeout_ms"`
}

// CaptchaSetting 验证码配置，存储于 settings 表
type CaptchaSetting struct {
	Provider  string                  `json:"provider"`
	Scenes    CaptchaSceneSetting     `json:"scenes"`
	Image     CaptchaImageSetting     `json:"image"`
	Turnstile CaptchaTurnstileSetting `json:"turnstile"`
}

// CaptchaScenePatch 场景配置补丁
type CaptchaScenePatch struct {
	Login            *bool `json:"login"`
	RegisterSendCode *bool `json:"register_send_code"`
	ResetSendCode    *bool `json:"reset_send_code"`
	PartnerSignup    *bool `json:"partner_signup"`
}

// CaptchaImagePatch 图片配置补丁
type CaptchaImagePatch struct {
	Length        *int `json:"length"`
	Width         *int `json:"width"`
	Height        *int `json:"height"`
	NoiseCount    *int `json:"noise_count"`
	ShowLine      *int `json:"show_line"`
	ExpireSeconds *int `json:"expire_seconds"`
	MaxStore      *int `json:"max_store"`
}

// CaptchaTurnstilePatch Turnstile 配置补丁
type CaptchaTurnstilePatch struct {
	SiteKey   *string `json:"site_key"`
	SecretKey *string `json:"secret_key"`
	VerifyURL *string `json:"verify_url"`
	TimeoutMS *int    `json:"timeout_ms"`
}

// CaptchaSettingPatch 验证码配置补丁，nil 字段保持原值
type CaptchaSettingPatch struct {
	Provider  *string                `json:"provider"`
	Scenes    *CaptchaScenePatch     `json:"scenes"`
	Image     *CaptchaImagePatch     `json:"image"`
	Turnstile *CaptchaTurnstilePatch `json:"turnstile"`
}

// CaptchaDefaultSetting 以静态配置为底生成默认验证码设置
func CaptchaDefaultSetting(cfg config.CaptchaConfig) CaptchaSetting {
	return NormalizeCaptchaSetting(CaptchaSetting{
		Provider: cfg.Provider,
		Scenes: CaptchaSceneSetting{
			Login:            cfg.Scenes.Login,
			RegisterSendCode: cfg.Scenes.RegisterSendCode,
			ResetSendCode:    cfg.Scenes.ResetSendCode,
			PartnerSignup:    cfg.Scenes.PartnerSignup,
		},
		Image: CaptchaImageSetting{
			Length:        cfg.Image.Length,
			Width:         cfg.Image.Width,
			Height:        cfg.Image.Height,
			NoiseCount:    cfg.Image.NoiseCount,
			ShowLine:      cfg.Image.ShowLine,
			ExpireSeconds: cfg.Image.ExpireSeconds,
			MaxStore:      cfg.Image.MaxStore,
		},
		Turnstile: CaptchaTurnstileSetting{
			SiteKey:   cfg.Turnstile.SiteKey,
			SecretKey: cfg.Turnstile.SecretKey,
			VerifyURL: cfg.Turnstile.VerifyURL,
			TimeoutMS: cfg.Turnstile.TimeoutMS,
		},
	})
}

// NormalizeCaptchaSetting 归一化提供方并为越界参数补默认值
func NormalizeCaptchaSetting(setting CaptchaSetting) CaptchaSetting {
	switch provider := strings.ToLower(strings.TrimSpace(setting.Provider)); provider {
	case constants.CaptchaProviderImage, constants.CaptchaProviderTurnstile, constants.CaptchaProviderNone:
		setting.Provider = provider
	default:
		setting.Provider = constants.CaptchaProviderNone
	}

	img := &setting.Image
	if img.Length < 4 || img.Length > 8 {
		img.Length = 5
	}
	if img.Width < 100 {
		img.Width = 240
	}
	if img.Height < 40 {
		img.Height = 80
	}
	if img.NoiseCount < 0 {
		img.NoiseCount = 2
	}
	if img.ShowLine < 0 {
		img.ShowLine = 2
	}
	if img.ExpireSeconds < 30 || img.ExpireSeconds > 3600 {
		img.ExpireSeconds = 300
	}
	if img.MaxStore < 100 {
		img.MaxStore = 10240
	}

	ts := &setting.Turnstile
	ts.SiteKey = strings.TrimSpace(ts.SiteKey)
	ts.SecretKey = strings.TrimSpace(ts.SecretKey)
	ts.VerifyURL = strings.TrimSpace(ts.VerifyURL)
	if ts.VerifyURL == "" {
		ts.VerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
	}
	if ts.TimeoutMS <= 0 {
		ts.TimeoutMS = 2000
	}
	return setting
}

// ValidateCaptchaSetting 校验验证码配置
func ValidateCaptchaSetting(setting CaptchaSetting) error {
	fail := func(msg string) error {
		return fmt.Errorf("%w: %s", ErrCaptchaConfigInvalid, msg)
	}

	n := NormalizeCaptchaSetting(setting)
	switch n.Provider {
	case constants.CaptchaProviderNone, constants.CaptchaProviderImage, constants.CaptchaProviderTurnstile:
	default:
		return fail("验证码提供方无效")
	}
	if n.Provider == constants.CaptchaProviderNone && n.Scenes.anyEnabled() {
		return fail("已启用验证码场景时必须选择验证码提供方")
	}
	if n.Provider == constants.CaptchaProviderTurnstile {
		if n.Turnstile.SiteKey == "" {
			return fail("Turnstile Site Key 不能为空")
		}
		if n.Turnstile.SecretKey == "" {
			return fail("Turnstile Secret Key 不能为空")
		}
	}
	if n.Image.Length < 4 || n.Image.Length > 8 {
		return fail("图片验证码长度需在 4-8 之间")
	}
	if n.Image.Width < 100 || n.Image.Height < 40 {
		return fail("图片验证码宽高不合法")
	}
	if n.Image.ExpireSeconds < 30 || n.Image.ExpireSeconds > 3600 {
		return fail("图片验证码过期时间需在 30-3600 秒")
	}
	if n.Turnstile.TimeoutMS < 500 || n.Turnstile.TimeoutMS > 10000 {
		return fail("Turnstile 超时时间需在 500-10000ms")
	}
	return nil
}

// CaptchaSettingToConfig 将设置转换为运行时配置
func CaptchaSettingToConfig(setting CaptchaSetting) config.CaptchaConfig {
	n := NormalizeCaptchaSetting(setting)
	return config.CaptchaConfig{
		Provider: n.Provider,
		Scenes: config.CaptchaSceneConfig{
			Login:            n.Scenes.Login,
			RegisterSendCode: n.Scenes.RegisterSendCode,
			ResetSendCode:    n.Scenes.ResetSendCode,
			PartnerSignup:    n.Scenes.PartnerSignup,
		},
		Image: config.CaptchaImageConfig{
			Length:        n.Image.Length,
			Width:         n.Image.Width,
			Height:        n.Image.Height,
			NoiseCount:    n.Image.NoiseCount,
			ShowLine:      n.Image.ShowLine,
			ExpireSeconds: n.Image.ExpireSeconds,
			MaxStore:      n.Image.MaxStore,
		},
		Turnstile: config.CaptchaTurnstileConfig{
			SiteKey:   n.Turnstile.SiteKey,
			SecretKey: n.Turnstile.SecretKey,
			VerifyURL: n.Turnstile.VerifyURL,
			TimeoutMS: n.Turnstile.TimeoutMS,
		},
	}
}

func captchaSceneMap(s CaptchaSceneSetting) map[string]interface{} {
	return map[string]interface{}{
		"login":              s.Login,
		"register_send_code": s.RegisterSendCode,
		"reset_send_code":    s.ResetSendCode,
		"partner_signup":     s.PartnerSignup,
	}
}

func captchaImageMap(img CaptchaImageSetting) map[string]interface{} {
	return map[string]interface{}{
		"length":         img.Length,
		"width":          img.Width,
		"height":         img.Height,
		"noise_count":    img.NoiseCount,
		"show_line":      img.ShowLine,
		"expire_seconds": img.ExpireSeconds,
		"max_store":      img.MaxStore,
	}
}

// CaptchaSettingToMap 将设置序列化为 settings 表的 JSON 结构
func CaptchaSettingToMap(setting CaptchaSetting) map[string]interface{} {
	n := NormalizeCaptchaSetting(setting)
	return map[string]interface{}{
		"provider": n.Provider,
		"scenes":   captchaSceneMap(n.Scenes),
		"image":    captchaImageMap(n.Image),
		"turnstile": map[string]interface{}{
			"site_key":   n.Turnstile.SiteKey,
			"secret_key": n.Turnstile.SecretKey,
			"verify_url": n.Turnstile.VerifyURL,
			"timeout_ms": n.Turnstile.TimeoutMS,
		},
	}
}

// MaskCaptchaSettingForAdmin 后台展示视图，Secret Key 只暴露是否已设置
func MaskCaptchaSettingForAdmin(setting CaptchaSetting) models.JSON {
	n := NormalizeCaptchaSetting(setting)
	return models.JSON{
		"provider": n.Provider,
		"scenes":   captchaSceneMap(n.Scenes),
		"image":    captchaImageMap(n.Image),
		"turnstile": map[string]interface{}{
			"site_key":   n.Turnstile.SiteKey,
			"secret_key": "",
			"has_secret": n.Turnstile.SecretKey != "",
			"verify_url": n.Turnstile.VerifyURL,
			"timeout_ms": n.Turnstile.TimeoutMS,
		},
	}
}

// PublicCaptchaSetting 返回可下发前端的公开配置
func PublicCaptchaSetting(setting CaptchaSetting) models.JSON {
	n := NormalizeCaptchaSetting(setting)
	public := models.JSON{
		"provider": n.Provider,
		"scenes":   captchaSceneMap(n.Scenes),
	}
	if n.Provider == constants.CaptchaProviderTurnstile {
		public["turnstile"] = map[string]interface{}{
			"site_key": n.Turnstile.SiteKey,
		}
	}
	return public
}

func (s CaptchaSceneSetting) anyEnabled() bool {
	return s.Login || s.RegisterSendCode || s.ResetSendCode || s.PartnerSignup
}

// IsSceneEnabled 判断指定场景是否开启
func (s CaptchaSetting) IsSceneEnabled(scene string) bool {
	switch strings.ToLower(strings.TrimSpace(scene)) {
	case constants.CaptchaSceneLogin:
		return s.Scenes.Login
	case constants.CaptchaSceneRegisterSendCode:
		return s.Scenes.RegisterSendCode
	case constants.CaptchaSceneResetSendCode:
		return s.Scenes.ResetSendCode
	case constants.CaptchaScenePartnerSignup:
		return s.Scenes.PartnerSignup
	}
	return false
}

// GetCaptchaSetting 读取验证码设置，settings 表无记录时回退静态配置
func (s *SettingService) GetCaptchaSetting(defaultCfg config.CaptchaConfig) (CaptchaSetting, error) {
	fallback := CaptchaDefaultSetting(defaultCfg)
	value, err := s.GetByKey(constants.SettingKeyCaptchaConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return NormalizeCaptchaSetting(captchaSettingFromJSON(value, fallback)), nil
}

// PatchCaptchaSetting 合并补丁后校验并落库，空 Secret Key 表示保留原值
func (s *SettingService) PatchCaptchaSetting(defaultCfg config.CaptchaConfig, patch CaptchaSettingPatch) (CaptchaSetting, error) {
	next, err := s.GetCaptchaSetting(defaultCfg)
	if err != nil {
		return CaptchaSetting{}, err
	}

	if patch.Provider != nil {
		next.Provider = strings.ToLower(strings.TrimSpace(*patch.Provider))
	}
	if sc := patch.Scenes; sc != nil {
		patchBool(&next.Scenes.Login, sc.Login)
		patchBool(&next.Scenes.RegisterSendCode, sc.RegisterSendCode)
		patchBool(&next.Scenes.ResetSendCode, sc.ResetSendCode)
		patchBool(&next.Scenes.PartnerSignup, sc.PartnerSignup)
	}
	if img := patch.Image; img != nil {
		patchInt(&next.Image.Length, img.Length)
		patchInt(&next.Image.Width, img.Width)
		patchInt(&next.Image.Height, img.Height)
		patchInt(&next.Image.NoiseCount, img.NoiseCount)
		patchInt(&next.Image.ShowLine, img.ShowLine)
		patchInt(&next.Image.ExpireSeconds, img.ExpireSeconds)
		patchInt(&next.Image.MaxStore, img.MaxStore)
	}
	if ts := patch.Turnstile; ts != nil {
		patchText(&next.Turnstile.SiteKey, ts.SiteKey)
		patchSecret(&next.Turnstile.SecretKey, ts.SecretKey)
		patchText(&next.Turnstile.VerifyURL, ts.VerifyURL)
		patchInt(&next.Turnstile.TimeoutMS, ts.TimeoutMS)
	}

	normalized := NormalizeCaptchaSetting(next)
	if err := ValidateCaptchaSetting(normalized); err != nil {
		return CaptchaSetting{}, err
	}
	if _, err := s.Update(constants.SettingKeyCaptchaConfig, CaptchaSettingToMap(normalized)); err != nil {
		return CaptchaSetting{}, err
	}
	return normalized, nil
}

func captchaSettingFromJSON(raw models.JSON, fallback CaptchaSetting) CaptchaSetting {
	next := fallback
	if raw == nil {
		return next
	}

	next.Provider = readString(raw, "provider", next.Provider)

	if scenes := toStringAnyMap(raw["scenes"]); scenes != nil {
		next.Scenes.Login = readBool(scenes, "login", next.Scenes.Login)
		next.Scenes.RegisterSendCode = readBool(scenes, "register_send_code", next.Scenes.RegisterSendCode)
		next.Scenes.ResetSendCode = readBool(scenes, "reset_send_code", next.Scenes.ResetSendCode)
		next.Scenes.PartnerSignup = readBool(scenes, "partner_signup", next.Scenes.PartnerSignup)
	}
	if image := toStringAnyMap(raw["image"]); image != nil {
		img := &next.Image
		img.Length = readInt(image, "length", img.Length)
		img.Width = readInt(image, "width", img.Width)
		img.Height = readInt(image, "height", img.Height)
		img.NoiseCount = readInt(image, "noise_count", img.NoiseCount)
		img.ShowLine = readInt(image, "show_line", img.ShowLine)
		img.ExpireSeconds = readInt(image, "expire_seconds", img.ExpireSeconds)
		img.MaxStore = readInt(image, "max_store", img.MaxStore)
	}
	if turnstile := toStringAnyMap(raw["turnstile"]); turnstile != nil {
		ts := &next.Turnstile
		ts.SiteKey = readString(turnstile, "site_key", ts.SiteKey)
		ts.SecretKey = readString(turnstile, "secret_key", ts.SecretKey)
		ts.VerifyURL = readString(turnstile, "verify_url", ts.VerifyURL)
		ts.TimeoutMS = readInt(turnstile, "timeout_ms", ts.TimeoutMS)
	}
	return next
}
