package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/linkmall/internal/config"
	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"

	"github.com/mojocn/base64Captcha"
)

// CaptchaVerifyPayload 验证码校验请求载荷
type CaptchaVerifyPayload struct {
	CaptchaID      string `json:"captcha_id"`
	CaptchaCode    string `json:"captcha_code"`
	TurnstileToken string `json:"turnstile_token"`
}

// CaptchaImageChallenge 图片验证码挑战
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

type turnstileResult struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

type imageStoreKey struct {
	maxStore  int
	expireSec int
}

// CaptchaService 按场景开关统一封装图片验证码与 Turnstile
// 配置来自 settings 表，带 30 秒本地缓存
type CaptchaService struct {
	settingService *SettingService
	defaultConfig  config.CaptchaConfig

	httpClient *http.Client
	cacheTTL   time.Duration

	mu            sync.RWMutex
	cachedSetting CaptchaSetting
	cachedAt      time.Time

	imageStore    base64Captcha.Store
	imageStoreCfg imageStoreKey
}

// NewCaptchaService 创建验证码服务
func NewCaptchaService(settingService *SettingService, defaultConfig config.CaptchaConfig) *CaptchaService {
	return &CaptchaService{
		settingService: settingService,
		defaultConfig:  defaultConfig,
		httpClient:     &http.Client{Timeout: 2 * time.Second},
		cacheTTL:       30 * time.Second,
	}
}

// SetDefaultConfig 更新默认配置，后台保存后调用
func (s *CaptchaService) SetDefaultConfig(defaultConfig config.CaptchaConfig) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultConfig = defaultConfig
	s.cachedAt = time.Time{}
}

// InvalidateCache 失效本地缓存配置
func (s *CaptchaService) InvalidateCache() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cachedAt = time.Time{}
}

// GetPublicSetting 获取公开可下发配置
func (s *CaptchaService) GetPublicSetting() (models.JSON, error) {
	setting, err := s.getSetting()
	if err != nil {
		return nil, err
	}
	return PublicCaptchaSetting(setting), nil
}

// GenerateImageChallenge 生成一张图片验证码，仅图片提供方下可用
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	setting, err := s.getSetting()
	if err != nil {
		return nil, err
	}
	if setting.Provider != constants.CaptchaProviderImage {
		return nil, ErrCaptchaConfigInvalid
	}

	driver := base64Captcha.NewDriverString(
		setting.Image.Height,
		setting.Image.Width,
		setting.Image.NoiseCount,
		setting.Image.ShowLine,
		setting.Image.Length,
		"0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ",
		nil,
		base64Captcha.DefaultEmbeddedFonts,
		nil,
	)
	id, b64s, _, err := base64Captcha.NewCaptcha(driver, s.imageStoreFor(setting)).Generate()
	if err != nil {
		return nil, err
	}
	return &CaptchaImageChallenge{
		CaptchaID:   strings.TrimSpace(id),
		ImageBase64: strings.TrimSpace(b64s),
	}, nil
}

// Verify 按场景校验验证码，场景未开启时直接放行
func (s *CaptchaService) Verify(scene string, payload CaptchaVerifyPayload, clientIP string) error {
	setting, err := s.getSetting()
	if err != nil {
		return err
	}
	if !setting.IsSceneEnabled(scene) {
		return nil
	}

	switch setting.Provider {
	case constants.CaptchaProviderImage:
		return s.verifyImage(setting, payload)
	case constants.CaptchaProviderTurnstile:
		token := strings.TrimSpace(payload.TurnstileToken)
		if token == "" {
			return ErrCaptchaRequired
		}
		return s.verifyTurnstile(setting.Turnstile, token, strings.TrimSpace(clientIP))
	}
	// 场景已开启但提供方是 none，属于配置错误
	return ErrCaptchaConfigInvalid
}

func (s *CaptchaService) verifyImage(setting CaptchaSetting, payload CaptchaVerifyPayload) error {
	id := strings.TrimSpace(payload.CaptchaID)
	code := strings.TrimSpace(payload.CaptchaCode)
	if id == "" || code == "" {
		return ErrCaptchaRequired
	}
	if !s.imageStoreFor(setting).Verify(id, code, true) {
		return ErrCaptchaInvalid
	}
	return nil
}

// turnstileClient 按配置超时取客户端，超时不同则另建一个
func (s *CaptchaService) turnstileClient(timeoutMS int) *http.Client {
	if timeoutMS < 500 || timeoutMS > 10000 {
		timeoutMS = 2000
	}
	timeout := time.Duration(timeoutMS) * time.Millisecond
	if client := s.httpClient; client != nil && client.Timeout == timeout {
		return client
	}
	return &http.Client{Timeout: timeout}
}

func wrapCaptchaVerify(err error) error {
	return fmt.Errorf("%w: %v", ErrCaptchaVerifyFailed, err)
}

func (s *CaptchaService) verifyTurnstile(cfg CaptchaTurnstileSetting, token, clientIP string) error {
	secret := strings.TrimSpace(cfg.SecretKey)
	verifyURL := strings.TrimSpace(cfg.VerifyURL)
	if secret == "" || verifyURL == "" {
		return ErrCaptchaConfigInvalid
	}

	form := url.Values{}
	form.Set("secret", secret)
	form.Set("response", token)
	if clientIP != "" {
		form.Set("remoteip", clientIP)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return wrapCaptchaVerify(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.turnstileClient(cfg.TimeoutMS).Do(req)
	if err != nil {
		return wrapCaptchaVerify(err)
	}
	defer resp.Body.Close()

	var result turnstileResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return wrapCaptchaVerify(err)
	}
	if !result.Success {
		return ErrCaptchaInvalid
	}
	return nil
}

// imageStoreFor 复用内存存储，图片参数变化时重建
func (s *CaptchaService) imageStoreFor(setting CaptchaSetting) base64Captcha.Store {
	key := imageStoreKey{maxStore: setting.Image.MaxStore, expireSec: setting.Image.ExpireSeconds}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.imageStore == nil || s.imageStoreCfg != key {
		s.imageStore = base64Captcha.NewMemoryStore(key.maxStore, time.Duration(key.expireSec)*time.Second)
		s.imageStoreCfg = key
	}
	return s.imageStore
}

func (s *CaptchaService) getSetting() (CaptchaSetting, error) {
	if s == nil {
		return CaptchaDefaultSetting(config.CaptchaConfig{}), nil
	}

	now := time.Now()
	s.mu.RLock()
	if !s.cachedAt.IsZero() && now.Sub(s.cachedAt) <= s.cacheTTL {
		cached := s.cachedSetting
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	var setting CaptchaSetting
	if s.settingService == nil {
		setting = CaptchaDefaultSetting(s.defaultConfig)
	} else {
		loaded, err := s.settingService.GetCaptchaSetting(s.defaultConfig)
		if err != nil {
			return CaptchaSetting{}, err
		}
		setting = NormalizeCaptchaSetting(loaded)
	}

	s.mu.Lock()
	s.cachedSetting = setting
	s.cachedAt = now
	s.mu.Unlock()
	return setting, nil
}
