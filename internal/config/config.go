package config

import (
	"fmt"
	"strings"

	"github.com/linkmall/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	UserJWT  JWTConfig      `mapstructure:"user_jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Upload   UploadConfig   `mapstructure:"upload"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Email    EmailConfig    `mapstructure:"email"`
	Captcha  CaptchaConfig  `mapstructure:"captcha"`
}

// ServerConfig HTTP 监听配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志输出与轮转配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 初始化参数
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 连接池参数
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置，driver 取 sqlite 或 postgres
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"`
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig 管理端与用户端共用的签发配置
type JWTConfig struct {
	SecretKey             string `mapstructure:"secret"`
	ExpireHours           int    `mapstructure:"expire_hours"`
	RememberMeExpireHours int    `mapstructure:"remember_me_expire_hours"`
}

// RedisConfig 缓存 Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig asynq 队列配置，与缓存 Redis 分库
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// WorkerConfig 后台定时任务周期
type WorkerConfig struct {
	CommissionConfirmIntervalMinutes int `mapstructure:"commission_confirm_interval_minutes"`
	TierRecalcIntervalHours          int `mapstructure:"tier_recalc_interval_hours"`
}

// EmailConfig SMTP 发信配置
type EmailConfig struct {
	Enabled    bool             `mapstructure:"enabled"`
	Host       string           `mapstructure:"host"`
	Port       int              `mapstructure:"port"`
	Username   string           `mapstructure:"username"`
	Password   string           `mapstructure:"password"`
	From       string           `mapstructure:"from"`
	FromName   string           `mapstructure:"from_name"`
	UseTLS     bool             `mapstructure:"use_tls"`
	UseSSL     bool             `mapstructure:"use_ssl"`
	VerifyCode VerifyCodeConfig `mapstructure:"verify_code"`
}

// VerifyCodeConfig 邮箱验证码策略
type VerifyCodeConfig struct {
	ExpireMinutes       int `mapstructure:"expire_minutes"`
	SendIntervalSeconds int `mapstructure:"send_interval_seconds"`
	MaxAttempts         int `mapstructure:"max_attempts"`
	Length              int `mapstructure:"length"`
}

// CaptchaConfig 人机验证配置
type CaptchaConfig struct {
	Provider  string                 `mapstructure:"provider"`
	Scenes    CaptchaSceneConfig     `mapstructure:"scenes"`
	Image     CaptchaImageConfig     `mapstructure:"image"`
	Turnstile CaptchaTurnstileConfig `mapstructure:"turnstile"`
}

// CaptchaSceneConfig 各场景开关
type CaptchaSceneConfig struct {
	Login            bool `mapstructure:"login"`
	RegisterSendCode bool `mapstructure:"register_send_code"`
	ResetSendCode    bool `mapstructure:"reset_send_code"`
	PartnerSignup    bool `mapstructure:"partner_signup"`
}

// CaptchaImageConfig 图片验证码参数
type CaptchaImageConfig struct {
	Length        int `mapstructure:"length"`
	Width         int `mapstructure:"width"`
	Height        int `mapstructure:"height"`
	NoiseCount    int `mapstructure:"noise_count"`
	ShowLine      int `mapstructure:"show_line"`
	ExpireSeconds int `mapstructure:"expire_seconds"`
	MaxStore      int `mapstructure:"max_store"`
}

// CaptchaTurnstileConfig Cloudflare Turnstile 参数
type CaptchaTurnstileConfig struct {
	SiteKey   string `mapstructure:"site_key"`
	SecretKey string `mapstructure:"secret_key"`
	VerifyURL string `mapstructure:"verify_url"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
}

// UploadConfig 图片上传限制
type UploadConfig struct {
	MaxSize           int64    `mapstructure:"max_size"`
	AllowedTypes      []string `mapstructure:"allowed_types"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	MaxWidth          int      `mapstructure:"max_width"`
	MaxHeight         int      `mapstructure:"max_height"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 登录安全配置
type SecurityConfig struct {
	LoginRateLimit LoginRateLimitConfig `mapstructure:"login_rate_limit"`
	PasswordPolicy PasswordPolicyConfig `mapstructure:"password_policy"`
}

// LoginRateLimitConfig 登录限流窗口
type LoginRateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

// PasswordPolicyConfig 密码强度要求
type PasswordPolicyConfig struct {
	MinLength      int  `mapstructure:"min_length"`
	RequireUpper   bool `mapstructure:"require_upper"`
	RequireLower   bool `mapstructure:"require_lower"`
	RequireNumber  bool `mapstructure:"require_number"`
	RequireSpecial bool `mapstructure:"require_special"`
}

// configDefaults 全量默认值目录，配置文件与环境变量都缺省时生效
var configDefaults = map[string]interface{}{
	"server.host": "0.0.0.0",
	"server.port": "8080",
	"server.mode": "debug",

	"log.dir":          "",
	"log.filename":     "linkmall.log",
	"log.max_size_mb":  100,
	"log.max_backups":  7,
	"log.max_age_days": 30,
	"log.compress":     true,

	"database.driver":                          "sqlite",
	"database.dsn":                             "./db/linkmall.db",
	"database.pool.max_open_conns":             1,
	"database.pool.max_idle_conns":             1,
	"database.pool.conn_max_lifetime_seconds":  0,
	"database.pool.conn_max_idle_time_seconds": 0,

	"jwt.secret":                        "change-me-in-production",
	"jwt.expire_hours":                  24,
	"user_jwt.secret":                   "user-change-me-in-production",
	"user_jwt.expire_hours":             24,
	"user_jwt.remember_me_expire_hours": 168,

	"redis.enabled":  true,
	"redis.host":     "127.0.0.1",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,
	"redis.prefix":   "lm",

	"queue.enabled":     true,
	"queue.host":        "127.0.0.1",
	"queue.port":        6379,
	"queue.password":    "",
	"queue.db":          1,
	"queue.concurrency": 10,
	"queue.queues":      map[string]int{"default": 10, "critical": 5},

	"worker.commission_confirm_interval_minutes": 1,
	"worker.tier_recalc_interval_hours":          24,

	"upload.max_size":           10485760,
	"upload.allowed_types":      []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	"upload.allowed_extensions": []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
	"upload.max_width":          4096,
	"upload.max_height":         4096,

	"cors.allowed_origins": []string{"*"},
	"cors.allowed_methods": []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	"cors.allowed_headers": []string{
		"Content-Type", "Content-Length", "Accept-Encoding",
		"Authorization", "Cache-Control", "X-Requested-With", "X-CSRF-Token",
	},
	"cors.allow_credentials": true,
	"cors.max_age":           600,

	"security.login_rate_limit.window_seconds": 300,
	"security.login_rate_limit.max_attempts":   5,
	"security.login_rate_limit.block_seconds":  900,
	"security.password_policy.min_length":      8,
	"security.password_policy.require_upper":   true,
	"security.password_policy.require_lower":   true,
	"security.password_policy.require_number":  true,
	"security.password_policy.require_special": false,

	"email.enabled":                           false,
	"email.host":                              "",
	"email.port":                              587,
	"email.username":                          "",
	"email.password":                          "",
	"email.from":                              "",
	"email.from_name":                         "",
	"email.use_tls":                           true,
	"email.use_ssl":                           false,
	"email.verify_code.expire_minutes":        10,
	"email.verify_code.send_interval_seconds": 60,
	"email.verify_code.max_attempts":          5,
	"email.verify_code.length":                6,

	"captcha.provider":                  "none",
	"captcha.scenes.login":              false,
	"captcha.scenes.register_send_code": false,
	"captcha.scenes.reset_send_code":    false,
	"captcha.scenes.partner_signup":     false,
	"captcha.image.length":              5,
	"captcha.image.width":               240,
	"captcha.image.height":              80,
	"captcha.image.noise_count":         2,
	"captcha.image.show_line":           2,
	"captcha.image.expire_seconds":      300,
	"captcha.image.max_store":           10240,
	"captcha.turnstile.site_key":        "",
	"captcha.turnstile.secret_key":      "",
	"captcha.turnstile.verify_url":      "https://challenges.cloudflare.com/turnstile/v0/siteverify",
	"captcha.turnstile.timeout_ms":      2000,
}

// Load 加载配置：默认值 < config.yml < 环境变量
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../") // 从 cmd/server 运行时
	viper.AddConfigPath("./etc")

	for key, value := range configDefaults {
		viper.SetDefault(key, value)
	}

	// server.port 之类的键映射到 SERVER_PORT 环境变量
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return &cfg
}
