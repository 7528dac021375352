package service

import (
	"context"
	"crypto/rand"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/linkmall/internal/cache"
	"github.com/linkmall/internal/config"
	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserAuthService 买家侧注册、登录与账号安全
type UserAuthService struct {
	cfg          *config.Config
	userRepo     repository.UserRepository
	codeRepo     repository.EmailVerifyCodeRepository
	emailService *EmailService
}

func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository, codeRepo repository.EmailVerifyCodeRepository, emailService *EmailService) *UserAuthService {
	return &UserAuthService{
		cfg:          cfg,
		userRepo:     userRepo,
		codeRepo:     codeRepo,
		emailService: emailService,
	}
}


// failSession 会话型接口的统一失败返回
func failSession(err error) (*models.User, string, time.Time, error) {
	return failSession(err)
}

func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(hash), err
}

func passwordMatches(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// UserJWTClaims 用户会话载荷，TokenVersion 用于改密后整体失效
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// codePolicy 把验证码相关配置收敛成一份带默认值的策略
type codePolicy struct {
	length      int
	expireIn    time.Duration
	resendEvery time.Duration
	maxAttempts int
}

func resolveCodePolicy(cfg config.VerifyCodeConfig) codePolicy {
	p := codePolicy{
		length:      cfg.Length,
		expireIn:    time.Duration(cfg.ExpireMinutes) * time.Minute,
		resendEvery: time.Duration(cfg.SendIntervalSeconds) * time.Second,
		maxAttempts: cfg.MaxAttempts,
	}
	if p.length < 4 || p.length > 10 {
		p.length = 6
	}
	if p.expireIn <= 0 {
		p.expireIn = 10 * time.Minute
	}
	if p.resendEvery <= 0 {
		p.resendEvery = time.Minute
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = 5
	}
	return p
}

func sessionExpireHours(cfg config.JWTConfig, rememberMe bool) int {
	hours := cfg.ExpireHours
	if rememberMe && cfg.RememberMeExpireHours > 0 {
		hours = cfg.RememberMeExpireHours
	}
	if hours <= 0 {
		hours = 24
	}
	return hours
}

// GenerateUserJWT 签发用户会话 Token，expireHours<=0 时取配置值
func (s *UserAuthService) GenerateUserJWT(user *models.User, expireHours int) (string, time.Time, error) {
	if expireHours <= 0 {
		expireHours = sessionExpireHours(s.cfg.UserJWT, false)
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(expireHours) * time.Hour)
	claims := UserJWTClaims{
		UserID:       user.ID,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseUserJWT 校验签名算法并还原会话载荷
func (s *UserAuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.UserJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("无效的 token")
	}
	return claims, nil
}

// SendVerifyCode 发送邮箱验证码，注册场景要求邮箱未占用，找回密码要求账号存在
func (s *UserAuthService) SendVerifyCode(email, purpose, locale string) error {
	if s.emailService == nil {
		return ErrEmailServiceNotConfigured
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	purpose = strings.ToLower(strings.TrimSpace(purpose))
	if !isVerifyPurposeSupported(purpose) {
		return ErrInvalidVerifyPurpose
	}

	switch purpose {
	case constants.VerifyPurposeRegister:
		exist, err := s.userRepo.GetByEmail(normalized)
		if err != nil {
			return err
		}
		if exist != nil {
			return ErrEmailExists
		}
	case constants.VerifyPurposeReset:
		user, err := s.userRepo.GetByEmail(normalized)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrNotFound
		}
		if strings.TrimSpace(user.Locale) != "" {
			locale = user.Locale
		}
	}

	return s.sendVerifyCode(normalized, purpose, locale)
}

// Register 邮箱验证码注册，成功即登录
func (s *UserAuthService) Register(email, password, code string, agreementAccepted bool) (*models.User, string, time.Time, error) {
	if !agreementAccepted {
		return failSession(ErrAgreementRequired)
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return failSession(err)
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, password); err != nil {
		return failSession(err)
	}

	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return failSession(err)
	}
	if exist != nil {
		return failSession(ErrEmailExists)
	}

	if _, err := s.verifyCode(normalized, constants.VerifyPurposeRegister, code); err != nil {
		return failSession(err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return failSession(err)
	}

	now := time.Now()
	user := &models.User{
		Email:           normalized,
		PasswordHash:    hash,
		DisplayName:     displayNameFromEmail(normalized),
		Status:          constants.UserStatusActive,
		EmailVerifiedAt: &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.userRepo.Create(user); err != nil {
		return failSession(err)
	}

	token, expiresAt, err := s.openSession(user, 0)
	if err != nil {
		return failSession(err)
	}
	return user, token, expiresAt, nil
}

// Login 用户登录
func (s *UserAuthService) Login(email, password string) (*models.User, string, time.Time, error) {
	return s.LoginWithRememberMe(email, password, false)
}

// LoginWithRememberMe 用户登录，rememberMe 时采用更长的会话时长
func (s *UserAuthService) LoginWithRememberMe(email, password string, rememberMe bool) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return failSession(err)
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return failSession(err)
	}
	if user == nil {
		return failSession(ErrInvalidCredentials)
	}
	if strings.ToLower(user.Status) != constants.UserStatusActive {
		return failSession(ErrUserDisabled)
	}
	if user.EmailVerifiedAt == nil {
		return failSession(ErrEmailNotVerified)
	}
	if !passwordMatches(user.PasswordHash, password) {
		return failSession(ErrInvalidCredentials)
	}

	token, expiresAt, err := s.openSession(user, sessionExpireHours(s.cfg.UserJWT, rememberMe))
	if err != nil {
		return failSession(err)
	}
	return user, token, expiresAt, nil
}

// openSession 签发 Token 并记录登录时间，同步鉴权缓存
func (s *UserAuthService) openSession(user *models.User, expireHours int) (string, time.Time, error) {
	token, expiresAt, err := s.GenerateUserJWT(user, expireHours)
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return "", time.Time{}, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return token, expiresAt, nil
}

// rotatePassword 落库新密码并作废所有已签发会话
func (s *UserAuthService) rotatePassword(user *models.User, newPassword string) error {
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	now := time.Now()
	user.PasswordHash = hash
	user.UpdatedAt = now
	user.TokenVersion++
	user.TokenInvalidBefore = &now
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return nil
}

// ResetPassword 凭邮箱验证码重置密码
func (s *UserAuthService) ResetPassword(email, code, newPassword string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if _, err := s.verifyCode(normalized, constants.VerifyPurposeReset, code); err != nil {
		return err
	}
	return s.rotatePassword(user, newPassword)
}

// ChangePassword 登录态下校验旧密码后换新
func (s *UserAuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	if userID == 0 {
		return ErrNotFound
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if !passwordMatches(user.PasswordHash, oldPassword) {
		return ErrInvalidPassword
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}
	return s.rotatePassword(user, newPassword)
}

// UpdateProfile 更新昵称与语言偏好，空白输入视为不修改
func (s *UserAuthService) UpdateProfile(userID uint, nickname, locale *string) (*models.User, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	changed := false
	if nickname != nil {
		if v := strings.TrimSpace(*nickname); v != "" {
			user.DisplayName = v
			changed = true
		}
	}
	if locale != nil {
		if v := strings.TrimSpace(*locale); v != "" {
			user.Locale = v
			changed = true
		}
	}
	if !changed {
		return nil, ErrProfileEmpty
	}

	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SendChangeEmailCode 换绑邮箱验证码，kind 取 old 或 new
func (s *UserAuthService) SendChangeEmailCode(userID uint, kind, newEmail, locale string) error {
	if s.emailService == nil {
		return ErrEmailServiceNotConfigured
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if strings.TrimSpace(user.Locale) != "" {
		locale = user.Locale
	}

	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "old":
		return s.sendVerifyCode(user.Email, constants.VerifyPurposeChangeEmailOld, locale)
	case "new":
		normalized, err := s.checkChangeEmailTarget(user, newEmail)
		if err != nil {
			return err
		}
		return s.sendVerifyCode(normalized, constants.VerifyPurposeChangeEmailNew, locale)
	default:
		return ErrEmailChangeInvalid
	}
}

// ChangeEmail 换绑邮箱，旧邮箱和新邮箱各验一枚验证码
func (s *UserAuthService) ChangeEmail(userID uint, newEmail, oldCode, newCode string) (*models.User, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	normalized, err := s.checkChangeEmailTarget(user, newEmail)
	if err != nil {
		return nil, err
	}
	if _, err := s.verifyCode(user.Email, constants.VerifyPurposeChangeEmailOld, oldCode); err != nil {
		return nil, err
	}
	if _, err := s.verifyCode(normalized, constants.VerifyPurposeChangeEmailNew, newCode); err != nil {
		return nil, err
	}

	now := time.Now()
	user.Email = normalized
	user.EmailVerifiedAt = &now
	user.UpdatedAt = now
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// checkChangeEmailTarget 新邮箱不得与当前邮箱相同，也不得已被注册
func (s *UserAuthService) checkChangeEmailTarget(user *models.User, newEmail string) (string, error) {
	normalized, err := normalizeEmail(newEmail)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(normalized, user.Email) {
		return "", ErrEmailChangeInvalid
	}
	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return "", err
	}
	if exist != nil {
		return "", ErrEmailChangeExists
	}
	return normalized, nil
}

// GetUserByID 获取用户信息
func (s *UserAuthService) GetUserByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	return s.userRepo.GetByID(id)
}

func (s *UserAuthService) verifyCode(email, purpose, code string) (*models.EmailVerifyCode, error) {
	record, err := s.codeRepo.GetLatest(email, purpose)
	if err != nil {
		return nil, err
	}
	if record == nil || record.VerifiedAt != nil {
		return nil, ErrVerifyCodeInvalid
	}

	now := time.Now()
	if record.ExpiresAt.Before(now) {
		return nil, ErrVerifyCodeExpired
	}

	policy := resolveCodePolicy(s.cfg.Email.VerifyCode)
	if record.AttemptCount >= policy.maxAttempts {
		return nil, ErrVerifyCodeAttemptsExceeded
	}

	if strings.TrimSpace(record.Code) != strings.TrimSpace(code) {
		_ = s.codeRepo.IncrementAttempt(record.ID)
		return nil, ErrVerifyCodeInvalid
	}

	if err := s.codeRepo.MarkVerified(record.ID, now); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *UserAuthService) sendVerifyCode(email, purpose, locale string) error {
	policy := resolveCodePolicy(s.cfg.Email.VerifyCode)

	latest, err := s.codeRepo.GetLatest(email, purpose)
	if err != nil {
		return err
	}
	now := time.Now()
	if latest != nil && !latest.SentAt.IsZero() && now.Sub(latest.SentAt) < policy.resendEvery {
		return ErrVerifyCodeTooFrequent
	}

	code, err := randomDigits(policy.length)
	if err != nil {
		return err
	}

	record := &models.EmailVerifyCode{
		Email:     email,
		Purpose:   strings.ToLower(purpose),
		Code:      code,
		ExpiresAt: now.Add(policy.expireIn),
		SentAt:    now,
		CreatedAt: now,
	}
	if err := s.emailService.SendVerifyCode(email, code, purpose, locale); err != nil {
		return err
	}
	return s.codeRepo.Create(record)
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// NormalizeEmail 统一邮箱格式
func NormalizeEmail(email string) (string, error) {
	return normalizeEmail(email)
}

func isVerifyPurposeSupported(purpose string) bool {
	switch purpose {
	case constants.VerifyPurposeRegister, constants.VerifyPurposeReset, constants.VerifyPurposeChangeEmailOld, constants.VerifyPurposeChangeEmailNew:
		return true
	}
	return false
}

// displayNameFromEmail 默认昵称取邮箱 @ 前的部分
func displayNameFromEmail(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		if local := strings.TrimSpace(email[:at]); local != "" {
			return local
		}
	}
	return email
}

func randomDigits(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = '0' + b%10
	}
	return string(buf), nil
}
