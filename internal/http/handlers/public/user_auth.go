package public

import (
	"errors"
	"strings"
	"time"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/i18n"
	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/service"

	"github.com/gin-gonic/gin"
)

// 验证码校验类错误，注册、改密、换邮箱共用
var verifyCodeCheckErrorRules = []mappedHandlerError{
	{target: service.ErrVerifyCodeInvalid, code: response.CodeBadRequest, key: "error.verify_code_invalid"},
	{target: service.ErrVerifyCodeExpired, code: response.CodeBadRequest, key: "error.verify_code_expired"},
	{target: service.ErrVerifyCodeAttemptsExceeded, code: response.CodeBadRequest, key: "error.verify_code_attempts_exceeded"},
}

// 邮件投递类错误，所有发码接口共用
var emailDeliveryErrorRules = []mappedHandlerError{
	{target: service.ErrVerifyCodeTooFrequent, code: response.CodeTooManyRequests, key: "error.verify_code_too_frequent"},
	{target: service.ErrEmailRecipientRejected, code: response.CodeBadRequest, key: "error.email_recipient_not_found"},
	{target: service.ErrEmailServiceDisabled, code: response.CodeInternal, key: "error.email_service_not_configured"},
	{target: service.ErrEmailServiceNotConfigured, code: response.CodeInternal, key: "error.email_service_not_configured"},
}

func joinErrorRules(groups ...[]mappedHandlerError) []mappedHandlerError {
	var merged []mappedHandlerError
	for _, g := range groups {
		merged = append(merged, g...)
	}
	return merged
}

var sendVerifyCodeErrorRules = joinErrorRules(
	[]mappedHandlerError{
		{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.email_invalid"},
		{target: service.ErrInvalidVerifyPurpose, code: response.CodeBadRequest, key: "error.verify_purpose_invalid"},
		{target: service.ErrEmailExists, code: response.CodeBadRequest, key: "error.email_exists"},
		{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	},
	emailDeliveryErrorRules,
)

var registerErrorRules = joinErrorRules(
	[]mappedHandlerError{
		{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.email_invalid"},
		{target: service.ErrEmailExists, code: response.CodeBadRequest, key: "error.email_exists"},
		{target: service.ErrAgreementRequired, code: response.CodeBadRequest, key: "error.agreement_required"},
	},
	verifyCodeCheckErrorRules,
)

var resetPasswordErrorRules = joinErrorRules(
	[]mappedHandlerError{
		{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.email_invalid"},
		{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	},
	verifyCodeCheckErrorRules,
)

var changeEmailBaseRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.email_invalid"},
	{target: service.ErrEmailChangeInvalid, code: response.CodeBadRequest, key: "error.email_change_invalid"},
	{target: service.ErrEmailChangeExists, code: response.CodeBadRequest, key: "error.email_change_exists"},
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
}

// verifyCaptchaScene 校验人机验证场景，失败时已回写响应
func (h *Handler) verifyCaptchaScene(c *gin.Context, scene string, payload CaptchaPayloadRequest) bool {
	if scene == "" || h.CaptchaService == nil {
		return true
	}
	err := h.CaptchaService.Verify(scene, payload.toServicePayload(), c.ClientIP())
	if err == nil {
		return true
	}
	switch {
	case errors.Is(err, service.ErrCaptchaRequired):
		respondError(c, response.CodeBadRequest, "error.captcha_required", nil)
	case errors.Is(err, service.ErrCaptchaInvalid):
		respondError(c, response.CodeBadRequest, "error.captcha_invalid", nil)
	case errors.Is(err, service.ErrCaptchaConfigInvalid):
		respondError(c, response.CodeInternal, "error.captcha_config_invalid", err)
	default:
		respondError(c, response.CodeInternal, "error.captcha_verify_failed", err)
	}
	return false
}

// UserSendVerifyCodeRequest 发送验证码请求
type UserSendVerifyCodeRequest struct {
	Email          string                `json:"email" binding:"required"`
	Purpose        string                `json:"purpose" binding:"required"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// SendUserVerifyCode 发送用户邮箱验证码
func (h *Handler) SendUserVerifyCode(c *gin.Context) {
	var req UserSendVerifyCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	scene := ""
	switch strings.ToLower(strings.TrimSpace(req.Purpose)) {
	case constants.VerifyPurposeRegister:
		scene = constants.CaptchaSceneRegisterSendCode
	case constants.VerifyPurposeReset:
		scene = constants.CaptchaSceneResetSendCode
	}
	if !h.verifyCaptchaScene(c, scene, req.CaptchaPayload) {
		return
	}

	locale := i18n.ResolveLocale(c)
	if err := h.UserAuthService.SendVerifyCode(req.Email, req.Purpose, locale); err != nil {
		respondWithMappedError(c, err, sendVerifyCodeErrorRules, response.CodeInternal, "error.send_verify_code_failed")
		return
	}
	response.Success(c, gin.H{"sent": true})
}

// UserRegisterRequest 注册请求
type UserRegisterRequest struct {
	Email             string `json:"email" binding:"required"`
	Password          string `json:"password" binding:"required"`
	Code              string `json:"code" binding:"required"`
	AgreementAccepted bool   `json:"agreement_accepted"`
}

// UserRegister 用户注册
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Register(req.Email, req.Password, req.Code, req.AgreementAccepted)
	if err != nil {
		if errors.Is(err, service.ErrPasswordTooWeak) {
			respondPasswordPolicyError(c, err)
			return
		}
		respondWithMappedError(c, err, registerErrorRules, response.CodeInternal, "error.register_failed")
		return
	}
	response.Success(c, sessionResponse(user, token, expiresAt))
}

// UserLoginRequest 登录请求
type UserLoginRequest struct {
	Email          string                `json:"email" binding:"required"`
	Password       string                `json:"password" binding:"required"`
	RememberMe     bool                  `json:"remember_me"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// loginFailure 登录失败时的日志原因与响应三元组
type loginFailure struct {
	reason string
	code   int
	key    string
}

func captchaLoginFailure(err error) loginFailure {
	switch {
	case errors.Is(err, service.ErrCaptchaRequired):
		return loginFailure{constants.LoginLogFailReasonCaptchaRequired, response.CodeBadRequest, "error.captcha_required"}
	case errors.Is(err, service.ErrCaptchaInvalid):
		return loginFailure{constants.LoginLogFailReasonCaptchaInvalid, response.CodeBadRequest, "error.captcha_invalid"}
	case errors.Is(err, service.ErrCaptchaConfigInvalid):
		return loginFailure{constants.LoginLogFailReasonCaptchaConfigInvalid, response.CodeInternal, "error.captcha_config_invalid"}
	default:
		return loginFailure{constants.LoginLogFailReasonCaptchaVerifyFailed, response.CodeInternal, "error.captcha_verify_failed"}
	}
}

func credentialLoginFailure(err error) loginFailure {
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		return loginFailure{constants.LoginLogFailReasonInvalidEmail, response.CodeBadRequest, "error.email_invalid"}
	case errors.Is(err, service.ErrInvalidCredentials):
		return loginFailure{constants.LoginLogFailReasonInvalidCredentials, response.CodeUnauthorized, "error.login_invalid"}
	case errors.Is(err, service.ErrEmailNotVerified):
		return loginFailure{constants.LoginLogFailReasonEmailNotVerified, response.CodeUnauthorized, "error.email_not_verified"}
	case errors.Is(err, service.ErrUserDisabled):
		return loginFailure{constants.LoginLogFailReasonUserDisabled, response.CodeUnauthorized, "error.user_disabled"}
	default:
		return loginFailure{constants.LoginLogFailReasonInternalError, response.CodeInternal, "error.login_failed"}
	}
}

func (h *Handler) failUserLogin(c *gin.Context, email string, f loginFailure, err error) {
	h.recordUserLogin(c, email, 0, constants.LoginLogStatusFailed, f.reason, constants.LoginLogSourceWeb)
	if f.code == response.CodeInternal {
		respondError(c, f.code, f.key, err)
		return
	}
	respondError(c, f.code, f.key, nil)
}

// UserLogin 用户登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.failUserLogin(c, req.Email, loginFailure{constants.LoginLogFailReasonBadRequest, response.CodeBadRequest, "error.bad_request"}, err)
		return
	}

	if h.CaptchaService != nil {
		if err := h.CaptchaService.Verify(constants.CaptchaSceneLogin, req.CaptchaPayload.toServicePayload(), c.ClientIP()); err != nil {
			h.failUserLogin(c, req.Email, captchaLoginFailure(err), err)
			return
		}
	}

	user, token, expiresAt, err := h.UserAuthService.LoginWithRememberMe(req.Email, req.Password, req.RememberMe)
	if err != nil {
		h.failUserLogin(c, req.Email, credentialLoginFailure(err), err)
		return
	}

	h.recordUserLogin(c, user.Email, user.ID, constants.LoginLogStatusSuccess, "", constants.LoginLogSourceWeb)
	h.associateLoginReferral(c, user.ID)
	response.Success(c, sessionResponse(user, token, expiresAt))
}

// associateLoginReferral 登录后把归因 Cookie 里的推荐码关联到用户，尽力而为
func (h *Handler) associateLoginReferral(c *gin.Context, userID uint) {
	if h == nil || h.PartnerService == nil {
		return
	}
	code, err := c.Cookie(constants.ReferralCookieName)
	if err != nil {
		return
	}
	h.PartnerService.AssociateLoginReferral(userID, strings.TrimSpace(code))
}

func (h *Handler) recordUserLogin(c *gin.Context, email string, userID uint, status, failReason, source string) {
	if h == nil || h.UserLoginLogService == nil {
		return
	}
	requestID := ""
	if c != nil {
		if rid, ok := c.Get("request_id"); ok {
			if value, ok := rid.(string); ok {
				requestID = strings.TrimSpace(value)
			}
		}
	}
	_ = h.UserLoginLogService.Record(service.RecordUserLoginInput{
		UserID:      userID,
		Email:       email,
		Status:      status,
		FailReason:  failReason,
		ClientIP:    c.ClientIP(),
		UserAgent:   c.GetHeader("User-Agent"),
		LoginSource: source,
		RequestID:   requestID,
	})
}

// UserResetPasswordRequest 重置密码请求
type UserResetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UserForgotPassword 验证码重置密码
func (h *Handler) UserForgotPassword(c *gin.Context) {
	var req UserResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.UserAuthService.ResetPassword(req.Email, req.Code, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrPasswordTooWeak) {
			respondPasswordPolicyError(c, err)
			return
		}
		respondWithMappedError(c, err, resetPasswordErrorRules, response.CodeInternal, "error.reset_failed")
		return
	}
	response.Success(c, gin.H{"reset": true})
}

// GetCurrentUser 获取当前用户信息
func (h *Handler) GetCurrentUser(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	user, err := h.UserAuthService.GetUserByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		return
	}
	response.Success(c, userProfileResponse(user))
}

func sessionResponse(user *models.User, token string, expiresAt time.Time) gin.H {
	return gin.H{
		"user":       userSummaryResponse(user),
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	}
}

func userSummaryResponse(user *models.User) gin.H {
	return gin.H{
		"id":                user.ID,
		"email":             user.Email,
		"nickname":          user.DisplayName,
		"email_verified_at": user.EmailVerifiedAt,
	}
}

func userProfileResponse(user *models.User) gin.H {
	return gin.H{
		"id":                user.ID,
		"email":             user.Email,
		"nickname":          user.DisplayName,
		"email_verified_at": user.EmailVerifiedAt,
		"locale":            user.Locale,
	}
}

func respondPasswordPolicyError(c *gin.Context, err error) {
	locale := i18n.ResolveLocale(c)
	if perr, ok := err.(interface {
		Key() string
		Args() []interface{}
	}); ok {
		respondErrorWithMsg(c, response.CodeBadRequest, i18n.Sprintf(locale, perr.Key(), perr.Args()...), nil)
		return
	}
	respondError(c, response.CodeBadRequest, "error.password_weak", nil)
}

// UserProfileUpdateRequest 更新资料请求
type UserProfileUpdateRequest struct {
	Nickname *string `json:"nickname"`
	Locale   *string `json:"locale"`
}

// UpdateUserProfile 更新用户资料
func (h *Handler) UpdateUserProfile(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req UserProfileUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.UserAuthService.UpdateProfile(id, req.Nickname, req.Locale)
	if err != nil {
		respondWithMappedError(c, err, []mappedHandlerError{
			{target: service.ErrProfileEmpty, code: response.CodeBadRequest, key: "error.profile_empty"},
			{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
		}, response.CodeInternal, "error.user_update_failed")
		return
	}
	response.Success(c, userProfileResponse(user))
}

// ChangeEmailSendCodeRequest 更换邮箱验证码请求
type ChangeEmailSendCodeRequest struct {
	Kind     string `json:"kind" binding:"required"`
	NewEmail string `json:"new_email"`
}

// SendChangeEmailCode 发送更换邮箱验证码
func (h *Handler) SendChangeEmailCode(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req ChangeEmailSendCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	locale := i18n.ResolveLocale(c)
	if err := h.UserAuthService.SendChangeEmailCode(id, req.Kind, req.NewEmail, locale); err != nil {
		respondWithMappedError(c, err,
			joinErrorRules(changeEmailBaseRules, emailDeliveryErrorRules),
			response.CodeInternal, "error.send_verify_code_failed")
		return
	}
	response.Success(c, gin.H{"sent": true})
}

// ChangeEmailRequest 更换邮箱请求
type ChangeEmailRequest struct {
	NewEmail string `json:"new_email" binding:"required"`
	OldCode  string `json:"old_code"`
	NewCode  string `json:"new_code" binding:"required"`
}

// ChangeEmail 更换绑定邮箱
func (h *Handler) ChangeEmail(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req ChangeEmailRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.UserAuthService.ChangeEmail(id, req.NewEmail, req.OldCode, req.NewCode)
	if err != nil {
		respondWithMappedError(c, err,
			joinErrorRules(changeEmailBaseRules, verifyCodeCheckErrorRules),
			response.CodeInternal, "error.email_change_failed")
		return
	}
	response.Success(c, userProfileResponse(user))
}

// ChangeUserPasswordRequest 用户改密请求
type ChangeUserPasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangeUserPassword 登录态修改密码
func (h *Handler) ChangeUserPassword(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req ChangeUserPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.UserAuthService.ChangePassword(id, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrPasswordTooWeak) {
			respondPasswordPolicyError(c, err)
			return
		}
		respondWithMappedError(c, err, []mappedHandlerError{
			{target: service.ErrInvalidPassword, code: response.CodeBadRequest, key: "error.password_old_invalid"},
			{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
		}, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, gin.H{"updated": true})
}
