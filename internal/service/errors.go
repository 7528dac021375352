package service

import "errors"

// 通用错误
var (
	ErrNotFound      = errors.New("resource not found")
	ErrForbidden     = errors.New("operation forbidden")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInternalError = errors.New("internal error")
)

// 认证相关错误
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserExists           = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserDisabled         = errors.New("user disabled")
	ErrTokenInvalid         = errors.New("token invalid")
	ErrPasswordTooWeak      = errors.New("password too weak")
	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")
	ErrCaptchaVerifyFailed  = errors.New("captcha verify failed")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrAgreementRequired    = errors.New("agreement not accepted")
	ErrEmailNotVerified     = errors.New("email not verified")
	ErrProfileEmpty         = errors.New("profile update empty")
)

// 邮箱与验证码相关错误
var (
	ErrInvalidEmail               = errors.New("invalid email")
	ErrEmailExists                = errors.New("email already exists")
	ErrEmailChangeInvalid         = errors.New("email change invalid")
	ErrEmailChangeExists          = errors.New("email change target exists")
	ErrEmailServiceDisabled       = errors.New("email service disabled")
	ErrEmailServiceNotConfigured  = errors.New("email service not configured")
	ErrEmailRecipientRejected     = errors.New("email recipient rejected")
	ErrSMTPConfigInvalid          = errors.New("smtp config invalid")
	ErrInvalidVerifyPurpose       = errors.New("invalid verify purpose")
	ErrVerifyCodeInvalid          = errors.New("verify code invalid")
	ErrVerifyCodeExpired          = errors.New("verify code expired")
	ErrVerifyCodeTooFrequent      = errors.New("verify code too frequent")
	ErrVerifyCodeAttemptsExceeded = errors.New("verify code attempts exceeded")
)

// 商品与购物车相关错误
var (
	ErrProductNotFound          = errors.New("product not found")
	ErrProductInactive          = errors.New("product inactive")
	ErrProductSlugExists        = errors.New("product slug already exists")
	ErrProductPriceInvalid      = errors.New("product price invalid")
	ErrProductCommissionInvalid = errors.New("product commission invalid")
	ErrProductStockInsufficient = errors.New("product stock insufficient")
	ErrCartEmpty                = errors.New("cart is empty")
	ErrCartItemInvalid          = errors.New("cart item invalid")
	ErrCategoryNotFound         = errors.New("category not found")
	ErrCategoryInUse            = errors.New("category in use")
	ErrSlugExists               = errors.New("slug already exists")
)

// 订单相关错误
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderInvalid       = errors.New("order invalid")
	ErrOrderItemInvalid   = errors.New("order item invalid")
	ErrAddressInvalid     = errors.New("address invalid")
	ErrOrderStateConflict = errors.New("order state conflict")
	ErrOrderCreateFailed  = errors.New("order create failed")
	ErrOrderFetchFailed   = errors.New("order fetch failed")
	ErrOrderUpdateFailed  = errors.New("order update failed")
)

// 合伙人与佣金相关错误
var (
	ErrPartnerNotFound         = errors.New("partner not found")
	ErrPartnerExists           = errors.New("partner already exists")
	ErrPartnerDisabled         = errors.New("partner disabled")
	ErrPartnerStatusInvalid    = errors.New("partner status invalid")
	ErrPartnerProgramDisabled  = errors.New("partner program disabled")
	ErrPartnerConfigInvalid    = errors.New("partner config invalid")
	ErrReferralCodeGenerate    = errors.New("referral code generate failed")
	ErrCommissionNotFound      = errors.New("commission not found")
	ErrCommissionStateConflict = errors.New("commission state conflict")
	ErrPayoutBatchInvalid      = errors.New("payout batch invalid")
	ErrPayoutBatchNotFound     = errors.New("payout batch not found")
	ErrSellerNotFound          = errors.New("seller not found")
	ErrSellerExists            = errors.New("seller already exists")
)
