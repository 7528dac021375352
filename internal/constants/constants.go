package constants

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusReturned   = "returned"
)

// 支付状态常量
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// 佣金状态常量
const (
	CommissionStatusPending   = "pending"
	CommissionStatusConfirmed = "confirmed"
	CommissionStatusPaid      = "paid"
	CommissionStatusCancelled = "cancelled"
	CommissionStatusDisputed  = "disputed"
)

// 佣金类型常量
const (
	CommissionTypeSale      = "sale"
	CommissionTypeBonus     = "bonus"
	CommissionTypeReferral  = "referral"
	CommissionTypeTierBonus = "tier_bonus"
)

// 合伙人等级常量
const (
	PartnerTierBronze   = "bronze"
	PartnerTierSilver   = "silver"
	PartnerTierGold     = "gold"
	PartnerTierPlatinum = "platinum"
)

// 合伙人等级顺序（从低到高）
var PartnerTierOrder = []string{PartnerTierBronze, PartnerTierSilver, PartnerTierGold, PartnerTierPlatinum}

// 合伙人状态常量
const (
	PartnerStatusPending   = "pending"
	PartnerStatusActive    = "active"
	PartnerStatusSuspended = "suspended"
	PartnerStatusInactive  = "inactive"
)

// 商家与供应商状态常量
const (
	SellerStatusPending   = "pending"
	SellerStatusActive    = "active"
	SellerStatusSuspended = "suspended"
)

// 商品状态常量
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// 归因来源常量
const (
	AttributionSourceURL    = "url"
	AttributionSourceCookie = "cookie"
	AttributionSourceLogin  = "login"
)

// 归因 Cookie 与查询参数常量
const (
	ReferralCookieName    = "partner_ref"
	VisitorCookieName     = "visitor_key"
	ReferralQueryRef      = "ref"
	ReferralQueryPartner  = "partner"
	ReferralCookieMaxAge  = 30 * 24 * 60 * 60
	VisitorCookieMaxAge   = 365 * 24 * 60 * 60
)

// 结算批次状态常量
const (
	PayoutBatchStatusProcessing = "processing"
	PayoutBatchStatusCompleted  = "completed"
)

// 审批动作常量
const (
	ApprovalActionApprove        = "approve"
	ApprovalActionReject         = "reject"
	ApprovalActionSuspend        = "suspend"
	ApprovalActionReactivate     = "reactivate"
	ApprovalActionDispute        = "dispute"
	ApprovalActionResolveConfirm = "resolve_confirm"
	ApprovalActionResolveCancel  = "resolve_cancel"
)

// 审批对象类型常量
const (
	ApprovalTargetPartner    = "partner"
	ApprovalTargetSeller     = "seller"
	ApprovalTargetCommission = "commission"
	ApprovalTargetOrder      = "order"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 登录日志状态常量
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusFailed  = "failed"
)

// 登录失败原因常量
const (
	LoginLogFailReasonBadRequest           = "bad_request"
	LoginLogFailReasonCaptchaRequired      = "captcha_required"
	LoginLogFailReasonCaptchaInvalid       = "captcha_invalid"
	LoginLogFailReasonCaptchaConfigInvalid = "captcha_config_invalid"
	LoginLogFailReasonCaptchaVerifyFailed  = "captcha_verify_failed"
	LoginLogFailReasonInvalidEmail         = "invalid_email"
	LoginLogFailReasonInvalidCredentials   = "invalid_credentials"
	LoginLogFailReasonEmailNotVerified     = "email_not_verified"
	LoginLogFailReasonUserDisabled         = "user_disabled"
	LoginLogFailReasonInternalError        = "internal_error"
)

// 登录来源常量
const (
	LoginLogSourceWeb = "web"
)

// 邮箱验证码用途常量
const (
	VerifyPurposeRegister       = "register"
	VerifyPurposeReset          = "reset"
	VerifyPurposeChangeEmailOld = "change_email_old"
	VerifyPurposeChangeEmailNew = "change_email_new"
)

// 验证码提供方常量
const (
	CaptchaProviderNone      = "none"
	CaptchaProviderImage     = "image"
	CaptchaProviderTurnstile = "turnstile"
)

// 验证码校验场景常量
const (
	CaptchaSceneLogin            = "login"
	CaptchaSceneRegisterSendCode = "register_send_code"
	CaptchaSceneResetSendCode    = "reset_send_code"
	CaptchaScenePartnerSignup    = "partner_signup"
)

// 队列常量
const (
	QueueDefault          = "default"
	TaskOrderCommission   = "order:resolve_commission"
	TaskOrderCancelSweep  = "order:cancel_commission"
	TaskCommissionConfirm = "commission:confirm_due"
	TaskPartnerTierRecalc = "partner:tier_recalc"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "lm"
)

// 设置键常量
const (
	SettingKeySiteConfig       = "site_config"
	SettingKeyOrderConfig      = "order_config"
	SettingKeyCommissionConfig = "commission_config"
	SettingKeyCaptchaConfig    = "captcha_config"
	SettingKeySMTPConfig       = "smtp_config"
	SettingFieldSiteCurrency   = "currency"
)

// 币种常量
const (
	SiteCurrencyDefault = "KRW"
)

// 站点语言常量
const (
	LocaleEnUS = "en-US"
	LocaleKoKR = "ko-KR"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleKoKR, LocaleEnUS}
