package i18n

// catalogs 各语言文案表
var catalogs = map[string]map[string]string{
	LocaleKO: {
		// 通用错误
		"error.bad_request":           "잘못된 요청입니다",
		"error.invalid_input":         "입력값이 올바르지 않습니다",
		"error.not_found":             "리소스를 찾을 수 없습니다",
		"error.internal":              "서버 내부 오류가 발생했습니다",
		"error.unauthorized":          "로그인이 필요합니다",
		"error.forbidden":             "권한이 없습니다",
		"error.rate_limit_exceeded":   "요청이 너무 잦습니다. 잠시 후 다시 시도해 주세요",
		"error.rate_limit_unavailable": "요청 제한 서비스를 사용할 수 없습니다",

		// 认证
		"error.jwt_secret_missing":   "서버 인증 구성 오류입니다",
		"error.token_invalid":        "인증 정보가 유효하지 않습니다",
		"error.token_revoked":        "인증이 만료되었습니다. 다시 로그인해 주세요",
		"error.auth_header_missing":  "인증 정보가 없습니다",
		"error.auth_header_invalid":  "인증 형식이 올바르지 않습니다",
		"error.invalid_credentials":  "이메일 또는 비밀번호가 올바르지 않습니다",
		"error.user_disabled":        "계정이 비활성화되었습니다",
		"error.user_not_found":       "사용자를 찾을 수 없습니다",
		"error.email_exists":         "이미 등록된 이메일입니다",
		"error.email_invalid":        "이메일 형식이 올바르지 않습니다",
		"error.email_not_verified":   "이메일 인증이 필요합니다",
		"error.password_too_weak":    "비밀번호가 보안 기준에 미치지 못합니다",
		"error.password_invalid":     "기존 비밀번호가 올바르지 않습니다",
		"error.agreement_required":   "이용약관에 동의해 주세요",
		"error.profile_empty":        "변경할 내용이 없습니다",
		"error.captcha_required":     "보안문자를 입력해 주세요",
		"error.captcha_invalid":      "보안문자가 올바르지 않습니다",
		"error.verify_code_invalid":  "인증번호가 올바르지 않습니다",
		"error.verify_code_expired":  "인증번호가 만료되었습니다",
		"error.verify_code_frequent": "인증번호 발송이 너무 잦습니다",
		"error.verify_code_attempts": "인증 시도 횟수를 초과했습니다",
		"error.email_change_invalid": "이메일 변경 요청이 올바르지 않습니다",
		"error.email_change_exists":  "이미 사용 중인 이메일입니다",
		"error.email_send_failed":    "메일 발송에 실패했습니다",

		// 商品与购物车
		"error.product_not_found":    "상품을 찾을 수 없습니다",
		"error.product_inactive":     "판매 중이 아닌 상품입니다",
		"error.product_slug_exists":  "이미 사용 중인 상품 주소입니다",
		"error.product_price_invalid": "상품 가격이 올바르지 않습니다",
		"error.stock_insufficient":   "상품 재고가 부족합니다",
		"error.cart_empty":           "장바구니가 비어 있습니다",
		"error.cart_item_invalid":    "장바구니 항목이 올바르지 않습니다",
		"error.category_not_found":   "카테고리를 찾을 수 없습니다",

		// 订单
		"error.order_not_found":      "주문을 찾을 수 없습니다",
		"error.order_item_invalid":   "주문 항목이 올바르지 않습니다",
		"error.address_invalid":      "배송지 정보가 올바르지 않습니다",
		"error.order_state_conflict": "현재 주문 상태에서는 처리할 수 없습니다",
		"error.order_create_failed":  "주문 생성에 실패했습니다",

		// 合伙人与佣金
		"error.partner_not_found":         "파트너를 찾을 수 없습니다",
		"error.partner_exists":            "이미 파트너로 등록되어 있습니다",
		"error.partner_program_disabled":  "파트너 프로그램이 비활성화되어 있습니다",
		"error.partner_status_invalid":    "현재 파트너 상태에서는 처리할 수 없습니다",
		"error.referral_code_generate":    "추천 코드 생성에 실패했습니다",
		"error.commission_not_found":      "수수료 내역을 찾을 수 없습니다",
		"error.commission_state_conflict": "현재 수수료 상태에서는 처리할 수 없습니다",
		"error.payout_batch_invalid":      "정산 배치 요청이 올바르지 않습니다",
		"error.payout_batch_not_found":    "정산 배치를 찾을 수 없습니다",
		"error.seller_not_found":          "판매자를 찾을 수 없습니다",
		"error.seller_exists":             "이미 판매자로 등록되어 있습니다",

		// 请求与通用反馈
		"error.login_failed":            "로그인에 실패했습니다",
		"error.login_invalid":           "이메일 또는 비밀번호가 올바르지 않습니다",
		"error.login_too_many":          "로그인 시도가 너무 많습니다. %d초 후 다시 시도해 주세요",
		"error.rate_limited":            "요청이 너무 잦습니다. %d초 후 다시 시도해 주세요",
		"error.register_failed":         "회원가입에 실패했습니다",
		"error.reset_failed":            "비밀번호 재설정에 실패했습니다",
		"error.save_failed":             "저장에 실패했습니다",
		"error.upload_failed":           "파일 업로드에 실패했습니다",
		"error.file_missing":            "업로드할 파일이 없습니다",
		"error.config_fetch_failed":     "설정 조회에 실패했습니다",
		"error.settings_fetch_failed":   "설정 조회에 실패했습니다",
		"error.settings_save_failed":    "설정 저장에 실패했습니다",
		"error.slug_exists":             "이미 사용 중인 주소입니다",
		"error.slug_used":               "이미 사용 중인 주소입니다",
		"error.review_action_invalid":   "심사 동작이 올바르지 않습니다",
		"error.send_verify_code_failed": "인증번호 발송에 실패했습니다",
		"error.verify_purpose_invalid":  "인증 용도가 올바르지 않습니다",
		"error.verify_code_too_frequent":        "인증번호 발송이 너무 잦습니다",
		"error.verify_code_attempts_exceeded":   "인증 시도 횟수를 초과했습니다",
		"error.email_change_failed":             "이메일 변경에 실패했습니다",
		"error.email_recipient_not_found":       "수신자 이메일 주소를 확인할 수 없습니다",
		"error.email_service_not_configured":    "메일 서비스가 설정되지 않았습니다",

		// 密码策略
		"error.password_weak":            "비밀번호가 보안 기준에 미치지 못합니다",
		"error.password_min_length":      "비밀번호는 최소 %d자 이상이어야 합니다",
		"error.password_old_invalid":     "기존 비밀번호가 올바르지 않습니다",
		"error.password_require_upper":   "비밀번호에 대문자를 포함해 주세요",
		"error.password_require_lower":   "비밀번호에 소문자를 포함해 주세요",
		"error.password_require_number":  "비밀번호에 숫자를 포함해 주세요",
		"error.password_require_special": "비밀번호에 특수문자를 포함해 주세요",

		// 验证码服务
		"error.captcha_config_invalid":  "보안문자 설정이 올바르지 않습니다",
		"error.captcha_generate_failed": "보안문자 생성에 실패했습니다",
		"error.captcha_unavailable":     "보안문자 서비스를 사용할 수 없습니다",
		"error.captcha_verify_failed":   "보안문자 검증에 실패했습니다",

		// 查询与写入失败
		"error.cart_fetch_failed":           "장바구니 조회에 실패했습니다",
		"error.cart_update_failed":          "장바구니 수정에 실패했습니다",
		"error.product_fetch_failed":        "상품 조회에 실패했습니다",
		"error.product_delete_failed":       "상품 삭제에 실패했습니다",
		"error.product_commission_invalid":  "상품 수수료 설정이 올바르지 않습니다",
		"error.category_fetch_failed":       "카테고리 조회에 실패했습니다",
		"error.category_create_failed":      "카테고리 생성에 실패했습니다",
		"error.category_update_failed":      "카테고리 수정에 실패했습니다",
		"error.category_delete_failed":      "카테고리 삭제에 실패했습니다",
		"error.category_in_use":             "사용 중인 카테고리는 삭제할 수 없습니다",
		"error.order_fetch_failed":          "주문 조회에 실패했습니다",
		"error.order_update_failed":         "주문 수정에 실패했습니다",
		"error.partner_fetch_failed":        "파트너 조회에 실패했습니다",
		"error.commission_fetch_failed":     "수수료 내역 조회에 실패했습니다",
		"error.payout_batch_fetch_failed":   "정산 배치 조회에 실패했습니다",
		"error.seller_fetch_failed":         "판매자 조회에 실패했습니다",
		"error.seller_status_invalid":       "현재 판매자 상태에서는 처리할 수 없습니다",
		"error.approval_log_fetch_failed":   "승인 이력 조회에 실패했습니다",
		"error.user_fetch_failed":           "사용자 조회에 실패했습니다",
		"error.user_update_failed":          "사용자 수정에 실패했습니다",
		"error.user_id_invalid":             "사용자 ID가 올바르지 않습니다",
		"error.user_id_type_invalid":        "사용자 ID 형식이 올바르지 않습니다",
		"error.user_login_log_fetch_failed": "로그인 이력 조회에 실패했습니다",

		// 管理员账号
		"error.admin_login_invalid":         "아이디 또는 비밀번호가 올바르지 않습니다",
		"error.admin_create_failed":         "관리자 생성에 실패했습니다",
		"error.admin_update_failed":         "관리자 수정에 실패했습니다",
		"error.admin_delete_failed":         "관리자 삭제에 실패했습니다",
		"error.admin_delete_last_forbidden": "마지막 관리자는 삭제할 수 없습니다",
		"error.admin_delete_protected":      "보호된 관리자 계정은 삭제할 수 없습니다",
		"error.admin_delete_self_forbidden": "본인 계정은 삭제할 수 없습니다",
		"error.admin_id_invalid":            "관리자 ID가 올바르지 않습니다",
		"error.admin_id_type_invalid":       "관리자 ID 형식이 올바르지 않습니다",
		"error.admin_username_exists":       "이미 사용 중인 관리자 아이디입니다",
		"error.admin_username_invalid":      "관리자 아이디 형식이 올바르지 않습니다",

		// 订单状态标签
		"order.status.pending":    "결제 대기",
		"order.status.confirmed":  "주문 확정",
		"order.status.processing": "처리 중",
		"order.status.shipped":    "배송 중",
		"order.status.delivered":  "배송 완료",
		"order.status.cancelled":  "주문 취소",
		"order.status.returned":   "반품 완료",

		// 邮件文案
		"email.verify_code.subject.register":     "회원가입 인증번호",
		"email.verify_code.subject.reset":        "비밀번호 재설정 인증번호",
		"email.verify_code.subject.change_email": "이메일 변경 인증번호",
		"email.verify_code.subject.default":      "이메일 인증번호",
		"email.verify_code.body":                 "인증번호: %s\n\n이 인증번호는 %s 용도로만 사용됩니다. 타인에게 공유하지 마세요.",
		"email.verify_code.purpose.register":     "회원가입",
		"email.verify_code.purpose.reset":        "비밀번호 재설정",
		"email.verify_code.purpose.change_email": "이메일 변경",
		"email.verify_code.purpose.default":      "이메일 인증",
		"email.order_status.subject":             "주문 상태 안내: %s",
		"email.order_status.body":                "주문번호 %s 의 상태가 [%s] 로 변경되었습니다.\n결제 금액: %s %s",
		"email.order_status.body_delivered":      "주문번호 %s 의 상품이 배송 완료되었습니다. (%s)\n결제 금액: %s %s\n배송 정보:\n%s",
		"email.order_status.body_cancelled":      "주문번호 %s 이(가) 취소되었습니다. (%s)\n결제 금액: %s %s",
	},
	LocaleEN: {
		// Generic errors
		"error.bad_request":           "Bad request",
		"error.invalid_input":         "Invalid input",
		"error.not_found":             "Resource not found",
		"error.internal":              "Internal server error",
		"error.unauthorized":          "Authentication required",
		"error.forbidden":             "Permission denied",
		"error.rate_limit_exceeded":   "Too many requests, please try again later",
		"error.rate_limit_unavailable": "Rate limiting service unavailable",

		// Auth
		"error.jwt_secret_missing":   "Server auth configuration error",
		"error.token_invalid":        "Invalid credentials token",
		"error.token_revoked":        "Session expired, please sign in again",
		"error.auth_header_missing":  "Missing authorization header",
		"error.auth_header_invalid":  "Invalid authorization header",
		"error.invalid_credentials":  "Incorrect email or password",
		"error.user_disabled":        "Account is disabled",
		"error.user_not_found":       "User not found",
		"error.email_exists":         "Email already registered",
		"error.email_invalid":        "Invalid email address",
		"error.email_not_verified":   "Email verification required",
		"error.password_too_weak":    "Password does not meet security requirements",
		"error.password_invalid":     "Current password is incorrect",
		"error.agreement_required":   "Please accept the terms of service",
		"error.profile_empty":        "Nothing to update",
		"error.captcha_required":     "Captcha required",
		"error.captcha_invalid":      "Invalid captcha",
		"error.verify_code_invalid":  "Invalid verification code",
		"error.verify_code_expired":  "Verification code expired",
		"error.verify_code_frequent": "Verification code requested too frequently",
		"error.verify_code_attempts": "Too many verification attempts",
		"error.email_change_invalid": "Invalid email change request",
		"error.email_change_exists":  "Email already in use",
		"error.email_send_failed":    "Failed to send email",

		// Products and cart
		"error.product_not_found":    "Product not found",
		"error.product_inactive":     "Product is not on sale",
		"error.product_slug_exists":  "Product slug already in use",
		"error.product_price_invalid": "Invalid product price",
		"error.stock_insufficient":   "Insufficient product stock",
		"error.cart_empty":           "Cart is empty",
		"error.cart_item_invalid":    "Invalid cart item",
		"error.category_not_found":   "Category not found",

		// Orders
		"error.order_not_found":      "Order not found",
		"error.order_item_invalid":   "Invalid order item",
		"error.address_invalid":      "Invalid shipping address",
		"error.order_state_conflict": "Operation not allowed in current order state",
		"error.order_create_failed":  "Failed to create order",

		// Partners and commissions
		"error.partner_not_found":         "Partner not found",
		"error.partner_exists":            "Already registered as a partner",
		"error.partner_program_disabled":  "Partner program is disabled",
		"error.partner_status_invalid":    "Operation not allowed in current partner status",
		"error.referral_code_generate":    "Failed to generate referral code",
		"error.commission_not_found":      "Commission record not found",
		"error.commission_state_conflict": "Operation not allowed in current commission state",
		"error.payout_batch_invalid":      "Invalid payout batch request",
		"error.payout_batch_not_found":    "Payout batch not found",
		"error.seller_not_found":          "Seller not found",
		"error.seller_exists":             "Already registered as a seller",

		// Request and generic feedback
		"error.login_failed":            "Login failed",
		"error.login_invalid":           "Incorrect email or password",
		"error.login_too_many":          "Too many login attempts, try again in %d seconds",
		"error.rate_limited":            "Too many requests, try again in %d seconds",
		"error.register_failed":         "Registration failed",
		"error.reset_failed":            "Password reset failed",
		"error.save_failed":             "Failed to save",
		"error.upload_failed":           "File upload failed",
		"error.file_missing":            "No file to upload",
		"error.config_fetch_failed":     "Failed to load configuration",
		"error.settings_fetch_failed":   "Failed to load settings",
		"error.settings_save_failed":    "Failed to save settings",
		"error.slug_exists":             "Slug already in use",
		"error.slug_used":               "Slug already in use",
		"error.review_action_invalid":   "Invalid review action",
		"error.send_verify_code_failed": "Failed to send verification code",
		"error.verify_purpose_invalid":  "Invalid verification purpose",
		"error.verify_code_too_frequent":      "Verification code requested too frequently",
		"error.verify_code_attempts_exceeded": "Too many verification attempts",
		"error.email_change_failed":           "Failed to change email",
		"error.email_recipient_not_found":     "Recipient email address could not be verified",
		"error.email_service_not_configured":  "Email service is not configured",

		// Password policy
		"error.password_weak":            "Password does not meet security requirements",
		"error.password_min_length":      "Password must be at least %d characters",
		"error.password_old_invalid":     "Current password is incorrect",
		"error.password_require_upper":   "Password must contain an uppercase letter",
		"error.password_require_lower":   "Password must contain a lowercase letter",
		"error.password_require_number":  "Password must contain a number",
		"error.password_require_special": "Password must contain a special character",

		// Captcha service
		"error.captcha_config_invalid":  "Invalid captcha configuration",
		"error.captcha_generate_failed": "Failed to generate captcha",
		"error.captcha_unavailable":     "Captcha service unavailable",
		"error.captcha_verify_failed":   "Captcha verification failed",

		// Fetch and update failures
		"error.cart_fetch_failed":           "Failed to load cart",
		"error.cart_update_failed":          "Failed to update cart",
		"error.product_fetch_failed":        "Failed to load products",
		"error.product_delete_failed":       "Failed to delete product",
		"error.product_commission_invalid":  "Invalid product commission settings",
		"error.category_fetch_failed":       "Failed to load categories",
		"error.category_create_failed":      "Failed to create category",
		"error.category_update_failed":      "Failed to update category",
		"error.category_delete_failed":      "Failed to delete category",
		"error.category_in_use":             "Category is in use and cannot be deleted",
		"error.order_fetch_failed":          "Failed to load orders",
		"error.order_update_failed":         "Failed to update order",
		"error.partner_fetch_failed":        "Failed to load partners",
		"error.commission_fetch_failed":     "Failed to load commissions",
		"error.payout_batch_fetch_failed":   "Failed to load payout batches",
		"error.seller_fetch_failed":         "Failed to load sellers",
		"error.seller_status_invalid":       "Operation not allowed in current seller status",
		"error.approval_log_fetch_failed":   "Failed to load approval logs",
		"error.user_fetch_failed":           "Failed to load users",
		"error.user_update_failed":          "Failed to update user",
		"error.user_id_invalid":             "Invalid user ID",
		"error.user_id_type_invalid":        "Invalid user ID format",
		"error.user_login_log_fetch_failed": "Failed to load login logs",

		// Admin accounts
		"error.admin_login_invalid":         "Incorrect username or password",
		"error.admin_create_failed":         "Failed to create admin",
		"error.admin_update_failed":         "Failed to update admin",
		"error.admin_delete_failed":         "Failed to delete admin",
		"error.admin_delete_last_forbidden": "The last admin account cannot be deleted",
		"error.admin_delete_protected":      "Protected admin accounts cannot be deleted",
		"error.admin_delete_self_forbidden": "You cannot delete your own account",
		"error.admin_id_invalid":            "Invalid admin ID",
		"error.admin_id_type_invalid":       "Invalid admin ID format",
		"error.admin_username_exists":       "Admin username already in use",
		"error.admin_username_invalid":      "Invalid admin username",

		// Order status labels
		"order.status.pending":    "Pending Payment",
		"order.status.confirmed":  "Confirmed",
		"order.status.processing": "Processing",
		"order.status.shipped":    "Shipped",
		"order.status.delivered":  "Delivered",
		"order.status.cancelled":  "Cancelled",
		"order.status.returned":   "Returned",

		// Email content
		"email.verify_code.subject.register":     "Registration Verification Code",
		"email.verify_code.subject.reset":        "Password Reset Code",
		"email.verify_code.subject.change_email": "Change Email Verification Code",
		"email.verify_code.subject.default":      "Email Verification Code",
		"email.verify_code.body":                 "Your verification code is: %s\n\nThis code is for %s only. Do not share it with anyone.",
		"email.verify_code.purpose.register":     "registration",
		"email.verify_code.purpose.reset":        "password reset",
		"email.verify_code.purpose.change_email": "changing your email",
		"email.verify_code.purpose.default":      "email verification",
		"email.order_status.subject":             "Order Status Update: %s",
		"email.order_status.body":                "The status of order %s has changed to [%s].\nAmount: %s %s",
		"email.order_status.body_delivered":      "Order %s has been delivered. (%s)\nAmount: %s %s\nDelivery details:\n%s",
		"email.order_status.body_cancelled":      "Order %s has been cancelled. (%s)\nAmount: %s %s",
	},
}
