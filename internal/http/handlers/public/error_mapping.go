package public

import (
	"errors"

	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

// bindJSON 绑定请求体，失败时写 bad_request 响应
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return false
	}
	return true
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var orderCreateErrorRules = []mappedHandlerError{
	{target: service.ErrOrderItemInvalid, code: response.CodeBadRequest, key: "error.order_item_invalid"},
	{target: service.ErrAddressInvalid, code: response.CodeBadRequest, key: "error.address_invalid"},
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, key: "error.cart_empty"},
	{target: service.ErrProductNotFound, code: response.CodeBadRequest, key: "error.product_not_found"},
	{target: service.ErrProductInactive, code: response.CodeBadRequest, key: "error.product_inactive"},
	{target: service.ErrProductStockInsufficient, code: response.CodeBadRequest, key: "error.stock_insufficient"},
	{target: service.ErrProductPriceInvalid, code: response.CodeBadRequest, key: "error.product_price_invalid"},
	{target: service.ErrOrderInvalid, code: response.CodeBadRequest, key: "error.order_item_invalid"},
}

func respondOrderCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderCreateErrorRules, response.CodeInternal, "error.order_create_failed")
}

var partnerSignupErrorRules = []mappedHandlerError{
	{target: service.ErrPartnerProgramDisabled, code: response.CodeBadRequest, key: "error.partner_program_disabled"},
	{target: service.ErrPartnerExists, code: response.CodeBadRequest, key: "error.partner_exists"},
	{target: service.ErrUserNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrUserDisabled, code: response.CodeBadRequest, key: "error.user_disabled"},
	{target: service.ErrReferralCodeGenerate, code: response.CodeInternal, key: "error.referral_code_generate"},
}

func respondPartnerSignupError(c *gin.Context, err error) {
	respondWithMappedError(c, err, partnerSignupErrorRules, response.CodeInternal, "error.save_failed")
}
