package public

import (
	"strconv"
	"strings"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/repository"
	"github.com/linkmall/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest 订单项请求
type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// AddressRequest 订单地址请求
type AddressRequest struct {
	RecipientName string `json:"recipient_name" binding:"required"`
	Phone         string `json:"phone"`
	Line1         string `json:"line1" binding:"required"`
	Line2         string `json:"line2"`
	City          string `json:"city" binding:"required"`
	PostalCode    string `json:"postal_code" binding:"required"`
	CountryCode   string `json:"country_code"`
}

func (r AddressRequest) toServiceAddress() service.Address {
	return service.Address{
		RecipientName: r.RecipientName,
		Phone:         r.Phone,
		Line1:         r.Line1,
		Line2:         r.Line2,
		City:          r.City,
		PostalCode:    r.PostalCode,
		CountryCode:   r.CountryCode,
	}
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items"`
	FromCart        bool               `json:"from_cart"`
	ShippingAddress AddressRequest     `json:"shipping_address" binding:"required"`
	BillingAddress  *AddressRequest    `json:"billing_address"`
	PaymentMethod   string             `json:"payment_method"`
	Notes           string             `json:"notes"`
	ReferralCode    string             `json:"referral_code"`
}

// pathOrderID 解析路径中的订单 ID，非法时已回写响应
func pathOrderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.order_item_invalid", nil)
		return 0, false
	}
	return uint(id), true
}

var orderLookupErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
}

func respondOrderLookupError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderLookupErrorRules, response.CodeInternal, "error.order_fetch_failed")
}

func (h *Handler) buildCreateOrderInput(c *gin.Context, uid uint, req CreateOrderRequest) service.CreateOrderInput {
	var items []service.CreateOrderItem
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	input := service.CreateOrderInput{
		UserID:          uid,
		Items:           items,
		ShippingAddress: req.ShippingAddress.toServiceAddress(),
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
		ReferralCode:    strings.TrimSpace(req.ReferralCode),
		ClientIP:        c.ClientIP(),
	}
	if req.BillingAddress != nil {
		billing := req.BillingAddress.toServiceAddress()
		input.BillingAddress = &billing
	}
	// 请求体显式携带的推荐码优先，缺省时回退到归因 Cookie
	if input.ReferralCode == "" {
		if referral, err := c.Cookie(constants.ReferralCookieName); err == nil {
			input.ReferralCode = strings.TrimSpace(referral)
		}
	}
	if visitorKey, err := c.Cookie(constants.VisitorCookieName); err == nil {
		input.VisitorKey = strings.TrimSpace(visitorKey)
	}
	return input
}

// PreviewOrder 订单金额预览，不落库不扣库存
func (h *Handler) PreviewOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	preview, err := h.OrderService.PreviewOrder(h.buildCreateOrderInput(c, uid, req))
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}
	response.Success(c, preview)
}

// CreateOrder 创建订单，from_cart 为真时以购物车内容为准
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	input := h.buildCreateOrderInput(c, uid, req)
	create := h.OrderService.CreateOrder
	if req.FromCart {
		create = h.OrderService.CreateOrderFromCart
	}

	order, err := create(input)
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}
	response.Success(c, order)
}

// ListOrders 获取当前用户的订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	orders, total, err := h.OrderService.ListOrdersByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   strings.TrimSpace(c.Query("status")),
		OrderNo:  strings.TrimSpace(c.Query("order_no")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathOrderID(c)
	if !ok {
		return
	}

	order, err := h.OrderService.GetOrderByUser(orderID, uid)
	if err != nil {
		respondOrderLookupError(c, err)
		return
	}
	response.Success(c, order)
}

// GetOrderByOrderNo 按订单号获取订单详情
func (h *Handler) GetOrderByOrderNo(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "error.order_item_invalid", nil)
		return
	}

	order, err := h.OrderService.GetOrderByUserOrderNo(orderNo, uid)
	if err != nil {
		respondOrderLookupError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelOrder 用户在可退回窗口内取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathOrderID(c)
	if !ok {
		return
	}

	order, err := h.OrderService.CancelOrder(orderID, uid)
	if err != nil {
		respondWithMappedError(c, err, []mappedHandlerError{
			{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
			{target: service.ErrOrderStateConflict, code: response.CodeBadRequest, key: "error.order_state_conflict"},
		}, response.CodeInternal, "error.order_update_failed")
		return
	}
	response.Success(c, order)
}

// RefundOrder 用户对已送达订单发起退款，仅限本人
func (h *Handler) RefundOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathOrderID(c)
	if !ok {
		return
	}

	order, err := h.OrderService.RefundOrder(orderID, uid)
	if err != nil {
		respondWithMappedError(c, err, []mappedHandlerError{
			{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
			{target: service.ErrOrderStateConflict, code: response.CodeBadRequest, key: "error.order_state_conflict"},
		}, response.CodeInternal, "error.order_update_failed")
		return
	}
	response.Success(c, order)
}
