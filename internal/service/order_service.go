package service

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/logger"
	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/queue"
	"github.com/linkmall/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo         repository.OrderRepository
	productRepo       repository.ProductRepository
	cartRepo          repository.CartRepository
	partnerService    *PartnerService
	commissionService *CommissionService
	queueClient       *queue.Client
	settingService    *SettingService
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, cartRepo repository.CartRepository, partnerService *PartnerService, commissionService *CommissionService, queueClient *queue.Client, settingService *SettingService) *OrderService {
	return &OrderService{
		orderRepo:         orderRepo,
		productRepo:       productRepo,
		cartRepo:          cartRepo,
		partnerService:    partnerService,
		commissionService: commissionService,
		queueClient:       queueClient,
		settingService:    settingService,
	}
}

// Address 订单地址
type Address struct {
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	Line1         string `json:"line1"`
	Line2         string `json:"line2,omitempty"`
	City          string `json:"city"`
	PostalCode    string `json:"postal_code"`
	CountryCode   string `json:"country_code"`
}

// Normalize 地址归一化
func (a Address) Normalize() Address {
	a.RecipientName = strings.TrimSpace(a.RecipientName)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Line1 = strings.TrimSpace(a.Line1)
	a.Line2 = strings.TrimSpace(a.Line2)
	a.City = strings.TrimSpace(a.City)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.CountryCode = strings.ToUpper(strings.TrimSpace(a.CountryCode))
	if a.CountryCode == "" {
		a.CountryCode = "KR"
	}
	return a
}

// Validate 校验地址必填项
func (a Address) Validate() error {
	normalized := a.Normalize()
	if normalized.RecipientName == "" || normalized.Line1 == "" || normalized.City == "" || normalized.PostalCode == "" {
		return ErrAddressInvalid
	}
	return nil
}

func encodeAddress(a Address) string {
	body, err := json.Marshal(a.Normalize())
	if err != nil {
		return ""
	}
	return string(body)
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID          uint
	Items           []CreateOrderItem
	ShippingAddress Address
	BillingAddress  *Address
	PaymentMethod   string
	Notes           string
	ReferralCode    string
	VisitorKey      string
	ClientIP        string
}

// CreateOrderItem 创建订单项输入
type CreateOrderItem struct {
	ProductID uint
	Quantity  int
}

// OrderPreview 订单金额预览
type OrderPreview struct {
	Currency       string             `json:"currency"`
	Subtotal       models.Money       `json:"subtotal"`
	DiscountAmount models.Money       `json:"discount_amount"`
	ShippingAmount models.Money       `json:"shipping_amount"`
	TaxAmount      models.Money       `json:"tax_amount"`
	TotalAmount    models.Money       `json:"total_amount"`
	Items          []OrderPreviewItem `json:"items"`
}

// OrderPreviewItem 订单项金额预览
type OrderPreviewItem struct {
	ProductID  uint         `json:"product_id"`
	Title      string       `json:"title"`
	UnitPrice  models.Money `json:"unit_price"`
	Quantity   int          `json:"quantity"`
	TotalPrice models.Money `json:"total_price"`
}

type orderBuildResult struct {
	Items          []models.OrderItem
	Products       []*models.Product
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	ShippingAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	Currency       string
}

var allowedOrderTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusConfirmed: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusShipped: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
	},
	constants.OrderStatusDelivered: {
		constants.OrderStatusReturned: true,
	},
}

func isOrderTransitionAllowed(current, target string) bool {
	if current == target {
		return true
	}
	nexts, ok := allowedOrderTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

// CreateOrder 创建订单
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, ErrOrderItemInvalid
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, err
	}
	if input.BillingAddress != nil {
		if err := input.BillingAddress.Validate(); err != nil {
			return nil, err
		}
	}

	result, err := s.buildOrderResult(input.Items)
	if err != nil {
		return nil, err
	}

	partner, click, source := s.resolveAttribution(input)

	now := time.Now()
	order := &models.Order{
		OrderNo:         generateOrderNo(),
		UserID:          input.UserID,
		Status:          constants.OrderStatusPending,
		PaymentStatus:   constants.PaymentStatusPending,
		PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
		Currency:        result.Currency,
		Subtotal:        models.NewMoneyFromDecimal(result.Subtotal),
		DiscountAmount:  models.NewMoneyFromDecimal(result.DiscountAmount),
		ShippingAmount:  models.NewMoneyFromDecimal(result.ShippingAmount),
		TaxAmount:       models.NewMoneyFromDecimal(result.TaxAmount),
		TotalAmount:     models.NewMoneyFromDecimal(result.TotalAmount),
		ShippingAddress: encodeAddress(input.ShippingAddress),
		Notes:           strings.TrimSpace(input.Notes),
		ClientIP:        strings.TrimSpace(input.ClientIP),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.BillingAddress != nil {
		order.BillingAddress = encodeAddress(*input.BillingAddress)
	}
	if partner != nil {
		pid := partner.ID
		order.PartnerID = &pid
		order.ReferralCode = partner.ReferralCode
		order.AttributionSrc = source
		if click != nil {
			cid := click.ID
			order.ClickID = &cid
		}
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		for _, item := range result.Items {
			affected, err := productRepo.DecrementStock(item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrProductStockInsufficient
			}
		}
		return orderRepo.Create(order, result.Items)
	})
	if err != nil {
		if err == ErrProductStockInsufficient {
			return nil, ErrProductStockInsufficient
		}
		logger.Errorw("order_create_failed",
			"user_id", input.UserID,
			"error", err,
		)
		return nil, ErrOrderCreateFailed
	}

	s.dispatchCommissionResolution(order)

	full, err := s.orderRepo.GetByID(order.ID)
	if err == nil && full != nil {
		return full, nil
	}
	return order, nil
}

// CreateOrderFromCart 从购物车创建订单
func (s *OrderService) CreateOrderFromCart(input CreateOrderInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, ErrOrderItemInvalid
	}
	if s.cartRepo == nil {
		return nil, ErrCartEmpty
	}
	cartItems, err := s.cartRepo.ListByUser(input.UserID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if len(cartItems) == 0 {
		return nil, ErrCartEmpty
	}
	items := make([]CreateOrderItem, 0, len(cartItems))
	for _, ci := range cartItems {
		items = append(items, CreateOrderItem{ProductID: ci.ProductID, Quantity: ci.Quantity})
	}
	input.Items = items

	order, err := s.CreateOrder(input)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.ClearByUser(input.UserID); err != nil {
		logger.Warnw("order_clear_cart_failed",
			"user_id", input.UserID,
			"order_id", order.ID,
			"error", err,
		)
	}
	return order, nil
}

// PreviewOrder 订单金额预览
func (s *OrderService) PreviewOrder(input CreateOrderInput) (*OrderPreview, error) {
	result, err := s.buildOrderResult(input.Items)
	if err != nil {
		return nil, err
	}
	items := make([]OrderPreviewItem, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, OrderPreviewItem{
			ProductID:  item.ProductID,
			Title:      item.Title,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			TotalPrice: item.TotalPrice,
		})
	}
	return &OrderPreview{
		Currency:       result.Currency,
		Subtotal:       models.NewMoneyFromDecimal(result.Subtotal),
		DiscountAmount: models.NewMoneyFromDecimal(result.DiscountAmount),
		ShippingAmount: models.NewMoneyFromDecimal(result.ShippingAmount),
		TaxAmount:      models.NewMoneyFromDecimal(result.TaxAmount),
		TotalAmount:    models.NewMoneyFromDecimal(result.TotalAmount),
		Items:          items,
	}, nil
}

// buildOrderResult 校验订单项并计算金额汇总
func (s *OrderService) buildOrderResult(items []CreateOrderItem) (*orderBuildResult, error) {
	mergedItems, err := mergeCreateOrderItems(items)
	if err != nil {
		return nil, err
	}
	if len(mergedItems) == 0 {
		return nil, ErrOrderItemInvalid
	}

	setting := s.resolveOrderSetting()
	now := time.Now()
	subtotal := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(mergedItems))
	products := make([]*models.Product, 0, len(mergedItems))
	for _, item := range mergedItems {
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || product.Status != constants.ProductStatusActive {
			return nil, ErrProductInactive
		}
		if product.Stock != models.StockUnlimited && product.Stock < item.Quantity {
			return nil, ErrProductStockInsufficient
		}
		unitPrice := product.PriceAmount.Decimal.Round(2)
		if unitPrice.LessThanOrEqual(decimal.Zero) {
			return nil, ErrOrderItemInvalid
		}
		total := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		subtotal = subtotal.Add(total).Round(2)

		orderItems = append(orderItems, models.OrderItem{
			ProductID:  product.ID,
			SellerID:   product.SellerID,
			Title:      product.Title,
			UnitPrice:  models.NewMoneyFromDecimal(unitPrice),
			Quantity:   item.Quantity,
			TotalPrice: models.NewMoneyFromDecimal(total),
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		products = append(products, product)
	}

	discount := decimal.Zero
	shipping := decimal.NewFromFloat(setting.ShippingFee).Round(2)
	if setting.FreeShippingThreshold > 0 &&
		subtotal.GreaterThanOrEqual(decimal.NewFromFloat(setting.FreeShippingThreshold)) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(decimal.NewFromFloat(setting.TaxRatePercent)).Div(decimal.NewFromInt(100)).Round(2)
	total := subtotal.Add(shipping).Add(tax).Sub(discount).Round(2)
	if total.LessThan(decimal.Zero) {
		total = decimal.Zero
	}

	return &orderBuildResult{
		Items:          orderItems,
		Products:       products,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		ShippingAmount: shipping,
		TaxAmount:      tax,
		TotalAmount:    total,
		Currency:       setting.Currency,
	}, nil
}

func (s *OrderService) resolveOrderSetting() OrderSetting {
	if s == nil || s.settingService == nil {
		return OrderDefaultSetting()
	}
	setting, err := s.settingService.GetOrderSetting()
	if err != nil {
		return OrderDefaultSetting()
	}
	return setting
}

// resolveAttribution 解析下单归因（显式推荐码优先，其次访客 Cookie 末次触达）
func (s *OrderService) resolveAttribution(input CreateOrderInput) (*models.Partner, *models.PartnerClick, string) {
	if s.partnerService == nil {
		return nil, nil, ""
	}
	partner, click, source, err := s.partnerService.ResolveOrderAttribution(input.UserID, input.ReferralCode, input.VisitorKey)
	if err != nil {
		logger.Warnw("order_resolve_attribution_failed",
			"user_id", input.UserID,
			"error", err,
		)
		return nil, nil, ""
	}
	return partner, click, source
}

// dispatchCommissionResolution 下发佣金解析（队列优先，队列不可用时同步执行）
func (s *OrderService) dispatchCommissionResolution(order *models.Order) {
	if order == nil || order.PartnerID == nil {
		return
	}
	if s.queueClient != nil && s.queueClient.Enabled() {
		err := s.queueClient.EnqueueOrderCommission(queue.OrderCommissionPayload{OrderID: order.ID})
		if err == nil {
			return
		}
		logger.Warnw("order_enqueue_commission_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}
	if s.commissionService == nil {
		return
	}
	if _, err := s.commissionService.ResolveOrderCommissions(order.ID); err != nil {
		logger.Errorw("order_resolve_commission_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}
}

// dispatchCommissionCancel 下发佣金回收
func (s *OrderService) dispatchCommissionCancel(order *models.Order, reason string) {
	if order == nil || order.PartnerID == nil {
		return
	}
	if s.queueClient != nil && s.queueClient.Enabled() {
		err := s.queueClient.EnqueueOrderCancelSweep(queue.OrderCancelSweepPayload{OrderID: order.ID, Reason: reason})
		if err == nil {
			return
		}
		logger.Warnw("order_enqueue_commission_cancel_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}
	if s.commissionService == nil {
		return
	}
	if _, err := s.commissionService.CancelOrderCommissions(order.ID, reason); err != nil {
		logger.Errorw("order_cancel_commission_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}
}

// MarkOrderPaid 标记订单支付完成并确认订单
func (s *OrderService) MarkOrderPaid(orderID uint, paymentMethod string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.PaymentStatus == constants.PaymentStatusCompleted {
		return order, nil
	}
	if order.Status != constants.OrderStatusPending {
		return nil, ErrOrderStateConflict
	}

	now := time.Now()
	updates := map[string]interface{}{
		"payment_status": constants.PaymentStatusCompleted,
		"payment_method": strings.TrimSpace(paymentMethod),
		"confirmed_at":   now,
		"updated_at":     now,
	}
	if err := s.orderRepo.UpdateStatus(order.ID, constants.OrderStatusConfirmed, updates); err != nil {
		return nil, ErrOrderUpdateFailed
	}
	order.Status = constants.OrderStatusConfirmed
	order.PaymentStatus = constants.PaymentStatusCompleted
	order.PaymentMethod = strings.TrimSpace(paymentMethod)
	order.ConfirmedAt = &now
	order.UpdatedAt = now
	return order, nil
}

// UpdateOrderStatus 管理端更新订单状态
func (s *OrderService) UpdateOrderStatus(orderID uint, targetStatus string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	target := strings.TrimSpace(targetStatus)
	if target == "" {
		return nil, ErrOrderStateConflict
	}
	if order.Status == target {
		return order, nil
	}
	if !isOrderTransitionAllowed(order.Status, target) {
		return nil, ErrOrderStateConflict
	}

	now := time.Now()
	updates := map[string]interface{}{
		"updated_at": now,
	}
	switch target {
	case constants.OrderStatusConfirmed:
		updates["confirmed_at"] = now
	case constants.OrderStatusShipped:
		updates["shipped_at"] = now
	case constants.OrderStatusDelivered:
		updates["delivered_at"] = now
	case constants.OrderStatusCancelled:
		updates["cancelled_at"] = now
	case constants.OrderStatusReturned:
		updates["refunded_at"] = now
		updates["payment_status"] = constants.PaymentStatusRefunded
	}

	if target == constants.OrderStatusCancelled {
		err = models.DB.Transaction(func(tx *gorm.DB) error {
			orderRepo := s.orderRepo.WithTx(tx)
			productRepo := s.productRepo.WithTx(tx)
			if err := orderRepo.UpdateStatus(order.ID, target, updates); err != nil {
				return ErrOrderUpdateFailed
			}
			for _, item := range order.Items {
				if _, err := productRepo.RestoreStock(item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
			return nil
		})
	} else {
		err = s.orderRepo.UpdateStatus(order.ID, target, updates)
	}
	if err != nil {
		return nil, ErrOrderUpdateFailed
	}

	order.Status = target
	order.UpdatedAt = now
	if v, ok := updates["confirmed_at"]; ok {
		if t, ok := v.(time.Time); ok {
			order.ConfirmedAt = &t
		}
	}
	if v, ok := updates["shipped_at"]; ok {
		if t, ok := v.(time.Time); ok {
			order.ShippedAt = &t
		}
	}
	if v, ok := updates["delivered_at"]; ok {
		if t, ok := v.(time.Time); ok {
			order.DeliveredAt = &t
		}
	}
	if v, ok := updates["cancelled_at"]; ok {
		if t, ok := v.(time.Time); ok {
			order.CancelledAt = &t
		}
	}
	if v, ok := updates["refunded_at"]; ok {
		if t, ok := v.(time.Time); ok {
			order.RefundedAt = &t
		}
	}

	switch target {
	case constants.OrderStatusDelivered:
		if s.commissionService != nil {
			if err := s.commissionService.ScheduleOrderConfirmations(order.ID, now); err != nil {
				logger.Warnw("order_schedule_commission_confirm_failed",
					"order_id", order.ID,
					"order_no", order.OrderNo,
					"error", err,
				)
			}
		}
	case constants.OrderStatusCancelled:
		s.dispatchCommissionCancel(order, "order_cancelled")
	case constants.OrderStatusReturned:
		s.dispatchCommissionCancel(order, "order_returned")
	}
	return order, nil
}

// CancelOrder 用户取消订单
func (s *OrderService) CancelOrder(orderID uint, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPending && order.Status != constants.OrderStatusConfirmed {
		return nil, ErrOrderStateConflict
	}

	now := time.Now()
	updates := map[string]interface{}{
		"cancelled_at": now,
		"updated_at":   now,
	}
	if order.PaymentStatus == constants.PaymentStatusCompleted {
		updates["payment_status"] = constants.PaymentStatusRefunded
		updates["refunded_at"] = now
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		if err := orderRepo.UpdateStatus(order.ID, constants.OrderStatusCancelled, updates); err != nil {
			return ErrOrderUpdateFailed
		}
		for _, item := range order.Items {
			if _, err := productRepo.RestoreStock(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, ErrOrderUpdateFailed
	}
	order.Status = constants.OrderStatusCancelled
	order.CancelledAt = &now
	order.UpdatedAt = now
	s.dispatchCommissionCancel(order, "order_cancelled")
	return order, nil
}

// RefundOrder 用户对已送达订单发起退货退款
func (s *OrderService) RefundOrder(orderID uint, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	// 仅已送达订单允许走退货通道，送达前只能取消
	if order.Status != constants.OrderStatusDelivered {
		return nil, ErrOrderStateConflict
	}

	now := time.Now()
	updates := map[string]interface{}{
		"refunded_at": now,
		"updated_at":  now,
	}
	if order.PaymentStatus == constants.PaymentStatusCompleted {
		updates["payment_status"] = constants.PaymentStatusRefunded
	}
	if err := s.orderRepo.UpdateStatus(order.ID, constants.OrderStatusReturned, updates); err != nil {
		return nil, ErrOrderUpdateFailed
	}
	order.Status = constants.OrderStatusReturned
	order.RefundedAt = &now
	order.UpdatedAt = now
	if _, ok := updates["payment_status"]; ok {
		order.PaymentStatus = constants.PaymentStatusRefunded
	}
	s.dispatchCommissionCancel(order, "order_returned")
	return order, nil
}

// GetOrderByUser 获取用户订单详情
func (s *OrderService) GetOrderByUser(orderID uint, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderByUserOrderNo 按订单号获取用户订单详情
func (s *OrderService) GetOrderByUserOrderNo(orderNo string, userID uint) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByOrderNoAndUser(orderNo, userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrdersByUser 获取用户订单列表
func (s *OrderService) ListOrdersByUser(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.UserID == 0 {
		return nil, 0, ErrOrderFetchFailed
	}
	orders, total, err := s.orderRepo.ListByUser(filter)
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	return orders, total, nil
}

// ListOrdersForAdmin 管理端订单列表
func (s *OrderService) ListOrdersForAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	orders, total, err := s.orderRepo.ListAdmin(filter)
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	return orders, total, nil
}

// GetOrderForAdmin 管理端订单详情
func (s *OrderService) GetOrderForAdmin(orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// generateOrderNo 订单号为 ORD + 日期时间 + 随机数字，唯一索引兜底碰撞
func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	randPart := randNumeric(6)
	return fmt.Sprintf("ORD%s%s", now, randPart)
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}

// mergeCreateOrderItems 合并重复商品的下单项
func mergeCreateOrderItems(items []CreateOrderItem) ([]CreateOrderItem, error) {
	if len(items) == 0 {
		return nil, ErrOrderItemInvalid
	}
	merged := make([]CreateOrderItem, 0, len(items))
	indexMap := make(map[uint]int)
	for _, item := range items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, ErrOrderItemInvalid
		}
		if idx, ok := indexMap[item.ProductID]; ok {
			merged[idx].Quantity += item.Quantity
			continue
		}
		indexMap[item.ProductID] = len(merged)
		merged = append(merged, CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return merged, nil
}
