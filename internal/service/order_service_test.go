package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var serviceTestDBSeq int

func setupServiceTestDB(t *testing.T, prefix string) *gorm.DB {
	t.Helper()
	serviceTestDBSeq++
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", prefix, serviceTestDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Seller{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Partner{},
		&models.PartnerClick{},
		&models.PartnerCommission{},
		&models.PayoutBatch{},
		&models.ApprovalLog{},
	)
	if err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	models.DB = db
	return db
}

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB, *mockSettingRepo) {
	t.Helper()
	db := setupServiceTestDB(t, "order_svc")

	settingRepo := newMockSettingRepo()
	settingService := NewSettingService(settingRepo)

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	sellerRepo := repository.NewSellerRepository(db)
	userRepo := repository.NewUserRepository(db)
	approvalRepo := repository.NewApprovalLogRepository(db)

	partnerService := NewPartnerService(partnerRepo, commissionRepo, userRepo, approvalRepo, settingService)
	commissionService := NewCommissionService(commissionRepo, partnerRepo, orderRepo, productRepo, sellerRepo, settingService)
	orderService := NewOrderService(orderRepo, productRepo, cartRepo, partnerService, commissionService, nil, settingService)
	return orderService, db, settingRepo
}

func seedOrderProduct(t *testing.T, db *gorm.DB, slug string, price int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID:    1,
		CategoryID:  1,
		Slug:        slug,
		Title:       "테스트 상품 " + slug,
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		Currency:    "KRW",
		Stock:       stock,
		Status:      constants.ProductStatusActive,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	return product
}

func testShippingAddress() Address {
	return Address{
		RecipientName: "김민지",
		Phone:         "010-1234-5678",
		Line1:         "테헤란로 123",
		City:          "서울",
		PostalCode:    "06234",
		CountryCode:   "kr",
	}
}

func TestCreateOrderPriceSummary(t *testing.T) {
	svc, db, settingRepo := setupOrderServiceTest(t)
	settingRepo.store[constants.SettingKeyOrderConfig] = models.JSON{
		"currency":                "KRW",
		"tax_rate_percent":        float64(0),
		"shipping_fee":            float64(2500),
		"free_shipping_threshold": float64(0),
	}
	product := seedOrderProduct(t, db, "hoodie", 12500, 10)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          7,
		Items:           []CreateOrderItem{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("new order status want pending got %s", order.Status)
	}
	if order.Currency != "KRW" {
		t.Fatalf("currency want KRW got %s", order.Currency)
	}
	if !order.Subtotal.Decimal.Equal(decimal.NewFromInt(25000)) {
		t.Fatalf("subtotal want 25000 got %s", order.Subtotal)
	}
	if !order.ShippingAmount.Decimal.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("shipping want 2500 got %s", order.ShippingAmount)
	}
	if !order.TotalAmount.Decimal.Equal(decimal.NewFromInt(27500)) {
		t.Fatalf("total want 27500 got %s", order.TotalAmount)
	}

	// 应付总额恒等于小计+运费+税费-优惠。
	expected := order.Subtotal.Decimal.
		Add(order.ShippingAmount.Decimal).
		Add(order.TaxAmount.Decimal).
		Sub(order.DiscountAmount.Decimal)
	if !order.TotalAmount.Decimal.Equal(expected) {
		t.Fatalf("price summary mismatch: total %s expected %s", order.TotalAmount, expected)
	}

	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Stock != 8 {
		t.Fatalf("stock after order want 8 got %d", got.Stock)
	}
}

func TestCreateOrderFreeShippingAndTax(t *testing.T) {
	svc, db, settingRepo := setupOrderServiceTest(t)
	settingRepo.store[constants.SettingKeyOrderConfig] = models.JSON{
		"currency":                "KRW",
		"tax_rate_percent":        float64(10),
		"shipping_fee":            float64(3000),
		"free_shipping_threshold": float64(20000),
	}
	product := seedOrderProduct(t, db, "serum", 18000, 5)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          7,
		Items:           []CreateOrderItem{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if !order.ShippingAmount.Decimal.IsZero() {
		t.Fatalf("subtotal above threshold should waive shipping, got %s", order.ShippingAmount)
	}
	if !order.TaxAmount.Decimal.Equal(decimal.NewFromInt(3600)) {
		t.Fatalf("tax want 3600 got %s", order.TaxAmount)
	}
	if !order.TotalAmount.Decimal.Equal(decimal.NewFromInt(39600)) {
		t.Fatalf("total want 39600 got %s", order.TotalAmount)
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	svc, db, _ := setupOrderServiceTest(t)
	product := seedOrderProduct(t, db, "limited", 9900, 1)

	_, err := svc.CreateOrder(CreateOrderInput{
		UserID:          3,
		Items:           []CreateOrderItem{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: testShippingAddress(),
	})
	if err != ErrProductStockInsufficient {
		t.Fatalf("want ErrProductStockInsufficient got %v", err)
	}

	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Stock != 1 {
		t.Fatalf("failed order should not consume stock, got %d", got.Stock)
	}
}

func TestCreateOrderMergesDuplicateItems(t *testing.T) {
	svc, db, _ := setupOrderServiceTest(t)
	product := seedOrderProduct(t, db, "mug", 8000, 10)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID: 3,
		Items: []CreateOrderItem{
			{ProductID: product.ID, Quantity: 1},
			{ProductID: product.ID, Quantity: 2},
		},
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if len(order.Items) != 1 {
		t.Fatalf("duplicate product should merge into one line, got %d", len(order.Items))
	}
	if order.Items[0].Quantity != 3 {
		t.Fatalf("merged quantity want 3 got %d", order.Items[0].Quantity)
	}
}

func TestMarkOrderPaidConfirmsOrder(t *testing.T) {
	svc, db, _ := setupOrderServiceTest(t)
	product := seedOrderProduct(t, db, "keyboard", 45000, 4)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          5,
		Items:           []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	paid, err := svc.MarkOrderPaid(order.ID, "bank_transfer")
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if paid.Status != constants.OrderStatusConfirmed {
		t.Fatalf("status want confirmed got %s", paid.Status)
	}
	if paid.PaymentStatus != constants.PaymentStatusCompleted {
		t.Fatalf("payment status want completed got %s", paid.PaymentStatus)
	}
	if paid.ConfirmedAt == nil {
		t.Fatalf("confirmed_at should be set")
	}

	// 重复标记支付应幂等返回。
	again, err := svc.MarkOrderPaid(order.ID, "bank_transfer")
	if err != nil {
		t.Fatalf("mark paid twice failed: %v", err)
	}
	if again.Status != constants.OrderStatusConfirmed {
		t.Fatalf("second mark paid status want confirmed got %s", again.Status)
	}
}

func TestOrderStatusTransitionGuards(t *testing.T) {
	cases := []struct {
		current string
		target  string
		allowed bool
	}{
		{constants.OrderStatusPending, constants.OrderStatusConfirmed, true},
		{constants.OrderStatusPending, constants.OrderStatusShipped, false},
		{constants.OrderStatusConfirmed, constants.OrderStatusProcessing, true},
		{constants.OrderStatusProcessing, constants.OrderStatusShipped, true},
		{constants.OrderStatusShipped, constants.OrderStatusDelivered, true},
		{constants.OrderStatusDelivered, constants.OrderStatusReturned, true},
		{constants.OrderStatusDelivered, constants.OrderStatusCancelled, false},
		{constants.OrderStatusCancelled, constants.OrderStatusConfirmed, false},
		{constants.OrderStatusReturned, constants.OrderStatusDelivered, false},
	}
	for _, tc := range cases {
		if got := isOrderTransitionAllowed(tc.current, tc.target); got != tc.allowed {
			t.Fatalf("transition %s -> %s want %v got %v", tc.current, tc.target, tc.allowed, got)
		}
	}
}

func TestCancelOrderRestoresStock(t *testing.T) {
	svc, db, _ := setupOrderServiceTest(t)
	product := seedOrderProduct(t, db, "lamp", 22000, 6)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          9,
		Items:           []CreateOrderItem{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	cancelled, err := svc.CancelOrder(order.ID, 9)
	if err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled {
		t.Fatalf("status want cancelled got %s", cancelled.Status)
	}

	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Stock != 6 {
		t.Fatalf("cancel should restore stock to 6, got %d", got.Stock)
	}

	// 已取消订单不可重复取消。
	if _, err := svc.CancelOrder(order.ID, 9); err != ErrOrderStateConflict {
		t.Fatalf("cancel twice want ErrOrderStateConflict got %v", err)
	}
}

func TestCancelOrderOwnershipCheck(t *testing.T) {
	svc, db, _ := setupOrderServiceTest(t)
	product := seedOrderProduct(t, db, "chair", 30000, 3)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          11,
		Items:           []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := svc.CancelOrder(order.ID, 12); err != ErrOrderNotFound {
		t.Fatalf("other user's cancel want ErrOrderNotFound got %v", err)
	}
}

func TestGenerateOrderNoShape(t *testing.T) {
	no := generateOrderNo()
	datePart := time.Now().Format("20060102")
	if !strings.HasPrefix(no, "ORD"+datePart) {
		t.Fatalf("order no want ORD%s prefix got %s", datePart, no)
	}
	// ORD + 14 位日期时间 + 6 位随机数字。
	if len(no) != 23 {
		t.Fatalf("order no length want 23 got %d (%s)", len(no), no)
	}
	for _, r := range no[3:] {
		if r < '0' || r > '9' {
			t.Fatalf("order no tail must be digits, got %s", no)
		}
	}
}

func TestCreateOrderBodyReferralCodeWins(t *testing.T) {
	svc, db, _ := setupOrderServiceTest(t)
	product := seedOrderProduct(t, db, "tote", 15000, 5)

	partners := []models.Partner{
		{UserID: 101, ReferralCode: "CKLOSER1", Tier: constants.PartnerTierBronze, Status: constants.PartnerStatusActive},
		{UserID: 102, ReferralCode: "BDYWINR1", Tier: constants.PartnerTierBronze, Status: constants.PartnerStatusActive},
	}
	if err := db.Create(&partners).Error; err != nil {
		t.Fatalf("seed partners failed: %v", err)
	}
	click := models.PartnerClick{PartnerID: partners[0].ID, VisitorKey: "visitor-body", LandingPath: "/c", CreatedAt: time.Now().Add(-time.Hour)}
	if err := db.Create(&click).Error; err != nil {
		t.Fatalf("seed click failed: %v", err)
	}

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          7,
		Items:           []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testShippingAddress(),
		PaymentMethod:   "card",
		ReferralCode:    "bdywinr1",
		VisitorKey:      "visitor-body",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.PartnerID == nil || *order.PartnerID != partners[1].ID {
		t.Fatalf("explicit referral code must beat the visitor cookie")
	}
	if order.AttributionSrc != constants.AttributionSourceURL {
		t.Fatalf("attribution source want url got %s", order.AttributionSrc)
	}
	if order.PaymentMethod != "card" {
		t.Fatalf("payment method want card got %q", order.PaymentMethod)
	}
}

func TestRefundOrderDeliveredOnly(t *testing.T) {
	svc, db, _ := setupOrderServiceTest(t)
	product := seedOrderProduct(t, db, "jacket", 50000, 3)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:          21,
		Items:           []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	// 送达前不允许退货。
	if _, err := svc.RefundOrder(order.ID, 21); err != ErrOrderStateConflict {
		t.Fatalf("refund before delivery want ErrOrderStateConflict got %v", err)
	}

	if _, err := svc.MarkOrderPaid(order.ID, "card"); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	for _, status := range []string{
		constants.OrderStatusProcessing,
		constants.OrderStatusShipped,
		constants.OrderStatusDelivered,
	} {
		if _, err := svc.UpdateOrderStatus(order.ID, status); err != nil {
			t.Fatalf("advance to %s failed: %v", status, err)
		}
	}

	if _, err := svc.RefundOrder(order.ID, 22); err != ErrOrderNotFound {
		t.Fatalf("other user's refund want ErrOrderNotFound got %v", err)
	}

	refunded, err := svc.RefundOrder(order.ID, 21)
	if err != nil {
		t.Fatalf("refund delivered order failed: %v", err)
	}
	if refunded.Status != constants.OrderStatusReturned {
		t.Fatalf("status want returned got %s", refunded.Status)
	}
	if refunded.PaymentStatus != constants.PaymentStatusRefunded {
		t.Fatalf("payment status want refunded got %s", refunded.PaymentStatus)
	}
	if refunded.RefundedAt == nil {
		t.Fatalf("refunded_at should be set")
	}
}

func TestAddressValidate(t *testing.T) {
	valid := testShippingAddress()
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid address should pass, got %v", err)
	}
	normalized := valid.Normalize()
	if normalized.CountryCode != "KR" {
		t.Fatalf("country code should uppercase to KR, got %s", normalized.CountryCode)
	}

	missing := valid
	missing.PostalCode = "  "
	if err := missing.Validate(); err != ErrAddressInvalid {
		t.Fatalf("missing postal code want ErrAddressInvalid got %v", err)
	}

	blank := Address{}
	if blank.Normalize().CountryCode != "KR" {
		t.Fatalf("empty country code should default to KR")
	}
}
