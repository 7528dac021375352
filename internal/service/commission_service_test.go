package service

import (
	"testing"
	"time"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type commissionTestEnv struct {
	db             *gorm.DB
	svc            *CommissionService
	partnerRepo    repository.PartnerRepository
	commissionRepo repository.CommissionRepository
	settingRepo    *mockSettingRepo
}

func setupCommissionServiceTest(t *testing.T) *commissionTestEnv {
	t.Helper()
	db := setupServiceTestDB(t, "commission_svc")

	settingRepo := newMockSettingRepo()
	settingService := NewSettingService(settingRepo)
	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	sellerRepo := repository.NewSellerRepository(db)

	svc := NewCommissionService(commissionRepo, partnerRepo, orderRepo, productRepo, sellerRepo, settingService)
	return &commissionTestEnv{
		db:             db,
		svc:            svc,
		partnerRepo:    partnerRepo,
		commissionRepo: commissionRepo,
		settingRepo:    settingRepo,
	}
}

func (env *commissionTestEnv) seedPartner(t *testing.T, userID uint, code string, mutate func(*models.Partner)) *models.Partner {
	t.Helper()
	partner := &models.Partner{
		UserID:       userID,
		ReferralCode: code,
		Tier:         constants.PartnerTierBronze,
		Status:       constants.PartnerStatusActive,
	}
	if mutate != nil {
		mutate(partner)
	}
	if err := env.db.Create(partner).Error; err != nil {
		t.Fatalf("seed partner failed: %v", err)
	}
	return partner
}

func (env *commissionTestEnv) seedSeller(t *testing.T, userID uint, rate float64) *models.Seller {
	t.Helper()
	seller := &models.Seller{
		UserID:         userID,
		Name:           "테스트 스토어",
		Status:         constants.SellerStatusActive,
		CommissionRate: rate,
	}
	if err := env.db.Create(seller).Error; err != nil {
		t.Fatalf("seed seller failed: %v", err)
	}
	return seller
}

func (env *commissionTestEnv) seedProduct(t *testing.T, sellerID uint, slug string, price int64, mutate func(*models.Product)) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID:    sellerID,
		CategoryID:  1,
		Slug:        slug,
		Title:       "상품 " + slug,
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		Currency:    "KRW",
		Stock:       100,
		Status:      constants.ProductStatusActive,
	}
	if mutate != nil {
		mutate(product)
	}
	if err := env.db.Create(product).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	return product
}

func (env *commissionTestEnv) seedAttributedOrder(t *testing.T, buyerID uint, partner *models.Partner, lines []models.OrderItem) *models.Order {
	t.Helper()
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.TotalPrice.Decimal)
	}
	pid := partner.ID
	order := &models.Order{
		OrderNo:       "LM-TEST-" + uuid.NewString()[:8],
		UserID:        buyerID,
		Status:        constants.OrderStatusConfirmed,
		PaymentStatus: constants.PaymentStatusCompleted,
		Currency:      "KRW",
		Subtotal:      models.NewMoneyFromDecimal(subtotal),
		TotalAmount:   models.NewMoneyFromDecimal(subtotal),
		PartnerID:     &pid,
		ReferralCode:  partner.ReferralCode,
	}
	if err := env.db.Create(order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	for i := range lines {
		lines[i].OrderID = order.ID
	}
	if err := env.db.Create(&lines).Error; err != nil {
		t.Fatalf("seed order items failed: %v", err)
	}
	return order
}

func orderLine(product *models.Product, quantity int) models.OrderItem {
	unit := product.PriceAmount.Decimal
	return models.OrderItem{
		ProductID:  product.ID,
		SellerID:   product.SellerID,
		Title:      product.Title,
		UnitPrice:  models.NewMoneyFromDecimal(unit),
		Quantity:   quantity,
		TotalPrice: models.NewMoneyFromDecimal(unit.Mul(decimal.NewFromInt(int64(quantity)))),
	}
}

func TestResolveOrderCommissionsSellerRate(t *testing.T) {
	env := setupCommissionServiceTest(t)
	partner := env.seedPartner(t, 100, "PTNSELL1", nil)
	seller := env.seedSeller(t, 200, 5)
	product := env.seedProduct(t, seller.ID, "rate-basic", 10000, nil)
	order := env.seedAttributedOrder(t, 300, partner, []models.OrderItem{orderLine(product, 2)})

	created, err := env.svc.ResolveOrderCommissions(order.ID)
	if err != nil {
		t.Fatalf("resolve commissions failed: %v", err)
	}
	if created != 1 {
		t.Fatalf("created want 1 got %d", created)
	}

	var commission models.PartnerCommission
	if err := env.db.Where("order_id = ?", order.ID).First(&commission).Error; err != nil {
		t.Fatalf("load commission failed: %v", err)
	}
	if commission.Status != constants.CommissionStatusPending {
		t.Fatalf("status want pending got %s", commission.Status)
	}
	if commission.CommissionRate != 5 {
		t.Fatalf("rate want 5 got %v", commission.CommissionRate)
	}
	// 10000 x 2 x 5% = 1000
	if !commission.CommissionAmount.Decimal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("amount want 1000 got %s", commission.CommissionAmount)
	}

	// 重复解析同一订单应幂等。
	again, err := env.svc.ResolveOrderCommissions(order.ID)
	if err != nil {
		t.Fatalf("resolve twice failed: %v", err)
	}
	if again != 0 {
		t.Fatalf("second resolve want 0 got %d", again)
	}
}

func TestResolveOrderCommissionsRatePrecedence(t *testing.T) {
	env := setupCommissionServiceTest(t)
	partnerRate := 7.0
	partner := env.seedPartner(t, 100, "PTNPREC1", func(p *models.Partner) {
		p.CommissionRate = &partnerRate
	})
	seller := env.seedSeller(t, 200, 5)
	sellerNoRate := env.seedSeller(t, 201, 0)

	flat := models.NewMoneyFromDecimal(decimal.NewFromInt(1500))
	productRate := 8.0
	flatProduct := env.seedProduct(t, seller.ID, "flat-override", 10000, func(p *models.Product) {
		p.FlatCommission = &flat
		p.CommissionRate = &productRate
	})
	rateProduct := env.seedProduct(t, seller.ID, "rate-override", 10000, func(p *models.Product) {
		p.CommissionRate = &productRate
	})
	sellerProduct := env.seedProduct(t, seller.ID, "seller-default", 10000, nil)
	partnerProduct := env.seedProduct(t, sellerNoRate.ID, "partner-own", 10000, nil)

	order := env.seedAttributedOrder(t, 300, partner, []models.OrderItem{
		orderLine(flatProduct, 3),
		orderLine(rateProduct, 1),
		orderLine(sellerProduct, 1),
		orderLine(partnerProduct, 1),
	})

	created, err := env.svc.ResolveOrderCommissions(order.ID)
	if err != nil {
		t.Fatalf("resolve commissions failed: %v", err)
	}
	if created != 4 {
		t.Fatalf("created want 4 got %d", created)
	}

	assertLine := func(productID uint, wantRate float64, wantAmount int64) {
		t.Helper()
		var commission models.PartnerCommission
		err := env.db.Where("order_id = ? AND product_id = ?", order.ID, productID).First(&commission).Error
		if err != nil {
			t.Fatalf("load commission for product %d failed: %v", productID, err)
		}
		if commission.CommissionRate != wantRate {
			t.Fatalf("product %d rate want %v got %v", productID, wantRate, commission.CommissionRate)
		}
		if !commission.CommissionAmount.Decimal.Equal(decimal.NewFromInt(wantAmount)) {
			t.Fatalf("product %d amount want %d got %s", productID, wantAmount, commission.CommissionAmount)
		}
	}

	// 固定佣金按原额计提，不乘数量。
	assertLine(flatProduct.ID, 0, 1500)
	assertLine(rateProduct.ID, 8, 800)
	assertLine(sellerProduct.ID, 5, 500)
	// 商家未配置时回退合伙人自有比例。
	assertLine(partnerProduct.ID, 7, 700)
}

func TestResolveOrderCommissionsTierFallback(t *testing.T) {
	env := setupCommissionServiceTest(t)
	partner := env.seedPartner(t, 100, "PTNTIER1", func(p *models.Partner) {
		p.Tier = constants.PartnerTierSilver
	})
	seller := env.seedSeller(t, 200, 0)
	product := env.seedProduct(t, seller.ID, "tier-default", 10000, nil)
	order := env.seedAttributedOrder(t, 300, partner, []models.OrderItem{orderLine(product, 1)})

	created, err := env.svc.ResolveOrderCommissions(order.ID)
	if err != nil {
		t.Fatalf("resolve commissions failed: %v", err)
	}
	if created != 1 {
		t.Fatalf("created want 1 got %d", created)
	}

	var commission models.PartnerCommission
	if err := env.db.Where("order_id = ?", order.ID).First(&commission).Error; err != nil {
		t.Fatalf("load commission failed: %v", err)
	}
	if commission.CommissionRate != 5 {
		t.Fatalf("silver tier default rate want 5 got %v", commission.CommissionRate)
	}
}

func TestResolveOrderCommissionsSelfPurchase(t *testing.T) {
	env := setupCommissionServiceTest(t)
	partner := env.seedPartner(t, 100, "PTNSELF1", nil)
	seller := env.seedSeller(t, 200, 5)
	product := env.seedProduct(t, seller.ID, "self-buy", 10000, nil)
	order := env.seedAttributedOrder(t, partner.UserID, partner, []models.OrderItem{orderLine(product, 1)})

	created, err := env.svc.ResolveOrderCommissions(order.ID)
	if err != nil {
		t.Fatalf("resolve commissions failed: %v", err)
	}
	if created != 0 {
		t.Fatalf("self purchase should not create commissions, got %d", created)
	}
}

func TestResolveOrderCommissionsSkipsCancelledOrder(t *testing.T) {
	env := setupCommissionServiceTest(t)
	partner := env.seedPartner(t, 100, "PTNCNCL1", nil)
	seller := env.seedSeller(t, 200, 5)
	product := env.seedProduct(t, seller.ID, "cancelled-order", 10000, nil)
	order := env.seedAttributedOrder(t, 300, partner, []models.OrderItem{orderLine(product, 1)})
	if err := env.db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", constants.OrderStatusCancelled).Error; err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}

	created, err := env.svc.ResolveOrderCommissions(order.ID)
	if err != nil {
		t.Fatalf("resolve commissions failed: %v", err)
	}
	if created != 0 {
		t.Fatalf("cancelled order should yield no commissions, got %d", created)
	}
}

func TestCommissionTransitionGuards(t *testing.T) {
	cases := []struct {
		current string
		target  string
		allowed bool
	}{
		{constants.CommissionStatusPending, constants.CommissionStatusConfirmed, true},
		{constants.CommissionStatusPending, constants.CommissionStatusCancelled, true},
		{constants.CommissionStatusPending, constants.CommissionStatusDisputed, true},
		{constants.CommissionStatusPending, constants.CommissionStatusPaid, false},
		{constants.CommissionStatusConfirmed, constants.CommissionStatusPaid, true},
		{constants.CommissionStatusConfirmed, constants.CommissionStatusDisputed, true},
		{constants.CommissionStatusDisputed, constants.CommissionStatusConfirmed, true},
		{constants.CommissionStatusDisputed, constants.CommissionStatusCancelled, true},
		{constants.CommissionStatusPaid, constants.CommissionStatusCancelled, false},
		{constants.CommissionStatusPaid, constants.CommissionStatusConfirmed, false},
		{constants.CommissionStatusCancelled, constants.CommissionStatusConfirmed, false},
	}
	for _, tc := range cases {
		if got := isCommissionTransitionAllowed(tc.current, tc.target); got != tc.allowed {
			t.Fatalf("transition %s -> %s want %v got %v", tc.current, tc.target, tc.allowed, got)
		}
	}
}

func TestDisputeAndResolveCommission(t *testing.T) {
	env := setupCommissionServiceTest(t)
	partner := env.seedPartner(t, 100, "PTNDISP1", nil)
	seller := env.seedSeller(t, 200, 5)
	product := env.seedProduct(t, seller.ID, "disputed", 10000, nil)
	order := env.seedAttributedOrder(t, 300, partner, []models.OrderItem{orderLine(product, 2)})
	if _, err := env.svc.ResolveOrderCommissions(order.ID); err != nil {
		t.Fatalf("resolve commissions failed: %v", err)
	}
	var commission models.PartnerCommission
	if err := env.db.Where("order_id = ?", order.ID).First(&commission).Error; err != nil {
		t.Fatalf("load commission failed: %v", err)
	}

	disputed, err := env.svc.DisputeCommission(commission.ID, "배송 누락 신고")
	if err != nil {
		t.Fatalf("dispute failed: %v", err)
	}
	if disputed.Status != constants.CommissionStatusDisputed {
		t.Fatalf("status want disputed got %s", disputed.Status)
	}
	if disputed.DisputeReason != "배송 누락 신고" {
		t.Fatalf("dispute reason not recorded: %s", disputed.DisputeReason)
	}

	// 争议中不可重复争议。
	if _, err := env.svc.DisputeCommission(commission.ID, "again"); err != ErrCommissionStateConflict {
		t.Fatalf("double dispute want ErrCommissionStateConflict got %v", err)
	}

	resolved, err := env.svc.ResolveDispute(commission.ID, constants.ApprovalActionResolveConfirm, "")
	if err != nil {
		t.Fatalf("resolve dispute failed: %v", err)
	}
	if resolved.Status != constants.CommissionStatusConfirmed {
		t.Fatalf("resolved status want confirmed got %s", resolved.Status)
	}
	if resolved.ConfirmedAt == nil {
		t.Fatalf("confirmed_at should be set on resolve")
	}

	// 非争议状态不可裁决。
	if _, err := env.svc.ResolveDispute(commission.ID, constants.ApprovalActionResolveCancel, ""); err != ErrCommissionStateConflict {
		t.Fatalf("resolve non-disputed want ErrCommissionStateConflict got %v", err)
	}
}

func TestCancelOrderCommissionsKeepsPaid(t *testing.T) {
	env := setupCommissionServiceTest(t)
	partner := env.seedPartner(t, 100, "PTNKEEP1", nil)
	seller := env.seedSeller(t, 200, 5)
	pending := env.seedProduct(t, seller.ID, "pending-line", 10000, nil)
	paidLine := env.seedProduct(t, seller.ID, "paid-line", 20000, nil)
	order := env.seedAttributedOrder(t, 300, partner, []models.OrderItem{
		orderLine(pending, 1),
		orderLine(paidLine, 1),
	})
	if _, err := env.svc.ResolveOrderCommissions(order.ID); err != nil {
		t.Fatalf("resolve commissions failed: %v", err)
	}
	now := time.Now()
	if err := env.db.Model(&models.PartnerCommission{}).
		Where("order_id = ? AND product_id = ?", order.ID, paidLine.ID).
		Updates(map[string]interface{}{
			"status":  constants.CommissionStatusPaid,
			"paid_at": now,
		}).Error; err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	cancelled, err := env.svc.CancelOrderCommissions(order.ID, "order_returned")
	if err != nil {
		t.Fatalf("cancel commissions failed: %v", err)
	}
	if cancelled != 1 {
		t.Fatalf("cancelled want 1 got %d", cancelled)
	}

	var rows []models.PartnerCommission
	if err := env.db.Where("order_id = ?", order.ID).Order("product_id").Find(&rows).Error; err != nil {
		t.Fatalf("load commissions failed: %v", err)
	}
	for _, row := range rows {
		switch row.ProductID {
		case pending.ID:
			if row.Status != constants.CommissionStatusCancelled {
				t.Fatalf("pending line should cancel, got %s", row.Status)
			}
			if row.CancellationReason != "order_returned" {
				t.Fatalf("cancellation reason want order_returned got %s", row.CancellationReason)
			}
		case paidLine.ID:
			if row.Status != constants.CommissionStatusPaid {
				t.Fatalf("paid line must not be clawed back, got %s", row.Status)
			}
		}
	}
}

func TestScheduleAndConfirmDueCommissions(t *testing.T) {
	env := setupCommissionServiceTest(t)
	partner := env.seedPartner(t, 100, "PTNDUE01", nil)
	seller := env.seedSeller(t, 200, 5)
	product := env.seedProduct(t, seller.ID, "due-confirm", 10000, nil)
	order := env.seedAttributedOrder(t, 300, partner, []models.OrderItem{orderLine(product, 1)})
	if _, err := env.svc.ResolveOrderCommissions(order.ID); err != nil {
		t.Fatalf("resolve commissions failed: %v", err)
	}

	deliveredAt := time.Now().Add(-10 * 24 * time.Hour)
	if err := env.svc.ScheduleOrderConfirmations(order.ID, deliveredAt); err != nil {
		t.Fatalf("schedule confirmations failed: %v", err)
	}

	var commission models.PartnerCommission
	if err := env.db.Where("order_id = ?", order.ID).First(&commission).Error; err != nil {
		t.Fatalf("load commission failed: %v", err)
	}
	if commission.Status != constants.CommissionStatusPending {
		t.Fatalf("before due status want pending got %s", commission.Status)
	}
	if commission.ConfirmAt == nil {
		t.Fatalf("confirm_at should be scheduled")
	}

	affected, err := env.svc.ConfirmDueCommissions(time.Now())
	if err != nil {
		t.Fatalf("confirm due failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("confirmed want 1 got %d", affected)
	}
	if err := env.db.Where("order_id = ?", order.ID).First(&commission).Error; err != nil {
		t.Fatalf("reload commission failed: %v", err)
	}
	if commission.Status != constants.CommissionStatusConfirmed {
		t.Fatalf("after due status want confirmed got %s", commission.Status)
	}
}

func TestCreatePayoutBatchLifecycle(t *testing.T) {
	env := setupCommissionServiceTest(t)
	partner := env.seedPartner(t, 100, "PTNPAY01", nil)
	seller := env.seedSeller(t, 200, 5)
	product := env.seedProduct(t, seller.ID, "payout-line", 10000, nil)
	order := env.seedAttributedOrder(t, 300, partner, []models.OrderItem{orderLine(product, 2)})
	if _, err := env.svc.ResolveOrderCommissions(order.ID); err != nil {
		t.Fatalf("resolve commissions failed: %v", err)
	}
	var commission models.PartnerCommission
	if err := env.db.Where("order_id = ?", order.ID).First(&commission).Error; err != nil {
		t.Fatalf("load commission failed: %v", err)
	}

	// 待确认佣金不可结算。
	if _, err := env.svc.CreatePayoutBatch(partner.ID, []uint{commission.ID}, 1); err != ErrCommissionStateConflict {
		t.Fatalf("payout of pending want ErrCommissionStateConflict got %v", err)
	}

	now := time.Now()
	if err := env.db.Model(&models.PartnerCommission{}).Where("id = ?", commission.ID).
		Updates(map[string]interface{}{
			"status":       constants.CommissionStatusConfirmed,
			"confirmed_at": now,
		}).Error; err != nil {
		t.Fatalf("confirm commission failed: %v", err)
	}

	batch, err := env.svc.CreatePayoutBatch(partner.ID, []uint{commission.ID}, 1)
	if err != nil {
		t.Fatalf("create payout batch failed: %v", err)
	}
	if batch.Status != constants.PayoutBatchStatusCompleted {
		t.Fatalf("batch status want completed got %s", batch.Status)
	}
	if !batch.TotalAmount.Decimal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("batch total want 1000 got %s", batch.TotalAmount)
	}
	if batch.CommissionCount != 1 {
		t.Fatalf("batch count want 1 got %d", batch.CommissionCount)
	}

	if err := env.db.First(&commission, commission.ID).Error; err != nil {
		t.Fatalf("reload commission failed: %v", err)
	}
	if commission.Status != constants.CommissionStatusPaid {
		t.Fatalf("commission status want paid got %s", commission.Status)
	}
	if commission.PayoutBatchID == nil || *commission.PayoutBatchID != batch.ID {
		t.Fatalf("commission should reference payout batch %d", batch.ID)
	}
	if commission.PaidAt == nil {
		t.Fatalf("paid_at should be set")
	}

	// 其他合伙人的佣金不可混入批次。
	other := env.seedPartner(t, 101, "PTNPAY02", nil)
	if _, err := env.svc.CreatePayoutBatch(other.ID, []uint{commission.ID}, 1); err != ErrPayoutBatchInvalid {
		t.Fatalf("cross-partner payout want ErrPayoutBatchInvalid got %v", err)
	}
}

func TestResolveRatePlanFlatVerbatim(t *testing.T) {
	flat := models.NewMoneyFromDecimal(decimal.NewFromInt(1500))
	product := &models.Product{FlatCommission: &flat}
	setting := CommissionDefaultSetting()

	plan := resolveRatePlan(product, &models.Seller{CommissionRate: 5}, &models.Partner{Tier: constants.PartnerTierGold}, setting)
	if plan.Flat == nil {
		t.Fatalf("flat override should win over every rate")
	}
	if !plan.Flat.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("flat amount want 1500 got %s", plan.Flat)
	}

	plan = resolveRatePlan(nil, nil, &models.Partner{Tier: constants.PartnerTierGold}, setting)
	if plan.Rate != 8 {
		t.Fatalf("gold tier default want 8 got %v", plan.Rate)
	}

	plan = resolveRatePlan(nil, nil, nil, setting)
	if plan.Rate != setting.RateForTier("") {
		t.Fatalf("missing partner should fall back to base tier rate")
	}
}
