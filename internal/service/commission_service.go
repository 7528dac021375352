package service

import (
	"strings"
	"time"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/logger"
	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionService 合伙人佣金业务服务
type CommissionService struct {
	commissionRepo repository.CommissionRepository
	partnerRepo    repository.PartnerRepository
	orderRepo      repository.OrderRepository
	productRepo    repository.ProductRepository
	sellerRepo     repository.SellerRepository
	settingService *SettingService
}

// NewCommissionService 创建佣金服务
func NewCommissionService(
	commissionRepo repository.CommissionRepository,
	partnerRepo repository.PartnerRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	sellerRepo repository.SellerRepository,
	settingService *SettingService,
) *CommissionService {
	return &CommissionService{
		commissionRepo: commissionRepo,
		partnerRepo:    partnerRepo,
		orderRepo:      orderRepo,
		productRepo:    productRepo,
		sellerRepo:     sellerRepo,
		settingService: settingService,
	}
}

// allowedCommissionTransitions 佣金状态机（paid/cancelled 为终态）
var allowedCommissionTransitions = map[string]map[string]bool{
	constants.CommissionStatusPending: {
		constants.CommissionStatusConfirmed: true,
		constants.CommissionStatusCancelled: true,
		constants.CommissionStatusDisputed:  true,
	},
	constants.CommissionStatusConfirmed: {
		constants.CommissionStatusPaid:      true,
		constants.CommissionStatusCancelled: true,
		constants.CommissionStatusDisputed:  true,
	},
	constants.CommissionStatusDisputed: {
		constants.CommissionStatusConfirmed: true,
		constants.CommissionStatusCancelled: true,
	},
}

func isCommissionTransitionAllowed(current, target string) bool {
	nexts, ok := allowedCommissionTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

func (s *CommissionService) resolveCommissionSetting() CommissionSetting {
	if s == nil || s.settingService == nil {
		return CommissionDefaultSetting()
	}
	setting, err := s.settingService.GetCommissionSetting()
	if err != nil {
		return CommissionDefaultSetting()
	}
	return setting
}

// commissionRatePlan 单行佣金计算方案
type commissionRatePlan struct {
	Flat *decimal.Decimal
	Rate float64
}

// resolveRatePlan 按“商品覆盖 > 商家默认 > 合伙人/等级默认”解析佣金方案
func resolveRatePlan(product *models.Product, seller *models.Seller, partner *models.Partner, setting CommissionSetting) commissionRatePlan {
	if product != nil {
		if product.FlatCommission != nil {
			flat := product.FlatCommission.Decimal.Round(2)
			return commissionRatePlan{Flat: &flat}
		}
		if product.CommissionRate != nil {
			return commissionRatePlan{Rate: roundCommissionDecimal(*product.CommissionRate)}
		}
	}
	if seller != nil && seller.CommissionRate > 0 {
		return commissionRatePlan{Rate: roundCommissionDecimal(seller.CommissionRate)}
	}
	if partner != nil && partner.CommissionRate != nil {
		return commissionRatePlan{Rate: roundCommissionDecimal(*partner.CommissionRate)}
	}
	tier := ""
	if partner != nil {
		tier = partner.Tier
	}
	return commissionRatePlan{Rate: setting.RateForTier(tier)}
}

// ResolveOrderCommissions 解析订单归因佣金（逐行计算，单行失败不阻断其余行）
func (s *CommissionService) ResolveOrderCommissions(orderID uint) (int, error) {
	if orderID == 0 || s.commissionRepo == nil || s.orderRepo == nil {
		return 0, nil
	}
	setting := s.resolveCommissionSetting()
	if !setting.Enabled {
		return 0, nil
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return 0, ErrOrderFetchFailed
	}
	if order == nil || order.PartnerID == nil || *order.PartnerID == 0 {
		return 0, nil
	}
	if order.Status == constants.OrderStatusCancelled || order.Status == constants.OrderStatusReturned {
		return 0, nil
	}

	partner, err := s.partnerRepo.GetByID(*order.PartnerID)
	if err != nil {
		return 0, err
	}
	if partner == nil || partner.Status != constants.PartnerStatusActive {
		return 0, nil
	}
	if order.UserID > 0 && partner.UserID == order.UserID {
		// 自购订单不产生佣金。
		return 0, nil
	}

	click := s.loadAttributionClick(order)
	convertedAt := order.CreatedAt
	var clickedAt *time.Time
	var conversionMinutes *int
	if click != nil {
		t := click.CreatedAt
		clickedAt = &t
		minutes := int(convertedAt.Sub(t) / time.Minute)
		if minutes < 0 {
			minutes = 0
		}
		conversionMinutes = &minutes
	}

	sellers := s.loadSellersForItems(order.Items)
	products := s.loadProductsForItems(order.Items)

	created := 0
	now := time.Now()
	for i := range order.Items {
		item := order.Items[i]
		itemID := item.ID
		existing, err := s.commissionRepo.GetByOrderItem(order.ID, &itemID, constants.CommissionTypeSale)
		if err != nil {
			logger.Warnw("commission_idempotency_check_failed",
				"order_id", order.ID,
				"order_item_id", item.ID,
				"error", err,
			)
			continue
		}
		if existing != nil {
			continue
		}

		plan := resolveRatePlan(products[item.ProductID], sellers[item.SellerID], partner, setting)
		lineAmount := item.TotalPrice.Decimal.Round(2)
		var commissionAmount decimal.Decimal
		rate := plan.Rate
		if plan.Flat != nil {
			commissionAmount = plan.Flat.Round(2)
			rate = 0
		} else {
			commissionAmount = lineAmount.Mul(decimal.NewFromFloat(rate)).Div(decimal.NewFromInt(100)).Round(2)
		}
		if commissionAmount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		commission := &models.PartnerCommission{
			CommissionNo:          uuid.NewString(),
			PartnerID:             partner.ID,
			OrderID:               order.ID,
			OrderItemID:           &itemID,
			ProductID:             item.ProductID,
			SellerID:              item.SellerID,
			CommissionType:        constants.CommissionTypeSale,
			Status:                constants.CommissionStatusPending,
			OrderAmount:           models.NewMoneyFromDecimal(lineAmount),
			ProductPrice:          item.UnitPrice,
			Quantity:              item.Quantity,
			CommissionRate:        rate,
			CommissionAmount:      models.NewMoneyFromDecimal(commissionAmount),
			ReferralCode:          order.ReferralCode,
			ClientIP:              order.ClientIP,
			ConvertedAt:           &convertedAt,
			ClickedAt:             clickedAt,
			ConversionTimeMinutes: conversionMinutes,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		if click != nil {
			commission.UTMSource = click.UTMSource
			commission.UTMMedium = click.UTMMedium
			commission.UTMCampaign = click.UTMCampaign
			commission.UserAgent = click.UserAgent
			if click.ClientIP != "" {
				commission.ClientIP = click.ClientIP
			}
		}
		if err := s.commissionRepo.Create(commission); err != nil {
			logger.Warnw("commission_create_failed",
				"order_id", order.ID,
				"order_item_id", item.ID,
				"partner_id", partner.ID,
				"error", err,
			)
			continue
		}
		created++
	}

	if created > 0 {
		if err := s.partnerRepo.IncrementCounters(partner.ID, 0, 1); err != nil {
			logger.Warnw("commission_increment_conversion_failed",
				"partner_id", partner.ID,
				"error", err,
			)
		}
		if err := s.refreshPartnerEarnings(partner.ID); err != nil {
			logger.Warnw("commission_refresh_earnings_failed",
				"partner_id", partner.ID,
				"error", err,
			)
		}
	}
	return created, nil
}

func (s *CommissionService) loadAttributionClick(order *models.Order) *models.PartnerClick {
	if order == nil || order.ClickID == nil || s.partnerRepo == nil {
		return nil
	}
	click, err := s.partnerRepo.GetClickByID(*order.ClickID)
	if err != nil {
		logger.Warnw("commission_load_click_failed",
			"order_id", order.ID,
			"click_id", *order.ClickID,
			"error", err,
		)
		return nil
	}
	return click
}

func (s *CommissionService) loadProductsForItems(items []models.OrderItem) map[uint]*models.Product {
	result := make(map[uint]*models.Product)
	if s.productRepo == nil || len(items) == 0 {
		return result
	}
	ids := make([]uint, 0, len(items))
	seen := make(map[uint]struct{}, len(items))
	for _, item := range items {
		if item.ProductID == 0 {
			continue
		}
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		logger.Warnw("commission_load_products_failed", "error", err)
		return result
	}
	for i := range products {
		result[products[i].ID] = &products[i]
	}
	return result
}

func (s *CommissionService) loadSellersForItems(items []models.OrderItem) map[uint]*models.Seller {
	result := make(map[uint]*models.Seller)
	if s.sellerRepo == nil || len(items) == 0 {
		return result
	}
	ids := make([]uint, 0, len(items))
	seen := make(map[uint]struct{}, len(items))
	for _, item := range items {
		if item.SellerID == 0 {
			continue
		}
		if _, ok := seen[item.SellerID]; ok {
			continue
		}
		seen[item.SellerID] = struct{}{}
		ids = append(ids, item.SellerID)
	}
	sellers, err := s.sellerRepo.ListByIDs(ids)
	if err != nil {
		logger.Warnw("commission_load_sellers_failed", "error", err)
		return result
	}
	for i := range sellers {
		result[sellers[i].ID] = &sellers[i]
	}
	return result
}

// ScheduleOrderConfirmations 订单送达后为待确认佣金登记退货期到期时间
func (s *CommissionService) ScheduleOrderConfirmations(orderID uint, deliveredAt time.Time) error {
	if orderID == 0 || s.commissionRepo == nil {
		return nil
	}
	setting := s.resolveCommissionSetting()
	rows, err := s.commissionRepo.ListByOrder(orderID, []string{constants.CommissionStatusPending})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	now := time.Now()
	confirmAt := deliveredAt.Add(time.Duration(setting.ReturnWindowDays) * 24 * time.Hour)
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	if setting.ReturnWindowDays <= 0 {
		// 无退货期配置时送达即确认。
		if err := s.commissionRepo.BatchUpdate(ids, map[string]interface{}{
			"status":       constants.CommissionStatusConfirmed,
			"confirm_at":   confirmAt,
			"confirmed_at": now,
			"updated_at":   now,
		}); err != nil {
			return err
		}
		return s.refreshPartnerEarnings(rows[0].PartnerID)
	}
	return s.commissionRepo.BatchUpdate(ids, map[string]interface{}{
		"confirm_at": confirmAt,
		"updated_at": now,
	})
}

// ConfirmDueCommissions 批量确认退货期已过的待确认佣金
func (s *CommissionService) ConfirmDueCommissions(now time.Time) (int64, error) {
	if s.commissionRepo == nil {
		return 0, nil
	}
	partnerIDs, err := s.commissionRepo.ListDuePartnerIDs(now)
	if err != nil {
		return 0, err
	}
	if len(partnerIDs) == 0 {
		return 0, nil
	}
	affected, err := s.commissionRepo.MarkDuePendingConfirmed(now, now)
	if err != nil {
		return 0, err
	}
	for _, partnerID := range partnerIDs {
		if err := s.refreshPartnerEarnings(partnerID); err != nil {
			logger.Warnw("commission_refresh_earnings_failed",
				"partner_id", partnerID,
				"error", err,
			)
		}
	}
	return affected, nil
}

// CancelOrderCommissions 订单取消/退货后的佣金逆向（已结算佣金不回收）
func (s *CommissionService) CancelOrderCommissions(orderID uint, reason string) (int, error) {
	if orderID == 0 || s.commissionRepo == nil {
		return 0, nil
	}
	reasonText := strings.TrimSpace(reason)
	if reasonText == "" {
		reasonText = "order_cancelled"
	}

	cancelled := 0
	partnerIDs := make(map[uint]struct{})
	err := s.commissionRepo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.commissionRepo.WithTx(tx)
		rows, err := repoTx.ListByOrderForUpdate(orderID, []string{
			constants.CommissionStatusPending,
			constants.CommissionStatusConfirmed,
		})
		if err != nil {
			return err
		}
		now := time.Now()
		for i := range rows {
			item := rows[i]
			item.Status = constants.CommissionStatusCancelled
			item.CancellationReason = reasonText
			item.ConfirmAt = nil
			item.UpdatedAt = now
			if err := repoTx.Update(&item); err != nil {
				return err
			}
			cancelled++
			partnerIDs[item.PartnerID] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for partnerID := range partnerIDs {
		if err := s.refreshPartnerEarnings(partnerID); err != nil {
			logger.Warnw("commission_refresh_earnings_failed",
				"partner_id", partnerID,
				"error", err,
			)
		}
	}
	return cancelled, nil
}

// DisputeCommission 将佣金标记为争议
func (s *CommissionService) DisputeCommission(commissionID uint, reason string) (*models.PartnerCommission, error) {
	if commissionID == 0 || s.commissionRepo == nil {
		return nil, ErrCommissionNotFound
	}
	reasonText := strings.TrimSpace(reason)
	if reasonText == "" {
		return nil, ErrInvalidInput
	}

	err := s.commissionRepo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.commissionRepo.WithTx(tx)
		commission, err := repoTx.GetByIDForUpdate(commissionID)
		if err != nil {
			return err
		}
		if commission == nil {
			return ErrCommissionNotFound
		}
		if !isCommissionTransitionAllowed(commission.Status, constants.CommissionStatusDisputed) {
			return ErrCommissionStateConflict
		}
		now := time.Now()
		commission.Status = constants.CommissionStatusDisputed
		commission.DisputeReason = reasonText
		commission.UpdatedAt = now
		return repoTx.Update(commission)
	})
	if err != nil {
		return nil, err
	}
	return s.commissionRepo.GetByID(commissionID)
}

// ResolveDispute 管理端裁决争议佣金（confirm 恢复确认，cancel 作废）
func (s *CommissionService) ResolveDispute(commissionID uint, action string, reason string) (*models.PartnerCommission, error) {
	if commissionID == 0 || s.commissionRepo == nil {
		return nil, ErrCommissionNotFound
	}
	act := strings.ToLower(strings.TrimSpace(action))
	if act != constants.ApprovalActionResolveConfirm && act != constants.ApprovalActionResolveCancel {
		return nil, ErrInvalidInput
	}

	var partnerID uint
	err := s.commissionRepo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.commissionRepo.WithTx(tx)
		commission, err := repoTx.GetByIDForUpdate(commissionID)
		if err != nil {
			return err
		}
		if commission == nil {
			return ErrCommissionNotFound
		}
		if commission.Status != constants.CommissionStatusDisputed {
			return ErrCommissionStateConflict
		}
		now := time.Now()
		if act == constants.ApprovalActionResolveConfirm {
			commission.Status = constants.CommissionStatusConfirmed
			commission.ConfirmedAt = &now
		} else {
			commission.Status = constants.CommissionStatusCancelled
			reasonText := strings.TrimSpace(reason)
			if reasonText == "" {
				reasonText = "dispute_rejected"
			}
			commission.CancellationReason = reasonText
			commission.ConfirmAt = nil
		}
		commission.UpdatedAt = now
		partnerID = commission.PartnerID
		return repoTx.Update(commission)
	})
	if err != nil {
		return nil, err
	}
	if err := s.refreshPartnerEarnings(partnerID); err != nil {
		logger.Warnw("commission_refresh_earnings_failed",
			"partner_id", partnerID,
			"error", err,
		)
	}
	return s.commissionRepo.GetByID(commissionID)
}

// CreatePayoutBatch 创建结算批次并将已确认佣金转为已结算
func (s *CommissionService) CreatePayoutBatch(partnerID uint, commissionIDs []uint, operatorAdminID uint) (*models.PayoutBatch, error) {
	if partnerID == 0 || len(commissionIDs) == 0 || s.commissionRepo == nil {
		return nil, ErrPayoutBatchInvalid
	}

	var batchID uint
	err := s.commissionRepo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.commissionRepo.WithTx(tx)
		rows, err := repoTx.ListByIDsForUpdate(commissionIDs)
		if err != nil {
			return err
		}
		if len(rows) != len(commissionIDs) {
			return ErrPayoutBatchInvalid
		}
		total := decimal.Zero
		ids := make([]uint, 0, len(rows))
		for _, row := range rows {
			if row.PartnerID != partnerID {
				return ErrPayoutBatchInvalid
			}
			if row.Status != constants.CommissionStatusConfirmed {
				return ErrCommissionStateConflict
			}
			total = total.Add(row.CommissionAmount.Decimal).Round(2)
			ids = append(ids, row.ID)
		}
		if total.LessThanOrEqual(decimal.Zero) {
			return ErrPayoutBatchInvalid
		}

		now := time.Now()
		batch := &models.PayoutBatch{
			BatchNo:         uuid.NewString(),
			PartnerID:       partnerID,
			Status:          constants.PayoutBatchStatusProcessing,
			TotalAmount:     models.NewMoneyFromDecimal(total),
			CommissionCount: len(ids),
			OperatorAdminID: operatorAdminID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := repoTx.CreatePayoutBatch(batch); err != nil {
			return err
		}
		if err := repoTx.BatchUpdate(ids, map[string]interface{}{
			"status":          constants.CommissionStatusPaid,
			"paid_at":         now,
			"payout_batch_id": batch.ID,
			"updated_at":      now,
		}); err != nil {
			return err
		}
		batch.Status = constants.PayoutBatchStatusCompleted
		batch.CompletedAt = &now
		batch.UpdatedAt = now
		if err := repoTx.UpdatePayoutBatch(batch); err != nil {
			return err
		}
		batchID = batch.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.refreshPartnerEarnings(partnerID); err != nil {
		logger.Warnw("commission_refresh_earnings_failed",
			"partner_id", partnerID,
			"error", err,
		)
	}
	return s.commissionRepo.GetPayoutBatchByID(batchID)
}

// GetCommission 查询佣金详情
func (s *CommissionService) GetCommission(commissionID uint) (*models.PartnerCommission, error) {
	if commissionID == 0 || s.commissionRepo == nil {
		return nil, ErrCommissionNotFound
	}
	commission, err := s.commissionRepo.GetByID(commissionID)
	if err != nil {
		return nil, err
	}
	if commission == nil {
		return nil, ErrCommissionNotFound
	}
	return commission, nil
}

// ListCommissions 查询佣金记录
func (s *CommissionService) ListCommissions(filter repository.CommissionListFilter) ([]models.PartnerCommission, int64, error) {
	if s.commissionRepo == nil {
		return []models.PartnerCommission{}, 0, nil
	}
	return s.commissionRepo.List(filter)
}

// ListPayoutBatches 查询结算批次
func (s *CommissionService) ListPayoutBatches(filter repository.PayoutBatchListFilter) ([]models.PayoutBatch, int64, error) {
	if s.commissionRepo == nil {
		return []models.PayoutBatch{}, 0, nil
	}
	return s.commissionRepo.ListPayoutBatches(filter)
}

// GetPayoutBatch 查询结算批次详情
func (s *CommissionService) GetPayoutBatch(batchID uint) (*models.PayoutBatch, error) {
	if batchID == 0 || s.commissionRepo == nil {
		return nil, ErrPayoutBatchNotFound
	}
	batch, err := s.commissionRepo.GetPayoutBatchByID(batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, ErrPayoutBatchNotFound
	}
	return batch, nil
}

// refreshPartnerEarnings 按状态汇总重算合伙人佣金余额快照
func (s *CommissionService) refreshPartnerEarnings(partnerID uint) error {
	if partnerID == 0 || s.partnerRepo == nil || s.commissionRepo == nil {
		return nil
	}
	pending, err := s.commissionRepo.SumByPartner(partnerID, []string{constants.CommissionStatusPending})
	if err != nil {
		return err
	}
	confirmed, err := s.commissionRepo.SumByPartner(partnerID, []string{constants.CommissionStatusConfirmed})
	if err != nil {
		return err
	}
	paid, err := s.commissionRepo.SumByPartner(partnerID, []string{constants.CommissionStatusPaid})
	if err != nil {
		return err
	}
	total := pending.Add(confirmed).Add(paid).Round(2)
	return s.partnerRepo.AddEarnings(partnerID, map[string]interface{}{
		"pending_earnings":   models.NewMoneyFromDecimal(pending),
		"confirmed_earnings": models.NewMoneyFromDecimal(confirmed),
		"paid_earnings":      models.NewMoneyFromDecimal(paid),
		"total_earnings":     models.NewMoneyFromDecimal(total),
		"updated_at":         time.Now(),
	})
}
