package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommissionRepository 佣金与结算批次数据访问接口
type CommissionRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CommissionRepository

	GetByID(id uint) (*models.PartnerCommission, error)
	GetByIDForUpdate(id uint) (*models.PartnerCommission, error)
	GetByOrderItem(orderID uint, orderItemID *uint, commissionType string) (*models.PartnerCommission, error)
	Create(commission *models.PartnerCommission) error
	Update(commission *models.PartnerCommission) error
	List(filter CommissionListFilter) ([]models.PartnerCommission, int64, error)
	ListByOrder(orderID uint, statuses []string) ([]models.PartnerCommission, error)
	ListByOrderForUpdate(orderID uint, statuses []string) ([]models.PartnerCommission, error)
	ListByIDsForUpdate(ids []uint) ([]models.PartnerCommission, error)
	BatchUpdate(ids []uint, updates map[string]interface{}) error
	MarkDuePendingConfirmed(before, now time.Time) (int64, error)
	ListDuePartnerIDs(before time.Time) ([]uint, error)
	SumByPartner(partnerID uint, statuses []string) (decimal.Decimal, error)
	SumByPartnerSince(partnerID uint, statuses []string, since time.Time) (decimal.Decimal, error)
	CountDistinctOrdersByPartner(partnerID uint) (int64, error)

	CreatePayoutBatch(batch *models.PayoutBatch) error
	UpdatePayoutBatch(batch *models.PayoutBatch) error
	GetPayoutBatchByID(id uint) (*models.PayoutBatch, error)
	ListPayoutBatches(filter PayoutBatchListFilter) ([]models.PayoutBatch, int64, error)
}

// GormCommissionRepository GORM 佣金仓储
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository 创建佣金仓储
func NewCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCommissionRepository) WithTx(tx *gorm.DB) CommissionRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionRepository{db: tx}
}

// Transaction 执行事务
func (r *GormCommissionRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 按ID查询佣金
func (r *GormCommissionRepository) GetByID(id uint) (*models.PartnerCommission, error) {
	if id == 0 {
		return nil, nil
	}
	var commission models.PartnerCommission
	if err := r.db.Preload("Partner").Preload("Order").First(&commission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commission, nil
}

// GetByIDForUpdate 按ID锁定查询佣金
func (r *GormCommissionRepository) GetByIDForUpdate(id uint) (*models.PartnerCommission, error) {
	if id == 0 {
		return nil, nil
	}
	var commission models.PartnerCommission
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&commission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commission, nil
}

// GetByOrderItem 按订单项查询佣金（用于幂等判断）
func (r *GormCommissionRepository) GetByOrderItem(orderID uint, orderItemID *uint, commissionType string) (*models.PartnerCommission, error) {
	if orderID == 0 {
		return nil, nil
	}
	ctype := strings.TrimSpace(commissionType)
	if ctype == "" {
		ctype = constants.CommissionTypeSale
	}
	query := r.db.Where("order_id = ? AND commission_type = ?", orderID, ctype)
	if orderItemID != nil {
		query = query.Where("order_item_id = ?", *orderItemID)
	} else {
		query = query.Where("order_item_id IS NULL")
	}
	var commission models.PartnerCommission
	if err := query.First(&commission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commission, nil
}

// Create 创建佣金记录
func (r *GormCommissionRepository) Create(commission *models.PartnerCommission) error {
	return r.db.Create(commission).Error
}

// Update 更新佣金记录
func (r *GormCommissionRepository) Update(commission *models.PartnerCommission) error {
	return r.db.Save(commission).Error
}

// List 查询佣金记录
func (r *GormCommissionRepository) List(filter CommissionListFilter) ([]models.PartnerCommission, int64, error) {
	query := r.db.Model(&models.PartnerCommission{}).
		Preload("Partner").
		Preload("Partner.User").
		Preload("Order")
	if filter.PartnerID != 0 {
		query = query.Where("partner_commissions.partner_id = ?", filter.PartnerID)
	}
	if filter.OrderID != 0 {
		query = query.Where("partner_commissions.order_id = ?", filter.OrderID)
	}
	if filter.SellerID != 0 {
		query = query.Where("partner_commissions.seller_id = ?", filter.SellerID)
	}
	if orderNo := strings.TrimSpace(filter.OrderNo); orderNo != "" {
		query = query.Joins("LEFT JOIN orders ON orders.id = partner_commissions.order_id").
			Where("orders.order_no LIKE ?", "%"+orderNo+"%")
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("partner_commissions.status = ?", status)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + keyword + "%"
		query = query.
			Joins("LEFT JOIN partners p ON p.id = partner_commissions.partner_id").
			Joins("LEFT JOIN users u ON u.id = p.user_id").
			Where("(u.email LIKE ? OR u.display_name LIKE ? OR p.referral_code LIKE ?)", like, like, like)
	}
	if filter.ConfirmBefore != nil {
		query = query.Where("partner_commissions.confirm_at IS NOT NULL AND partner_commissions.confirm_at <= ?", *filter.ConfirmBefore)
	}
	query = applyTimeRange(query, "partner_commissions.created_at", filter.CreatedFrom, filter.CreatedTo)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.PartnerCommission
	if err := query.Order("partner_commissions.id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListByOrder 按订单查询佣金记录
func (r *GormCommissionRepository) ListByOrder(orderID uint, statuses []string) ([]models.PartnerCommission, error) {
	if orderID == 0 {
		return []models.PartnerCommission{}, nil
	}
	query := r.db.Model(&models.PartnerCommission{}).Where("order_id = ?", orderID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var rows []models.PartnerCommission
	if err := query.Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByOrderForUpdate 按订单查询佣金并加锁
func (r *GormCommissionRepository) ListByOrderForUpdate(orderID uint, statuses []string) ([]models.PartnerCommission, error) {
	if orderID == 0 {
		return []models.PartnerCommission{}, nil
	}
	query := r.db.Model(&models.PartnerCommission{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var rows []models.PartnerCommission
	if err := query.Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByIDsForUpdate 按ID集合锁定查询佣金
func (r *GormCommissionRepository) ListByIDsForUpdate(ids []uint) ([]models.PartnerCommission, error) {
	if len(ids) == 0 {
		return []models.PartnerCommission{}, nil
	}
	var rows []models.PartnerCommission
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// BatchUpdate 批量更新佣金记录
func (r *GormCommissionRepository) BatchUpdate(ids []uint, updates map[string]interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.PartnerCommission{}).Where("id IN ?", ids).Updates(updates).Error
}

// MarkDuePendingConfirmed 批量将退货期已过的待确认佣金转为已确认
func (r *GormCommissionRepository) MarkDuePendingConfirmed(before, now time.Time) (int64, error) {
	result := r.db.Model(&models.PartnerCommission{}).
		Where("status = ? AND confirm_at IS NOT NULL AND confirm_at <= ?",
			constants.CommissionStatusPending, before).
		Updates(map[string]interface{}{
			"status":       constants.CommissionStatusConfirmed,
			"confirmed_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListDuePartnerIDs 查询存在到期待确认佣金的合伙人ID集合
func (r *GormCommissionRepository) ListDuePartnerIDs(before time.Time) ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.PartnerCommission{}).
		Where("status = ? AND confirm_at IS NOT NULL AND confirm_at <= ?",
			constants.CommissionStatusPending, before).
		Distinct("partner_id").
		Pluck("partner_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// SumByPartner 汇总指定状态佣金金额
func (r *GormCommissionRepository) SumByPartner(partnerID uint, statuses []string) (decimal.Decimal, error) {
	if partnerID == 0 || len(statuses) == 0 {
		return decimal.Zero, nil
	}
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := r.db.Model(&models.PartnerCommission{}).
		Where("partner_id = ? AND status IN ?", partnerID, statuses).
		Select("COALESCE(SUM(commission_amount), 0) AS total").
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}

// SumByPartnerSince 汇总指定时间之后的佣金金额（用于等级评定）
func (r *GormCommissionRepository) SumByPartnerSince(partnerID uint, statuses []string, since time.Time) (decimal.Decimal, error) {
	if partnerID == 0 || len(statuses) == 0 {
		return decimal.Zero, nil
	}
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := r.db.Model(&models.PartnerCommission{}).
		Where("partner_id = ? AND status IN ? AND created_at >= ?", partnerID, statuses, since).
		Select("COALESCE(SUM(commission_amount), 0) AS total").
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}

// CountDistinctOrdersByPartner 统计有效成交订单数
func (r *GormCommissionRepository) CountDistinctOrdersByPartner(partnerID uint) (int64, error) {
	if partnerID == 0 {
		return 0, nil
	}
	var total int64
	if err := r.db.Model(&models.PartnerCommission{}).
		Where("partner_id = ? AND status <> ?", partnerID, constants.CommissionStatusCancelled).
		Distinct("order_id").
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// CreatePayoutBatch 创建结算批次
func (r *GormCommissionRepository) CreatePayoutBatch(batch *models.PayoutBatch) error {
	return r.db.Create(batch).Error
}

// UpdatePayoutBatch 更新结算批次
func (r *GormCommissionRepository) UpdatePayoutBatch(batch *models.PayoutBatch) error {
	return r.db.Save(batch).Error
}

// GetPayoutBatchByID 按ID查询结算批次
func (r *GormCommissionRepository) GetPayoutBatchByID(id uint) (*models.PayoutBatch, error) {
	if id == 0 {
		return nil, nil
	}
	var batch models.PayoutBatch
	if err := r.db.Preload("Partner").Preload("Partner.User").First(&batch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// ListPayoutBatches 查询结算批次列表
func (r *GormCommissionRepository) ListPayoutBatches(filter PayoutBatchListFilter) ([]models.PayoutBatch, int64, error) {
	query := r.db.Model(&models.PayoutBatch{}).
		Preload("Partner").
		Preload("Partner.User")
	if filter.PartnerID != 0 {
		query = query.Where("partner_id = ?", filter.PartnerID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.PayoutBatch
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
