package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PartnerRepository 合伙人数据访问接口
type PartnerRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) PartnerRepository

	GetByID(id uint) (*models.Partner, error)
	GetByIDForUpdate(id uint) (*models.Partner, error)
	GetByUserID(userID uint) (*models.Partner, error)
	GetByCode(code string) (*models.Partner, error)
	Create(partner *models.Partner) error
	Update(partner *models.Partner) error
	UpdateStatus(id uint, status string, updatedAt time.Time) error
	UpdateTier(id uint, tier string, updatedAt time.Time) error
	List(filter PartnerListFilter) ([]models.Partner, int64, error)
	ListActiveIDs() ([]uint, error)
	IncrementCounters(id uint, clicks, conversions int64) error
	AddEarnings(id uint, updates map[string]interface{}) error

	CreateClick(click *models.PartnerClick) error
	GetClickByID(id uint) (*models.PartnerClick, error)
	HasRecentClick(partnerID uint, visitorKey, landingPath string, since time.Time) (bool, error)
	GetLatestClickByVisitorKey(partnerID uint, visitorKey string, since time.Time) (*models.PartnerClick, error)
	GetLatestActivePartnerByVisitorKey(visitorKey string, since time.Time) (*models.Partner, error)
	CountClicksByPartner(partnerID uint) (int64, error)
	GetStatsBatch(partnerIDs []uint) (map[uint]PartnerStatsAggregate, error)
}

// GormPartnerRepository GORM 合伙人仓储
type GormPartnerRepository struct {
	db *gorm.DB
}

// NewPartnerRepository 创建合伙人仓储
func NewPartnerRepository(db *gorm.DB) *GormPartnerRepository {
	return &GormPartnerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPartnerRepository) WithTx(tx *gorm.DB) PartnerRepository {
	if tx == nil {
		return r
	}
	return &GormPartnerRepository{db: tx}
}

// Transaction 执行事务
func (r *GormPartnerRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 按ID获取合伙人
func (r *GormPartnerRepository) GetByID(id uint) (*models.Partner, error) {
	if id == 0 {
		return nil, nil
	}
	var partner models.Partner
	if err := r.db.Preload("User").First(&partner, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partner, nil
}

// GetByIDForUpdate 按ID锁定获取合伙人
func (r *GormPartnerRepository) GetByIDForUpdate(id uint) (*models.Partner, error) {
	if id == 0 {
		return nil, nil
	}
	var partner models.Partner
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&partner, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partner, nil
}

// GetByUserID 按用户ID获取合伙人
func (r *GormPartnerRepository) GetByUserID(userID uint) (*models.Partner, error) {
	if userID == 0 {
		return nil, nil
	}
	var partner models.Partner
	if err := r.db.Preload("User").Where("user_id = ?", userID).First(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partner, nil
}

// GetByCode 按推荐码获取合伙人
func (r *GormPartnerRepository) GetByCode(code string) (*models.Partner, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var partner models.Partner
	if err := r.db.Preload("User").Where("referral_code = ?", normalized).First(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partner, nil
}

// Create 创建合伙人档案
func (r *GormPartnerRepository) Create(partner *models.Partner) error {
	return r.db.Create(partner).Error
}

// Update 更新合伙人档案
func (r *GormPartnerRepository) Update(partner *models.Partner) error {
	return r.db.Save(partner).Error
}

// UpdateStatus 更新合伙人状态
func (r *GormPartnerRepository) UpdateStatus(id uint, status string, updatedAt time.Time) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Partner{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     strings.TrimSpace(status),
			"updated_at": updatedAt,
		}).Error
}

// UpdateTier 更新合伙人等级
func (r *GormPartnerRepository) UpdateTier(id uint, tier string, updatedAt time.Time) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Partner{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"tier":       strings.TrimSpace(tier),
			"updated_at": updatedAt,
		}).Error
}

// List 查询合伙人列表
func (r *GormPartnerRepository) List(filter PartnerListFilter) ([]models.Partner, int64, error) {
	query := r.db.Model(&models.Partner{}).Preload("User")
	if filter.UserID != 0 {
		query = query.Where("partners.user_id = ?", filter.UserID)
	}
	if code := strings.TrimSpace(filter.Code); code != "" {
		query = query.Where("partners.referral_code = ?", strings.ToUpper(code))
	}
	if tier := strings.TrimSpace(filter.Tier); tier != "" {
		query = query.Where("partners.tier = ?", tier)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("partners.status = ?", status)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + keyword + "%"
		query = query.
			Joins("LEFT JOIN users ON users.id = partners.user_id").
			Where("(users.email LIKE ? OR users.display_name LIKE ? OR partners.referral_code LIKE ?)", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Partner
	if err := query.Order("partners.id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListActiveIDs 查询全部启用状态的合伙人ID
func (r *GormPartnerRepository) ListActiveIDs() ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.Partner{}).
		Where("status = ?", constants.PartnerStatusActive).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// IncrementCounters 累加点击与成交计数
func (r *GormPartnerRepository) IncrementCounters(id uint, clicks, conversions int64) error {
	if id == 0 || (clicks == 0 && conversions == 0) {
		return nil
	}
	updates := map[string]interface{}{"updated_at": time.Now()}
	if clicks != 0 {
		updates["click_count"] = gorm.Expr("click_count + ?", clicks)
	}
	if conversions != 0 {
		updates["conversion_count"] = gorm.Expr("conversion_count + ?", conversions)
	}
	return r.db.Model(&models.Partner{}).Where("id = ?", id).Updates(updates).Error
}

// AddEarnings 更新收益汇总字段
func (r *GormPartnerRepository) AddEarnings(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.Partner{}).Where("id = ?", id).Updates(updates).Error
}

// CreateClick 创建推广点击记录
func (r *GormPartnerRepository) CreateClick(click *models.PartnerClick) error {
	return r.db.Create(click).Error
}

// GetClickByID 按ID查询点击记录
func (r *GormPartnerRepository) GetClickByID(id uint) (*models.PartnerClick, error) {
	if id == 0 {
		return nil, nil
	}
	var click models.PartnerClick
	if err := r.db.First(&click, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &click, nil
}

// HasRecentClick 查询是否存在近期重复点击记录
func (r *GormPartnerRepository) HasRecentClick(partnerID uint, visitorKey, landingPath string, since time.Time) (bool, error) {
	if partnerID == 0 || strings.TrimSpace(visitorKey) == "" {
		return false, nil
	}
	query := r.db.Model(&models.PartnerClick{}).
		Where("partner_id = ? AND visitor_key = ? AND created_at >= ?",
			partnerID,
			strings.TrimSpace(visitorKey),
			since,
		)
	if path := strings.TrimSpace(landingPath); path != "" {
		query = query.Where("landing_path = ?", path)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

// GetLatestClickByVisitorKey 查询访客对指定合伙人最近一次点击
func (r *GormPartnerRepository) GetLatestClickByVisitorKey(partnerID uint, visitorKey string, since time.Time) (*models.PartnerClick, error) {
	key := strings.TrimSpace(visitorKey)
	if partnerID == 0 || key == "" {
		return nil, nil
	}
	var click models.PartnerClick
	err := r.db.Where("partner_id = ? AND visitor_key = ? AND created_at >= ?", partnerID, key, since).
		Order("created_at DESC, id DESC").
		First(&click).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &click, nil
}

// GetLatestActivePartnerByVisitorKey 查询访客最近一次有效点击对应的合伙人
func (r *GormPartnerRepository) GetLatestActivePartnerByVisitorKey(visitorKey string, since time.Time) (*models.Partner, error) {
	key := strings.TrimSpace(visitorKey)
	if key == "" {
		return nil, nil
	}

	var partner models.Partner
	err := r.db.Model(&models.Partner{}).
		Joins("JOIN partner_clicks pc ON pc.partner_id = partners.id").
		Where("pc.visitor_key = ? AND pc.created_at >= ? AND partners.status = ?",
			key,
			since,
			constants.PartnerStatusActive,
		).
		Order("pc.created_at DESC, pc.id DESC").
		Limit(1).
		Preload("User").
		First(&partner).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partner, nil
}

// CountClicksByPartner 统计推广点击数
func (r *GormPartnerRepository) CountClicksByPartner(partnerID uint) (int64, error) {
	if partnerID == 0 {
		return 0, nil
	}
	var total int64
	if err := r.db.Model(&models.PartnerClick{}).Where("partner_id = ?", partnerID).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// GetStatsBatch 批量汇总合伙人点击与成交统计
func (r *GormPartnerRepository) GetStatsBatch(partnerIDs []uint) (map[uint]PartnerStatsAggregate, error) {
	result := make(map[uint]PartnerStatsAggregate, len(partnerIDs))
	if len(partnerIDs) == 0 {
		return result, nil
	}
	for _, id := range partnerIDs {
		if id == 0 {
			continue
		}
		result[id] = PartnerStatsAggregate{}
	}

	var clickRows []struct {
		PartnerID uint  `gorm:"column:partner_id"`
		Total     int64 `gorm:"column:total"`
	}
	if err := r.db.Model(&models.PartnerClick{}).
		Select("partner_id, COUNT(*) AS total").
		Where("partner_id IN ?", partnerIDs).
		Group("partner_id").
		Scan(&clickRows).Error; err != nil {
		return nil, err
	}
	for _, row := range clickRows {
		item := result[row.PartnerID]
		item.ClickCount = row.Total
		result[row.PartnerID] = item
	}

	var orderRows []struct {
		PartnerID uint  `gorm:"column:partner_id"`
		Total     int64 `gorm:"column:total"`
	}
	if err := r.db.Model(&models.PartnerCommission{}).
		Select("partner_id, COUNT(DISTINCT order_id) AS total").
		Where("partner_id IN ? AND status <> ?", partnerIDs, constants.CommissionStatusCancelled).
		Group("partner_id").
		Scan(&orderRows).Error; err != nil {
		return nil, err
	}
	for _, row := range orderRows {
		item := result[row.PartnerID]
		item.ConvertedOrderCount = row.Total
		result[row.PartnerID] = item
	}

	return result, nil
}
