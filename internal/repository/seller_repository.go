package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/linkmall/internal/models"

	"gorm.io/gorm"
)

// SellerRepository 商家数据访问接口
type SellerRepository interface {
	GetByID(id uint) (*models.Seller, error)
	GetByUserID(userID uint) (*models.Seller, error)
	ListByIDs(ids []uint) ([]models.Seller, error)
	Create(seller *models.Seller) error
	Update(seller *models.Seller) error
	UpdateStatus(id uint, status string, updatedAt time.Time) error
	List(filter SellerListFilter) ([]models.Seller, int64, error)
}

// GormSellerRepository GORM 实现
type GormSellerRepository struct {
	db *gorm.DB
}

// NewSellerRepository 创建商家仓库
func NewSellerRepository(db *gorm.DB) *GormSellerRepository {
	return &GormSellerRepository{db: db}
}

// GetByID 按ID获取商家
func (r *GormSellerRepository) GetByID(id uint) (*models.Seller, error) {
	if id == 0 {
		return nil, nil
	}
	var seller models.Seller
	if err := r.db.Preload("User").Preload("Supplier").First(&seller, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &seller, nil
}

// GetByUserID 按用户ID获取商家
func (r *GormSellerRepository) GetByUserID(userID uint) (*models.Seller, error) {
	if userID == 0 {
		return nil, nil
	}
	var seller models.Seller
	if err := r.db.Where("user_id = ?", userID).First(&seller).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &seller, nil
}

// ListByIDs 批量获取商家
func (r *GormSellerRepository) ListByIDs(ids []uint) ([]models.Seller, error) {
	if len(ids) == 0 {
		return []models.Seller{}, nil
	}
	var sellers []models.Seller
	if err := r.db.Where("id IN ?", ids).Find(&sellers).Error; err != nil {
		return nil, err
	}
	return sellers, nil
}

// Create 创建商家
func (r *GormSellerRepository) Create(seller *models.Seller) error {
	return r.db.Create(seller).Error
}

// Update 更新商家
func (r *GormSellerRepository) Update(seller *models.Seller) error {
	return r.db.Save(seller).Error
}

// UpdateStatus 更新商家状态
func (r *GormSellerRepository) UpdateStatus(id uint, status string, updatedAt time.Time) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Seller{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     strings.TrimSpace(status),
			"updated_at": updatedAt,
		}).Error
}

// List 查询商家列表
func (r *GormSellerRepository) List(filter SellerListFilter) ([]models.Seller, int64, error) {
	query := r.db.Model(&models.Seller{}).Preload("User")
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("sellers.status = ?", status)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("(sellers.name LIKE ? OR sellers.contact_email LIKE ?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Seller
	if err := query.Order("sellers.id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
