package repository

import (
	"errors"
	"strings"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	GetBySlug(slug string, onlyActive bool) (*models.Product, error)
	GetByID(id uint) (*models.Product, error)
	ListByIDs(ids []uint) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id uint) error
	CountBySlug(slug string, excludeID *uint) (int64, error)
	DecrementStock(productID uint, quantity int) (int64, error)
	RestoreStock(productID uint, quantity int) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Transaction 执行事务
func (r *GormProductRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// preloaded 详情查询统一带上卖家和分类关联
func (r *GormProductRepository) preloaded() *gorm.DB {
	return r.db.Preload("Seller").Preload("Category")
}

func firstProduct(query *gorm.DB) (*models.Product, error) {
	var product models.Product
	err := query.First(&product).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return &product, nil
}

// List 商品列表
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{})
	if filter.WithSeller {
		query = query.Preload("Seller").Preload("Category")
	}
	if filter.OnlyActive {
		query = query.Where("status = ?", constants.ProductStatusActive)
	}
	if filter.SellerID != 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildLikeCondition(r.db, []string{"slug", "title", "description"})
		query = query.Where(condition, repeatLikeArgs("%"+search+"%", argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := applyPagination(query, filter.Page, filter.PageSize).
		Order("sort_order DESC, created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetBySlug 根据 slug 获取商品
func (r *GormProductRepository) GetBySlug(slug string, onlyActive bool) (*models.Product, error) {
	query := r.preloaded().Where("slug = ?", slug)
	if onlyActive {
		query = query.Where("status = ?", constants.ProductStatusActive)
	}
	return firstProduct(query)
}

// GetByID 根据 ID 获取商品
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	return firstProduct(r.preloaded().Where("id = ?", id))
}

// ListByIDs 批量获取商品
func (r *GormProductRepository) ListByIDs(ids []uint) ([]models.Product, error) {
	products := []models.Product{}
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.Preload("Seller").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Create 创建商品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update 更新商品
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// Delete 删除商品
func (r *GormProductRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}

// CountBySlug 统计 slug 数量
func (r *GormProductRepository) CountBySlug(slug string, excludeID *uint) (int64, error) {
	query := r.db.Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// DecrementStock 扣减库存，不限量商品不做变更，库存不足时影响行数为 0
func (r *GormProductRepository) DecrementStock(productID uint, quantity int) (int64, error) {
	if productID == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock decrement params")
	}
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND (stock = ? OR stock >= ?)", productID, models.StockUnlimited, quantity).
		Update("stock", gorm.Expr("CASE WHEN stock = ? THEN stock ELSE stock - ? END", models.StockUnlimited, quantity))
	return result.RowsAffected, result.Error
}

// RestoreStock 订单取消时回补库存
func (r *GormProductRepository) RestoreStock(productID uint, quantity int) (int64, error) {
	if productID == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock restore params")
	}
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND stock <> ?", productID, models.StockUnlimited).
		Update("stock", gorm.Expr("stock + ?", quantity))
	return result.RowsAffected, result.Error
}
