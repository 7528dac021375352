package service

import (
	"strings"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService 商品业务服务
type ProductService struct {
	repo       repository.ProductRepository
	sellerRepo repository.SellerRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, sellerRepo repository.SellerRepository) *ProductService {
	return &ProductService{repo: repo, sellerRepo: sellerRepo}
}

// SaveProductInput 创建/更新商品输入
type SaveProductInput struct {
	SellerID       uint
	CategoryID     uint
	Slug           string
	Title          string
	Description    string
	PriceAmount    decimal.Decimal
	Currency       string
	Images         []string
	Tags           []string
	Stock          *int
	CommissionRate *float64
	FlatCommission *decimal.Decimal
	Status         string
	SortOrder      int
}

// ListPublic 获取公开商品列表
func (s *ProductService) ListPublic(categoryID uint, search string, page, pageSize int) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: categoryID,
		Search:     search,
		OnlyActive: true,
		WithSeller: true,
	}
	return s.repo.List(filter)
}

// GetPublicBySlug 获取公开商品详情
func (s *ProductService) GetPublicBySlug(slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(strings.TrimSpace(slug), true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ListAdmin 获取后台商品列表
func (s *ProductService) ListAdmin(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.OnlyActive = false
	filter.WithSeller = true
	return s.repo.List(filter)
}

// GetAdminByID 获取后台商品详情
func (s *ProductService) GetAdminByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input SaveProductInput) (*models.Product, error) {
	normalized, err := s.normalizeSaveInput(input, nil)
	if err != nil {
		return nil, err
	}

	seller, err := s.sellerRepo.GetByID(normalized.SellerID)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, ErrSellerNotFound
	}

	count, err := s.repo.CountBySlug(normalized.Slug, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrProductSlugExists
	}

	stock := models.StockUnlimited
	if normalized.Stock != nil {
		stock = *normalized.Stock
	}
	product := models.Product{
		SellerID:       normalized.SellerID,
		CategoryID:     normalized.CategoryID,
		Slug:           normalized.Slug,
		Title:          normalized.Title,
		Description:    normalized.Description,
		PriceAmount:    models.NewMoneyFromDecimal(normalized.PriceAmount),
		Currency:       normalized.Currency,
		Images:         models.StringArray(normalized.Images),
		Tags:           models.StringArray(normalized.Tags),
		Stock:          stock,
		CommissionRate: normalized.CommissionRate,
		Status:         normalized.Status,
		SortOrder:      normalized.SortOrder,
	}
	if normalized.FlatCommission != nil {
		flat := models.NewMoneyFromDecimal(*normalized.FlatCommission)
		product.FlatCommission = &flat
	}

	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update 更新商品
func (s *ProductService) Update(id uint, input SaveProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	normalized, err := s.normalizeSaveInput(input, product)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountBySlug(normalized.Slug, &id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrProductSlugExists
	}

	product.CategoryID = normalized.CategoryID
	product.Slug = normalized.Slug
	product.Title = normalized.Title
	product.Description = normalized.Description
	product.PriceAmount = models.NewMoneyFromDecimal(normalized.PriceAmount)
	product.Currency = normalized.Currency
	product.Images = models.StringArray(normalized.Images)
	product.Tags = models.StringArray(normalized.Tags)
	product.CommissionRate = normalized.CommissionRate
	product.Status = normalized.Status
	product.SortOrder = normalized.SortOrder
	if normalized.Stock != nil {
		product.Stock = *normalized.Stock
	}
	product.FlatCommission = nil
	if normalized.FlatCommission != nil {
		flat := models.NewMoneyFromDecimal(*normalized.FlatCommission)
		product.FlatCommission = &flat
	}

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete 删除商品（软删除）
func (s *ProductService) Delete(id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	return s.repo.Delete(id)
}

// normalizeSaveInput 校验并归一化商品输入。更新时空字段回退到已有值。
func (s *ProductService) normalizeSaveInput(input SaveProductInput, existing *models.Product) (SaveProductInput, error) {
	input.Slug = strings.ToLower(strings.TrimSpace(input.Slug))
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))
	input.Status = strings.ToLower(strings.TrimSpace(input.Status))

	if existing != nil {
		if input.SellerID == 0 {
			input.SellerID = existing.SellerID
		}
		if input.Currency == "" {
			input.Currency = existing.Currency
		}
		if input.Status == "" {
			input.Status = existing.Status
		}
	}
	if input.SellerID == 0 || input.Slug == "" || input.Title == "" {
		return input, ErrInvalidInput
	}
	if input.Currency == "" {
		input.Currency = constants.SiteCurrencyDefault
	}
	if input.Status == "" {
		input.Status = constants.ProductStatusActive
	}
	if input.Status != constants.ProductStatusActive && input.Status != constants.ProductStatusInactive {
		return input, ErrInvalidInput
	}

	input.PriceAmount = input.PriceAmount.Round(2)
	if input.PriceAmount.LessThanOrEqual(decimal.Zero) {
		return input, ErrProductPriceInvalid
	}
	if input.Stock != nil && *input.Stock < 0 && *input.Stock != models.StockUnlimited {
		return input, ErrInvalidInput
	}
	if input.CommissionRate != nil && (*input.CommissionRate < 0 || *input.CommissionRate > 100) {
		return input, ErrProductCommissionInvalid
	}
	if input.FlatCommission != nil {
		flat := input.FlatCommission.Round(2)
		if flat.IsNegative() {
			return input, ErrProductCommissionInvalid
		}
		input.FlatCommission = &flat
	}
	return input, nil
}
