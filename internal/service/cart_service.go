package service

import (
	"time"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/repository"

	"github.com/shopspring/decimal"
)

// CartItemDetail 购物车项详情（用于响应）
type CartItemDetail struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice models.Money    `json:"unit_price"`
	LineTotal models.Money    `json:"line_total"`
	Currency  string          `json:"currency"`
	Product   *models.Product `json:"product"`
}

// UpsertCartItemInput 购物车更新输入
type UpsertCartItemInput struct {
	UserID    uint
	ProductID uint
	Quantity  int
}

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// ListByUser 获取用户购物车（下架商品自动移除）
func (s *CartService) ListByUser(userID uint) ([]CartItemDetail, error) {
	if userID == 0 {
		return nil, ErrOrderItemInvalid
	}
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	details := make([]CartItemDetail, 0, len(items))
	for _, item := range items {
		product := item.Product
		if product == nil || product.ID == 0 {
			p, err := s.productRepo.GetByID(item.ProductID)
			if err != nil {
				return nil, err
			}
			product = p
		}
		if product == nil || product.Status != constants.ProductStatusActive {
			_ = s.cartRepo.DeleteByUserAndProduct(userID, item.ProductID)
			continue
		}

		lineTotal := models.NewMoneyFromDecimal(product.PriceAmount.Mul(decimal.NewFromInt(int64(item.Quantity))))
		details = append(details, CartItemDetail{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.PriceAmount,
			LineTotal: lineTotal,
			Currency:  product.Currency,
			Product:   product,
		})
	}
	return details, nil
}

// UpsertItem 添加或更新购物车项
func (s *CartService) UpsertItem(input UpsertCartItemInput) error {
	if input.UserID == 0 || input.ProductID == 0 || input.Quantity <= 0 {
		return ErrOrderItemInvalid
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return err
	}
	if product == nil || product.Status != constants.ProductStatusActive {
		return ErrProductInactive
	}
	if product.Stock != models.StockUnlimited && product.Stock < input.Quantity {
		return ErrProductStockInsufficient
	}

	now := time.Now()
	item := &models.CartItem{
		UserID:    input.UserID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.cartRepo.Upsert(item)
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(userID, productID uint) error {
	if userID == 0 || productID == 0 {
		return ErrOrderItemInvalid
	}
	return s.cartRepo.DeleteByUserAndProduct(userID, productID)
}

// ClearByUser 清空购物车
func (s *CartService) ClearByUser(userID uint) error {
	if userID == 0 {
		return ErrOrderItemInvalid
	}
	return s.cartRepo.ClearByUser(userID)
}
