package repository

import (
	"fmt"
	"testing"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var productTestDBSeq int

func setupProductRepositoryTest(t *testing.T) (*GormProductRepository, *gorm.DB) {
	t.Helper()
	productTestDBSeq++
	dsn := fmt.Sprintf("file:product_repo_%d?mode=memory&cache=shared", productTestDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Seller{}, &models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("migrate product models failed: %v", err)
	}
	return NewProductRepository(db), db
}

func createTestProduct(t *testing.T, repo *GormProductRepository, slug string, stock int, mutate func(*models.Product)) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID:    1,
		CategoryID:  1,
		Slug:        slug,
		Title:       "테스트 상품",
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(10000)),
		Currency:    "KRW",
		Stock:       stock,
		Status:      constants.ProductStatusActive,
	}
	if mutate != nil {
		mutate(product)
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestStockDecrementRestoreLifecycle(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	product := createTestProduct(t, repo, "stock-lifecycle", 10, nil)

	affected, err := repo.DecrementStock(product.ID, 3)
	if err != nil {
		t.Fatalf("decrement stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("decrement affected want 1 got %d", affected)
	}

	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Stock != 7 {
		t.Fatalf("stock want 7 got %d", got.Stock)
	}

	affected, err = repo.DecrementStock(product.ID, 8)
	if err != nil {
		t.Fatalf("decrement over available failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("decrement over available affected want 0 got %d", affected)
	}

	affected, err = repo.RestoreStock(product.ID, 3)
	if err != nil {
		t.Fatalf("restore stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("restore affected want 1 got %d", affected)
	}
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Stock != 10 {
		t.Fatalf("stock want 10 got %d", got.Stock)
	}
}

func TestStockUnlimitedNeverChanges(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	product := createTestProduct(t, repo, "stock-unlimited", models.StockUnlimited, nil)

	affected, err := repo.DecrementStock(product.ID, 5)
	if err != nil {
		t.Fatalf("decrement unlimited stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("decrement unlimited affected want 1 got %d", affected)
	}

	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Stock != models.StockUnlimited {
		t.Fatalf("unlimited stock should stay %d got %d", models.StockUnlimited, got.Stock)
	}

	affected, err = repo.RestoreStock(product.ID, 5)
	if err != nil {
		t.Fatalf("restore unlimited stock failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("restore unlimited affected want 0 got %d", affected)
	}
}

func TestProductListFilters(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)

	createTestProduct(t, repo, "seoul-hoodie", 5, func(p *models.Product) {
		p.SellerID = 1
		p.CategoryID = 10
		p.Title = "서울 후드티"
	})
	createTestProduct(t, repo, "busan-mug", 5, func(p *models.Product) {
		p.SellerID = 2
		p.CategoryID = 20
		p.Title = "부산 머그컵"
	})
	createTestProduct(t, repo, "hidden-poster", 5, func(p *models.Product) {
		p.SellerID = 1
		p.CategoryID = 10
		p.Status = constants.ProductStatusInactive
	})

	rows, total, err := repo.List(ProductListFilter{Page: 1, PageSize: 20, SellerID: 1})
	if err != nil {
		t.Fatalf("list by seller failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("list by seller want 2 got total=%d len=%d", total, len(rows))
	}

	rows, total, err = repo.List(ProductListFilter{Page: 1, PageSize: 20, SellerID: 1, OnlyActive: true})
	if err != nil {
		t.Fatalf("list active by seller failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Slug != "seoul-hoodie" {
		t.Fatalf("list active by seller want seoul-hoodie got total=%d len=%d", total, len(rows))
	}

	rows, total, err = repo.List(ProductListFilter{Page: 1, PageSize: 20, CategoryID: 20})
	if err != nil {
		t.Fatalf("list by category failed: %v", err)
	}
	if total != 1 || rows[0].Slug != "busan-mug" {
		t.Fatalf("list by category want busan-mug got total=%d", total)
	}

	rows, total, err = repo.List(ProductListFilter{Page: 1, PageSize: 20, Search: "머그"})
	if err != nil {
		t.Fatalf("list by search failed: %v", err)
	}
	if total != 1 || rows[0].Slug != "busan-mug" {
		t.Fatalf("list by search want busan-mug got total=%d", total)
	}
}

func TestCountBySlugExcludesSelf(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	product := createTestProduct(t, repo, "unique-slug", 5, nil)

	count, err := repo.CountBySlug("unique-slug", nil)
	if err != nil {
		t.Fatalf("count by slug failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("count want 1 got %d", count)
	}

	count, err = repo.CountBySlug("unique-slug", &product.ID)
	if err != nil {
		t.Fatalf("count by slug excluding self failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("count excluding self want 0 got %d", count)
	}
}
