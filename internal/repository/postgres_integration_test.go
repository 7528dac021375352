//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.PartnerCommission{},
		&models.PartnerClick{},
		&models.Partner{},
		&models.Product{},
		&models.Category{},
		&models.Seller{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Seller{},
		&models.Category{},
		&models.Product{},
		&models.Partner{},
		&models.PartnerClick{},
		&models.PartnerCommission{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresProductSearchCaseInsensitive(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	category := &models.Category{
		Slug: "pg-category",
		Name: "피규어",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	productRepo := NewProductRepository(db)
	product := &models.Product{
		SellerID:    1,
		CategoryID:  category.ID,
		Slug:        "pg-rocket-figure",
		Title:       "Rocket Figure",
		Description: "limited booster edition",
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(45000)),
		Currency:    "KRW",
		Stock:       10,
		Status:      constants.ProductStatusActive,
	}
	if err := productRepo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	rows, total, err := productRepo.List(ProductListFilter{
		Page:   1,
		Search: "rocket",
	})
	if err != nil {
		t.Fatalf("product list search by title failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("product list search by title want 1 got total=%d len=%d", total, len(rows))
	}

	rows, total, err = productRepo.List(ProductListFilter{
		Page:   1,
		Search: "BOOSTER",
	})
	if err != nil {
		t.Fatalf("product list search by description failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("product list search by description want 1 got total=%d len=%d", total, len(rows))
	}
}

func TestPostgresPartnerStatsBatch(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewPartnerRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	user := &models.User{Email: "pg-partner@linkmall.dev", DisplayName: "pg partner"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	partner := &models.Partner{
		UserID:       user.ID,
		ReferralCode: "PGPARTNER",
		Tier:         constants.PartnerTierBronze,
		Status:       constants.PartnerStatusActive,
	}
	if err := repo.Create(partner); err != nil {
		t.Fatalf("create partner failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		click := &models.PartnerClick{
			PartnerID:   partner.ID,
			VisitorKey:  "pg-visitor",
			LandingPath: "/products/pg-rocket-figure",
			CreatedAt:   now,
		}
		if err := repo.CreateClick(click); err != nil {
			t.Fatalf("create click failed: %v", err)
		}
	}

	commissions := []models.PartnerCommission{
		{
			CommissionNo:     "PG-CM-001",
			PartnerID:        partner.ID,
			OrderID:          101,
			Status:           constants.CommissionStatusPending,
			CommissionAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(1000)),
			CreatedAt:        now,
		},
		{
			CommissionNo:     "PG-CM-002",
			PartnerID:        partner.ID,
			OrderID:          102,
			Status:           constants.CommissionStatusCancelled,
			CommissionAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
			CreatedAt:        now,
		},
	}
	for i := range commissions {
		if err := db.Create(&commissions[i]).Error; err != nil {
			t.Fatalf("create commission failed: %v", err)
		}
	}

	stats, err := repo.GetStatsBatch([]uint{partner.ID})
	if err != nil {
		t.Fatalf("get stats batch failed: %v", err)
	}
	aggregate, ok := stats[partner.ID]
	if !ok {
		t.Fatalf("stats missing partner %d", partner.ID)
	}
	if aggregate.ClickCount != 3 {
		t.Fatalf("click count want 3 got %d", aggregate.ClickCount)
	}
	if aggregate.ConvertedOrderCount != 1 {
		t.Fatalf("converted order count want 1 got %d", aggregate.ConvertedOrderCount)
	}

	latest, err := repo.GetLatestActivePartnerByVisitorKey("pg-visitor", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("get latest active partner failed: %v", err)
	}
	if latest == nil || latest.ID != partner.ID {
		t.Fatalf("latest active partner want %d got %+v", partner.ID, latest)
	}
}
