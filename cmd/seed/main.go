package main

import (
	"time"

	"github.com/linkmall/internal/config"
	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/logger"
	"github.com/linkmall/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	now := time.Now()

	// 演示用户（商家主与合伙人）
	passwordHash, err := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash demo password: %v", err)
	}
	users := []models.User{
		{
			Email:           "seller@linkmall.dev",
			PasswordHash:    string(passwordHash),
			DisplayName:     "데모 셀러",
			Locale:          "ko-KR",
			Status:          constants.UserStatusActive,
			EmailVerifiedAt: &now,
		},
		{
			Email:           "partner@linkmall.dev",
			PasswordHash:    string(passwordHash),
			DisplayName:     "데모 파트너",
			Locale:          "ko-KR",
			Status:          constants.UserStatusActive,
			EmailVerifiedAt: &now,
		},
		{
			Email:           "buyer@linkmall.dev",
			PasswordHash:    string(passwordHash),
			DisplayName:     "데모 구매자",
			Locale:          "ko-KR",
			Status:          constants.UserStatusActive,
			EmailVerifiedAt: &now,
		},
	}
	userIDs := map[string]uint{}
	for _, user := range users {
		var existing models.User
		if err := models.DB.Where("email = ?", user.Email).First(&existing).Error; err != nil {
			if err := models.DB.Create(&user).Error; err != nil {
				stdLog.Printf("Failed to create user %s: %v", user.Email, err)
				continue
			}
			stdLog.Printf("Created user: %s", user.Email)
			userIDs[user.Email] = user.ID
		} else {
			stdLog.Printf("User already exists: %s", existing.Email)
			userIDs[existing.Email] = existing.ID
		}
	}

	// 供应商与商家
	supplier := models.Supplier{
		Name:         "LinkMall Trading Co.",
		Status:       "active",
		ContactEmail: "supply@linkmall.dev",
	}
	var existingSupplier models.Supplier
	if err := models.DB.Where("name = ?", supplier.Name).First(&existingSupplier).Error; err != nil {
		if err := models.DB.Create(&supplier).Error; err != nil {
			stdLog.Printf("Failed to create supplier: %v", err)
		} else {
			stdLog.Printf("Created supplier: %s", supplier.Name)
		}
	} else {
		supplier = existingSupplier
	}

	sellerRate := 5.0
	seller := models.Seller{
		UserID:         userIDs["seller@linkmall.dev"],
		SupplierID:     &supplier.ID,
		Name:           "데모 스토어",
		Status:         constants.SellerStatusActive,
		CommissionRate: sellerRate,
		ContactEmail:   "seller@linkmall.dev",
	}
	var existingSeller models.Seller
	if err := models.DB.Where("user_id = ?", seller.UserID).First(&existingSeller).Error; err != nil {
		if err := models.DB.Create(&seller).Error; err != nil {
			stdLog.Printf("Failed to create seller: %v", err)
		} else {
			stdLog.Printf("Created seller: %s", seller.Name)
		}
	} else {
		seller = existingSeller
	}

	// 分类
	categories := []models.Category{
		{Slug: "fashion", Name: "패션", SortOrder: 30},
		{Slug: "beauty", Name: "뷰티", SortOrder: 20},
		{Slug: "living", Name: "리빙", SortOrder: 10},
	}
	categoryIDs := map[string]uint{}
	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
				continue
			}
			stdLog.Printf("Created category: %s", cat.Slug)
			categoryIDs[cat.Slug] = cat.ID
		} else {
			stdLog.Printf("Category already exists: %s", existing.Slug)
			categoryIDs[existing.Slug] = existing.ID
		}
	}

	// 商品（含商品级佣金覆盖示例）
	productRate := 8.0
	flatCommission := models.NewMoneyFromDecimal(decimal.NewFromInt(1500))
	products := []models.Product{
		{
			SellerID:    seller.ID,
			CategoryID:  categoryIDs["fashion"],
			Slug:        "basic-hoodie",
			Title:       "베이직 후드티",
			Description: "부드러운 기모 안감의 데일리 후드티",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(25000)),
			Currency:    "KRW",
			Images:      models.StringArray{"/uploads/demo/basic-hoodie.jpg"},
			Tags:        models.StringArray{"fashion", "daily"},
			Stock:       100,
			Status:      constants.ProductStatusActive,
			SortOrder:   30,
		},
		{
			SellerID:       seller.ID,
			CategoryID:     categoryIDs["beauty"],
			Slug:           "vitamin-serum",
			Title:          "비타민 세럼",
			Description:    "고농축 비타민C 세럼 30ml",
			PriceAmount:    models.NewMoneyFromDecimal(decimal.NewFromInt(18000)),
			Currency:       "KRW",
			Images:         models.StringArray{"/uploads/demo/vitamin-serum.jpg"},
			Tags:           models.StringArray{"beauty", "serum"},
			Stock:          50,
			CommissionRate: &productRate,
			Status:         constants.ProductStatusActive,
			SortOrder:      20,
		},
		{
			SellerID:       seller.ID,
			CategoryID:     categoryIDs["living"],
			Slug:           "ceramic-mug-set",
			Title:          "세라믹 머그컵 세트",
			Description:    "전자레인지 사용 가능한 머그컵 2종 세트",
			PriceAmount:    models.NewMoneyFromDecimal(decimal.NewFromInt(12000)),
			Currency:       "KRW",
			Images:         models.StringArray{"/uploads/demo/ceramic-mug-set.jpg"},
			Tags:           models.StringArray{"living", "kitchen"},
			Stock:          models.StockUnlimited,
			FlatCommission: &flatCommission,
			Status:         constants.ProductStatusActive,
			SortOrder:      10,
		},
	}
	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", product.Slug)
			}
		} else {
			stdLog.Printf("Product already exists: %s", existing.Slug)
		}
	}

	// 演示合伙人（已激活，推荐码固定便于本地联调）
	partner := models.Partner{
		UserID:       userIDs["partner@linkmall.dev"],
		ReferralCode: "DEMOPARTNER",
		Tier:         constants.PartnerTierBronze,
		Status:       constants.PartnerStatusActive,
		ApprovedAt:   &now,
	}
	var existingPartner models.Partner
	if err := models.DB.Where("user_id = ?", partner.UserID).First(&existingPartner).Error; err != nil {
		if err := models.DB.Create(&partner).Error; err != nil {
			stdLog.Printf("Failed to create partner: %v", err)
		} else {
			stdLog.Printf("Created partner: %s", partner.ReferralCode)
		}
	} else {
		stdLog.Printf("Partner already exists: %s", existingPartner.ReferralCode)
	}

	stdLog.Printf("Seed completed")
}
