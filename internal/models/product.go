package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                      // 主键
	SellerID       uint           `gorm:"not null;index" json:"seller_id"`                           // 商家ID
	CategoryID     uint           `gorm:"index" json:"category_id"`                                  // 分类ID
	Slug           string         `gorm:"uniqueIndex;not null" json:"slug"`                          // 唯一标识
	Title          string         `gorm:"not null" json:"title"`                                     // 商品标题
	Description    string         `gorm:"type:text" json:"description"`                              // 商品描述
	PriceAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 价格金额
	Currency       string         `gorm:"type:varchar(10);not null;default:'KRW'" json:"currency"`   // 币种
	Images         StringArray    `gorm:"type:json" json:"images"`                                   // 图片数组
	Tags           StringArray    `gorm:"type:json" json:"tags"`                                     // 标签数组
	Stock          int            `gorm:"not null;default:0" json:"stock"`                           // 可售库存（-1 表示不限量）
	CommissionRate *float64       `json:"commission_rate,omitempty"`                                 // 商品级佣金比例覆盖（百分比）
	FlatCommission *Money         `gorm:"type:decimal(20,2)" json:"flat_commission,omitempty"`       // 商品级固定佣金覆盖
	Status         string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"` // 商品状态
	SortOrder      int            `gorm:"default:0;index" json:"sort_order"`                         // 排序权重
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	// 关联
	Seller   Seller   `gorm:"foreignKey:SellerID" json:"seller,omitempty"`     // 商家信息
	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类信息
}

// StockUnlimited 表示不启用库存控制
const StockUnlimited = -1

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
