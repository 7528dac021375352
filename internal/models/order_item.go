package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表
type OrderItem struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID    uint           `gorm:"index;not null" json:"order_id"`                           // 订单ID
	ProductID  uint           `gorm:"index;not null" json:"product_id"`                         // 商品ID
	SellerID   uint           `gorm:"index;not null" json:"seller_id"`                          // 商家ID快照
	Title      string         `gorm:"not null" json:"title"`                                    // 商品标题快照
	UnitPrice  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // 单价快照
	Quantity   int            `gorm:"not null" json:"quantity"`                                 // 数量
	TotalPrice Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
