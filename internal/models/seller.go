package models

import (
	"time"

	"gorm.io/gorm"
)

// Seller 商家表
type Seller struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                           // 主键
	UserID         uint           `gorm:"not null;uniqueIndex" json:"user_id"`                            // 所属用户ID
	SupplierID     *uint          `gorm:"index" json:"supplier_id,omitempty"`                             // 上游供应商ID
	Name           string         `gorm:"not null" json:"name"`                                           // 商家名称
	Status         string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"` // 商家状态
	CommissionRate float64        `gorm:"not null;default:0" json:"commission_rate"`                      // 商家默认佣金比例（百分比，0 表示未配置）
	ContactEmail   string         `gorm:"type:varchar(255)" json:"contact_email"`                         // 联系邮箱
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                        // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间

	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`         // 用户信息
	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"` // 供应商信息
}

// TableName 指定表名
func (Seller) TableName() string {
	return "sellers"
}
