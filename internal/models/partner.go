package models

import (
	"time"

	"gorm.io/gorm"
)

// Partner 合伙人（推广联盟）档案
type Partner struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                           // 主键
	UserID            uint           `gorm:"not null;uniqueIndex" json:"user_id"`                            // 所属用户ID
	ReferralCode      string         `gorm:"type:varchar(32);not null;uniqueIndex" json:"referral_code"`     // 推荐码（签发后不可变）
	Tier              string         `gorm:"type:varchar(20);not null;default:'bronze';index" json:"tier"`   // 等级
	Status            string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"` // 状态
	CommissionRate    *float64       `json:"commission_rate,omitempty"`                                      // 合伙人自有佣金比例（百分比，覆盖等级默认值）
	TotalEarnings     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_earnings"`    // 累计佣金
	PendingEarnings   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"pending_earnings"`  // 待确认佣金
	ConfirmedEarnings Money          `gorm:"type:decimal(20,2);not null;default:0" json:"confirmed_earnings"` // 已确认未结算佣金
	PaidEarnings      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"paid_earnings"`     // 已结算佣金
	ClickCount        int64          `gorm:"not null;default:0" json:"click_count"`                          // 点击数
	ConversionCount   int64          `gorm:"not null;default:0" json:"conversion_count"`                     // 成交数
	ApprovedAt        *time.Time     `json:"approved_at"`                                                    // 审批通过时间
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                        // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"` // 用户信息
}

// TableName 指定表名
func (Partner) TableName() string {
	return "partners"
}
