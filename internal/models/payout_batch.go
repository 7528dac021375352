package models

import (
	"time"

	"gorm.io/gorm"
)

// PayoutBatch 佣金结算批次
type PayoutBatch struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                               // 主键
	BatchNo         string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"batch_no"`              // 批次编号（UUID）
	PartnerID       uint           `gorm:"not null;index" json:"partner_id"`                                   // 合伙人ID
	Status          string         `gorm:"type:varchar(20);not null;default:'processing';index" json:"status"` // 批次状态
	TotalAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`          // 结算总金额
	CommissionCount int            `gorm:"not null;default:0" json:"commission_count"`                         // 佣金笔数
	OperatorAdminID uint           `gorm:"index" json:"operator_admin_id"`                                     // 操作管理员ID
	CompletedAt     *time.Time     `json:"completed_at"`                                                       // 完成时间
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                            // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                            // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                     // 软删除时间

	Partner Partner `gorm:"foreignKey:PartnerID" json:"partner,omitempty"` // 合伙人
}

// TableName 指定表名
func (PayoutBatch) TableName() string {
	return "payout_batches"
}
