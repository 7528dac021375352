package models

import (
	"time"

	"gorm.io/gorm"
)

// PartnerCommission 合伙人佣金记录（财务凭证，只改状态不删除）
type PartnerCommission struct {
	ID                    uint           `gorm:"primarykey" json:"id"`                                                                                 // 主键
	CommissionNo          string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"commission_no"`                                           // 佣金编号（UUID）
	PartnerID             uint           `gorm:"not null;index;index:idx_partner_commission_unique,unique" json:"partner_id"`                          // 合伙人ID
	OrderID               uint           `gorm:"not null;index;index:idx_partner_commission_unique,unique" json:"order_id"`                            // 订单ID
	OrderItemID           *uint          `gorm:"index:idx_partner_commission_unique,unique" json:"order_item_id,omitempty"`                            // 订单项ID
	ProductID             uint           `gorm:"index" json:"product_id"`                                                                              // 商品ID
	SellerID              uint           `gorm:"index" json:"seller_id"`                                                                               // 商家ID
	CommissionType        string         `gorm:"type:varchar(20);not null;default:'sale'" json:"commission_type"`                                      // 佣金类型
	Status                string         `gorm:"type:varchar(32);not null;index" json:"status"`                                                        // 佣金状态
	OrderAmount           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"order_amount"`                                            // 订单项小计金额
	ProductPrice          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"product_price"`                                           // 商品单价快照
	Quantity              int            `gorm:"not null;default:0" json:"quantity"`                                                                   // 数量
	CommissionRate        float64        `gorm:"not null;default:0" json:"commission_rate"`                                                            // 佣金比例（百分比，固定佣金时为 0）
	CommissionAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"commission_amount"`                                       // 佣金金额
	ReferralCode          string         `gorm:"type:varchar(32);index" json:"referral_code"`                                                          // 推荐码快照
	UTMSource             string         `gorm:"type:varchar(255)" json:"utm_source"`                                                                  // UTM 来源快照
	UTMMedium             string         `gorm:"type:varchar(255)" json:"utm_medium"`                                                                  // UTM 媒介快照
	UTMCampaign           string         `gorm:"type:varchar(255)" json:"utm_campaign"`                                                                // UTM 活动快照
	ClientIP              string         `gorm:"type:varchar(64)" json:"client_ip"`                                                                    // 点击客户端IP快照
	UserAgent             string         `gorm:"type:varchar(1024)" json:"user_agent"`                                                                 // 点击客户端UA快照
	ClickedAt             *time.Time     `json:"clicked_at,omitempty"`                                                                                 // 点击时间
	ConvertedAt           *time.Time     `json:"converted_at,omitempty"`                                                                               // 成交时间
	ConversionTimeMinutes *int           `json:"conversion_time_minutes,omitempty"`                                                                    // 点击到成交耗时（分钟，向下取整）
	ConfirmAt             *time.Time     `gorm:"index" json:"confirm_at,omitempty"`                                                                    // 退货期到期时间
	ConfirmedAt           *time.Time     `json:"confirmed_at,omitempty"`                                                                               // 确认时间
	PaidAt                *time.Time     `json:"paid_at,omitempty"`                                                                                    // 结算时间
	PayoutBatchID         *uint          `gorm:"index" json:"payout_batch_id,omitempty"`                                                               // 结算批次ID
	CancellationReason    string         `gorm:"type:varchar(255)" json:"cancellation_reason"`                                                         // 取消原因
	DisputeReason         string         `gorm:"type:varchar(255)" json:"dispute_reason"`                                                              // 争议原因
	CreatedAt             time.Time      `gorm:"index" json:"created_at"`                                                                              // 创建时间
	UpdatedAt             time.Time      `gorm:"index" json:"updated_at"`                                                                              // 更新时间
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`                                                                                       // 软删除时间

	Partner     Partner      `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`          // 合伙人
	Order       Order        `gorm:"foreignKey:OrderID" json:"order,omitempty"`              // 关联订单
	PayoutBatch *PayoutBatch `gorm:"foreignKey:PayoutBatchID" json:"payout_batch,omitempty"` // 结算批次
}

// TableName 指定表名
func (PartnerCommission) TableName() string {
	return "partner_commissions"
}
