package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                   // 主键
	OrderNo         string         `gorm:"uniqueIndex;not null" json:"order_no"`                   // 订单编号
	UserID          uint           `gorm:"index;not null" json:"user_id"`                          // 买家用户ID
	Status          string         `gorm:"index;not null" json:"status"`                           // 订单状态
	PaymentStatus   string         `gorm:"index;not null" json:"payment_status"`                   // 支付状态
	PaymentMethod   string         `gorm:"type:varchar(50)" json:"payment_method,omitempty"`       // 支付方式
	Currency        string         `gorm:"not null" json:"currency"`                               // 币种
	Subtotal        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`  // 商品小计
	DiscountAmount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	ShippingAmount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_amount"` // 运费
	TaxAmount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`      // 税费
	TotalAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`    // 应付总额
	BillingAddress  string         `gorm:"type:text" json:"billing_address,omitempty"`             // 账单地址（JSON）
	ShippingAddress string         `gorm:"type:text" json:"shipping_address,omitempty"`            // 收货地址（JSON）
	Notes           string         `gorm:"type:text" json:"notes,omitempty"`                       // 买家备注
	PartnerID       *uint          `gorm:"index" json:"partner_id,omitempty"`                      // 归因合伙人ID快照
	ReferralCode    string         `gorm:"type:varchar(32);index" json:"referral_code,omitempty"`  // 归因推荐码快照
	AttributionSrc  string         `gorm:"type:varchar(20)" json:"attribution_source,omitempty"`   // 归因来源（url/cookie）
	ClickID         *uint          `gorm:"index" json:"click_id,omitempty"`                        // 归因点击记录ID快照
	ClientIP        string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`            // 下单客户端IP
	ConfirmedAt     *time.Time     `json:"confirmed_at"`                                           // 确认时间
	ShippedAt       *time.Time     `json:"shipped_at"`                                             // 发货时间
	DeliveredAt     *time.Time     `gorm:"index" json:"delivered_at"`                              // 送达时间
	CancelledAt     *time.Time     `json:"cancelled_at"`                                           // 取消时间
	RefundedAt      *time.Time     `json:"refunded_at"`                                            // 退款时间
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                         // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
