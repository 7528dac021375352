package models

import "time"

// PartnerClick 推广链接点击记录
type PartnerClick struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                       // 主键
	PartnerID   uint      `gorm:"not null;index" json:"partner_id"`                           // 合伙人ID
	VisitorKey  string    `gorm:"type:varchar(128);index" json:"visitor_key"`                 // 访客标识
	LandingPath string    `gorm:"type:varchar(512)" json:"landing_path"`                      // 落地页面路径
	Referrer    string    `gorm:"type:varchar(1024)" json:"referrer"`                         // 来源地址
	UTMSource   string    `gorm:"type:varchar(255)" json:"utm_source"`                        // UTM 来源
	UTMMedium   string    `gorm:"type:varchar(255)" json:"utm_medium"`                        // UTM 媒介
	UTMCampaign string    `gorm:"type:varchar(255)" json:"utm_campaign"`                      // UTM 活动
	ClientIP    string    `gorm:"type:varchar(64)" json:"client_ip"`                          // 客户端IP
	UserAgent   string    `gorm:"type:varchar(1024)" json:"user_agent"`                       // 客户端UA
	CreatedAt   time.Time `gorm:"index;not null;default:CURRENT_TIMESTAMP" json:"created_at"` // 创建时间

	Partner Partner `gorm:"foreignKey:PartnerID" json:"partner,omitempty"` // 合伙人
}

// TableName 指定表名
func (PartnerClick) TableName() string {
	return "partner_clicks"
}
