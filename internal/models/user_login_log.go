package models

import "time"

// UserLoginLog 用户登录日志，后台审计与个人安全中心共用
type UserLoginLog struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      uint      `gorm:"index" json:"user_id"` // 登录失败时可能为 0
	Email       string    `gorm:"index;not null" json:"email"`
	Status      string    `gorm:"index;not null" json:"status"` // success / failed
	FailReason  string    `gorm:"index" json:"fail_reason"`
	ClientIP    string    `gorm:"type:varchar(64);index" json:"client_ip"`
	UserAgent   string    `gorm:"type:text" json:"user_agent"`
	LoginSource string    `gorm:"type:varchar(32);index" json:"login_source"`
	RequestID   string    `gorm:"type:varchar(64);index" json:"request_id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (UserLoginLog) TableName() string {
	return "user_login_logs"
}
