package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin 后台管理员账号
type Admin struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	Username           string         `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                  // 改密后自增，旧 Token 全部作废
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`                               // 该时间点前签发的 Token 失效
	IsSuper            bool           `gorm:"not null;default:false;index" json:"is_super"` // 超级管理员跳过 RBAC 校验
	LastLoginAt        *time.Time     `json:"last_login_at"`
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Admin) TableName() string {
	return "admins"
}
