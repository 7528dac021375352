package models

import "time"

// ApprovalLog 审批审计日志
// 说明：记录后台对合伙人、商家、佣金争议等对象的审批动作，只追加不修改。
type ApprovalLog struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	OperatorAdminID  uint      `gorm:"index;not null" json:"operator_admin_id"`
	OperatorUsername string    `gorm:"type:varchar(100);index;not null;default:''" json:"operator_username"`
	TargetType       string    `gorm:"type:varchar(40);index;not null" json:"target_type"`
	TargetID         uint      `gorm:"index;not null" json:"target_id"`
	Action           string    `gorm:"type:varchar(100);index;not null" json:"action"`
	Reason           string    `gorm:"type:varchar(500);not null;default:''" json:"reason"`
	RequestID        string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`
	DetailJSON       JSON      `gorm:"type:json" json:"detail"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (ApprovalLog) TableName() string {
	return "approval_logs"
}
