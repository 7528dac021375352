package models

// Setting 系统设置，按 key 存 JSON，缺行时回落到静态配置
type Setting struct {
	Key       string `gorm:"primarykey" json:"key"`
	ValueJSON JSON   `gorm:"type:json" json:"value"`
}

// TableName 指定表名
func (Setting) TableName() string {
	return "settings"
}
