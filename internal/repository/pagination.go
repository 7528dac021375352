package repository

import (
	"time"

	"gorm.io/gorm"
)

// applyPagination 统一分页，pageSize 不合法时视为不分页
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}

// applyTimeRange 追加闭区间时间条件，nil 端点不限制
func applyTimeRange(query *gorm.DB, column string, from, to *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where(column+" >= ?", *from)
	}
	if to != nil {
		query = query.Where(column+" <= ?", *to)
	}
	return query
}
