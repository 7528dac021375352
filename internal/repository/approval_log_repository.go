package repository

import (
	"github.com/linkmall/internal/models"

	"gorm.io/gorm"
)

// ApprovalLogRepository 审批日志数据访问接口
type ApprovalLogRepository interface {
	Create(log *models.ApprovalLog) error
	ListAdmin(filter ApprovalLogListFilter) ([]models.ApprovalLog, int64, error)
}

// GormApprovalLogRepository GORM 实现
type GormApprovalLogRepository struct {
	db *gorm.DB
}

// NewApprovalLogRepository 创建审批日志仓库
func NewApprovalLogRepository(db *gorm.DB) *GormApprovalLogRepository {
	return &GormApprovalLogRepository{db: db}
}

// Create 创建审批日志
func (r *GormApprovalLogRepository) Create(log *models.ApprovalLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

// ListAdmin 管理端查询审批日志
func (r *GormApprovalLogRepository) ListAdmin(filter ApprovalLogListFilter) ([]models.ApprovalLog, int64, error) {
	query := r.db.Model(&models.ApprovalLog{})
	if filter.OperatorAdminID != 0 {
		query = query.Where("operator_admin_id = ?", filter.OperatorAdminID)
	}
	if filter.TargetType != "" {
		query = query.Where("target_type = ?", filter.TargetType)
	}
	if filter.TargetID != 0 {
		query = query.Where("target_id = ?", filter.TargetID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	query = applyTimeRange(query, "created_at", filter.CreatedFrom, filter.CreatedTo)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	logs := make([]models.ApprovalLog, 0)
	if err := query.Order("id DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
