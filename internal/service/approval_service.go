package service

import (
	"strings"

	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/repository"
)

// ApprovalLogService 审批日志查询服务
type ApprovalLogService struct {
	repo repository.ApprovalLogRepository
}

// NewApprovalLogService 创建审批日志服务
func NewApprovalLogService(repo repository.ApprovalLogRepository) *ApprovalLogService {
	return &ApprovalLogService{repo: repo}
}

// ListAdmin 管理端查询审批日志
func (s *ApprovalLogService) ListAdmin(filter repository.ApprovalLogListFilter) ([]models.ApprovalLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.ApprovalLog{}, 0, nil
	}
	filter.TargetType = strings.TrimSpace(filter.TargetType)
	filter.Action = strings.ToLower(strings.TrimSpace(filter.Action))
	return s.repo.ListAdmin(filter)
}
