package service

import (
	"strings"
	"time"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/logger"
	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/repository"
)

// SellerService 商家业务服务
type SellerService struct {
	sellerRepo      repository.SellerRepository
	userRepo        repository.UserRepository
	approvalLogRepo repository.ApprovalLogRepository
}

// NewSellerService 创建商家服务
func NewSellerService(
	sellerRepo repository.SellerRepository,
	userRepo repository.UserRepository,
	approvalLogRepo repository.ApprovalLogRepository,
) *SellerService {
	return &SellerService{
		sellerRepo:      sellerRepo,
		userRepo:        userRepo,
		approvalLogRepo: approvalLogRepo,
	}
}

// CreateSellerInput 创建商家输入
type CreateSellerInput struct {
	UserID         uint
	SupplierID     *uint
	Name           string
	ContactEmail   string
	CommissionRate float64
}

// UpdateSellerInput 更新商家输入
type UpdateSellerInput struct {
	Name           *string
	ContactEmail   *string
	CommissionRate *float64
	SupplierID     *uint
}

// CreateSeller 创建商家档案（初始为待审核）
func (s *SellerService) CreateSeller(input CreateSellerInput) (*models.Seller, error) {
	name := strings.TrimSpace(input.Name)
	if input.UserID == 0 || name == "" {
		return nil, ErrInvalidInput
	}
	if input.CommissionRate < 0 || input.CommissionRate > 100 {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if strings.TrimSpace(user.Status) == constants.UserStatusDisabled {
		return nil, ErrUserDisabled
	}

	existing, err := s.sellerRepo.GetByUserID(input.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSellerExists
	}

	seller := &models.Seller{
		UserID:         input.UserID,
		SupplierID:     input.SupplierID,
		Name:           name,
		Status:         constants.SellerStatusPending,
		CommissionRate: input.CommissionRate,
		ContactEmail:   strings.TrimSpace(input.ContactEmail),
	}
	if err := s.sellerRepo.Create(seller); err != nil {
		return nil, err
	}
	return s.sellerRepo.GetByID(seller.ID)
}

// GetSeller 查询商家详情
func (s *SellerService) GetSeller(id uint) (*models.Seller, error) {
	seller, err := s.sellerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, ErrSellerNotFound
	}
	return seller, nil
}

// GetSellerByUserID 按用户查询商家档案
func (s *SellerService) GetSellerByUserID(userID uint) (*models.Seller, error) {
	if userID == 0 {
		return nil, ErrSellerNotFound
	}
	seller, err := s.sellerRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, ErrSellerNotFound
	}
	return seller, nil
}

// ListSellers 后台查询商家列表
func (s *SellerService) ListSellers(filter repository.SellerListFilter) ([]models.Seller, int64, error) {
	return s.sellerRepo.List(filter)
}

// UpdateSeller 更新商家资料
func (s *SellerService) UpdateSeller(id uint, input UpdateSellerInput) (*models.Seller, error) {
	seller, err := s.sellerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, ErrSellerNotFound
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidInput
		}
		seller.Name = name
	}
	if input.ContactEmail != nil {
		seller.ContactEmail = strings.TrimSpace(*input.ContactEmail)
	}
	if input.CommissionRate != nil {
		rate := *input.CommissionRate
		if rate < 0 || rate > 100 {
			return nil, ErrInvalidInput
		}
		seller.CommissionRate = rate
	}
	if input.SupplierID != nil {
		if *input.SupplierID == 0 {
			seller.SupplierID = nil
		} else {
			seller.SupplierID = input.SupplierID
		}
	}
	seller.UpdatedAt = time.Now()

	if err := s.sellerRepo.Update(seller); err != nil {
		return nil, err
	}
	return s.sellerRepo.GetByID(id)
}

// allowedSellerStatusByAction 审批动作与商家状态映射
var allowedSellerStatusByAction = map[string]struct {
	from   map[string]bool
	target string
}{
	constants.ApprovalActionApprove: {
		from:   map[string]bool{constants.SellerStatusPending: true},
		target: constants.SellerStatusActive,
	},
	constants.ApprovalActionSuspend: {
		from:   map[string]bool{constants.SellerStatusActive: true},
		target: constants.SellerStatusSuspended,
	},
	constants.ApprovalActionReactivate: {
		from:   map[string]bool{constants.SellerStatusSuspended: true},
		target: constants.SellerStatusActive,
	},
}

// ReviewSeller 管理端审批商家状态
func (s *SellerService) ReviewSeller(id uint, action string, operatorAdminID uint, operatorUsername, reason, requestID string) (*models.Seller, error) {
	act := strings.ToLower(strings.TrimSpace(action))
	rule, ok := allowedSellerStatusByAction[act]
	if !ok {
		return nil, ErrInvalidInput
	}

	seller, err := s.sellerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, ErrSellerNotFound
	}
	if !rule.from[seller.Status] {
		return nil, ErrForbidden
	}

	if err := s.sellerRepo.UpdateStatus(id, rule.target, time.Now()); err != nil {
		return nil, err
	}
	s.writeSellerApprovalLog(operatorAdminID, operatorUsername, id, act, reason, requestID)
	return s.sellerRepo.GetByID(id)
}

func (s *SellerService) writeSellerApprovalLog(adminID uint, username string, sellerID uint, action, reason, requestID string) {
	if s.approvalLogRepo == nil {
		return
	}
	entry := &models.ApprovalLog{
		OperatorAdminID:  adminID,
		OperatorUsername: strings.TrimSpace(username),
		TargetType:       constants.ApprovalTargetSeller,
		TargetID:         sellerID,
		Action:           action,
		Reason:           strings.TrimSpace(reason),
		RequestID:        strings.TrimSpace(requestID),
		CreatedAt:        time.Now(),
	}
	if err := s.approvalLogRepo.Create(entry); err != nil {
		logger.Warnw("approval_log_write_failed",
			"target_type", constants.ApprovalTargetSeller,
			"target_id", sellerID,
			"action", action,
			"error", err,
		)
	}
}
