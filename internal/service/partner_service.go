package service

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/linkmall/internal/cache"
	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/logger"
	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/repository"

	"github.com/shopspring/decimal"
)

const referralCodeLength = 8

// loginReferralStore 登录归因关联的缓存存取
type loginReferralStore interface {
	Save(userID uint, code string) error
	Load(userID uint) (string, bool)
}

type cacheLoginReferralStore struct{}

func (cacheLoginReferralStore) Save(userID uint, code string) error {
	return cache.SetUserReferral(context.Background(), userID, code)
}

func (cacheLoginReferralStore) Load(userID uint) (string, bool) {
	code, hit, err := cache.GetUserReferral(context.Background(), userID)
	if err != nil || !hit {
		return "", false
	}
	return code, true
}

// PartnerService 合伙人业务服务
type PartnerService struct {
	partnerRepo     repository.PartnerRepository
	commissionRepo  repository.CommissionRepository
	userRepo        repository.UserRepository
	approvalLogRepo repository.ApprovalLogRepository
	settingService  *SettingService
	loginReferrals  loginReferralStore
}

// NewPartnerService 创建合伙人服务
func NewPartnerService(
	partnerRepo repository.PartnerRepository,
	commissionRepo repository.CommissionRepository,
	userRepo repository.UserRepository,
	approvalLogRepo repository.ApprovalLogRepository,
	settingService *SettingService,
) *PartnerService {
	return &PartnerService{
		partnerRepo:     partnerRepo,
		commissionRepo:  commissionRepo,
		userRepo:        userRepo,
		approvalLogRepo: approvalLogRepo,
		settingService:  settingService,
		loginReferrals:  cacheLoginReferralStore{},
	}
}

// TrackClickInput 推广点击记录输入
type TrackClickInput struct {
	ReferralCode string
	VisitorKey   string
	LandingPath  string
	Referrer     string
	UTMSource    string
	UTMMedium    string
	UTMCampaign  string
	ClientIP     string
	UserAgent    string
}

// PartnerDashboard 合伙人中心数据
type PartnerDashboard struct {
	Opened            bool         `json:"opened"`
	ReferralCode      string       `json:"referral_code"`
	PromotionPath     string       `json:"promotion_path"`
	Tier              string       `json:"tier"`
	Status            string       `json:"status"`
	ClickCount        int64        `json:"click_count"`
	ConversionCount   int64        `json:"conversion_count"`
	ConversionRate    float64      `json:"conversion_rate"`
	PendingEarnings   models.Money `json:"pending_earnings"`
	ConfirmedEarnings models.Money `json:"confirmed_earnings"`
	PaidEarnings      models.Money `json:"paid_earnings"`
	TotalEarnings     models.Money `json:"total_earnings"`
}

// PartnerAdminItem 后台合伙人列表项
type PartnerAdminItem struct {
	Partner models.Partner `json:"partner"`
	Clicks  int64          `json:"clicks"`
	Orders  int64          `json:"orders"`
}

func (s *PartnerService) resolveCommissionSetting() CommissionSetting {
	if s == nil || s.settingService == nil {
		return CommissionDefaultSetting()
	}
	setting, err := s.settingService.GetCommissionSetting()
	if err != nil {
		return CommissionDefaultSetting()
	}
	return setting
}

// SignupPartner 用户申请开通合伙人
func (s *PartnerService) SignupPartner(userID uint) (*models.Partner, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}
	if s.partnerRepo == nil || s.userRepo == nil {
		return nil, ErrNotFound
	}
	setting := s.resolveCommissionSetting()
	if !setting.Enabled {
		return nil, ErrPartnerProgramDisabled
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if strings.TrimSpace(user.Status) == constants.UserStatusDisabled {
		return nil, ErrUserDisabled
	}

	existing, err := s.partnerRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPartnerExists
	}

	const maxRetry = 8
	for i := 0; i < maxRetry; i++ {
		code, genErr := generateReferralCode()
		if genErr != nil {
			return nil, ErrReferralCodeGenerate
		}
		partner := &models.Partner{
			UserID:       userID,
			ReferralCode: code,
			Tier:         constants.PartnerTierBronze,
			Status:       constants.PartnerStatusPending,
		}
		if err := s.partnerRepo.Create(partner); err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return nil, err
		}
		created, err := s.partnerRepo.GetByID(partner.ID)
		if err != nil {
			return nil, err
		}
		if created != nil {
			return created, nil
		}
		return partner, nil
	}
	return nil, ErrReferralCodeGenerate
}

// GetPartnerByUserID 查询用户的合伙人档案
func (s *PartnerService) GetPartnerByUserID(userID uint) (*models.Partner, error) {
	if userID == 0 || s.partnerRepo == nil {
		return nil, ErrPartnerNotFound
	}
	partner, err := s.partnerRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, ErrPartnerNotFound
	}
	return partner, nil
}

// GetActivePartnerByCode 按推荐码查询启用中的合伙人
func (s *PartnerService) GetActivePartnerByCode(rawCode string) (*models.Partner, error) {
	code := normalizeReferralCode(rawCode)
	if code == "" || s.partnerRepo == nil {
		return nil, ErrPartnerNotFound
	}
	partner, err := s.partnerRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if partner == nil || partner.Status != constants.PartnerStatusActive {
		return nil, ErrPartnerNotFound
	}
	return partner, nil
}

// TrackClick 记录推广点击（同访客同落地页在去重窗口内不重复计数）
func (s *PartnerService) TrackClick(input TrackClickInput) error {
	if s.partnerRepo == nil {
		return nil
	}
	code := normalizeReferralCode(input.ReferralCode)
	if code == "" {
		return nil
	}
	setting := s.resolveCommissionSetting()
	if !setting.Enabled {
		return nil
	}
	partner, err := s.partnerRepo.GetByCode(code)
	if err != nil {
		return err
	}
	if partner == nil || partner.Status != constants.PartnerStatusActive {
		return nil
	}

	visitorKey := strings.TrimSpace(input.VisitorKey)
	landingPath := strings.TrimSpace(input.LandingPath)
	if visitorKey != "" && setting.ClickDedupeMinutes > 0 {
		since := time.Now().Add(-time.Duration(setting.ClickDedupeMinutes) * time.Minute)
		duplicated, err := s.partnerRepo.HasRecentClick(partner.ID, visitorKey, landingPath, since)
		if err != nil {
			return err
		}
		if duplicated {
			return nil
		}
	}

	click := &models.PartnerClick{
		PartnerID:   partner.ID,
		VisitorKey:  visitorKey,
		LandingPath: landingPath,
		Referrer:    strings.TrimSpace(input.Referrer),
		UTMSource:   strings.TrimSpace(input.UTMSource),
		UTMMedium:   strings.TrimSpace(input.UTMMedium),
		UTMCampaign: strings.TrimSpace(input.UTMCampaign),
		ClientIP:    strings.TrimSpace(input.ClientIP),
		UserAgent:   strings.TrimSpace(input.UserAgent),
		CreatedAt:   time.Now(),
	}
	if err := s.partnerRepo.CreateClick(click); err != nil {
		return err
	}
	if err := s.partnerRepo.IncrementCounters(partner.ID, 1, 0); err != nil {
		logger.Warnw("partner_increment_clicks_failed",
			"partner_id", partner.ID,
			"error", err,
		)
	}
	return nil
}

// ResolveOrderAttribution 解析下单归因快照。
// 显式推荐码优先于访客 Cookie 的末次触达记录；买家即合伙人本人时不归因。
func (s *PartnerService) ResolveOrderAttribution(buyerUserID uint, rawCode, rawVisitorKey string) (*models.Partner, *models.PartnerClick, string, error) {
	if s.partnerRepo == nil {
		return nil, nil, "", nil
	}
	setting := s.resolveCommissionSetting()
	if !setting.Enabled {
		return nil, nil, "", nil
	}
	window := time.Duration(setting.AttributionWindowDays) * 24 * time.Hour
	since := time.Now().Add(-window)
	visitorKey := strings.TrimSpace(rawVisitorKey)

	if code := normalizeReferralCode(rawCode); code != "" {
		partner, err := s.partnerRepo.GetByCode(code)
		if err != nil {
			return nil, nil, "", err
		}
		if partner != nil && partner.Status == constants.PartnerStatusActive {
			if buyerUserID > 0 && partner.UserID == buyerUserID {
				return nil, nil, "", nil
			}
			var click *models.PartnerClick
			if visitorKey != "" {
				click, err = s.partnerRepo.GetLatestClickByVisitorKey(partner.ID, visitorKey, since)
				if err != nil {
					return nil, nil, "", err
				}
			}
			return partner, click, constants.AttributionSourceURL, nil
		}
	}

	if visitorKey != "" {
		partner, err := s.partnerRepo.GetLatestActivePartnerByVisitorKey(visitorKey, since)
		if err != nil {
			return nil, nil, "", err
		}
		if partner != nil {
			if buyerUserID > 0 && partner.UserID == buyerUserID {
				return nil, nil, "", nil
			}
			click, err := s.partnerRepo.GetLatestClickByVisitorKey(partner.ID, visitorKey, since)
			if err != nil {
				return nil, nil, "", err
			}
			return partner, click, constants.AttributionSourceCookie, nil
		}
	}

	// Cookie 线索缺失时回退到登录时缓存的关联码
	return s.resolveLoginAttribution(buyerUserID)
}

// resolveLoginAttribution 按登录时关联的推荐码解析归因
func (s *PartnerService) resolveLoginAttribution(buyerUserID uint) (*models.Partner, *models.PartnerClick, string, error) {
	if buyerUserID == 0 || s.loginReferrals == nil {
		return nil, nil, "", nil
	}
	code, ok := s.loginReferrals.Load(buyerUserID)
	if !ok {
		return nil, nil, "", nil
	}
	partner, err := s.partnerRepo.GetByCode(normalizeReferralCode(code))
	if err != nil {
		return nil, nil, "", err
	}
	if partner == nil || partner.Status != constants.PartnerStatusActive || partner.UserID == buyerUserID {
		return nil, nil, "", nil
	}
	return partner, nil, constants.AttributionSourceLogin, nil
}

// AssociateLoginReferral 登录时把当前有效推荐码关联到用户，失败只记日志
func (s *PartnerService) AssociateLoginReferral(userID uint, rawCode string) {
	if s == nil || userID == 0 || s.loginReferrals == nil {
		return
	}
	partner, err := s.GetActivePartnerByCode(rawCode)
	if err != nil || partner == nil {
		return
	}
	// 自推荐不建立关联
	if partner.UserID == userID {
		return
	}
	if err := s.loginReferrals.Save(userID, partner.ReferralCode); err != nil {
		logger.Warnw("partner_login_referral_save_failed",
			"user_id", userID,
			"referral_code", partner.ReferralCode,
			"error", err,
		)
	}
}

// GetPartnerDashboard 获取合伙人中心数据
func (s *PartnerService) GetPartnerDashboard(userID uint) (PartnerDashboard, error) {
	dashboard := PartnerDashboard{
		Opened:            false,
		PendingEarnings:   models.NewMoneyFromDecimal(decimal.Zero),
		ConfirmedEarnings: models.NewMoneyFromDecimal(decimal.Zero),
		PaidEarnings:      models.NewMoneyFromDecimal(decimal.Zero),
		TotalEarnings:     models.NewMoneyFromDecimal(decimal.Zero),
	}
	if userID == 0 || s.partnerRepo == nil {
		return dashboard, nil
	}
	partner, err := s.partnerRepo.GetByUserID(userID)
	if err != nil {
		return dashboard, err
	}
	if partner == nil {
		return dashboard, nil
	}

	dashboard.Opened = true
	dashboard.ReferralCode = partner.ReferralCode
	dashboard.PromotionPath = "/r/" + partner.ReferralCode
	dashboard.Tier = partner.Tier
	dashboard.Status = partner.Status
	dashboard.ClickCount = partner.ClickCount
	dashboard.ConversionCount = partner.ConversionCount
	dashboard.ConversionRate = calcConversionRate(partner.ConversionCount, partner.ClickCount)
	dashboard.PendingEarnings = partner.PendingEarnings
	dashboard.ConfirmedEarnings = partner.ConfirmedEarnings
	dashboard.PaidEarnings = partner.PaidEarnings
	dashboard.TotalEarnings = partner.TotalEarnings
	return dashboard, nil
}

// ListPartnerCommissions 查询合伙人自己的佣金记录
func (s *PartnerService) ListPartnerCommissions(userID uint, page, pageSize int, status string) ([]models.PartnerCommission, int64, error) {
	if userID == 0 || s.partnerRepo == nil || s.commissionRepo == nil {
		return []models.PartnerCommission{}, 0, nil
	}
	partner, err := s.partnerRepo.GetByUserID(userID)
	if err != nil {
		return nil, 0, err
	}
	if partner == nil {
		return []models.PartnerCommission{}, 0, nil
	}
	return s.commissionRepo.List(repository.CommissionListFilter{
		Page:      page,
		PageSize:  pageSize,
		PartnerID: partner.ID,
		Status:    strings.TrimSpace(status),
	})
}

// ListPartnersForAdmin 后台查询合伙人列表
func (s *PartnerService) ListPartnersForAdmin(filter repository.PartnerListFilter) ([]PartnerAdminItem, int64, error) {
	if s.partnerRepo == nil {
		return []PartnerAdminItem{}, 0, nil
	}
	rows, total, err := s.partnerRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		if row.ID == 0 {
			continue
		}
		ids = append(ids, row.ID)
	}
	statsMap, err := s.partnerRepo.GetStatsBatch(ids)
	if err != nil {
		return nil, 0, err
	}
	result := make([]PartnerAdminItem, 0, len(rows))
	for _, row := range rows {
		agg := statsMap[row.ID]
		result = append(result, PartnerAdminItem{
			Partner: row,
			Clicks:  agg.ClickCount,
			Orders:  agg.ConvertedOrderCount,
		})
	}
	return result, total, nil
}

// GetPartnerForAdmin 后台查询合伙人详情
func (s *PartnerService) GetPartnerForAdmin(partnerID uint) (*models.Partner, error) {
	if partnerID == 0 || s.partnerRepo == nil {
		return nil, ErrPartnerNotFound
	}
	partner, err := s.partnerRepo.GetByID(partnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, ErrPartnerNotFound
	}
	return partner, nil
}

// allowedPartnerStatusByAction 审批动作与目标状态映射
var allowedPartnerStatusByAction = map[string]struct {
	from   map[string]bool
	target string
}{
	constants.ApprovalActionApprove: {
		from:   map[string]bool{constants.PartnerStatusPending: true},
		target: constants.PartnerStatusActive,
	},
	constants.ApprovalActionReject: {
		from:   map[string]bool{constants.PartnerStatusPending: true},
		target: constants.PartnerStatusInactive,
	},
	constants.ApprovalActionSuspend: {
		from:   map[string]bool{constants.PartnerStatusActive: true},
		target: constants.PartnerStatusSuspended,
	},
	constants.ApprovalActionReactivate: {
		from:   map[string]bool{constants.PartnerStatusSuspended: true, constants.PartnerStatusInactive: true},
		target: constants.PartnerStatusActive,
	},
}

// ReviewPartner 管理端审批合伙人状态
func (s *PartnerService) ReviewPartner(partnerID uint, action string, operatorAdminID uint, operatorUsername, reason, requestID string) (*models.Partner, error) {
	if partnerID == 0 || s.partnerRepo == nil {
		return nil, ErrPartnerNotFound
	}
	act := strings.ToLower(strings.TrimSpace(action))
	rule, ok := allowedPartnerStatusByAction[act]
	if !ok {
		return nil, ErrInvalidInput
	}

	partner, err := s.partnerRepo.GetByID(partnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, ErrPartnerNotFound
	}
	if !rule.from[partner.Status] {
		return nil, ErrPartnerStatusInvalid
	}

	now := time.Now()
	if act == constants.ApprovalActionApprove {
		partner.Status = rule.target
		partner.ApprovedAt = &now
		partner.UpdatedAt = now
		if err := s.partnerRepo.Update(partner); err != nil {
			return nil, err
		}
	} else {
		if err := s.partnerRepo.UpdateStatus(partnerID, rule.target, now); err != nil {
			return nil, err
		}
	}
	s.writeApprovalLog(operatorAdminID, operatorUsername, constants.ApprovalTargetPartner, partnerID, act, reason, requestID)
	return s.partnerRepo.GetByID(partnerID)
}

// RecalcPartnerTier 按累计有效佣金重算单个合伙人等级
func (s *PartnerService) RecalcPartnerTier(partnerID uint) (string, error) {
	if partnerID == 0 || s.partnerRepo == nil || s.commissionRepo == nil {
		return "", ErrPartnerNotFound
	}
	partner, err := s.partnerRepo.GetByID(partnerID)
	if err != nil {
		return "", err
	}
	if partner == nil {
		return "", ErrPartnerNotFound
	}

	setting := s.resolveCommissionSetting()
	earned, err := s.commissionRepo.SumByPartner(partnerID, []string{
		constants.CommissionStatusConfirmed,
		constants.CommissionStatusPaid,
	})
	if err != nil {
		return "", err
	}

	tier := resolveTierByEarnings(earned, setting)
	if tier == partner.Tier {
		return tier, nil
	}
	if err := s.partnerRepo.UpdateTier(partnerID, tier, time.Now()); err != nil {
		return "", err
	}
	logger.Infow("partner_tier_changed",
		"partner_id", partnerID,
		"from", partner.Tier,
		"to", tier,
	)
	return tier, nil
}

// RecalcPartnerTiers 批量重算启用中合伙人的等级
func (s *PartnerService) RecalcPartnerTiers() (int, error) {
	if s.partnerRepo == nil {
		return 0, nil
	}
	ids, err := s.partnerRepo.ListActiveIDs()
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, id := range ids {
		if _, err := s.RecalcPartnerTier(id); err != nil {
			logger.Warnw("partner_tier_recalc_failed",
				"partner_id", id,
				"error", err,
			)
			continue
		}
		updated++
	}
	return updated, nil
}

func (s *PartnerService) writeApprovalLog(adminID uint, username, targetType string, targetID uint, action, reason, requestID string) {
	if s.approvalLogRepo == nil {
		return
	}
	entry := &models.ApprovalLog{
		OperatorAdminID:  adminID,
		OperatorUsername: strings.TrimSpace(username),
		TargetType:       targetType,
		TargetID:         targetID,
		Action:           action,
		Reason:           strings.TrimSpace(reason),
		RequestID:        strings.TrimSpace(requestID),
		CreatedAt:        time.Now(),
	}
	if err := s.approvalLogRepo.Create(entry); err != nil {
		logger.Warnw("approval_log_write_failed",
			"target_type", targetType,
			"target_id", targetID,
			"action", action,
			"error", err,
		)
	}
}

// resolveTierByEarnings 按累计金额与阈值从高到低匹配等级
func resolveTierByEarnings(earned decimal.Decimal, setting CommissionSetting) string {
	tier := constants.PartnerTierBronze
	for _, name := range constants.PartnerTierOrder {
		threshold, ok := setting.TierThresholds[name]
		if !ok {
			continue
		}
		if earned.GreaterThanOrEqual(decimal.NewFromFloat(threshold)) {
			tier = name
		}
	}
	return tier
}

func calcConversionRate(conversions, clicks int64) float64 {
	if clicks <= 0 || conversions <= 0 {
		return 0
	}
	value := (float64(conversions) / float64(clicks)) * 100
	return math.Round(value*100) / 100
}

func normalizeReferralCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func generateReferralCode() (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	var builder strings.Builder
	builder.Grow(referralCodeLength)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < referralCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}
	return builder.String(), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
