package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type partnerTestEnv struct {
	db          *gorm.DB
	svc         *PartnerService
	settingRepo *mockSettingRepo
}

func setupPartnerServiceTest(t *testing.T) *partnerTestEnv {
	t.Helper()
	db := setupServiceTestDB(t, "partner_svc")

	settingRepo := newMockSettingRepo()
	settingService := NewSettingService(settingRepo)
	partnerRepo := repository.NewPartnerRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	userRepo := repository.NewUserRepository(db)
	approvalLogRepo := repository.NewApprovalLogRepository(db)

	svc := NewPartnerService(partnerRepo, commissionRepo, userRepo, approvalLogRepo, settingService)
	return &partnerTestEnv{db: db, svc: svc, settingRepo: settingRepo}
}

func (env *partnerTestEnv) seedUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "x",
		DisplayName:  "테스트 사용자",
		Status:       constants.UserStatusActive,
	}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
	return user
}

func (env *partnerTestEnv) seedActivePartner(t *testing.T, userID uint, code string) *models.Partner {
	t.Helper()
	partner := &models.Partner{
		UserID:       userID,
		ReferralCode: code,
		Tier:         constants.PartnerTierBronze,
		Status:       constants.PartnerStatusActive,
	}
	if err := env.db.Create(partner).Error; err != nil {
		t.Fatalf("seed partner failed: %v", err)
	}
	return partner
}

func TestSignupPartner(t *testing.T) {
	env := setupPartnerServiceTest(t)
	user := env.seedUser(t, "partner1@example.com")

	partner, err := env.svc.SignupPartner(user.ID)
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if partner.Status != constants.PartnerStatusPending {
		t.Fatalf("status want pending got %s", partner.Status)
	}
	if partner.Tier != constants.PartnerTierBronze {
		t.Fatalf("tier want bronze got %s", partner.Tier)
	}
	if len(partner.ReferralCode) != 8 {
		t.Fatalf("referral code length want 8 got %q", partner.ReferralCode)
	}
	if strings.ContainsAny(partner.ReferralCode, "01IO") {
		t.Fatalf("referral code must avoid ambiguous characters: %q", partner.ReferralCode)
	}

	// 重复开通返回冲突。
	if _, err := env.svc.SignupPartner(user.ID); err != ErrPartnerExists {
		t.Fatalf("duplicate signup want ErrPartnerExists got %v", err)
	}
}

func TestSignupPartnerGuards(t *testing.T) {
	env := setupPartnerServiceTest(t)

	if _, err := env.svc.SignupPartner(999); err != ErrUserNotFound {
		t.Fatalf("missing user want ErrUserNotFound got %v", err)
	}

	disabled := &models.User{
		Email:        "disabled@example.com",
		PasswordHash: "x",
		Status:       constants.UserStatusDisabled,
	}
	if err := env.db.Create(disabled).Error; err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
	if _, err := env.svc.SignupPartner(disabled.ID); err != ErrUserDisabled {
		t.Fatalf("disabled user want ErrUserDisabled got %v", err)
	}

	user := env.seedUser(t, "closed@example.com")
	env.settingRepo.store[constants.SettingKeyCommissionConfig] = models.JSON{
		"enabled": false,
	}
	if _, err := env.svc.SignupPartner(user.ID); err != ErrPartnerProgramDisabled {
		t.Fatalf("program disabled want ErrPartnerProgramDisabled got %v", err)
	}
}

func TestReviewPartnerActions(t *testing.T) {
	env := setupPartnerServiceTest(t)
	user := env.seedUser(t, "review@example.com")
	partner, err := env.svc.SignupPartner(user.ID)
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	approved, err := env.svc.ReviewPartner(partner.ID, constants.ApprovalActionApprove, 1, "admin", "서류 확인 완료", "req-1")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.PartnerStatusActive {
		t.Fatalf("status want active got %s", approved.Status)
	}
	if approved.ApprovedAt == nil {
		t.Fatalf("approved_at should be set")
	}

	// active 状态不可再次通过。
	if _, err := env.svc.ReviewPartner(partner.ID, constants.ApprovalActionApprove, 1, "admin", "", "req-2"); err != ErrPartnerStatusInvalid {
		t.Fatalf("re-approve want ErrPartnerStatusInvalid got %v", err)
	}
	if _, err := env.svc.ReviewPartner(partner.ID, "promote", 1, "admin", "", "req-3"); err != ErrInvalidInput {
		t.Fatalf("unknown action want ErrInvalidInput got %v", err)
	}

	suspended, err := env.svc.ReviewPartner(partner.ID, constants.ApprovalActionSuspend, 1, "admin", "정책 위반", "req-4")
	if err != nil {
		t.Fatalf("suspend failed: %v", err)
	}
	if suspended.Status != constants.PartnerStatusSuspended {
		t.Fatalf("status want suspended got %s", suspended.Status)
	}

	reactivated, err := env.svc.ReviewPartner(partner.ID, constants.ApprovalActionReactivate, 1, "admin", "", "req-5")
	if err != nil {
		t.Fatalf("reactivate failed: %v", err)
	}
	if reactivated.Status != constants.PartnerStatusActive {
		t.Fatalf("status want active got %s", reactivated.Status)
	}

	var logs []models.ApprovalLog
	if err := env.db.Where("target_type = ? AND target_id = ?", constants.ApprovalTargetPartner, partner.ID).Find(&logs).Error; err != nil {
		t.Fatalf("load approval logs failed: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("approval log count want 3 got %d", len(logs))
	}
}

func TestTrackClickDedupe(t *testing.T) {
	env := setupPartnerServiceTest(t)
	user := env.seedUser(t, "click@example.com")
	partner := env.seedActivePartner(t, user.ID, "CLICKAAA")

	input := TrackClickInput{
		ReferralCode: "clickaaa",
		VisitorKey:   "visitor-1",
		LandingPath:  "/products/hot-item",
		UTMSource:    "naver",
		ClientIP:     "203.0.113.7",
	}
	if err := env.svc.TrackClick(input); err != nil {
		t.Fatalf("track click failed: %v", err)
	}
	// 去重窗口内同访客同落地页不重复计数。
	if err := env.svc.TrackClick(input); err != nil {
		t.Fatalf("track duplicate click failed: %v", err)
	}

	other := input
	other.LandingPath = "/products/another"
	if err := env.svc.TrackClick(other); err != nil {
		t.Fatalf("track other landing failed: %v", err)
	}

	var clickCount int64
	if err := env.db.Model(&models.PartnerClick{}).Where("partner_id = ?", partner.ID).Count(&clickCount).Error; err != nil {
		t.Fatalf("count clicks failed: %v", err)
	}
	if clickCount != 2 {
		t.Fatalf("click rows want 2 got %d", clickCount)
	}

	var reloaded models.Partner
	if err := env.db.First(&reloaded, partner.ID).Error; err != nil {
		t.Fatalf("reload partner failed: %v", err)
	}
	if reloaded.ClickCount != 2 {
		t.Fatalf("click counter want 2 got %d", reloaded.ClickCount)
	}
}

func TestTrackClickIgnoresInactivePartner(t *testing.T) {
	env := setupPartnerServiceTest(t)
	user := env.seedUser(t, "inactive@example.com")
	partner := env.seedActivePartner(t, user.ID, "INACTAAA")
	if err := env.db.Model(&models.Partner{}).Where("id = ?", partner.ID).
		Update("status", constants.PartnerStatusSuspended).Error; err != nil {
		t.Fatalf("suspend partner failed: %v", err)
	}

	if err := env.svc.TrackClick(TrackClickInput{ReferralCode: "INACTAAA", VisitorKey: "v"}); err != nil {
		t.Fatalf("track click failed: %v", err)
	}
	var clickCount int64
	if err := env.db.Model(&models.PartnerClick{}).Count(&clickCount).Error; err != nil {
		t.Fatalf("count clicks failed: %v", err)
	}
	if clickCount != 0 {
		t.Fatalf("suspended partner should not record clicks, got %d", clickCount)
	}
}

func TestResolveOrderAttributionExplicitCode(t *testing.T) {
	env := setupPartnerServiceTest(t)
	user := env.seedUser(t, "attr-url@example.com")
	partner := env.seedActivePartner(t, user.ID, "ATTRURL1")

	got, click, source, err := env.svc.ResolveOrderAttribution(999, "attrurl1", "")
	if err != nil {
		t.Fatalf("resolve attribution failed: %v", err)
	}
	if got == nil || got.ID != partner.ID {
		t.Fatalf("partner not resolved by explicit code")
	}
	if source != constants.AttributionSourceURL {
		t.Fatalf("source want url got %s", source)
	}
	if click != nil {
		t.Fatalf("no click recorded, click snapshot should be nil")
	}
}

func TestResolveOrderAttributionLastTouchCookie(t *testing.T) {
	env := setupPartnerServiceTest(t)
	userA := env.seedUser(t, "attr-a@example.com")
	userB := env.seedUser(t, "attr-b@example.com")
	partnerA := env.seedActivePartner(t, userA.ID, "ATTRCKA1")
	partnerB := env.seedActivePartner(t, userB.ID, "ATTRCKB1")

	now := time.Now()
	clicks := []models.PartnerClick{
		{PartnerID: partnerA.ID, VisitorKey: "visitor-last", LandingPath: "/a", CreatedAt: now.Add(-2 * time.Hour)},
		{PartnerID: partnerB.ID, VisitorKey: "visitor-last", LandingPath: "/b", CreatedAt: now.Add(-1 * time.Hour)},
	}
	if err := env.db.Create(&clicks).Error; err != nil {
		t.Fatalf("seed clicks failed: %v", err)
	}

	got, click, source, err := env.svc.ResolveOrderAttribution(999, "", "visitor-last")
	if err != nil {
		t.Fatalf("resolve attribution failed: %v", err)
	}
	if got == nil || got.ID != partnerB.ID {
		t.Fatalf("last touch should attribute partner B")
	}
	if source != constants.AttributionSourceCookie {
		t.Fatalf("source want cookie got %s", source)
	}
	if click == nil || click.LandingPath != "/b" {
		t.Fatalf("click snapshot should be the latest touch")
	}
}

func TestResolveOrderAttributionSelfPurchase(t *testing.T) {
	env := setupPartnerServiceTest(t)
	user := env.seedUser(t, "attr-self@example.com")
	partner := env.seedActivePartner(t, user.ID, "ATTRSELF")

	got, _, source, err := env.svc.ResolveOrderAttribution(partner.UserID, "ATTRSELF", "")
	if err != nil {
		t.Fatalf("resolve attribution failed: %v", err)
	}
	if got != nil || source != "" {
		t.Fatalf("self purchase must not attribute, got partner=%v source=%q", got, source)
	}
}

type fakeLoginReferralStore struct {
	codes map[uint]string
}

func newFakeLoginReferralStore() *fakeLoginReferralStore {
	return &fakeLoginReferralStore{codes: map[uint]string{}}
}

func (f *fakeLoginReferralStore) Save(userID uint, code string) error {
	f.codes[userID] = code
	return nil
}

func (f *fakeLoginReferralStore) Load(userID uint) (string, bool) {
	code, ok := f.codes[userID]
	return code, ok
}

func TestAssociateLoginReferral(t *testing.T) {
	env := setupPartnerServiceTest(t)
	store := newFakeLoginReferralStore()
	env.svc.loginReferrals = store

	owner := env.seedUser(t, "login-owner@example.com")
	env.seedActivePartner(t, owner.ID, "LOGINMAP")
	buyer := env.seedUser(t, "login-buyer@example.com")

	env.svc.AssociateLoginReferral(buyer.ID, "loginmap")
	if store.codes[buyer.ID] != "LOGINMAP" {
		t.Fatalf("login referral not saved, got %q", store.codes[buyer.ID])
	}

	// 自推荐不建立关联。
	env.svc.AssociateLoginReferral(owner.ID, "LOGINMAP")
	if _, ok := store.codes[owner.ID]; ok {
		t.Fatalf("self referral must not be associated")
	}

	// 未知推荐码不建立关联。
	env.svc.AssociateLoginReferral(buyer.ID+100, "NOPE1234")
	if _, ok := store.codes[buyer.ID+100]; ok {
		t.Fatalf("unknown code must not be associated")
	}
}

func TestResolveOrderAttributionLoginFallback(t *testing.T) {
	env := setupPartnerServiceTest(t)
	store := newFakeLoginReferralStore()
	env.svc.loginReferrals = store

	owner := env.seedUser(t, "login-attr@example.com")
	partner := env.seedActivePartner(t, owner.ID, "LOGINATR")
	store.codes[42] = "LOGINATR"

	// 推荐码与访客 Cookie 都缺失时回退到登录关联。
	got, click, source, err := env.svc.ResolveOrderAttribution(42, "", "")
	if err != nil {
		t.Fatalf("resolve attribution failed: %v", err)
	}
	if got == nil || got.ID != partner.ID {
		t.Fatalf("login association should attribute the partner")
	}
	if source != constants.AttributionSourceLogin {
		t.Fatalf("source want login got %s", source)
	}
	if click != nil {
		t.Fatalf("login fallback has no click snapshot")
	}

	// 未关联的用户仍然无归因。
	got, _, source, err = env.svc.ResolveOrderAttribution(43, "", "")
	if err != nil {
		t.Fatalf("resolve attribution failed: %v", err)
	}
	if got != nil || source != "" {
		t.Fatalf("unassociated buyer must not attribute, got partner=%v source=%q", got, source)
	}

	// 合伙人本人下单不走登录回退。
	store.codes[owner.ID] = "LOGINATR"
	got, _, _, err = env.svc.ResolveOrderAttribution(owner.ID, "", "")
	if err != nil {
		t.Fatalf("resolve attribution failed: %v", err)
	}
	if got != nil {
		t.Fatalf("self purchase must not attribute via login association")
	}
}

func TestResolveOrderAttributionWindowExpired(t *testing.T) {
	env := setupPartnerServiceTest(t)
	user := env.seedUser(t, "attr-old@example.com")
	partner := env.seedActivePartner(t, user.ID, "ATTROLD1")

	stale := models.PartnerClick{
		PartnerID:   partner.ID,
		VisitorKey:  "visitor-old",
		LandingPath: "/old",
		CreatedAt:   time.Now().Add(-40 * 24 * time.Hour),
	}
	if err := env.db.Create(&stale).Error; err != nil {
		t.Fatalf("seed click failed: %v", err)
	}

	got, _, _, err := env.svc.ResolveOrderAttribution(999, "", "visitor-old")
	if err != nil {
		t.Fatalf("resolve attribution failed: %v", err)
	}
	if got != nil {
		t.Fatalf("click outside attribution window must not attribute")
	}
}

func TestResolveTierByEarnings(t *testing.T) {
	setting := CommissionDefaultSetting()
	cases := []struct {
		earned int64
		want   string
	}{
		{0, constants.PartnerTierBronze},
		{499999, constants.PartnerTierBronze},
		{500000, constants.PartnerTierSilver},
		{2999999, constants.PartnerTierSilver},
		{3000000, constants.PartnerTierGold},
		{10000000, constants.PartnerTierPlatinum},
	}
	for _, tc := range cases {
		if got := resolveTierByEarnings(decimal.NewFromInt(tc.earned), setting); got != tc.want {
			t.Fatalf("earned %d want %s got %s", tc.earned, tc.want, got)
		}
	}
}

func TestRecalcPartnerTier(t *testing.T) {
	env := setupPartnerServiceTest(t)
	user := env.seedUser(t, "tier@example.com")
	partner := env.seedActivePartner(t, user.ID, "TIERUP01")

	commission := models.PartnerCommission{
		CommissionNo:     fmt.Sprintf("cm-%d", partner.ID),
		PartnerID:        partner.ID,
		OrderID:          1,
		ProductID:        1,
		SellerID:         1,
		CommissionType:   constants.CommissionTypeSale,
		Status:           constants.CommissionStatusPaid,
		CommissionRate:   5,
		CommissionAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(600000)),
	}
	if err := env.db.Create(&commission).Error; err != nil {
		t.Fatalf("seed commission failed: %v", err)
	}

	tier, err := env.svc.RecalcPartnerTier(partner.ID)
	if err != nil {
		t.Fatalf("recalc tier failed: %v", err)
	}
	if tier != constants.PartnerTierSilver {
		t.Fatalf("tier want silver got %s", tier)
	}
	var reloaded models.Partner
	if err := env.db.First(&reloaded, partner.ID).Error; err != nil {
		t.Fatalf("reload partner failed: %v", err)
	}
	if reloaded.Tier != constants.PartnerTierSilver {
		t.Fatalf("persisted tier want silver got %s", reloaded.Tier)
	}
}

func TestCalcConversionRate(t *testing.T) {
	if got := calcConversionRate(0, 0); got != 0 {
		t.Fatalf("no clicks want 0 got %v", got)
	}
	if got := calcConversionRate(3, 200); got != 1.5 {
		t.Fatalf("want 1.5 got %v", got)
	}
	if got := calcConversionRate(1, 3); got != 33.33 {
		t.Fatalf("want 33.33 got %v", got)
	}
}
