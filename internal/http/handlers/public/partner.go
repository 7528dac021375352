package public

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/service"

	"github.com/gin-gonic/gin"
)

// PartnerSignupRequest 合伙人申请请求
type PartnerSignupRequest struct {
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// SignupPartner 申请开通合伙人
func (h *Handler) SignupPartner(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req PartnerSignupRequest
	if !bindJSON(c, &req) {
		return
	}
	if h.CaptchaService != nil {
		if captchaErr := h.CaptchaService.Verify(constants.CaptchaScenePartnerSignup, req.CaptchaPayload.toServicePayload(), c.ClientIP()); captchaErr != nil {
			switch {
			case errors.Is(captchaErr, service.ErrCaptchaRequired):
				respondError(c, response.CodeBadRequest, "error.captcha_required", nil)
			case errors.Is(captchaErr, service.ErrCaptchaInvalid):
				respondError(c, response.CodeBadRequest, "error.captcha_invalid", nil)
			case errors.Is(captchaErr, service.ErrCaptchaConfigInvalid):
				respondError(c, response.CodeInternal, "error.captcha_config_invalid", captchaErr)
			default:
				respondError(c, response.CodeInternal, "error.captcha_verify_failed", captchaErr)
			}
			return
		}
	}

	partner, err := h.PartnerService.SignupPartner(uid)
	if err != nil {
		respondPartnerSignupError(c, err)
		return
	}
	response.Success(c, partner)
}

// GetPartnerDashboard 获取合伙人中心数据
func (h *Handler) GetPartnerDashboard(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	dashboard, err := h.PartnerService.GetPartnerDashboard(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.partner_fetch_failed", err)
		return
	}
	response.Success(c, dashboard)
}

// ListPartnerCommissions 查询我的佣金记录
func (h *Handler) ListPartnerCommissions(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	status := strings.TrimSpace(c.Query("status"))

	rows, total, err := h.PartnerService.ListPartnerCommissions(uid, page, pageSize, status)
	if err != nil {
		respondError(c, response.CodeInternal, "error.partner_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// PartnerTrackClickRequest 推广点击记录请求
type PartnerTrackClickRequest struct {
	ReferralCode string `json:"referral_code" binding:"required"`
	VisitorKey   string `json:"visitor_key"`
	LandingPath  string `json:"landing_path"`
	Referrer     string `json:"referrer"`
	UTMSource    string `json:"utm_source"`
	UTMMedium    string `json:"utm_medium"`
	UTMCampaign  string `json:"utm_campaign"`
}

// TrackPartnerClick 记录推广点击
func (h *Handler) TrackPartnerClick(c *gin.Context) {
	var req PartnerTrackClickRequest
	if !bindJSON(c, &req) {
		return
	}

	visitorKey := strings.TrimSpace(req.VisitorKey)
	if visitorKey == "" {
		if cookieKey, err := c.Cookie(constants.VisitorCookieName); err == nil {
			visitorKey = strings.TrimSpace(cookieKey)
		}
	}

	if err := h.PartnerService.TrackClick(service.TrackClickInput{
		ReferralCode: req.ReferralCode,
		VisitorKey:   visitorKey,
		LandingPath:  req.LandingPath,
		Referrer:     req.Referrer,
		UTMSource:    req.UTMSource,
		UTMMedium:    req.UTMMedium,
		UTMCampaign:  req.UTMCampaign,
		ClientIP:     c.ClientIP(),
		UserAgent:    c.GetHeader("User-Agent"),
	}); err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// ReferralRedirect 推广短链跳转，写入归因 Cookie 后重定向
func (h *Handler) ReferralRedirect(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	target := sanitizeRedirectTarget(c.Query("to"))

	visitorKey := ""
	if cookieKey, err := c.Cookie(constants.VisitorCookieName); err == nil {
		visitorKey = strings.TrimSpace(cookieKey)
	}

	if code != "" {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(constants.ReferralCookieName, code, constants.ReferralCookieMaxAge, "/", "", false, true)

		_ = h.PartnerService.TrackClick(service.TrackClickInput{
			ReferralCode: code,
			VisitorKey:   visitorKey,
			LandingPath:  target,
			Referrer:     c.GetHeader("Referer"),
			UTMSource:    c.Query("utm_source"),
			UTMMedium:    c.Query("utm_medium"),
			UTMCampaign:  c.Query("utm_campaign"),
			ClientIP:     c.ClientIP(),
			UserAgent:    c.GetHeader("User-Agent"),
		})
	}

	c.Redirect(http.StatusFound, target)
}

// sanitizeRedirectTarget 仅允许站内相对路径，避免开放重定向
func sanitizeRedirectTarget(raw string) string {
	target := strings.TrimSpace(raw)
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/"
	}
	return target
}
