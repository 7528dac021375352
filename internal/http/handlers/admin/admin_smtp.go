package admin

import (
	"errors"
	"strings"

	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/service"

	"github.com/gin-gonic/gin"
)

// GetSMTPSettings 获取 SMTP 配置（脱敏）
func (h *Handler) GetSMTPSettings(c *gin.Context) {
	setting, ok := h.loadSMTPSetting(c)
	if !ok {
		return
	}
	response.Success(c, service.MaskSMTPSettingForAdmin(setting))
}

// UpdateSMTPSettings 更新 SMTP 配置并热切换邮件服务
func (h *Handler) UpdateSMTPSettings(c *gin.Context) {
	var req service.SMTPSettingPatch
	if !bindJSON(c, &req) {
		return
	}

	setting, err := h.SettingService.PatchSMTPSetting(h.Config.Email, req)
	if err != nil {
		if errors.Is(err, service.ErrSMTPConfigInvalid) {
			respondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
			return
		}
		respondError(c, response.CodeInternal, "error.settings_save_failed", err)
		return
	}

	h.applySMTPSetting(setting)
	response.Success(c, service.MaskSMTPSettingForAdmin(setting))
}

// applySMTPSetting 保存后让运行中的 EmailService 立即使用新配置
func (h *Handler) applySMTPSetting(setting service.SMTPSetting) {
	h.Config.Email = service.SMTPSettingToConfig(setting)
	if h.EmailService != nil {
		h.EmailService.SetConfig(&h.Config.Email)
	}
}

// loadSMTPSetting 读取当前 SMTP 设置，失败时已写响应
func (h *Handler) loadSMTPSetting(c *gin.Context) (service.SMTPSetting, bool) {
	setting, err := h.SettingService.GetSMTPSetting(h.Config.Email)
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_fetch_failed", err)
		return service.SMTPSetting{}, false
	}
	return setting, true
}

// SMTPTestSendRequest SMTP 测试发送请求
type SMTPTestSendRequest struct {
	ToEmail string `json:"to_email" binding:"required"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// TestSMTPSettings 用当前保存的配置发一封测试邮件
func (h *Handler) TestSMTPSettings(c *gin.Context) {
	var req SMTPTestSendRequest
	if !bindJSON(c, &req) {
		return
	}

	toEmail := strings.TrimSpace(req.ToEmail)
	if toEmail == "" {
		respondError(c, response.CodeBadRequest, "error.email_invalid", nil)
		return
	}

	setting, ok := h.loadSMTPSetting(c)
	if !ok {
		return
	}

	// 测试发送忽略启用开关，管理员要的是连通性结论
	configForSend := service.SMTPSettingToConfig(setting)
	configForSend.Enabled = true

	if err := service.NewEmailService(&configForSend).SendCustomEmail(toEmail, req.Subject, req.Body); err != nil {
		respondSMTPSendError(c, err)
		return
	}
	response.Success(c, gin.H{"sent": true})
}

func respondSMTPSendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		respondError(c, response.CodeBadRequest, "error.email_invalid", nil)
	case errors.Is(err, service.ErrEmailRecipientRejected):
		respondError(c, response.CodeBadRequest, "error.email_recipient_not_found", nil)
	case errors.Is(err, service.ErrEmailServiceDisabled),
		errors.Is(err, service.ErrEmailServiceNotConfigured):
		respondError(c, response.CodeBadRequest, "error.email_service_not_configured", err)
	default:
		respondError(c, response.CodeInternal, "error.send_verify_code_failed", err)
	}
}
