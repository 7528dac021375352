package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/linkmall/internal/config"
	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/i18n"
	"github.com/linkmall/internal/models"
)

// EmailService SMTP 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SetConfig 热更新邮件配置
func (s *EmailService) SetConfig(cfg *config.EmailConfig) {
	if cfg == nil {
		return
	}
	s.cfg = cfg
}

// SendVerifyCode 发送邮箱验证码
func (s *EmailService) SendVerifyCode(toEmail, code, purpose, locale string) error {
	subject, body := buildVerifyCodeContent(code, purpose, locale)
	return s.sendTextEmail(toEmail, subject, body)
}

// OrderStatusEmailInput 订单状态邮件输入
type OrderStatusEmailInput struct {
	OrderNo      string
	Status       string
	Amount       models.Money
	Currency     string
	TrackingInfo string
}

// SendOrderStatusEmail 发送订单状态通知
func (s *EmailService) SendOrderStatusEmail(toEmail string, input OrderStatusEmailInput, locale string) error {
	subject, body := buildOrderStatusContent(input, locale)
	return s.sendTextEmail(toEmail, subject, body)
}

// SendCustomEmail 发送测试邮件或自定义邮件，空字段用测试文案兜底
func (s *EmailService) SendCustomEmail(toEmail, subject, body string) error {
	if subject = strings.TrimSpace(subject); subject == "" {
		subject = "SMTP configuration test"
	}
	if body = strings.TrimSpace(body); body == "" {
		body = "This is an SMTP test message. Your email configuration is working."
	}
	return s.sendTextEmail(toEmail, subject, body)
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)

	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	return normalizeEmailSendError(s.deliver(auth, toEmail, []byte(msg)))
}

// deliver 按配置选择 SSL 直连、STARTTLS 或明文后走同一投递流程
func (s *EmailService) deliver(auth smtp.Auth, toEmail string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var client *smtp.Client
	var err error
	switch {
	case s.cfg.UseSSL:
		var conn *tls.Conn
		conn, err = tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
		if err != nil {
			return err
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.Host)
	default:
		client, err = smtp.Dial(addr)
	}
	if err != nil {
		return err
	}
	defer client.Close()

	if !s.cfg.UseSSL && s.cfg.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return err
		}
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(toEmail); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func buildVerifyCodeContent(code, purpose, locale string) (string, string) {
	normalized := i18n.Normalize(locale)

	kind := "default"
	switch strings.ToLower(strings.TrimSpace(purpose)) {
	case constants.VerifyPurposeRegister:
		kind = "register"
	case constants.VerifyPurposeReset:
		kind = "reset"
	case constants.VerifyPurposeChangeEmailOld, constants.VerifyPurposeChangeEmailNew:
		kind = "change_email"
	}

	subject := i18n.T(normalized, "email.verify_code.subject."+kind)
	purposeText := i18n.T(normalized, "email.verify_code.purpose."+kind)
	return subject, i18n.Sprintf(normalized, "email.verify_code.body", code, purposeText)
}

func buildOrderStatusContent(input OrderStatusEmailInput, locale string) (string, string) {
	normalized := i18n.Normalize(locale)
	status := strings.ToLower(strings.TrimSpace(input.Status))

	statusKey := "order.status." + status
	statusLabel := i18n.T(normalized, statusKey)
	if statusLabel == statusKey {
		statusLabel = input.Status
	}

	amount := input.Amount.String()
	currency := strings.TrimSpace(input.Currency)
	subject := i18n.Sprintf(normalized, "email.order_status.subject", statusLabel)

	switch status {
	case constants.OrderStatusDelivered:
		if tracking := strings.TrimSpace(input.TrackingInfo); tracking != "" {
			return subject, i18n.Sprintf(normalized, "email.order_status.body_delivered", input.OrderNo, statusLabel, amount, currency, tracking)
		}
	case constants.OrderStatusCancelled:
		return subject, i18n.Sprintf(normalized, "email.order_status.body_cancelled", input.OrderNo, statusLabel, amount, currency)
	}
	return subject, i18n.Sprintf(normalized, "email.order_status.body", input.OrderNo, statusLabel, amount, currency)
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return err
}

// isEmailRecipientRejected 依据 SMTP 错误文案判断收件人不存在
func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}

	directKeywords := []string{
		"no such recipient",
		"no such user",
		"recipient not found",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown user",
		"unknown mailbox",
		"mailbox unavailable",
	}
	for _, keyword := range directKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}

	if strings.Contains(message, "550") {
		for _, hint := range []string{"recipient", "user", "mailbox", "address", "rcpt"} {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
