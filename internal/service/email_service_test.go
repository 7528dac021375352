package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/linkmall/internal/i18n"
	"github.com/linkmall/internal/models"

	"github.com/shopspring/decimal"
)

func TestBuildOrderStatusContent(t *testing.T) {
	tests := []struct {
		name                string
		locale              string
		status              string
		tracking            string
		wantSubjectContains []string
		wantBodyContains    []string
	}{
		{
			name:   "confirmed_ko",
			locale: i18n.LocaleKO,
			status: "confirmed",
			wantSubjectContains: []string{
				"주문 상태 안내",
				"주문 확정",
			},
			wantBodyContains: []string{
				"주문번호 LM-CONFIRM",
				"주문 확정",
			},
		},
		{
			name:   "cancelled_en",
			locale: i18n.LocaleEN,
			status: "cancelled",
			wantSubjectContains: []string{
				"Order Status Update",
				"Cancelled",
			},
			wantBodyContains: []string{
				"has been cancelled",
				"LM-CANCEL",
			},
		},
		{
			name:     "delivered_with_tracking_ko",
			locale:   i18n.LocaleKO,
			status:   "delivered",
			tracking: "CJ대한통운 123456789",
			wantSubjectContains: []string{
				"주문 상태 안내",
				"배송 완료",
			},
			wantBodyContains: []string{
				"배송 정보",
				"CJ대한통운 123456789",
			},
		},
		{
			name:     "delivered_no_tracking_en",
			locale:   i18n.LocaleEN,
			status:   "delivered",
			tracking: "",
			wantSubjectContains: []string{
				"Order Status Update",
				"Delivered",
			},
			wantBodyContains: []string{
				"has changed to [Delivered]",
				"LM-DELIVER",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := OrderStatusEmailInput{
				OrderNo:      pickOrderNo(tt.status),
				Status:       tt.status,
				Amount:       models.NewMoneyFromDecimal(decimal.NewFromInt(27500)),
				Currency:     "KRW",
				TrackingInfo: tt.tracking,
			}
			subject, body := buildOrderStatusContent(input, tt.locale)
			for _, expected := range tt.wantSubjectContains {
				if !strings.Contains(subject, expected) {
					t.Fatalf("subject missing %q: %s", expected, subject)
				}
			}
			for _, expected := range tt.wantBodyContains {
				if !strings.Contains(body, expected) {
					t.Fatalf("body missing %q: %s", expected, body)
				}
			}
		})
	}
}

func pickOrderNo(status string) string {
	switch status {
	case "confirmed":
		return "LM-CONFIRM"
	case "cancelled":
		return "LM-CANCEL"
	default:
		return "LM-DELIVER"
	}
}

func TestIsEmailRecipientRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "smtp_550_no_such_recipient",
			err:  errors.New("550 No such recipient here"),
			want: true,
		},
		{
			name: "smtp_user_unknown",
			err:  errors.New("SMTP 5.1.1 user unknown"),
			want: true,
		},
		{
			name: "smtp_550_mailbox_unavailable",
			err:  errors.New("550 mailbox unavailable"),
			want: true,
		},
		{
			name: "network_timeout",
			err:  errors.New("dial tcp timeout"),
			want: false,
		},
		{
			name: "nil_error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmailRecipientRejected(tt.err); got != tt.want {
				t.Fatalf("isEmailRecipientRejected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmailSendError(t *testing.T) {
	rejected := errors.New("550 No such recipient here")
	if got := normalizeEmailSendError(rejected); !errors.Is(got, ErrEmailRecipientRejected) {
		t.Fatalf("normalizeEmailSendError() expected ErrEmailRecipientRejected, got %v", got)
	}

	networkErr := errors.New("dial tcp timeout")
	if got := normalizeEmailSendError(networkErr); !errors.Is(got, networkErr) {
		t.Fatalf("normalizeEmailSendError() should keep original error, got %v", got)
	}

	if got := normalizeEmailSendError(nil); got != nil {
		t.Fatalf("normalizeEmailSendError(nil) should be nil, got %v", got)
	}
}
