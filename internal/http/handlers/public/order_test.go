package public

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/linkmall/internal/constants"

	"github.com/gin-gonic/gin"
)

func newOrderTestContext(t *testing.T, cookies ...*http.Cookie) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	for _, cookie := range cookies {
		c.Request.AddCookie(cookie)
	}
	return c
}

func TestBuildCreateOrderInputReferralPrecedence(t *testing.T) {
	h := &Handler{}
	c := newOrderTestContext(t,
		&http.Cookie{Name: constants.ReferralCookieName, Value: "COOKIE01"},
		&http.Cookie{Name: constants.VisitorCookieName, Value: "visitor-abc"},
	)

	// 请求体里的推荐码优先于 Cookie。
	input := h.buildCreateOrderInput(c, 5, CreateOrderRequest{ReferralCode: " body01 ", PaymentMethod: "card"})
	if input.ReferralCode != "body01" {
		t.Fatalf("body referral code should win, got %q", input.ReferralCode)
	}
	if input.PaymentMethod != "card" {
		t.Fatalf("payment method want card got %q", input.PaymentMethod)
	}
	if input.VisitorKey != "visitor-abc" {
		t.Fatalf("visitor key want visitor-abc got %q", input.VisitorKey)
	}

	// 请求体缺省时回退到归因 Cookie。
	input = h.buildCreateOrderInput(c, 5, CreateOrderRequest{})
	if input.ReferralCode != "COOKIE01" {
		t.Fatalf("cookie fallback want COOKIE01 got %q", input.ReferralCode)
	}
}

func TestBuildCreateOrderInputNoAttribution(t *testing.T) {
	h := &Handler{}
	c := newOrderTestContext(t)

	input := h.buildCreateOrderInput(c, 5, CreateOrderRequest{})
	if input.ReferralCode != "" || input.VisitorKey != "" {
		t.Fatalf("without cookies attribution fields must stay empty, got code=%q visitor=%q",
			input.ReferralCode, input.VisitorKey)
	}
}
