package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	cases := []struct {
		name        string
		origin      string
		allowed     []string
		credentials bool
		want        string
	}{
		{"wildcard", "https://example.com", []string{"*"}, false, "*"},
		{"wildcard with credentials echoes origin", "https://example.com", []string{"*"}, true, "https://example.com"},
		{"allow-list match", "https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false, "https://a.example.com"},
		{"allow-list miss", "https://x.example.com", []string{"https://a.example.com"}, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveAllowedOrigin(tc.origin, tc.allowed, tc.credentials)
			if got != tc.want {
				t.Fatalf("resolveAllowedOrigin(%q, %v, %v) = %q, want %q", tc.origin, tc.allowed, tc.credentials, got, tc.want)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	// 调用方携带的 ID 原样透传到响应头和上下文
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("response header id = %q, want req-123", got)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context id = %q, want req-123", resp["request_id"])
	}

	// 未携带时生成一个非空 ID
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if generated := strings.TrimSpace(w2.Header().Get(requestIDHeader)); generated == "" {
		t.Fatal("generated request id must not be blank")
	}
}

func TestJWTAuthMiddlewareMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(JWTAuthMiddleware("", nil))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/ping", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("status_code = %d, want 401", resp.StatusCode)
	}
}

func TestAttributionMiddlewareSetsCookies(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(AttributionMiddleware())
	r.GET("/products", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products?ref=ALICE&partner=BOB", nil)
	r.ServeHTTP(w, req)

	cookies := w.Result().Cookies()
	var visitor, referral *http.Cookie
	for _, cookie := range cookies {
		switch cookie.Name {
		case "visitor_key":
			visitor = cookie
		case "partner_ref":
			referral = cookie
		}
	}
	if visitor == nil || visitor.Value == "" {
		t.Fatalf("visitor_key cookie should be issued")
	}
	if visitor.MaxAge != 365*24*60*60 {
		t.Fatalf("visitor_key max age want %d got %d", 365*24*60*60, visitor.MaxAge)
	}
	if referral == nil {
		t.Fatalf("partner_ref cookie should be issued")
	}
	if referral.Value != "ALICE" {
		t.Fatalf("ref param should win over partner param, got %s", referral.Value)
	}
	if referral.MaxAge != 30*24*60*60 {
		t.Fatalf("partner_ref max age want %d got %d", 30*24*60*60, referral.MaxAge)
	}
	if referral.SameSite != http.SameSiteLaxMode {
		t.Fatalf("partner_ref should be SameSite=Lax")
	}
}

func TestAttributionMiddlewareLastTouchOverwrite(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(AttributionMiddleware())
	r.GET("/landing", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/landing?partner=CAROL", nil)
	req.AddCookie(&http.Cookie{Name: "partner_ref", Value: "ALICE"})
	req.AddCookie(&http.Cookie{Name: "visitor_key", Value: "visitor-1"})
	r.ServeHTTP(w, req)

	var referral *http.Cookie
	var visitorReissued bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "partner_ref" {
			referral = cookie
		}
		if cookie.Name == "visitor_key" {
			visitorReissued = true
		}
	}
	if referral == nil || referral.Value != "CAROL" {
		t.Fatalf("later touch should overwrite referral cookie, got %+v", referral)
	}
	if visitorReissued {
		t.Fatalf("existing visitor_key should not be reissued")
	}
}

func TestAttributionMiddlewareNoParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(AttributionMiddleware())
	r.GET("/plain", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/plain", nil)
	req.AddCookie(&http.Cookie{Name: "visitor_key", Value: "visitor-2"})
	r.ServeHTTP(w, req)

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "partner_ref" {
			t.Fatalf("no referral param should not issue partner_ref cookie")
		}
	}
}
