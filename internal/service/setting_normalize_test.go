package service

import (
	"testing"

	"github.com/linkmall/internal/constants"
)

func TestUpdateOrderSettingNormalized(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	result, err := svc.Update(constants.SettingKeyOrderConfig, map[string]interface{}{
		"tax_rate_percent": "250",
		"shipping_fee":     -100,
	})
	if err != nil {
		t.Fatalf("update order config failed: %v", err)
	}

	tax, err := parseSettingFloat(result["tax_rate_percent"])
	if err != nil {
		t.Fatalf("parse tax_rate_percent failed: %v", err)
	}
	if tax != 100 {
		t.Fatalf("unexpected tax_rate_percent, expected 100 got %v", tax)
	}

	fee, err := parseSettingFloat(result["shipping_fee"])
	if err != nil {
		t.Fatalf("parse shipping_fee failed: %v", err)
	}
	if fee != 0 {
		t.Fatalf("unexpected shipping_fee, expected 0 got %v", fee)
	}

	if result["currency"] != constants.SiteCurrencyDefault {
		t.Fatalf("unexpected currency: %v", result["currency"])
	}
	if _, ok := result["free_shipping_threshold"]; !ok {
		t.Fatalf("missing free_shipping_threshold in normalized payload")
	}
}

func TestUpdateSiteSettingNormalized(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	result, err := svc.Update(constants.SettingKeySiteConfig, map[string]interface{}{
		"brand": map[string]interface{}{
			"site_name": "  LinkMall  ",
		},
		"contact": map[string]interface{}{
			"email": "  help@linkmall.dev  ",
			"phone": 123,
		},
		constants.SettingFieldSiteCurrency: " krw ",
		"languages":                        []interface{}{" ko-KR ", "ko-KR", "", "en-US"},
		"extra":                            "keep",
	})
	if err != nil {
		t.Fatalf("update site config failed: %v", err)
	}

	brand, ok := result["brand"].(map[string]interface{})
	if !ok {
		t.Fatalf("invalid brand payload type: %T", result["brand"])
	}
	if brand["site_name"] != "LinkMall" {
		t.Fatalf("unexpected brand.site_name: %v", brand["site_name"])
	}

	contact, ok := result["contact"].(map[string]interface{})
	if !ok {
		t.Fatalf("invalid contact payload type: %T", result["contact"])
	}
	if contact["email"] != "help@linkmall.dev" {
		t.Fatalf("unexpected contact.email: %v", contact["email"])
	}
	if contact["phone"] != "" {
		t.Fatalf("unexpected contact.phone: %v", contact["phone"])
	}

	if result[constants.SettingFieldSiteCurrency] != "KRW" {
		t.Fatalf("unexpected currency: %v", result[constants.SettingFieldSiteCurrency])
	}

	languages, ok := result["languages"].([]string)
	if !ok {
		t.Fatalf("invalid languages payload type: %T", result["languages"])
	}
	if len(languages) != 2 || languages[0] != "ko-KR" || languages[1] != "en-US" {
		t.Fatalf("unexpected languages: %+v", languages)
	}

	if result["extra"] != "keep" {
		t.Fatalf("unexpected extra field: %v", result["extra"])
	}
}

func TestUpdateSiteSettingLanguagesFallback(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	result, err := svc.Update(constants.SettingKeySiteConfig, map[string]interface{}{
		"languages":                        []interface{}{"", "   "},
		constants.SettingFieldSiteCurrency: "",
	})
	if err != nil {
		t.Fatalf("update site config failed: %v", err)
	}

	languages, ok := result["languages"].([]string)
	if !ok {
		t.Fatalf("invalid languages payload type: %T", result["languages"])
	}
	if len(languages) != len(settingSupportedLanguages) {
		t.Fatalf("expected fallback languages, got %+v", languages)
	}
	for i, lang := range settingSupportedLanguages {
		if languages[i] != lang {
			t.Fatalf("unexpected fallback language at %d: %v", i, languages[i])
		}
	}

	if result[constants.SettingFieldSiteCurrency] != constants.SiteCurrencyDefault {
		t.Fatalf("unexpected currency fallback: %v", result[constants.SettingFieldSiteCurrency])
	}
}
