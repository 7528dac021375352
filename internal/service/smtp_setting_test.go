package service

import (
	"testing"

	"github.com/linkmall/internal/config"
	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"
)

type mockSettingRepo struct {
	store map[string]models.JSON
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{store: map[string]models.JSON{}}
}

func (m *mockSettingRepo) GetByKey(key string) (*models.Setting, error) {
	value, ok := m.store[key]
	if !ok {
		return nil, nil
	}
	return &models.Setting{Key: key, ValueJSON: value}, nil
}

func (m *mockSettingRepo) Upsert(key string, value models.JSON) (*models.Setting, error) {
	m.store[key] = value
	return &models.Setting{Key: key, ValueJSON: value}, nil
}

func TestNormalizeSMTPSetting(t *testing.T) {
	got := NormalizeSMTPSetting(SMTPSetting{})
	if got.Port != 587 {
		t.Errorf("Port = %d, want 587", got.Port)
	}
	if got.VerifyCode.Length != 6 {
		t.Errorf("VerifyCode.Length = %d, want 6", got.VerifyCode.Length)
	}
	if got.VerifyCode.ExpireMinutes != 10 {
		t.Errorf("VerifyCode.ExpireMinutes = %d, want 10", got.VerifyCode.ExpireMinutes)
	}
}

func TestValidateSMTPSetting(t *testing.T) {
	base := SMTPSetting{
		Enabled:  true,
		Host:     "smtp.example.com",
		Port:     587,
		From:     "notify@example.com",
		Password: "secret",
		VerifyCode: SMTPVerifyCodeSetting{
			ExpireMinutes:       10,
			SendIntervalSeconds: 60,
			MaxAttempts:         5,
			Length:              6,
		},
	}

	conflicting := base
	conflicting.UseTLS = true
	conflicting.UseSSL = true
	if ValidateSMTPSetting(NormalizeSMTPSetting(conflicting)) == nil {
		t.Error("expected validation error when TLS and SSL both enabled")
	}

	ok := base
	ok.UseTLS = true
	if err := ValidateSMTPSetting(NormalizeSMTPSetting(ok)); err != nil {
		t.Errorf("valid config should pass, got %v", err)
	}
}

func TestPatchSMTPSettingKeepsPasswordWhenEmpty(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	defaultCfg := config.EmailConfig{
		Enabled:  true,
		Host:     "smtp.default.com",
		Port:     587,
		Username: "default-user",
		Password: "default-secret",
		From:     "default@example.com",
		FromName: "Default",
		UseTLS:   true,
		VerifyCode: config.VerifyCodeConfig{
			ExpireMinutes:       10,
			SendIntervalSeconds: 60,
			MaxAttempts:         5,
			Length:              6,
		},
	}

	updated, err := svc.PatchSMTPSetting(defaultCfg, SMTPSettingPatch{
		Host:     ptrString("smtp.custom.com"),
		Password: ptrString(""),
	})
	if err != nil {
		t.Fatalf("PatchSMTPSetting: %v", err)
	}
	// 提交空密码表示不改密码
	if updated.Password != "default-secret" {
		t.Errorf("Password = %q, want default-secret", updated.Password)
	}

	saved, ok := repo.store[constants.SettingKeySMTPConfig]
	if !ok {
		t.Fatal("patched setting was not persisted")
	}
	if saved["password"] != "default-secret" {
		t.Errorf("saved password = %v, want default-secret", saved["password"])
	}
	if saved["host"] != "smtp.custom.com" {
		t.Errorf("saved host = %v, want smtp.custom.com", saved["host"])
	}
}

func ptrString(value string) *string {
	return &value
}
