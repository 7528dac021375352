package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var auditLogTestDBSeq int

func setupAuditLogRepositoryTest(t *testing.T) *gorm.DB {
	t.Helper()
	auditLogTestDBSeq++
	dsn := fmt.Sprintf("file:audit_log_repo_%d?mode=memory&cache=shared", auditLogTestDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.UserLoginLog{}, &models.AuthzAuditLog{}); err != nil {
		t.Fatalf("migrate audit log models failed: %v", err)
	}
	return db
}

func TestUserLoginLogListAdminFilters(t *testing.T) {
	db := setupAuditLogRepositoryTest(t)
	repo := NewUserLoginLogRepository(db)

	now := time.Now()
	logs := []models.UserLoginLog{
		{UserID: 1, Email: "a@example.com", Status: constants.LoginLogStatusSuccess, ClientIP: "10.0.0.1", CreatedAt: now.Add(-2 * time.Hour)},
		{UserID: 1, Email: "a@example.com", Status: constants.LoginLogStatusFailed, FailReason: constants.LoginLogFailReasonInvalidCredentials, ClientIP: "10.0.0.2", CreatedAt: now.Add(-1 * time.Hour)},
		{UserID: 2, Email: "b@example.com", Status: constants.LoginLogStatusSuccess, ClientIP: "10.0.0.3", CreatedAt: now.Add(-30 * 24 * time.Hour)},
	}
	if err := db.Create(&logs).Error; err != nil {
		t.Fatalf("seed login logs failed: %v", err)
	}

	got, total, err := repo.ListAdmin(UserLoginLogListFilter{Page: 1, PageSize: 10, UserID: 1})
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("user filter want 2 rows got total=%d len=%d", total, len(got))
	}

	got, total, err = repo.ListAdmin(UserLoginLogListFilter{
		Page:       1,
		PageSize:   10,
		Status:     constants.LoginLogStatusFailed,
		FailReason: constants.LoginLogFailReasonInvalidCredentials,
	})
	if err != nil {
		t.Fatalf("list by status failed: %v", err)
	}
	if total != 1 || got[0].ClientIP != "10.0.0.2" {
		t.Fatalf("status filter want the failed row got total=%d", total)
	}

	// 时间范围为闭区间，超窗记录不计入。
	from := now.Add(-3 * time.Hour)
	got, total, err = repo.ListAdmin(UserLoginLogListFilter{Page: 1, PageSize: 10, CreatedFrom: &from})
	if err != nil {
		t.Fatalf("list by time range failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("time range want 2 rows got %d", total)
	}
}

func TestAuthzAuditLogListAdminFilters(t *testing.T) {
	db := setupAuditLogRepositoryTest(t)
	repo := NewAuthzAuditLogRepository(db)

	target := uint(7)
	logs := []models.AuthzAuditLog{
		{OperatorAdminID: 1, OperatorUsername: "root", TargetAdminID: &target, Action: "role_grant", Role: "role:ops"},
		{OperatorAdminID: 1, OperatorUsername: "root", Action: "admin_create"},
		{OperatorAdminID: 2, OperatorUsername: "ops", Action: "role_grant", Role: "role:finance"},
	}
	if err := db.Create(&logs).Error; err != nil {
		t.Fatalf("seed audit logs failed: %v", err)
	}

	got, total, err := repo.ListAdmin(AuthzAuditLogListFilter{Page: 1, PageSize: 10, OperatorAdminID: 1})
	if err != nil {
		t.Fatalf("list by operator failed: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("operator filter want 2 rows got total=%d len=%d", total, len(got))
	}

	got, total, err = repo.ListAdmin(AuthzAuditLogListFilter{Page: 1, PageSize: 10, Action: "role_grant", Role: "role:ops"})
	if err != nil {
		t.Fatalf("list by action failed: %v", err)
	}
	if total != 1 || got[0].TargetAdminID == nil || *got[0].TargetAdminID != target {
		t.Fatalf("action filter want the role:ops grant got total=%d", total)
	}
}
