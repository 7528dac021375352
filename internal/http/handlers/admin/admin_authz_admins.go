package admin

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/linkmall/internal/cache"
	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/i18n"
	"github.com/linkmall/internal/logger"
	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/service"

	"github.com/gin-gonic/gin"
)

// 内置超级管理员账号不允许降级或删除
const protectedSuperAdminUsername = "admin"

type authzCreateAdminPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	IsSuper  *bool  `json:"is_super"`
}

type authzUpdateAdminPayload struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	IsSuper  *bool   `json:"is_super"`
}

// CreateAuthzAdmin 创建管理员
func (h *Handler) CreateAuthzAdmin(c *gin.Context) {
	var req authzCreateAdminPayload
	if !bindJSON(c, &req) {
		return
	}

	username, err := normalizeAdminUsername(req.Username)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.admin_username_invalid", err)
		return
	}

	existing, err := h.AdminRepo.GetByUsername(username)
	if err != nil {
		respondError(c, response.CodeInternal, "error.admin_create_failed", err)
		return
	}
	if existing != nil {
		respondError(c, response.CodeBadRequest, "error.admin_username_exists", nil)
		return
	}

	hash, ok := h.hashAdminPassword(c, req.Password, "error.admin_create_failed")
	if !ok {
		return
	}

	isSuper := req.IsSuper != nil && *req.IsSuper
	if strings.EqualFold(username, protectedSuperAdminUsername) {
		isSuper = true
	}

	admin := &models.Admin{
		Username:     username,
		PasswordHash: hash,
		IsSuper:      isSuper,
	}
	if err := h.AdminRepo.Create(admin); err != nil {
		respondError(c, response.CodeInternal, "error.admin_create_failed", err)
		return
	}
	_ = cache.SetAdminAuthState(c.Request.Context(), cache.BuildAdminAuthState(admin))

	h.auditAdminChange(c, "admin_create", "admin_authz_admin_created", admin.ID, admin.Username, models.JSON{
		"target_admin_id": admin.ID,
		"target_username": admin.Username,
		"is_super":        admin.IsSuper,
	}, "is_super", admin.IsSuper)
	response.Success(c, admin)
}

// UpdateAuthzAdmin 更新管理员，改密时作废其全部已签发会话
func (h *Handler) UpdateAuthzAdmin(c *gin.Context) {
	admin, ok := h.loadAdminByPathID(c, "error.admin_update_failed")
	if !ok {
		return
	}

	var req authzUpdateAdminPayload
	if !bindJSON(c, &req) {
		return
	}

	updatedFields := make([]string, 0, 3)

	if req.Username != nil {
		username, err := normalizeAdminUsername(*req.Username)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.admin_username_invalid", err)
			return
		}
		if username != admin.Username {
			existing, err := h.AdminRepo.GetByUsername(username)
			if err != nil {
				respondError(c, response.CodeInternal, "error.admin_update_failed", err)
				return
			}
			if existing != nil && existing.ID != admin.ID {
				respondError(c, response.CodeBadRequest, "error.admin_username_exists", nil)
				return
			}
			admin.Username = username
			updatedFields = append(updatedFields, "username")
		}
	}

	if req.IsSuper != nil {
		nextIsSuper := *req.IsSuper
		if strings.EqualFold(strings.TrimSpace(admin.Username), protectedSuperAdminUsername) {
			nextIsSuper = true
		}
		if admin.IsSuper != nextIsSuper {
			admin.IsSuper = nextIsSuper
			updatedFields = append(updatedFields, "is_super")
		}
	}

	if req.Password != nil {
		hash, ok := h.hashAdminPassword(c, *req.Password, "error.admin_update_failed")
		if !ok {
			return
		}
		now := time.Now()
		admin.PasswordHash = hash
		admin.TokenVersion++
		admin.TokenInvalidBefore = &now
		updatedFields = append(updatedFields, "password")
	}

	if len(updatedFields) == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.AdminRepo.Update(admin); err != nil {
		respondError(c, response.CodeInternal, "error.admin_update_failed", err)
		return
	}
	_ = cache.SetAdminAuthState(c.Request.Context(), cache.BuildAdminAuthState(admin))

	sort.Strings(updatedFields)
	if currentAdminID(c) == admin.ID {
		c.Set("admin_is_super", admin.IsSuper)
	}

	h.auditAdminChange(c, "admin_update", "admin_authz_admin_updated", admin.ID, admin.Username, models.JSON{
		"target_admin_id": admin.ID,
		"target_username": admin.Username,
		"updated_fields":  updatedFields,
		"is_super":        admin.IsSuper,
	}, "updated_fields", updatedFields)
	response.Success(c, admin)
}

// DeleteAuthzAdmin 删除管理员，禁止删除自己、内置账号和最后一名管理员
func (h *Handler) DeleteAuthzAdmin(c *gin.Context) {
	admin, ok := h.loadAdminByPathID(c, "error.admin_delete_failed")
	if !ok {
		return
	}
	adminID := admin.ID
	if currentAdminID(c) == adminID {
		respondError(c, response.CodeBadRequest, "error.admin_delete_self_forbidden", nil)
		return
	}
	if strings.EqualFold(strings.TrimSpace(admin.Username), protectedSuperAdminUsername) {
		respondError(c, response.CodeBadRequest, "error.admin_delete_protected", nil)
		return
	}

	count, err := h.AdminRepo.Count()
	if err != nil {
		respondError(c, response.CodeInternal, "error.admin_delete_failed", err)
		return
	}
	if count <= 1 {
		respondError(c, response.CodeBadRequest, "error.admin_delete_last_forbidden", nil)
		return
	}

	// 先清空角色绑定再删账号，避免 casbin 留下悬挂分组
	if err := h.AuthzService.SetAdminRoles(adminID, []string{}); err != nil {
		respondError(c, response.CodeInternal, "error.admin_delete_failed", err)
		return
	}
	if err := h.AdminRepo.Delete(adminID); err != nil {
		respondError(c, response.CodeInternal, "error.admin_delete_failed", err)
		return
	}
	_ = cache.DelAdminAuthState(c.Request.Context(), adminID)

	h.auditAdminChange(c, "admin_delete", "admin_authz_admin_deleted", adminID, admin.Username, models.JSON{
		"target_admin_id": adminID,
		"target_username": admin.Username,
	})
	response.Success(c, nil)
}

// loadAdminByPathID 解析路径 ID 并加载管理员，失败时已写响应
func (h *Handler) loadAdminByPathID(c *gin.Context, failKey string) (*models.Admin, bool) {
	adminID, ok := parseAdminIDParam(c)
	if !ok {
		return nil, false
	}
	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, failKey, err)
		return nil, false
	}
	if admin == nil {
		respondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
		return nil, false
	}
	return admin, true
}

// auditAdminChange 管理员增删改共用的审计加日志
func (h *Handler) auditAdminChange(c *gin.Context, auditAction, logEvent string, targetID uint, targetUsername string, detail models.JSON, logKV ...interface{}) {
	entry := operatorAudit(c, auditAction)
	entry.TargetAdminID = &targetID
	entry.TargetUsername = targetUsername
	entry.Detail = detail
	h.recordAuthzAudit(c, entry)

	kv := append([]interface{}{
		"operator_admin_id", currentAdminID(c),
		"target_admin_id", targetID,
		"target_username", targetUsername,
	}, logKV...)
	logger.Infow(logEvent, kv...)
}

// hashAdminPassword 校验密码强度并生成哈希，校验失败时已写响应
func (h *Handler) hashAdminPassword(c *gin.Context, password, failKey string) (string, bool) {
	password = strings.TrimSpace(password)
	if password == "" {
		respondError(c, response.CodeBadRequest, "error.password_weak", nil)
		return "", false
	}
	if err := h.AuthService.ValidatePassword(password); err != nil {
		if !respondAdminPasswordPolicyError(c, err) {
			respondError(c, response.CodeBadRequest, "error.password_weak", err)
		}
		return "", false
	}
	hash, err := h.AuthService.HashPassword(password)
	if err != nil {
		respondError(c, response.CodeInternal, failKey, err)
		return "", false
	}
	return hash, true
}

func normalizeAdminUsername(username string) (string, error) {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return "", fmt.Errorf("username is required")
	}
	if strings.ContainsAny(trimmed, " \t\r\n") {
		return "", fmt.Errorf("username contains whitespace")
	}
	if length := len([]rune(trimmed)); length < 3 || length > 64 {
		return "", fmt.Errorf("username length out of range")
	}
	return trimmed, nil
}

// respondAdminPasswordPolicyError 密码策略错误带本地化明细时按明细返回
func respondAdminPasswordPolicyError(c *gin.Context, err error) bool {
	if err == nil || !errors.Is(err, service.ErrPasswordTooWeak) {
		return false
	}
	if perr, ok := err.(interface {
		Key() string
		Args() []interface{}
	}); ok {
		msg := i18n.Sprintf(i18n.ResolveLocale(c), perr.Key(), perr.Args()...)
		respondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
		return true
	}
	respondError(c, response.CodeBadRequest, "error.password_weak", nil)
	return true
}
