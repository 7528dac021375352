package admin

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/logger"
	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/service"

	"github.com/gin-gonic/gin"
)

type authzRolePayload struct {
	Role string `json:"role" binding:"required"`
}

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzSetAdminRolesPayload struct {
	Roles []string `json:"roles"`
}

// operatorAudit 以当前登录管理员为操作人构造审计记录
func operatorAudit(c *gin.Context, action string) service.AuthzAuditRecordInput {
	return service.AuthzAuditRecordInput{
		OperatorAdminID:  currentAdminID(c),
		OperatorUsername: currentUsername(c),
		Action:           action,
		RequestID:        currentRequestID(c),
	}
}

// GetAuthzMe 当前管理员的角色与策略快照
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}
	policies, err := h.AuthzService.GetAdminPolicies(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}

	isSuper := false
	if value, exists := c.Get("admin_is_super"); exists {
		if flag, typeOK := value.(bool); typeOK {
			isSuper = flag
		}
	}

	response.Success(c, gin.H{
		"admin_id": adminID,
		"is_super": isSuper,
		"roles":    roles,
		"policies": policies,
	})
}

// ListAuthzRoles 获取角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}
	response.Success(c, roles)
}

// ListAuthzAdmins 获取管理员列表及各自角色
func (h *Handler) ListAuthzAdmins(c *gin.Context) {
	admins, err := h.AdminRepo.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}

	items := make([]gin.H, 0, len(admins))
	for _, admin := range admins {
		roles, roleErr := h.AuthzService.GetAdminRoles(admin.ID)
		if roleErr != nil {
			respondError(c, response.CodeInternal, "error.config_fetch_failed", roleErr)
			return
		}
		items = append(items, gin.H{
			"id":            admin.ID,
			"username":      admin.Username,
			"is_super":      admin.IsSuper,
			"last_login_at": admin.LastLoginAt,
			"created_at":    admin.CreatedAt,
			"roles":         roles,
		})
	}

	response.Success(c, items)
}

// CreateAuthzRole 创建角色
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	var req authzRolePayload
	if !bindJSON(c, &req) {
		return
	}

	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	h.auditRoleChange(c, "role_create", "admin_authz_role_created", role)
	response.Success(c, gin.H{"role": role})
}

// DeleteAuthzRole 删除角色
func (h *Handler) DeleteAuthzRole(c *gin.Context) {
	role, ok := pathRole(c)
	if !ok {
		return
	}

	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	h.auditRoleChange(c, "role_delete", "admin_authz_role_deleted", role)
	response.Success(c, nil)
}

// GetAuthzRolePolicies 获取角色策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role, ok := pathRole(c)
	if !ok {
		return
	}

	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy 授予角色策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	h.changeRolePolicy(c, "policy_grant", "admin_authz_policy_granted", h.AuthzService.GrantRolePolicy)
}

// RevokeAuthzPolicy 撤销角色策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	h.changeRolePolicy(c, "policy_revoke", "admin_authz_policy_revoked", h.AuthzService.RevokeRolePolicy)
}

// changeRolePolicy 授予与撤销共用同一套绑定、审计和日志流程
func (h *Handler) changeRolePolicy(c *gin.Context, auditAction, logEvent string, apply func(role, object, action string) error) {
	var req authzPolicyPayload
	if !bindJSON(c, &req) {
		return
	}

	if err := apply(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	entry := operatorAudit(c, auditAction)
	entry.Role = req.Role
	entry.Object = req.Object
	entry.Method = req.Action
	entry.Detail = models.JSON{
		"role":   req.Role,
		"object": req.Object,
		"method": strings.ToUpper(strings.TrimSpace(req.Action)),
	}
	h.recordAuthzAudit(c, entry)

	logger.Infow(logEvent,
		"operator_admin_id", currentAdminID(c),
		"role", req.Role,
		"object", req.Object,
		"action", req.Action,
	)
	response.Success(c, nil)
}

// GetAuthzAdminRoles 获取管理员角色
func (h *Handler) GetAuthzAdminRoles(c *gin.Context) {
	adminID, ok := parseAdminIDParam(c)
	if !ok {
		return
	}
	if _, err := h.AdminRepo.GetByID(adminID); err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}

	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}
	response.Success(c, roles)
}

// SetAuthzAdminRoles 覆盖式设置管理员角色
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	adminID, ok := parseAdminIDParam(c)
	if !ok {
		return
	}
	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
		return
	}

	var req authzSetAdminRolesPayload
	if !bindJSON(c, &req) {
		return
	}

	if err := h.AuthzService.SetAdminRoles(adminID, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	entry := operatorAudit(c, "admin_roles_update")
	entry.TargetAdminID = &adminID
	entry.TargetUsername = admin.Username
	entry.Detail = models.JSON{
		"target_admin_id": adminID,
		"target_username": admin.Username,
		"roles":           req.Roles,
	}
	h.recordAuthzAudit(c, entry)

	logger.Infow("admin_authz_admin_roles_updated",
		"operator_admin_id", currentAdminID(c),
		"target_admin_id", adminID,
		"roles", req.Roles,
	)
	response.Success(c, nil)
}

// auditRoleChange 角色增删共用的审计加日志
func (h *Handler) auditRoleChange(c *gin.Context, auditAction, logEvent, role string) {
	entry := operatorAudit(c, auditAction)
	entry.Role = role
	entry.Detail = models.JSON{"role": role}
	h.recordAuthzAudit(c, entry)

	logger.Infow(logEvent,
		"operator_admin_id", currentAdminID(c),
		"role", role,
	)
}

// recordAuthzAudit 审计落库失败只记日志，不影响主流程
func (h *Handler) recordAuthzAudit(c *gin.Context, input service.AuthzAuditRecordInput) {
	if h == nil || h.AuthzAuditService == nil {
		return
	}
	if input.OperatorAdminID == 0 || strings.TrimSpace(input.Action) == "" {
		return
	}
	if err := h.AuthzAuditService.Record(input); err != nil {
		logger.Warnw("admin_authz_audit_record_failed",
			"error", err,
			"action", input.Action,
			"operator_admin_id", input.OperatorAdminID,
		)
	}
}

func parseAdminIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
		return 0, false
	}
	return uint(id), true
}

func decodeRoleParam(value string) string {
	if decoded, err := url.QueryUnescape(value); err == nil {
		value = decoded
	}
	return strings.TrimSpace(value)
}

// pathRole 解析路径中的角色名，空值已回写响应
func pathRole(c *gin.Context) (string, bool) {
	role := decodeRoleParam(c.Param("role"))
	if role == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return "", false
	}
	return role, true
}

func currentAdminID(c *gin.Context) uint {
	switch adminID := c.Value("admin_id").(type) {
	case uint:
		return adminID
	case int:
		if adminID > 0 {
			return uint(adminID)
		}
	case float64:
		if adminID > 0 {
			return uint(adminID)
		}
	}
	return 0
}

func currentUsername(c *gin.Context) string {
	if username, ok := c.Value("username").(string); ok {
		return strings.TrimSpace(username)
	}
	return ""
}

func currentRequestID(c *gin.Context) string {
	if requestID, ok := c.Value("request_id").(string); ok {
		return strings.TrimSpace(requestID)
	}
	return ""
}
