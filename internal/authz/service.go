package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	apiV1Prefix     = "/api/v1"
	casbinTableName = "casbin_rule"
	adminSubjectFmt = "admin:%d"
	rolePrefix      = "role:"
	// roleAnchor 作为空角色的占位父节点，使无策略角色也能被持久化
	roleAnchor = "role:__anchor__"
)

const defaultRBACModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

var (
	errAuthzActionRequired  = errors.New("authz: action is required")
	errAuthzAdminIDRequired = errors.New("authz: admin id is required")
	errAuthzRoleRequired    = errors.New("authz: role is required")
)

// Policy 权限策略三元组
type Policy struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

// Service 后台权限服务，封装 Casbin 的策略存取与判定。
// 策略经 gorm-adapter 持久化到 casbin_rule 表，AutoSave 开启后写操作即时落库。
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 创建授权服务
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, errors.New("authz: nil db")
	}

	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("authz: create adapter: %w", err)
	}

	m, err := model.NewModelFromString(defaultRBACModel)
	if err != nil {
		return nil, fmt.Errorf("authz: parse model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("authz: build enforcer: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("authz: load policy: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return errors.New("authz: service unavailable")
	}
	return nil
}

// checkedRole 规范化角色名并拒绝保留角色
func (s *Service) checkedRole(role string) (string, error) {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return "", err
	}
	if normalized == roleAnchor {
		return "", errors.New("authz: reserved role")
	}
	if err := s.ready(); err != nil {
		return "", err
	}
	return normalized, nil
}

// isListableRole 锚点与非 role: 前缀的主体不算角色
func isListableRole(value string) bool {
	return strings.HasPrefix(value, rolePrefix) && value != roleAnchor
}

// Enforcer 返回底层 enforcer，供策略管理接口直接操作
func (s *Service) Enforcer() *casbin.SyncedEnforcer {
	if s == nil {
		return nil
	}
	return s.enforcer
}

// Enforce 执行授权判定
func (s *Service) Enforce(sub, obj, act string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	return s.enforcer.Enforce(strings.TrimSpace(sub), NormalizeObject(obj), NormalizeAction(act))
}

// EnforceAdmin 按管理员 ID 判定授权
func (s *Service) EnforceAdmin(adminID uint, obj, act string) (bool, error) {
	return s.Enforce(SubjectForAdmin(adminID), obj, act)
}

// ReloadPolicy 从存储重新加载全量策略
func (s *Service) ReloadPolicy() error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.enforcer.LoadPolicy()
}

// EnsureRole 确保角色存在，返回规范化后的角色名
func (s *Service) EnsureRole(role string) (string, error) {
	normalized, err := s.checkedRole(role)
	if err != nil {
		return "", err
	}

	exists, err := s.enforcer.HasNamedGroupingPolicy("g", normalized, roleAnchor)
	if err != nil {
		return "", fmt.Errorf("authz: probe role: %w", err)
	}
	if !exists {
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", normalized, roleAnchor); err != nil {
			return "", fmt.Errorf("authz: create role: %w", err)
		}
	}
	return normalized, nil
}

// ListRoles 列出全部角色
func (s *Service) ListRoles() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetFilteredNamedGroupingPolicy("g", 0)
	if err != nil {
		return nil, fmt.Errorf("authz: list roles: %w", err)
	}

	roleSet := make(map[string]struct{})
	for _, rule := range rules {
		for _, value := range rule {
			if isListableRole(value) {
				roleSet[value] = struct{}{}
			}
		}
	}

	roles := make([]string, 0, len(roleSet))
	for role := range roleSet {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles, nil
}

// DeleteRole 删除角色及其全部关联策略
func (s *Service) DeleteRole(role string) error {
	normalized, err := s.checkedRole(role)
	if err != nil {
		return err
	}

	// 依次清掉直连策略、作为子角色的边、作为父角色的边
	if _, err := s.enforcer.RemoveFilteredPolicy(0, normalized); err != nil {
		return fmt.Errorf("authz: drop role policies: %w", err)
	}
	for _, fieldIndex := range []int{0, 1} {
		if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", fieldIndex, normalized); err != nil {
			return fmt.Errorf("authz: drop role links: %w", err)
		}
	}
	return nil
}

// GrantRolePolicy 为角色授予策略
func (s *Service) GrantRolePolicy(role, object, action string) error {
	normalizedRole, err := s.EnsureRole(role)
	if err != nil {
		return err
	}
	normalizedAction := NormalizeAction(action)
	if normalizedAction == "" {
		return errAuthzActionRequired
	}
	if _, err := s.enforcer.AddPolicy(normalizedRole, NormalizeObject(object), normalizedAction); err != nil {
		return fmt.Errorf("authz: grant policy: %w", err)
	}
	return nil
}

// RevokeRolePolicy 撤销角色策略
func (s *Service) RevokeRolePolicy(role, object, action string) error {
	normalizedRole, err := s.checkedRole(role)
	if err != nil {
		return err
	}
	normalizedAction := NormalizeAction(action)
	if normalizedAction == "" {
		return errAuthzActionRequired
	}
	if _, err := s.enforcer.RemovePolicy(normalizedRole, NormalizeObject(object), normalizedAction); err != nil {
		return fmt.Errorf("authz: revoke policy: %w", err)
	}
	return nil
}

// GetRolePolicies 查询角色直连策略
func (s *Service) GetRolePolicies(role string) ([]Policy, error) {
	normalizedRole, err := s.checkedRole(role)
	if err != nil {
		return nil, err
	}

	rules, err := s.enforcer.GetFilteredPolicy(0, normalizedRole)
	if err != nil {
		return nil, fmt.Errorf("authz: read role policies: %w", err)
	}
	return convertPolicies(rules), nil
}

// SetAdminRoles 覆盖设置管理员的角色集合
func (s *Service) SetAdminRoles(adminID uint, roles []string) error {
	if adminID == 0 {
		return errAuthzAdminIDRequired
	}
	if err := s.ready(); err != nil {
		return err
	}
	subject := SubjectForAdmin(adminID)

	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 0, subject); err != nil {
		return fmt.Errorf("authz: reset admin roles: %w", err)
	}
	for _, role := range roles {
		normalizedRole, err := s.EnsureRole(role)
		if err != nil {
			return err
		}
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", subject, normalizedRole); err != nil {
			return fmt.Errorf("authz: bind admin role: %w", err)
		}
	}
	return nil
}

// GetAdminRoles 查询管理员的角色列表
func (s *Service) GetAdminRoles(adminID uint) ([]string, error) {
	if adminID == 0 {
		return nil, errAuthzAdminIDRequired
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	roles, err := s.enforcer.GetRolesForUser(SubjectForAdmin(adminID))
	if err != nil {
		return nil, fmt.Errorf("authz: read admin roles: %w", err)
	}

	filtered := make([]string, 0, len(roles))
	for _, role := range roles {
		if isListableRole(role) {
			filtered = append(filtered, role)
		}
	}
	sort.Strings(filtered)
	return filtered, nil
}

// GetAdminPolicies 查询管理员的生效策略（直连 + 经角色继承，去重）
func (s *Service) GetAdminPolicies(adminID uint) ([]Policy, error) {
	if adminID == 0 {
		return nil, errAuthzAdminIDRequired
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	roles, err := s.GetAdminRoles(adminID)
	if err != nil {
		return nil, err
	}
	subjects := append([]string{SubjectForAdmin(adminID)}, roles...)

	policyMap := map[string]Policy{}
	for _, subject := range subjects {
		rules, err := s.enforcer.GetFilteredPolicy(0, subject)
		if err != nil {
			return nil, fmt.Errorf("authz: read policies of %s: %w", subject, err)
		}
		for _, item := range convertPolicies(rules) {
			policyMap[item.Subject+"|"+item.Object+"|"+item.Action] = item
		}
	}

	result := make([]Policy, 0, len(policyMap))
	for _, item := range policyMap {
		result = append(result, item)
	}
	sortPolicies(result)
	return result, nil
}

func sortPolicies(policies []Policy) {
	sort.Slice(policies, func(i, j int) bool {
		a, b := policies[i], policies[j]
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Object != b.Object {
			return a.Object < b.Object
		}
		return a.Action < b.Action
	})
}

func convertPolicies(rules [][]string) []Policy {
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{
			Subject: strings.TrimSpace(rule[0]),
			Object:  NormalizeObject(rule[1]),
			Action:  NormalizeAction(rule[2]),
		})
	}
	return policies
}

// SubjectForAdmin 生成管理员主体标识
func SubjectForAdmin(adminID uint) string {
	return fmt.Sprintf(adminSubjectFmt, adminID)
}

// NormalizeRole 统一角色名称（补 role: 前缀，空格转下划线）
func NormalizeRole(role string) (string, error) {
	normalized := strings.TrimSpace(role)
	if normalized == "" {
		return "", errAuthzRoleRequired
	}
	normalized = strings.ReplaceAll(normalized, " ", "_")
	if !strings.HasPrefix(normalized, rolePrefix) {
		normalized = rolePrefix + normalized
	}
	if len(normalized) <= len(rolePrefix) {
		return "", errAuthzRoleRequired
	}
	return normalized, nil
}

// NormalizeObject 统一授权资源路径，剥离 /api/v1 前缀
func NormalizeObject(object string) string {
	normalized := strings.TrimSpace(object)
	if normalized == "" {
		return "/"
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	if strings.HasPrefix(normalized, apiV1Prefix+"/") {
		return strings.TrimPrefix(normalized, apiV1Prefix)
	}
	if normalized == apiV1Prefix {
		return "/"
	}
	return normalized
}

// NormalizeAction 统一授权动作为大写 HTTP 方法
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
