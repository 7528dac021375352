package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "readonly_auditor",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "operations",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/products", Action: "*"},
				{Object: "/admin/products/:id", Action: "*"},
				{Object: "/admin/categories", Action: "*"},
				{Object: "/admin/categories/:id", Action: "*"},
				{Object: "/admin/sellers", Action: "*"},
				{Object: "/admin/sellers/:id", Action: "*"},
				{Object: "/admin/sellers/:id/review", Action: "POST"},
				{Object: "/admin/upload", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role:     "support",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/orders", Action: "GET"},
				{Object: "/admin/orders/:id", Action: "GET"},
				{Object: "/admin/orders/:id", Action: "PATCH"},
				{Object: "/admin/orders/:id/mark-paid", Action: "POST"},
				{Object: "/admin/users", Action: "GET"},
				{Object: "/admin/users/:id", Action: "GET"},
				{Object: "/admin/user-login-logs", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "finance",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/commissions", Action: "GET"},
				{Object: "/admin/commissions/:id", Action: "GET"},
				{Object: "/admin/commissions/:id/dispute", Action: "POST"},
				{Object: "/admin/commissions/:id/resolve-dispute", Action: "POST"},
				{Object: "/admin/payout-batches", Action: "*"},
				{Object: "/admin/payout-batches/:id", Action: "GET"},
				{Object: "/admin/partners", Action: "GET"},
				{Object: "/admin/partners/:id", Action: "GET"},
				{Object: "/admin/partners/:id/review", Action: "POST"},
				{Object: "/admin/orders", Action: "GET"},
				{Object: "/admin/orders/:id", Action: "GET"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略，幂等，可在每次启动时执行
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	changed := false
	for _, seed := range BuiltinRoleSeeds() {
		seedChanged, err := s.applyRoleSeed(seed)
		if err != nil {
			return err
		}
		changed = changed || seedChanged
	}

	if !changed {
		return nil
	}
	return s.ReloadPolicy()
}

func (s *Service) applyRoleSeed(seed RoleSeed) (bool, error) {
	role, err := NormalizeRole(seed.Role)
	if err != nil {
		return false, err
	}

	changed, err := s.ensureRoleAnchored(role)
	if err != nil {
		return false, err
	}

	for _, parent := range seed.Inherits {
		parentRole, err := NormalizeRole(parent)
		if err != nil {
			return changed, err
		}
		added, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole)
		if err != nil {
			return changed, fmt.Errorf("link role inheritance failed: %w", err)
		}
		changed = changed || added
	}

	for _, policy := range seed.Policies {
		action := NormalizeAction(policy.Action)
		if action == "" {
			return changed, fmt.Errorf("builtin policy action is required")
		}
		added, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action)
		if err != nil {
			return changed, fmt.Errorf("add builtin policy failed: %w", err)
		}
		changed = changed || added
	}
	return changed, nil
}

// ensureRoleAnchored 角色通过与锚点的分组关系落库，保证空角色也能被列出
func (s *Service) ensureRoleAnchored(role string) (bool, error) {
	exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
	if err != nil {
		return false, fmt.Errorf("check builtin role failed: %w", err)
	}
	if exists {
		return false, nil
	}
	added, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor)
	if err != nil {
		return false, fmt.Errorf("create builtin role failed: %w", err)
	}
	return added, nil
}
