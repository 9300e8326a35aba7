package authz

import "fmt"

// 预置角色
const (
	RoleAuditor     = "auditor"
	RoleModerator   = "moderator"
	RoleKYCReviewer = "kyc_reviewer"
	RoleOperator    = "operator"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 论坛后台预置角色
// auditor 只读；moderator 处理分类与内容；kyc_reviewer 处理实名；operator 管理用户与设置
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: RoleAuditor,
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     RoleModerator,
			Inherits: []string{RoleAuditor},
			Policies: []Policy{
				{Object: "/admin/categories/:id/approve", Action: "POST"},
				{Object: "/admin/categories/:id/reject", Action: "POST"},
				{Object: "/admin/posts/:id/moderate", Action: "POST"},
				{Object: "/admin/comments/:id/moderate", Action: "POST"},
			},
		},
		{
			Role:     RoleKYCReviewer,
			Inherits: []string{RoleAuditor},
			Policies: []Policy{
				{Object: "/admin/kyc/:id/approve", Action: "POST"},
				{Object: "/admin/kyc/:id/reject", Action: "POST"},
			},
		},
		{
			Role:     RoleOperator,
			Inherits: []string{RoleModerator, RoleKYCReviewer},
			Policies: []Policy{
				{Object: "/admin/users/status", Action: "PUT"},
				{Object: "/admin/users/:id/exp", Action: "POST"},
				{Object: "/admin/settings/:key", Action: "PUT"},
				{Object: "/admin/leaderboard/refresh", Action: "POST"},
			},
		},
	}
}

// BootstrapBuiltinRoles 写入预置角色、继承关系与策略，重复执行无副作用
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}
		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}
		for _, policy := range seed.Policies {
			if err := s.GrantRolePolicy(role, policy.Object, policy.Action); err != nil {
				return err
			}
		}
	}
	return nil
}
