package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceAdminWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("reviewer", "/admin/kyc/:id/approve", "post"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetAdminRoles(1, []string{"reviewer"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	allow, err := svc.EnforceAdmin(1, "/api/v1/admin/kyc/42/approve", "POST")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow")
	}
	allow, err = svc.EnforceAdmin(1, "/api/v1/admin/kyc/42/reject", "POST")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if allow {
		t.Fatalf("expected deny for ungranted route")
	}

	if err := svc.RevokeRolePolicy("reviewer", "/admin/kyc/:id/approve", "POST"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if allow, _ := svc.EnforceAdmin(1, "/admin/kyc/42/approve", "POST"); allow {
		t.Fatalf("expected deny after revoke")
	}
}

func TestSetAdminRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.SetAdminRoles(2, []string{"moderator"}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	if err := svc.SetAdminRoles(2, []string{"kyc_reviewer"}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:kyc_reviewer" {
		t.Fatalf("roles want [role:kyc_reviewer], got=%v", roles)
	}
	if _, err := svc.GetAdminRoles(0); err == nil {
		t.Fatalf("expected error for empty admin id")
	}
}

func TestNormalizeHelpers(t *testing.T) {
	objects := map[string]string{
		"/api/v1/admin/posts/:id": "/admin/posts/:id",
		"admin/posts":             "/admin/posts",
		"/api/v1":                 "/",
		"":                        "/",
	}
	for in, want := range objects {
		if got := NormalizeObject(in); got != want {
			t.Fatalf("NormalizeObject(%q) = %q, want %q", in, got, want)
		}
	}
	if got, _ := NormalizeRole(" role:kyc reviewer "); got != "role:kyc_reviewer" {
		t.Fatalf("unexpected role %q", got)
	}
	if _, err := NormalizeRole("__anchor__"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("anchor role must be rejected, got %v", err)
	}
	var nilSvc *Service
	if _, err := nilSvc.EnforceAdmin(1, "/admin", "GET"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable got %v", err)
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	for i := 0; i < 2; i++ {
		if err := svc.BootstrapBuiltinRoles(); err != nil {
			t.Fatalf("bootstrap builtin roles failed: %v", err)
		}
	}
	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	want := []string{"role:auditor", "role:kyc_reviewer", "role:moderator", "role:operator"}
	if strings.Join(roles, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected roles %v", roles)
	}

	if err := svc.SetAdminRoles(3, []string{RoleModerator}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}
	checks := []struct {
		obj   string
		act   string
		allow bool
	}{
		{"/admin/moderation-logs", "GET", true},
		{"/admin/categories/7/approve", "POST", true},
		{"/admin/kyc/7/approve", "POST", false},
		{"/admin/settings/moderation_config", "PUT", false},
	}
	for _, check := range checks {
		allow, err := svc.EnforceAdmin(3, check.obj, check.act)
		if err != nil {
			t.Fatalf("enforce %s failed: %v", check.obj, err)
		}
		if allow != check.allow {
			t.Fatalf("%s %s: want allow=%v", check.act, check.obj, check.allow)
		}
	}

	if err := svc.SetAdminRoles(4, []string{RoleOperator}); err != nil {
		t.Fatalf("set operator failed: %v", err)
	}
	if allow, _ := svc.EnforceAdmin(4, "/admin/kyc/9/reject", "POST"); !allow {
		t.Fatalf("operator must inherit kyc reviewer permissions")
	}
	policies, err := svc.GetRolePolicies(RoleOperator)
	if err != nil {
		t.Fatalf("get policies failed: %v", err)
	}
	if len(policies) != 4 {
		t.Fatalf("expected 4 direct operator policies got %d", len(policies))
	}
}
