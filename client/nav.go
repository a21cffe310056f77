package client

import (
	"strings"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/user"
)

// dashboards maps each dashboard area to the roles allowed in it. Everything else is public.
var dashboards = []struct {
	prefix string
	roles  []string
}{
	{"/admin", user.AdminRoles},
	{"/teacher", []string{user.RoleTeacher}},
	{"/student", []string{user.RoleStudent}},
	{"/parent", []string{user.RoleParent}},
	{"/finance", []string{user.RoleFinanceOfficer}},
}

// HomePath is the dashboard a user of role lands on after login.
func HomePath(role string) string {
	switch role {
	case user.RoleSuperAdmin, user.RoleAdminStaff:
		return "/admin"
	case user.RoleTeacher:
		return "/teacher"
	case user.RoleStudent:
		return "/student"
	case user.RoleParent:
		return "/parent"
	case user.RoleFinanceOfficer:
		return "/finance"
	}
	return "/"
}

// CanAccess reports whether role may open path. An empty role is a visitor.
func CanAccess(role, path string) bool {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, d := range dashboards {
		if path == d.prefix || strings.HasPrefix(path, d.prefix+"/") {
			return core.StringIn(role, d.roles...)
		}
	}
	return true
}
