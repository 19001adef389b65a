package presets

import "storefront/internal/rbac"

// Storefront returns the permission table for the storefront admin.
//
//	admin:  every action
//	editor: catalog and blog content, dashboard
//	agent:  support chat and customer records, dashboard
//
// Roles do not inherit from one another.
func Storefront() rbac.Config {
	return rbac.Config{
		Roles:   rbac.AllRoles,
		Actions: rbac.AllActions,
		Grants: map[rbac.Role][]rbac.Action{
			rbac.RoleAdmin: {
				rbac.ActionManageUsers,
				rbac.ActionManageProducts,
				rbac.ActionManageBlog,
				rbac.ActionManageCustomers,
				rbac.ActionManageSettings,
				rbac.ActionManageSupportChat,
				rbac.ActionManagePayments,
				rbac.ActionViewDashboard,
			},
			rbac.RoleEditor: {
				rbac.ActionManageProducts,
				rbac.ActionManageBlog,
				rbac.ActionViewDashboard,
			},
			rbac.RoleAgent: {
				rbac.ActionManageSupportChat,
				rbac.ActionManageCustomers,
				rbac.ActionViewDashboard,
			},
		},
	}
}
