package rbac

import "fmt"

// Role is a closed set of staff roles. The zero value is RoleUnknown and is
// never granted anything.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleEditor
	RoleAgent
)

// AllRoles lists every known role in declaration order.
var AllRoles = []Role{RoleAdmin, RoleEditor, RoleAgent}

var roleNames = map[Role]string{
	RoleAdmin:  "admin",
	RoleEditor: "editor",
	RoleAgent:  "agent",
}

var rolesByName = map[string]Role{
	"admin":  RoleAdmin,
	"editor": RoleEditor,
	"agent":  RoleAgent,
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// Known reports whether r is one of the declared roles.
func (r Role) Known() bool {
	_, ok := roleNames[r]
	return ok
}

// ParseRole maps a wire name to a Role. Unknown names return RoleUnknown and
// an error wrapping ErrInvalidRole.
func ParseRole(name string) (Role, error) {
	if r, ok := rolesByName[name]; ok {
		return r, nil
	}
	return RoleUnknown, fmt.Errorf("%w: %q", ErrInvalidRole, name)
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Known() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Action is a named capability gated by a permission check.
type Action string

const (
	ActionManageUsers       Action = "MANAGE_USERS"
	ActionManageProducts    Action = "MANAGE_PRODUCTS"
	ActionManageBlog        Action = "MANAGE_BLOG"
	ActionManageCustomers   Action = "MANAGE_CUSTOMERS"
	ActionManageSettings    Action = "MANAGE_SETTINGS"
	ActionManageSupportChat Action = "MANAGE_SUPPORT_CHAT"
	ActionManagePayments    Action = "MANAGE_PAYMENTS"
	ActionViewDashboard     Action = "VIEW_DASHBOARD"
)

// AllActions lists every known action.
var AllActions = []Action{
	ActionManageUsers,
	ActionManageProducts,
	ActionManageBlog,
	ActionManageCustomers,
	ActionManageSettings,
	ActionManageSupportChat,
	ActionManagePayments,
	ActionViewDashboard,
}
