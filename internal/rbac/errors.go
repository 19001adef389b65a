package rbac

import "errors"

var (
	ErrDenied      = errors.New("authorization denied")
	ErrInvalidRole = errors.New("invalid role")
)

const (
	errConfigRolesEmpty                 = "rbac config: roles must not be empty"
	errConfigActionsEmpty               = "rbac config: actions must not be empty"
	errConfigUnknownRoleFmt             = "rbac config: role %d is not a known role"
	errConfigDuplicateRoleFmt           = "rbac config: duplicate role: %s"
	errConfigActionEmpty                = "rbac config: action must not be empty"
	errConfigDuplicateActionFmt         = "rbac config: duplicate action: %s"
	errConfigMissingGrantsFmt           = "rbac config: role %s has no grants entry"
	errConfigGrantUnknownRoleFmt        = "rbac config: grants reference undeclared role: %s"
	errConfigGrantUnknownActionFmt      = "rbac config: grants for role %s reference undeclared action: %s"
	errConfigGrantDuplicateActionFmt    = "rbac config: grants for role %s repeat action: %s"
	errMustNewPanicFmt                  = "rbac.MustNew: %v"
	errDeniedUnknownRoleFmt             = "role '%s' is not in the permission table"
	errDeniedRoleCannotPerformActionFmt = "role '%s' cannot perform action '%s'"
)
