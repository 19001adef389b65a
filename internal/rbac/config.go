package rbac

import "fmt"

// Config is the permission table: which actions each role may perform.
type Config struct {
	Roles   []Role
	Actions []Action
	Grants  map[Role][]Action
}

// Validate checks internal consistency of the Config. Every declared role
// must have a Grants entry, which may be empty.
func (c *Config) Validate() error {
	if len(c.Roles) == 0 {
		return fmt.Errorf(errConfigRolesEmpty)
	}
	if len(c.Actions) == 0 {
		return fmt.Errorf(errConfigActionsEmpty)
	}

	roleSet := make(map[Role]bool, len(c.Roles))
	for _, r := range c.Roles {
		if !r.Known() {
			return fmt.Errorf(errConfigUnknownRoleFmt, uint8(r))
		}
		if roleSet[r] {
			return fmt.Errorf(errConfigDuplicateRoleFmt, r)
		}
		roleSet[r] = true
	}

	actSet := make(map[Action]bool, len(c.Actions))
	for _, a := range c.Actions {
		if a == "" {
			return fmt.Errorf(errConfigActionEmpty)
		}
		if actSet[a] {
			return fmt.Errorf(errConfigDuplicateActionFmt, a)
		}
		actSet[a] = true
	}

	for _, r := range c.Roles {
		if _, ok := c.Grants[r]; !ok {
			return fmt.Errorf(errConfigMissingGrantsFmt, r)
		}
	}

	for role, actions := range c.Grants {
		if !roleSet[role] {
			return fmt.Errorf(errConfigGrantUnknownRoleFmt, role)
		}
		seen := make(map[Action]bool, len(actions))
		for _, act := range actions {
			if !actSet[act] {
				return fmt.Errorf(errConfigGrantUnknownActionFmt, role, act)
			}
			if seen[act] {
				return fmt.Errorf(errConfigGrantDuplicateActionFmt, role, act)
			}
			seen[act] = true
		}
	}

	return nil
}
