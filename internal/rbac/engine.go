package rbac

import (
	"fmt"
	"sort"
)

// Checker answers permission questions against a validated Config.
// All internal state is read-only after construction.
type Checker struct {
	grants map[Role]map[Action]bool
}

// New creates a Checker from a validated Config
func New(cfg Config) (*Checker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rc := &Checker{}
	rc.buildLookups(cfg)
	return rc, nil
}

// MustNew creates a Checker and panics on invalid config.
// Use it with known-good presets at init time.
func MustNew(cfg Config) *Checker {
	rc, err := New(cfg)
	if err != nil {
		panic(fmt.Sprintf(errMustNewPanicFmt, err))
	}
	return rc
}

func (rc *Checker) buildLookups(cfg Config) {
	rc.grants = make(map[Role]map[Action]bool, len(cfg.Roles))
	for _, role := range cfg.Roles {
		actions := cfg.Grants[role]
		set := make(map[Action]bool, len(actions))
		for _, act := range actions {
			set[act] = true
		}
		rc.grants[role] = set
	}
}

// HasPermission reports whether role may perform action. Unknown roles and
// actions are denied.
func (rc *Checker) HasPermission(role Role, action Action) bool {
	actions, ok := rc.grants[role]
	if !ok {
		return false
	}
	return actions[action]
}

// Authorize is HasPermission as an error wrapping ErrDenied.
func (rc *Checker) Authorize(role Role, action Action) error {
	actions, ok := rc.grants[role]
	if !ok {
		return fmt.Errorf("%w: "+errDeniedUnknownRoleFmt, ErrDenied, role)
	}
	if !actions[action] {
		return fmt.Errorf("%w: "+errDeniedRoleCannotPerformActionFmt, ErrDenied, role, action)
	}
	return nil
}

// Grants returns a sorted copy of the actions granted to role.
func (rc *Checker) Grants(role Role) []Action {
	set := rc.grants[role]
	out := make([]Action, 0, len(set))
	for act := range set {
		out = append(out, act)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ValidateRole parses role and checks that it is in the table.
func (rc *Checker) ValidateRole(role string) (Role, error) {
	r, err := ParseRole(role)
	if err != nil {
		return RoleUnknown, err
	}
	if _, ok := rc.grants[r]; !ok {
		return RoleUnknown, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}
	return r, nil
}
