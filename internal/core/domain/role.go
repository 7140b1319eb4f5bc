package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Role is the closed set of roles a user can hold.
type Role string

const (
	RoleUser      Role = "User"
	RoleAdmin     Role = "Admin"
	RoleModerator Role = "Moderator"
)

// AllRoles lists every known role in canonical order.
func AllRoles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleModerator}
}

func (r Role) rank() int {
	switch r {
	case RoleUser:
		return 0
	case RoleAdmin:
		return 1
	case RoleModerator:
		return 2
	default:
		return -1
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.rank() >= 0
}

// ParseRole accepts a role name in any letter case.
func ParseRole(s string) (Role, error) {
	for _, r := range AllRoles() {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Roles is a set of roles kept deduplicated and in canonical order.
type Roles []Role

// NewRoles builds a set from rs, dropping unknown and repeated entries.
func NewRoles(rs ...Role) Roles {
	seen := make(map[Role]struct{}, len(rs))
	out := make(Roles, 0, len(rs))
	for _, r := range rs {
		if !r.Valid() {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].rank() < out[j].rank() })
	return out
}

// ParseRoles converts role names into a set. Any unknown name is an error.
func ParseRoles(names []string) (Roles, error) {
	rs := make([]Role, 0, len(names))
	for _, n := range names {
		r, err := ParseRole(n)
		if err != nil {
			return nil, err
		}
		rs = append(rs, r)
	}
	return NewRoles(rs...), nil
}

func (rs Roles) Has(r Role) bool {
	for _, have := range rs {
		if have == r {
			return true
		}
	}
	return false
}

func (rs Roles) Strings() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}
