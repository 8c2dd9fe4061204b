package domain

import "time"

// Known dashboard roles. Role values come from the upstream admin API and
// are matched verbatim by access policies.
const (
	RoleCEO       = "ceo"
	RoleSales     = "sales"
	RoleDeveloper = "developer"
	RoleAdmin     = "admin"
	RoleHR        = "hr"
	RoleGuest     = "guest"
)

// knownRoles is the closed set of roles a stored session may carry.
var knownRoles = map[string]struct{}{
	RoleCEO:       {},
	RoleSales:     {},
	RoleDeveloper: {},
	RoleAdmin:     {},
	RoleHR:        {},
	RoleGuest:     {},
}

// IsKnownRole reports whether role belongs to the closed role set.
func IsKnownRole(role string) bool {
	_, ok := knownRoles[role]
	return ok
}

// Principal is the authenticated identity a session carries. It is written
// once at login and read on every guarded request.
type Principal struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Role            string    `json:"role"`
	ProfileImageRef string    `json:"profile_image_ref,omitempty"`
	Token           string    `json:"token"`
	IssuedAt        time.Time `json:"issued_at"`
}

// Valid reports whether the principal is usable for access decisions:
// a non-empty token and a role from the known set.
func (p *Principal) Valid() bool {
	return p != nil && p.Token != "" && IsKnownRole(p.Role)
}

// AccessPolicy is the set of roles permitted to reach a route. Policies are
// built once at startup and never mutated afterwards.
type AccessPolicy struct {
	allowed map[string]struct{}
}

// NewAccessPolicy builds a policy allowing exactly the given roles.
func NewAccessPolicy(roles ...string) AccessPolicy {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return AccessPolicy{allowed: allowed}
}

// Allows reports whether the role is a member of the policy's allow set.
func (p AccessPolicy) Allows(role string) bool {
	_, ok := p.allowed[role]
	return ok
}

// Roles returns the allow set as a slice, for logging and introspection.
func (p AccessPolicy) Roles() []string {
	out := make([]string, 0, len(p.allowed))
	for r := range p.allowed {
		out = append(out, r)
	}
	return out
}
