// Package tenant carries the per-request identity and the location-scoping
// filter derived from it. Both the gorm query-builder path and the raw-SQL
// path consume the same Scope so the two can never drift apart.
package tenant

import "strings"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// Context is the immutable per-request identity: who is calling and which
// location partition they belong to. It is passed explicitly through guards,
// enforcers and stores, never attached to a shared mutable carrier.
type Context struct {
	Role       Role
	LocationID *uint
}

// FromClaims builds a Context from verified token claims. Unknown roles
// degrade to the least-privileged role.
func FromClaims(role string, locationID *uint) Context {
	r := Role(strings.ToLower(strings.TrimSpace(role)))
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
	default:
		r = RoleUser
	}
	return Context{Role: r, LocationID: locationID}
}

// Admin reports whether scoping is bypassed for this caller.
func (c Context) Admin() bool { return c.Role == RoleAdmin }

// Scoped reports whether the caller's reads and writes must be restricted to
// a single location. Absence of a location on a non-admin degrades to
// unrestricted; that path is only reachable for internal trusted callers.
func (c Context) Scoped() bool { return !c.Admin() && c.LocationID != nil }
