package tenant

import (
	"fmt"

	"gorm.io/gorm"
)

// ScopeFilter restricts a query to rows whose resolved location equals the
// caller's. A filter built for an admin, or for a caller with no location, is
// a no-op on both rendering paths ("no restriction" means "caller is trusted"
// and is never reachable for unauthenticated requests).
type ScopeFilter struct {
	ctx  Context
	rule OwnershipRule
}

// Scope builds the filter for one caller and one scoped entity rule. Pure
// function of its inputs.
func Scope(ctx Context, rule OwnershipRule) ScopeFilter {
	return ScopeFilter{ctx: ctx, rule: rule}
}

// Restricted reports whether the filter constrains anything at all.
func (s ScopeFilter) Restricted() bool { return s.ctx.Scoped() }

// Apply renders the filter onto a gorm query builder: an inner join to the
// owning table for one-hop rules, then an equality constraint on the location
// column.
func (s ScopeFilter) Apply(db *gorm.DB) *gorm.DB {
	if !s.Restricted() {
		return db
	}
	r := s.rule
	if join := r.JoinClause(""); join != "" {
		db = db.Joins(join)
	}
	return db.Where(fmt.Sprintf("%s = ?", r.LocationColumn("")), *s.ctx.LocationID)
}

// Raw renders the same row restriction for hand-written SQL: a join fragment
// (empty for direct rules), a where fragment, and its bind parameters. alias
// is the alias of the scoped table in the caller's query; empty means the
// table name itself. Raw and Apply select the same rows for any Context.
func (s ScopeFilter) Raw(alias string) (join string, where string, args []any) {
	if !s.Restricted() {
		return "", "", nil
	}
	r := s.rule
	return r.JoinClause(alias), fmt.Sprintf("%s = ?", r.LocationColumn(alias)), []any{*s.ctx.LocationID}
}
