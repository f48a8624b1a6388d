package tenant

import "fmt"

// OwnershipRule describes how rows of a scoped table resolve their owning
// location: either a direct column on the table, or exactly one foreign-key
// hop to a table that carries the column.
type OwnershipRule struct {
	Table  string // scoped table
	Column string // location column on Table (direct) or on JoinTable (one hop)

	JoinTable string // empty for direct rules
	JoinFK    string // column on Table referencing JoinTable's primary key
	JoinPK    string // primary key on JoinTable, defaults to "id"
}

// Direct builds a rule for a table owning its location column.
func Direct(table, column string) OwnershipRule {
	return OwnershipRule{Table: table, Column: column}
}

// OneHop builds a rule for a table reaching its location through a single
// foreign relation.
func OneHop(table, joinTable, joinFK, column string) OwnershipRule {
	return OwnershipRule{Table: table, Column: column, JoinTable: joinTable, JoinFK: joinFK, JoinPK: "id"}
}

func (r OwnershipRule) direct() bool { return r.JoinTable == "" }

func (r OwnershipRule) joinPK() string {
	if r.JoinPK == "" {
		return "id"
	}
	return r.JoinPK
}

// JoinClause renders the inner join needed to reach the owning table from the
// scoped table (aliased as alias; empty alias means the table name). Empty
// for direct rules.
func (r OwnershipRule) JoinClause(alias string) string {
	if r.direct() {
		return ""
	}
	if alias == "" {
		alias = r.Table
	}
	return fmt.Sprintf("INNER JOIN %s ON %s.%s = %s.%s", r.JoinTable, r.JoinTable, r.joinPK(), alias, r.JoinFK)
}

// LocationColumn renders the fully qualified column holding the owning
// location once JoinClause (if any) is in place.
func (r OwnershipRule) LocationColumn(alias string) string {
	if r.direct() {
		if alias == "" {
			alias = r.Table
		}
		return fmt.Sprintf("%s.%s", alias, r.Column)
	}
	return fmt.Sprintf("%s.%s", r.JoinTable, r.Column)
}

// Rules is the startup-resolved registry mapping a scoped-entity kind to its
// ownership-resolution rule. Registration happens once during wiring; lookups
// never consult per-request strings against the schema.
type Rules struct {
	m map[string]OwnershipRule
}

func NewRules() *Rules { return &Rules{m: map[string]OwnershipRule{}} }

func (rs *Rules) Register(model string, rule OwnershipRule) *Rules {
	rs.m[model] = rule
	return rs
}

func (rs *Rules) Lookup(model string) (OwnershipRule, error) {
	r, ok := rs.m[model]
	if !ok {
		return OwnershipRule{}, fmt.Errorf("no ownership rule registered for model %q", model)
	}
	return r, nil
}
