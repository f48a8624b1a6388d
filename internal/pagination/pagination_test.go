package pagination

import "testing"

func TestPaginate_Defaults(t *testing.T) {
	p := Paginate("", "", "", "", []string{"created_at", "points"})
	if p.Page != 1 || p.PageSize != 25 || p.Offset != 0 || p.Limit != 25 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if p.SortBy != "created_at" || p.SortDir != "DESC" {
		t.Fatalf("expected first allowed column DESC, got %s %s", p.SortBy, p.SortDir)
	}
}

func TestPaginate_ClampsAndFallbacks(t *testing.T) {
	p := Paginate("0", "9999", "unknown", "sideways", []string{"createdAt"})
	if p.Page != 1 {
		t.Fatalf("page not clamped: %d", p.Page)
	}
	if p.Limit != 200 || p.Offset != 0 {
		t.Fatalf("size not clamped: limit=%d offset=%d", p.Limit, p.Offset)
	}
	if p.SortBy != "createdAt" || p.SortDir != "DESC" {
		t.Fatalf("sort fallback wrong: %s %s", p.SortBy, p.SortDir)
	}
}

func TestPaginate_OffsetAndCaseInsensitiveSort(t *testing.T) {
	p := Paginate("3", "10", "POINTS", "asc", []string{"created_at", "points"})
	if p.Offset != 20 || p.Limit != 10 {
		t.Fatalf("offset/limit wrong: %+v", p)
	}
	if p.SortBy != "points" || p.SortDir != "ASC" {
		t.Fatalf("sort wrong: %s %s", p.SortBy, p.SortDir)
	}
}

func TestPaginate_EmptyAllowList(t *testing.T) {
	p := Paginate("1", "5", "anything", "asc", nil)
	if p.SortBy != "" {
		t.Fatalf("expected no sort column, got %q", p.SortBy)
	}
	if p.Order("id") != "" {
		t.Fatalf("expected empty order clause")
	}
}

func TestOrder_TieBreakByPrimaryKey(t *testing.T) {
	p := Paginate("1", "5", "points", "desc", []string{"points"})
	if got := p.Order("id"); got != "points DESC, id ASC" {
		t.Fatalf("order clause = %q", got)
	}
	// pk equal to the sort column must not be appended twice
	if got := p.Order("points"); got != "points DESC" {
		t.Fatalf("order clause = %q", got)
	}
}

func TestOrder_QualifiedPKQualifiesSortColumn(t *testing.T) {
	// joined scoped queries have created_at in both tables; the sort column
	// must carry the tie-break's table to stay unambiguous
	p := Paginate("1", "5", "created_at", "asc", []string{"created_at", "name"})
	if got := p.Order("games_variants.id"); got != "games_variants.created_at ASC, games_variants.id ASC" {
		t.Fatalf("order clause = %q", got)
	}
	// an already-qualified sort column is left alone
	p.SortBy = "games.created_at"
	if got := p.Order("games_variants.id"); got != "games.created_at ASC, games_variants.id ASC" {
		t.Fatalf("order clause = %q", got)
	}
}
