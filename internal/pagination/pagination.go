// Package pagination provides the deterministic page/sort contract shared by
// all list endpoints.
package pagination

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 200
)

// Page is a resolved, bounded pagination request.
type Page struct {
	Page     int
	PageSize int
	Offset   int
	Limit    int
	SortBy   string // empty when the allow-list is empty
	SortDir  string // "ASC" or "DESC"
}

// Paginate normalizes raw query values into a Page. page clamps to >=1,
// pageSize to [1,200] (default 25). sortBy must be in allowed; otherwise the
// first allowed column is used. sortDir is matched case-insensitively and
// falls back to DESC.
func Paginate(rawPage, rawPageSize, rawSortBy, rawSortDir string, allowed []string) Page {
	page, _ := strconv.Atoi(strings.TrimSpace(rawPage))
	if page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(strings.TrimSpace(rawPageSize))
	if err != nil || size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	sortBy := ""
	if len(allowed) > 0 {
		sortBy = allowed[0]
		want := strings.TrimSpace(rawSortBy)
		for _, col := range allowed {
			if strings.EqualFold(col, want) {
				sortBy = col
				break
			}
		}
	}
	dir := "DESC"
	if strings.EqualFold(strings.TrimSpace(rawSortDir), "ASC") {
		dir = "ASC"
	}

	return Page{
		Page:     page,
		PageSize: size,
		Offset:   (page - 1) * size,
		Limit:    size,
		SortBy:   sortBy,
		SortDir:  dir,
	}
}

// Order renders the ORDER BY clause with a primary-key tie-break so identical
// sort values cannot reorder across executions. Empty when no sort column is
// available. A table-qualified pk also qualifies the sort column; scoped
// queries join a second table and an unqualified column is ambiguous there.
func (p Page) Order(pk string) string {
	if p.SortBy == "" {
		return ""
	}
	sortBy := p.SortBy
	if i := strings.IndexByte(pk, '.'); i >= 0 && !strings.Contains(sortBy, ".") {
		sortBy = pk[:i+1] + sortBy
	}
	if pk == "" || strings.EqualFold(pk, sortBy) {
		return fmt.Sprintf("%s %s", sortBy, p.SortDir)
	}
	return fmt.Sprintf("%s %s, %s ASC", sortBy, p.SortDir, pk)
}

// Apply attaches order/limit/offset to a gorm query.
func (p Page) Apply(db *gorm.DB, pk string) *gorm.DB {
	if ord := p.Order(pk); ord != "" {
		db = db.Order(ord)
	}
	return db.Limit(p.Limit).Offset(p.Offset)
}
