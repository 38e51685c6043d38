// Package query translates optional list filters into a single GORM query.
package query

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Builder accumulates optional structured filters and an optional free-text
// search, then applies them to a GORM query as one conjunction.
//
// Precedence rule: structured filters always win. When any structured filter
// is active the free-text search degrades to a substring match on the primary
// column only; appending the multi-column OR clause after equality filters
// would widen them.
type Builder struct {
	conds         []condition
	search        string
	primaryColumn string
	searchColumns []string
}

type condition struct {
	expr string
	args []interface{}
}

// New returns an empty builder
func New() *Builder {
	return &Builder{}
}

// Equal adds an exact-match filter
func (b *Builder) Equal(column string, value interface{}) *Builder {
	b.conds = append(b.conds, condition{expr: column + " = ?", args: []interface{}{value}})
	return b
}

// In adds an id-list membership filter; an empty list is ignored
func (b *Builder) In(column string, ids []uint) *Builder {
	if len(ids) == 0 {
		return b
	}
	b.conds = append(b.conds, condition{expr: column + " IN ?", args: []interface{}{ids}})
	return b
}

// Min adds a lower bound on a numeric column; nil is ignored
func (b *Builder) Min(column string, value *float64) *Builder {
	if value == nil {
		return b
	}
	b.conds = append(b.conds, condition{expr: column + " >= ?", args: []interface{}{*value}})
	return b
}

// Max adds an upper bound on a numeric column; nil is ignored
func (b *Builder) Max(column string, value *float64) *Builder {
	if value == nil {
		return b
	}
	b.conds = append(b.conds, condition{expr: column + " <= ?", args: []interface{}{*value}})
	return b
}

// Flag adds a boolean filter; nil is ignored
func (b *Builder) Flag(column string, value *bool) *Builder {
	if value == nil {
		return b
	}
	b.conds = append(b.conds, condition{expr: column + " = ?", args: []interface{}{*value}})
	return b
}

// From adds a lower date bound; nil is ignored
func (b *Builder) From(column string, value *time.Time) *Builder {
	if value == nil {
		return b
	}
	b.conds = append(b.conds, condition{expr: column + " >= ?", args: []interface{}{*value}})
	return b
}

// To adds an upper date bound; nil is ignored
func (b *Builder) To(column string, value *time.Time) *Builder {
	if value == nil {
		return b
	}
	b.conds = append(b.conds, condition{expr: column + " <= ?", args: []interface{}{*value}})
	return b
}

// Search registers a case-insensitive substring search. primaryColumn is the
// fallback used when structured filters are active; columns is the full set
// matched when no structured filters narrow the query.
func (b *Builder) Search(text, primaryColumn string, columns ...string) *Builder {
	b.search = strings.TrimSpace(text)
	b.primaryColumn = primaryColumn
	b.searchColumns = columns
	return b
}

// HasStructured reports whether any structured filter was added
func (b *Builder) HasStructured() bool {
	return len(b.conds) > 0
}

// BroadSearch reports whether the multi-column search path is in effect
func (b *Builder) BroadSearch() bool {
	return b.search != "" && !b.HasStructured()
}

// Apply attaches all accumulated conditions to the query
func (b *Builder) Apply(db *gorm.DB) *gorm.DB {
	for _, c := range b.conds {
		db = db.Where(c.expr, c.args...)
	}

	if b.search == "" || b.primaryColumn == "" {
		return db
	}

	pattern := "%" + strings.ToLower(b.search) + "%"
	if !b.BroadSearch() {
		return db.Where("LOWER("+b.primaryColumn+") LIKE ?", pattern)
	}

	columns := b.searchColumns
	if len(columns) == 0 {
		columns = []string{b.primaryColumn}
	}
	exprs := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		exprs = append(exprs, "LOWER("+col+") LIKE ?")
		args = append(args, pattern)
	}
	return db.Where("("+strings.Join(exprs, " OR ")+")", args...)
}

// Order builds an ORDER BY clause from a caller-supplied sortBy against an
// allow-list of sortable columns. Unknown columns fall back to the default.
func Order(sortBy, sortOrder string, allowed map[string]string, fallback string) string {
	column, ok := allowed[sortBy]
	if !ok {
		column = fallback
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	return column + " " + sortOrder
}
