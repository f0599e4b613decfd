package option

import (
	"strings"

	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement.
type QueryOption interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type QueryOptionFunc func(stmt *gorm.DB) *gorm.DB

func (f QueryOptionFunc) Apply(stmt *gorm.DB) *gorm.DB {
	return f(stmt)
}

type Sort struct {
	Column string
	Desc   bool
}

// WithQuerySortBy resolves user-supplied sort_by/order_by against an allow
// list. Unknown columns yield a zero Sort, which WithSortBy ignores.
func WithQuerySortBy(sortBy, orderBy string, allowed map[string]bool) Sort {
	column := strings.ToLower(strings.TrimSpace(sortBy))
	if column == "" || !allowed[column] {
		return Sort{}
	}
	return Sort{
		Column: column,
		Desc:   strings.EqualFold(strings.TrimSpace(orderBy), "desc"),
	}
}

func WithSortBy(sort Sort, fallback ...Sort) QueryOption {
	return QueryOptionFunc(func(stmt *gorm.DB) *gorm.DB {
		chosen := sort
		if chosen.Column == "" && len(fallback) > 0 {
			chosen = fallback[0]
		}
		if chosen.Column == "" {
			return stmt
		}
		dir := " ASC"
		if chosen.Desc {
			dir = " DESC"
		}
		return stmt.Order(chosen.Column + dir)
	})
}

func Apply(stmt *gorm.DB, opts ...QueryOption) *gorm.DB {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		stmt = opt.Apply(stmt)
	}
	return stmt
}
