package pagination

import (
	"gorm.io/gorm"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// Pagination is bound from ?page=&per_page= query parameters.
type Pagination struct {
	Page    int `form:"page"`
	PerPage int `form:"per_page"`
}

// Normalize clamps page to >= 1 and per_page to [1, MaxPerPage].
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

// Apply adds LIMIT/OFFSET to stmt.
func (p Pagination) Apply(stmt *gorm.DB) *gorm.DB {
	n := p.Normalize()
	return stmt.Limit(n.PerPage).Offset(n.Offset())
}

type PageInfo struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
}

// Page is the list envelope returned by paginated endpoints.
type Page[T any] struct {
	Data []T `json:"data"`
	PageInfo
}

func BuildPageInfo(p Pagination, total int64) PageInfo {
	n := p.Normalize()
	last := int((total + int64(n.PerPage) - 1) / int64(n.PerPage))
	if last < 1 {
		last = 1
	}
	return PageInfo{
		Total:       total,
		CurrentPage: n.Page,
		LastPage:    last,
		PerPage:     n.PerPage,
	}
}

func NewPage[T any](items []T, p Pagination, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Data: items, PageInfo: BuildPageInfo(p, total)}
}
