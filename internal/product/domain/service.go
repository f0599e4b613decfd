package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/salesdash/pkg/db/pagination"
)

type Service interface {
	List(ctx context.Context, req ListRequest) (pagination.Page[Product], error)
	Get(ctx context.Context, id string) (*DetailResponse, error)
	Categories(ctx context.Context) ([]string, error)
}

type ListRequest struct {
	Search   string
	Category string
	SortBy   string
	OrderBy  string
	pagination.Pagination
}

type DetailResponse struct {
	Product Product `json:"product"`
	Stats   Stats   `json:"stats"`
}

var (
	ErrNotFound  = errors.New("not_found")
	ErrInvalidID = errors.New("invalid_id")
)
