package domain

import (
	"context"

	"github.com/smallbiznis/salesdash/pkg/db/pagination"
)

type Service interface {
	List(ctx context.Context, page pagination.Pagination) (pagination.Page[Detail], error)
	Create(ctx context.Context, req CreateRequest) (*Detail, error)
}

// CreateRequest carries raw client input. Ids are decimal strings and
// Sales is a decimal literal; the service parses and validates both.
type CreateRequest struct {
	ProductID       string `json:"product_id" validate:"required,number"`
	CustomerID      string `json:"customer_id" validate:"omitempty,number"`
	RegionID        string `json:"region_id" validate:"omitempty,number"`
	Sales           string `json:"sales" validate:"required,numeric"`
	TransactionDate string `json:"transaction_date"`
}

// CreatedHook observes transactions written through the service.
type CreatedHook interface {
	TransactionCreated(ctx context.Context, tx Transaction)
}
