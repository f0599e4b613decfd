package service

import (
	"context"

	"github.com/smallbiznis/salesdash/internal/dashboard/domain"
	transactiondomain "github.com/smallbiznis/salesdash/internal/transaction/domain"
)

type invalidateOnCreate struct {
	svc domain.Service
}

// NewInvalidationHook drops cached aggregates whenever a transaction is
// written through the API.
func NewInvalidationHook(svc domain.Service) transactiondomain.CreatedHook {
	return &invalidateOnCreate{svc: svc}
}

func (h *invalidateOnCreate) TransactionCreated(context.Context, transactiondomain.Transaction) {
	h.svc.Invalidate()
}
