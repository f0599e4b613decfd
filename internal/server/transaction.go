package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	transactiondomain "github.com/smallbiznis/salesdash/internal/transaction/domain"
	"github.com/smallbiznis/salesdash/pkg/db/pagination"
)

// flexString accepts a JSON string, number or null and keeps the literal
// text, so large ids survive without float rounding.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type createTransactionRequest struct {
	ProductID       flexString `json:"product_id"`
	CustomerID      flexString `json:"customer_id"`
	RegionID        flexString `json:"region_id"`
	Sales           flexString `json:"sales"`
	TransactionDate string     `json:"transaction_date"`
}

func (s *Server) CreateTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.transactionSvc.Create(c.Request.Context(), transactiondomain.CreateRequest{
		ProductID:       strings.TrimSpace(string(req.ProductID)),
		CustomerID:      strings.TrimSpace(string(req.CustomerID)),
		RegionID:        strings.TrimSpace(string(req.RegionID)),
		Sales:           strings.TrimSpace(string(req.Sales)),
		TransactionDate: strings.TrimSpace(req.TransactionDate),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Transaction created successfully",
		"data":    resp,
	})
}

func (s *Server) ListTransactions(c *gin.Context) {
	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.transactionSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
