package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	productdomain "github.com/smallbiznis/salesdash/internal/product/domain"
	"github.com/smallbiznis/salesdash/pkg/db/pagination"
)

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		Search   string `form:"search"`
		Category string `form:"category"`
		SortBy   string `form:"sort_by"`
		OrderBy  string `form:"order_by"`
		pagination.Pagination
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.List(c.Request.Context(), productdomain.ListRequest{
		Search:     strings.TrimSpace(query.Search),
		Category:   strings.TrimSpace(query.Category),
		SortBy:     strings.TrimSpace(query.SortBy),
		OrderBy:    strings.TrimSpace(query.OrderBy),
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListProductCategories(c *gin.Context) {
	categories, err := s.productSvc.Categories(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": categories})
}

func (s *Server) GetProductByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.productSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, productdomain.ErrNotFound) || errors.Is(err, productdomain.ErrInvalidID) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    resp.Product,
		"stats":   resp.Stats,
	})
}
