package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func (s *Server) DashboardSummary(c *gin.Context) {
	resp, err := s.dashboardSvc.Summary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) DashboardSalesByCategory(c *gin.Context) {
	resp, err := s.dashboardSvc.SalesByCategory(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) DashboardSalesByRegion(c *gin.Context) {
	resp, err := s.dashboardSvc.SalesByRegion(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) DashboardSalesByState(c *gin.Context) {
	resp, err := s.dashboardSvc.SalesByState(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) DashboardSalesByCity(c *gin.Context) {
	resp, err := s.dashboardSvc.SalesByCity(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) DashboardSalesBySegment(c *gin.Context) {
	resp, err := s.dashboardSvc.SalesBySegment(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) DashboardTopProducts(c *gin.Context) {
	resp, err := s.dashboardSvc.TopProducts(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) DashboardMonthlyTrend(c *gin.Context) {
	resp, err := s.dashboardSvc.MonthlyTrend(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) DashboardDailyTrend(c *gin.Context) {
	days, err := parseOptionalInt(c.Query("days"))
	if err != nil {
		AbortWithError(c, newValidationError("days", "invalid_days", "days must be an integer"))
		return
	}

	n := 0
	if days != nil {
		n = *days
	}
	resp, err := s.dashboardSvc.DailyTrend(c.Request.Context(), n)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) DashboardComplete(c *gin.Context) {
	resp, err := s.dashboardSvc.Complete(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}
