package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/salesdash/internal/report"
)

func (s *Server) DashboardReport(c *gin.Context) {
	doc, err := s.reports.Render(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="dashboard.pdf"`)
	c.Data(http.StatusOK, report.ContentType, doc)
}
