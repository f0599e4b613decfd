package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListSnapshots(c *gin.Context) {
	resp, err := s.dashboardSvc.Snapshots(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) GetSnapshot(c *gin.Context) {
	resp, err := s.dashboardSvc.Snapshot(c.Request.Context(), strings.TrimSpace(c.Param("key")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}
