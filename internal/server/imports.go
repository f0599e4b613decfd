package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	defaultImportRunLimit = 20
	maxImportRunLimit     = 100
)

func (s *Server) ListImportRuns(c *gin.Context) {
	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil || (limit != nil && (*limit < 1 || *limit > maxImportRunLimit)) {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be between 1 and 100"))
		return
	}

	n := defaultImportRunLimit
	if limit != nil {
		n = *limit
	}
	runs, err := s.runs.Recent(c.Request.Context(), n)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, runs)
}

func (s *Server) GetImportRun(c *gin.Context) {
	run, err := s.runs.Find(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if run == nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	respondData(c, run)
}
