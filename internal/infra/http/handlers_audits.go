package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"claimgen/internal/usecase"
)

func (s *Server) handleCreateAudit(c *gin.Context) {
	var req struct {
		Data map[string]any `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	audit, err := s.audits.Create(c.Request.Context(), req.Data)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAuditResponse(audit))
}

func (s *Server) handleListAudits(c *gin.Context) {
	audits, err := s.audits.List(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	items := make([]auditResponse, 0, len(audits))
	for i := range audits {
		items = append(items, toAuditResponse(&audits[i]))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) handleGetAudit(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	audit, err := s.audits.Get(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAuditResponse(audit))
}

func (s *Server) handleUpdateAuditData(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Data map[string]any `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	audit, err := s.audits.UpdateData(c.Request.Context(), id, req.Data)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAuditResponse(audit))
}

func (s *Server) handleCertifyAudit(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	audit, err := s.audits.Certify(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAuditResponse(audit))
}

func (s *Server) handleGenerate(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	force := c.Query("force") == "true"
	result, err := s.engine.Execute(c.Request.Context(), usecase.GenerateRequest{
		AuditID: id,
		Force:   force,
	})
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toGenerationResultResponse(result))
}

func (s *Server) handleListGenerations(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	generations, err := s.engine.ListGenerations(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	items := make([]generationListItemResponse, 0, len(generations))
	for i := range generations {
		items = append(items, toGenerationListItem(&generations[i]))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) handleGetGeneration(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	number, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil || number < 1 {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid generation number")
		return
	}
	result, err := s.engine.GetGeneration(c.Request.Context(), id, number)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toGenerationResultResponse(result))
}
