package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"claimgen/internal/domain"
	"claimgen/internal/usecase"
)

type requirementRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Kind        string  `json:"kind"`
	Weight      float64 `json:"weight"`
}

func (req requirementRequest) toInput() usecase.RequirementInput {
	return usecase.RequirementInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    domain.RequirementCategory(req.Category),
		Kind:        domain.RequirementKind(req.Kind),
		Weight:      req.Weight,
	}
}

func (s *Server) handleCreateRequirement(c *gin.Context) {
	var req requirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	requirement, err := s.requirements.Create(c.Request.Context(), req.toInput())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRequirementResponse(requirement))
}

func (s *Server) handleListRequirements(c *gin.Context) {
	requirements, err := s.requirements.List(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	items := make([]requirementResponse, 0, len(requirements))
	for i := range requirements {
		items = append(items, toRequirementResponse(&requirements[i]))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) handleGetRequirement(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	requirement, err := s.requirements.Get(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequirementResponse(requirement))
}

func (s *Server) handleUpdateRequirement(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req requirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	requirement, err := s.requirements.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequirementResponse(requirement))
}

func (s *Server) handleDeleteRequirement(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := s.requirements.Delete(c.Request.Context(), id); err != nil {
		WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
