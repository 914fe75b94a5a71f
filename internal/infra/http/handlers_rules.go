package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"claimgen/internal/domain"
	"claimgen/internal/predicate"
	"claimgen/internal/usecase"
)

type requirementLinkRequest struct {
	RequirementID string `json:"requirementId"`
	SortOrder     int    `json:"sortOrder"`
	Required      *bool  `json:"required"`
}

func parseLinks(raw []requirementLinkRequest) ([]domain.RequirementLink, bool) {
	links := make([]domain.RequirementLink, 0, len(raw))
	for _, link := range raw {
		id, err := uuid.Parse(link.RequirementID)
		if err != nil {
			return nil, false
		}
		required := true
		if link.Required != nil {
			required = *link.Required
		}
		links = append(links, domain.RequirementLink{
			RequirementID: id,
			SortOrder:     link.SortOrder,
			Required:      required,
		})
	}
	return links, true
}

func (s *Server) handleCreateRule(c *gin.Context) {
	var req struct {
		Code         string                   `json:"code"`
		Name         string                   `json:"name"`
		Description  string                   `json:"description"`
		Predicate    json.RawMessage          `json:"predicate"`
		Requirements []requirementLinkRequest `json:"requirements"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	links, ok := parseLinks(req.Requirements)
	if !ok {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid requirement id")
		return
	}
	rule, err := s.rules.CreateDraft(c.Request.Context(), usecase.CreateRuleRequest{
		Code:         req.Code,
		Name:         req.Name,
		Description:  req.Description,
		Predicate:    req.Predicate,
		Requirements: links,
	})
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRuleResponse(rule))
}

func (s *Server) handleListRules(c *gin.Context) {
	filter := usecase.RuleFilter{
		Code:   c.Query("code"),
		State:  domain.RuleState(c.Query("state")),
		Search: c.Query("search"),
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && offset > 0 {
		filter.Offset = offset
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.Limit = limit
	}
	rules, total, err := s.rules.List(c.Request.Context(), filter)
	if err != nil {
		WriteError(c, err)
		return
	}
	items := make([]ruleResponse, 0, len(rules))
	for i := range rules {
		items = append(items, toRuleResponse(&rules[i]))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (s *Server) handleGetRule(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	rule, err := s.rules.Get(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRuleResponse(rule))
}

func (s *Server) handleUpdateRule(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name         *string                  `json:"name"`
		Description  *string                  `json:"description"`
		Predicate    json.RawMessage          `json:"predicate"`
		Requirements []requirementLinkRequest `json:"requirements"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	update := usecase.UpdateRuleRequest{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Predicate:   req.Predicate,
	}
	if req.Requirements != nil {
		links, ok := parseLinks(req.Requirements)
		if !ok {
			WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid requirement id")
			return
		}
		update.Requirements = links
	}
	rule, err := s.rules.UpdateDraft(c.Request.Context(), update)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRuleResponse(rule))
}

func (s *Server) handleDeleteRule(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := s.rules.Delete(c.Request.Context(), id); err != nil {
		WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handlePublishRule(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	rule, err := s.rules.Publish(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRuleResponse(rule))
}

func (s *Server) handleDisableRule(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	rule, err := s.rules.Disable(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRuleResponse(rule))
}

func (s *Server) handleCloneRule(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	draft, err := s.rules.Clone(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRuleResponse(draft))
}

// handlePreviewPredicate validates a predicate and optionally dry-runs it
// against sample data. The response is always 200 with a structured result.
func (s *Server) handlePreviewPredicate(c *gin.Context) {
	var req struct {
		Predicate  json.RawMessage `json:"predicate"`
		SampleData map[string]any  `json:"sampleData"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	result := s.preview.Execute(c.Request.Context(), usecase.PreviewRequest{
		Predicate:  req.Predicate,
		SampleData: req.SampleData,
	})
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleFieldCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, predicate.FieldCatalog())
}
