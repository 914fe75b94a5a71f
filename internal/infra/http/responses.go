package http

import (
	"encoding/json"
	"time"

	"claimgen/internal/domain"
)

type requirementLinkResponse struct {
	RequirementID string `json:"requirementId"`
	SortOrder     int    `json:"sortOrder"`
	Required      bool   `json:"required"`
}

type ruleResponse struct {
	ID               string                    `json:"id"`
	Code             string                    `json:"code"`
	Version          int                       `json:"version"`
	Name             string                    `json:"name"`
	Description      string                    `json:"description,omitempty"`
	State            string                    `json:"state"`
	Predicate        json.RawMessage           `json:"predicate"`
	Requirements     []requirementLinkResponse `json:"requirements"`
	PublishedAt      *string                   `json:"publishedAt,omitempty"`
	DisabledAt       *string                   `json:"disabledAt,omitempty"`
	SupersedesRuleID *string                   `json:"supersedesRuleId,omitempty"`
	CreatedAt        string                    `json:"createdAt"`
	UpdatedAt        *string                   `json:"updatedAt,omitempty"`
}

func toRuleResponse(rule *domain.Rule) ruleResponse {
	links := make([]requirementLinkResponse, 0, len(rule.Requirements))
	for _, link := range rule.Requirements {
		links = append(links, requirementLinkResponse{
			RequirementID: link.RequirementID.String(),
			SortOrder:     link.SortOrder,
			Required:      link.Required,
		})
	}
	resp := ruleResponse{
		ID:           rule.ID.String(),
		Code:         rule.Code,
		Version:      rule.Version,
		Name:         rule.Name,
		Description:  rule.Description,
		State:        string(rule.State),
		Predicate:    rule.Predicate,
		Requirements: links,
		PublishedAt:  formatTimePtr(rule.PublishedAt),
		DisabledAt:   formatTimePtr(rule.DisabledAt),
		CreatedAt:    rule.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    formatTimePtr(rule.UpdatedAt),
	}
	if rule.SupersedesRuleID != nil {
		id := rule.SupersedesRuleID.String()
		resp.SupersedesRuleID = &id
	}
	return resp
}

type requirementResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	Kind        string  `json:"kind"`
	Weight      float64 `json:"weight"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   *string `json:"updatedAt,omitempty"`
}

func toRequirementResponse(requirement *domain.Requirement) requirementResponse {
	return requirementResponse{
		ID:          requirement.ID.String(),
		Name:        requirement.Name,
		Description: requirement.Description,
		Category:    string(requirement.Category),
		Kind:        string(requirement.Kind),
		Weight:      requirement.Weight,
		CreatedAt:   requirement.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   formatTimePtr(requirement.UpdatedAt),
	}
}

type auditResponse struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	Data      map[string]any `json:"data"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt *string        `json:"updatedAt,omitempty"`
}

func toAuditResponse(audit *domain.Audit) auditResponse {
	return auditResponse{
		ID:        audit.ID.String(),
		Status:    string(audit.Status),
		Data:      audit.Data,
		CreatedAt: audit.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: formatTimePtr(audit.UpdatedAt),
	}
}

type claimSourceResponse struct {
	RuleID      string `json:"ruleId"`
	RuleCode    string `json:"ruleCode"`
	RuleName    string `json:"ruleName"`
	RuleVersion int    `json:"ruleVersion"`
}

type requiredClaimResponse struct {
	RequirementID string                `json:"requirementId"`
	Name          string                `json:"name"`
	Description   string                `json:"description,omitempty"`
	Category      string                `json:"category"`
	Kind          string                `json:"kind"`
	Weight        float64               `json:"weight"`
	Status        string                `json:"status"`
	Sources       []claimSourceResponse `json:"sources"`
}

type ruleMatchResponse struct {
	RuleID      string `json:"ruleId"`
	RuleCode    string `json:"ruleCode"`
	RuleVersion int    `json:"ruleVersion"`
	Matched     bool   `json:"matched"`
	Error       string `json:"error,omitempty"`
}

type generationSummaryResponse struct {
	RulesEvaluated int `json:"rulesEvaluated"`
	RulesMatched   int `json:"rulesMatched"`
	RulesFailed    int `json:"rulesFailed"`
	ClaimsRequired int `json:"claimsRequired"`
}

// generationResultResponse is the downstream view. The predicate tree never
// appears here; rules surface only as code, name and version.
type generationResultResponse struct {
	GenerationID     string                    `json:"generationId"`
	AuditID          string                    `json:"auditId"`
	GenerationNumber int64                     `json:"generationNumber"`
	Status           string                    `json:"status"`
	EngineVersion    string                    `json:"engineVersion"`
	GeneratedAt      string                    `json:"generatedAt"`
	RequiredClaims   []requiredClaimResponse   `json:"requiredClaims"`
	RuleMatches      []ruleMatchResponse       `json:"ruleMatches"`
	Summary          generationSummaryResponse `json:"summary"`
}

func toGenerationResultResponse(result *domain.GenerationResult) generationResultResponse {
	claims := make([]requiredClaimResponse, 0, len(result.RequiredClaims))
	for _, claim := range result.RequiredClaims {
		sources := make([]claimSourceResponse, 0, len(claim.Sources))
		for _, source := range claim.Sources {
			sources = append(sources, claimSourceResponse{
				RuleID:      source.RuleID.String(),
				RuleCode:    source.RuleCode,
				RuleName:    source.RuleName,
				RuleVersion: source.RuleVersion,
			})
		}
		claims = append(claims, requiredClaimResponse{
			RequirementID: claim.RequirementID.String(),
			Name:          claim.Name,
			Description:   claim.Description,
			Category:      string(claim.Category),
			Kind:          string(claim.Kind),
			Weight:        claim.Weight,
			Status:        string(claim.Status),
			Sources:       sources,
		})
	}
	matches := make([]ruleMatchResponse, 0, len(result.RuleMatches))
	for _, match := range result.RuleMatches {
		matches = append(matches, ruleMatchResponse{
			RuleID:      match.RuleID.String(),
			RuleCode:    match.RuleCode,
			RuleVersion: match.RuleVersion,
			Matched:     match.Matched,
			Error:       match.Error,
		})
	}
	return generationResultResponse{
		GenerationID:     result.Generation.ID.String(),
		AuditID:          result.Generation.AuditID.String(),
		GenerationNumber: result.Generation.Number,
		Status:           string(result.Generation.Status),
		EngineVersion:    result.Generation.EngineVersion,
		GeneratedAt:      result.Generation.GeneratedAt.UTC().Format(time.RFC3339),
		RequiredClaims:   claims,
		RuleMatches:      matches,
		Summary: generationSummaryResponse{
			RulesEvaluated: result.Summary.RulesEvaluated,
			RulesMatched:   result.Summary.RulesMatched,
			RulesFailed:    result.Summary.RulesFailed,
			ClaimsRequired: result.Summary.ClaimsRequired,
		},
	}
}

type generationListItemResponse struct {
	GenerationID     string `json:"generationId"`
	GenerationNumber int64  `json:"generationNumber"`
	Status           string `json:"status"`
	EngineVersion    string `json:"engineVersion"`
	SnapshotHash     string `json:"snapshotHash"`
	GeneratedAt      string `json:"generatedAt"`
}

func toGenerationListItem(generation *domain.Generation) generationListItemResponse {
	return generationListItemResponse{
		GenerationID:     generation.ID.String(),
		GenerationNumber: generation.Number,
		Status:           string(generation.Status),
		EngineVersion:    generation.EngineVersion,
		SnapshotHash:     generation.SnapshotHash,
		GeneratedAt:      generation.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}
