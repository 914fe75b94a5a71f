package db

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"claimgen/internal/domain"
)

func ruleToModel(rule *domain.Rule) RuleModel {
	model := RuleModel{
		ID:          rule.ID.String(),
		Code:        rule.Code,
		Version:     rule.Version,
		Name:        rule.Name,
		Description: rule.Description,
		State:       string(rule.State),
		Predicate:   []byte(rule.Predicate),
		PublishedAt: rule.PublishedAt,
		DisabledAt:  rule.DisabledAt,
		CreatedAt:   rule.CreatedAt,
		UpdatedAt:   rule.UpdatedAt,
	}
	if rule.SupersedesRuleID != nil {
		id := rule.SupersedesRuleID.String()
		model.SupersedesRuleID = &id
	}
	return model
}

func ruleFromModel(model *RuleModel, links []RuleRequirementModel) (*domain.Rule, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", model.ID, err)
	}
	rule := &domain.Rule{
		ID:          id,
		Code:        model.Code,
		Version:     model.Version,
		Name:        model.Name,
		Description: model.Description,
		State:       domain.RuleState(model.State),
		Predicate:   json.RawMessage(model.Predicate),
		PublishedAt: model.PublishedAt,
		DisabledAt:  model.DisabledAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	if model.SupersedesRuleID != nil {
		supersedes, err := uuid.Parse(*model.SupersedesRuleID)
		if err != nil {
			return nil, fmt.Errorf("rule %s supersedes: %w", model.ID, err)
		}
		rule.SupersedesRuleID = &supersedes
	}
	rule.Requirements = make([]domain.RequirementLink, 0, len(links))
	for _, link := range links {
		requirementID, err := uuid.Parse(link.RequirementID)
		if err != nil {
			return nil, fmt.Errorf("rule %s requirement link: %w", model.ID, err)
		}
		rule.Requirements = append(rule.Requirements, domain.RequirementLink{
			RequirementID: requirementID,
			SortOrder:     link.SortOrder,
			Required:      link.Required,
		})
	}
	return rule, nil
}

func linkModels(rule *domain.Rule) []RuleRequirementModel {
	models := make([]RuleRequirementModel, 0, len(rule.Requirements))
	for _, link := range rule.Requirements {
		models = append(models, RuleRequirementModel{
			RuleID:        rule.ID.String(),
			RequirementID: link.RequirementID.String(),
			SortOrder:     link.SortOrder,
			Required:      link.Required,
		})
	}
	return models
}

func requirementToModel(requirement *domain.Requirement) RequirementModel {
	return RequirementModel{
		ID:          requirement.ID.String(),
		Name:        requirement.Name,
		Description: requirement.Description,
		Category:    string(requirement.Category),
		Kind:        string(requirement.Kind),
		Weight:      requirement.Weight,
		CreatedAt:   requirement.CreatedAt,
		UpdatedAt:   requirement.UpdatedAt,
	}
}

func requirementFromModel(model *RequirementModel) (*domain.Requirement, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, fmt.Errorf("requirement %s: %w", model.ID, err)
	}
	return &domain.Requirement{
		ID:          id,
		Name:        model.Name,
		Description: model.Description,
		Category:    domain.RequirementCategory(model.Category),
		Kind:        domain.RequirementKind(model.Kind),
		Weight:      model.Weight,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}, nil
}

func auditFromModel(model *AuditModel) (*domain.Audit, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, fmt.Errorf("audit %s: %w", model.ID, err)
	}
	data := map[string]any{}
	if len(model.Data) > 0 {
		if err := json.Unmarshal(model.Data, &data); err != nil {
			return nil, fmt.Errorf("audit %s data: %w", model.ID, err)
		}
	}
	return &domain.Audit{
		ID:        id,
		Status:    domain.AuditStatus(model.Status),
		Data:      data,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

func generationFromModel(model *GenerationModel) (*domain.Generation, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, fmt.Errorf("generation %s: %w", model.ID, err)
	}
	auditID, err := uuid.Parse(model.AuditID)
	if err != nil {
		return nil, fmt.Errorf("generation %s audit: %w", model.ID, err)
	}
	snapshot := map[string]any{}
	if len(model.Snapshot) > 0 {
		if err := json.Unmarshal(model.Snapshot, &snapshot); err != nil {
			return nil, fmt.Errorf("generation %s snapshot: %w", model.ID, err)
		}
	}
	return &domain.Generation{
		ID:            id,
		AuditID:       auditID,
		Number:        model.Number,
		Status:        domain.GenerationStatus(model.Status),
		EngineVersion: model.EngineVersion,
		Snapshot:      snapshot,
		SnapshotHash:  model.SnapshotHash,
		GeneratedAt:   model.GeneratedAt,
	}, nil
}
