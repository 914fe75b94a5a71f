package db

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"claimgen/internal/domain"
	"claimgen/internal/usecase"
)

type GenerationRepository struct {
	db *gorm.DB
}

func NewGenerationRepository(gormDB *gorm.DB) *GenerationRepository {
	return &GenerationRepository{db: gormDB}
}

func (r *GenerationRepository) Latest(ctx context.Context, auditID uuid.UUID) (*domain.Generation, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model GenerationModel
	err := r.db.WithContext(ctx).
		Where("audit_id = ?", auditID.String()).
		Order("number DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGenerationNotFound
		}
		return nil, err
	}
	return generationFromModel(&model)
}

func (r *GenerationRepository) ListByAudit(ctx context.Context, auditID uuid.UUID) ([]domain.Generation, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []GenerationModel
	err := r.db.WithContext(ctx).
		Where("audit_id = ?", auditID.String()).
		Order("number DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	generations := make([]domain.Generation, 0, len(models))
	for i := range models {
		generation, err := generationFromModel(&models[i])
		if err != nil {
			return nil, err
		}
		generations = append(generations, *generation)
	}
	return generations, nil
}

// CreateResult writes the generation row and all its children in one
// transaction. The (audit_id, number) unique index arbitrates concurrent
// writers: the loser gets domain.ErrGenerationConflict and nothing persisted.
func (r *GenerationRepository) CreateResult(ctx context.Context, result *domain.GenerationResult) error {
	if r.db == nil {
		return errDBUnavailable
	}
	snapshot, err := json.Marshal(result.Generation.Snapshot)
	if err != nil {
		return err
	}
	generation := GenerationModel{
		ID:            result.Generation.ID.String(),
		AuditID:       result.Generation.AuditID.String(),
		Number:        result.Generation.Number,
		Status:        string(result.Generation.Status),
		EngineVersion: result.Generation.EngineVersion,
		Snapshot:      snapshot,
		SnapshotHash:  result.Generation.SnapshotHash,
		GeneratedAt:   result.Generation.GeneratedAt,
	}

	matches := make([]RuleMatchModel, 0, len(result.RuleMatches))
	for _, match := range result.RuleMatches {
		matches = append(matches, RuleMatchModel{
			GenerationID: generation.ID,
			RuleID:       match.RuleID.String(),
			RuleCode:     match.RuleCode,
			RuleVersion:  match.RuleVersion,
			Matched:      match.Matched,
			Error:        match.Error,
			EvaluatedAt:  match.EvaluatedAt,
		})
	}

	var claims []RequiredClaimModel
	var sources []ClaimSourceModel
	for _, claim := range result.RequiredClaims {
		claimID := uuid.New().String()
		claims = append(claims, RequiredClaimModel{
			ID:            claimID,
			GenerationID:  generation.ID,
			RequirementID: claim.RequirementID.String(),
			Status:        string(claim.Status),
			CreatedAt:     result.Generation.GeneratedAt,
		})
		for _, source := range claim.Sources {
			sources = append(sources, ClaimSourceModel{
				RequiredClaimID: claimID,
				RuleID:          source.RuleID.String(),
				RuleCode:        source.RuleCode,
				RuleName:        source.RuleName,
				RuleVersion:     source.RuleVersion,
			})
		}
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&generation).Error; err != nil {
			return err
		}
		if len(matches) > 0 {
			if err := tx.Create(&matches).Error; err != nil {
				return err
			}
		}
		if len(claims) > 0 {
			if err := tx.Create(&claims).Error; err != nil {
				return err
			}
		}
		if len(sources) > 0 {
			if err := tx.Create(&sources).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrGenerationConflict
		}
		return err
	}
	return nil
}

// GetResult reassembles the stored generation into the downstream view:
// matches, claims joined with their requirement definitions, sources, and the
// summary counters.
func (r *GenerationRepository) GetResult(ctx context.Context, auditID uuid.UUID, number int64) (*domain.GenerationResult, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model GenerationModel
	err := r.db.WithContext(ctx).
		Where("audit_id = ? AND number = ?", auditID.String(), number).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGenerationNotFound
		}
		return nil, err
	}
	generation, err := generationFromModel(&model)
	if err != nil {
		return nil, err
	}

	var matchModels []RuleMatchModel
	err = r.db.WithContext(ctx).
		Where("generation_id = ?", model.ID).
		Order("rule_code ASC, rule_version ASC").
		Find(&matchModels).Error
	if err != nil {
		return nil, err
	}
	matches := make([]domain.RuleMatch, 0, len(matchModels))
	for _, matchModel := range matchModels {
		ruleID, err := uuid.Parse(matchModel.RuleID)
		if err != nil {
			return nil, err
		}
		matches = append(matches, domain.RuleMatch{
			GenerationID: generation.ID,
			RuleID:       ruleID,
			RuleCode:     matchModel.RuleCode,
			RuleVersion:  matchModel.RuleVersion,
			Matched:      matchModel.Matched,
			Error:        matchModel.Error,
			EvaluatedAt:  matchModel.EvaluatedAt,
		})
	}

	claims, err := r.resultClaims(ctx, model.ID)
	if err != nil {
		return nil, err
	}

	summary := domain.GenerationSummary{
		RulesEvaluated: len(matches),
		ClaimsRequired: len(claims),
	}
	for _, match := range matches {
		if match.Matched {
			summary.RulesMatched++
		}
		if match.Error != "" {
			summary.RulesFailed++
		}
	}

	return &domain.GenerationResult{
		Generation:     *generation,
		RuleMatches:    matches,
		RequiredClaims: claims,
		Summary:        summary,
	}, nil
}

func (r *GenerationRepository) resultClaims(ctx context.Context, generationID string) ([]domain.ResultClaim, error) {
	var claimModels []RequiredClaimModel
	err := r.db.WithContext(ctx).
		Where("generation_id = ?", generationID).
		Find(&claimModels).Error
	if err != nil {
		return nil, err
	}
	if len(claimModels) == 0 {
		return []domain.ResultClaim{}, nil
	}

	claimIDs := make([]string, len(claimModels))
	requirementIDs := make([]string, len(claimModels))
	for i, claimModel := range claimModels {
		claimIDs[i] = claimModel.ID
		requirementIDs[i] = claimModel.RequirementID
	}

	var requirementModels []RequirementModel
	if err := r.db.WithContext(ctx).Where("id IN ?", requirementIDs).Find(&requirementModels).Error; err != nil {
		return nil, err
	}
	requirements := make(map[string]*RequirementModel, len(requirementModels))
	for i := range requirementModels {
		requirements[requirementModels[i].ID] = &requirementModels[i]
	}

	var sourceModels []ClaimSourceModel
	err = r.db.WithContext(ctx).
		Where("required_claim_id IN ?", claimIDs).
		Order("rule_code ASC, rule_version ASC").
		Find(&sourceModels).Error
	if err != nil {
		return nil, err
	}
	sourcesByClaim := make(map[string][]domain.ClaimSource)
	for _, sourceModel := range sourceModels {
		claimID, err := uuid.Parse(sourceModel.RequiredClaimID)
		if err != nil {
			return nil, err
		}
		ruleID, err := uuid.Parse(sourceModel.RuleID)
		if err != nil {
			return nil, err
		}
		sourcesByClaim[sourceModel.RequiredClaimID] = append(sourcesByClaim[sourceModel.RequiredClaimID], domain.ClaimSource{
			RequiredClaimID: claimID,
			RuleID:          ruleID,
			RuleCode:        sourceModel.RuleCode,
			RuleName:        sourceModel.RuleName,
			RuleVersion:     sourceModel.RuleVersion,
		})
	}

	claims := make([]domain.ResultClaim, 0, len(claimModels))
	for _, claimModel := range claimModels {
		requirementModel, ok := requirements[claimModel.RequirementID]
		if !ok {
			return nil, domain.ErrRequirementNotFound
		}
		requirement, err := requirementFromModel(requirementModel)
		if err != nil {
			return nil, err
		}
		claims = append(claims, domain.ResultClaim{
			RequirementID: requirement.ID,
			Name:          requirement.Name,
			Description:   requirement.Description,
			Category:      requirement.Category,
			Kind:          requirement.Kind,
			Weight:        requirement.Weight,
			Status:        domain.ClaimStatus(claimModel.Status),
			Sources:       sourcesByClaim[claimModel.ID],
		})
	}
	sort.Slice(claims, func(i, j int) bool {
		if claims[i].Category != claims[j].Category {
			return claims[i].Category < claims[j].Category
		}
		return claims[i].Name < claims[j].Name
	})
	return claims, nil
}

var _ usecase.GenerationRepository = (*GenerationRepository)(nil)
