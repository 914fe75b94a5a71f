package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"claimgen/internal/domain"
	"claimgen/internal/usecase"
)

type RequirementRepository struct {
	db *gorm.DB
}

func NewRequirementRepository(gormDB *gorm.DB) *RequirementRepository {
	return &RequirementRepository{db: gormDB}
}

func (r *RequirementRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Requirement, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model RequirementModel
	err := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequirementNotFound
		}
		return nil, err
	}
	return requirementFromModel(&model)
}

func (r *RequirementRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Requirement, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if len(ids) == 0 {
		return []domain.Requirement{}, nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	var models []RequirementModel
	if err := r.db.WithContext(ctx).Where("id IN ?", raw).Find(&models).Error; err != nil {
		return nil, err
	}
	requirements := make([]domain.Requirement, 0, len(models))
	for i := range models {
		requirement, err := requirementFromModel(&models[i])
		if err != nil {
			return nil, err
		}
		requirements = append(requirements, *requirement)
	}
	return requirements, nil
}

func (r *RequirementRepository) List(ctx context.Context) ([]domain.Requirement, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []RequirementModel
	if err := r.db.WithContext(ctx).Order("category ASC, name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	requirements := make([]domain.Requirement, 0, len(models))
	for i := range models {
		requirement, err := requirementFromModel(&models[i])
		if err != nil {
			return nil, err
		}
		requirements = append(requirements, *requirement)
	}
	return requirements, nil
}

func (r *RequirementRepository) Create(ctx context.Context, requirement *domain.Requirement) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := requirementToModel(requirement)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *RequirementRepository) Update(ctx context.Context, requirement *domain.Requirement) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := requirementToModel(requirement)
	result := r.db.WithContext(ctx).Model(&RequirementModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrRequirementNotFound
	}
	return nil
}

func (r *RequirementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&RequirementModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrRequirementNotFound
	}
	return nil
}

func (r *RequirementRepository) ReferencedByRules(ctx context.Context, id uuid.UUID) (bool, error) {
	if r.db == nil {
		return false, errDBUnavailable
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&RuleRequirementModel{}).
		Where("requirement_id = ?", id.String()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ usecase.RequirementRepository = (*RequirementRepository)(nil)
