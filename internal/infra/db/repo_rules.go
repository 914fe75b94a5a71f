package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"claimgen/internal/domain"
	"claimgen/internal/usecase"
)

type RuleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(gormDB *gorm.DB) *RuleRepository {
	return &RuleRepository{db: gormDB}
}

func (r *RuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Rule, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model RuleModel
	err := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRuleNotFound
		}
		return nil, err
	}
	links, err := r.linksFor(ctx, r.db, []string{model.ID})
	if err != nil {
		return nil, err
	}
	return ruleFromModel(&model, links[model.ID])
}

func (r *RuleRepository) List(ctx context.Context, filter usecase.RuleFilter) ([]domain.Rule, int64, error) {
	if r.db == nil {
		return nil, 0, errDBUnavailable
	}
	query := r.db.WithContext(ctx).Model(&RuleModel{})
	if filter.Code != "" {
		query = query.Where("code = ?", filter.Code)
	}
	if filter.State != "" {
		query = query.Where("state = ?", string(filter.State))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []RuleModel
	err := query.Order("code ASC, version ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}
	rules, err := r.hydrate(ctx, models)
	if err != nil {
		return nil, 0, err
	}
	return rules, total, nil
}

func (r *RuleRepository) ListPublished(ctx context.Context) ([]domain.Rule, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []RuleModel
	err := r.db.WithContext(ctx).
		Where("state = ?", string(domain.RuleStatePublished)).
		Order("code ASC, version ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, models)
}

func (r *RuleRepository) LatestVersion(ctx context.Context, code string) (int, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	var latest *int
	err := r.db.WithContext(ctx).Model(&RuleModel{}).
		Where("code = ?", code).
		Select("MAX(version)").
		Scan(&latest).Error
	if err != nil {
		return 0, err
	}
	if latest == nil {
		return 0, nil
	}
	return *latest, nil
}

func (r *RuleRepository) LastPublished(ctx context.Context, code string) (*domain.Rule, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model RuleModel
	err := r.db.WithContext(ctx).
		Where("code = ? AND published_at IS NOT NULL", code).
		Order("published_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRuleNotFound
		}
		return nil, err
	}
	links, err := r.linksFor(ctx, r.db, []string{model.ID})
	if err != nil {
		return nil, err
	}
	return ruleFromModel(&model, links[model.ID])
}

func (r *RuleRepository) Create(ctx context.Context, rule *domain.Rule) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := ruleToModel(rule)
	links := linkModels(rule)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrRuleExists
			}
			return err
		}
		if len(links) > 0 {
			if err := tx.Create(&links).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *RuleRepository) Update(ctx context.Context, rule *domain.Rule) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := ruleToModel(rule)
	links := linkModels(rule)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&RuleModel{}).Where("id = ?", model.ID).Select("*").Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrRuleNotFound
		}
		if err := tx.Where("rule_id = ?", model.ID).Delete(&RuleRequirementModel{}).Error; err != nil {
			return err
		}
		if len(links) > 0 {
			if err := tx.Create(&links).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *RuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rule_id = ?", id.String()).Delete(&RuleRequirementModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id.String()).Delete(&RuleModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrRuleNotFound
		}
		return nil
	})
}

// Publish persists the state change and disables the predecessor row in the
// same transaction, so exactly one version of a family is in force at any
// commit point.
func (r *RuleRepository) Publish(ctx context.Context, rule *domain.Rule, predecessorID *uuid.UUID) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"state":        string(rule.State),
			"published_at": rule.PublishedAt,
			"disabled_at":  nil,
		}
		result := tx.Model(&RuleModel{}).Where("id = ?", rule.ID.String()).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrRuleNotFound
		}
		if predecessorID != nil {
			disabledAt := time.Now().UTC()
			if rule.PublishedAt != nil {
				disabledAt = *rule.PublishedAt
			}
			err := tx.Model(&RuleModel{}).
				Where("id = ?", predecessorID.String()).
				Updates(map[string]any{
					"state":       string(domain.RuleStateDisabled),
					"disabled_at": disabledAt,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *RuleRepository) ReferencedByGenerations(ctx context.Context, id uuid.UUID) (bool, error) {
	if r.db == nil {
		return false, errDBUnavailable
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&RuleMatchModel{}).
		Where("rule_id = ?", id.String()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RuleRepository) hydrate(ctx context.Context, models []RuleModel) ([]domain.Rule, error) {
	ids := make([]string, len(models))
	for i, model := range models {
		ids[i] = model.ID
	}
	links, err := r.linksFor(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	rules := make([]domain.Rule, 0, len(models))
	for i := range models {
		rule, err := ruleFromModel(&models[i], links[models[i].ID])
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, nil
}

func (r *RuleRepository) linksFor(ctx context.Context, tx *gorm.DB, ruleIDs []string) (map[string][]RuleRequirementModel, error) {
	byRule := make(map[string][]RuleRequirementModel, len(ruleIDs))
	if len(ruleIDs) == 0 {
		return byRule, nil
	}
	var links []RuleRequirementModel
	err := tx.WithContext(ctx).
		Where("rule_id IN ?", ruleIDs).
		Order("sort_order ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	for _, link := range links {
		byRule[link.RuleID] = append(byRule[link.RuleID], link)
	}
	return byRule, nil
}

var _ usecase.RuleRepository = (*RuleRepository)(nil)
