package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"claimgen/internal/domain"
	"claimgen/internal/usecase"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(gormDB *gorm.DB) *AuditRepository {
	return &AuditRepository{db: gormDB}
}

func (r *AuditRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Audit, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model AuditModel
	err := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAuditNotFound
		}
		return nil, err
	}
	return auditFromModel(&model)
}

func (r *AuditRepository) List(ctx context.Context) ([]domain.Audit, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []AuditModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	audits := make([]domain.Audit, 0, len(models))
	for i := range models {
		audit, err := auditFromModel(&models[i])
		if err != nil {
			return nil, err
		}
		audits = append(audits, *audit)
	}
	return audits, nil
}

func (r *AuditRepository) Create(ctx context.Context, audit *domain.Audit) error {
	if r.db == nil {
		return errDBUnavailable
	}
	data, err := json.Marshal(audit.Data)
	if err != nil {
		return err
	}
	model := AuditModel{
		ID:        audit.ID.String(),
		Status:    string(audit.Status),
		Data:      data,
		CreatedAt: audit.CreatedAt,
		UpdatedAt: audit.UpdatedAt,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *AuditRepository) UpdateData(ctx context.Context, id uuid.UUID, data map[string]any) (*domain.Audit, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).Model(&AuditModel{}).
		Where("id = ?", id.String()).
		Updates(map[string]any{"data": raw, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrAuditNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *AuditRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AuditStatus) (*domain.Audit, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	result := r.db.WithContext(ctx).Model(&AuditModel{}).
		Where("id = ?", id.String()).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrAuditNotFound
	}
	return r.GetByID(ctx, id)
}

var _ usecase.AuditRepository = (*AuditRepository)(nil)
