package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"claimgen/internal/domain"
)

// AuditLifecycle manages the audit records the engine generates against:
// creation, data updates while mutable, and the one-way move to CERTIFIED.
type AuditLifecycle struct {
	Audits AuditRepository
	Logger *slog.Logger
	Now    func() time.Time
}

func (uc *AuditLifecycle) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}

func (uc *AuditLifecycle) Create(ctx context.Context, data map[string]any) (*domain.Audit, error) {
	if data == nil {
		data = map[string]any{}
	}
	audit := &domain.Audit{
		ID:        uuid.New(),
		Status:    domain.AuditStatusDraft,
		Data:      data,
		CreatedAt: uc.now(),
	}
	if err := uc.Audits.Create(ctx, audit); err != nil {
		return nil, err
	}
	return audit, nil
}

// UpdateData replaces the audit's document. Only DRAFT audits accept changes.
func (uc *AuditLifecycle) UpdateData(ctx context.Context, id uuid.UUID, data map[string]any) (*domain.Audit, error) {
	audit, err := uc.Audits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !audit.Mutable() {
		return nil, domain.ErrAuditImmutable
	}
	return uc.Audits.UpdateData(ctx, id, data)
}

// Certify freezes the audit. Certification is terminal: no data change and no
// generation is possible afterwards.
func (uc *AuditLifecycle) Certify(ctx context.Context, id uuid.UUID) (*domain.Audit, error) {
	audit, err := uc.Audits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransitionAudit(audit.Status, domain.AuditStatusCertified) {
		return nil, domain.ErrAuditImmutable
	}
	certified, err := uc.Audits.UpdateStatus(ctx, id, domain.AuditStatusCertified)
	if err != nil {
		return nil, err
	}
	if uc.Logger != nil {
		uc.Logger.InfoContext(ctx, "audit certified", "audit_id", id)
	}
	return certified, nil
}

func (uc *AuditLifecycle) Get(ctx context.Context, id uuid.UUID) (*domain.Audit, error) {
	return uc.Audits.GetByID(ctx, id)
}

func (uc *AuditLifecycle) List(ctx context.Context) ([]domain.Audit, error) {
	return uc.Audits.List(ctx)
}
