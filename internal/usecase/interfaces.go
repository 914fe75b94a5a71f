package usecase

import (
	"context"

	"github.com/google/uuid"

	"claimgen/internal/domain"
)

// RuleFilter narrows and pages rule listings. Zero value lists everything.
type RuleFilter struct {
	Code   string
	State  domain.RuleState
	Search string
	Offset int
	Limit  int
}

type RuleRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Rule, error)
	List(ctx context.Context, filter RuleFilter) ([]domain.Rule, int64, error)
	ListPublished(ctx context.Context) ([]domain.Rule, error)
	// LatestVersion returns 0 when the code has no rows yet.
	LatestVersion(ctx context.Context, code string) (int, error)
	// LastPublished returns the most recently published row of the family,
	// regardless of its current state.
	LastPublished(ctx context.Context, code string) (*domain.Rule, error)
	Create(ctx context.Context, rule *domain.Rule) error
	Update(ctx context.Context, rule *domain.Rule) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Publish transitions the rule and, when predecessorID is set, disables
	// that row in the same transaction.
	Publish(ctx context.Context, rule *domain.Rule, predecessorID *uuid.UUID) error
	// ReferencedByGenerations reports whether any rule match row points at
	// the rule.
	ReferencedByGenerations(ctx context.Context, id uuid.UUID) (bool, error)
}

type RequirementRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Requirement, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Requirement, error)
	List(ctx context.Context) ([]domain.Requirement, error)
	Create(ctx context.Context, requirement *domain.Requirement) error
	Update(ctx context.Context, requirement *domain.Requirement) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ReferencedByRules reports whether any rule links the requirement.
	ReferencedByRules(ctx context.Context, id uuid.UUID) (bool, error)
}

type AuditRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Audit, error)
	List(ctx context.Context) ([]domain.Audit, error)
	Create(ctx context.Context, audit *domain.Audit) error
	UpdateData(ctx context.Context, id uuid.UUID, data map[string]any) (*domain.Audit, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AuditStatus) (*domain.Audit, error)
}

type GenerationRepository interface {
	// Latest returns domain.ErrGenerationNotFound when the audit has none.
	Latest(ctx context.Context, auditID uuid.UUID) (*domain.Generation, error)
	ListByAudit(ctx context.Context, auditID uuid.UUID) ([]domain.Generation, error)
	GetResult(ctx context.Context, auditID uuid.UUID, number int64) (*domain.GenerationResult, error)
	// CreateResult writes the generation and all child rows atomically. A
	// concurrent writer that took the same number surfaces as
	// domain.ErrGenerationConflict with nothing persisted.
	CreateResult(ctx context.Context, result *domain.GenerationResult) error
}

// PredicateCache is the bounded read-through cache for decoded predicate
// trees. Safe to key by rule id + version because published rules never
// change.
type PredicateCache interface {
	Get(ctx context.Context, key string) (domain.PredicateNode, bool, error)
	Put(ctx context.Context, key string, node domain.PredicateNode) error
}

// SnapshotHasher produces the canonical content hash used by the generation
// freshness check.
type SnapshotHasher interface {
	Hash(data map[string]any) (string, error)
}
