package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"claimgen/internal/domain"
)

// RequirementCatalog maintains the reusable evidence definitions rules link
// against.
type RequirementCatalog struct {
	Requirements RequirementRepository
	Logger       *slog.Logger
	Now          func() time.Time
}

func (uc *RequirementCatalog) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}

type RequirementInput struct {
	Name        string
	Description string
	Category    domain.RequirementCategory
	Kind        domain.RequirementKind
	Weight      float64
}

func (in RequirementInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: requirement name is required", domain.ErrInvalidArgument)
	}
	if !domain.ValidCategory(in.Category) {
		return fmt.Errorf("%w: unknown requirement category %q", domain.ErrInvalidArgument, in.Category)
	}
	if !domain.ValidKind(in.Kind) {
		return fmt.Errorf("%w: unknown requirement kind %q", domain.ErrInvalidArgument, in.Kind)
	}
	if in.Weight < 0 || in.Weight > 1 {
		return fmt.Errorf("%w: requirement weight must be within [0,1], got %v", domain.ErrInvalidArgument, in.Weight)
	}
	return nil
}

func (uc *RequirementCatalog) Create(ctx context.Context, in RequirementInput) (*domain.Requirement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	requirement := &domain.Requirement{
		ID:          uuid.New(),
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Kind:        in.Kind,
		Weight:      in.Weight,
		CreatedAt:   uc.now(),
	}
	if err := uc.Requirements.Create(ctx, requirement); err != nil {
		return nil, err
	}
	return requirement, nil
}

func (uc *RequirementCatalog) Update(ctx context.Context, id uuid.UUID, in RequirementInput) (*domain.Requirement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	requirement, err := uc.Requirements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	requirement.Name = in.Name
	requirement.Description = in.Description
	requirement.Category = in.Category
	requirement.Kind = in.Kind
	requirement.Weight = in.Weight
	updated := uc.now()
	requirement.UpdatedAt = &updated
	if err := uc.Requirements.Update(ctx, requirement); err != nil {
		return nil, err
	}
	return requirement, nil
}

// Delete refuses while any rule still links the requirement, so published
// rule rows never dangle.
func (uc *RequirementCatalog) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := uc.Requirements.GetByID(ctx, id); err != nil {
		return err
	}
	referenced, err := uc.Requirements.ReferencedByRules(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return domain.ErrRuleReferenced
	}
	return uc.Requirements.Delete(ctx, id)
}

func (uc *RequirementCatalog) Get(ctx context.Context, id uuid.UUID) (*domain.Requirement, error) {
	return uc.Requirements.GetByID(ctx, id)
}

func (uc *RequirementCatalog) List(ctx context.Context) ([]domain.Requirement, error) {
	return uc.Requirements.List(ctx)
}
