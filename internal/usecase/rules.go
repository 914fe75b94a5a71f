package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"claimgen/internal/domain"
	"claimgen/internal/predicate"
)

// RuleCatalog owns the rule family lifecycle: drafting, validation-gated
// publishing, disabling, clone-based editing and restricted deletion.
type RuleCatalog struct {
	Rules        RuleRepository
	Requirements RequirementRepository
	Logger       *slog.Logger
	Now          func() time.Time
}

func (uc *RuleCatalog) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}

func (uc *RuleCatalog) log() *slog.Logger {
	if uc.Logger != nil {
		return uc.Logger
	}
	return slog.Default()
}

type CreateRuleRequest struct {
	Code         string
	Name         string
	Description  string
	Predicate    json.RawMessage
	Requirements []domain.RequirementLink
}

type UpdateRuleRequest struct {
	ID           uuid.UUID
	Name         *string
	Description  *string
	Predicate    json.RawMessage
	Requirements []domain.RequirementLink
}

// CreateDraft opens a new rule family at version 1. Later versions of an
// existing family come from Clone, never from Create.
func (uc *RuleCatalog) CreateDraft(ctx context.Context, req CreateRuleRequest) (*domain.Rule, error) {
	if req.Code == "" || req.Name == "" {
		return nil, &domain.StructuralError{Reason: "rule code and name are required"}
	}
	latest, err := uc.Rules.LatestVersion(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if latest > 0 {
		return nil, domain.ErrRuleExists
	}
	if err := uc.checkLinks(ctx, req.Requirements); err != nil {
		return nil, err
	}
	rule := &domain.Rule{
		ID:           uuid.New(),
		Code:         req.Code,
		Version:      1,
		Name:         req.Name,
		Description:  req.Description,
		State:        domain.RuleStateDraft,
		Predicate:    req.Predicate,
		Requirements: req.Requirements,
		CreatedAt:    uc.now(),
	}
	if err := uc.Rules.Create(ctx, rule); err != nil {
		return nil, err
	}
	uc.log().InfoContext(ctx, "rule draft created", "rule_id", rule.ID, "code", rule.Code)
	return rule, nil
}

// UpdateDraft mutates a DRAFT row in place. Any other state is read-only.
func (uc *RuleCatalog) UpdateDraft(ctx context.Context, req UpdateRuleRequest) (*domain.Rule, error) {
	rule, err := uc.Rules.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	switch rule.State {
	case domain.RuleStateDraft:
	case domain.RuleStatePublished:
		return nil, domain.ErrRuleImmutable
	default:
		return nil, domain.ErrRuleState
	}
	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Description != nil {
		rule.Description = *req.Description
	}
	if req.Predicate != nil {
		rule.Predicate = req.Predicate
	}
	if req.Requirements != nil {
		if err := uc.checkLinks(ctx, req.Requirements); err != nil {
			return nil, err
		}
		rule.Requirements = req.Requirements
	}
	updated := uc.now()
	rule.UpdatedAt = &updated
	if err := uc.Rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// Publish moves a rule into force. A DRAFT must pass full predicate
// validation plus a sample evaluation; publishing it disables the family's
// currently published row in the same transaction, so at most one version of
// a family is ever in force. A DISABLED row may come back only with its
// predicate byte-identical to the family's last published one.
func (uc *RuleCatalog) Publish(ctx context.Context, id uuid.UUID) (*domain.Rule, error) {
	rule, err := uc.Rules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch rule.State {
	case domain.RuleStateDraft:
		if err := uc.validateForPublish(rule); err != nil {
			return nil, err
		}
	case domain.RuleStateDisabled:
		last, err := uc.Rules.LastPublished(ctx, rule.Code)
		if err != nil && !errors.Is(err, domain.ErrRuleNotFound) {
			return nil, err
		}
		if last != nil && last.ID != rule.ID && !bytes.Equal(last.Predicate, rule.Predicate) {
			return nil, domain.ErrPredicateChanged
		}
	default:
		return nil, domain.ErrRuleState
	}

	var predecessorID *uuid.UUID
	current, err := uc.currentlyPublished(ctx, rule.Code)
	if err != nil {
		return nil, err
	}
	if current != nil && current.ID != rule.ID {
		predecessorID = &current.ID
	}

	publishedAt := uc.now()
	rule.State = domain.RuleStatePublished
	rule.PublishedAt = &publishedAt
	rule.DisabledAt = nil
	if err := uc.Rules.Publish(ctx, rule, predecessorID); err != nil {
		return nil, err
	}
	uc.log().InfoContext(ctx, "rule published",
		"rule_id", rule.ID, "code", rule.Code, "version", rule.Version,
		"superseded", predecessorID != nil)
	return rule, nil
}

// Disable takes a published rule out of force. No validation applies.
func (uc *RuleCatalog) Disable(ctx context.Context, id uuid.UUID) (*domain.Rule, error) {
	rule, err := uc.Rules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule.State != domain.RuleStatePublished {
		return nil, domain.ErrRuleState
	}
	disabledAt := uc.now()
	rule.State = domain.RuleStateDisabled
	rule.DisabledAt = &disabledAt
	if err := uc.Rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	uc.log().InfoContext(ctx, "rule disabled", "rule_id", rule.ID, "code", rule.Code)
	return rule, nil
}

// Clone is the only edit path for a rule that has left DRAFT: it opens the
// family's next version as a fresh DRAFT and leaves the source untouched.
func (uc *RuleCatalog) Clone(ctx context.Context, id uuid.UUID) (*domain.Rule, error) {
	source, err := uc.Rules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if source.State == domain.RuleStateDraft {
		return nil, domain.ErrRuleState
	}
	latest, err := uc.Rules.LatestVersion(ctx, source.Code)
	if err != nil {
		return nil, err
	}
	draft := source.CloneDraft(latest+1, uc.now())
	if err := uc.Rules.Create(ctx, draft); err != nil {
		return nil, err
	}
	uc.log().InfoContext(ctx, "rule cloned",
		"source_id", source.ID, "draft_id", draft.ID, "code", draft.Code, "version", draft.Version)
	return draft, nil
}

// Delete removes a DRAFT unconditionally and a DISABLED row only when no
// generation references it. PUBLISHED rows are never deletable.
func (uc *RuleCatalog) Delete(ctx context.Context, id uuid.UUID) error {
	rule, err := uc.Rules.GetByID(ctx, id)
	if err != nil {
		return err
	}
	switch rule.State {
	case domain.RuleStateDraft:
	case domain.RuleStateDisabled:
		referenced, err := uc.Rules.ReferencedByGenerations(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return domain.ErrRuleReferenced
		}
	default:
		return domain.ErrRuleImmutable
	}
	return uc.Rules.Delete(ctx, id)
}

func (uc *RuleCatalog) Get(ctx context.Context, id uuid.UUID) (*domain.Rule, error) {
	return uc.Rules.GetByID(ctx, id)
}

func (uc *RuleCatalog) List(ctx context.Context, filter RuleFilter) ([]domain.Rule, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return uc.Rules.List(ctx, filter)
}

// validateForPublish is the full publish gate: the wire form must decode,
// the tree must pass structural and type checks, and a sample evaluation
// against the empty-sections context must complete without an exception. A
// false sample result is fine; only an evaluation error blocks.
func (uc *RuleCatalog) validateForPublish(rule *domain.Rule) error {
	node, err := domain.DecodePredicate(rule.Predicate)
	if err != nil {
		return err
	}
	if errs := predicate.ValidateTree(node); len(errs) > 0 {
		return errs[0]
	}
	if _, err := predicate.SafeEvaluate(node, predicate.SampleContext()); err != nil {
		return fmt.Errorf("sample evaluation failed: %w", err)
	}
	return nil
}

func (uc *RuleCatalog) currentlyPublished(ctx context.Context, code string) (*domain.Rule, error) {
	rules, _, err := uc.Rules.List(ctx, RuleFilter{Code: code, State: domain.RuleStatePublished, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}
	return &rules[0], nil
}

func (uc *RuleCatalog) checkLinks(ctx context.Context, links []domain.RequirementLink) error {
	for _, link := range links {
		if _, err := uc.Requirements.GetByID(ctx, link.RequirementID); err != nil {
			return err
		}
	}
	return nil
}
