package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"claimgen/internal/domain"
	"claimgen/internal/predicate"
)

// EngineVersion is stamped onto every generation. Bump it when evaluation
// semantics change so the freshness check stops short-circuiting onto results
// computed by older logic.
const EngineVersion = "2"

const defaultParallelism = 8

// A losing concurrent writer retries with a freshly read generation number.
const maxGenerateAttempts = 3

// GenerateRequirements is the generation engine: evaluate every published
// rule against one audit's data and persist the outcome as an immutable,
// numbered generation.
type GenerateRequirements struct {
	Audits       AuditRepository
	Rules        RuleRepository
	Requirements RequirementRepository
	Generations  GenerationRepository
	Cache        PredicateCache
	Hasher       SnapshotHasher
	Logger       *slog.Logger
	Parallelism  int
	Now          func() time.Time
}

type GenerateRequest struct {
	AuditID uuid.UUID
	// Force skips the freshness check and always writes a new generation.
	Force bool
}

func (uc *GenerateRequirements) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}

func (uc *GenerateRequirements) log() *slog.Logger {
	if uc.Logger != nil {
		return uc.Logger
	}
	return slog.Default()
}

func (uc *GenerateRequirements) Execute(ctx context.Context, req GenerateRequest) (*domain.GenerationResult, error) {
	audit, err := uc.Audits.GetByID(ctx, req.AuditID)
	if err != nil {
		return nil, err
	}
	if !audit.Mutable() {
		return nil, domain.ErrRegenerationNotAllowed
	}

	hash, err := uc.Hasher.Hash(audit.Data)
	if err != nil {
		return nil, fmt.Errorf("hash audit data: %w", err)
	}

	for attempt := 1; ; attempt++ {
		latest, err := uc.Generations.Latest(ctx, audit.ID)
		if err != nil && !errors.Is(err, domain.ErrGenerationNotFound) {
			return nil, err
		}

		if !req.Force && latest != nil && latest.SnapshotHash == hash && latest.EngineVersion == EngineVersion {
			uc.log().DebugContext(ctx, "generation up to date",
				"audit_id", audit.ID, "number", latest.Number)
			return uc.Generations.GetResult(ctx, audit.ID, latest.Number)
		}

		var number int64 = 1
		if latest != nil {
			number = latest.Number + 1
		}

		result, err := uc.compute(ctx, audit, number, hash)
		if err != nil {
			return nil, err
		}
		err = uc.Generations.CreateResult(ctx, result)
		if err == nil {
			uc.log().InfoContext(ctx, "generation created",
				"audit_id", audit.ID,
				"number", number,
				"rules_evaluated", result.Summary.RulesEvaluated,
				"rules_matched", result.Summary.RulesMatched,
				"rules_failed", result.Summary.RulesFailed,
				"claims_required", result.Summary.ClaimsRequired)
			return result, nil
		}
		if !errors.Is(err, domain.ErrGenerationConflict) || attempt >= maxGenerateAttempts {
			return nil, err
		}
		uc.log().WarnContext(ctx, "generation number taken, retrying",
			"audit_id", audit.ID, "number", number, "attempt", attempt)
	}
}

// compute evaluates every published rule and assembles the full generation
// result in memory. It performs no writes.
func (uc *GenerateRequirements) compute(ctx context.Context, audit *domain.Audit, number int64, hash string) (*domain.GenerationResult, error) {
	rules, err := uc.Rules.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	generationID := uuid.New()
	generatedAt := uc.now()
	evalCtx := predicate.BuildContext(audit.Data)

	matches := make([]domain.RuleMatch, len(rules))
	parallelism := uc.Parallelism
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallelism)
	for i := range rules {
		group.Go(func() error {
			matches[i] = uc.evaluateRule(groupCtx, &rules[i], generationID, evalCtx, generatedAt)
			return nil
		})
	}
	// Workers never return errors; failures are recorded per rule.
	_ = group.Wait()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].RuleCode != matches[j].RuleCode {
			return matches[i].RuleCode < matches[j].RuleCode
		}
		return matches[i].RuleVersion < matches[j].RuleVersion
	})

	claims, err := uc.aggregateClaims(ctx, rules, matches)
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
		Generation: domain.Generation{
			ID:            generationID,
			AuditID:       audit.ID,
			Number:        number,
			Status:        domain.GenerationStatusGenerated,
			EngineVersion: EngineVersion,
			Snapshot:      deepCopyDocument(audit.Data),
			SnapshotHash:  hash,
			GeneratedAt:   generatedAt,
		},
		RuleMatches:    matches,
		RequiredClaims: claims,
		Summary:        summary,
	}, nil
}

// evaluateRule is total: any failure, including a panic inside the evaluator,
// becomes a matched=false row with error text. One broken rule never aborts
// the batch.
func (uc *GenerateRequirements) evaluateRule(ctx context.Context, rule *domain.Rule, generationID uuid.UUID, evalCtx map[string]any, at time.Time) domain.RuleMatch {
	match := domain.RuleMatch{
		GenerationID: generationID,
		RuleID:       rule.ID,
		RuleCode:     rule.Code,
		RuleVersion:  rule.Version,
		EvaluatedAt:  at,
	}
	node, err := uc.predicateFor(ctx, rule)
	if err != nil {
		match.Error = err.Error()
		uc.log().WarnContext(ctx, "rule predicate unusable",
			"rule_id", rule.ID, "code", rule.Code, "error", err)
		return match
	}
	matched, err := predicate.SafeEvaluate(node, evalCtx)
	if err != nil {
		match.Error = err.Error()
		uc.log().WarnContext(ctx, "rule evaluation failed",
			"rule_id", rule.ID, "code", rule.Code, "error", err)
		return match
	}
	match.Matched = matched
	return match
}

// predicateFor resolves the decoded tree through the read-through cache.
// Published rules are immutable, so the (id, version) key can never go stale.
func (uc *GenerateRequirements) predicateFor(ctx context.Context, rule *domain.Rule) (domain.PredicateNode, error) {
	key := rule.ID.String() + "@" + strconv.Itoa(rule.Version)
	if uc.Cache != nil {
		if node, ok, err := uc.Cache.Get(ctx, key); err == nil && ok {
			return node, nil
		}
	}
	node, err := domain.DecodePredicate(rule.Predicate)
	if err != nil {
		return nil, err
	}
	if uc.Cache != nil {
		if err := uc.Cache.Put(ctx, key, node); err != nil {
			uc.log().WarnContext(ctx, "predicate cache put failed", "key", key, "error", err)
		}
	}
	return node, nil
}

// aggregateClaims collects the requirements of every matched rule,
// deduplicated by requirement id, each claim carrying one source row per
// contributing rule. Claims come back ordered by category then name, sources
// by rule code then version.
func (uc *GenerateRequirements) aggregateClaims(ctx context.Context, rules []domain.Rule, matches []domain.RuleMatch) ([]domain.ResultClaim, error) {
	matchedRules := make(map[uuid.UUID]*domain.Rule, len(rules))
	for _, match := range matches {
		if !match.Matched {
			continue
		}
		for i := range rules {
			if rules[i].ID == match.RuleID {
				matchedRules[match.RuleID] = &rules[i]
			}
		}
	}

	sources := make(map[uuid.UUID][]domain.ClaimSource)
	for _, rule := range matchedRules {
		for _, link := range rule.Requirements {
			if !link.Required {
				continue
			}
			sources[link.RequirementID] = append(sources[link.RequirementID], domain.ClaimSource{
				RuleID:      rule.ID,
				RuleCode:    rule.Code,
				RuleName:    rule.Name,
				RuleVersion: rule.Version,
			})
		}
	}
	if len(sources) == 0 {
		return []domain.ResultClaim{}, nil
	}

	ids := make([]uuid.UUID, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	requirements, err := uc.Requirements.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(requirements) != len(ids) {
		return nil, domain.ErrRequirementNotFound
	}

	claims := make([]domain.ResultClaim, 0, len(requirements))
	for _, requirement := range requirements {
		ruleSources := sources[requirement.ID]
		sort.Slice(ruleSources, func(i, j int) bool {
			if ruleSources[i].RuleCode != ruleSources[j].RuleCode {
				return ruleSources[i].RuleCode < ruleSources[j].RuleCode
			}
			return ruleSources[i].RuleVersion < ruleSources[j].RuleVersion
		})
		claims = append(claims, domain.ResultClaim{
			RequirementID: requirement.ID,
			Name:          requirement.Name,
			Description:   requirement.Description,
			Category:      requirement.Category,
			Kind:          requirement.Kind,
			Weight:        requirement.Weight,
			Status:        domain.ClaimStatusRequired,
			Sources:       ruleSources,
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

// ListGenerations returns the audit's generation history, newest first.
func (uc *GenerateRequirements) ListGenerations(ctx context.Context, auditID uuid.UUID) ([]domain.Generation, error) {
	if _, err := uc.Audits.GetByID(ctx, auditID); err != nil {
		return nil, err
	}
	return uc.Generations.ListByAudit(ctx, auditID)
}

// GetGeneration returns the full result of one historical generation.
func (uc *GenerateRequirements) GetGeneration(ctx context.Context, auditID uuid.UUID, number int64) (*domain.GenerationResult, error) {
	if _, err := uc.Audits.GetByID(ctx, auditID); err != nil {
		return nil, err
	}
	return uc.Generations.GetResult(ctx, auditID, number)
}

// deepCopyDocument snapshots the audit document through a JSON round trip so
// later edits to the live audit can never reach a stored generation.
func deepCopyDocument(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		// Audit documents arrive via JSON, so this cannot fail in practice.
		return map[string]any{}
	}
	var copied map[string]any
	if err := json.Unmarshal(raw, &copied); err != nil {
		return map[string]any{}
	}
	return copied
}
