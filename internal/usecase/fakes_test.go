package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"claimgen/internal/domain"
)

type fakeRuleRepo struct {
	mu         sync.Mutex
	rules      map[uuid.UUID]*domain.Rule
	referenced map[uuid.UUID]bool
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{
		rules:      map[uuid.UUID]*domain.Rule{},
		referenced: map[uuid.UUID]bool{},
	}
}

func (f *fakeRuleRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rule, ok := f.rules[id]
	if !ok {
		return nil, domain.ErrRuleNotFound
	}
	clone := *rule
	return &clone, nil
}

func (f *fakeRuleRepo) List(_ context.Context, filter RuleFilter) ([]domain.Rule, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Rule
	for _, rule := range f.rules {
		if filter.Code != "" && rule.Code != filter.Code {
			continue
		}
		if filter.State != "" && rule.State != filter.State {
			continue
		}
		if filter.Search != "" && !strings.Contains(rule.Name, filter.Search) {
			continue
		}
		out = append(out, *rule)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].Version < out[j].Version
	})
	total := int64(len(out))
	if filter.Offset > 0 && filter.Offset < len(out) {
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (f *fakeRuleRepo) ListPublished(ctx context.Context) ([]domain.Rule, error) {
	rules, _, err := f.List(ctx, RuleFilter{State: domain.RuleStatePublished})
	return rules, err
}

func (f *fakeRuleRepo) LatestVersion(_ context.Context, code string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latest := 0
	for _, rule := range f.rules {
		if rule.Code == code && rule.Version > latest {
			latest = rule.Version
		}
	}
	return latest, nil
}

func (f *fakeRuleRepo) LastPublished(_ context.Context, code string) (*domain.Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var last *domain.Rule
	for _, rule := range f.rules {
		if rule.Code != code || rule.PublishedAt == nil {
			continue
		}
		if last == nil || rule.PublishedAt.After(*last.PublishedAt) {
			last = rule
		}
	}
	if last == nil {
		return nil, domain.ErrRuleNotFound
	}
	clone := *last
	return &clone, nil
}

func (f *fakeRuleRepo) Create(_ context.Context, rule *domain.Rule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *rule
	f.rules[rule.ID] = &clone
	return nil
}

func (f *fakeRuleRepo) Update(_ context.Context, rule *domain.Rule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rules[rule.ID]; !ok {
		return domain.ErrRuleNotFound
	}
	clone := *rule
	f.rules[rule.ID] = &clone
	return nil
}

func (f *fakeRuleRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rules[id]; !ok {
		return domain.ErrRuleNotFound
	}
	delete(f.rules, id)
	return nil
}

func (f *fakeRuleRepo) Publish(_ context.Context, rule *domain.Rule, predecessorID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *rule
	f.rules[rule.ID] = &clone
	if predecessorID != nil {
		if predecessor, ok := f.rules[*predecessorID]; ok {
			predecessor.State = domain.RuleStateDisabled
			disabledAt := *rule.PublishedAt
			predecessor.DisabledAt = &disabledAt
		}
	}
	return nil
}

func (f *fakeRuleRepo) ReferencedByGenerations(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.referenced[id], nil
}

type fakeRequirementRepo struct {
	mu           sync.Mutex
	requirements map[uuid.UUID]*domain.Requirement
	linked       map[uuid.UUID]bool
}

func newFakeRequirementRepo() *fakeRequirementRepo {
	return &fakeRequirementRepo{
		requirements: map[uuid.UUID]*domain.Requirement{},
		linked:       map[uuid.UUID]bool{},
	}
}

func (f *fakeRequirementRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Requirement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	requirement, ok := f.requirements[id]
	if !ok {
		return nil, domain.ErrRequirementNotFound
	}
	clone := *requirement
	return &clone, nil
}

func (f *fakeRequirementRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Requirement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Requirement, 0, len(ids))
	for _, id := range ids {
		if requirement, ok := f.requirements[id]; ok {
			out = append(out, *requirement)
		}
	}
	return out, nil
}

func (f *fakeRequirementRepo) List(_ context.Context) ([]domain.Requirement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Requirement
	for _, requirement := range f.requirements {
		out = append(out, *requirement)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRequirementRepo) Create(_ context.Context, requirement *domain.Requirement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *requirement
	f.requirements[requirement.ID] = &clone
	return nil
}

func (f *fakeRequirementRepo) Update(_ context.Context, requirement *domain.Requirement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.requirements[requirement.ID]; !ok {
		return domain.ErrRequirementNotFound
	}
	clone := *requirement
	f.requirements[requirement.ID] = &clone
	return nil
}

func (f *fakeRequirementRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.requirements, id)
	return nil
}

func (f *fakeRequirementRepo) ReferencedByRules(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.linked[id], nil
}

type fakeAuditRepo struct {
	mu     sync.Mutex
	audits map[uuid.UUID]*domain.Audit
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{audits: map[uuid.UUID]*domain.Audit{}}
}

func (f *fakeAuditRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Audit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	audit, ok := f.audits[id]
	if !ok {
		return nil, domain.ErrAuditNotFound
	}
	clone := *audit
	return &clone, nil
}

func (f *fakeAuditRepo) List(_ context.Context) ([]domain.Audit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Audit
	for _, audit := range f.audits {
		out = append(out, *audit)
	}
	return out, nil
}

func (f *fakeAuditRepo) Create(_ context.Context, audit *domain.Audit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *audit
	f.audits[audit.ID] = &clone
	return nil
}

func (f *fakeAuditRepo) UpdateData(_ context.Context, id uuid.UUID, data map[string]any) (*domain.Audit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	audit, ok := f.audits[id]
	if !ok {
		return nil, domain.ErrAuditNotFound
	}
	audit.Data = data
	clone := *audit
	return &clone, nil
}

func (f *fakeAuditRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.AuditStatus) (*domain.Audit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	audit, ok := f.audits[id]
	if !ok {
		return nil, domain.ErrAuditNotFound
	}
	audit.Status = status
	clone := *audit
	return &clone, nil
}

type fakeGenerationRepo struct {
	mu      sync.Mutex
	results map[uuid.UUID]map[int64]*domain.GenerationResult
	// conflictsLeft forces CreateResult to lose the number race N times.
	conflictsLeft int
	creates       int
}

func newFakeGenerationRepo() *fakeGenerationRepo {
	return &fakeGenerationRepo{results: map[uuid.UUID]map[int64]*domain.GenerationResult{}}
}

func (f *fakeGenerationRepo) Latest(_ context.Context, auditID uuid.UUID) (*domain.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byNumber := f.results[auditID]
	var latest *domain.Generation
	for _, result := range byNumber {
		if latest == nil || result.Generation.Number > latest.Number {
			generation := result.Generation
			latest = &generation
		}
	}
	if latest == nil {
		return nil, domain.ErrGenerationNotFound
	}
	return latest, nil
}

func (f *fakeGenerationRepo) ListByAudit(_ context.Context, auditID uuid.UUID) ([]domain.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Generation
	for _, result := range f.results[auditID] {
		out = append(out, result.Generation)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return out, nil
}

func (f *fakeGenerationRepo) GetResult(_ context.Context, auditID uuid.UUID, number int64) (*domain.GenerationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result, ok := f.results[auditID][number]
	if !ok {
		return nil, domain.ErrGenerationNotFound
	}
	return result, nil
}

func (f *fakeGenerationRepo) CreateResult(_ context.Context, result *domain.GenerationResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		f.stashLocked(&domain.GenerationResult{Generation: domain.Generation{
			ID:      uuid.New(),
			AuditID: result.Generation.AuditID,
			Number:  result.Generation.Number,
		}})
		return domain.ErrGenerationConflict
	}
	if _, taken := f.results[result.Generation.AuditID][result.Generation.Number]; taken {
		return domain.ErrGenerationConflict
	}
	f.stashLocked(result)
	return nil
}

func (f *fakeGenerationRepo) stashLocked(result *domain.GenerationResult) {
	byNumber := f.results[result.Generation.AuditID]
	if byNumber == nil {
		byNumber = map[int64]*domain.GenerationResult{}
		f.results[result.Generation.AuditID] = byNumber
	}
	byNumber[result.Generation.Number] = result
}

func (f *fakeGenerationRepo) count(auditID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.results[auditID])
}

type trackingCache struct {
	mu      sync.Mutex
	entries map[string]domain.PredicateNode
	hits    int
	misses  int
}

func newTrackingCache() *trackingCache {
	return &trackingCache{entries: map[string]domain.PredicateNode{}}
}

func (c *trackingCache) Get(_ context.Context, key string) (domain.PredicateNode, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	node, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return node, ok, nil
}

func (c *trackingCache) Put(_ context.Context, key string, node domain.PredicateNode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = node
	return nil
}

// jsonHasher mirrors the production canonical hash closely enough for
// freshness tests: encoding/json writes map keys in sorted order.
type jsonHasher struct{}

func (jsonHasher) Hash(data map[string]any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
