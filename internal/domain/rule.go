package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type RuleState string

const (
	RuleStateDraft     RuleState = "DRAFT"
	RuleStatePublished RuleState = "PUBLISHED"
	RuleStateDisabled  RuleState = "DISABLED"
)

// Rule is one versioned row of a rule family. code is the stable family
// identifier; (code, version) is unique. A PUBLISHED row is immutable
// forever; editing goes through CloneDraft.
type Rule struct {
	ID          uuid.UUID
	Code        string
	Version     int
	Name        string
	Description string
	State       RuleState
	// Predicate is the wire-form condition tree. Kept raw so published rows
	// can be compared byte for byte and cached by (id, version).
	Predicate    json.RawMessage
	Requirements []RequirementLink
	PublishedAt  *time.Time
	DisabledAt   *time.Time
	// SupersedesRuleID points at the previous version this row was cloned
	// from, forming the family's audit trail.
	SupersedesRuleID *uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

// RequirementLink joins a rule to one evidence requirement.
type RequirementLink struct {
	RequirementID uuid.UUID
	SortOrder     int
	Required      bool
}

// CloneDraft produces the next DRAFT version of the rule's family. The
// receiver is left untouched.
func (r *Rule) CloneDraft(nextVersion int, now time.Time) *Rule {
	links := make([]RequirementLink, len(r.Requirements))
	copy(links, r.Requirements)
	predicate := make(json.RawMessage, len(r.Predicate))
	copy(predicate, r.Predicate)
	source := r.ID
	return &Rule{
		ID:               uuid.New(),
		Code:             r.Code,
		Version:          nextVersion,
		Name:             r.Name,
		Description:      r.Description,
		State:            RuleStateDraft,
		Predicate:        predicate,
		Requirements:     links,
		SupersedesRuleID: &source,
		CreatedAt:        now,
	}
}
