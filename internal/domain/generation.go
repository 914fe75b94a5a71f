package domain

import (
	"time"

	"github.com/google/uuid"
)

type GenerationStatus string

const (
	GenerationStatusGenerated GenerationStatus = "GENERATED"
)

type ClaimStatus string

const (
	ClaimStatusRequired  ClaimStatus = "REQUIRED"
	ClaimStatusSatisfied ClaimStatus = "SATISFIED"
)

// Generation is one immutable, numbered snapshot of the computed requirements
// set for an audit. (AuditID, Number) is unique and Number is strictly
// increasing per audit; rows are append-only.
type Generation struct {
	ID            uuid.UUID
	AuditID       uuid.UUID
	Number        int64
	Status        GenerationStatus
	EngineVersion string
	// Snapshot is a deep copy of the audit data the rules were evaluated
	// against; SnapshotHash is its canonical-JSON SHA-256, used for the
	// freshness check.
	Snapshot     map[string]any
	SnapshotHash string
	GeneratedAt  time.Time
}

// RuleMatch records the outcome of evaluating one published rule within one
// generation. A failed evaluation is data, not an error: matched=false plus
// the error text.
type RuleMatch struct {
	GenerationID uuid.UUID
	RuleID       uuid.UUID
	RuleCode     string
	RuleVersion  int
	Matched      bool
	Error        string
	EvaluatedAt  time.Time
}

// RequiredClaim is one evidence requirement the generation determined
// necessary, deduplicated across all matching rules.
type RequiredClaim struct {
	ID            uuid.UUID
	GenerationID  uuid.UUID
	RequirementID uuid.UUID
	Status        ClaimStatus
	Sources       []ClaimSource
	CreatedAt     time.Time
}

// ClaimSource links a required claim back to one contributing rule. Only the
// rule's identity travels here, never its predicate.
type ClaimSource struct {
	RequiredClaimID uuid.UUID
	RuleID          uuid.UUID
	RuleCode        string
	RuleName        string
	RuleVersion     int
}

// GenerationResult is the full downstream view of one generation: the summary
// row, every rule match, and every required claim joined with its requirement
// definition and sources.
type GenerationResult struct {
	Generation     Generation
	RuleMatches    []RuleMatch
	RequiredClaims []ResultClaim
	Summary        GenerationSummary
}

type ResultClaim struct {
	RequirementID uuid.UUID
	Name          string
	Description   string
	Category      RequirementCategory
	Kind          RequirementKind
	Weight        float64
	Status        ClaimStatus
	Sources       []ClaimSource
}

type GenerationSummary struct {
	RulesEvaluated int
	RulesMatched   int
	RulesFailed    int
	ClaimsRequired int
}
