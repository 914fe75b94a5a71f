package db

import "time"

type RuleModel struct {
	ID               string `gorm:"type:uuid;primaryKey"`
	Code             string `gorm:"uniqueIndex:uq_rules_code_version;index;not null"`
	Version          int    `gorm:"uniqueIndex:uq_rules_code_version;not null"`
	Name             string `gorm:"not null"`
	Description      string
	State            string  `gorm:"index;not null"`
	Predicate        []byte  `gorm:"type:jsonb;not null"`
	PublishedAt      *time.Time
	DisabledAt       *time.Time
	SupersedesRuleID *string   `gorm:"type:uuid"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        *time.Time
}

func (RuleModel) TableName() string {
	return "rules"
}

type RuleRequirementModel struct {
	RuleID        string `gorm:"type:uuid;primaryKey"`
	RequirementID string `gorm:"type:uuid;primaryKey;index"`
	SortOrder     int    `gorm:"not null"`
	Required      bool   `gorm:"not null"`
}

func (RuleRequirementModel) TableName() string {
	return "rule_requirements"
}

type RequirementModel struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Name        string `gorm:"not null"`
	Description string
	Category    string  `gorm:"index;not null"`
	Kind        string  `gorm:"not null"`
	Weight      float64 `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   *time.Time
}

func (RequirementModel) TableName() string {
	return "requirements"
}

type AuditModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Status    string    `gorm:"index;not null"`
	Data      []byte    `gorm:"type:jsonb;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt *time.Time
}

func (AuditModel) TableName() string {
	return "audits"
}

type GenerationModel struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	AuditID       string    `gorm:"type:uuid;uniqueIndex:uq_generations_audit_number;index;not null"`
	Number        int64     `gorm:"uniqueIndex:uq_generations_audit_number;not null"`
	Status        string    `gorm:"not null"`
	EngineVersion string    `gorm:"not null"`
	Snapshot      []byte    `gorm:"type:jsonb;not null"`
	SnapshotHash  string    `gorm:"not null"`
	GeneratedAt   time.Time `gorm:"not null"`
}

func (GenerationModel) TableName() string {
	return "generations"
}

type RuleMatchModel struct {
	GenerationID string `gorm:"type:uuid;primaryKey"`
	RuleID       string `gorm:"type:uuid;primaryKey;index"`
	RuleCode     string `gorm:"not null"`
	RuleVersion  int    `gorm:"not null"`
	Matched      bool   `gorm:"not null"`
	Error        string
	EvaluatedAt  time.Time `gorm:"not null"`
}

func (RuleMatchModel) TableName() string {
	return "rule_matches"
}

type RequiredClaimModel struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	GenerationID  string    `gorm:"type:uuid;uniqueIndex:uq_claims_generation_requirement;index;not null"`
	RequirementID string    `gorm:"type:uuid;uniqueIndex:uq_claims_generation_requirement;not null"`
	Status        string    `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (RequiredClaimModel) TableName() string {
	return "required_claims"
}

type ClaimSourceModel struct {
	RequiredClaimID string `gorm:"type:uuid;primaryKey"`
	RuleID          string `gorm:"type:uuid;primaryKey"`
	RuleCode        string `gorm:"not null"`
	RuleName        string `gorm:"not null"`
	RuleVersion     int    `gorm:"not null"`
}

func (ClaimSourceModel) TableName() string {
	return "claim_sources"
}
