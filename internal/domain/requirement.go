package domain

import (
	"time"

	"github.com/google/uuid"
)

type RequirementCategory string

const (
	CategoryEnvironment    RequirementCategory = "ENVIRONMENT"
	CategorySustainability RequirementCategory = "SUSTAINABILITY"
	CategorySocial         RequirementCategory = "SOCIAL"
	CategoryGovernance     RequirementCategory = "GOVERNANCE"
	CategoryTraceability   RequirementCategory = "TRACEABILITY"
	CategoryOther          RequirementCategory = "OTHER"
)

type RequirementKind string

const (
	KindCertificate   RequirementKind = "CERTIFICATE"
	KindInvoice       RequirementKind = "INVOICE"
	KindQuestionnaire RequirementKind = "QUESTIONNAIRE"
	KindPhoto         RequirementKind = "PHOTO"
	KindReport        RequirementKind = "REPORT"
	KindOther         RequirementKind = "OTHER"
)

var RequirementCategories = []RequirementCategory{
	CategoryEnvironment,
	CategorySustainability,
	CategorySocial,
	CategoryGovernance,
	CategoryTraceability,
	CategoryOther,
}

var RequirementKinds = []RequirementKind{
	KindCertificate,
	KindInvoice,
	KindQuestionnaire,
	KindPhoto,
	KindReport,
	KindOther,
}

// Requirement is a reusable evidence definition that rules can demand.
// Weight is in [0,1].
type Requirement struct {
	ID          uuid.UUID
	Name        string
	Description string
	Category    RequirementCategory
	Kind        RequirementKind
	Weight      float64
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func ValidCategory(c RequirementCategory) bool {
	for _, known := range RequirementCategories {
		if known == c {
			return true
		}
	}
	return false
}

func ValidKind(k RequirementKind) bool {
	for _, known := range RequirementKinds {
		if known == k {
			return true
		}
	}
	return false
}
