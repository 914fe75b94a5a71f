package domain

import (
	"time"

	"github.com/google/uuid"
)

type AuditStatus string

const (
	// AuditStatusDraft is the only state in which audit data may change and
	// requirements may be (re)generated.
	AuditStatusDraft AuditStatus = "DRAFT"
	// AuditStatusCertified freezes the audit; no further generations.
	AuditStatusCertified AuditStatus = "CERTIFIED"
)

// Audit is the external collaborator record the engine consumes: an opaque
// nested data document plus a lifecycle state. The engine never interprets
// the document's business meaning, only its shape.
type Audit struct {
	ID        uuid.UUID
	Status    AuditStatus
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (a *Audit) Mutable() bool { return a.Status == AuditStatusDraft }

// CanTransitionAudit reports whether the lifecycle move is allowed.
// DRAFT -> CERTIFIED is the only transition; certification is terminal.
func CanTransitionAudit(from, to AuditStatus) bool {
	return from == AuditStatusDraft && to == AuditStatusCertified
}
