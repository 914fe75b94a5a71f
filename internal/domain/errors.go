package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRuleNotFound           = errors.New("rule not found")
	ErrRuleExists             = errors.New("rule code already in use")
	ErrRequirementNotFound    = errors.New("requirement not found")
	ErrAuditNotFound          = errors.New("audit not found")
	ErrGenerationNotFound     = errors.New("generation not found")
	ErrRuleState              = errors.New("rule state does not permit this operation")
	ErrRuleImmutable          = errors.New("published rules are immutable")
	ErrRuleReferenced         = errors.New("rule is referenced by other records")
	ErrPredicateChanged       = errors.New("predicate changed since last publish")
	ErrAuditImmutable         = errors.New("audit is no longer mutable")
	ErrRegenerationNotAllowed = errors.New("regeneration not allowed for certified audit")
	ErrGenerationConflict     = errors.New("generation number conflict")
	ErrInvalidArgument        = errors.New("invalid argument")
)

// StructuralError reports a malformed predicate node, identified by id so
// authoring tooling can point at the offending node.
type StructuralError struct {
	NodeID string
	Reason string
}

func (e *StructuralError) Error() string {
	if e.NodeID == "" {
		return "invalid predicate: " + e.Reason
	}
	return fmt.Sprintf("invalid predicate node %q: %s", e.NodeID, e.Reason)
}

// TypeMismatchError reports an operator that is not legal for the condition's
// declared field type.
type TypeMismatchError struct {
	NodeID    string
	FieldType FieldType
	Operator  Operator
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("condition %q: operator %q is not valid for field type %q", e.NodeID, e.Operator, e.FieldType)
}
