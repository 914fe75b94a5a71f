package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"claimgen/internal/domain"
)

func TestAuditLifecycle_CertifyIsTerminal(t *testing.T) {
	audits := newFakeAuditRepo()
	lifecycle := &AuditLifecycle{Audits: audits}
	ctx := context.Background()

	audit, err := lifecycle.Create(ctx, organicData())
	if err != nil {
		t.Fatalf("create audit: %v", err)
	}
	certified, err := lifecycle.Certify(ctx, audit.ID)
	if err != nil {
		t.Fatalf("certify: %v", err)
	}
	if certified.Status != domain.AuditStatusCertified {
		t.Fatalf("expected CERTIFIED, got %s", certified.Status)
	}

	if _, err := lifecycle.Certify(ctx, audit.ID); !errors.Is(err, domain.ErrAuditImmutable) {
		t.Fatalf("expected second certify to fail, got %v", err)
	}
	if _, err := lifecycle.UpdateData(ctx, audit.ID, map[string]any{}); !errors.Is(err, domain.ErrAuditImmutable) {
		t.Fatalf("expected data update on certified audit to fail, got %v", err)
	}
}

func TestAuditLifecycle_UpdateDataWhileDraft(t *testing.T) {
	audits := newFakeAuditRepo()
	lifecycle := &AuditLifecycle{Audits: audits}
	ctx := context.Background()

	audit, err := lifecycle.Create(ctx, nil)
	if err != nil {
		t.Fatalf("create audit: %v", err)
	}
	if audit.Data == nil {
		t.Fatalf("expected empty document, got nil")
	}
	updated, err := lifecycle.UpdateData(ctx, audit.ID, organicData())
	if err != nil {
		t.Fatalf("update data: %v", err)
	}
	if _, ok := updated.Data["materials"]; !ok {
		t.Fatalf("expected updated document, got %+v", updated.Data)
	}
}

func TestRequirementCatalog_ValidatesInput(t *testing.T) {
	catalog := &RequirementCatalog{Requirements: newFakeRequirementRepo()}
	ctx := context.Background()

	cases := []RequirementInput{
		{Name: "", Category: domain.CategorySocial, Kind: domain.KindReport, Weight: 0.5},
		{Name: "X", Category: "BOGUS", Kind: domain.KindReport, Weight: 0.5},
		{Name: "X", Category: domain.CategorySocial, Kind: "BOGUS", Weight: 0.5},
		{Name: "X", Category: domain.CategorySocial, Kind: domain.KindReport, Weight: 1.5},
	}
	for _, in := range cases {
		if _, err := catalog.Create(ctx, in); err == nil {
			t.Fatalf("expected %+v to be rejected", in)
		}
	}

	requirement, err := catalog.Create(ctx, RequirementInput{
		Name:     "Wage report",
		Category: domain.CategorySocial,
		Kind:     domain.KindReport,
		Weight:   0.8,
	})
	if err != nil {
		t.Fatalf("create requirement: %v", err)
	}
	if requirement.ID == uuid.Nil {
		t.Fatalf("expected assigned id")
	}
}

func TestRequirementCatalog_DeleteBlockedWhileLinked(t *testing.T) {
	requirements := newFakeRequirementRepo()
	catalog := &RequirementCatalog{Requirements: requirements}
	ctx := context.Background()

	requirement, err := catalog.Create(ctx, RequirementInput{
		Name:     "Organic Certificate",
		Category: domain.CategorySustainability,
		Kind:     domain.KindCertificate,
		Weight:   1,
	})
	if err != nil {
		t.Fatalf("create requirement: %v", err)
	}
	requirements.linked[requirement.ID] = true
	if err := catalog.Delete(ctx, requirement.ID); !errors.Is(err, domain.ErrRuleReferenced) {
		t.Fatalf("expected linked requirement delete to fail, got %v", err)
	}
	requirements.linked[requirement.ID] = false
	if err := catalog.Delete(ctx, requirement.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
