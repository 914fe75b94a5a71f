package predicate

import (
	"testing"

	"claimgen/internal/domain"
)

func organicAndRecycled() *domain.Group {
	return &domain.Group{
		ID:      "root",
		Logical: domain.LogicalAnd,
		Children: []domain.PredicateNode{
			&domain.Condition{
				ID:        "c1",
				FieldPath: "materials.certifiedOrganic",
				Operator:  domain.OpIs,
				Value:     "true",
				FieldType: domain.FieldTypeBoolean,
			},
			&domain.Condition{
				ID:        "c2",
				FieldPath: "materials.recycledContent",
				Operator:  domain.OpGTE,
				Value:     "50",
				FieldType: domain.FieldTypeNumber,
			},
		},
	}
}

func TestEvaluate_OrganicRecycledMatch(t *testing.T) {
	ctx := BuildContext(map[string]any{
		"materials": map[string]any{
			"certifiedOrganic": true,
			"recycledContent":  float64(80),
		},
	})
	if !Evaluate(organicAndRecycled(), ctx) {
		t.Fatalf("expected predicate to match")
	}
}

func TestEvaluate_OrganicRecycledBelowThreshold(t *testing.T) {
	ctx := BuildContext(map[string]any{
		"materials": map[string]any{
			"certifiedOrganic": true,
			"recycledContent":  float64(30),
		},
	})
	if Evaluate(organicAndRecycled(), ctx) {
		t.Fatalf("expected predicate not to match")
	}
}

func TestEvaluate_MissingSectionIsFalseNotError(t *testing.T) {
	ctx := BuildContext(map[string]any{})
	matched, err := SafeEvaluate(organicAndRecycled(), ctx)
	if err != nil {
		t.Fatalf("expected no error on absent section, got %v", err)
	}
	if matched {
		t.Fatalf("expected absent materials section to evaluate false")
	}
}

func TestEvaluate_EmptyGroupNeutralElements(t *testing.T) {
	and := &domain.Group{ID: "g", Logical: domain.LogicalAnd}
	or := &domain.Group{ID: "g", Logical: domain.LogicalOr}
	ctx := SampleContext()
	if !Evaluate(and, ctx) {
		t.Fatalf("empty AND group must evaluate true")
	}
	if Evaluate(or, ctx) {
		t.Fatalf("empty OR group must evaluate false")
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	node := &domain.Group{
		ID:      "root",
		Logical: domain.LogicalOr,
		Children: []domain.PredicateNode{
			organicAndRecycled(),
			&domain.Condition{
				ID:        "c3",
				FieldPath: "productInfo.auditScope",
				Operator:  domain.OpEquals,
				Value:     "Collection",
				FieldType: domain.FieldTypeEnum,
			},
		},
	}
	ctx := BuildContext(map[string]any{
		"productInfo": map[string]any{"auditScope": "Collection"},
	})
	first := Evaluate(node, ctx)
	for i := 0; i < 10; i++ {
		if Evaluate(node, ctx) != first {
			t.Fatalf("evaluation is not deterministic")
		}
	}
	if !first {
		t.Fatalf("expected OR branch on auditScope to match")
	}
}

func TestEvaluate_ExistsOperator(t *testing.T) {
	present := &domain.Condition{
		ID:        "c",
		FieldPath: "materials.primary",
		Operator:  domain.OpExists,
		FieldType: domain.FieldTypeString,
	}
	ctx := BuildContext(map[string]any{
		"materials": map[string]any{"primary": "Cotton"},
	})
	if !evalCondition(present, ctx) {
		t.Fatalf("expected exists to be true for present field")
	}
	if evalCondition(present, SampleContext()) {
		t.Fatalf("expected exists to be false for absent field")
	}
}

func TestEvaluate_NilValueIsAbsent(t *testing.T) {
	cond := &domain.Condition{
		ID:        "c",
		FieldPath: "materials.originCountry",
		Operator:  domain.OpExists,
		FieldType: domain.FieldTypeString,
	}
	ctx := BuildContext(map[string]any{
		"materials": map[string]any{"originCountry": nil},
	})
	if evalCondition(cond, ctx) {
		t.Fatalf("expected explicit null to count as absent")
	}
}

func TestEvaluate_ListFanOut(t *testing.T) {
	ctx := BuildContext(map[string]any{
		"products": []any{
			map[string]any{"category": "Apparel"},
			map[string]any{"category": "Footwear"},
		},
	})
	anyEquals := &domain.Condition{
		ID:        "c",
		FieldPath: "products.category",
		Operator:  domain.OpEquals,
		Value:     "Footwear",
		FieldType: domain.FieldTypeString,
	}
	if !evalCondition(anyEquals, ctx) {
		t.Fatalf("expected any-match over list elements")
	}

	noneEquals := &domain.Condition{
		ID:        "c",
		FieldPath: "products.category",
		Operator:  domain.OpEquals,
		Value:     "Jewelry",
		FieldType: domain.FieldTypeString,
	}
	if evalCondition(noneEquals, ctx) {
		t.Fatalf("expected no element to match")
	}
}

func TestEvaluate_NotEqualsRequiresAllElements(t *testing.T) {
	ctx := BuildContext(map[string]any{
		"products": []any{
			map[string]any{"category": "Apparel"},
			map[string]any{"category": "Footwear"},
		},
	})
	cond := &domain.Condition{
		ID:        "c",
		FieldPath: "products.category",
		Operator:  domain.OpNotEquals,
		Value:     "Footwear",
		FieldType: domain.FieldTypeString,
	}
	if evalCondition(cond, ctx) {
		t.Fatalf("not-equals must fail when any element equals the value")
	}
	cond.Value = "Jewelry"
	if !evalCondition(cond, ctx) {
		t.Fatalf("not-equals must pass when no element equals the value")
	}
}

func TestEvaluate_ContainsOnListAndString(t *testing.T) {
	ctx := BuildContext(map[string]any{
		"productInfo": map[string]any{
			"targetMarket": "EU and North America",
		},
		"certifications": []any{"GOTS", "OEKO-TEX"},
	})
	onString := &domain.Condition{
		ID:        "c",
		FieldPath: "productInfo.targetMarket",
		Operator:  domain.OpContains,
		Value:     "EU",
		FieldType: domain.FieldTypeString,
	}
	if !evalCondition(onString, ctx) {
		t.Fatalf("expected substring containment to match")
	}
	onList := &domain.Condition{
		ID:        "c",
		FieldPath: "certifications",
		Operator:  domain.OpContains,
		Value:     "GOTS",
		FieldType: domain.FieldTypeString,
	}
	if !evalCondition(onList, ctx) {
		t.Fatalf("expected list membership to match")
	}
}

func TestEvaluate_NumberCoercionFailureIsFalse(t *testing.T) {
	ctx := BuildContext(map[string]any{
		"materials": map[string]any{"recycledContent": "not a number"},
	})
	cond := &domain.Condition{
		ID:        "c",
		FieldPath: "materials.recycledContent",
		Operator:  domain.OpGTE,
		Value:     "50",
		FieldType: domain.FieldTypeNumber,
	}
	matched, err := SafeEvaluate(cond, ctx)
	if err != nil {
		t.Fatalf("coercion failure must not error: %v", err)
	}
	if matched {
		t.Fatalf("expected failed numeric coercion to evaluate false")
	}
}

func TestEvaluate_NumberStringCoercion(t *testing.T) {
	ctx := BuildContext(map[string]any{
		"materials": map[string]any{"recycledContent": "65"},
	})
	cond := &domain.Condition{
		ID:        "c",
		FieldPath: "materials.recycledContent",
		Operator:  domain.OpGTE,
		Value:     "50",
		FieldType: domain.FieldTypeNumber,
	}
	if !evalCondition(cond, ctx) {
		t.Fatalf("expected numeric string to coerce and compare")
	}
}

func TestEvaluate_BooleanIs(t *testing.T) {
	ctx := BuildContext(map[string]any{
		"sustainability": map[string]any{
			"social": map[string]any{"fairWage": true},
		},
	})
	cond := &domain.Condition{
		ID:        "c",
		FieldPath: "sustainability.social.fairWage",
		Operator:  domain.OpIs,
		Value:     "true",
		FieldType: domain.FieldTypeBoolean,
	}
	if !evalCondition(cond, ctx) {
		t.Fatalf("expected Is true to match boolean true")
	}
	cond.Value = "false"
	if evalCondition(cond, ctx) {
		t.Fatalf("expected Is false not to match boolean true")
	}
}

func TestEvaluate_AndShortCircuitStaysTotal(t *testing.T) {
	// Deep path through scalar territory: the second segment cannot resolve.
	cond := &domain.Condition{
		ID:        "c",
		FieldPath: "productInfo.productName.length.value",
		Operator:  domain.OpEquals,
		Value:     "5",
		FieldType: domain.FieldTypeNumber,
	}
	ctx := BuildContext(map[string]any{
		"productInfo": map[string]any{"productName": "Shirt"},
	})
	matched, err := SafeEvaluate(cond, ctx)
	if err != nil {
		t.Fatalf("path through a scalar must not error: %v", err)
	}
	if matched {
		t.Fatalf("expected unresolvable path to evaluate false")
	}
}
