package predicate

import (
	"testing"

	"claimgen/internal/domain"
)

func compileOK(t *testing.T, expr string) *domain.Group {
	t.Helper()
	node, err := CompileExpression(expr)
	if err != nil {
		t.Fatalf("compile %q: %v", expr, err)
	}
	group, ok := node.(*domain.Group)
	if !ok {
		t.Fatalf("compile %q: root is %T, want group", expr, node)
	}
	if errs := ValidateTree(group); len(errs) != 0 {
		t.Fatalf("compile %q: tree fails validation: %v", expr, errs)
	}
	return group
}

func singleCondition(t *testing.T, g *domain.Group) *domain.Condition {
	t.Helper()
	if len(g.Children) != 1 {
		t.Fatalf("expected one child, got %d", len(g.Children))
	}
	cond, ok := g.Children[0].(*domain.Condition)
	if !ok {
		t.Fatalf("expected condition child, got %T", g.Children[0])
	}
	return cond
}

func TestCompile_EqualityWithContextPrefix(t *testing.T) {
	cond := singleCondition(t, compileOK(t, "context.productInfo.productCategory == 'Apparel'"))
	if cond.FieldPath != "productInfo.productCategory" {
		t.Fatalf("expected context. prefix stripped, got %q", cond.FieldPath)
	}
	if cond.Operator != domain.OpEquals || cond.Value != "Apparel" {
		t.Fatalf("unexpected condition %+v", cond)
	}
	if cond.FieldType != domain.FieldTypeString {
		t.Fatalf("expected string type, got %s", cond.FieldType)
	}
}

func TestCompile_BooleanEqualityBecomesIs(t *testing.T) {
	cond := singleCondition(t, compileOK(t, "context.materials.certifiedOrganic == True"))
	if cond.Operator != domain.OpIs || cond.Value != "true" {
		t.Fatalf("expected Is true, got %+v", cond)
	}
	if cond.FieldType != domain.FieldTypeBoolean {
		t.Fatalf("expected boolean type, got %s", cond.FieldType)
	}
}

func TestCompile_BooleanInequalityInverts(t *testing.T) {
	cond := singleCondition(t, compileOK(t, "scope.tier1Documented != true"))
	if cond.Operator != domain.OpIs || cond.Value != "false" {
		t.Fatalf("expected != true to compile to Is false, got %+v", cond)
	}
}

func TestCompile_NumericThreshold(t *testing.T) {
	cond := singleCondition(t, compileOK(t, "context.materials.recycledContent >= 50"))
	if cond.Operator != domain.OpGTE || cond.Value != "50" {
		t.Fatalf("unexpected condition %+v", cond)
	}
	if cond.FieldType != domain.FieldTypeNumber {
		t.Fatalf("expected number type, got %s", cond.FieldType)
	}
}

func TestCompile_MembershipBecomesContains(t *testing.T) {
	cond := singleCondition(t, compileOK(t, "'EU' in context.targetMarkets"))
	if cond.FieldPath != "targetMarkets" || cond.Operator != domain.OpContains || cond.Value != "EU" {
		t.Fatalf("unexpected condition %+v", cond)
	}
}

func TestCompile_HasMaterialProjectsPath(t *testing.T) {
	cond := singleCondition(t, compileOK(t, "has_material(context.products, 'Leather')"))
	if cond.FieldPath != "products.materials_composition.material_type" {
		t.Fatalf("unexpected field path %q", cond.FieldPath)
	}
	if cond.Operator != domain.OpEquals || cond.Value != "Leather" {
		t.Fatalf("unexpected condition %+v", cond)
	}
}

func TestCompile_SupplyChainHelpers(t *testing.T) {
	role := singleCondition(t, compileOK(t, "has_supply_chain_role(context.supply_chain, 'Dyehouse')"))
	if role.FieldPath != "supply_chain.role" || role.Value != "Dyehouse" {
		t.Fatalf("unexpected condition %+v", role)
	}
	country := singleCondition(t, compileOK(t, "has_supply_chain_in_country(context.supply_chain, 'Portugal')"))
	if country.FieldPath != "supply_chain.country" || country.Value != "Portugal" {
		t.Fatalf("unexpected condition %+v", country)
	}
}

func TestCompile_AnyMatchProjectsField(t *testing.T) {
	cond := singleCondition(t, compileOK(t, "any_match(context.certifications, 'issuer', 'GOTS')"))
	if cond.FieldPath != "certifications.issuer" || cond.Value != "GOTS" {
		t.Fatalf("unexpected condition %+v", cond)
	}
}

func TestCompile_BooleanOperatorsNest(t *testing.T) {
	group := compileOK(t, "a.x == 'one' and (b.y >= 10 or c.z == False)")
	if group.Logical != domain.LogicalAnd || len(group.Children) != 2 {
		t.Fatalf("expected AND with two children, got %+v", group)
	}
	inner, ok := group.Children[1].(*domain.Group)
	if !ok || inner.Logical != domain.LogicalOr || len(inner.Children) != 2 {
		t.Fatalf("expected nested OR group, got %+v", group.Children[1])
	}
}

func TestCompile_OrBindsLooserThanAnd(t *testing.T) {
	group := compileOK(t, "a.x == '1' and a.y == '2' or a.z == '3'")
	if group.Logical != domain.LogicalOr || len(group.Children) != 2 {
		t.Fatalf("expected OR root, got %+v", group)
	}
	left, ok := group.Children[0].(*domain.Group)
	if !ok || left.Logical != domain.LogicalAnd {
		t.Fatalf("expected AND on the left, got %+v", group.Children[0])
	}
}

func TestCompile_NodeIDsAreUnique(t *testing.T) {
	group := compileOK(t, "a.x == '1' and a.y == '2' and a.z == '3'")
	seen := map[string]bool{group.ID: true}
	for _, child := range group.Children {
		id := child.NodeID()
		if seen[id] {
			t.Fatalf("duplicate node id %q", id)
		}
		seen[id] = true
	}
}

func TestCompile_RejectsInexpressibleForms(t *testing.T) {
	for _, expr := range []string{
		"not a.x == '1'",
		"all_match(context.items, 'k', 'v')",
		"count_match(context.items, 'k', 'v')",
		"a.x > 5",
		"a.x < 5",
		"a.x ==",
		"'EU' in",
		"a.x == 'one' extra",
	} {
		if _, err := CompileExpression(expr); err == nil {
			t.Fatalf("expected %q to be rejected", expr)
		}
	}
}

func TestCompile_CompiledTreeEvaluates(t *testing.T) {
	group := compileOK(t, "context.materials.certifiedOrganic == True and context.materials.recycledContent >= 50")
	ctx := BuildContext(map[string]any{
		"materials": map[string]any{
			"certifiedOrganic": true,
			"recycledContent":  float64(75),
		},
	})
	if !Evaluate(group, ctx) {
		t.Fatalf("expected compiled expression to match")
	}
}
