package predicate

import (
	"fmt"

	"claimgen/internal/domain"
)

// ValidateTree runs the structural and type-compatibility checks a rule must
// pass before it can leave DRAFT. It returns every problem found, each
// naming the offending node.
func ValidateTree(root domain.PredicateNode) []error {
	if root == nil {
		return []error{&domain.StructuralError{Reason: "predicate is empty"}}
	}
	group, ok := root.(*domain.Group)
	if !ok {
		return []error{&domain.StructuralError{NodeID: root.NodeID(), Reason: "root node must be a group"}}
	}
	return validateGroup(group)
}

func validateGroup(g *domain.Group) []error {
	var errs []error
	if g.ID == "" {
		errs = append(errs, &domain.StructuralError{Reason: "group node is missing an id"})
	}
	if g.Logical != domain.LogicalAnd && g.Logical != domain.LogicalOr {
		errs = append(errs, &domain.StructuralError{NodeID: g.ID, Reason: fmt.Sprintf("logical op must be AND or OR, got %q", g.Logical)})
	}
	if len(g.Children) == 0 {
		errs = append(errs, &domain.StructuralError{NodeID: g.ID, Reason: "group must have at least one child"})
	}
	for _, child := range g.Children {
		switch n := child.(type) {
		case *domain.Group:
			errs = append(errs, validateGroup(n)...)
		case *domain.Condition:
			errs = append(errs, validateCondition(n)...)
		default:
			errs = append(errs, &domain.StructuralError{NodeID: g.ID, Reason: "group contains an unknown node kind"})
		}
	}
	return errs
}

func validateCondition(c *domain.Condition) []error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, &domain.StructuralError{Reason: "condition node is missing an id"})
	}
	if c.FieldPath == "" {
		errs = append(errs, &domain.StructuralError{NodeID: c.ID, Reason: "condition is missing a field path"})
	}
	if _, ok := domain.OperatorsForType[c.FieldType]; !ok {
		errs = append(errs, &domain.StructuralError{NodeID: c.ID, Reason: fmt.Sprintf("unknown field type %q", c.FieldType)})
		return errs
	}
	if !domain.OperatorAllowed(c.FieldType, c.Operator) {
		errs = append(errs, &domain.TypeMismatchError{NodeID: c.ID, FieldType: c.FieldType, Operator: c.Operator})
	}
	return errs
}

// SafeEvaluate evaluates with a panic guard. The evaluator is written to be
// total, but a publish decision must not ride on that assumption.
func SafeEvaluate(node domain.PredicateNode, ctx map[string]any) (matched bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			matched = false
			err = fmt.Errorf("predicate evaluation panic: %v", r)
		}
	}()
	return Evaluate(node, ctx), nil
}

// PreviewResult is the structured outcome of a validate/preview call. It is
// always returned, never raised: evaluation problems surface in Errors with
// Matched left nil.
type PreviewResult struct {
	Valid   bool     `json:"valid"`
	Matched *bool    `json:"matched"`
	Errors  []string `json:"errors"`
}

// Preview validates a wire-form predicate and, when sample data is supplied,
// evaluates it. sample == nil validates only.
func Preview(payload []byte, sample map[string]any) PreviewResult {
	result := PreviewResult{Errors: []string{}}
	node, err := domain.DecodePredicate(payload)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	if errs := ValidateTree(node); len(errs) > 0 {
		for _, e := range errs {
			result.Errors = append(result.Errors, e.Error())
		}
		return result
	}
	result.Valid = true
	if sample == nil {
		return result
	}
	matched, err := SafeEvaluate(node, BuildContext(sample))
	if err != nil {
		result.Errors = append(result.Errors, "evaluation error: "+err.Error())
		return result
	}
	result.Matched = &matched
	return result
}
