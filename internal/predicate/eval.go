// Package predicate evaluates and validates rule condition trees.
//
// The evaluator is total and deterministic: it performs no I/O, never writes
// to the supplied context, and its cost is bounded by the size of the tree.
// Missing data is never an error; it simply fails the comparison.
package predicate

import (
	"strconv"
	"strings"

	"claimgen/internal/domain"
)

// Evaluate interprets a predicate tree against an evaluation context.
//
// Group semantics: AND short-circuits on the first false child, OR on the
// first true child. An empty group evaluates to the logical neutral element:
// AND -> true, OR -> false.
func Evaluate(node domain.PredicateNode, ctx map[string]any) bool {
	switch n := node.(type) {
	case *domain.Group:
		return evalGroup(n, ctx)
	case *domain.Condition:
		return evalCondition(n, ctx)
	default:
		return false
	}
}

func evalGroup(g *domain.Group, ctx map[string]any) bool {
	if g.Logical == domain.LogicalOr {
		for _, child := range g.Children {
			if Evaluate(child, ctx) {
				return true
			}
		}
		return false
	}
	// AND is the default, matching the wire format's behavior for an
	// unspecified logical op.
	for _, child := range g.Children {
		if !Evaluate(child, ctx) {
			return false
		}
	}
	return true
}

// evalCondition resolves the field path and applies the operator. A path
// segment that crosses a list fans out over its elements: the condition holds
// if any element satisfies it, except "not equals", which requires all
// elements to differ.
func evalCondition(c *domain.Condition, ctx map[string]any) bool {
	candidates := resolvePath(ctx, c.FieldPath)
	if c.Operator == domain.OpExists {
		return len(candidates) > 0
	}
	if len(candidates) == 0 {
		return false
	}
	match := func(actual any) bool { return compare(c, actual) }
	if c.Operator == domain.OpNotEquals {
		return allMatch(candidates, match)
	}
	return anyMatch(candidates, match)
}

// resolvePath descends the context one dot-segment at a time. Missing keys
// and nil values resolve to no candidates (the absent sentinel); they are
// never an error.
func resolvePath(root map[string]any, path string) []any {
	if path == "" {
		return nil
	}
	values := []any{any(root)}
	for _, segment := range strings.Split(path, ".") {
		var next []any
		for _, value := range values {
			switch v := value.(type) {
			case map[string]any:
				if child, ok := fieldValue(v, segment); ok {
					next = append(next, child)
				}
			case []any:
				for _, item := range v {
					if m, ok := item.(map[string]any); ok {
						if child, ok := fieldValue(m, segment); ok {
							next = append(next, child)
						}
					}
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		values = next
	}
	return values
}

// compare applies the coercion implied by the declared field type. A failed
// coercion makes the comparison false; it never raises.
func compare(c *domain.Condition, actual any) bool {
	switch c.FieldType {
	case domain.FieldTypeNumber:
		return compareNumber(c.Operator, actual, c.Value)
	case domain.FieldTypeBoolean:
		return compareBoolean(c.Operator, actual, c.Value)
	case domain.FieldTypeString, domain.FieldTypeEnum:
		return compareText(c.Operator, actual, c.Value)
	default:
		return false
	}
}

func compareNumber(op domain.Operator, actual any, expected string) bool {
	have, ok := toNumber(actual)
	if !ok {
		return false
	}
	want, err := strconv.ParseFloat(strings.TrimSpace(expected), 64)
	if err != nil {
		return false
	}
	switch op {
	case domain.OpEquals:
		return have == want
	case domain.OpNotEquals:
		return have != want
	case domain.OpGTE:
		return have >= want
	case domain.OpLTE:
		return have <= want
	default:
		return false
	}
}

func compareBoolean(op domain.Operator, actual any, expected string) bool {
	if op != domain.OpIs {
		return false
	}
	have, ok := toBool(actual)
	if !ok {
		return false
	}
	want, ok := parseBool(expected)
	if !ok {
		return false
	}
	return have == want
}

func compareText(op domain.Operator, actual any, expected string) bool {
	switch op {
	case domain.OpContains:
		if list, ok := actual.([]any); ok {
			return listContains(list, expected)
		}
		have, ok := toString(actual)
		if !ok {
			return false
		}
		return strings.Contains(have, expected)
	case domain.OpEquals, domain.OpNotEquals:
		have, ok := toString(actual)
		if !ok {
			return false
		}
		if op == domain.OpEquals {
			return have == expected
		}
		return have != expected
	default:
		return false
	}
}
