// Package ruleset builds predicate trees programmatically, for seeding
// catalogs and for tests that would otherwise hand-write wire JSON.
package ruleset

import (
	"encoding/json"
	"strconv"

	"claimgen/internal/domain"
	"claimgen/internal/predicate"
)

func And(children ...domain.PredicateNode) *domain.Group {
	return &domain.Group{Logical: domain.LogicalAnd, Children: children}
}

func Or(children ...domain.PredicateNode) *domain.Group {
	return &domain.Group{Logical: domain.LogicalOr, Children: children}
}

func StringEquals(path, value string) *domain.Condition {
	return condition(path, domain.OpEquals, value, domain.FieldTypeString)
}

func StringNotEquals(path, value string) *domain.Condition {
	return condition(path, domain.OpNotEquals, value, domain.FieldTypeString)
}

func Contains(path, value string) *domain.Condition {
	return condition(path, domain.OpContains, value, domain.FieldTypeString)
}

func NumberAtLeast(path string, value float64) *domain.Condition {
	return condition(path, domain.OpGTE, formatNumber(value), domain.FieldTypeNumber)
}

func NumberAtMost(path string, value float64) *domain.Condition {
	return condition(path, domain.OpLTE, formatNumber(value), domain.FieldTypeNumber)
}

func IsTrue(path string) *domain.Condition {
	return condition(path, domain.OpIs, "true", domain.FieldTypeBoolean)
}

func IsFalse(path string) *domain.Condition {
	return condition(path, domain.OpIs, "false", domain.FieldTypeBoolean)
}

func EnumIs(path, value string) *domain.Condition {
	return condition(path, domain.OpEquals, value, domain.FieldTypeEnum)
}

func Exists(path string, fieldType domain.FieldType) *domain.Condition {
	return condition(path, domain.OpExists, "", fieldType)
}

func condition(path string, op domain.Operator, value string, fieldType domain.FieldType) *domain.Condition {
	return &domain.Condition{FieldPath: path, Operator: op, Value: value, FieldType: fieldType}
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

// Encode assigns sequential ids to nodes that lack one, validates the tree
// and renders its wire form.
func Encode(root *domain.Group) (json.RawMessage, error) {
	counter := 0
	assignIDs(root, &counter)
	if errs := predicate.ValidateTree(root); len(errs) > 0 {
		return nil, errs[0]
	}
	return domain.EncodePredicate(root)
}

// MustEncode is Encode for static trees whose shape the caller controls.
// It panics on validation failure.
func MustEncode(root *domain.Group) json.RawMessage {
	payload, err := Encode(root)
	if err != nil {
		panic(err)
	}
	return payload
}

func assignIDs(node domain.PredicateNode, counter *int) {
	switch n := node.(type) {
	case *domain.Group:
		if n.ID == "" {
			*counter++
			n.ID = "n" + strconv.Itoa(*counter)
		}
		for _, child := range n.Children {
			assignIDs(child, counter)
		}
	case *domain.Condition:
		if n.ID == "" {
			*counter++
			n.ID = "n" + strconv.Itoa(*counter)
		}
	}
}
