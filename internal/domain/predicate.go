package domain

import (
	"encoding/json"
	"fmt"
)

type LogicalOp string

const (
	LogicalAnd LogicalOp = "AND"
	LogicalOr  LogicalOp = "OR"
)

type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeEnum    FieldType = "enum"
)

type Operator string

const (
	OpEquals    Operator = "equals"
	OpNotEquals Operator = "not equals"
	OpContains  Operator = "contains"
	OpGTE       Operator = ">="
	OpLTE       Operator = "<="
	OpIs        Operator = "Is"
	OpExists    Operator = "exists"
)

// OperatorsForType is the closed operator table per declared field type.
var OperatorsForType = map[FieldType][]Operator{
	FieldTypeString:  {OpEquals, OpNotEquals, OpContains, OpExists},
	FieldTypeNumber:  {OpEquals, OpNotEquals, OpGTE, OpLTE, OpExists},
	FieldTypeBoolean: {OpIs, OpExists},
	FieldTypeEnum:    {OpEquals, OpNotEquals, OpExists},
}

func OperatorAllowed(ft FieldType, op Operator) bool {
	for _, allowed := range OperatorsForType[ft] {
		if allowed == op {
			return true
		}
	}
	return false
}

const (
	nodeTypeGroup     = "group"
	nodeTypeCondition = "condition"
)

// PredicateNode is the closed tagged union of predicate tree nodes.
// The root of a tree is always a Group; a Condition is always a leaf.
type PredicateNode interface {
	NodeID() string
	isPredicateNode()
}

type Group struct {
	ID       string
	Logical  LogicalOp
	Children []PredicateNode
}

func (g *Group) NodeID() string { return g.ID }
func (*Group) isPredicateNode() {}

type Condition struct {
	ID        string
	FieldPath string
	Operator  Operator
	Value     string
	FieldType FieldType
}

func (c *Condition) NodeID() string { return c.ID }
func (*Condition) isPredicateNode() {}

type groupWire struct {
	Type     string            `json:"type"`
	ID       string            `json:"id"`
	Logical  LogicalOp         `json:"logical"`
	Children []json.RawMessage `json:"children"`
}

type conditionWire struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	FieldPath string    `json:"fieldPath"`
	Operator  Operator  `json:"operator"`
	Value     string    `json:"value"`
	FieldType FieldType `json:"fieldType"`
}

func (g *Group) MarshalJSON() ([]byte, error) {
	children := make([]json.RawMessage, 0, len(g.Children))
	for _, child := range g.Children {
		payload, err := json.Marshal(child)
		if err != nil {
			return nil, err
		}
		children = append(children, payload)
	}
	return json.Marshal(groupWire{
		Type:     nodeTypeGroup,
		ID:       g.ID,
		Logical:  g.Logical,
		Children: children,
	})
}

func (c *Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionWire{
		Type:      nodeTypeCondition,
		ID:        c.ID,
		FieldPath: c.FieldPath,
		Operator:  c.Operator,
		Value:     c.Value,
		FieldType: c.FieldType,
	})
}

// DecodePredicate parses the wire form of a predicate tree. The root must be
// a group node; nesting is rebuilt recursively.
func DecodePredicate(payload []byte) (PredicateNode, error) {
	node, err := decodeNode(payload)
	if err != nil {
		return nil, err
	}
	if _, ok := node.(*Group); !ok {
		return nil, &StructuralError{NodeID: node.NodeID(), Reason: "root node must be a group"}
	}
	return node, nil
}

func decodeNode(payload []byte) (PredicateNode, error) {
	var head struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		return nil, fmt.Errorf("invalid predicate node: %w", err)
	}
	switch head.Type {
	case nodeTypeGroup:
		var wire groupWire
		if err := json.Unmarshal(payload, &wire); err != nil {
			return nil, fmt.Errorf("invalid group node: %w", err)
		}
		group := &Group{ID: wire.ID, Logical: wire.Logical}
		for _, raw := range wire.Children {
			child, err := decodeNode(raw)
			if err != nil {
				return nil, err
			}
			group.Children = append(group.Children, child)
		}
		return group, nil
	case nodeTypeCondition:
		var wire conditionWire
		if err := json.Unmarshal(payload, &wire); err != nil {
			return nil, fmt.Errorf("invalid condition node: %w", err)
		}
		return &Condition{
			ID:        wire.ID,
			FieldPath: wire.FieldPath,
			Operator:  wire.Operator,
			Value:     wire.Value,
			FieldType: wire.FieldType,
		}, nil
	default:
		return nil, &StructuralError{NodeID: head.ID, Reason: fmt.Sprintf("unknown node type %q", head.Type)}
	}
}

// EncodePredicate renders a predicate tree in its wire form.
func EncodePredicate(node PredicateNode) ([]byte, error) {
	return json.Marshal(node)
}
