package predicate

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"claimgen/internal/domain"
)

// CompileExpression translates a legacy free-text rule expression into a
// predicate tree. Early rule catalogs stored conditions as strings such as
//
//	context.materials.certifiedOrganic == True and scope.season == 'SS25'
//	has_material(context.products, 'Leather') or 'EU' in context.targetMarkets
//
// Those strings are never executed; they compile into the same closed tree
// the structured editor produces, and only that tree is ever evaluated.
func CompileExpression(expr string) (domain.PredicateNode, error) {
	tokens, err := scan(expr)
	if err != nil {
		return nil, err
	}
	p := &exprParser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, fmt.Errorf("unexpected %q at end of expression", p.peek().text)
	}
	// The root of a predicate tree is always a group.
	if group, ok := node.(*domain.Group); ok {
		return group, nil
	}
	return &domain.Group{ID: p.nextID(), Logical: domain.LogicalAnd, Children: []domain.PredicateNode{node}}, nil
}

// legacyFuncs maps the old helper calls to the field they project each list
// element onto. all_match and count_match have no tree equivalent and are
// rejected.
var legacyFuncs = map[string]string{
	"has_material":                "materials_composition.material_type",
	"has_supply_chain_role":       "role",
	"has_supply_chain_in_country": "country",
}

type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenString
	tokenNumber
	tokenOp
	tokenLParen
	tokenRParen
	tokenComma
	tokenEOF
)

type token struct {
	kind tokenKind
	text string
}

func scan(expr string) ([]token, error) {
	var tokens []token
	runes := []rune(expr)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, token{tokenLParen, "("})
			i++
		case r == ')':
			tokens = append(tokens, token{tokenRParen, ")"})
			i++
		case r == ',':
			tokens = append(tokens, token{tokenComma, ","})
			i++
		case r == '\'' || r == '"':
			quote := r
			j := i + 1
			for j < len(runes) && runes[j] != quote {
				j++
			}
			if j >= len(runes) {
				return nil, fmt.Errorf("unterminated string literal at offset %d", i)
			}
			tokens = append(tokens, token{tokenString, string(runes[i+1 : j])})
			i = j + 1
		case r == '=' || r == '!' || r == '<' || r == '>':
			if i+1 < len(runes) && runes[i+1] == '=' {
				tokens = append(tokens, token{tokenOp, string(runes[i : i+2])})
				i += 2
			} else {
				tokens = append(tokens, token{tokenOp, string(r)})
				i++
			}
		case unicode.IsDigit(r):
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			tokens = append(tokens, token{tokenNumber, string(runes[i:j])})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_' || runes[j] == '.') {
				j++
			}
			tokens = append(tokens, token{tokenIdent, string(runes[i:j])})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q at offset %d", r, i)
		}
	}
	tokens = append(tokens, token{tokenEOF, ""})
	return tokens, nil
}

type exprParser struct {
	tokens []token
	pos    int
	ids    int
}

func (p *exprParser) nextID() string {
	p.ids++
	return "n" + strconv.Itoa(p.ids)
}

func (p *exprParser) peek() token { return p.tokens[p.pos] }

func (p *exprParser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

func (p *exprParser) atEnd() bool { return p.peek().kind == tokenEOF }

func (p *exprParser) parseOr() (domain.PredicateNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []domain.PredicateNode{left}
	for p.peek().kind == tokenIdent && p.peek().text == "or" {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return left, nil
	}
	return &domain.Group{ID: p.nextID(), Logical: domain.LogicalOr, Children: children}, nil
}

func (p *exprParser) parseAnd() (domain.PredicateNode, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	children := []domain.PredicateNode{left}
	for p.peek().kind == tokenIdent && p.peek().text == "and" {
		p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return left, nil
	}
	return &domain.Group{ID: p.nextID(), Logical: domain.LogicalAnd, Children: children}, nil
}

func (p *exprParser) parseFactor() (domain.PredicateNode, error) {
	t := p.peek()
	switch {
	case t.kind == tokenLParen:
		p.next()
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokenRParen {
			return nil, fmt.Errorf("expected ) after group, got %q", p.peek().text)
		}
		p.next()
		return node, nil
	case t.kind == tokenIdent && t.text == "not":
		return nil, fmt.Errorf("\"not\" has no predicate tree equivalent; invert the condition's operator instead")
	case t.kind == tokenIdent && (t.text == "all_match" || t.text == "count_match"):
		return nil, fmt.Errorf("%s() is not expressible in the predicate tree", t.text)
	case t.kind == tokenString:
		return p.parseInMembership()
	case t.kind == tokenIdent:
		if _, ok := legacyFuncs[t.text]; ok {
			return p.parseHelperCall()
		}
		if t.text == "contains" || t.text == "any_match" {
			return p.parseHelperCall()
		}
		return p.parseComparison()
	default:
		return nil, fmt.Errorf("unexpected %q in expression", t.text)
	}
}

// parseInMembership handles 'Value' in path, which compiles to a contains
// condition on the list field.
func (p *exprParser) parseInMembership() (domain.PredicateNode, error) {
	value := p.next().text
	if t := p.next(); t.kind != tokenIdent || t.text != "in" {
		return nil, fmt.Errorf("expected \"in\" after string literal, got %q", t.text)
	}
	path := p.next()
	if path.kind != tokenIdent {
		return nil, fmt.Errorf("expected field path after \"in\", got %q", path.text)
	}
	return &domain.Condition{
		ID:        p.nextID(),
		FieldPath: stripLegacyPrefix(path.text),
		Operator:  domain.OpContains,
		Value:     value,
		FieldType: domain.FieldTypeString,
	}, nil
}

func (p *exprParser) parseHelperCall() (domain.PredicateNode, error) {
	name := p.next().text
	if t := p.next(); t.kind != tokenLParen {
		return nil, fmt.Errorf("expected ( after %s, got %q", name, t.text)
	}
	path := p.next()
	if path.kind != tokenIdent {
		return nil, fmt.Errorf("%s: expected field path argument, got %q", name, path.text)
	}
	fieldPath := stripLegacyPrefix(path.text)

	var condition *domain.Condition
	switch name {
	case "contains":
		value, err := p.expectCommaThenLiteral(name)
		if err != nil {
			return nil, err
		}
		condition = &domain.Condition{
			ID:        p.nextID(),
			FieldPath: fieldPath,
			Operator:  domain.OpContains,
			Value:     value,
			FieldType: domain.FieldTypeString,
		}
	case "any_match":
		field, err := p.expectCommaThenLiteral(name)
		if err != nil {
			return nil, err
		}
		value, err := p.expectCommaThenLiteral(name)
		if err != nil {
			return nil, err
		}
		condition = &domain.Condition{
			ID:        p.nextID(),
			FieldPath: fieldPath + "." + field,
			Operator:  domain.OpEquals,
			Value:     value,
			FieldType: domain.FieldTypeString,
		}
	default:
		projection := legacyFuncs[name]
		value, err := p.expectCommaThenLiteral(name)
		if err != nil {
			return nil, err
		}
		condition = &domain.Condition{
			ID:        p.nextID(),
			FieldPath: fieldPath + "." + projection,
			Operator:  domain.OpEquals,
			Value:     value,
			FieldType: domain.FieldTypeString,
		}
	}
	if t := p.next(); t.kind != tokenRParen {
		return nil, fmt.Errorf("expected ) to close %s, got %q", name, t.text)
	}
	return condition, nil
}

func (p *exprParser) expectCommaThenLiteral(fn string) (string, error) {
	if t := p.next(); t.kind != tokenComma {
		return "", fmt.Errorf("%s: expected comma, got %q", fn, t.text)
	}
	t := p.next()
	if t.kind != tokenString && t.kind != tokenNumber {
		return "", fmt.Errorf("%s: expected literal argument, got %q", fn, t.text)
	}
	return t.text, nil
}

func (p *exprParser) parseComparison() (domain.PredicateNode, error) {
	path := p.next()
	op := p.next()
	if op.kind != tokenOp && !(op.kind == tokenIdent && op.text == "in") {
		return nil, fmt.Errorf("expected comparison operator after %q, got %q", path.text, op.text)
	}
	if op.kind == tokenOp && (op.text == "<" || op.text == ">") {
		return nil, fmt.Errorf("strict comparison %q is not in the predicate operator set; use >= or <=", op.text)
	}
	value := p.next()
	fieldPath := stripLegacyPrefix(path.text)
	id := p.nextID()

	switch op.text {
	case ">=", "<=":
		if value.kind != tokenNumber && value.kind != tokenString {
			return nil, fmt.Errorf("expected numeric literal after %q, got %q", op.text, value.text)
		}
		return &domain.Condition{
			ID:        id,
			FieldPath: fieldPath,
			Operator:  domain.Operator(op.text),
			Value:     value.text,
			FieldType: domain.FieldTypeNumber,
		}, nil
	case "==", "!=":
		operator := domain.OpEquals
		if op.text == "!=" {
			operator = domain.OpNotEquals
		}
		switch value.kind {
		case tokenNumber:
			return &domain.Condition{
				ID:        id,
				FieldPath: fieldPath,
				Operator:  operator,
				Value:     value.text,
				FieldType: domain.FieldTypeNumber,
			}, nil
		case tokenIdent:
			if b, ok := parseBool(value.text); ok {
				if operator == domain.OpNotEquals {
					b = !b
				}
				return &domain.Condition{
					ID:        id,
					FieldPath: fieldPath,
					Operator:  domain.OpIs,
					Value:     strconv.FormatBool(b),
					FieldType: domain.FieldTypeBoolean,
				}, nil
			}
			return nil, fmt.Errorf("unexpected identifier %q as comparison value", value.text)
		case tokenString:
			return &domain.Condition{
				ID:        id,
				FieldPath: fieldPath,
				Operator:  operator,
				Value:     value.text,
				FieldType: domain.FieldTypeString,
			}, nil
		default:
			return nil, fmt.Errorf("expected literal after %q, got %q", op.text, value.text)
		}
	default:
		return nil, fmt.Errorf("unsupported operator %q", op.text)
	}
}

// stripLegacyPrefix drops the context./scope. namespaces the old expression
// language used; the new evaluation context addresses audit data directly.
func stripLegacyPrefix(path string) string {
	for _, prefix := range []string{"context.", "scope."} {
		if strings.HasPrefix(path, prefix) {
			return strings.TrimPrefix(path, prefix)
		}
	}
	return path
}
