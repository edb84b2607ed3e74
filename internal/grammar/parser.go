package grammar

import (
	"fmt"
	"strconv"
	"strings"
)

// -----------------------------------------------------------------------
// Recursive-descent parser
// -----------------------------------------------------------------------

type parser struct {
	src    string
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) consume() token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &SyntaxError{Source: p.src, Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.peek()
	if t.kind != kind {
		return t, p.errorf(t, "expected %s but got %s", kind, describe(t))
	}
	return p.consume(), nil
}

func describe(t token) string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.val)
}

// ParseRule parses exactly one rule.
func ParseRule(src string) (*RuleNode, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, tokens: tokens}
	if p.peek().kind == tokEOF {
		return nil, p.errorf(p.peek(), "empty rule")
	}
	rule, err := p.parseRule()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, p.errorf(p.peek(), "unexpected %s after rule", describe(p.peek()))
	}
	rule.Source = strings.TrimSpace(src)
	return rule, nil
}

// ParseRules parses a sequence of rules, such as the body of a grammar file.
// Empty input yields no rules.
func ParseRules(src string) ([]*RuleNode, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, tokens: tokens}
	var rules []*RuleNode
	for p.peek().kind != tokEOF {
		start := p.peek().pos.Offset
		rule, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		end := len(src)
		if p.peek().kind != tokEOF {
			end = p.peek().pos.Offset
		}
		rule.Source = trimComments(src[start:end])
		rules = append(rules, rule)
	}
	return rules, nil
}

func trimComments(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if i := strings.IndexByte(l, '#'); i >= 0 {
			l = l[:i]
		}
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, " ")
}

// rule = lhs "==>" rhs ";"
func (p *parser) parseRule() (*RuleNode, error) {
	rule := &RuleNode{Pos: p.peek().pos}
	lhs, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	rule.LHS = lhs
	if _, err := p.expect(tokProduces); err != nil {
		return nil, err
	}
	// rhs = product ( "|" product )*
	for {
		prod, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		rule.RHS = append(rule.RHS, prod)
		if p.peek().kind != tokPipe {
			break
		}
		p.consume()
	}
	if _, err := p.expect(tokSemi); err != nil {
		return nil, err
	}
	return rule, nil
}

// product = path ( "," path )*
func (p *parser) parseProduct() (ProductNode, error) {
	prod := ProductNode{Pos: p.peek().pos}
	for {
		path, err := p.parsePath()
		if err != nil {
			return prod, err
		}
		prod.Paths = append(prod.Paths, path)
		if p.peek().kind != tokComma {
			return prod, nil
		}
		p.consume()
	}
}

// path = id ( "->" id )*
func (p *parser) parsePath() (PathNode, error) {
	path := PathNode{Pos: p.peek().pos}
	for {
		id, err := p.parseIdent()
		if err != nil {
			return path, err
		}
		path.IDs = append(path.IDs, id)
		if p.peek().kind != tokArrow {
			return path, nil
		}
		p.consume()
	}
}

// id = TYPE_NAME [ INTEGER_LABEL ]
func (p *parser) parseIdent() (IdentNode, error) {
	t, err := p.expect(tokWord)
	if err != nil {
		return IdentNode{}, err
	}
	id := IdentNode{Pos: t.pos, Type: t.val}
	if p.peek().kind == tokInt {
		lt := p.consume()
		n, err := strconv.Atoi(lt.val)
		if err != nil {
			return IdentNode{}, p.errorf(lt, "invalid label %q", lt.val)
		}
		id.Label = n
		id.HasLabel = true
	}
	return id, nil
}
