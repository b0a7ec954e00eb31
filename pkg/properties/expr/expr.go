// Package expr evaluates the small boolean language used by property controls
// to decide whether they are shown for a block:
//
//	layout == "logo-search-actions"
//	layout in ["rich", "three-column"] && !compact
//	height != 0 || logo.src
//
// Identifiers are dot paths into the block's props, resolved with
// document.GetPath, so array segments ("nav.0.href") work as well.
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-pagebuilder/pkg/document"
)

// Rule is a compiled expression.
type Rule struct {
	source string
	root   node
}

// Source returns the expression text the rule was compiled from.
func (r *Rule) Source() string {
	if r == nil {
		return ""
	}
	return r.source
}

// Eval runs the rule against props. A nil rule, or a rule compiled from an
// empty string, is always true.
func (r *Rule) Eval(props map[string]any) (bool, error) {
	if r == nil || r.root == nil {
		return true, nil
	}
	return r.root.eval(props)
}

// Compile parses rule once so it can be evaluated many times.
func Compile(rule string) (*Rule, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return &Rule{}, nil
	}
	tokens, err := scan(trimmed)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("expr: unexpected %q in %q", p.peek().text, rule)
	}
	return &Rule{source: trimmed, root: root}, nil
}

// Evaluator caches compiled rules by source text. The zero value is ready to
// use and safe for concurrent use.
type Evaluator struct {
	cache sync.Map
}

// New returns an Evaluator.
func New() *Evaluator { return &Evaluator{} }

// Eval compiles (or reuses) rule and evaluates it against props.
func (e *Evaluator) Eval(rule string, props map[string]any) (bool, error) {
	compiled, err := e.compile(rule)
	if err != nil {
		return false, err
	}
	return compiled.Eval(props)
}

func (e *Evaluator) compile(rule string) (*Rule, error) {
	if cached, ok := e.cache.Load(rule); ok {
		return cached.(*Rule), nil
	}
	compiled, err := Compile(rule)
	if err != nil {
		return nil, err
	}
	e.cache.Store(rule, compiled)
	return compiled, nil
}

type kind int

const (
	kindIdent kind = iota
	kindString
	kindNumber
	kindBool
	kindNull
	kindEq
	kindNeq
	kindAnd
	kindOr
	kindNot
	kindIn
	kindLParen
	kindRParen
	kindLBracket
	kindRBracket
	kindComma
)

type token struct {
	kind kind
	text string
}

type scanner struct {
	src    string
	pos    int
	tokens []token
}

func scan(src string) ([]token, error) {
	s := &scanner{src: src}
	for s.pos < len(s.src) {
		if err := s.next(); err != nil {
			return nil, err
		}
	}
	return s.tokens, nil
}

func (s *scanner) emit(k kind, text string) {
	s.tokens = append(s.tokens, token{kind: k, text: text})
}

func (s *scanner) peekByte(offset int) byte {
	if s.pos+offset >= len(s.src) {
		return 0
	}
	return s.src[s.pos+offset]
}

func (s *scanner) next() error {
	ch := s.src[s.pos]
	switch {
	case isSpace(ch):
		s.pos++
	case ch == '(':
		s.pos++
		s.emit(kindLParen, "(")
	case ch == ')':
		s.pos++
		s.emit(kindRParen, ")")
	case ch == '[':
		s.pos++
		s.emit(kindLBracket, "[")
	case ch == ']':
		s.pos++
		s.emit(kindRBracket, "]")
	case ch == ',':
		s.pos++
		s.emit(kindComma, ",")
	case ch == '!':
		if s.peekByte(1) == '=' {
			s.pos += 2
			s.emit(kindNeq, "!=")
			return nil
		}
		s.pos++
		s.emit(kindNot, "!")
	case ch == '=' || ch == '&' || ch == '|':
		if s.peekByte(1) != ch {
			return fmt.Errorf("expr: unexpected %q at %d; use %q", ch, s.pos, string([]byte{ch, ch}))
		}
		s.pos += 2
		switch ch {
		case '=':
			s.emit(kindEq, "==")
		case '&':
			s.emit(kindAnd, "&&")
		default:
			s.emit(kindOr, "||")
		}
	case ch == '"' || ch == '\'':
		return s.quoted(ch)
	default:
		s.word()
	}
	return nil
}

func (s *scanner) quoted(quote byte) error {
	start := s.pos
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		s.pos++
		if c == '\\' {
			s.pos++
			continue
		}
		if c != quote {
			continue
		}
		body := s.src[start+1 : s.pos-1]
		if quote == '\'' {
			body = strings.ReplaceAll(body, `"`, `\"`)
			body = strings.ReplaceAll(body, `\'`, `'`)
		}
		value, err := strconv.Unquote(`"` + body + `"`)
		if err != nil {
			return fmt.Errorf("expr: invalid string literal %s: %w", s.src[start:s.pos], err)
		}
		s.emit(kindString, value)
		return nil
	}
	return errors.New("expr: unterminated string literal")
}

func (s *scanner) word() {
	start := s.pos
	for s.pos < len(s.src) && !isDelimiter(s.src[s.pos]) {
		s.pos++
	}
	text := s.src[start:s.pos]
	switch strings.ToLower(text) {
	case "true", "false":
		s.emit(kindBool, strings.ToLower(text))
	case "null", "nil":
		s.emit(kindNull, "null")
	case "in":
		s.emit(kindIn, "in")
	default:
		if _, err := strconv.ParseFloat(text, 64); err == nil {
			s.emit(kindNumber, text)
			return
		}
		s.emit(kindIdent, text)
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDelimiter(c byte) bool {
	return isSpace(c) || strings.IndexByte("()[],!=&|\"'", c) >= 0
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) done() bool { return p.pos >= len(p.tokens) }

func (p *parser) peek() token {
	if p.done() {
		return token{}
	}
	return p.tokens[p.pos]
}

func (p *parser) accept(k kind) bool {
	if p.done() || p.tokens[p.pos].kind != k {
		return false
	}
	p.pos++
	return true
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.accept(kindOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.accept(kindAnd) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.accept(kindNot) {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	if p.accept(kindLParen) {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.accept(kindRParen) {
			return nil, errors.New("expr: missing closing ')'")
		}
		return inner, nil
	}
	if p.done() {
		return nil, errors.New("expr: unexpected end of expression")
	}
	ident := p.peek()
	if ident.kind != kindIdent {
		return nil, fmt.Errorf("expr: expected identifier, got %q", ident.text)
	}
	p.pos++

	switch {
	case p.accept(kindEq):
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		return compareNode{path: ident.text, want: lit}, nil
	case p.accept(kindNeq):
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		return notNode{compareNode{path: ident.text, want: lit}}, nil
	case p.accept(kindIn):
		set, err := p.literalList()
		if err != nil {
			return nil, err
		}
		return inNode{path: ident.text, set: set}, nil
	}
	return truthyNode{path: ident.text}, nil
}

func (p *parser) literal() (token, error) {
	if p.done() {
		return token{}, errors.New("expr: missing literal")
	}
	tok := p.tokens[p.pos]
	p.pos++
	switch tok.kind {
	case kindString, kindNumber, kindBool, kindNull:
		return tok, nil
	case kindIdent:
		// Bare words compare as strings: layout == minimal.
		return token{kind: kindString, text: tok.text}, nil
	default:
		return token{}, fmt.Errorf("expr: expected literal, got %q", tok.text)
	}
}

func (p *parser) literalList() ([]token, error) {
	if !p.accept(kindLBracket) {
		return nil, errors.New("expr: expected '[' after in")
	}
	var out []token
	if p.accept(kindRBracket) {
		return out, nil
	}
	for {
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		out = append(out, lit)
		if p.accept(kindRBracket) {
			return out, nil
		}
		if !p.accept(kindComma) {
			return nil, errors.New("expr: expected ',' or ']' in list")
		}
	}
}

type node interface {
	eval(props map[string]any) (bool, error)
}

type orNode struct{ left, right node }

func (n orNode) eval(props map[string]any) (bool, error) {
	ok, err := n.left.eval(props)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(props)
}

type andNode struct{ left, right node }

func (n andNode) eval(props map[string]any) (bool, error) {
	ok, err := n.left.eval(props)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(props)
}

type notNode struct{ inner node }

func (n notNode) eval(props map[string]any) (bool, error) {
	ok, err := n.inner.eval(props)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

type truthyNode struct{ path string }

func (n truthyNode) eval(props map[string]any) (bool, error) {
	value, _ := lookup(props, n.path)
	return truthy(value), nil
}

type compareNode struct {
	path string
	want token
}

func (n compareNode) eval(props map[string]any) (bool, error) {
	value, _ := lookup(props, n.path)
	return equals(value, n.want)
}

type inNode struct {
	path string
	set  []token
}

func (n inNode) eval(props map[string]any) (bool, error) {
	value, _ := lookup(props, n.path)
	for _, candidate := range n.set {
		ok, err := equals(value, candidate)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func lookup(props map[string]any, path string) (any, bool) {
	if v, ok := props[path]; ok {
		return v, true
	}
	return document.GetPath(props, path)
}

func equals(value any, want token) (bool, error) {
	switch want.kind {
	case kindNull:
		return value == nil, nil
	case kindBool:
		got, _ := asBool(value)
		return got == (want.text == "true"), nil
	case kindNumber:
		target, err := strconv.ParseFloat(want.text, 64)
		if err != nil {
			return false, fmt.Errorf("expr: invalid number %q", want.text)
		}
		got, _ := asNumber(value)
		return got == target, nil
	default:
		return asString(value) == want.text, nil
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		if n, ok := asNumber(value); ok {
			return n != 0
		}
		return true
	}
}

func asBool(value any) (bool, bool) {
	switch v := value.(type) {
	case nil:
		return false, false
	case bool:
		return v, true
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed, true
		}
		return strings.TrimSpace(v) != "", true
	default:
		return truthy(value), true
	}
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(value)
	}
}
