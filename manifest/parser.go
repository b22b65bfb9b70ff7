// Package manifest parses gclient-style DEPS manifests: declarative text
// defining a "vars" mapping, a "deps" mapping of checkout path to
// dependency, and an optional per-platform "deps_os" mapping.
//
// The format is a small declarative subset (string, number and boolean
// literals, lists, dicts, "+" string concatenation and Var() substitution).
// It is parsed structurally; manifest content is never executed.
package manifest

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/openwebmedia/rolldeps/domain"
)

// RawDep is one unprocessed deps value, exactly as written in the
// manifest: either a bare "url@revision" string or an object form whose
// fields are kept uninterpreted. BuildIndex gives the fields meaning.
type RawDep struct {
	Bare   string         // the plain string form
	IsBare bool           // true when the value was written as a string
	Fields map[string]any // the object form's key/value pairs
}

// Manifest holds the three raw structures of a parsed DEPS file. Variable
// references are already resolved; no git/CIPD interpretation has happened.
type Manifest struct {
	Vars   map[string]string
	Deps   map[string]RawDep
	DepsOS map[string]map[string]RawDep
}

// Parse parses manifest text into its raw vars/deps/deps_os structures.
// It returns *domain.ParseError when the text does not conform to the
// declarative subset or references an undefined variable.
func Parse(src string) (*Manifest, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens, vars: map[string]string{}}
	m := &Manifest{
		Vars:   map[string]string{},
		Deps:   map[string]RawDep{},
		DepsOS: map[string]map[string]RawDep{},
	}

	// Assignments are evaluated in file order, so Var() references only
	// see variables from assignments that precede them.
	for !p.atEnd() {
		name := p.expect(tokenIdent)
		p.expect(tokenAssign)
		value := p.parseValue()
		if p.err != nil {
			return nil, p.err
		}

		switch name.text {
		case "vars":
			if parseErr := m.setVars(value, name); parseErr != nil {
				return nil, parseErr
			}
			p.vars = m.Vars
		case "deps":
			deps, depsErr := rawDepsFrom(value, name)
			if depsErr != nil {
				return nil, depsErr
			}
			m.Deps = deps
		case "deps_os":
			if osErr := m.setDepsOS(value, name); osErr != nil {
				return nil, osErr
			}
		default:
			// Other top-level assignments (hooks, recursedeps, ...) are
			// parsed for well-formedness and dropped.
		}
		if p.err != nil {
			return nil, p.err
		}
	}

	return m, nil
}

func (m *Manifest) setVars(value any, at token) error {
	dict, ok := value.(map[string]any)
	if !ok {
		return errAt(at, "vars must be a dict")
	}
	for key, raw := range dict {
		// Only string variables are addressable through Var(); other
		// value kinds (booleans used by conditions, ...) are dropped.
		if s, isString := raw.(string); isString {
			m.Vars[key] = s
		}
	}
	return nil
}

func (m *Manifest) setDepsOS(value any, at token) error {
	dict, ok := value.(map[string]any)
	if !ok {
		return errAt(at, "deps_os must be a dict")
	}
	for platform, sub := range dict {
		deps, err := rawDepsFrom(sub, at)
		if err != nil {
			return err
		}
		m.DepsOS[platform] = deps
	}
	return nil
}

func rawDepsFrom(value any, at token) (map[string]RawDep, error) {
	dict, ok := value.(map[string]any)
	if !ok {
		return nil, errAt(at, "deps must be a dict of path to entry")
	}
	result := make(map[string]RawDep, len(dict))
	for path, raw := range dict {
		switch v := raw.(type) {
		case string:
			result[path] = RawDep{Bare: v, IsBare: true}
		case map[string]any:
			result[path] = RawDep{Fields: v}
		default:
			return nil, errAt(at, fmt.Sprintf("deps entry %q must be a string or a dict", path))
		}
	}
	return result, nil
}

// --- lexer ---

type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenString
	tokenNumber
	tokenAssign
	tokenLBrace
	tokenRBrace
	tokenLBracket
	tokenRBracket
	tokenLParen
	tokenRParen
	tokenColon
	tokenComma
	tokenPlus
	tokenEOF
)

func (k tokenKind) String() string {
	switch k {
	case tokenIdent:
		return "identifier"
	case tokenString:
		return "string"
	case tokenNumber:
		return "number"
	case tokenAssign:
		return "'='"
	case tokenLBrace:
		return "'{'"
	case tokenRBrace:
		return "'}'"
	case tokenLBracket:
		return "'['"
	case tokenRBracket:
		return "']'"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenColon:
		return "':'"
	case tokenComma:
		return "','"
	case tokenPlus:
		return "'+'"
	case tokenEOF:
		return "end of input"
	}
	return "token"
}

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

func lex(src string) ([]token, error) {
	var tokens []token
	line, col := 1, 1
	runes := []rune(src)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '\n':
			line++
			col = 1
			i++
		case unicode.IsSpace(r):
			col++
			i++
		case r == '#':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case r == '\'' || r == '"':
			startLine, startCol := line, col
			quote := r
			i++
			col++
			var sb strings.Builder
			for {
				if i >= len(runes) || runes[i] == '\n' {
					return nil, &domain.ParseError{Line: startLine, Column: startCol, Msg: "unterminated string literal"}
				}
				if runes[i] == '\\' && i+1 < len(runes) {
					sb.WriteRune(unescape(runes[i+1]))
					i += 2
					col += 2
					continue
				}
				if runes[i] == quote {
					i++
					col++
					break
				}
				sb.WriteRune(runes[i])
				i++
				col++
			}
			tokens = append(tokens, token{tokenString, sb.String(), startLine, startCol})
		case unicode.IsDigit(r):
			startCol := col
			start := i
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
				col++
			}
			tokens = append(tokens, token{tokenNumber, string(runes[start:i]), line, startCol})
		case unicode.IsLetter(r) || r == '_':
			startCol := col
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
				col++
			}
			tokens = append(tokens, token{tokenIdent, string(runes[start:i]), line, startCol})
		default:
			kind, known := punctuation[r]
			if !known {
				return nil, &domain.ParseError{Line: line, Column: col, Msg: fmt.Sprintf("unexpected character %q", r)}
			}
			tokens = append(tokens, token{kind, string(r), line, col})
			i++
			col++
		}
	}

	tokens = append(tokens, token{tokenEOF, "", line, col})
	return tokens, nil
}

var punctuation = map[rune]tokenKind{
	'=': tokenAssign,
	'{': tokenLBrace,
	'}': tokenRBrace,
	'[': tokenLBracket,
	']': tokenRBracket,
	'(': tokenLParen,
	')': tokenRParen,
	':': tokenColon,
	',': tokenComma,
	'+': tokenPlus,
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	default:
		return r
	}
}

// --- parser ---

type parser struct {
	tokens []token
	pos    int
	vars   map[string]string
	err    error
}

func (p *parser) atEnd() bool {
	return p.err != nil || p.tokens[p.pos].kind == tokenEOF
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) token {
	t := p.next()
	if p.err == nil && t.kind != kind {
		p.fail(t, fmt.Sprintf("expected %s, got %s", kind, describe(t)))
	}
	return t
}

func (p *parser) fail(at token, msg string) {
	if p.err == nil {
		p.err = errAt(at, msg)
	}
}

func errAt(at token, msg string) *domain.ParseError {
	return &domain.ParseError{Line: at.line, Column: at.col, Msg: msg}
}

func describe(t token) string {
	if t.kind == tokenIdent || t.kind == tokenString {
		return fmt.Sprintf("%s %q", t.kind, t.text)
	}
	return t.kind.String()
}

// parseValue parses one value: a string expression, number, boolean, None,
// list or dict.
func (p *parser) parseValue() any {
	if p.err != nil {
		return nil
	}
	t := p.peek()
	switch t.kind {
	case tokenString:
		return p.parseStringExpr()
	case tokenNumber:
		p.next()
		n := 0
		fmt.Sscanf(t.text, "%d", &n)
		return n
	case tokenIdent:
		switch t.text {
		case "True":
			p.next()
			return true
		case "False":
			p.next()
			return false
		case "None":
			p.next()
			return nil
		case "Var":
			return p.parseStringExpr()
		}
		p.fail(t, fmt.Sprintf("unexpected identifier %q in value position", t.text))
		return nil
	case tokenLBracket:
		return p.parseList()
	case tokenLBrace:
		return p.parseDict()
	default:
		p.fail(t, fmt.Sprintf("expected a value, got %s", describe(t)))
		return nil
	}
}

// parseStringExpr parses a chain of string atoms joined by "+", where an
// atom is a string literal or a Var('name') reference resolved against
// the variables seen so far.
func (p *parser) parseStringExpr() any {
	var sb strings.Builder
	for {
		atom, ok := p.parseStringAtom()
		if !ok {
			return nil
		}
		sb.WriteString(atom)
		if p.peek().kind != tokenPlus {
			return sb.String()
		}
		p.next()
	}
}

func (p *parser) parseStringAtom() (string, bool) {
	t := p.next()
	switch {
	case t.kind == tokenString:
		return t.text, true
	case t.kind == tokenIdent && t.text == "Var":
		p.expect(tokenLParen)
		name := p.expect(tokenString)
		p.expect(tokenRParen)
		if p.err != nil {
			return "", false
		}
		value, defined := p.vars[name.text]
		if !defined {
			p.fail(name, fmt.Sprintf("reference to undefined variable %q", name.text))
			return "", false
		}
		return value, true
	default:
		p.fail(t, fmt.Sprintf("expected a string, got %s", describe(t)))
		return "", false
	}
}

func (p *parser) parseList() any {
	p.expect(tokenLBracket)
	var items []any
	for p.err == nil && p.peek().kind != tokenRBracket {
		items = append(items, p.parseValue())
		if p.peek().kind == tokenComma {
			p.next()
			continue
		}
		break
	}
	p.expect(tokenRBracket)
	return items
}

func (p *parser) parseDict() any {
	p.expect(tokenLBrace)
	dict := map[string]any{}
	for p.err == nil && p.peek().kind != tokenRBrace {
		key := p.expect(tokenString)
		p.expect(tokenColon)
		dict[key.text] = p.parseValue()
		if p.peek().kind == tokenComma {
			p.next()
			continue
		}
		break
	}
	p.expect(tokenRBrace)
	return dict
}
