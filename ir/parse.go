package ir

import (
	"strconv"
	"strings"

	"github.com/wippyai/rvsdg/errors"
	"github.com/wippyai/rvsdg/ir/internal/token"
)

// Parse reads a graph in text form:
//
//	;; comment
//	(let $a (int 1))
//	(let $r (region "a" "b"))
//	(let $e (end $r (port "p0" (unpack $r 0)) (port "p1" (apply "neg" (unpack $r 1)))))
//	(root (tuple (unpack (ifelse $c $e $e2 (operands $a $b)) 0)))
//
// Expressions are a $name bound by an earlier let, or one of
// (int N), (region "name"...), (unpack E N), (end E (port "name" E)...),
// (ifelse C T E (operands E...)), (apply "op" E...), (tuple E...).
// Every (region ...) form creates a new region; bind it with let to share it.
func Parse(src string) (*Graph, error) {
	p := &parser{
		tokens: token.Tokenize(src),
		names:  make(map[string]TermID),
		g:      New(),
	}
	if err := p.parseGraph(); err != nil {
		return nil, err
	}
	if err := Validate(p.g); err != nil {
		return nil, err
	}
	return p.g, nil
}

type parser struct {
	g      *Graph
	names  map[string]TermID
	tokens []token.Token
	pos    int
}

func (p *parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *parser) next() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) line() int {
	if t := p.peek(); t != nil {
		return t.Line
	}
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1].Line
	}
	return 1
}

func (p *parser) expect(typ token.Type) (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, errors.Syntax(p.line(), "unexpected end of input, expected %v", typ)
	}
	if t.Type != typ {
		return nil, errors.Syntax(t.Line, "expected %v, got %q", typ, t.Value)
	}
	return t, nil
}

func (p *parser) expectKeyword(kw string) error {
	t, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	if t.Value != kw {
		return errors.Syntax(t.Line, "expected %q, got %q", kw, t.Value)
	}
	return nil
}

func (p *parser) atRParen() bool {
	t := p.peek()
	return t != nil && t.Type == token.RParen
}

func (p *parser) parseGraph() error {
	for p.peek() != nil {
		if _, err := p.expect(token.LParen); err != nil {
			return err
		}
		kw, err := p.expect(token.Ident)
		if err != nil {
			return err
		}
		switch kw.Value {
		case "let":
			name, err := p.expect(token.Ident)
			if err != nil {
				return err
			}
			if !strings.HasPrefix(name.Value, "$") {
				return errors.Syntax(name.Line, "let name must start with '$', got %q", name.Value)
			}
			if _, dup := p.names[name.Value]; dup {
				return errors.New(errors.PhaseParse, errors.KindDuplicate).
					Line(name.Line).
					Detail("name %q bound twice", name.Value).
					Build()
			}
			id, err := p.parseExpr()
			if err != nil {
				return err
			}
			p.names[name.Value] = id
		case "root":
			id, err := p.parseExpr()
			if err != nil {
				return err
			}
			p.g.AddRoot(id)
		default:
			return errors.Syntax(kw.Line, "unknown top-level form %q", kw.Value)
		}
		if _, err := p.expect(token.RParen); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseExpr() (TermID, error) {
	t := p.next()
	if t == nil {
		return NoTerm, errors.Syntax(p.line(), "unexpected end of input, expected expression")
	}
	if t.Type == token.Ident && strings.HasPrefix(t.Value, "$") {
		id, ok := p.names[t.Value]
		if !ok {
			return NoTerm, errors.UnknownName(t.Line, t.Value)
		}
		return id, nil
	}
	if t.Type != token.LParen {
		return NoTerm, errors.Syntax(t.Line, "expected expression, got %q", t.Value)
	}

	head, err := p.expect(token.Ident)
	if err != nil {
		return NoTerm, err
	}

	var id TermID
	switch head.Value {
	case "int":
		v, err := p.parseInt()
		if err != nil {
			return NoTerm, err
		}
		id = p.g.Literal(v)

	case "region":
		var names []string
		for !p.atRParen() {
			s, err := p.expect(token.String)
			if err != nil {
				return NoTerm, err
			}
			names = append(names, s.Value)
		}
		id = p.g.Region(names...)

	case "unpack":
		src, err := p.parseExpr()
		if err != nil {
			return NoTerm, err
		}
		idx, err := p.parseInt()
		if err != nil {
			return NoTerm, err
		}
		id = p.g.Unpack(src, int(idx))

	case "end":
		region, err := p.parseExpr()
		if err != nil {
			return NoTerm, err
		}
		var ports []Port
		for !p.atRParen() {
			port, err := p.parsePort()
			if err != nil {
				return NoTerm, err
			}
			ports = append(ports, port)
		}
		id = p.g.RegionEnd(region, ports)

	case "ifelse":
		var branches [3]TermID
		for i := range branches {
			if branches[i], err = p.parseExpr(); err != nil {
				return NoTerm, err
			}
		}
		if _, err := p.expect(token.LParen); err != nil {
			return NoTerm, err
		}
		if err := p.expectKeyword("operands"); err != nil {
			return NoTerm, err
		}
		operands, err := p.parseExprs()
		if err != nil {
			return NoTerm, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return NoTerm, err
		}
		id = p.g.IfElse(branches[0], branches[1], branches[2], operands)

	case "apply":
		op, err := p.expect(token.String)
		if err != nil {
			return NoTerm, err
		}
		args, err := p.parseExprs()
		if err != nil {
			return NoTerm, err
		}
		id = p.g.Apply(op.Value, args...)

	case "tuple":
		elems, err := p.parseExprs()
		if err != nil {
			return NoTerm, err
		}
		id = p.g.Tuple(elems...)

	default:
		return NoTerm, errors.Syntax(head.Line, "unknown term %q", head.Value)
	}

	if _, err := p.expect(token.RParen); err != nil {
		return NoTerm, err
	}
	return id, nil
}

func (p *parser) parseExprs() ([]TermID, error) {
	var out []TermID
	for !p.atRParen() {
		id, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (p *parser) parsePort() (Port, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return Port{}, err
	}
	if err := p.expectKeyword("port"); err != nil {
		return Port{}, err
	}
	name, err := p.expect(token.String)
	if err != nil {
		return Port{}, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return Port{}, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return Port{}, err
	}
	return Port{Name: name.Value, Value: val}, nil
}

func (p *parser) parseInt() (int64, error) {
	t, err := p.expect(token.Number)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(strings.ReplaceAll(t.Value, "_", ""), 10, 64)
	if err != nil {
		return 0, errors.New(errors.PhaseParse, errors.KindSyntax).
			Line(t.Line).
			Value(t.Value).
			Cause(err).
			Detail("invalid integer %q", t.Value).
			Build()
	}
	return v, nil
}
