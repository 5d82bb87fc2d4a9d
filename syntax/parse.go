package syntax

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Comcast/regular/core"
	"github.com/Comcast/regular/values"
)

// Expression is an expression over JSON-like symbols.
type Expression = core.Expression[values.Symbol]

// UnknownName is returned when a Resolver doesn't know a predicate
// name.
type UnknownName struct {
	Name string
}

func (e *UnknownName) Error() string {
	return "unknown predicate @" + e.Name
}

// Resolver finds named predicates.
type Resolver interface {
	Resolve(name string) (values.Predicate, error)
}

// ResolverFunc is a function that's a Resolver.
type ResolverFunc func(name string) (values.Predicate, error)

func (f ResolverFunc) Resolve(name string) (values.Predicate, error) {
	return f(name)
}

// Predicates is a simple Resolver.
type Predicates map[string]values.Predicate

func (ps Predicates) Resolve(name string) (values.Predicate, error) {
	p, have := ps[name]
	if !have {
		return values.Predicate{}, &UnknownName{name}
	}
	return p, nil
}

// Parser turns source text into an Expression.
type Parser struct {
	// Resolver, if not nil, is consulted for each @name before the
	// built-in kinds.
	Resolver Resolver
}

// Parse uses a Parser that only knows the built-in kinds.
func Parse(src string) (Expression, error) {
	return (&Parser{}).Parse(src)
}

// MustParse is Parse that panics on error.
func MustParse(src string) Expression {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

// Parse parses the source.
func (p *Parser) Parse(src string) (Expression, error) {
	tree, err := ParseTree(src)
	if err != nil {
		return Expression{}, err
	}
	return p.alt(tree)
}

func (p *Parser) alt(a *Alt) (Expression, error) {
	var acc Expression
	for i, x := range a.Xors {
		e, err := p.xor(x)
		if err != nil {
			return acc, err
		}
		if i == 0 {
			acc = e
		} else {
			acc = acc.Or(e)
		}
	}
	return acc, nil
}

func (p *Parser) xor(x *Xor) (Expression, error) {
	var acc Expression
	for i, a := range x.Ands {
		e, err := p.and(a)
		if err != nil {
			return acc, err
		}
		if i == 0 {
			acc = e
		} else {
			acc = acc.Xor(e)
		}
	}
	return acc, nil
}

func (p *Parser) and(a *And) (Expression, error) {
	var acc Expression
	for i, s := range a.Seqs {
		e, err := p.seq(s)
		if err != nil {
			return acc, err
		}
		if i == 0 {
			acc = e
		} else {
			acc = acc.And(e)
		}
	}
	return acc, nil
}

func (p *Parser) seq(s *Seq) (Expression, error) {
	var acc Expression
	for i, u := range s.Units {
		e, err := p.unary(u)
		if err != nil {
			return acc, err
		}
		if i == 0 {
			acc = e
		} else {
			acc = acc.Then(e)
		}
	}
	return acc, nil
}

func (p *Parser) unary(u *Unary) (Expression, error) {
	if u.Not != nil {
		e, err := p.unary(u.Not)
		if err != nil {
			return e, err
		}
		return e.Not(), nil
	}
	return p.postfix(u.Postfix)
}

func (p *Parser) postfix(x *Postfix) (Expression, error) {
	e, err := p.atom(x.Atom)
	if err != nil {
		return e, err
	}
	for _, op := range x.Ops {
		switch {
		case op.Star:
			e = e.ZeroOrMore()
		case op.Plus:
			e = e.OneOrMore()
		case op.Optional:
			e = e.Optional()
		case op.Repeat != nil:
			r := op.Repeat
			if err := CheckCount(r.Min); err != nil {
				return e, err
			}
			if r.Max != nil {
				if err := CheckCount(*r.Max); err != nil {
					return e, err
				}
			}
			switch {
			case !r.Bounded:
				e = core.Repeated(e, r.Min)
			case r.Max == nil:
				e = core.RepeatedIn(e, r.Min, -1)
			default:
				e = core.RepeatedIn(e, r.Min, *r.Max)
			}
		}
	}
	return e, nil
}

func (p *Parser) atom(a *Atom) (Expression, error) {
	switch {
	case a.Paren != nil:
		if a.Paren.Body == nil {
			return core.Empty[values.Symbol](), nil
		}
		return p.alt(a.Paren.Body)
	case a.Any:
		return core.AnySymbol[values.Symbol](), nil
	case a.All:
		return core.Everything[values.Symbol](), nil
	case a.None:
		return core.Nothing[values.Symbol](), nil
	case a.Empty:
		return core.Empty[values.Symbol](), nil
	case a.Some:
		return core.Some[values.Symbol](), nil
	}

	pred, err := p.pred(a.Sym.Pred)
	if err != nil {
		return Expression{}, fmt.Errorf("%s: %w", a.Sym.Pos, err)
	}
	if a.Sym.Reject {
		return core.RejectPredicate(pred), nil
	}
	return core.RequirePredicate(pred), nil
}

func (p *Parser) pred(x *Pred) (values.Predicate, error) {
	switch {
	case x.Named != nil:
		return p.resolve(strings.TrimPrefix(*x.Named, "@"))
	case x.Regexp != nil:
		re := *x.Regexp
		re = strings.ReplaceAll(re[1:len(re)-1], `\/`, `/`)
		return values.Regexp(re)
	case x.List != nil:
		l := x.List
		if l.To != nil {
			if 0 < len(l.Rest) {
				return values.Predicate{}, errors.New("a range has exactly two values")
			}
			return values.Between(l.First.Interface(), l.To.Interface()), nil
		}
		vs := []interface{}{l.First.Interface()}
		for _, v := range l.Rest {
			vs = append(vs, v.Interface())
		}
		return values.OneOf(vs...), nil
	}
	return values.Is(x.Value.Interface()), nil
}

func (p *Parser) resolve(name string) (values.Predicate, error) {
	if p.Resolver != nil {
		pred, err := p.Resolver.Resolve(name)
		if err == nil {
			return pred, nil
		}
		var unknown *UnknownName
		if !errors.As(err, &unknown) {
			return pred, err
		}
	}
	if pred, err := values.Kind(name); err == nil {
		return pred, nil
	}
	return values.Predicate{}, &UnknownName{name}
}
