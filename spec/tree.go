package spec

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/Comcast/regular/core"
	"github.com/Comcast/regular/interpreters"
	"github.com/Comcast/regular/syntax"
	"github.com/Comcast/regular/values"
)

// Expression tree nodes are maps with exactly one key, which gives
// the kind of the node.  The kinds without arguments can also be
// given as plain strings.
var (
	// AtomKinds take no argument.
	AtomKinds = []string{"nothing", "everything", "empty", "any", "some"}

	// PredicateKinds each match a single symbol.
	PredicateKinds = []string{
		"is", "isNot", "oneOf", "noneOf", "between",
		"regexp", "contains", "cron", "js", "kind", "pattern",
		"ref", "reject",
	}

	// CompoundKinds take other nodes.
	CompoundKinds = []string{
		"literal", "optional", "zeroOrMore", "oneOrMore", "not",
		"then", "seq", "or", "and", "xor", "repeat", "text",
	}
)

type compiler struct {
	ctx       context.Context
	spec      *Spec
	interps   interpreters.Map
	preds     map[string]values.Predicate
	resolving map[string]bool
}

// node returns the kind and argument of a tree node.
func (c *compiler) node(x interface{}) (string, interface{}, error) {
	switch vv := values.Normalize(x).(type) {
	case string:
		if !slices.Contains(AtomKinds, vv) {
			return "", nil, &BadNode{x, "only " + fmt.Sprint(AtomKinds) + " can be strings"}
		}
		return vv, nil, nil
	case map[string]interface{}:
		if len(vv) != 1 {
			return "", nil, &BadNode{x, "a node has exactly one key"}
		}
		for k, v := range vv {
			return k, v, nil
		}
	}
	return "", nil, &BadNode{x, "not a node"}
}

func (c *compiler) list(x, arg interface{}) ([]interface{}, error) {
	xs, is := arg.([]interface{})
	if !is {
		return nil, &BadNode{x, "wanted a list"}
	}
	return xs, nil
}

func (c *compiler) exprs(x, arg interface{}) ([]syntax.Expression, error) {
	xs, err := c.list(x, arg)
	if err != nil {
		return nil, err
	}
	es := make([]syntax.Expression, len(xs))
	for i, y := range xs {
		if es[i], err = c.expr(y); err != nil {
			return nil, err
		}
	}
	return es, nil
}

func fold(es []syntax.Expression, zero syntax.Expression, f func(x, y syntax.Expression) syntax.Expression) syntax.Expression {
	if len(es) == 0 {
		return zero
	}
	acc := es[0]
	for _, e := range es[1:] {
		acc = f(acc, e)
	}
	return acc
}

func (c *compiler) expr(x interface{}) (syntax.Expression, error) {
	var none syntax.Expression

	kind, arg, err := c.node(x)
	if err != nil {
		return none, err
	}

	switch kind {
	case "nothing":
		return core.Nothing[values.Symbol](), nil
	case "everything":
		return core.Everything[values.Symbol](), nil
	case "empty":
		return core.Empty[values.Symbol](), nil
	case "any":
		return core.AnySymbol[values.Symbol](), nil
	case "some":
		return core.Some[values.Symbol](), nil

	case "optional", "zeroOrMore", "oneOrMore", "not":
		e, err := c.expr(arg)
		if err != nil {
			return none, err
		}
		switch kind {
		case "optional":
			return e.Optional(), nil
		case "zeroOrMore":
			return e.ZeroOrMore(), nil
		case "oneOrMore":
			return e.OneOrMore(), nil
		}
		return e.Not(), nil

	case "then", "seq":
		es, err := c.exprs(x, arg)
		if err != nil {
			return none, err
		}
		return fold(es, core.Empty[values.Symbol](), core.Then[values.Symbol]), nil
	case "or":
		es, err := c.exprs(x, arg)
		if err != nil {
			return none, err
		}
		return fold(es, core.Nothing[values.Symbol](), core.Or[values.Symbol]), nil
	case "and":
		es, err := c.exprs(x, arg)
		if err != nil {
			return none, err
		}
		return fold(es, core.Everything[values.Symbol](), core.And[values.Symbol]), nil
	case "xor":
		es, err := c.exprs(x, arg)
		if err != nil {
			return none, err
		}
		if len(es) != 2 {
			return none, &BadNode{x, "xor takes exactly two nodes"}
		}
		return es[0].Xor(es[1]), nil

	case "literal":
		xs, err := c.list(x, arg)
		if err != nil {
			return none, err
		}
		es := make([]syntax.Expression, len(xs))
		for i, v := range xs {
			es[i] = core.RequirePredicate(values.Is(v))
		}
		return core.Sequence(es...), nil

	case "repeat":
		return c.repeat(x, arg)

	case "text":
		src, is := arg.(string)
		if !is {
			return none, &BadNode{x, "text needs a string"}
		}
		return c.text(src)

	case "isNot":
		return core.RejectPredicate(values.Is(arg)), nil
	case "noneOf":
		xs, err := c.list(x, arg)
		if err != nil {
			return none, err
		}
		return core.RejectPredicate(values.OneOf(xs...)), nil
	case "reject":
		p, err := c.pred(arg)
		if err != nil {
			return none, err
		}
		return core.RejectPredicate(p), nil
	}

	if slices.Contains(PredicateKinds, kind) {
		p, err := c.predicate(x, kind, arg)
		if err != nil {
			return none, err
		}
		return core.RequirePredicate(p), nil
	}

	return none, &UnknownNodeKind{kind}
}

func integer(v interface{}) (int, bool) {
	f, is := values.Normalize(v).(float64)
	if !is || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// repeat handles {"repeat":{"expr":X,"min":2,"max":3}}.  A missing
// (or negative) max means no upper bound.
func (c *compiler) repeat(x, arg interface{}) (syntax.Expression, error) {
	var none syntax.Expression

	m, is := arg.(map[string]interface{})
	if !is {
		return none, &BadNode{x, "repeat needs a map"}
	}
	e, err := c.expr(m["expr"])
	if err != nil {
		return none, err
	}

	lo, hi := 0, -1
	if v, have := m["min"]; have {
		if lo, is = integer(v); !is || lo < 0 {
			return none, &BadNode{x, "min should be a non-negative integer"}
		}
	}
	if v, have := m["max"]; have {
		if hi, is = integer(v); !is {
			return none, &BadNode{x, "max should be an integer"}
		}
	}
	if err = syntax.CheckCount(lo); err != nil {
		return none, &BadNode{x, err.Error()}
	}
	if 0 <= hi {
		if err = syntax.CheckCount(hi); err != nil {
			return none, &BadNode{x, err.Error()}
		}
	}
	return core.RepeatedIn(e, lo, hi), nil
}

func (c *compiler) text(src string) (syntax.Expression, error) {
	p := &syntax.Parser{
		Resolver: syntax.ResolverFunc(func(name string) (values.Predicate, error) {
			pred, err := c.resolve(name)
			var unknown *UnknownPredicate
			if errors.As(err, &unknown) {
				return pred, &syntax.UnknownName{Name: name}
			}
			return pred, err
		}),
	}
	return p.Parse(src)
}

// pred compiles a predicate node.
func (c *compiler) pred(x interface{}) (values.Predicate, error) {
	kind, arg, err := c.node(x)
	if err != nil {
		return values.Predicate{}, err
	}
	return c.predicate(x, kind, arg)
}

func (c *compiler) predicate(x interface{}, kind string, arg interface{}) (values.Predicate, error) {
	var none values.Predicate

	switch kind {
	case "is":
		return values.Is(arg), nil
	case "isNot":
		return values.Is(arg).Negate(), nil
	case "oneOf", "noneOf":
		xs, err := c.list(x, arg)
		if err != nil {
			return none, err
		}
		if kind == "noneOf" {
			return values.OneOf(xs...).Negate(), nil
		}
		return values.OneOf(xs...), nil
	case "between":
		xs, err := c.list(x, arg)
		if err != nil {
			return none, err
		}
		if len(xs) != 2 {
			return none, &BadNode{x, "between takes [lo, hi]"}
		}
		return values.Between(xs[0], xs[1]), nil
	case "regexp":
		s, is := arg.(string)
		if !is {
			return none, &BadNode{x, "regexp needs a string"}
		}
		return values.Regexp(s)
	case "contains":
		switch vv := arg.(type) {
		case string:
			return values.Contains(vv)
		case []interface{}:
			words := make([]string, len(vv))
			for i, w := range vv {
				s, is := w.(string)
				if !is {
					return none, &BadNode{x, "contains needs strings"}
				}
				words[i] = s
			}
			return values.Contains(words...)
		}
		return none, &BadNode{x, "contains needs a string or a list of strings"}
	case "cron":
		s, is := arg.(string)
		if !is {
			return none, &BadNode{x, "cron needs a string"}
		}
		return values.Cron(s)
	case "kind":
		s, is := arg.(string)
		if !is {
			return none, &BadNode{x, "kind needs a string"}
		}
		return values.Kind(s)
	case "pattern":
		return values.Pattern(arg), nil
	case "js":
		test, err := c.interpret("ecmascript", arg)
		if err != nil {
			return none, err
		}
		return values.Predicate{
			Name: "@js" + values.Key(arg),
			Test: test,
		}, nil
	case "ref":
		name, is := arg.(string)
		if !is {
			return none, &BadNode{x, "ref needs a name"}
		}
		return c.resolve(name)
	case "reject":
		p, err := c.pred(arg)
		if err != nil {
			return none, err
		}
		return p.Negate(), nil
	}

	if slices.Contains(AtomKinds, kind) || slices.Contains(CompoundKinds, kind) {
		return none, &BadNode{x, kind + " isn't a single-symbol predicate"}
	}
	return none, &UnknownNodeKind{kind}
}

func (c *compiler) interpret(interpreter string, src interface{}) (func(values.Symbol) bool, error) {
	i, err := c.interps.Find(interpreter)
	if err != nil {
		return nil, err
	}
	compiled, err := i.Compile(c.ctx, src)
	if err != nil {
		return nil, err
	}
	return i.Predicate(c.ctx, src, compiled)
}

// resolve compiles (once) the named predicate.
func (c *compiler) resolve(name string) (values.Predicate, error) {
	if p, have := c.preds[name]; have {
		return p, nil
	}
	def, have := c.spec.Predicates[name]
	if !have || def == nil {
		return values.Predicate{}, &UnknownPredicate{name}
	}
	if c.resolving[name] {
		return values.Predicate{}, &BadNode{name, "cyclic predicate reference"}
	}
	c.resolving[name] = true
	defer delete(c.resolving, name)

	var (
		p   values.Predicate
		err error
	)
	switch {
	case def.Node != nil:
		p, err = c.pred(def.Node)
	case def.Pattern != nil:
		p = values.Pattern(def.Pattern)
	case def.Source != nil:
		p.Test, err = c.interpret(def.Interpreter, def.Source)
	default:
		err = &BadNode{name, "predicate needs a node, a pattern, or a source"}
	}
	if err != nil {
		return p, err
	}

	p.Name = "@" + name
	c.preds[name] = p
	return p, nil
}
