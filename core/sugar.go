package core

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// FormatValue renders a value the way the textual syntax writes it.
func FormatValue(v any) string {
	switch vv := v.(type) {
	case string:
		return strconv.Quote(vv)
	case nil:
		return "null"
	case fmt.Stringer:
		return vv.String()
	}
	return fmt.Sprint(v)
}

func literals[S any](vs []S) string {
	ss := make([]string, len(vs))
	for i, v := range vs {
		ss[i] = FormatValue(v)
	}
	return strings.Join(ss, ", ")
}

// IsPredicate accepts symbols equal to v.
func IsPredicate[S comparable](v S) Predicate[S] {
	return Predicate[S]{
		Name: FormatValue(v),
		Test: func(s S) bool { return s == v },
	}
}

// Is matches the one-symbol sequence [v].
func Is[S comparable](v S) Expression[S] {
	return RequirePredicate(IsPredicate(v))
}

// IsNot matches every one-symbol sequence except [v].
func IsNot[S comparable](v S) Expression[S] {
	return RejectPredicate(IsPredicate(v))
}

// OneOfPredicate accepts symbols equal to any of the given values.
func OneOfPredicate[S comparable](vs ...S) Predicate[S] {
	vs = slices.Clone(vs)
	return Predicate[S]{
		Name: "[" + literals(vs) + "]",
		Test: func(s S) bool { return slices.Contains(vs, s) },
	}
}

// OneOf matches a one-symbol sequence of any of the values.
func OneOf[S comparable](vs ...S) Expression[S] {
	return RequirePredicate(OneOfPredicate(vs...))
}

// NoneOf matches a one-symbol sequence of none of the values.
func NoneOf[S comparable](vs ...S) Expression[S] {
	return RejectPredicate(OneOfPredicate(vs...))
}

// BetweenPredicate accepts symbols in the closed range [lo, hi].
func BetweenPredicate[S cmp.Ordered](lo, hi S) Predicate[S] {
	return Predicate[S]{
		Name: "[" + FormatValue(lo) + ".." + FormatValue(hi) + "]",
		Test: func(s S) bool { return lo <= s && s <= hi },
	}
}

// Between matches a one-symbol sequence in the closed range [lo, hi].
func Between[S cmp.Ordered](lo, hi S) Expression[S] {
	return RequirePredicate(BetweenPredicate(lo, hi))
}

// Sequence matches the concatenation of the expressions.  No
// expressions matches the empty sequence.
func Sequence[S any](es ...Expression[S]) Expression[S] {
	if len(es) == 0 {
		return Empty[S]()
	}
	acc := es[0]
	for _, e := range es[1:] {
		acc = Then(acc, e)
	}
	return acc
}

// Alternatives matches what any of the expressions matches.  No
// expressions matches nothing.
func Alternatives[S any](es ...Expression[S]) Expression[S] {
	if len(es) == 0 {
		return Nothing[S]()
	}
	acc := es[0]
	for _, e := range es[1:] {
		acc = Or(acc, e)
	}
	return acc
}

// Literal matches exactly the given run of symbols.
func Literal[S comparable](vs ...S) Expression[S] {
	es := make([]Expression[S], len(vs))
	for i, v := range vs {
		es[i] = Is(v)
	}
	return Sequence(es...)
}

// Containing matches every sequence with a part that e matches.
func Containing[S any](e Expression[S]) Expression[S] {
	return Sequence(Everything[S](), e, Everything[S]())
}

// Repeated matches exactly n concatenated matches of e.
func Repeated[S any](e Expression[S], n int) Expression[S] {
	es := make([]Expression[S], 0, max(n, 0))
	for i := 0; i < n; i++ {
		es = append(es, e)
	}
	return Sequence(es...)
}

// RepeatedIn matches from lo to hi concatenated matches of e.  A
// negative hi means no upper bound.  When hi < lo (and hi isn't
// negative), nothing matches.
func RepeatedIn[S any](e Expression[S], lo, hi int) Expression[S] {
	lo = max(lo, 0)
	switch {
	case hi < 0:
		return Then(Repeated(e, lo), ZeroOrMore(e))
	case hi < lo:
		return Nothing[S]()
	case hi == lo:
		return Repeated(e, lo)
	}
	tail := Optional(e)
	for i := lo + 1; i < hi; i++ {
		tail = Optional(Then(e, tail))
	}
	if lo == 0 {
		return tail
	}
	return Then(Repeated(e, lo), tail)
}
