package core

// Compile makes an Automaton that accepts exactly what the
// Expression matches.  Every call uses a fresh Builder.
func Compile[S any](e Expression[S]) *Automaton[S] {
	return NewBuilder[S]().Compile(e)
}

// Compile makes an Automaton from the Builder's Arena, so the result
// can be combined with other Automata from the same Builder.
//
// Compilation is total: every Expression compiles.
func (b *Builder[S]) Compile(e Expression[S]) *Automaton[S] {
	switch e.op {
	case OpNothing:
		return b.Nothing()
	case OpEverything:
		return b.Everything()
	case OpEmpty:
		return b.Empty()
	case OpAnySymbol:
		return b.AnySymbol()
	case OpSome:
		return b.AnySymbol().OneOrMore()
	case OpRequire:
		return b.Symbol(e.pred)
	case OpReject:
		return b.Symbol(e.pred.Negate())
	case OpOptional:
		return b.Compile(*e.left).Optional()
	case OpZeroOrMore:
		return b.Compile(*e.left).OneOrMore().Optional()
	case OpOneOrMore:
		return b.Compile(*e.left).OneOrMore()
	case OpNot:
		return b.Compile(*e.left).Not()
	case OpThen:
		return b.Compile(*e.left).Then(b.Compile(*e.right))
	case OpOr:
		return b.Compile(*e.left).Or(b.Compile(*e.right))
	case OpAnd:
		x, y := b.Compile(*e.left), b.Compile(*e.right)
		return x.Not().Or(y.Not()).Not()
	case OpXor:
		// Each operand is compiled twice; the copies share no nodes.
		x1, y1 := b.Compile(*e.left), b.Compile(*e.right)
		x2, y2 := b.Compile(*e.left), b.Compile(*e.right)
		return x1.And(y1.Not()).Or(x2.Not().And(y2))
	}
	panic(violation("compile", "unknown expression variant "+e.op.String()))
}
