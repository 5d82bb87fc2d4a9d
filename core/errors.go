package core

// InvariantViolation reports a broken internal contract: two
// operands of a combinator share a node, automata from different
// Arenas are combined, or a graph has an edge that can't be
// evaluated at any level.
//
// These are not user errors.  Combinators and the matching engine
// panic with an *InvariantViolation.  Compilation of an Expression
// never produces one.
type InvariantViolation struct {
	Op    string
	Msg   string
	Nodes []Node
}

func (e *InvariantViolation) Error() string {
	s := "regular: " + e.Op + ": " + e.Msg
	if 0 < len(e.Nodes) {
		s += " " + NewNodeSet(e.Nodes...).String()
	}
	return s
}

func violation(op, msg string, ns ...Node) *InvariantViolation {
	return &InvariantViolation{
		Op:    op,
		Msg:   msg,
		Nodes: ns,
	}
}
