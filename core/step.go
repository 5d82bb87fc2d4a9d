package core

import (
	"iter"
	"slices"
)

// State is the matching cursor: the active nodes of the Top level
// and the runs of every complement scope.
//
// A State is immutable.  Step returns a new one.
type State struct {
	top *run
}

// Active returns every active node, at any level, in ascending
// order.
func (st *State) Active() []Node {
	acc := make(NodeSet)
	st.top.each(func(r *run) {
		for n := range r.nodes {
			acc.Add(n)
		}
	})
	return acc.Sorted()
}

// Runs returns the number of distinct runs of complement scopes.
func (st *State) Runs() int {
	n := -1
	st.top.each(func(*run) { n++ })
	return n
}

// String gives the canonical content of the State.  Equal strings
// mean equivalent States.
func (st *State) String() string {
	if st == nil {
		return "nil"
	}
	return "{" + st.top.key + "}"
}

// Start returns the State before any symbol: the closure of the
// initial nodes.
func (a *Automaton[S]) Start() *State {
	p := a.mustPlan()
	return &State{
		top: a.start(p, Top),
	}
}

// Step consumes one symbol.
func (a *Automaton[S]) Step(st *State, s S) *State {
	p := a.mustPlan()
	return &State{
		top: a.advance(p, st.top, s),
	}
}

// Accepting reports whether the acceptance condition holds.
func (a *Automaton[S]) Accepting(st *State) bool {
	return st.top.holds(a.accept, a.owner[a.accept.Node])
}

// Matches reports whether the Automaton accepts the sequence.
//
// Every symbol is consumed.  Acceptance is only known at the end.
func (a *Automaton[S]) Matches(seq []S) bool {
	return a.MatchesSeq(slices.Values(seq))
}

// MatchesSeq is Matches for an iterator.  The caller is responsible
// for the sequence being finite.
func (a *Automaton[S]) MatchesSeq(seq iter.Seq[S]) bool {
	st := a.Start()
	for s := range seq {
		st = a.Step(st, s)
	}
	return a.Accepting(st)
}

// Stride records one Step.
type Stride[S any] struct {
	// Consumed is the symbol.
	Consumed S `json:"consumed"`

	// From is the State before the symbol.
	From *State `json:"-"`

	// To is the State after the symbol.
	To *State `json:"-"`

	// Active lists the nodes active in To.
	Active []Node `json:"active"`

	// Accepting reports whether To is accepting.
	Accepting bool `json:"accepting"`
}

// Walked represents the Strides taken by Walk.
type Walked[S any] struct {
	// Initial lists the nodes active before any symbol.
	Initial []Node `json:"initial"`

	// Start is the State before any symbol.
	Start *State `json:"-"`

	Strides []*Stride[S] `json:"strides"`

	// Accepted is the verdict for the whole sequence.
	Accepted bool `json:"accepted"`
}

// To returns the last State.
func (w *Walked[S]) To() *State {
	if n := len(w.Strides); 0 < n {
		return w.Strides[n-1].To
	}
	return w.Start
}

// Walk matches like Matches but records each Stride, which is
// useful for debugging and for rendering active nodes.
func (a *Automaton[S]) Walk(seq []S) *Walked[S] {
	st := a.Start()
	w := &Walked[S]{
		Initial: st.Active(),
		Start:   st,
		Strides: make([]*Stride[S], 0, len(seq)),
	}
	for _, s := range seq {
		next := a.Step(st, s)
		w.Strides = append(w.Strides, &Stride[S]{
			Consumed:  s,
			From:      st,
			To:        next,
			Active:    next.Active(),
			Accepting: a.Accepting(next),
		})
		st = next
	}
	w.Accepted = a.Accepting(st)
	return w
}
