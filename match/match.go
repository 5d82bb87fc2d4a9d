/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package match is a small façade over the core matching engine.
//
// Everything here is optional.  A core.Automaton can be used
// directly.  The Matcher interface exists so that callers can hold
// matchers from different sources (compiled expressions, hand-built
// automata, plain functions) in one place.
package match

import (
	"iter"
	"slices"

	"github.com/Comcast/regular/core"
)

// Matcher decides whether a finite sequence of symbols matches.
type Matcher[S any] interface {
	Matches(seq []S) bool
	MatchesSeq(seq iter.Seq[S]) bool
}

// Any is a type-erased Matcher.
//
// The zero value matches nothing.
type Any[S any] struct {
	f func(iter.Seq[S]) bool
}

// New makes an Any from a function.
func New[S any](f func(seq iter.Seq[S]) bool) Any[S] {
	return Any[S]{f: f}
}

// Erase wraps any Matcher in an Any.
func Erase[S any](m Matcher[S]) Any[S] {
	if a, is := m.(Any[S]); is {
		return a
	}
	return Any[S]{f: m.MatchesSeq}
}

// Matches reports whether the sequence matches.
func (m Any[S]) Matches(seq []S) bool {
	return m.MatchesSeq(slices.Values(seq))
}

// MatchesSeq reports whether the sequence matches.
func (m Any[S]) MatchesSeq(seq iter.Seq[S]) bool {
	if m.f == nil {
		return false
	}
	return m.f(seq)
}

// For compiles the Expression and returns its Automaton as an Any.
func For[S any](e core.Expression[S]) Any[S] {
	return ForAutomaton(core.Compile(e))
}

// ForAutomaton wraps an Automaton.
func ForAutomaton[S any](a *core.Automaton[S]) Any[S] {
	return Any[S]{f: a.MatchesSeq}
}

// Func wraps a plain function over slices.
func Func[S any](f func(seq []S) bool) Any[S] {
	return Any[S]{
		f: func(seq iter.Seq[S]) bool {
			return f(slices.Collect(seq))
		},
	}
}

var (
	_ Matcher[int] = Any[int]{}
	_ Matcher[int] = (*core.Automaton[int])(nil)
)
