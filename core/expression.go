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

package core

import (
	"strconv"
	"strings"
)

// Op is the variant of an Expression.
type Op int

const (
	OpNothing Op = iota
	OpEverything
	OpEmpty
	OpAnySymbol
	OpSome
	OpRequire
	OpReject
	OpOptional
	OpZeroOrMore
	OpOneOrMore
	OpNot
	OpThen
	OpOr
	OpAnd
	OpXor
)

var opNames = []string{
	"nothing", "everything", "empty", "anySymbol", "some",
	"require", "reject",
	"optional", "zeroOrMore", "oneOrMore", "not",
	"then", "or", "and", "xor",
}

func (o Op) String() string {
	if 0 <= o && int(o) < len(opNames) {
		return opNames[o]
	}
	return "op(" + strconv.Itoa(int(o)) + ")"
}

// Expression is a regular expression over symbols of type S.
//
// An Expression is an immutable tree.  The zero value matches
// nothing.  Compile turns an Expression into an Automaton.
type Expression[S any] struct {
	op          Op
	pred        Predicate[S]
	left, right *Expression[S]
}

// Op returns the variant.
func (e Expression[S]) Op() Op {
	return e.op
}

// Predicate returns the predicate of a Require or Reject.
func (e Expression[S]) Predicate() Predicate[S] {
	return e.pred
}

// Operands returns the subexpressions, if any.
func (e Expression[S]) Operands() []Expression[S] {
	switch {
	case e.left != nil && e.right != nil:
		return []Expression[S]{*e.left, *e.right}
	case e.left != nil:
		return []Expression[S]{*e.left}
	}
	return nil
}

// Size is the number of variants in the tree.
func (e Expression[S]) Size() int {
	n := 1
	for _, o := range e.Operands() {
		n += o.Size()
	}
	return n
}

// Cost estimates the work Compile does for e: the number of variants
// it visits, with everything under an Xor counted twice.  Counting
// stops once the total passes limit, so the result is exact only
// when it's at most limit.
func (e Expression[S]) Cost(limit int) int {
	var n int
	e.cost(1, limit, &n)
	return n
}

func (e Expression[S]) cost(weight, limit int, n *int) {
	if limit < *n {
		return
	}
	*n += weight
	if e.op == OpXor {
		weight *= 2
	}
	if e.left != nil {
		e.left.cost(weight, limit, n)
	}
	if e.right != nil {
		e.right.cost(weight, limit, n)
	}
}

func unary[S any](op Op, e Expression[S]) Expression[S] {
	return Expression[S]{op: op, left: &e}
}

func binary[S any](op Op, x, y Expression[S]) Expression[S] {
	return Expression[S]{op: op, left: &x, right: &y}
}

// Nothing matches no sequence, not even the empty one.
func Nothing[S any]() Expression[S] {
	return Expression[S]{op: OpNothing}
}

// Everything matches every sequence.
func Everything[S any]() Expression[S] {
	return Expression[S]{op: OpEverything}
}

// Empty matches only the empty sequence.
func Empty[S any]() Expression[S] {
	return Expression[S]{op: OpEmpty}
}

// AnySymbol matches every one-symbol sequence.
func AnySymbol[S any]() Expression[S] {
	return Expression[S]{op: OpAnySymbol}
}

// Some matches every sequence except the empty one.
func Some[S any]() Expression[S] {
	return Expression[S]{op: OpSome}
}

// Require matches a one-symbol sequence whose symbol passes the
// test.
func Require[S any](test func(S) bool) Expression[S] {
	return RequireNamed("@pred", test)
}

// RequireNamed is Require with a name for the predicate.
func RequireNamed[S any](name string, test func(S) bool) Expression[S] {
	return RequirePredicate(Predicate[S]{Name: name, Test: test})
}

// RequirePredicate is Require for a Predicate.
func RequirePredicate[S any](p Predicate[S]) Expression[S] {
	return Expression[S]{op: OpRequire, pred: p}
}

// Reject matches a one-symbol sequence whose symbol fails the test.
func Reject[S any](test func(S) bool) Expression[S] {
	return RejectNamed("@pred", test)
}

// RejectNamed is Reject with a name for the predicate.
func RejectNamed[S any](name string, test func(S) bool) Expression[S] {
	return RejectPredicate(Predicate[S]{Name: name, Test: test})
}

// RejectPredicate is Reject for a Predicate.
func RejectPredicate[S any](p Predicate[S]) Expression[S] {
	return Expression[S]{op: OpReject, pred: p}
}

// Optional matches the empty sequence or whatever e matches.
func Optional[S any](e Expression[S]) Expression[S] {
	return unary(OpOptional, e)
}

// ZeroOrMore matches zero or more concatenated matches of e.
func ZeroOrMore[S any](e Expression[S]) Expression[S] {
	return unary(OpZeroOrMore, e)
}

// OneOrMore matches one or more concatenated matches of e.
func OneOrMore[S any](e Expression[S]) Expression[S] {
	return unary(OpOneOrMore, e)
}

// Not matches exactly what e doesn't.
func Not[S any](e Expression[S]) Expression[S] {
	return unary(OpNot, e)
}

// Then matches xy where x matches first and y matches second.
func Then[S any](first, second Expression[S]) Expression[S] {
	return binary(OpThen, first, second)
}

// Or matches what either operand matches.
func Or[S any](x, y Expression[S]) Expression[S] {
	return binary(OpOr, x, y)
}

// And matches what both operands match.
func And[S any](x, y Expression[S]) Expression[S] {
	return binary(OpAnd, x, y)
}

// Xor matches what exactly one operand matches.
func Xor[S any](x, y Expression[S]) Expression[S] {
	return binary(OpXor, x, y)
}

func (e Expression[S]) Optional() Expression[S]   { return Optional(e) }
func (e Expression[S]) ZeroOrMore() Expression[S] { return ZeroOrMore(e) }
func (e Expression[S]) OneOrMore() Expression[S]  { return OneOrMore(e) }
func (e Expression[S]) Not() Expression[S]        { return Not(e) }

func (e Expression[S]) Then(o Expression[S]) Expression[S] { return Then(e, o) }
func (e Expression[S]) Or(o Expression[S]) Expression[S]   { return Or(e, o) }
func (e Expression[S]) And(o Expression[S]) Expression[S]  { return And(e, o) }
func (e Expression[S]) Xor(o Expression[S]) Expression[S]  { return Xor(e, o) }

// Binding strength in the textual form, loosest first.
const (
	precAlt = iota
	precXor
	precAnd
	precSeq
	precUnary
	precAtom
)

// String renders the Expression in the textual syntax.
//
// Predicates appear by name, so the result only parses back when
// the names are themselves valid syntax.
func (e Expression[S]) String() string {
	var b strings.Builder
	e.render(&b, precAlt)
	return b.String()
}

func (e Expression[S]) prec() int {
	switch e.op {
	case OpOr:
		return precAlt
	case OpXor:
		return precXor
	case OpAnd:
		return precAnd
	case OpThen:
		return precSeq
	case OpNot:
		return precUnary
	}
	return precAtom
}

func (e Expression[S]) render(b *strings.Builder, outer int) {
	if e.prec() < outer {
		b.WriteByte('(')
		defer b.WriteByte(')')
	}
	infix := func(sep string, left, right int) {
		e.left.render(b, left)
		b.WriteString(sep)
		e.right.render(b, right)
	}
	switch e.op {
	case OpNothing:
		b.WriteString("none")
	case OpEverything:
		b.WriteString("all")
	case OpEmpty:
		b.WriteString("()")
	case OpAnySymbol:
		b.WriteString(".")
	case OpSome:
		b.WriteString("some")
	case OpRequire:
		b.WriteString(e.pred.Name)
	case OpReject:
		b.WriteString("~" + e.pred.Name)
	case OpOptional:
		e.left.render(b, precAtom)
		b.WriteByte('?')
	case OpZeroOrMore:
		e.left.render(b, precAtom)
		b.WriteByte('*')
	case OpOneOrMore:
		e.left.render(b, precAtom)
		b.WriteByte('+')
	case OpNot:
		b.WriteByte('!')
		e.left.render(b, precUnary)
	case OpThen:
		infix(" ", precSeq, precUnary)
	case OpAnd:
		infix(" & ", precAnd, precSeq)
	case OpXor:
		infix(" ^ ", precXor, precAnd)
	case OpOr:
		infix(" | ", precAlt, precXor)
	default:
		b.WriteString(e.op.String())
	}
}
