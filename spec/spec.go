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

// Package spec provides expression specifications: documents (YAML
// or JSON) that define an expression over JSON-like symbols along
// with named predicates and examples.
package spec

import (
	"context"
	"errors"
	"fmt"

	"github.com/Comcast/regular/core"
	"github.com/Comcast/regular/interpreters"
	"github.com/Comcast/regular/syntax"
	"github.com/Comcast/regular/values"
)

// Spec is a specification for a matcher.
//
// If a Spec has any predicates or an expression (and it should),
// then the Spec needs to be Compiled before use.
type Spec struct {
	// Name is the generic name for this matcher.  Something like
	// "turnstile".
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Version is the version of this spec.  Something like "1.2".
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Doc is documentation (Markdown) about what this spec
	// matches.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Syntax says how to read the Expression: "tree" (the
	// default) or "text".
	Syntax string `json:"syntax,omitempty" yaml:"syntax,omitempty"`

	// Expression is either a tree of nodes or, if Syntax is
	// "text", a string.
	Expression interface{} `json:"expression" yaml:"expression"`

	// Predicates are named predicates that the Expression can
	// reference.
	Predicates map[string]*PredicateSource `json:"predicates,omitempty" yaml:"predicates,omitempty"`

	// Examples, if any, are checked by Check.
	Examples *Examples `json:"examples,omitempty" yaml:"examples,omitempty"`

	compiled  bool
	expr      syntax.Expression
	automaton *core.Automaton[values.Symbol]
}

// PredicateSource defines a named predicate.
//
// Exactly one of Node, Pattern, or Source should be given.
type PredicateSource struct {
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Node is a predicate node like {"between":[1,3]}.
	Node interface{} `json:"node,omitempty" yaml:"node,omitempty"`

	// Pattern is a structural pattern (see values.Matcher).
	Pattern interface{} `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Interpreter names the interpreter for Source.  The default
	// is "ecmascript".
	Interpreter string `json:"interpreter,omitempty" yaml:"interpreter,omitempty"`

	// Source is code for the Interpreter.
	Source interface{} `json:"source,omitempty" yaml:"source,omitempty"`
}

// Examples are sequences that should be accepted and sequences
// that should be rejected.
type Examples struct {
	Accept [][]interface{} `json:"accept,omitempty" yaml:"accept,omitempty"`
	Reject [][]interface{} `json:"reject,omitempty" yaml:"reject,omitempty"`
}

// Compile compiles the predicates and the expression.
//
// The interpreters default to interpreters.Standard().
func (s *Spec) Compile(ctx context.Context, interps interpreters.Map) error {
	if interps == nil {
		interps = interpreters.Standard()
	}

	c := &compiler{
		ctx:       ctx,
		spec:      s,
		interps:   interps,
		preds:     make(map[string]values.Predicate),
		resolving: make(map[string]bool),
	}

	// Compile every named predicate even if the expression
	// doesn't use it.
	for name := range s.Predicates {
		if _, err := c.resolve(name); err != nil {
			return fmt.Errorf("predicate %s: %w", name, err)
		}
	}

	var (
		e   syntax.Expression
		err error
	)
	switch s.Syntax {
	case "", "tree":
		e, err = c.expr(s.Expression)
	case "text":
		src, is := s.Expression.(string)
		if !is {
			return &BadNode{s.Expression, "text syntax needs a string"}
		}
		e, err = c.text(src)
	default:
		return fmt.Errorf("unknown syntax %q", s.Syntax)
	}
	if err != nil {
		return err
	}

	if err = syntax.CheckCost(e, 0); err != nil {
		return err
	}

	s.expr = e
	s.automaton = core.Compile(e)
	s.compiled = true

	return nil
}

// Compiled reports whether Compile has succeeded.
func (s *Spec) Compiled() bool {
	return s.compiled
}

// Expr returns the compiled Expression.
func (s *Spec) Expr() (syntax.Expression, error) {
	if !s.compiled {
		return syntax.Expression{}, &SpecNotCompiled{s.Name}
	}
	return s.expr, nil
}

// Automaton returns the compiled Automaton.
func (s *Spec) Automaton() (*core.Automaton[values.Symbol], error) {
	if !s.compiled {
		return nil, &SpecNotCompiled{s.Name}
	}
	return s.automaton, nil
}

// Matches reports whether the Spec's expression accepts the
// sequence.
func (s *Spec) Matches(seq []interface{}) (bool, error) {
	a, err := s.Automaton()
	if err != nil {
		return false, err
	}
	return a.Matches(seq), nil
}

// Verdict is the result of running one example.
type Verdict struct {
	Sequence []interface{}
	Accept   bool
	Accepted bool
}

// OK reports whether the example got the right verdict.
func (v Verdict) OK() bool {
	return v.Accept == v.Accepted
}

// Verdicts runs the examples.
func (s *Spec) Verdicts() ([]Verdict, error) {
	a, err := s.Automaton()
	if err != nil {
		return nil, err
	}
	if s.Examples == nil {
		return nil, nil
	}
	var acc []Verdict
	for _, seq := range s.Examples.Accept {
		acc = append(acc, Verdict{seq, true, a.Matches(seq)})
	}
	for _, seq := range s.Examples.Reject {
		acc = append(acc, Verdict{seq, false, a.Matches(seq)})
	}
	return acc, nil
}

// Check runs the examples and returns an error (joined
// *ExampleFailed errors) for every one that got the wrong verdict.
func (s *Spec) Check() error {
	vs, err := s.Verdicts()
	if err != nil {
		return err
	}
	var errs []error
	for _, v := range vs {
		if !v.OK() {
			errs = append(errs, &ExampleFailed{
				Spec:     s.Name,
				Sequence: v.Sequence,
				Accept:   v.Accept,
			})
		}
	}
	return errors.Join(errs...)
}
