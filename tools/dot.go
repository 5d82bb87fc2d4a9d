/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

// Package tools renders and analyzes automata and specs.
package tools

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"html"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Comcast/regular/core"
)

// DotOpts controls Dot output.
type DotOpts struct {
	// Active nodes are drawn in red.  Usually these come from a
	// core.Stride.
	Active []core.Node

	// Scopes, if true, draws each complement scope as a cluster.
	Scopes bool

	// MaxLabel truncates long predicate labels.  Zero means 40.
	MaxLabel int
}

func (o *DotOpts) maxLabel() int {
	if o == nil || o.MaxLabel <= 0 {
		return 40
	}
	return o.MaxLabel
}

func truncate(s string, n int) string {
	if rs := []rune(s); n < len(rs) {
		return string(rs[:n-1]) + "…"
	}
	return s
}

// Dot makes a Graphviz dot file for the given automaton.
//
// Initial nodes are bold.  The acceptance node is a double circle,
// dashed if acceptance requires the node to be inactive.  Epsilon
// edges are dashed, and an edge guarded by an inactive node has a
// hollow tail.
func Dot[S any](a *core.Automaton[S], w io.Writer, opts *DotOpts) error {
	if opts == nil {
		opts = &DotOpts{Scopes: true}
	}

	active := core.NewNodeSet(opts.Active...)
	initial := core.NewNodeSet(a.Initial()...)
	accept := a.Acceptance()

	var err error
	f := func(format string, args ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w, format+"\n", args...)
		}
	}

	f("digraph G {")
	f(`  graph [rankdir=LR,nodesep=0.3,ranksep=0.5]`)
	f(`  node [shape="circle" style="filled" fillcolor="#99ddc8" fontsize="10"]`)
	f(`  edge [fontsize="10"]`)

	node := func(indent string, n core.Node) {
		var (
			shape     = "circle"
			style     = "filled"
			color     = "black"
			fillcolor = "#99ddc8"
		)
		if initial.Has(n) {
			style += ",bold"
			fillcolor = "#52aa5e"
		}
		if n == accept.Node {
			shape = "doublecircle"
			if !accept.Positive {
				style += ",dashed"
			}
		}
		if active.Has(n) {
			color = "red"
			fillcolor = "#f98b8b"
		}
		f(`%s%s [shape="%s", style="%s", color="%s", fillcolor="%s"]`,
			indent, n, shape, style, color, fillcolor)
	}

	// Nodes, grouped by scope.
	children := make(map[core.Scope][]core.Scope)
	for _, s := range a.Scopes() {
		p := a.Parent(s)
		children[p] = append(children[p], s)
	}
	owned := make(map[core.Scope][]core.Node)
	for _, n := range a.Nodes() {
		owned[a.Owner(n)] = append(owned[a.Owner(n)], n)
	}

	var scope func(s core.Scope, depth int)
	scope = func(s core.Scope, depth int) {
		indent := strings.Repeat("  ", depth+1)
		if s != core.Top && opts.Scopes {
			f(`%ssubgraph cluster_%s {`, indent, s)
			f(`%s  label="%s" style="dashed" color="#2d93ad"`, indent, s)
			indent += "  "
		}
		for _, n := range owned[s] {
			node(indent, n)
		}
		for _, c := range children[s] {
			scope(c, depth+1)
		}
		if s != core.Top && opts.Scopes {
			f(`%s}`, strings.Repeat("  ", depth+1))
		}
	}
	scope(core.Top, 0)

	tail := func(c core.Condition) string {
		if c.Positive {
			return "none"
		}
		return "odot"
	}

	for _, e := range a.PredicateEdges() {
		names := make([]string, len(e.Predicates))
		for i, p := range e.Predicates {
			names[i] = p.Name
		}
		label := html.EscapeString(truncate(strings.Join(names, " | "), opts.maxLabel()))
		color := "black"
		if active.Has(e.Target) {
			color = "red"
		}
		f(`  %s -> %s [dir="both", arrowtail="%s", color="%s", label=<%s>]`,
			e.Source.Node, e.Target, tail(e.Source), color, label)
	}

	for _, e := range a.EpsilonEdges() {
		f(`  %s -> %s [dir="both", arrowtail="%s", style="dashed", color="#888888"]`,
			e.Source.Node, e.Target, tail(e.Source))
	}

	f("}")

	return err
}

// PNG generates a PNG image based on output from Dot.
//
// This function with write two files: basename.dot and basename.png,
// where the basename is the given string.  Requires the Graphviz
// "dot" executable.
func PNG[S any](a *core.Automaton[S], basename string, opts *DotOpts) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err = Dot(a, dotfile, opts); err != nil {
		dotfile.Close()
		return pngname, err
	}
	if err = dotfile.Close(); err != nil {
		return pngname, err
	}
	if err := exec.Command("dot", "-Tpng", "-o", pngname, dotname).Run(); err != nil {
		return pngname, err
	}
	return pngname, nil
}
