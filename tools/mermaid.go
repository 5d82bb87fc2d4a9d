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

package tools

import (
	"fmt"
	"io"
	"strings"

	"github.com/Comcast/regular/core"
)

type MermaidOpts struct {
	// ShowPredicates will result in an edge label with the
	// predicate names.
	ShowPredicates bool `json:"showPredicates"`

	// Direction is the Mermaid graph direction.  Default is "LR".
	Direction string `json:"direction,omitempty"`

	// InitialFill is the fill color for initial nodes.
	InitialFill string `json:"initialFill,omitempty"`

	// ActiveFill is the fill color for Active nodes.
	ActiveFill string `json:"activeFill,omitempty"`

	// Active nodes get ActiveFill.
	Active []core.Node `json:"active,omitempty"`
}

// DefaultMermaidOpts are used when Mermaid gets nil options.
var DefaultMermaidOpts = MermaidOpts{
	ShowPredicates: true,
	Direction:      "LR",
	InitialFill:    "#bcf2db",
	ActiveFill:     "#f98b8b",
}

func mermaidLabel(s string) string {
	s = strings.ReplaceAll(s, `"`, "#quot;")
	return truncate(s, 40)
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the given automaton.
//
// Complement scopes are subgraphs.  Epsilon edges are dotted, and
// an edge guarded by an inactive node is labeled with "¬".
func Mermaid[S any](a *core.Automaton[S], w io.Writer, opts *MermaidOpts) error {
	if opts == nil {
		o := DefaultMermaidOpts
		opts = &o
	}
	dir := opts.Direction
	if dir == "" {
		dir = "LR"
	}

	var err error
	f := func(format string, args ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w, format+"\n", args...)
		}
	}

	f("graph %s", dir)

	accept := a.Acceptance()
	node := func(indent string, n core.Node) {
		if n == accept.Node {
			label := n.String()
			if !accept.Positive {
				label = "¬" + label
			}
			f(`%s%s((("%s")))`, indent, n, label)
			return
		}
		f(`%s%s(("%s"))`, indent, n, n)
	}

	children := make(map[core.Scope][]core.Scope)
	for _, s := range a.Scopes() {
		p := a.Parent(s)
		children[p] = append(children[p], s)
	}
	owned := make(map[core.Scope][]core.Node)
	for _, n := range a.Nodes() {
		owned[a.Owner(n)] = append(owned[a.Owner(n)], n)
	}

	var scope func(s core.Scope, indent string)
	scope = func(s core.Scope, indent string) {
		inner := indent
		if s != core.Top {
			f(`%ssubgraph %s ["not %s"]`, indent, s, s)
			inner += "  "
		}
		for _, n := range owned[s] {
			node(inner, n)
		}
		for _, c := range children[s] {
			scope(c, inner)
		}
		if s != core.Top {
			f("%send", indent)
		}
	}
	scope(core.Top, "  ")

	guard := func(c core.Condition) string {
		if c.Positive {
			return ""
		}
		return "¬"
	}

	for _, e := range a.PredicateEdges() {
		label := guard(e.Source)
		if opts.ShowPredicates {
			names := make([]string, len(e.Predicates))
			for i, p := range e.Predicates {
				names[i] = p.Name
			}
			label += strings.Join(names, " | ")
		}
		if label == "" {
			f("  %s --> %s", e.Source.Node, e.Target)
			continue
		}
		f(`  %s -- "%s" --> %s`, e.Source.Node, mermaidLabel(label), e.Target)
	}

	for _, e := range a.EpsilonEdges() {
		if g := guard(e.Source); g != "" {
			f(`  %s -. "%s" .-> %s`, e.Source.Node, g, e.Target)
			continue
		}
		f("  %s -.-> %s", e.Source.Node, e.Target)
	}

	if opts.InitialFill != "" {
		for _, n := range a.Initial() {
			f("  style %s fill:%s", n, opts.InitialFill)
		}
	}
	if opts.ActiveFill != "" {
		for _, n := range opts.Active {
			f("  style %s fill:%s", n, opts.ActiveFill)
		}
	}

	return err
}
