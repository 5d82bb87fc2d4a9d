package tools

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Comcast/regular/core"
)

func TestMermaid(t *testing.T) {
	a := core.Compile(core.TurnstileExpression())

	var buf bytes.Buffer
	if err := Mermaid(a, &buf, nil); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "graph LR\n") {
		t.Fatal(out)
	}
	if strings.Count(out, "subgraph ") != len(a.Scopes()) {
		t.Fatal("wrong number of subgraphs")
	}
	if strings.Count(out, "subgraph ") != strings.Count(out, "end\n") {
		t.Fatal("unbalanced subgraphs")
	}
	if !strings.Contains(out, "#quot;coin#quot;") {
		t.Fatal("no coin label")
	}
	if !strings.Contains(out, "-.->") {
		t.Fatal("no epsilon edges")
	}
	for _, n := range a.Initial() {
		if !strings.Contains(out, "style "+n.String()+" fill:") {
			t.Fatalf("%s isn't styled", n)
		}
	}
}

func TestMermaidOpts(t *testing.T) {
	a := core.Compile(core.Literal("a", "b"))
	active := a.Walk([]string{"a"}).Strides[0].Active

	var buf bytes.Buffer
	opts := &MermaidOpts{
		Direction:  "TB",
		ActiveFill: "red",
		Active:     active,
	}
	if err := Mermaid(a, &buf, opts); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "graph TB\n") {
		t.Fatal(out)
	}
	if strings.Contains(out, "coin") || strings.Contains(out, "#quot;a#quot;") {
		t.Fatal("predicates shouldn't be shown")
	}
	if len(active) == 0 || !strings.Contains(out, "style "+active[0].String()+" fill:red") {
		t.Fatal("active node isn't styled")
	}
}
