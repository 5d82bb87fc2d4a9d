package tools

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var evenSpec = `
name: evens
doc: |
  Sequences of **even** numbers.
syntax: text
expression: '@even+'
predicates:
  even:
    doc: An even number.
    source: x % 2 == 0
examples:
  accept: [[2], [2, 4]]
  reject: [[], [1]]
`

func TestRenderSpecHTML(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "evens.yaml")
	if err := os.WriteFile(filename, []byte(evenSpec), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("withoutGraph", func(t *testing.T) {
		out := bytes.NewBuffer(make([]byte, 0, 1024*128))

		err := ReadAndRenderSpecPage(context.Background(), filename, []string{"spec.css"}, out, false)
		if err != nil {
			t.Fatal(err)
		}

		page := out.String()
		for _, want := range []string{
			"<title>evens</title>",
			"<strong>even</strong>",
			"<code>@even+</code>",
			`class="predicateName">@even</span>`,
			"x % 2 == 0",
			`<tr class="ok"><td>accept</td><td><code>[2,4]</code></td>`,
			`<tr class="ok"><td>reject</td><td><code>[]</code></td>`,
		} {
			if !strings.Contains(page, want) {
				t.Fatalf("missing %q", want)
			}
		}
		if strings.Contains(page, "mermaid") || strings.Contains(page, "failed") {
			t.Fatal(page)
		}
	})

	t.Run("withGraph", func(t *testing.T) {
		out := bytes.NewBuffer(make([]byte, 0, 1024*128))

		err := ReadAndRenderSpecPage(context.Background(), filename, nil, out, true)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out.String(), `<pre class="mermaid">`) {
			t.Fatal("no graph")
		}
	})

	t.Run("missing", func(t *testing.T) {
		var out bytes.Buffer
		err := ReadAndRenderSpecPage(context.Background(), filename+".nope", nil, &out, true)
		if err == nil {
			t.Fatal("should have complained")
		}
	})
}
