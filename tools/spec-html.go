package tools

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"sort"

	"github.com/Comcast/regular/spec"
	"github.com/Comcast/regular/values"

	md "github.com/russross/blackfriday/v2"
	"gopkg.in/yaml.v2"
)

func yamlString(x interface{}) string {
	bs, err := yaml.Marshal(x)
	if err != nil {
		return values.Key(x)
	}
	return string(bs)
}

// RenderSpecHTML writes an HTML fragment that documents the spec: its
// doc, expression, named predicates, and (if the spec is compiled)
// the verdicts for its examples.
func RenderSpecHTML(s *spec.Spec, out io.Writer) error {
	var err error
	f := func(format string, args ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(out, format+"\n", args...)
		}
	}
	esc := html.EscapeString

	if s.Version != "" {
		f(`<div class="specVersion">version <code>%s</code></div>`, esc(s.Version))
	}
	f(`<div class="specDoc doc">%s</div>`, md.Run([]byte(s.Doc)))

	{ // Expression
		f(`<div class="expression">`)
		if e, err := s.Expr(); err == nil {
			f(`<div class="text"><code>%s</code></div>`, esc(e.String()))
		}
		if src, is := s.Expression.(string); is {
			f(`<div class="code"><pre>%s</pre></div>`, esc(src))
		} else {
			f(`<div class="code"><pre>%s</pre></div>`, esc(yamlString(s.Expression)))
		}
		f(`</div>`)
	}

	if 0 < len(s.Predicates) {
		names := make([]string, 0, len(s.Predicates))
		for name := range s.Predicates {
			names = append(names, name)
		}
		sort.Strings(names)

		f(`<div class="predicates"><table>`)
		for _, name := range names {
			p := s.Predicates[name]
			if p == nil {
				continue
			}
			f(`<tr class="predicate"><td><span id="%s" class="predicateName">@%s</span></td><td>`, esc(name), esc(name))
			if p.Doc != "" {
				f(`<div class="predicateDoc doc">%s</div>`, md.Run([]byte(p.Doc)))
			}
			switch {
			case p.Node != nil:
				f(`<div class="code"><pre>%s</pre></div>`, esc(yamlString(p.Node)))
			case p.Pattern != nil:
				f(`<div>pattern</div><div class="code"><pre>%s</pre></div>`, esc(yamlString(p.Pattern)))
			case p.Source != nil:
				interp := p.Interpreter
				if interp == "" {
					interp = "ecmascript"
				}
				src, is := p.Source.(string)
				if !is {
					src = yamlString(p.Source)
				}
				f(`<div>interpreter: <span class="interpreter">%s</span></div>`, esc(interp))
				f(`<div class="code"><pre>%s</pre></div>`, esc(src))
			}
			f(`</td></tr>`)
		}
		f(`</table></div>`)
	}

	if s.Compiled() && s.Examples != nil {
		vs, verr := s.Verdicts()
		if verr != nil {
			return verr
		}
		f(`<div class="examples"><table>`)
		for _, v := range vs {
			class, want := "ok", "reject"
			if !v.OK() {
				class = "failed"
			}
			if v.Accept {
				want = "accept"
			}
			f(`<tr class="%s"><td>%s</td><td><code>%s</code></td><td>%s</td></tr>`,
				class, want, esc(values.Key(v.Sequence)), class)
		}
		f(`</table></div>`)
	}

	return err
}

// RenderSpecPage writes a complete HTML page for the spec.  If
// includeGraph is true and the spec is compiled, the page includes a
// Mermaid rendering of the automaton.
func RenderSpecPage(s *spec.Spec, out io.Writer, cssFiles []string, includeGraph bool) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/spec-html.css"}
	}

	title := html.EscapeString(s.Name)

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, title)

	if includeGraph {
		fmt.Fprintf(out, `
  <script src="https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"></script>
  <script>mermaid.initialize({startOnLoad: true});</script>
`)
	}

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, title)

	if includeGraph {
		if a, err := s.Automaton(); err == nil {
			var buf bytes.Buffer
			if err = Mermaid(a, &buf, nil); err != nil {
				return err
			}
			fmt.Fprintf(out, "<pre class=\"mermaid\">\n%s</pre>\n", html.EscapeString(buf.String()))
		}
	}

	if err := RenderSpecHTML(s, out); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, `
  </body>
</html>
`)

	return err
}

// ReadAndRenderSpecPage loads, compiles, and renders the spec in the
// given file.
func ReadAndRenderSpecPage(ctx context.Context, filename string, cssFiles []string, out io.Writer, includeGraph bool) error {
	s, err := spec.LoadFile(filename)
	if err != nil {
		return err
	}
	if err = s.Compile(ctx, nil); err != nil {
		return err
	}
	return RenderSpecPage(s, out, cssFiles, includeGraph)
}
