package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Comcast/regular/core"
	"github.com/Comcast/regular/tools"
	"github.com/Comcast/regular/values"
	"github.com/spf13/cobra"
)

var (
	renderSrc   source
	renderAfter string

	dotPNG      string
	dotNoScopes bool

	htmlCSS   []string
	htmlGraph bool
	htmlOut   string
)

var dotCmd = &cobra.Command{
	Use:   "dot (-e EXPR | -f SPEC)",
	Short: "Render an automaton as Graphviz dot",
	Example: `  rmatch dot -e '!("a" "b")' | dot -Tpng > not-ab.png
  rmatch dot -f turnstile.yaml --after '["coin"]' --png turnstile`,
	Args: cobra.NoArgs,
	RunE: runDot,
}

var mermaidCmd = &cobra.Command{
	Use:   "mermaid (-e EXPR | -f SPEC)",
	Short: "Render an automaton as a Mermaid graph",
	Args:  cobra.NoArgs,
	RunE:  runMermaid,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze (-e EXPR | -f SPEC)",
	Short: "Summarize the structure of an automaton as JSON",
	Args:  cobra.NoArgs,
	RunE:  runAnalyze,
}

var htmlCmd = &cobra.Command{
	Use:   "html SPEC",
	Short: "Render a spec file as an HTML page",
	Args:  cobra.ExactArgs(1),
	RunE:  runHTML,
}

func init() {
	for _, cmd := range []*cobra.Command{dotCmd, mermaidCmd, analyzeCmd} {
		cmd.Flags().StringVarP(&renderSrc.expr, "expression", "e", "", "Expression in the text syntax")
		cmd.Flags().StringVarP(&renderSrc.specFile, "file", "f", "", "Spec file")
	}
	for _, cmd := range []*cobra.Command{dotCmd, mermaidCmd} {
		cmd.Flags().StringVar(&renderAfter, "after", "", "Highlight the nodes active after this sequence (a JSON array)")
	}
	dotCmd.Flags().StringVar(&dotPNG, "png", "", "Write BASENAME.dot and BASENAME.png (requires Graphviz)")
	dotCmd.Flags().BoolVar(&dotNoScopes, "no-scopes", false, "Don't draw complement scopes as clusters")

	htmlCmd.Flags().StringSliceVar(&htmlCSS, "css", nil, "Stylesheet URLs")
	htmlCmd.Flags().BoolVar(&htmlGraph, "graph", true, "Include a Mermaid graph")
	htmlCmd.Flags().StringVarP(&htmlOut, "output", "o", "", "Output file (default stdout)")
}

// active returns the nodes active after renderAfter, if any.
func active(a *core.Automaton[values.Symbol]) ([]core.Node, error) {
	if renderAfter == "" {
		return nil, nil
	}
	seq, err := parseSeq(renderAfter)
	if err != nil {
		return nil, err
	}
	w := a.Walk(seq)
	if n := len(w.Strides); 0 < n {
		return w.Strides[n-1].Active, nil
	}
	return w.Initial, nil
}

func runDot(cmd *cobra.Command, args []string) error {
	a, err := renderSrc.automaton(contextOf(cmd))
	if err != nil {
		return err
	}
	opts := &tools.DotOpts{
		Scopes: !dotNoScopes,
	}
	if opts.Active, err = active(a); err != nil {
		return err
	}

	if dotPNG == "" {
		return tools.Dot(a, cmd.OutOrStdout(), opts)
	}

	filename, err := tools.PNG(a, dotPNG, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), filename)
	return nil
}

func runMermaid(cmd *cobra.Command, args []string) error {
	a, err := renderSrc.automaton(contextOf(cmd))
	if err != nil {
		return err
	}
	opts := tools.DefaultMermaidOpts
	if opts.Active, err = active(a); err != nil {
		return err
	}
	return tools.Mermaid(a, cmd.OutOrStdout(), &opts)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := renderSrc.automaton(contextOf(cmd))
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(tools.Analyze(a))
}

func runHTML(cmd *cobra.Command, args []string) error {
	s, err := loadSpec(contextOf(cmd), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if htmlOut != "" {
		f, err := os.Create(htmlOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return tools.RenderSpecPage(s, out, htmlCSS, htmlGraph)
}
