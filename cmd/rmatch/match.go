package main

import (
	"fmt"

	"github.com/Comcast/regular/values"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	matchSrc  source
	matchWalk bool
)

var (
	acceptColor = color.New(color.Bold, color.FgHiGreen)
	rejectColor = color.New(color.Bold, color.FgHiRed)
	nodeColor   = color.New(color.FgHiBlue)
)

var matchCmd = &cobra.Command{
	Use:   "match (-e EXPR | -f SPEC) SEQ...",
	Short: "Match sequences",
	Long: `Match reports whether the expression accepts each sequence.  A sequence
is a JSON array of symbols.`,
	Example: `  rmatch match -e '"coin"+' '["coin","coin"]' '["push"]'
  rmatch match -f turnstile.yaml --walk '["coin","push"]'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringVarP(&matchSrc.expr, "expression", "e", "", "Expression in the text syntax")
	matchCmd.Flags().StringVarP(&matchSrc.specFile, "file", "f", "", "Spec file")
	matchCmd.Flags().BoolVar(&matchWalk, "walk", false, "Show the active nodes after each symbol")
}

func runMatch(cmd *cobra.Command, args []string) error {
	a, err := matchSrc.automaton(contextOf(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, arg := range args {
		seq, err := parseSeq(arg)
		if err != nil {
			return err
		}

		if !matchWalk {
			verdict(cmd, a.Matches(seq), seq)
			continue
		}

		w := a.Walk(seq)
		fmt.Fprintf(out, "  %-24s %s\n", "", nodeColor.Sprint(w.Initial))
		for _, s := range w.Strides {
			mark := " "
			if s.Accepting {
				mark = acceptColor.Sprint("*")
			}
			fmt.Fprintf(out, "%s %-24s %s\n", mark, values.Key(s.Consumed), nodeColor.Sprint(s.Active))
		}
		verdict(cmd, w.Accepted, seq)
	}
	return nil
}

func verdict(cmd *cobra.Command, accepted bool, seq []interface{}) {
	v := rejectColor.Sprint("reject")
	if accepted {
		v = acceptColor.Sprint("accept")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", v, values.Key(seq))
}
