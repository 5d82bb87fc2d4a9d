package main

import (
	"encoding/json"
	"fmt"
	"runtime"
	"time"

	"github.com/Comcast/regular/values"
	"github.com/spf13/cobra"
)

var (
	patternJS  string
	bindingsJS string
	patternN   int
)

var patternCmd = &cobra.Command{
	Use:   "pattern -p PATTERN SYMBOL...",
	Short: "Try a structural pattern against symbols",
	Long: `Pattern prints every set of bindings with which the pattern matches
each symbol.  An empty list means no match.  This is the matching that
a spec's "pattern" predicates do.`,
	Example: `  rmatch pattern -p '{"likes":"?liked"}' '{"likes":"tacos"}' '{"likes":["chips"]}'`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runPattern,
}

func init() {
	patternCmd.Flags().StringVarP(&patternJS, "pattern", "p", "", "Pattern in JSON")
	patternCmd.Flags().StringVarP(&bindingsJS, "bindings", "b", "{}", "Initial bindings in JSON")
	patternCmd.Flags().IntVar(&patternN, "bench", 0, "Number of times to match each symbol (and report time)")
	rootCmd.AddCommand(patternCmd)
}

func runPattern(cmd *cobra.Command, args []string) error {
	var (
		pattern  interface{}
		bindings values.Bindings
	)
	if err := json.Unmarshal([]byte(patternJS), &pattern); err != nil {
		return fmt.Errorf("bad pattern: %w", err)
	}
	if err := json.Unmarshal([]byte(bindingsJS), &bindings); err != nil {
		return fmt.Errorf("bad bindings: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, arg := range args {
		var x interface{}
		if err := json.Unmarshal([]byte(arg), &x); err != nil {
			return fmt.Errorf("bad symbol %s: %w", arg, err)
		}

		if 0 < patternN {
			if err := bench(cmd, pattern, x, bindings); err != nil {
				return err
			}
		}

		bss, err := values.DefaultMatcher.Match(pattern, x, bindings)
		if err != nil {
			return err
		}
		if bss == nil {
			bss = []values.Bindings{}
		}
		js, err := json.Marshal(bss)
		if err != nil {
			return err
		}

		mark := rejectColor.Sprint("no ")
		if 0 < len(bss) {
			mark = acceptColor.Sprint("yes")
		}
		fmt.Fprintf(out, "%s %s %s\n", mark, values.Key(x), js)
	}
	return nil
}

func bench(cmd *cobra.Command, pattern, x interface{}, bs values.Bindings) error {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	allocs := stats.TotalAlloc
	then := time.Now()
	for i := 0; i < patternN; i++ {
		if _, err := values.DefaultMatcher.Match(pattern, x, bs); err != nil {
			return err
		}
	}
	meanNanos := time.Since(then).Nanoseconds() / int64(patternN)

	runtime.ReadMemStats(&stats)
	allocated := (stats.TotalAlloc - allocs) / uint64(patternN)

	fmt.Fprintf(cmd.ErrOrStderr(), "%d iterations, %d mean ns/Match, %d mean bytes allocated per Match\n",
		patternN, meanNanos, allocated)
	return nil
}
