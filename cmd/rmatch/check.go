package main

import (
	"fmt"

	"github.com/Comcast/regular/values"
	"github.com/spf13/cobra"
)

var checkQuiet bool

var checkCmd = &cobra.Command{
	Use:   "check SPEC...",
	Short: "Check spec files against their examples",
	Long: `Check compiles each spec file and runs its examples.  The command fails
if any spec doesn't compile or any example gets the wrong verdict.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "Only report problems")
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	problems := 0
	for _, filename := range args {
		s, err := loadSpec(contextOf(cmd), filename)
		if err != nil {
			fmt.Fprintf(out, "%s %s\n", rejectColor.Sprint("error"), err)
			problems++
			continue
		}
		vs, err := s.Verdicts()
		if err != nil {
			return err
		}
		failed := 0
		for _, v := range vs {
			if v.OK() {
				if !checkQuiet {
					fmt.Fprintf(out, "%s %s %s\n", acceptColor.Sprint("ok"), s.Name, values.Key(v.Sequence))
				}
				continue
			}
			failed++
			want := "accepted"
			if !v.Accept {
				want = "rejected"
			}
			fmt.Fprintf(out, "%s %s %s should be %s\n", rejectColor.Sprint("FAIL"), s.Name, values.Key(v.Sequence), want)
		}
		if 0 < failed {
			problems++
		}
		logf("%s: %d examples, %d failed", filename, len(vs), failed)
	}
	if 0 < problems {
		return fmt.Errorf("%d of %d specs had problems", problems, len(args))
	}
	return nil
}
