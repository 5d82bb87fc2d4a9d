package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Comcast/regular/sio"
	"github.com/Comcast/regular/storage/bolt"
	"github.com/Comcast/regular/tools/expect"
	"github.com/jsccast/yaml"
	"github.com/spf13/cobra"
)

var expectOpts struct {
	dir        string
	showStderr bool
	timeout    time.Duration
}

var expectCmd = &cobra.Command{
	Use:   "expect SESSION [-- COMMAND ARG...]",
	Short: "Run a test session of requests and expected results",
	Long: `Expect reads a session (YAML) of requests and result patterns and runs
it.  Without a command, requests go to a service in this process that
uses the library (--db).  With a command, requests go to the command's
stdin, and results come from its stdout.`,
	Example: `  rmatch expect turnstile.test.yaml
  rmatch expect turnstile.test.yaml -- rmatch serve --stdio --db specs.db`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExpect,
}

func init() {
	expectCmd.Flags().StringVarP(&expectOpts.dir, "dir", "d", "", "Working directory for the command")
	expectCmd.Flags().BoolVarP(&expectOpts.showStderr, "stderr", "e", true, "Show the command's stderr")
	expectCmd.Flags().DurationVarP(&expectOpts.timeout, "timeout", "t", time.Minute, "Timeout for the whole session")
	rootCmd.AddCommand(expectCmd)
}

func runExpect(cmd *cobra.Command, args []string) error {
	bs, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var s expect.Session
	if err = yaml.Unmarshal(bs, &s); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	s.ShowStderr = expectOpts.showStderr
	s.Verbose = verbose

	ctx, cancel := context.WithTimeout(contextOf(cmd), expectOpts.timeout)
	defer cancel()

	if 1 < len(args) {
		err = s.Run(ctx, expectOpts.dir, args[1:]...)
	} else {
		err = withLibrary(ctx, func(lib *bolt.Storage) error {
			return s.RunProcessor(ctx, sio.NewService(lib))
		})
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", acceptColor.Sprint("passed"), args[0])
	return nil
}
