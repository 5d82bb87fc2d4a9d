package main

import (
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	colorMode  string
	dbFilename string
)

var rootCmd = &cobra.Command{
	Use:   "rmatch",
	Short: "Regular expressions over JSON symbols",
	Long: `rmatch compiles regular expressions whose symbols are JSON values
matched by predicates.  Expressions are closed under complement and
intersection.

An expression comes from -e (the text syntax) or from a spec file (-f),
which can also define named predicates and examples.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setColor(colorMode)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Color output: auto, always, never")
	rootCmd.PersistentFlags().StringVar(&dbFilename, "db", "specs.db", "Spec library database")

	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dotCmd)
	rootCmd.AddCommand(mermaidCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(htmlCmd)
	rootCmd.AddCommand(libCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setColor(mode string) {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		// fatih/color already checked for a terminal.
		if os.Getenv("NO_COLOR") != "" {
			color.NoColor = true
		}
	}
}

func logf(format string, args ...interface{}) {
	if verbose {
		log.Printf(format, args...)
	}
}
