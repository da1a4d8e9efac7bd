package main

import (
	"fmt"

	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/jonathan/cv-builder/internal/script"
	"github.com/spf13/cobra"
)

var validateScriptCmd = &cobra.Command{
	Use:   "validate-script [file]",
	Short: "Validate a step script and print its graph",
	Long: `Loads a step script JSON file (or the embedded default when no file is given), checks
its schema, field paths, branch targets and reachability, and prints the step graph.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidateScript,
}

func init() {
	rootCmd.AddCommand(validateScriptCmd)
}

func runValidateScript(cmd *cobra.Command, args []string) error {
	var (
		s   *script.Script
		err error
	)
	source := "embedded script"
	if len(args) == 1 {
		source = args[0]
		s, err = script.LoadFile(source)
	} else {
		s, err = script.Default()
	}
	if err != nil {
		return fmt.Errorf("invalid script (%s): %w", source, err)
	}

	out := cmd.OutOrStdout()
	observability.NewPrinter(out).PrintScript(s)
	_, _ = fmt.Fprintf(out, "✅ %s is valid\n", source)
	return nil
}
