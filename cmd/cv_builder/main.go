// Package main provides the cv_builder CLI: a guided conversation that builds a CV,
// an HTTP API over the same flow, and rendering and export tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "cv_builder",
	Short: "Guided CV builder",
	Long:  "cv_builder asks a fixed sequence of questions, fills a structured CV document from the answers, and renders it to HTML, LaTeX or PDF. An AI assistant can suggest answers for the free-text steps.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to JSON config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
