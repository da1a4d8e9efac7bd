package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/cv-builder/internal/document"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a CV JSON file with a template",
	Long: `Renders a structured CV document with one template, or with every registered template
when --all is set. Extra templates can be registered with --template-file.`,
	RunE: runRender,
}

var (
	renderInputFile     string
	renderOutput        string
	renderTemplate      string
	renderTemplateFiles []string
	renderAll           bool
)

func init() {
	renderCmd.Flags().StringVarP(&renderInputFile, "in", "i", "", "Path to CV JSON file (required)")
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Output file, or output directory with --all (default stdout)")
	renderCmd.Flags().StringVarP(&renderTemplate, "template", "t", "", "Template id (default from config)")
	renderCmd.Flags().StringArrayVar(&renderTemplateFiles, "template-file", nil, "Extra template file to register (repeatable)")
	renderCmd.Flags().BoolVar(&renderAll, "all", false, "Render with every template")

	if err := renderCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark flag as required: %v", err))
	}

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	renderer, err := newRenderer(cfg, renderTemplateFiles...)
	if err != nil {
		return err
	}

	doc, err := document.Load(renderInputFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if renderAll {
		if renderOutput == "" {
			return fmt.Errorf("--out directory is required with --all")
		}
		previews, err := renderer.RenderAll(context.Background(), doc)
		if err != nil {
			return err
		}
		paths, err := writePreviews(renderOutput, previews)
		if err != nil {
			return err
		}
		for _, path := range paths {
			_, _ = fmt.Fprintf(out, "Rendered %s\n", path)
		}
		return nil
	}

	templateID := renderTemplate
	if templateID == "" {
		templateID = cfg.DefaultTemplate
	}
	preview, err := renderer.Render(doc, templateID)
	if err != nil {
		return err
	}

	if renderOutput == "" {
		_, _ = fmt.Fprint(out, preview.Body)
		return nil
	}
	if err := writeFile(renderOutput, []byte(preview.Body)); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Rendered %s with %s\n", renderOutput, preview.TemplateID)
	return nil
}

// writePreviews writes each preview to dir as <template>.<ext>
func writePreviews(dir string, previews []*rendering.Preview) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(previews))
	for _, preview := range previews {
		path := filepath.Join(dir, preview.TemplateID+extensionFor(preview.Format))
		if err := os.WriteFile(path, []byte(preview.Body), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func extensionFor(format rendering.Format) string {
	if format == rendering.FormatLaTeX {
		return ".tex"
	}
	return ".html"
}

// writeFile writes data to path, creating the parent directory
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
