package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/cv-builder/internal/document"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/spf13/cobra"
)

var exportPDFCmd = &cobra.Command{
	Use:   "export-pdf",
	Short: "Export a CV JSON file to PDF",
	Long:  "Renders a structured CV document with an HTML template and prints the CV element to an A4 PDF with headless Chrome.",
	RunE:  runExportPDF,
}

var (
	exportPDFInputFile string
	exportPDFOutput    string
	exportPDFTemplate  string
)

func init() {
	exportPDFCmd.Flags().StringVarP(&exportPDFInputFile, "in", "i", "", "Path to CV JSON file (required)")
	exportPDFCmd.Flags().StringVarP(&exportPDFOutput, "out", "o", "", "Path to output PDF (default: <name>.pdf)")
	exportPDFCmd.Flags().StringVarP(&exportPDFTemplate, "template", "t", "", "HTML template id (default from config)")

	if err := exportPDFCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark flag as required: %v", err))
	}

	rootCmd.AddCommand(exportPDFCmd)
}

func runExportPDF(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}

	doc, err := document.Load(exportPDFInputFile)
	if err != nil {
		return err
	}

	templateID := exportPDFTemplate
	if templateID == "" {
		templateID = cfg.DefaultTemplate
	}

	output := exportPDFOutput
	if output == "" {
		output = export.SanitizeFileName(doc.PersonalInfo.FullName)
	} else if !strings.HasSuffix(strings.ToLower(output), ".pdf") {
		output += ".pdf"
	}

	if err := exportDocumentPDF(context.Background(), renderer, export.NewPDFExporter(cfg.Verbose), doc, templateID, output); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "PDF written to %s\n", output)
	return nil
}
