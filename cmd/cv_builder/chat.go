package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/cv-builder/internal/document"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/flow"
	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/spf13/cobra"
)

// Chat commands typed in place of an answer
const (
	commandSuggest = "/suggest"
	commandPreview = "/preview"
	commandQuit    = "/quit"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Build a CV interactively in the terminal",
	Long: `Asks the CV questions one at a time. Type /suggest on a free-text step to get an
AI suggestion (press Enter to accept it), /preview to render the CV so far, /quit to stop.`,
	RunE: runChat,
}

var (
	chatOutFile  string
	chatPDFFile  string
	chatTemplate string
)

func init() {
	chatCmd.Flags().StringVarP(&chatOutFile, "out", "o", "", "Write the finished CV as JSON to this file")
	chatCmd.Flags().StringVar(&chatPDFFile, "pdf", "", "Export the finished CV to this PDF file")
	chatCmd.Flags().StringVarP(&chatTemplate, "template", "t", "", "Template for /preview and --pdf (default from config)")

	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	s, err := loadScript(cfg)
	if err != nil {
		return err
	}
	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}

	templateID := chatTemplate
	if templateID == "" {
		templateID = cfg.DefaultTemplate
	}
	if _, ok := renderer.Lookup(templateID); !ok {
		return fmt.Errorf("unknown template %q", templateID)
	}

	a, closeAssistant, err := newAssistant(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAssistant()

	engine, err := flow.NewEngine(s, engineOptions(cfg, a))
	if err != nil {
		return fmt.Errorf("failed to start conversation: %w", err)
	}

	out := cmd.OutOrStdout()
	completed, err := runChatLoop(ctx, cmd.InOrStdin(), out, engine, renderer, templateID)
	if err != nil {
		return err
	}
	if !completed {
		_, _ = fmt.Fprintln(out, "\nConversation interrompue.")
		return nil
	}

	doc := engine.Document()
	observability.NewPrinter(out).PrintDocumentSummary(doc)

	if chatOutFile != "" {
		if err := document.Save(chatOutFile, doc); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "CV saved to %s\n", chatOutFile)
	}
	if chatPDFFile != "" {
		if err := exportDocumentPDF(ctx, renderer, export.NewPDFExporter(cfg.Verbose), doc, templateID, chatPDFFile); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "PDF written to %s\n", chatPDFFile)
	}
	return nil
}

// runChatLoop reads answers line by line until the conversation completes, the user
// quits, or input ends. It reports whether the terminal step was reached.
//
//nolint:errcheck // writing to the terminal; errors are not recoverable
func runChatLoop(ctx context.Context, in io.Reader, out io.Writer, engine *flow.Engine, renderer *rendering.Renderer, templateID string) (bool, error) {
	printer := observability.NewPrinter(out)
	printer.PrintEntries(engine.Transcript())

	scanner := bufio.NewScanner(in)
	pending := ""
	for !engine.Completed() {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		step := engine.Current()

		switch line {
		case commandQuit:
			return false, nil

		case commandSuggest:
			text, err := engine.RequestSuggestion(ctx, step.ID)
			var unavailable *flow.AssistantUnavailableError
			switch {
			case errors.Is(err, flow.ErrSuggestionUnsupported):
				fmt.Fprintln(out, "Aucune suggestion n'est disponible pour cette question.")
			case errors.As(err, &unavailable):
				fmt.Fprintln(out, flow.AssistantUnavailableNotice)
			case err != nil:
				return false, err
			default:
				pending = text
				printer.PrintSuggestion(text)
			}
			continue

		case commandPreview:
			preview, err := renderer.Render(engine.Document(), templateID)
			if err != nil {
				return false, err
			}
			fmt.Fprintln(out, preview.Body)
			printer.PrintProgress(engine.Progress())
			continue
		}

		if line == "" && pending != "" {
			line = pending
		}
		pending = ""

		result, err := engine.Submit(step.ID, line)
		var invalid *flow.ValidationError
		if errors.As(err, &invalid) {
			fmt.Fprintln(out, "Cette question est obligatoire.")
			printer.PrintEntries([]types.TranscriptEntry{{Role: types.RoleEngine, Text: invalid.Prompt, Tip: step.Tip}})
			continue
		}
		if err != nil {
			return false, err
		}

		for _, entry := range result.Entries {
			if entry.Role == types.RoleUser && !entry.IsAIGenerated {
				continue
			}
			printer.PrintEntries([]types.TranscriptEntry{entry})
		}
	}

	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("failed to read input: %w", err)
	}
	return engine.Completed(), nil
}

// exportDocumentPDF renders doc with templateID and writes the PDF to path
func exportDocumentPDF(ctx context.Context, renderer *rendering.Renderer, exporter *export.PDFExporter, doc *types.StructuredDocument, templateID, path string) error {
	preview, err := renderer.Render(doc, templateID)
	if err != nil {
		return err
	}
	artifact, err := exporter.ExportPreview(ctx, preview, path)
	if err != nil {
		return err
	}
	return writeFile(path, artifact.Data)
}
