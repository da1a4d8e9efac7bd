// Package observability provides formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/script"
	"github.com/jonathan/cv-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintEntries writes transcript entries as a chat log
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintEntries(entries []types.TranscriptEntry) {
	for _, entry := range entries {
		switch entry.Role {
		case types.RoleUser:
			marker := ""
			if entry.IsAIGenerated {
				marker = " (suggestion IA)"
			}
			fmt.Fprintf(p.out, "  > %s%s\n", entry.Text, marker)
		default:
			fmt.Fprintf(p.out, "\n%s\n", entry.Text)
			if entry.Tip != "" {
				fmt.Fprintf(p.out, "  (%s)\n", entry.Tip)
			}
		}
	}
}

// PrintSuggestion shows an offered suggestion and how to accept it
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSuggestion(text string) {
	fmt.Fprintf(p.out, "\nSuggestion :\n  %s\n", strings.ReplaceAll(text, "\n", "\n  "))
	fmt.Fprintln(p.out, "Appuyez sur Entrée pour l'accepter, ou saisissez votre propre réponse.")
}

// PrintProgress writes a one-line progress bar
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(percent int) {
	percent = max(0, min(percent, 100))
	const width = 30
	filled := percent * width / 100
	fmt.Fprintf(p.out, "[%s%s] %d%%\n", strings.Repeat("█", filled), strings.Repeat("░", width-filled), percent)
}

// PrintDocumentSummary outputs a human-readable summary of a CV document.
func (p *Printer) PrintDocumentSummary(doc *types.StructuredDocument) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	info := doc.PersonalInfo
	sb.WriteString(fmt.Sprintf("Name:     %s\n", info.FullName))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", info.Title))
	if info.Email != "" {
		sb.WriteString(fmt.Sprintf("Email:    %s\n", info.Email))
	}
	if info.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", info.Location))
	}
	sb.WriteString("\n")

	if len(doc.Experiences) > 0 {
		sb.WriteString(fmt.Sprintf("Experience (%d):\n", len(doc.Experiences)))
		count := min(len(doc.Experiences), maxItemsToShow)
		for i := 0; i < count; i++ {
			exp := doc.Experiences[i]
			sb.WriteString(fmt.Sprintf("  • %s @ %s", exp.Position, exp.Company))
			if len(exp.Achievements) > 0 {
				sb.WriteString(fmt.Sprintf(" [%d]", len(exp.Achievements)))
			}
			sb.WriteString("\n")
		}
		if len(doc.Experiences) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(doc.Experiences)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(doc.Education) > 0 {
		sb.WriteString(fmt.Sprintf("Education (%d):\n", len(doc.Education)))
		for _, edu := range doc.Education {
			sb.WriteString(fmt.Sprintf("  • %s, %s\n", edu.Degree, edu.School))
		}
		sb.WriteString("\n")
	}

	if len(doc.SkillGroups) > 0 {
		sb.WriteString("Skills:\n")
		for _, group := range doc.SkillGroups {
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", group.Category, strings.Join(group.Items, ", ")))
		}
		sb.WriteString("\n")
	}

	if len(doc.Certifications) > 0 {
		sb.WriteString(fmt.Sprintf("Certifications: %d\n", len(doc.Certifications)))
	}
	if len(doc.Languages) > 0 {
		names := make([]string, 0, len(doc.Languages))
		for _, lang := range doc.Languages {
			names = append(names, lang.Name)
		}
		sb.WriteString(fmt.Sprintf("Languages: %s\n", strings.Join(names, ", ")))
	}

	p.printBox("CV SUMMARY", strings.TrimSuffix(strings.TrimSuffix(sb.String(), "\n"), "\n"))
}

// PrintScript outputs the step graph of a validated script, one step per line
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintScript(s *script.Script) {
	if s == nil {
		return
	}

	p.printBox("STEP SCRIPT", fmt.Sprintf("%d steps, terminal step %q", s.Len(), script.TerminalID))
	for _, step := range s.Steps() {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%2d %-22s %-8s", step.Position, step.ID, step.Kind))
		if step.Field != "" {
			sb.WriteString(" → " + step.Field)
		}
		if step.SkipTo != "" {
			sb.WriteString(" no→" + step.SkipTo)
		}
		if step.LoopTo != "" {
			sb.WriteString(" yes→" + step.LoopTo)
		}
		if step.Intent != "" {
			sb.WriteString(" ✦" + step.Intent)
		}
		fmt.Fprintln(p.out, sb.String())
	}
}

// PrintTemplates lists registered templates
func (p *Printer) PrintTemplates(templates []rendering.Template) {
	if len(templates) == 0 {
		return
	}

	var sb strings.Builder
	for _, tmpl := range templates {
		sb.WriteString(fmt.Sprintf("%-10s %-6s %s\n", tmpl.ID, tmpl.Format, tmpl.Name))
	}
	p.printBox("TEMPLATES", strings.TrimSuffix(sb.String(), "\n"))
}
