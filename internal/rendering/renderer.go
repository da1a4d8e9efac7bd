// Package rendering turns a StructuredDocument into a visual preview. Rendering is pure:
// the document is never modified.
package rendering

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/jonathan/cv-builder/internal/types"
	"golang.org/x/sync/errgroup"
)

//go:embed templates/*
var templateFiles embed.FS

// Built-in template ids
const (
	TemplateClassic = "classic"
	TemplateModern  = "modern"
	TemplateLaTeX   = "latex"

	DefaultTemplate = TemplateClassic
)

// Format is the markup a template produces
type Format string

const (
	FormatHTML  Format = "html"
	FormatLaTeX Format = "latex"
)

// ContentType returns the MIME type of rendered output
func (f Format) ContentType() string {
	if f == FormatLaTeX {
		return "application/x-latex; charset=utf-8"
	}
	return "text/html; charset=utf-8"
}

// Template describes a registered template
type Template struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Format Format `json:"format"`
}

// Preview is a rendered document
type Preview struct {
	TemplateID  string `json:"templateId"`
	Format      Format `json:"format"`
	ContentType string `json:"contentType"`
	Body        string `json:"body"`
}

// ElementSelector matches the element wrapping the CV in every HTML template
const ElementSelector = "#cv"

type executor interface {
	Execute(w io.Writer, data any) error
}

type registered struct {
	Template
	exec executor
}

// Renderer holds parsed templates. It is safe for concurrent use.
type Renderer struct {
	mu        sync.RWMutex
	templates map[string]registered
}

// NewRenderer parses the built-in templates
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]registered)}

	builtins := []struct {
		tmpl Template
		file string
	}{
		{Template{ID: TemplateClassic, Name: "Classique", Format: FormatHTML}, "templates/classic.html.tmpl"},
		{Template{ID: TemplateModern, Name: "Moderne", Format: FormatHTML}, "templates/modern.html.tmpl"},
		{Template{ID: TemplateLaTeX, Name: "LaTeX", Format: FormatLaTeX}, "templates/latex.tex.tmpl"},
	}

	for _, b := range builtins {
		content, err := templateFiles.ReadFile(b.file)
		if err != nil {
			return nil, &TemplateError{TemplateID: b.tmpl.ID, Message: "failed to read embedded template", Cause: err}
		}
		if err := r.register(b.tmpl, string(content)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustNewRenderer is NewRenderer for package initialisation; the embedded templates are
// covered by tests so a failure is a build defect.
func MustNewRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// RegisterFile adds a template from disk. The format follows the extension: .tex is
// LaTeX, anything else HTML. The id is the file name without extensions.
func (r *Renderer) RegisterFile(path string) (Template, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Template{}, &TemplateError{TemplateID: path, Message: "template file not found", Cause: err}
		}
		return Template{}, &TemplateError{TemplateID: path, Message: "failed to read template file", Cause: err}
	}

	base := filepath.Base(path)
	id, _, _ := strings.Cut(base, ".")
	format := FormatHTML
	if strings.Contains(base, ".tex") {
		format = FormatLaTeX
	}

	tmpl := Template{ID: id, Name: base, Format: format}
	if err := r.register(tmpl, string(content)); err != nil {
		return Template{}, err
	}
	return tmpl, nil
}

func (r *Renderer) register(tmpl Template, content string) error {
	var exec executor
	var err error

	switch tmpl.Format {
	case FormatLaTeX:
		exec, err = template.New(tmpl.ID).Funcs(template.FuncMap{
			"escape": EscapeLaTeX,
			"join":   strings.Join,
		}).Parse(content)
	default:
		exec, err = htmltemplate.New(tmpl.ID).Funcs(htmltemplate.FuncMap{
			"join": strings.Join,
		}).Parse(content)
	}
	if err != nil {
		return &TemplateError{TemplateID: tmpl.ID, Message: "failed to parse template", Cause: err}
	}

	r.mu.Lock()
	r.templates[tmpl.ID] = registered{Template: tmpl, exec: exec}
	r.mu.Unlock()
	return nil
}

// Templates lists the registered templates, sorted by id
func (r *Renderer) Templates() []Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t.Template)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Lookup returns the template registered under id
func (r *Renderer) Lookup(id string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[id]
	return t.Template, ok
}

// Render produces a preview of doc with the template id
func (r *Renderer) Render(doc *types.StructuredDocument, templateID string) (*Preview, error) {
	if doc == nil {
		return nil, &RenderError{Message: "document is nil"}
	}
	if templateID == "" {
		templateID = DefaultTemplate
	}

	r.mu.RLock()
	tmpl, ok := r.templates[templateID]
	r.mu.RUnlock()
	if !ok {
		return nil, &TemplateError{TemplateID: templateID, Message: "unknown template"}
	}

	var buf bytes.Buffer
	if err := tmpl.exec.Execute(&buf, buildView(doc)); err != nil {
		return nil, &TemplateError{TemplateID: templateID, Message: "failed to execute template", Cause: err}
	}

	return &Preview{
		TemplateID:  templateID,
		Format:      tmpl.Format,
		ContentType: tmpl.Format.ContentType(),
		Body:        buf.String(),
	}, nil
}

// RenderAll renders doc with every registered template concurrently. Previews are
// returned in Templates order.
func (r *Renderer) RenderAll(ctx context.Context, doc *types.StructuredDocument) ([]*Preview, error) {
	templates := r.Templates()
	previews := make([]*Preview, len(templates))

	g, ctx := errgroup.WithContext(ctx)
	for i, tmpl := range templates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			preview, err := r.Render(doc, tmpl.ID)
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", tmpl.ID, err)
			}
			previews[i] = preview
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return previews, nil
}
