// Package export prints rendered CV previews to PDF with a headless browser.
// Requires Chrome/Chromium to be installed on the system.
package export

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/jonathan/cv-builder/internal/rendering"
)

// DefaultTimeout bounds one export, browser start-up included
const DefaultTimeout = 30 * time.Second

// A4 in inches, the unit PrintToPDF expects
const (
	paperWidth  = 8.27
	paperHeight = 11.69
)

// Artifact is an exported file
type Artifact struct {
	FileName string
	Data     []byte
}

// ContentType returns the MIME type of the artifact
func (a *Artifact) ContentType() string {
	return "application/pdf"
}

// PDFExporter prints HTML to PDF
type PDFExporter struct {
	Timeout time.Duration
	Verbose bool
}

// NewPDFExporter creates an exporter with the default timeout
func NewPDFExporter(verbose bool) *PDFExporter {
	return &PDFExporter{Timeout: DefaultTimeout, Verbose: verbose}
}

// ExportPreview exports an HTML preview's CV element. Non-HTML previews are rejected.
func (e *PDFExporter) ExportPreview(ctx context.Context, preview *rendering.Preview, fileName string) (*Artifact, error) {
	if preview == nil {
		return nil, &ExportError{Message: "preview is nil"}
	}
	if preview.Format != rendering.FormatHTML {
		return nil, &ExportError{Message: fmt.Sprintf("template %q renders %s, only HTML can be exported", preview.TemplateID, preview.Format)}
	}
	return e.Export(ctx, preview.Body, rendering.ElementSelector, fileName)
}

// Export isolates the element matched by selector and prints it to PDF
func (e *PDFExporter) Export(ctx context.Context, html, selector, fileName string) (*Artifact, error) {
	isolated, err := IsolateElement(html, selector)
	if err != nil {
		return nil, err
	}

	name := SanitizeFileName(fileName)
	if e.Verbose {
		log.Printf("[EXPORT] Printing %s (%d bytes of HTML)", name, len(isolated))
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, isolated).Do(ctx)
		}),
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		return nil, &ExportError{Message: "browser print failed", Cause: err}
	}

	if e.Verbose {
		log.Printf("[EXPORT] Wrote %s: %d bytes", name, len(pdf))
	}

	return &Artifact{FileName: name, Data: pdf}, nil
}
