package export

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// IsolateElement returns a standalone page containing only the element matched by
// selector. The <head> is kept so styles still apply; scripts are dropped.
func IsolateElement(html, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", &ExportError{Message: "failed to parse HTML", Cause: err}
	}

	doc.Find("script, noscript").Remove()

	element := doc.Find(selector).First()
	if element.Length() == 0 {
		return "", &ExportError{Message: fmt.Sprintf("no element matches %q", selector)}
	}

	outer, err := goquery.OuterHtml(element)
	if err != nil {
		return "", &ExportError{Message: "failed to serialise element", Cause: err}
	}

	doc.Find("body").SetHtml(outer)

	page, err := doc.Html()
	if err != nil {
		return "", &ExportError{Message: "failed to serialise page", Cause: err}
	}
	return page, nil
}

var unsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// SanitizeFileName turns a user supplied name into a safe base name ending in .pdf
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, `\`, "/")))
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".pdf") {
		name = strings.TrimSuffix(name, ext)
	}

	name = unsafeFileChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-.")
	if name == "" {
		name = "cv"
	}
	return name + ".pdf"
}
