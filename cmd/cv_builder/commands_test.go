package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/cv-builder/internal/document"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns its output
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CV_SCRIPT", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		renderInputFile, renderOutput, renderTemplate = "", "", ""
		renderTemplateFiles, renderAll = nil, false
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func writeSampleDocument(t *testing.T) string {
	t.Helper()
	doc := types.NewStructuredDocument()
	doc.PersonalInfo = types.PersonalInfo{FullName: "Alice Martin", Title: "Développeuse Go", Email: "alice@example.com"}
	doc.Experiences = append(doc.Experiences, types.Experience{
		Position: "Backend", Company: "Acme", StartDate: "2023", Current: true,
		Achievements: []string{"Migration vers Go"},
	})

	path := filepath.Join(t.TempDir(), "cv.json")
	require.NoError(t, document.Save(path, doc))
	return path
}

func TestValidateScriptCommand_Embedded(t *testing.T) {
	output, err := execute(t, "validate-script")

	require.NoError(t, err)
	assert.Contains(t, output, "STEP SCRIPT")
	assert.Contains(t, output, "embedded script is valid")
}

func TestValidateScriptCommand_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"steps": []}`), 0644))

	_, err := execute(t, "validate-script", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid script")
}

func TestRenderCommand_Stdout(t *testing.T) {
	input := writeSampleDocument(t)

	output, err := execute(t, "render", "--in", input, "--template", "modern")

	require.NoError(t, err)
	assert.Contains(t, output, `id="cv"`)
	assert.Contains(t, output, "Alice Martin")
}

func TestRenderCommand_All(t *testing.T) {
	input := writeSampleDocument(t)
	outDir := filepath.Join(t.TempDir(), "previews")

	output, err := execute(t, "render", "--in", input, "--all", "--out", outDir)

	require.NoError(t, err)
	for _, name := range []string{"classic.html", "modern.html", "latex.tex"} {
		assert.FileExists(t, filepath.Join(outDir, name))
		assert.Contains(t, output, name)
	}
}

func TestRenderCommand_TemplateFile(t *testing.T) {
	input := writeSampleDocument(t)
	tmplPath := filepath.Join(t.TempDir(), "plain.txt.tex")
	require.NoError(t, os.WriteFile(tmplPath, []byte(`{{.Personal.FullName | escape}}`), 0644))
	outFile := filepath.Join(t.TempDir(), "out", "cv.tex")

	_, err := execute(t, "render", "--in", input, "--template-file", tmplPath, "--template", "plain", "--out", outFile)

	require.NoError(t, err)
	content, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, "Alice Martin", strings.TrimSpace(string(content)))
}

func TestRenderCommand_UnknownTemplate(t *testing.T) {
	input := writeSampleDocument(t)

	_, err := execute(t, "render", "--in", input, "--template", "nope")

	var tmplErr *rendering.TemplateError
	require.ErrorAs(t, err, &tmplErr)
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".tex", extensionFor(rendering.FormatLaTeX))
	assert.Equal(t, ".html", extensionFor(rendering.FormatHTML))
}
