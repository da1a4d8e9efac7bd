package rendering

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/cv-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *types.StructuredDocument {
	doc := types.NewStructuredDocument()
	doc.PersonalInfo = types.PersonalInfo{
		FullName: "Alice Martin",
		Title:    "Développeuse Go",
		Email:    "alice@example.com",
		Location: "Lyon",
		Summary:  "Ingénieure backend <script>alert(1)</script> & R&D",
	}
	doc.Experiences = []types.Experience{
		{
			Position:     "Développeuse Backend",
			Company:      "Acme",
			StartDate:    "Janv. 2023",
			EndDate:      "Présent",
			Current:      true,
			Description:  "Conception d'API",
			Achievements: []string{"Conception d'API", "Réduction des coûts de 20%"},
		},
		{Achievements: []string{}},
	}
	doc.Education = []types.Education{{Degree: "Master", School: "EPFL", StartDate: "2016", EndDate: "2018"}}
	doc.SkillGroups = []types.SkillGroup{{Category: "Backend", Items: []string{"Go", "PostgreSQL"}}}
	doc.Certifications = []types.Certification{{Name: "CKA", Issuer: "CNCF", Date: "2024"}}
	doc.Languages = []types.Language{{Name: "Français", Level: "Natif"}}
	return doc
}

func TestRender_Classic(t *testing.T) {
	r := MustNewRenderer()

	preview, err := r.Render(sampleDocument(), TemplateClassic)
	require.NoError(t, err)

	assert.Equal(t, FormatHTML, preview.Format)
	assert.Equal(t, "text/html; charset=utf-8", preview.ContentType)
	assert.Contains(t, preview.Body, `id="cv"`)
	assert.Contains(t, preview.Body, "Alice Martin")
	assert.Contains(t, preview.Body, "Janv. 2023 – Présent")
	assert.Contains(t, preview.Body, "Go, PostgreSQL")
	assert.NotContains(t, preview.Body, "<script>alert(1)</script>")
	assert.Contains(t, preview.Body, "&lt;script&gt;")
}

func TestRender_Modern(t *testing.T) {
	preview, err := MustNewRenderer().Render(sampleDocument(), TemplateModern)
	require.NoError(t, err)

	assert.Contains(t, preview.Body, `id="cv"`)
	assert.Contains(t, preview.Body, `<span class="tag">PostgreSQL</span>`)
	assert.Contains(t, preview.Body, "CNCF · 2024")
}

func TestRender_LaTeX(t *testing.T) {
	preview, err := MustNewRenderer().Render(sampleDocument(), TemplateLaTeX)
	require.NoError(t, err)

	assert.Equal(t, FormatLaTeX, preview.Format)
	assert.Contains(t, preview.Body, `\begin{document}`)
	assert.Contains(t, preview.Body, `\textbf{Développeuse Backend}`)
	assert.Contains(t, preview.Body, `Réduction des coûts de 20\%`)
	assert.Contains(t, preview.Body, `R\&D`)
	assert.Contains(t, preview.Body, `\item \textbf{Backend} : Go, PostgreSQL`)
}

func TestRender_DefaultTemplate(t *testing.T) {
	preview, err := MustNewRenderer().Render(sampleDocument(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplate, preview.TemplateID)
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := MustNewRenderer().Render(sampleDocument(), "baroque")

	var templateErr *TemplateError
	require.ErrorAs(t, err, &templateErr)
	assert.Equal(t, "baroque", templateErr.TemplateID)
}

func TestRender_NilDocument(t *testing.T) {
	_, err := MustNewRenderer().Render(nil, TemplateClassic)
	var renderErr *RenderError
	assert.ErrorAs(t, err, &renderErr)
}

func TestRender_DoesNotMutate(t *testing.T) {
	doc := sampleDocument()
	before := sampleDocument()

	_, err := MustNewRenderer().RenderAll(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, before, doc)
}

func TestRender_EmptyDocument(t *testing.T) {
	r := MustNewRenderer()
	for _, tmpl := range r.Templates() {
		t.Run(tmpl.ID, func(t *testing.T) {
			preview, err := r.Render(types.NewStructuredDocument(), tmpl.ID)
			require.NoError(t, err)
			assert.NotEmpty(t, preview.Body)
		})
	}
}

func TestRenderAll(t *testing.T) {
	r := MustNewRenderer()

	previews, err := r.RenderAll(context.Background(), sampleDocument())
	require.NoError(t, err)
	require.Len(t, previews, 3)
	assert.Equal(t, TemplateClassic, previews[0].TemplateID)
	assert.Equal(t, TemplateLaTeX, previews[1].TemplateID)
	assert.Equal(t, TemplateModern, previews[2].TemplateID)
}

func TestRenderAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MustNewRenderer().RenderAll(ctx, sampleDocument())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegisterFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minimal.tex.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(`\section*{ {{- escape .Personal.FullName -}} }`), 0644))

	r := MustNewRenderer()
	tmpl, err := r.RegisterFile(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", tmpl.ID)
	assert.Equal(t, FormatLaTeX, tmpl.Format)

	doc := types.NewStructuredDocument()
	doc.PersonalInfo.FullName = "A_B"
	preview, err := r.Render(doc, "minimal")
	require.NoError(t, err)
	assert.Equal(t, `\section*{A\_B}`, preview.Body)
}

func TestRegisterFile_Errors(t *testing.T) {
	r := MustNewRenderer()

	_, err := r.RegisterFile("/nonexistent/template.html")
	var templateErr *TemplateError
	require.ErrorAs(t, err, &templateErr)
	assert.Contains(t, err.Error(), "template file not found")

	path := filepath.Join(t.TempDir(), "broken.html")
	require.NoError(t, os.WriteFile(path, []byte(`{{.Personal.FullName`), 0644))
	_, err = r.RegisterFile(path)
	assert.ErrorAs(t, err, &templateErr)
}

func TestFormatPeriod(t *testing.T) {
	assert.Equal(t, "", formatPeriod("", ""))
	assert.Equal(t, "2020", formatPeriod("2020", "2020"))
	assert.Equal(t, "2020 – 2022", formatPeriod("2020", "2022"))
	assert.Equal(t, "2022", formatPeriod("", "2022"))
}

func TestBuildView_DropsMirroredDescription(t *testing.T) {
	v := buildView(sampleDocument())

	require.Len(t, v.Experiences, 1)
	assert.Empty(t, v.Experiences[0].Description)
	assert.Equal(t, []string{"alice@example.com", "Lyon"}, v.Contacts)
}
