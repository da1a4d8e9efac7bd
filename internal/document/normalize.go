package document

import (
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// Normalize trims every string, drops blank list items and empty entries, removes
// duplicate skills within a group and guarantees non-nil slices.
func Normalize(doc *types.StructuredDocument) error {
	if doc == nil {
		return &NormalizationError{Message: "document is nil"}
	}

	p := &doc.PersonalInfo
	for _, field := range []*string{&p.FullName, &p.Title, &p.Email, &p.Phone, &p.Location, &p.LinkedIn, &p.Website, &p.Summary} {
		*field = strings.TrimSpace(*field)
	}

	experiences := make([]types.Experience, 0, len(doc.Experiences))
	for _, exp := range doc.Experiences {
		trim(&exp.Position, &exp.Company, &exp.Location, &exp.StartDate, &exp.EndDate, &exp.Description)
		exp.Achievements = cleanList(exp.Achievements, false)
		if !exp.IsEmpty() {
			experiences = append(experiences, exp)
		}
	}
	doc.Experiences = experiences

	education := make([]types.Education, 0, len(doc.Education))
	for _, edu := range doc.Education {
		trim(&edu.Degree, &edu.School, &edu.Location, &edu.StartDate, &edu.EndDate, &edu.Description)
		if !edu.IsEmpty() {
			education = append(education, edu)
		}
	}
	doc.Education = education

	groups := make([]types.SkillGroup, 0, len(doc.SkillGroups))
	for _, group := range doc.SkillGroups {
		trim(&group.Category)
		group.Items = cleanList(group.Items, true)
		if !group.IsEmpty() {
			groups = append(groups, group)
		}
	}
	doc.SkillGroups = groups

	certifications := make([]types.Certification, 0, len(doc.Certifications))
	for _, cert := range doc.Certifications {
		trim(&cert.Name, &cert.Issuer, &cert.Date, &cert.URL)
		if !cert.IsEmpty() {
			certifications = append(certifications, cert)
		}
	}
	doc.Certifications = certifications

	languages := make([]types.Language, 0, len(doc.Languages))
	for _, lang := range doc.Languages {
		trim(&lang.Name, &lang.Level)
		if lang.Name == "" {
			if lang.Level != "" {
				return &NormalizationError{Message: "language with a level but no name"}
			}
			continue
		}
		languages = append(languages, lang)
	}
	doc.Languages = languages

	return nil
}

func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

// cleanList trims items and drops blanks; dedupe removes case-insensitive repeats
func cleanList(items []string, dedupe bool) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{})
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if dedupe {
			key := strings.ToLower(item)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, item)
	}
	return out
}
