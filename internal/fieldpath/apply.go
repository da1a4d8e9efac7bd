package fieldpath

import (
	"fmt"
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// Apply writes value into doc at target. For repeated sections index selects the
// entry; entries are appended (empty) until index exists, so writes are never sparse.
// Non-repeated targets ignore index.
func Apply(doc *types.StructuredDocument, target Target, index int, value string) error {
	if doc == nil {
		return &ApplyError{Message: "document is nil"}
	}
	if target.IsZero() {
		return &UnknownFieldPathError{Path: target.Path}
	}
	if target.Repeated() && index < 0 {
		return &ApplyError{Message: fmt.Sprintf("negative repeat index %d for %s", index, target.Path)}
	}

	value = strings.TrimSpace(value)

	switch target.Section {
	case SectionPersonal:
		return applyPersonal(&doc.PersonalInfo, target, value)
	case SectionExperience:
		for len(doc.Experiences) <= index {
			doc.Experiences = append(doc.Experiences, types.Experience{Achievements: []string{}})
		}
		return applyExperience(&doc.Experiences[index], target, value)
	case SectionEducation:
		for len(doc.Education) <= index {
			doc.Education = append(doc.Education, types.Education{})
		}
		return applyEducation(&doc.Education[index], target, value)
	case SectionSkills:
		for len(doc.SkillGroups) <= index {
			doc.SkillGroups = append(doc.SkillGroups, types.SkillGroup{Items: []string{}})
		}
		return applySkills(&doc.SkillGroups[index], target, value)
	case SectionCertification:
		for len(doc.Certifications) <= index {
			doc.Certifications = append(doc.Certifications, types.Certification{})
		}
		return applyCertification(&doc.Certifications[index], target, value)
	case SectionLanguages:
		doc.Languages = ParseLanguages(value)
		return nil
	}

	return &UnknownFieldPathError{Path: target.Path}
}

func applyPersonal(p *types.PersonalInfo, target Target, value string) error {
	switch target.Field {
	case FieldFullName:
		p.FullName = value
	case FieldTitle:
		p.Title = value
	case FieldEmail:
		p.Email = value
	case FieldPhone:
		p.Phone = value
	case FieldLocation:
		p.Location = value
	case FieldLinkedIn:
		p.LinkedIn = value
	case FieldWebsite:
		p.Website = value
	case FieldSummary:
		p.Summary = value
	default:
		return &UnknownFieldPathError{Path: target.Path}
	}
	return nil
}

func applyExperience(e *types.Experience, target Target, value string) error {
	switch target.Field {
	case FieldPosition:
		e.Position = value
	case FieldCompany:
		e.Company = value
	case FieldLocation:
		e.Location = value
	case FieldPeriod:
		period := ParsePeriod(value)
		e.StartDate, e.EndDate, e.Current = period.Start, period.End, period.Current
	case FieldDescription:
		e.Description = value
	case FieldAchievements:
		e.Achievements = SplitList(value)
		// The first achievement doubles as the free-text description.
		e.Description = ""
		if len(e.Achievements) > 0 {
			e.Description = e.Achievements[0]
		}
	default:
		return &UnknownFieldPathError{Path: target.Path}
	}
	return nil
}

func applyEducation(e *types.Education, target Target, value string) error {
	switch target.Field {
	case FieldDegree:
		e.Degree = value
	case FieldSchool:
		e.School = value
	case FieldLocation:
		e.Location = value
	case FieldPeriod:
		period := ParsePeriod(value)
		e.StartDate, e.EndDate, e.Current = period.Start, period.End, period.Current
	case FieldDescription:
		e.Description = value
	default:
		return &UnknownFieldPathError{Path: target.Path}
	}
	return nil
}

func applySkills(g *types.SkillGroup, target Target, value string) error {
	switch target.Field {
	case FieldCategory:
		g.Category = value
	case FieldItems:
		g.Items = SplitList(value)
	default:
		return &UnknownFieldPathError{Path: target.Path}
	}
	return nil
}

func applyCertification(c *types.Certification, target Target, value string) error {
	switch target.Field {
	case FieldName:
		c.Name = value
	case FieldIssuer:
		c.Issuer = value
	case FieldDate:
		c.Date = value
	case FieldURL:
		c.URL = value
	default:
		return &UnknownFieldPathError{Path: target.Path}
	}
	return nil
}
