package rendering

import (
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// view is what the templates see: empty entries dropped, periods pre-formatted
type view struct {
	Personal       types.PersonalInfo
	Contacts       []string
	Experiences    []experienceView
	Education      []educationView
	SkillGroups    []types.SkillGroup
	Certifications []types.Certification
	Languages      []types.Language
}

type experienceView struct {
	Position     string
	Company      string
	Location     string
	Period       string
	Description  string
	Achievements []string
}

type educationView struct {
	Degree      string
	School      string
	Location    string
	Period      string
	Description string
}

func buildView(doc *types.StructuredDocument) view {
	v := view{Personal: doc.PersonalInfo}

	for _, contact := range []string{
		doc.PersonalInfo.Email,
		doc.PersonalInfo.Phone,
		doc.PersonalInfo.Location,
		doc.PersonalInfo.LinkedIn,
		doc.PersonalInfo.Website,
	} {
		if contact = strings.TrimSpace(contact); contact != "" {
			v.Contacts = append(v.Contacts, contact)
		}
	}

	for _, exp := range doc.Experiences {
		if exp.IsEmpty() {
			continue
		}
		description := exp.Description
		// The first achievement is mirrored into the description; show it once.
		if len(exp.Achievements) > 0 && description == exp.Achievements[0] {
			description = ""
		}
		v.Experiences = append(v.Experiences, experienceView{
			Position:     exp.Position,
			Company:      exp.Company,
			Location:     exp.Location,
			Period:       formatPeriod(exp.StartDate, exp.EndDate),
			Description:  description,
			Achievements: exp.Achievements,
		})
	}

	for _, edu := range doc.Education {
		if edu.IsEmpty() {
			continue
		}
		v.Education = append(v.Education, educationView{
			Degree:      edu.Degree,
			School:      edu.School,
			Location:    edu.Location,
			Period:      formatPeriod(edu.StartDate, edu.EndDate),
			Description: edu.Description,
		})
	}

	for _, group := range doc.SkillGroups {
		if !group.IsEmpty() {
			v.SkillGroups = append(v.SkillGroups, group)
		}
	}
	for _, cert := range doc.Certifications {
		if !cert.IsEmpty() {
			v.Certifications = append(v.Certifications, cert)
		}
	}
	v.Languages = doc.Languages

	return v
}

// formatPeriod renders "start – end", collapsing identical bounds
func formatPeriod(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case start == "" || start == end:
		return end
	case end == "":
		return start
	}
	return start + " – " + end
}
