package flow

import "github.com/jonathan/cv-builder/internal/fieldpath"

// State is the mutable position of one conversation. Counters start at 0 and only
// move when a section's "add another?" step is answered affirmatively.
type State struct {
	CurrentStepIndex   int `json:"currentStepIndex"`
	ExperienceIndex    int `json:"experienceIndex"`
	EducationIndex     int `json:"educationIndex"`
	SkillIndex         int `json:"skillIndex"`
	CertificationIndex int `json:"certificationIndex"`
}

// Counter returns the repeat index for a section; non-repeated sections report 0
func (s *State) Counter(section fieldpath.Section) int {
	switch section {
	case fieldpath.SectionExperience:
		return s.ExperienceIndex
	case fieldpath.SectionEducation:
		return s.EducationIndex
	case fieldpath.SectionSkills:
		return s.SkillIndex
	case fieldpath.SectionCertification:
		return s.CertificationIndex
	}
	return 0
}

func (s *State) increment(section fieldpath.Section) {
	switch section {
	case fieldpath.SectionExperience:
		s.ExperienceIndex++
	case fieldpath.SectionEducation:
		s.EducationIndex++
	case fieldpath.SectionSkills:
		s.SkillIndex++
	case fieldpath.SectionCertification:
		s.CertificationIndex++
	}
}
