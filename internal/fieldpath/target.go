package fieldpath

import (
	"sort"
	"strings"
)

// Section identifies the part of the document a target writes into
type Section uint8

// Sections of a StructuredDocument
const (
	SectionPersonal Section = iota + 1
	SectionExperience
	SectionEducation
	SectionSkills
	SectionCertification
	SectionLanguages
)

var sectionNames = map[Section]string{
	SectionPersonal:      "personalInfo",
	SectionExperience:    "experience",
	SectionEducation:     "education",
	SectionSkills:        "skills",
	SectionCertification: "certification",
	SectionLanguages:     "languages",
}

func (s Section) String() string {
	if name, ok := sectionNames[s]; ok {
		return name
	}
	return "unknown"
}

// Repeated reports whether the section is addressed through a repeat counter
func (s Section) Repeated() bool {
	switch s {
	case SectionExperience, SectionEducation, SectionSkills, SectionCertification:
		return true
	}
	return false
}

// ValueKind tells the resolver how to interpret the raw input
type ValueKind uint8

// Value kinds
const (
	KindText ValueKind = iota + 1
	KindList
	KindPeriod
	KindLanguages
)

// Field is a leaf inside a section
type Field uint8

// Fields of the vocabulary
const (
	FieldFullName Field = iota + 1
	FieldTitle
	FieldEmail
	FieldPhone
	FieldLocation
	FieldLinkedIn
	FieldWebsite
	FieldSummary
	FieldPosition
	FieldCompany
	FieldPeriod
	FieldDescription
	FieldAchievements
	FieldDegree
	FieldSchool
	FieldCategory
	FieldItems
	FieldName
	FieldIssuer
	FieldDate
	FieldURL
	FieldLanguages
)

// Target is a parsed field path. The zero Target is invalid.
type Target struct {
	Path    string
	Section Section
	Field   Field
	Kind    ValueKind
}

// Repeated reports whether writes go to the current repeat index of the section
func (t Target) Repeated() bool {
	return t.Section.Repeated()
}

// IsZero reports whether the target was never parsed
func (t Target) IsZero() bool {
	return t.Section == 0 || t.Field == 0
}

func (t Target) String() string {
	return t.Path
}

// vocabulary maps every accepted path to its target
var vocabulary = buildVocabulary()

func buildVocabulary() map[string]Target {
	v := make(map[string]Target)
	add := func(section Section, leaf string, field Field, kind ValueKind) {
		path := section.String()
		if leaf != "" {
			path += "." + leaf
		}
		v[path] = Target{Path: path, Section: section, Field: field, Kind: kind}
	}

	add(SectionPersonal, "fullName", FieldFullName, KindText)
	add(SectionPersonal, "title", FieldTitle, KindText)
	add(SectionPersonal, "email", FieldEmail, KindText)
	add(SectionPersonal, "phone", FieldPhone, KindText)
	add(SectionPersonal, "location", FieldLocation, KindText)
	add(SectionPersonal, "linkedin", FieldLinkedIn, KindText)
	add(SectionPersonal, "website", FieldWebsite, KindText)
	add(SectionPersonal, "summary", FieldSummary, KindText)

	add(SectionExperience, "position", FieldPosition, KindText)
	add(SectionExperience, "company", FieldCompany, KindText)
	add(SectionExperience, "location", FieldLocation, KindText)
	add(SectionExperience, "period", FieldPeriod, KindPeriod)
	add(SectionExperience, "description", FieldDescription, KindText)
	add(SectionExperience, "achievements", FieldAchievements, KindList)

	add(SectionEducation, "degree", FieldDegree, KindText)
	add(SectionEducation, "school", FieldSchool, KindText)
	add(SectionEducation, "location", FieldLocation, KindText)
	add(SectionEducation, "period", FieldPeriod, KindPeriod)
	add(SectionEducation, "description", FieldDescription, KindText)

	add(SectionSkills, "category", FieldCategory, KindText)
	add(SectionSkills, "items", FieldItems, KindList)

	add(SectionCertification, "name", FieldName, KindText)
	add(SectionCertification, "issuer", FieldIssuer, KindText)
	add(SectionCertification, "date", FieldDate, KindText)
	add(SectionCertification, "url", FieldURL, KindText)

	add(SectionLanguages, "", FieldLanguages, KindLanguages)

	return v
}

// Parse resolves a path string against the vocabulary
func Parse(path string) (Target, error) {
	t, ok := vocabulary[strings.TrimSpace(path)]
	if !ok {
		return Target{}, &UnknownFieldPathError{Path: path}
	}
	return t, nil
}

// MustParse is like Parse but panics on unknown paths. Use it for static tables only.
func MustParse(path string) Target {
	t, err := Parse(path)
	if err != nil {
		panic(err)
	}
	return t
}

// Known returns every accepted path, sorted
func Known() []string {
	paths := make([]string, 0, len(vocabulary))
	for p := range vocabulary {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
