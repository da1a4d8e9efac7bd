// Package types provides type definitions for structured data used throughout the cv-builder system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// StructuredDocument is the CV being built by a conversation.
// PersonalInfo always exists; repeatable sections are ordered by position.
type StructuredDocument struct {
	PersonalInfo   PersonalInfo    `json:"personalInfo"`
	Experiences    []Experience    `json:"experiences"`
	Education      []Education     `json:"education"`
	SkillGroups    []SkillGroup    `json:"skillGroups"`
	Certifications []Certification `json:"certifications"`
	Languages      []Language      `json:"languages"`
}

// PersonalInfo holds the candidate's identity and contact details
type PersonalInfo struct {
	FullName string `json:"fullName"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
	Website  string `json:"website"`
	Summary  string `json:"summary"`
}

// Experience represents a single work experience entry
type Experience struct {
	Position     string   `json:"position"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	Current      bool     `json:"current"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
}

// Education represents a single degree or training entry
type Education struct {
	Degree      string `json:"degree"`
	School      string `json:"school"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// SkillGroup is a named category of skills (e.g. "Backend": Go, PostgreSQL)
type SkillGroup struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// Certification represents a certificate or accreditation
type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
	URL    string `json:"url"`
}

// Language is a spoken language with a proficiency level
type Language struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// NewStructuredDocument returns an empty document with non-nil sequences.
func NewStructuredDocument() *StructuredDocument {
	return &StructuredDocument{
		Experiences:    []Experience{},
		Education:      []Education{},
		SkillGroups:    []SkillGroup{},
		Certifications: []Certification{},
		Languages:      []Language{},
	}
}

// IsEmpty reports whether the experience has no content at all
func (e Experience) IsEmpty() bool {
	return e.Position == "" && e.Company == "" && e.Location == "" &&
		e.StartDate == "" && e.EndDate == "" && e.Description == "" && len(e.Achievements) == 0
}

// IsEmpty reports whether the education entry has no content at all
func (e Education) IsEmpty() bool {
	return e.Degree == "" && e.School == "" && e.Location == "" &&
		e.StartDate == "" && e.EndDate == "" && e.Description == ""
}

// IsEmpty reports whether the skill group has no content at all
func (g SkillGroup) IsEmpty() bool {
	return g.Category == "" && len(g.Items) == 0
}

// IsEmpty reports whether the certification has no content at all
func (c Certification) IsEmpty() bool {
	return c.Name == "" && c.Issuer == "" && c.Date == "" && c.URL == ""
}
