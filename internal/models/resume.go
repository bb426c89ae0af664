package models

import "time"

// Profile holds the scalar and list fields of a resume, shared by the
// extraction result and the persisted record.
type Profile struct {
	Name                 string   `json:"name"`
	Email                string   `json:"email"`
	Phone                string   `json:"phone"`
	LinkedIn             string   `json:"linkedin"`
	GitHub               string   `json:"github"`
	Summary              string   `json:"summary"`
	TotalExperience      float64  `json:"total_experience"`
	TechnicalSkills      []string `json:"technical_skills"`
	SoftSkills           []string `json:"soft_skills"`
	ProgrammingLanguages []string `json:"programming_languages"`
	Languages            []string `json:"languages"`
}

type Experience struct {
	ID           int64  `json:"id,omitempty"`
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Organization string `json:"organization"`
}

type Education struct {
	ID           int64  `json:"id,omitempty"`
	Title        string `json:"title"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Organization string `json:"organization"`
	Grade        string `json:"grade"`
	Percentage   string `json:"percentage"`
}

type Project struct {
	ID                   int64    `json:"id,omitempty"`
	Title                string   `json:"title"`
	Summary              string   `json:"summary"`
	StartDate            string   `json:"start_date"`
	EndDate              string   `json:"end_date"`
	Technologies         []string `json:"technologies"`
	ProgrammingLanguages []string `json:"programming_languages"`
}

type Certification struct {
	ID           int64  `json:"id,omitempty"`
	Title        string `json:"title"`
	Organization string `json:"organization"`
	EndDate      string `json:"end_date"`
}

// ParsedResume is the structured extraction result. It is never stored as is.
type ParsedResume struct {
	Profile
	Experiences    []Experience    `json:"experiences"`
	Educations     []Education     `json:"educations"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
}

// ResumeRecord is the persisted resume. Summary listings leave the
// sub-collections nil.
type ResumeRecord struct {
	ID      int64 `json:"id"`
	OwnerID int64 `json:"user_id"`
	Profile
	Experiences    []Experience    `json:"experience,omitempty"`
	Educations     []Education     `json:"education,omitempty"`
	Projects       []Project       `json:"projects,omitempty"`
	Certifications []Certification `json:"certifications,omitempty"`

	Embedding []float32 `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

type SearchResult struct {
	Resume ResumeRecord `json:"resume"`
	Match  float64      `json:"match"`
}
