package models

type Role string

const (
	RoleCandidate Role = "candidate"
	RoleHR        Role = "hr"
)

// IsPublic reports whether resumes owned by this role are discoverable.
func (r Role) IsPublic() bool {
	return r == RoleCandidate
}

func (r Role) Valid() bool {
	return r == RoleCandidate || r == RoleHR
}

type User struct {
	ID    int64  `json:"id"`
	Role  Role   `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HROnboarding is the company profile an HR user fills in once.
type HROnboarding struct {
	UserID         int64  `json:"user_id"`
	CompanySize    string `json:"company_size"`
	HiringTimeline string `json:"hiring_timeline"`
	IndustryFocus  string `json:"industry_focus"`
}
