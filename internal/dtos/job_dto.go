package dtos

type JobExtractionRequest struct {
	RawHTML string `json:"raw_html" binding:"required"`
	URL     string `json:"url"`
}

// ExtractedJob is what the LLM returns for a pasted job posting.
type ExtractedJob struct {
	CompanyName string   `json:"company_name"`
	Title       string   `json:"role_title"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	TechStack   []string `json:"tech_stack"`
	SalaryRange string   `json:"salary_range"`
	JobLink     string   `json:"job_link,omitempty"`
}

type JobCreationRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Title       string `json:"role_title" binding:"required"`
	JobLink     string `json:"job_link" binding:"required"`
	Description string `json:"description" binding:"required"`

	// Optional Fields
	Location    string   `json:"location"`
	SalaryRange string   `json:"salary_range"`
	TechStack   []string `json:"tech_stack"`
	ResumeLink  string   `json:"resume_link"`
	Status      string   `json:"status"` // Defaults to "APPLIED" if empty
}

type JobStatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}
