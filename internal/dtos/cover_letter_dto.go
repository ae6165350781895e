package dtos

// CoverLetterRequest targets either a tracked job or a pasted description.
type CoverLetterRequest struct {
	JobID          *uint  `json:"job_id"`
	JobDescription string `json:"job_description"`
	Tone           string `json:"tone" binding:"omitempty,oneof=formal friendly enthusiastic concise"`
}
