package dtos

import "github.com/justsurfingit/hirepath/internal/models"

type CreateCandidateRequest struct {
	UserID uint `json:"user_id" binding:"required"`
	CandidateRequest
}

// CandidateRequest replaces the editable profile fields.
type CandidateRequest struct {
	Headline        string   `json:"headline" binding:"max=200"`
	Location        string   `json:"location" binding:"max=200"`
	Summary         string   `json:"summary"`
	Skills          []string `json:"skills" binding:"max=50,dive,max=64"`
	YearsExperience int      `json:"years_experience" binding:"min=0,max=70"`
}

type ListQuery struct {
	Page     int `form:"page,default=1" binding:"min=1"`
	PageSize int `form:"page_size,default=20" binding:"min=1,max=100"`
}

type CandidateListResponse struct {
	Items    []models.Candidate `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}
