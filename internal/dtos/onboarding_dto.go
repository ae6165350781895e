package dtos

import "github.com/justsurfingit/hirepath/internal/models"

// OnboardingQuestion is one field asked during an onboarding step.
type OnboardingQuestion struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

type OnboardingStep struct {
	Index     int                  `json:"index"`
	Title     string               `json:"title"`
	Questions []OnboardingQuestion `json:"questions"`
}

type OnboardingResponse struct {
	Session    *models.OnboardingSession `json:"session"`
	Next       *OnboardingStep           `json:"next,omitempty"`
	TotalSteps int                       `json:"total_steps"`
}

type OnboardingAnswersRequest struct {
	Step    *int              `json:"step" binding:"required,min=0"`
	Answers map[string]string `json:"answers" binding:"required"`
}
