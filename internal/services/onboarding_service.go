package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/hirepath/internal/dtos"
	"github.com/justsurfingit/hirepath/internal/models"
	"gorm.io/gorm"
)

const OnboardingTTL = 7 * 24 * time.Hour

var onboardingSteps = []dtos.OnboardingStep{
	{Index: 0, Title: "Your profile", Questions: []dtos.OnboardingQuestion{
		{Key: "headline", Label: "Which role are you looking for?", Required: true},
		{Key: "years_experience", Label: "Years of experience"},
	}},
	{Index: 1, Title: "Where", Questions: []dtos.OnboardingQuestion{
		{Key: "location", Label: "Where do you want to work?", Required: true},
	}},
	{Index: 2, Title: "Skills", Questions: []dtos.OnboardingQuestion{
		{Key: "skills", Label: "Your main skills, comma separated", Required: true},
	}},
}

func newOnboardingSession(userID uint, now time.Time) models.OnboardingSession {
	return models.OnboardingSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Answers:   map[string]string{},
		ExpiresAt: now.Add(OnboardingTTL),
	}
}

type OnboardingService struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewOnboardingService(db *gorm.DB) *OnboardingService {
	return &OnboardingService{DB: db, now: time.Now}
}

// Current returns the user's session, replacing an expired unfinished one.
func (s *OnboardingService) Current(ctx context.Context, userID uint) (*dtos.OnboardingResponse, error) {
	session, err := s.current(s.DB.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	return onboardingResponse(session), nil
}

// SubmitAnswers records the answers of the current step and advances. The
// last step completes the session and fills the candidate profile.
func (s *OnboardingService) SubmitAnswers(ctx context.Context, userID uint, req *dtos.OnboardingAnswersRequest) (*dtos.OnboardingResponse, error) {
	var session *models.OnboardingSession
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		session, err = s.current(tx, userID)
		if err != nil {
			return err
		}
		if session.Completed {
			return fmt.Errorf("%w: onboarding already completed", ErrInvalidInput)
		}
		if req.Step == nil || *req.Step != session.Step {
			return fmt.Errorf("%w: expected answers for step %d", ErrInvalidInput, session.Step)
		}

		step := onboardingSteps[session.Step]
		if session.Answers == nil {
			session.Answers = map[string]string{}
		}
		for _, q := range step.Questions {
			v := strings.TrimSpace(req.Answers[q.Key])
			if q.Required && v == "" {
				return fmt.Errorf("%w: %s is required", ErrInvalidInput, q.Key)
			}
			if v != "" {
				session.Answers[q.Key] = v
			}
		}
		if v, ok := session.Answers["years_experience"]; ok {
			if n, err := strconv.Atoi(v); err != nil || n < 0 {
				return fmt.Errorf("%w: years_experience must be a positive number", ErrInvalidInput)
			}
		}

		session.Step++
		if session.Step == len(onboardingSteps) {
			session.Completed = true
			if err := applyOnboarding(tx, userID, session.Answers); err != nil {
				return err
			}
		}
		return tx.Save(session).Error
	})
	if err != nil {
		return nil, err
	}
	return onboardingResponse(session), nil
}

func (s *OnboardingService) current(db *gorm.DB, userID uint) (*models.OnboardingSession, error) {
	var session models.OnboardingSession
	err := db.Where("user_id = ?", userID).Order("created_at DESC").First(&session).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, fmt.Errorf("load onboarding session: %w", err)
	case session.Completed || s.now().Before(session.ExpiresAt):
		return &session, nil
	}

	fresh := newOnboardingSession(userID, s.now())
	if err := db.Create(&fresh).Error; err != nil {
		return nil, fmt.Errorf("create onboarding session: %w", err)
	}
	return &fresh, nil
}

func applyOnboarding(tx *gorm.DB, userID uint, answers map[string]string) error {
	var candidate models.Candidate
	if err := tx.Where("user_id = ?", userID).First(&candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user has no candidate profile", ErrForbidden)
		}
		return err
	}
	candidate.Headline = answers["headline"]
	candidate.Location = answers["location"]
	candidate.Skills = splitSkills(answers["skills"])
	if v, ok := answers["years_experience"]; ok {
		candidate.YearsExperience, _ = strconv.Atoi(v)
	}
	return tx.Save(&candidate).Error
}

func splitSkills(raw string) []string {
	skills := []string{}
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" || slices.ContainsFunc(skills, func(v string) bool { return strings.EqualFold(v, s) }) {
			continue
		}
		skills = append(skills, s)
	}
	return skills
}

func onboardingResponse(session *models.OnboardingSession) *dtos.OnboardingResponse {
	resp := &dtos.OnboardingResponse{Session: session, TotalSteps: len(onboardingSteps)}
	if !session.Completed && session.Step < len(onboardingSteps) {
		next := onboardingSteps[session.Step]
		resp.Next = &next
	}
	return resp
}
