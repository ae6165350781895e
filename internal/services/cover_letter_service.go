package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/justsurfingit/hirepath/internal/dtos"
	"github.com/justsurfingit/hirepath/internal/models"
	"gorm.io/gorm"
)

// CoverLettersModule quotas count letters generated this calendar month.
const CoverLettersModule = "cover_letters"

type CoverLetterService struct {
	DB        *gorm.DB
	LLM       *LLMService
	Documents *DocumentService
	Access    *AccessService
	now       func() time.Time
}

// NewCoverLetterService accepts a nil LLM; generation then fails with ErrUnavailable.
func NewCoverLetterService(db *gorm.DB, llm *LLMService, docs *DocumentService, access *AccessService) *CoverLetterService {
	return &CoverLetterService{DB: db, LLM: llm, Documents: docs, Access: access, now: time.Now}
}

func (s *CoverLetterService) Generate(ctx context.Context, userID uint, req *dtos.CoverLetterRequest) (*models.CoverLetter, error) {
	if s.LLM == nil {
		return nil, ErrUnavailable
	}
	if req.JobID == nil && strings.TrimSpace(req.JobDescription) == "" {
		return nil, fmt.Errorf("%w: job_id or job_description is required", ErrInvalidInput)
	}

	candidate, err := candidateForUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	since := monthStart(s.now())
	countLetters := func(tx *gorm.DB) (int64, error) {
		var n int64
		err := tx.Model(&models.CoverLetter{}).
			Where("candidate_id = ? AND created_at >= ?", candidate.ID, since).Count(&n).Error
		return n, err
	}
	// Fail before paying for a generation; checked again on insert.
	used, err := countLetters(s.DB.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.Access.CheckQuota(ctx, userID, CoverLettersModule, used); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	in := CoverLetterInput{
		FullName:       strings.TrimSpace(user.FirstName + " " + user.LastName),
		Headline:       candidate.Headline,
		Location:       candidate.Location,
		Summary:        candidate.Summary,
		Skills:         candidate.Skills,
		JobDescription: req.JobDescription,
		Tone:           req.Tone,
	}
	if req.JobID != nil {
		var job models.Job
		err := s.DB.WithContext(ctx).Preload("Company").
			Where("id = ? AND candidate_id = ?", *req.JobID, candidate.ID).First(&job).Error
		if err != nil {
			return nil, err
		}
		in.Company = job.Company.Name
		in.JobTitle = job.Title
		if in.JobDescription == "" {
			in.JobDescription = job.Description
		}
	}
	if s.Documents != nil {
		if in.CVText, err = s.Documents.LatestCVText(ctx, candidate.ID); err != nil {
			return nil, err
		}
	}

	content, err := s.LLM.GenerateCoverLetter(ctx, in)
	if err != nil {
		return nil, err
	}
	letter := &models.CoverLetter{
		CandidateID: candidate.ID,
		JobID:       req.JobID,
		Tone:        in.Tone,
		Content:     content,
	}
	if letter.Tone == "" {
		letter.Tone = "formal"
	}
	err = s.Access.WithinQuota(ctx, userID, candidate.ID, CoverLettersModule, countLetters, func(tx *gorm.DB) error {
		return tx.Create(letter).Error
	})
	if err != nil {
		return nil, err
	}
	return letter, nil
}

// monthStart returns the first instant of now's calendar month in UTC.
func monthStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func (s *CoverLetterService) List(ctx context.Context, userID uint) ([]models.CoverLetter, error) {
	candidate, err := candidateForUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	letters := []models.CoverLetter{}
	err = s.DB.WithContext(ctx).Where("candidate_id = ?", candidate.ID).Order("created_at DESC, id DESC").Find(&letters).Error
	return letters, err
}
