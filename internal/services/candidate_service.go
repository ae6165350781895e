package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/justsurfingit/hirepath/internal/dtos"
	"github.com/justsurfingit/hirepath/internal/models"
	"gorm.io/gorm"
)

type CandidateService struct {
	DB *gorm.DB
}

func NewCandidateService(db *gorm.DB) *CandidateService {
	return &CandidateService{DB: db}
}

func (s *CandidateService) List(ctx context.Context, q dtos.ListQuery) (*dtos.CandidateListResponse, error) {
	db := s.DB.WithContext(ctx).Model(&models.Candidate{})
	resp := &dtos.CandidateListResponse{Items: []models.Candidate{}, Page: q.Page, PageSize: q.PageSize}
	if err := db.Count(&resp.Total).Error; err != nil {
		return nil, err
	}
	err := db.Order("id").Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize).Find(&resp.Items).Error
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *CandidateService) Get(ctx context.Context, id uint) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := s.DB.WithContext(ctx).First(&candidate, id).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

// Create attaches a profile to an existing user. A second profile for the
// same user is a duplicate.
func (s *CandidateService) Create(ctx context.Context, req *dtos.CreateCandidateRequest) (*models.Candidate, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Select("id").First(&user, req.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d does not exist", ErrInvalidInput, req.UserID)
	}
	if err != nil {
		return nil, err
	}

	candidate := models.Candidate{UserID: req.UserID}
	applyCandidate(&candidate, &req.CandidateRequest)
	if err := s.DB.WithContext(ctx).Create(&candidate).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (s *CandidateService) Update(ctx context.Context, id uint, req *dtos.CandidateRequest) (*models.Candidate, error) {
	candidate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyCandidate(candidate, req)
	if err := s.DB.WithContext(ctx).Save(candidate).Error; err != nil {
		return nil, err
	}
	return candidate, nil
}

func (s *CandidateService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Candidate{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func applyCandidate(c *models.Candidate, req *dtos.CandidateRequest) {
	c.Headline = req.Headline
	c.Location = req.Location
	c.Summary = req.Summary
	c.Skills = req.Skills
	if c.Skills == nil {
		c.Skills = []string{}
	}
	c.YearsExperience = req.YearsExperience
}
