package services

import (
	"context"
	"fmt"

	"github.com/justsurfingit/hirepath/internal/dtos"
	"github.com/justsurfingit/hirepath/internal/models"
	"gorm.io/gorm"
)

// Job event types
const (
	JobEventCreated       = "CREATED"
	JobEventStatusChanged = "STATUS_CHANGED"
)

// JobsModule is the module gating the job tracker.
const JobsModule = "jobs"

type JobService struct {
	DB     *gorm.DB
	Access *AccessService
}

func NewJobService(db *gorm.DB, access *AccessService) *JobService {
	return &JobService{DB: db, Access: access}
}

func (s *JobService) CreateJob(ctx context.Context, userID uint, req *dtos.JobCreationRequest) (*models.Job, error) {
	status := req.Status
	if status == "" {
		status = models.StatusApplied
	}
	if !models.ValidJobStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	candidate, err := candidateForUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	job := &models.Job{
		CandidateID: candidate.ID,
		Title:       req.Title,
		Description: req.Description,
		JobLink:     req.JobLink,
		Location:    req.Location,
		SalaryRange: req.SalaryRange,
		TechStack:   req.TechStack,
		Status:      status,
		ResumeLink:  req.ResumeLink,
	}
	if job.TechStack == nil {
		job.TechStack = []string{}
	}

	countJobs := func(tx *gorm.DB) (int64, error) {
		var n int64
		err := tx.Model(&models.Job{}).Where("candidate_id = ?", candidate.ID).Count(&n).Error
		return n, err
	}
	err = s.Access.WithinQuota(ctx, userID, candidate.ID, JobsModule, countJobs, func(tx *gorm.DB) error {
		// it creates the company if it doesn't exist yet
		var company models.Company
		if err := tx.Where(models.Company{Name: req.CompanyName}).FirstOrCreate(&company).Error; err != nil {
			return err
		}
		job.CompanyID = company.ID
		job.Company = company

		if err := tx.Omit("Company").Create(job).Error; err != nil {
			return err
		}
		return tx.Create(&models.JobEvent{JobID: job.ID, EventType: JobEventCreated, Details: status}).Error
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ListJobs returns the candidate's jobs, newest first, optionally by status.
func (s *JobService) ListJobs(ctx context.Context, userID uint, status string) ([]models.Job, error) {
	if status != "" && !models.ValidJobStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	candidate, err := candidateForUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	q := s.DB.WithContext(ctx).Preload("Company").Where("candidate_id = ?", candidate.ID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	jobs := []models.Job{}
	if err := q.Order("created_at DESC, id DESC").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// UpdateStatus moves a job to another status and records the change.
func (s *JobService) UpdateStatus(ctx context.Context, userID, jobID uint, req *dtos.JobStatusUpdateRequest) (*models.Job, error) {
	if !models.ValidJobStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}
	candidate, err := candidateForUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	var job models.Job
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Company").Where("id = ? AND candidate_id = ?", jobID, candidate.ID).First(&job).Error; err != nil {
			return err
		}
		if job.Status == req.Status {
			return nil
		}

		details := fmt.Sprintf("%s -> %s", job.Status, req.Status)
		if req.Note != "" {
			details += ": " + req.Note
		}
		if err := tx.Model(&job).Update("status", req.Status).Error; err != nil {
			return err
		}
		return tx.Create(&models.JobEvent{JobID: job.ID, EventType: JobEventStatusChanged, Details: details}).Error
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Events returns the audit trail of a job owned by the user.
func (s *JobService) Events(ctx context.Context, userID, jobID uint) ([]models.JobEvent, error) {
	candidate, err := candidateForUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	var job models.Job
	if err := s.DB.WithContext(ctx).Select("id").Where("id = ? AND candidate_id = ?", jobID, candidate.ID).First(&job).Error; err != nil {
		return nil, err
	}
	events := []models.JobEvent{}
	err = s.DB.WithContext(ctx).Where("job_id = ?", job.ID).Order("id").Find(&events).Error
	return events, err
}
