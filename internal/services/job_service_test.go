package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/justsurfingit/hirepath/internal/dtos"
	"github.com/justsurfingit/hirepath/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func jobRequest(company, title string) *dtos.JobCreationRequest {
	return &dtos.JobCreationRequest{
		CompanyName: company,
		Title:       title,
		JobLink:     "https://jobs.example.com/" + title,
		Description: "Build things",
		TechStack:   []string{"Go"},
	}
}

func TestJobService_CreateListUpdate(t *testing.T) {
	db := seededDB(t)
	svc := NewJobService(db, NewAccessService(db))
	ctx := context.Background()
	u := userByEmail(t, db, candidateEmail)

	job, err := svc.CreateJob(ctx, u.ID, jobRequest("Acme", "backend"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusApplied, job.Status)
	assert.Equal(t, "Acme", job.Company.Name)
	assert.Equal(t, candidateOf(t, db, u.ID).ID, job.CandidateID)

	second, err := svc.CreateJob(ctx, u.ID, jobRequest("Acme", "platform"))
	require.NoError(t, err)
	assert.Equal(t, job.CompanyID, second.CompanyID, "companies are reused")

	_, err = svc.UpdateStatus(ctx, u.ID, job.ID, &dtos.JobStatusUpdateRequest{Status: models.StatusInterview, Note: "phone screen"})
	require.NoError(t, err)
	// same status is a no-op
	_, err = svc.UpdateStatus(ctx, u.ID, job.ID, &dtos.JobStatusUpdateRequest{Status: models.StatusInterview})
	require.NoError(t, err)

	events, err := svc.Events(ctx, u.ID, job.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, JobEventCreated, events[0].EventType)
	assert.Equal(t, JobEventStatusChanged, events[1].EventType)
	assert.Equal(t, "APPLIED -> INTERVIEW: phone screen", events[1].Details)

	all, err := svc.ListJobs(ctx, u.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	interviews, err := svc.ListJobs(ctx, u.ID, models.StatusInterview)
	require.NoError(t, err)
	require.Len(t, interviews, 1)
	assert.Equal(t, job.ID, interviews[0].ID)
	assert.Equal(t, "Acme", interviews[0].Company.Name)
}

func TestJobService_Validation(t *testing.T) {
	db := seededDB(t)
	svc := NewJobService(db, NewAccessService(db))
	ctx := context.Background()
	u := userByEmail(t, db, candidateEmail)
	admin := userByEmail(t, db, adminEmail)

	req := jobRequest("Acme", "backend")
	req.Status = "HIRED?"
	_, err := svc.CreateJob(ctx, u.ID, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.ListJobs(ctx, u.ID, "nope")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateJob(ctx, admin.ID, jobRequest("Acme", "backend"))
	assert.ErrorIs(t, err, ErrForbidden)

	job, err := svc.CreateJob(ctx, u.ID, jobRequest("Acme", "backend"))
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, u.ID, job.ID, &dtos.JobStatusUpdateRequest{Status: "LOST"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.UpdateStatus(ctx, u.ID, 9999, &dtos.JobStatusUpdateRequest{Status: models.StatusOffer})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestJobService_ScopedToCandidate(t *testing.T) {
	db := seededDB(t)
	svc := NewJobService(db, NewAccessService(db))
	ctx := context.Background()
	owner := userByEmail(t, db, candidateEmail)

	other := models.User{Email: "other@example.com", PasswordHash: "x", Active: true, PackID: owner.PackID}
	require.NoError(t, db.Create(&other).Error)
	require.NoError(t, db.Create(&models.Candidate{UserID: other.ID, Skills: []string{}}).Error)

	job, err := svc.CreateJob(ctx, owner.ID, jobRequest("Acme", "backend"))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, other.ID, job.ID, &dtos.JobStatusUpdateRequest{Status: models.StatusOffer})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = svc.Events(ctx, other.ID, job.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	jobs, err := svc.ListJobs(ctx, other.ID, "")
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestJobService_Quota(t *testing.T) {
	db := seededDB(t)
	svc := NewJobService(db, NewAccessService(db))
	ctx := context.Background()
	u := userByEmail(t, db, candidateEmail)

	for i := 0; i < 10; i++ {
		_, err := svc.CreateJob(ctx, u.ID, jobRequest("Acme", fmt.Sprintf("job-%d", i)))
		require.NoError(t, err)
	}
	_, err := svc.CreateJob(ctx, u.ID, jobRequest("Acme", "one-too-many"))
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	assignPack(t, db, u.ID, "Pro")
	_, err = svc.CreateJob(ctx, u.ID, jobRequest("Acme", "one-too-many"))
	assert.NoError(t, err)
}
