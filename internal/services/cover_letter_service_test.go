package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/justsurfingit/hirepath/internal/dtos"
	"github.com/justsurfingit/hirepath/internal/logger"
	"github.com/justsurfingit/hirepath/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type coverLetterFixture struct {
	svc    *CoverLetterService
	jobs   *JobService
	docs   *DocumentService
	model  *MockModel
	userID uint
}

func newCoverLetterFixture(t *testing.T, pack string) *coverLetterFixture {
	t.Helper()
	db := seededDB(t)
	access := NewAccessService(db)
	model := &MockModel{}
	docs := NewDocumentService(db, newMemoryStore(), access, logger.Discard())
	u := userByEmail(t, db, candidateEmail)
	assignPack(t, db, u.ID, pack)

	require.NoError(t, db.Model(&models.Candidate{}).Where("user_id = ?", u.ID).
		Updates(map[string]any{"headline": "Go engineer", "location": "Lyon"}).Error)

	return &coverLetterFixture{
		svc:    NewCoverLetterService(db, &LLMService{Client: model}, docs, access),
		jobs:   NewJobService(db, access),
		docs:   docs,
		model:  model,
		userID: u.ID,
	}
}

func TestCoverLetterService_GenerateForTrackedJob(t *testing.T) {
	f := newCoverLetterFixture(t, "Pro")
	ctx := context.Background()

	job, err := f.jobs.CreateJob(ctx, f.userID, jobRequest("Acme", "backend"))
	require.NoError(t, err)
	_, err = f.docs.Upload(ctx, f.userID, "cv.txt", []byte("Five years of Go at Initech"))
	require.NoError(t, err)

	var prompt string
	f.model.On("GenerateContent", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { prompt = promptText(args.Get(1).([]llms.MessageContent)) }).
		Return(textResponse("Dear Acme team,\nI would love to join."), nil).Once()

	letter, err := f.svc.Generate(ctx, f.userID, &dtos.CoverLetterRequest{JobID: &job.ID, Tone: "friendly"})
	require.NoError(t, err)
	f.model.AssertExpectations(t)

	assert.Equal(t, "Dear Acme team,\nI would love to join.", letter.Content)
	assert.Equal(t, "friendly", letter.Tone)
	require.NotNil(t, letter.JobID)
	assert.Equal(t, job.ID, *letter.JobID)

	assert.Contains(t, prompt, "Company: Acme")
	assert.Contains(t, prompt, "Five years of Go at Initech")
	assert.Contains(t, prompt, "Headline: Go engineer")
	assert.Contains(t, prompt, "Dana Demo")
	assert.Contains(t, prompt, "friendly tone")

	letters, err := f.svc.List(ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, letters, 1)
}

func TestCoverLetterService_FreeTextJob(t *testing.T) {
	f := newCoverLetterFixture(t, "Premium")
	f.model.On("GenerateContent", mock.Anything, mock.Anything).Return(textResponse("Hello"), nil).Once()

	letter, err := f.svc.Generate(context.Background(), f.userID, &dtos.CoverLetterRequest{JobDescription: "SRE at a bank"})
	require.NoError(t, err)
	assert.Nil(t, letter.JobID)
	assert.Equal(t, "formal", letter.Tone)
}

func TestCoverLetterService_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("needs a job", func(t *testing.T) {
		f := newCoverLetterFixture(t, "Pro")
		_, err := f.svc.Generate(ctx, f.userID, &dtos.CoverLetterRequest{})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("plan without cover letters", func(t *testing.T) {
		f := newCoverLetterFixture(t, "Free")
		_, err := f.svc.Generate(ctx, f.userID, &dtos.CoverLetterRequest{JobDescription: "x"})
		assert.ErrorIs(t, err, ErrQuotaExceeded)
	})

	t.Run("model failure", func(t *testing.T) {
		f := newCoverLetterFixture(t, "Pro")
		f.model.On("GenerateContent", mock.Anything, mock.Anything).Return(nil, errors.New("quota exhausted")).Once()
		_, err := f.svc.Generate(ctx, f.userID, &dtos.CoverLetterRequest{JobDescription: "x"})
		assert.ErrorContains(t, err, "quota exhausted")

		letters, err := f.svc.List(ctx, f.userID)
		require.NoError(t, err)
		assert.Empty(t, letters)
	})

	t.Run("not configured", func(t *testing.T) {
		f := newCoverLetterFixture(t, "Pro")
		f.svc.LLM = nil
		_, err := f.svc.Generate(ctx, f.userID, &dtos.CoverLetterRequest{JobDescription: "x"})
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestMonthStart(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"mid month", time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"local month ahead of UTC", time.Date(2026, 3, 1, 0, 30, 0, 0, paris), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"last instant of UTC month", time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := monthStart(tt.now)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}
