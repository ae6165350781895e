package services

import (
	"context"
	"testing"

	"github.com/justsurfingit/hirepath/internal/dtos"
	"github.com/justsurfingit/hirepath/internal/logger"
	"github.com/justsurfingit/hirepath/internal/models"
	"github.com/justsurfingit/hirepath/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAuthService_Register(t *testing.T) {
	db := seededDB(t)
	tokens := newTokens()
	svc := NewAuthService(db, tokens, logger.Discard())
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dtos.RegisterRequest{
		Email: " New.User@Example.com ", Password: "s3cret-pass", FirstName: "New", LastName: "User",
	})
	require.NoError(t, err)

	assert.Equal(t, "new.user@example.com", resp.User.Email)
	assert.Equal(t, seed.CandidateRole, resp.User.Role.Name)
	require.NotNil(t, resp.User.PackID)

	var free models.Pack
	require.NoError(t, db.Where("name = ?", "Free").First(&free).Error)
	assert.Equal(t, free.ID, *resp.User.PackID)

	claims, err := tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, seed.CandidateRole, claims.Role)

	candidate := candidateOf(t, db, resp.User.ID)
	assert.Empty(t, candidate.Skills)

	var session models.OnboardingSession
	require.NoError(t, db.Where("user_id = ?", resp.User.ID).First(&session).Error)
	assert.Len(t, session.ID, 36)
	assert.Zero(t, session.Step)
	assert.WithinDuration(t, session.CreatedAt.Add(OnboardingTTL), session.ExpiresAt, minuteTolerance)

	_, err = svc.Register(ctx, &dtos.RegisterRequest{Email: "new.user@example.com", Password: "another-pass", FirstName: "Dup"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestAuthService_Login(t *testing.T) {
	db := seededDB(t)
	svc := NewAuthService(db, newTokens(), logger.Discard())
	ctx := context.Background()

	resp, err := svc.Login(ctx, &dtos.LoginRequest{Email: "Candidate@HirePath.local", Password: seedPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, candidateEmail, resp.User.Email)

	_, err = svc.Login(ctx, &dtos.LoginRequest{Email: candidateEmail, Password: "wrong"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(ctx, &dtos.LoginRequest{Email: "nobody@example.com", Password: seedPassword})
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, db.Model(&models.User{}).Where("email = ?", coachEmail).Update("active", false).Error)
	_, err = svc.Login(ctx, &dtos.LoginRequest{Email: coachEmail, Password: seedPassword})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthService_Me(t *testing.T) {
	db := seededDB(t)
	svc := NewAuthService(db, newTokens(), logger.Discard())
	u := userByEmail(t, db, candidateEmail)

	me, err := svc.Me(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, seed.CandidateRole, me.Role.Name)
	require.NotNil(t, me.Pack)
	assert.Equal(t, "Free", me.Pack.Name)

	_, err = svc.Me(context.Background(), 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
