package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/justsurfingit/hirepath/internal/dtos"
	"github.com/justsurfingit/hirepath/internal/models"
	"github.com/justsurfingit/hirepath/internal/rbac"
	"github.com/justsurfingit/hirepath/internal/seed"
	"gorm.io/gorm"
)

type AuthService struct {
	DB     *gorm.DB
	Tokens *rbac.TokenIssuer
	Log    *slog.Logger
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, tokens *rbac.TokenIssuer, log *slog.Logger) *AuthService {
	return &AuthService{DB: db, Tokens: tokens, Log: log, now: time.Now}
}

// Register creates a candidate account with its profile, the free pack when
// one exists and a fresh onboarding session.
func (s *AuthService) Register(ctx context.Context, req *dtos.RegisterRequest) (*dtos.AuthResponse, error) {
	user := models.User{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Active:    true,
	}
	hash, err := rbac.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Where("name = ?", seed.CandidateRole).First(&role).Error; err != nil {
			return fmt.Errorf("load %s role: %w", seed.CandidateRole, err)
		}
		user.RoleID = role.ID
		user.Role = role

		var free models.Pack
		err := tx.Where("active = ? AND price_cents = 0", true).Order("position, id").First(&free).Error
		switch {
		case err == nil:
			user.PackID = &free.ID
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("load free pack: %w", err)
		}

		if err := tx.Omit("Role", "Pack").Create(&user).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Candidate{UserID: user.ID, Skills: []string{}}).Error; err != nil {
			return fmt.Errorf("create candidate profile: %w", err)
		}
		session := newOnboardingSession(user.ID, s.now())
		return tx.Create(&session).Error
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("User registered", "user_id", user.ID, "email", user.Email)
	return s.issue(&user)
}

// Login verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req *dtos.LoginRequest) (*dtos.AuthResponse, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Preload("Role").
		Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !rbac.CheckPassword(user.PasswordHash, req.Password) {
		s.Log.Warn("Failed login", "email", user.Email)
		return nil, ErrUnauthorized
	}
	if !user.Active {
		return nil, fmt.Errorf("%w: account is disabled", ErrForbidden)
	}
	return s.issue(&user)
}

// Me returns the user with its role and pack.
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Preload("Role").Preload("Pack").First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) issue(user *models.User) (*dtos.AuthResponse, error) {
	token, expires, err := s.Tokens.Issue(user.ID, user.RoleID, user.Role.Name)
	if err != nil {
		return nil, err
	}
	return &dtos.AuthResponse{Token: token, ExpiresAt: expires, User: user}, nil
}
