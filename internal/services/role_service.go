package services

import (
	"context"
	"fmt"

	"github.com/justsurfingit/hirepath/internal/models"
	"github.com/justsurfingit/hirepath/internal/seed"
	"gorm.io/gorm"
)

type RoleService struct {
	DB *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{DB: db}
}

func (s *RoleService) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := s.DB.WithContext(ctx).Preload("Permissions", func(db *gorm.DB) *gorm.DB {
		return db.Order("permissions.name")
	}).Order("name").Find(&roles).Error
	return roles, err
}

func (s *RoleService) GetRole(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	err := s.DB.WithContext(ctx).Preload("Permissions", func(db *gorm.DB) *gorm.DB {
		return db.Order("permissions.name")
	}).First(&role, id).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *RoleService) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var perms []models.Permission
	err := s.DB.WithContext(ctx).Order("name").Find(&perms).Error
	return perms, err
}

// AssignRole moves a user to another role. Users moved to the candidate
// role get a profile when they have none.
func (s *RoleService) AssignRole(ctx context.Context, userID, roleID uint) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.First(&role, roleID).Error; err != nil {
			return fmt.Errorf("load role %d: %w", roleID, err)
		}
		if err := tx.First(&user, userID).Error; err != nil {
			return fmt.Errorf("load user %d: %w", userID, err)
		}
		if err := tx.Model(&user).Update("role_id", role.ID).Error; err != nil {
			return err
		}
		user.Role = role

		if role.Name == seed.CandidateRole {
			candidate := models.Candidate{UserID: user.ID, Skills: []string{}}
			if err := tx.Unscoped().Where(models.Candidate{UserID: user.ID}).FirstOrCreate(&candidate).Error; err != nil {
				return err
			}
			if candidate.DeletedAt.Valid {
				return tx.Unscoped().Model(&candidate).Update("deleted_at", nil).Error
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
