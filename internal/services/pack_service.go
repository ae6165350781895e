package services

import (
	"context"

	"github.com/justsurfingit/hirepath/internal/models"
	"gorm.io/gorm"
)

// PackService serves the public pricing page.
type PackService struct {
	DB *gorm.DB
}

func NewPackService(db *gorm.DB) *PackService {
	return &PackService{DB: db}
}

func (s *PackService) List(ctx context.Context) ([]models.Pack, error) {
	var packs []models.Pack
	err := s.withOptions(ctx).Where("active = ?", true).Order("position, id").Find(&packs).Error
	return packs, err
}

func (s *PackService) Get(ctx context.Context, id uint) (*models.Pack, error) {
	var pack models.Pack
	if err := s.withOptions(ctx).Where("active = ?", true).First(&pack, id).Error; err != nil {
		return nil, err
	}
	return &pack, nil
}

func (s *PackService) withOptions(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).Preload("Options.Option.Module")
}
