package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/justsurfingit/hirepath/internal/documents"
	"github.com/justsurfingit/hirepath/internal/models"
	"github.com/justsurfingit/hirepath/internal/storage"
	"gorm.io/gorm"
)

const (
	DocumentsModule = "documents"
	MaxDocumentSize = 5 << 20
)

type DocumentService struct {
	DB     *gorm.DB
	Store  storage.ObjectStore
	Access *AccessService
	Log    *slog.Logger
}

// NewDocumentService accepts a nil store; uploads then fail with ErrUnavailable.
func NewDocumentService(db *gorm.DB, store storage.ObjectStore, access *AccessService, log *slog.Logger) *DocumentService {
	return &DocumentService{DB: db, Store: store, Access: access, Log: log}
}

// Upload stores a CV and its extracted text.
func (s *DocumentService) Upload(ctx context.Context, userID uint, fileName string, data []byte) (*models.Document, error) {
	if s.Store == nil {
		return nil, ErrUnavailable
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, MaxDocumentSize)
	}
	mime := documents.DetectMime(fileName, data)
	ext := documents.Extension(mime)
	if ext == "" {
		return nil, fmt.Errorf("%w: %s files are not supported", ErrInvalidInput, mime)
	}
	text, err := documents.ExtractText(mime, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	candidate, err := candidateForUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	countDocs := func(tx *gorm.DB) (int64, error) {
		var n int64
		err := tx.Model(&models.Document{}).Where("candidate_id = ?", candidate.ID).Count(&n).Error
		return n, err
	}
	// Checked again when the row is inserted.
	used, err := countDocs(s.DB.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.Access.CheckQuota(ctx, userID, DocumentsModule, used); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	doc := &models.Document{
		ID:            id,
		CandidateID:   candidate.ID,
		Kind:          models.DocumentKindCV,
		FileName:      filepath.Base(fileName),
		MimeType:      mime,
		Size:          int64(len(data)),
		StorageKey:    fmt.Sprintf("candidates/%d/cv/%s%s", candidate.ID, id, ext),
		ExtractedText: text,
	}
	if err := s.Store.Put(ctx, doc.StorageKey, mime, data); err != nil {
		return nil, err
	}
	err = s.Access.WithinQuota(ctx, userID, candidate.ID, DocumentsModule, countDocs, func(tx *gorm.DB) error {
		return tx.Create(doc).Error
	})
	if err != nil {
		if delErr := s.Store.Delete(ctx, doc.StorageKey); delErr != nil {
			s.Log.Error("Failed to remove orphan object", "key", doc.StorageKey, "error", delErr)
		}
		return nil, err
	}
	s.Log.Info("CV uploaded", "candidate_id", candidate.ID, "document", doc.ID, "mime", mime, "size", doc.Size)
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, userID uint) ([]models.Document, error) {
	candidate, err := candidateForUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	docs := []models.Document{}
	err = s.DB.WithContext(ctx).Where("candidate_id = ?", candidate.ID).Order("created_at DESC").Find(&docs).Error
	return docs, err
}

// Download returns one of the candidate's documents with its stored bytes.
func (s *DocumentService) Download(ctx context.Context, userID uint, id string) (*models.Document, []byte, error) {
	if s.Store == nil {
		return nil, nil, ErrUnavailable
	}
	candidate, err := candidateForUser(ctx, s.DB, userID)
	if err != nil {
		return nil, nil, err
	}
	var doc models.Document
	if err := s.DB.WithContext(ctx).Where("id = ? AND candidate_id = ?", id, candidate.ID).First(&doc).Error; err != nil {
		return nil, nil, err
	}
	data, err := s.Store.Get(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", doc.StorageKey, err)
	}
	return &doc, data, nil
}

// Delete removes the object first so a failure leaves the row visible.
func (s *DocumentService) Delete(ctx context.Context, userID uint, id string) error {
	if s.Store == nil {
		return ErrUnavailable
	}
	candidate, err := candidateForUser(ctx, s.DB, userID)
	if err != nil {
		return err
	}
	var doc models.Document
	if err := s.DB.WithContext(ctx).Where("id = ? AND candidate_id = ?", id, candidate.ID).First(&doc).Error; err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, doc.StorageKey); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		return err
	}
	return s.DB.WithContext(ctx).Delete(&doc).Error
}

// LatestCVText returns the text of the candidate's newest CV, or "".
func (s *DocumentService) LatestCVText(ctx context.Context, candidateID uint) (string, error) {
	var doc models.Document
	err := s.DB.WithContext(ctx).Select("extracted_text").
		Where("candidate_id = ? AND kind = ?", candidateID, models.DocumentKindCV).
		Order("created_at DESC").First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return doc.ExtractedText, nil
}
