package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/justsurfingit/hirepath/internal/database"
	"github.com/justsurfingit/hirepath/internal/logger"
	"github.com/justsurfingit/hirepath/internal/models"
	"github.com/justsurfingit/hirepath/internal/rbac"
	"github.com/justsurfingit/hirepath/internal/seed"
	"github.com/justsurfingit/hirepath/internal/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"gorm.io/gorm"
)

const (
	seedPassword   = "demo-password"
	adminEmail     = "admin@example.com"
	candidateEmail = "candidate@hirepath.local"
	coachEmail     = "coach@hirepath.local"
)

func seededDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := database.NewTestDB(t)
	fixture, err := seed.DefaultFixture()
	require.NoError(t, err)
	_, err = seed.New(db, logger.Discard(), fixture, seed.Options{AdminEmail: adminEmail, Password: seedPassword}).
		Run(context.Background())
	require.NoError(t, err)
	return db
}

func userByEmail(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	var u models.User
	require.NoError(t, db.Preload("Role").Where("email = ?", email).First(&u).Error)
	return u
}

func candidateOf(t *testing.T, db *gorm.DB, userID uint) models.Candidate {
	t.Helper()
	var c models.Candidate
	require.NoError(t, db.Where("user_id = ?", userID).First(&c).Error)
	return c
}

func assignPack(t *testing.T, db *gorm.DB, userID uint, pack string) {
	t.Helper()
	var p models.Pack
	require.NoError(t, db.Where("name = ?", pack).First(&p).Error)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", userID).Update("pack_id", p.ID).Error)
}

func newTokens() *rbac.TokenIssuer {
	return rbac.NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour)
}

// memoryStore is an in-memory storage.ObjectStore.
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (m *memoryStore) Put(_ context.Context, key, _ string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// MockModel is a testify mock of llms.Model.
type MockModel struct {
	mock.Mock
}

func (m *MockModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	args := m.Called(ctx, messages)
	if resp := args.Get(0); resp != nil {
		return resp.(*llms.ContentResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockModel) Call(ctx context.Context, prompt string, _ ...llms.CallOption) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func textResponse(content string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: content}}}
}

// promptText returns the single text prompt sent to the model.
func promptText(messages []llms.MessageContent) string {
	if len(messages) == 0 || len(messages[0].Parts) == 0 {
		return ""
	}
	if tc, ok := messages[0].Parts[0].(llms.TextContent); ok {
		return tc.Text
	}
	return ""
}
