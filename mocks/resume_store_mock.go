package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"resume-matcher/internal/models"
)

// MockStore covers the resume, upload and user queries of the Postgres store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveResume(ctx context.Context, ownerID int64, parsed *models.ParsedResume, embedding []float32) (*models.ResumeRecord, error) {
	args := m.Called(ctx, ownerID, parsed, embedding)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ResumeRecord), args.Error(1)
}

func (m *MockStore) ResumeByID(ctx context.Context, id int64) (*models.ResumeRecord, error) {
	args := m.Called(ctx, id)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ResumeRecord), args.Error(1)
}

func (m *MockStore) ResumesByOwner(ctx context.Context, ownerID int64) ([]models.ResumeRecord, error) {
	args := m.Called(ctx, ownerID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.ResumeRecord), args.Error(1)
}

func (m *MockStore) PublicResumes(ctx context.Context) ([]models.ResumeRecord, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.ResumeRecord), args.Error(1)
}

func (m *MockStore) EmbeddedResumes(ctx context.Context) ([]models.ResumeRecord, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.ResumeRecord), args.Error(1)
}

func (m *MockStore) UserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) OnboardingByUserID(ctx context.Context, userID int64) (*models.HROnboarding, error) {
	args := m.Called(ctx, userID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.HROnboarding), args.Error(1)
}

func (m *MockStore) CreateUpload(ctx context.Context, rec *models.UploadRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockStore) UploadsByOwner(ctx context.Context, ownerID int64) ([]models.UploadRecord, error) {
	args := m.Called(ctx, ownerID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.UploadRecord), args.Error(1)
}

func (m *MockStore) PendingUploads(ctx context.Context) ([]models.UploadRecord, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.UploadRecord), args.Error(1)
}

func (m *MockStore) ClaimUpload(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) FailUpload(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockStore) FailStaleUploads(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	args := m.Called(ctx, cutoff, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) CompleteUpload(ctx context.Context, upload *models.UploadRecord, parsed *models.ParsedResume, embedding []float32) (*models.ResumeRecord, error) {
	args := m.Called(ctx, upload, parsed, embedding)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ResumeRecord), args.Error(1)
}
