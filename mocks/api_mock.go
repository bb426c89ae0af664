package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"resume-matcher/internal/document"
	"resume-matcher/internal/models"
)

type MockResumeService struct {
	mock.Mock
}

func (m *MockResumeService) ParseNow(ctx context.Context, ownerID int64, sources []document.Source) ([]models.ResumeRecord, error) {
	args := m.Called(ctx, ownerID, sources)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.ResumeRecord), args.Error(1)
}

func (m *MockResumeService) Get(ctx context.Context, caller models.User, id int64) (*models.ResumeRecord, error) {
	args := m.Called(ctx, caller, id)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ResumeRecord), args.Error(1)
}

func (m *MockResumeService) Public(ctx context.Context) ([]models.ResumeRecord, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.ResumeRecord), args.Error(1)
}

func (m *MockResumeService) Mine(ctx context.Context, caller models.User) ([]models.ResumeRecord, error) {
	args := m.Called(ctx, caller)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.ResumeRecord), args.Error(1)
}

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, query string, topK int) ([]models.SearchResult, error) {
	args := m.Called(ctx, query, topK)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.SearchResult), args.Error(1)
}

type MockComposer struct {
	mock.Mock
}

func (m *MockComposer) Compose(ctx context.Context, caller models.User, resumeID int64) (string, error) {
	args := m.Called(ctx, caller, resumeID)
	return args.String(0), args.Error(1)
}
