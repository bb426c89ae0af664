package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"resume-matcher/internal/document"
	"resume-matcher/internal/models"
	"resume-matcher/internal/resume"
)

type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Extract(ctx context.Context, src document.Source) (string, error) {
	args := m.Called(ctx, src)
	return args.String(0), args.Error(1)
}

type MockParser struct {
	mock.Mock
}

func (m *MockParser) Parse(ctx context.Context, text string) (*models.ParsedResume, error) {
	args := m.Called(ctx, text)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ParsedResume), args.Error(1)
}

type MockResumeEmbedder struct {
	mock.Mock
}

func (m *MockResumeEmbedder) EmbedResume(ctx context.Context, p *models.ParsedResume) ([]float32, error) {
	args := m.Called(ctx, p)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]float32), args.Error(1)
}

type MockPreparer struct {
	mock.Mock
}

func (m *MockPreparer) Prepare(ctx context.Context, src document.Source) (*resume.Prepared, error) {
	args := m.Called(ctx, src)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*resume.Prepared), args.Error(1)
}
