package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"resume-matcher/internal/gemini"
)

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Generate(ctx context.Context, req gemini.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]float32), args.Error(1)
}
