package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockEmbeddingCache struct {
	mock.Mock
}

func (m *MockEmbeddingCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	args := m.Called(ctx, key)

	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}

	return args.Get(0).([]float32), args.Bool(1), args.Error(2)
}

func (m *MockEmbeddingCache) Set(ctx context.Context, key string, vec []float32) error {
	args := m.Called(ctx, key, vec)
	return args.Error(0)
}
