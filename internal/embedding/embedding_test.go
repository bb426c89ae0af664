package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "resume-matcher/internal/errors"
	"resume-matcher/internal/models"
	"resume-matcher/mocks"
)

func TestSimilarity(t *testing.T) {
	a := []float32{0.3, -1.2, 4.5, 0.01}
	b := []float32{1, 2, 3, 4}

	assert.Equal(t, 1.0, Similarity(a, a))
	assert.Equal(t, Similarity(a, b), Similarity(b, a))
	assert.InDelta(t, -1.0, Similarity([]float32{1, 2}, []float32{-2, -4}), 1e-12)
	assert.InDelta(t, 0.0, Similarity([]float32{1, 0}, []float32{0, 1}), 1e-12)
}

func TestSimilarity_Degenerate(t *testing.T) {
	assert.Zero(t, Similarity([]float32{0, 0, 0}, []float32{1, 2, 3}))
	assert.Zero(t, Similarity([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Zero(t, Similarity(nil, nil))
}

func TestResumeText(t *testing.T) {
	p := &models.Profile{
		Name:                 "Jane Doe",
		Summary:              "Backend engineer",
		TechnicalSkills:      []string{"Docker", "Postgres"},
		ProgrammingLanguages: []string{"Go", "Python"},
		SoftSkills:           []string{"ignored"},
	}

	want := "Jane Doe Backend engineer Docker Postgres Go Python"
	assert.Equal(t, want, ResumeText(p))
	assert.Equal(t, ResumeText(p), ResumeText(p))
}

func TestEmbedResume_UsesCanonicalText(t *testing.T) {
	embedder := new(mocks.MockEmbedder)
	embedder.On("Embed", mock.Anything, "Jane   Go").Return([]float32{1, 2}, nil).Once()
	svc := NewService(embedder, nil, "m", nil)

	vec, err := svc.EmbedResume(context.Background(), &models.ParsedResume{
		Profile: models.Profile{Name: "Jane", ProgrammingLanguages: []string{"Go"}},
	})

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vec)
	embedder.AssertExpectations(t)
}

func TestEmbedQuery_Empty(t *testing.T) {
	svc := NewService(new(mocks.MockEmbedder), nil, "m", nil)

	_, err := svc.EmbedQuery(context.Background(), "   ")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestEmbedQuery_CacheHit(t *testing.T) {
	embedder := new(mocks.MockEmbedder)
	cache := new(mocks.MockEmbeddingCache)
	cache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return([]float32{9}, true, nil).Once()
	svc := NewService(embedder, cache, "m", nil)

	vec, err := svc.EmbedQuery(context.Background(), "golang")

	require.NoError(t, err)
	assert.Equal(t, []float32{9}, vec)
	embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
}

func TestEmbedQuery_CacheMissStores(t *testing.T) {
	embedder := new(mocks.MockEmbedder)
	embedder.On("Embed", mock.Anything, "golang").Return([]float32{1, 0}, nil).Once()
	cache := new(mocks.MockEmbeddingCache)
	cache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(nil, false, nil).Once()
	cache.On("Set", mock.Anything, mock.AnythingOfType("string"), []float32{1, 0}).Return(nil).Once()
	svc := NewService(embedder, cache, "m", nil)

	vec, err := svc.EmbedQuery(context.Background(), "  golang ")

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
	cache.AssertExpectations(t)
	embedder.AssertExpectations(t)
}

func TestEmbedQuery_CacheErrorsIgnored(t *testing.T) {
	embedder := new(mocks.MockEmbedder)
	embedder.On("Embed", mock.Anything, "golang").Return([]float32{1}, nil).Once()
	cache := new(mocks.MockEmbeddingCache)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, false, errors.New("down")).Once()
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("down")).Once()
	svc := NewService(embedder, cache, "m", nil)

	vec, err := svc.EmbedQuery(context.Background(), "golang")

	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vec)
}

func TestCacheKeyDependsOnModel(t *testing.T) {
	a := NewService(nil, nil, "model-a", nil)
	b := NewService(nil, nil, "model-b", nil)

	assert.Equal(t, a.cacheKey("go"), a.cacheKey("go"))
	assert.NotEqual(t, a.cacheKey("go"), b.cacheKey("go"))
}
