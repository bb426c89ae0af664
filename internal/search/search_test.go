package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "resume-matcher/internal/errors"
	"resume-matcher/internal/models"
)

type stubEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (s *stubEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	s.calls++
	return s.vec, s.err
}

type stubCorpus struct {
	resumes []models.ResumeRecord
	err     error
}

func (s *stubCorpus) EmbeddedResumes(context.Context) ([]models.ResumeRecord, error) {
	return s.resumes, s.err
}

func resume(id int64, vec ...float32) models.ResumeRecord {
	return models.ResumeRecord{ID: id, Embedding: vec}
}

func TestSearch_ExactMatchFirst(t *testing.T) {
	query := []float32{0.2, 0.4, 0.1}
	corpus := &stubCorpus{resumes: []models.ResumeRecord{
		resume(1, 1, 0, 0),
		resume(2, 0.2, 0.4, 0.1),
		resume(3, 0, 1, 0),
	}}
	embedder := &stubEmbedder{vec: query}

	results, err := NewEngine(embedder, corpus, nil).Search(context.Background(), "golang", 10)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, int64(2), results[0].Resume.ID)
	assert.Equal(t, 100.00, results[0].Match)
	assert.Equal(t, 1, embedder.calls)
	assert.Nil(t, results[0].Resume.Embedding)
}

func TestSearch_SortedAndTruncated(t *testing.T) {
	corpus := &stubCorpus{resumes: []models.ResumeRecord{
		resume(1, 0, 1),
		resume(2, 1, 1),
		resume(3, 1, 0),
		resume(4, -1, 0),
	}}

	results, err := NewEngine(&stubEmbedder{vec: []float32{1, 0}}, corpus, nil).Search(context.Background(), "q", 2)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(3), results[0].Resume.ID)
	assert.Equal(t, int64(2), results[1].Resume.ID)
	assert.Equal(t, 70.71, results[1].Match)
	assert.GreaterOrEqual(t, results[0].Match, results[1].Match)
}

func TestSearch_DefaultTopK(t *testing.T) {
	var resumes []models.ResumeRecord
	for i := int64(1); i <= 15; i++ {
		resumes = append(resumes, resume(i, 1, float32(i)))
	}

	results, err := NewEngine(&stubEmbedder{vec: []float32{1, 1}}, &stubCorpus{resumes: resumes}, nil).Search(context.Background(), "q", 0)

	require.NoError(t, err)
	assert.Len(t, results, DefaultTopK)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Match, results[i].Match)
	}
}

func TestSearch_StableTies(t *testing.T) {
	corpus := &stubCorpus{resumes: []models.ResumeRecord{
		resume(5, 1, 0),
		resume(3, 2, 0),
		resume(9, 3, 0),
	}}

	results, err := NewEngine(&stubEmbedder{vec: []float32{1, 0}}, corpus, nil).Search(context.Background(), "q", 10)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []int64{5, 3, 9}, []int64{results[0].Resume.ID, results[1].Resume.ID, results[2].Resume.ID})
}

func TestSearch_SkipsMissingAndMismatchedEmbeddings(t *testing.T) {
	corpus := &stubCorpus{resumes: []models.ResumeRecord{
		resume(1),
		resume(2, 1, 0, 0),
		resume(3, 1, 0),
	}}

	results, err := NewEngine(&stubEmbedder{vec: []float32{1, 0}}, corpus, nil).Search(context.Background(), "q", 10)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(3), results[0].Resume.ID)
}

func TestSearch_ZeroVectorScoresZero(t *testing.T) {
	corpus := &stubCorpus{resumes: []models.ResumeRecord{resume(1, 0, 0)}}

	results, err := NewEngine(&stubEmbedder{vec: []float32{1, 0}}, corpus, nil).Search(context.Background(), "q", 10)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Match)
}

func TestSearch_EmptyCorpus(t *testing.T) {
	results, err := NewEngine(&stubEmbedder{vec: []float32{1}}, &stubCorpus{}, nil).Search(context.Background(), "q", 10)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_Errors(t *testing.T) {
	_, err := NewEngine(&stubEmbedder{err: apperrors.Validation("query text must not be empty")}, &stubCorpus{}, nil).
		Search(context.Background(), "", 10)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = NewEngine(&stubEmbedder{vec: []float32{1}}, &stubCorpus{err: apperrors.Persistence("select", errors.New("down"))}, nil).
		Search(context.Background(), "q", 10)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
}

func TestMatchPercentage(t *testing.T) {
	assert.Equal(t, 100.0, MatchPercentage(1))
	assert.Equal(t, 12.35, MatchPercentage(0.123456))
	assert.Equal(t, -50.0, MatchPercentage(-0.5))
}

func TestValidateTopK(t *testing.T) {
	assert.NoError(t, ValidateTopK(0))
	assert.ErrorIs(t, ValidateTopK(-1), apperrors.ErrValidation)
}
