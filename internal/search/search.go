// Package search ranks stored resumes against a free-text query.
package search

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"resume-matcher/internal/embedding"
	apperrors "resume-matcher/internal/errors"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/metrics"
	"resume-matcher/internal/models"
)

const DefaultTopK = 10

type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// Corpus lists every resume that has an embedding, in a fixed order.
type Corpus interface {
	EmbeddedResumes(ctx context.Context) ([]models.ResumeRecord, error)
}

type Engine struct {
	embedder QueryEmbedder
	corpus   Corpus
	logger   *zap.Logger
}

func NewEngine(embedder QueryEmbedder, corpus Corpus, log *zap.Logger) *Engine {
	return &Engine{embedder: embedder, corpus: corpus, logger: logger.OrNop(log)}
}

// Search embeds query once and returns at most topK resumes ordered by match
// percentage, highest first. Equal scores keep the corpus order. topK <= 0
// means DefaultTopK.
func (e *Engine) Search(ctx context.Context, query string, topK int) (results []models.SearchResult, err error) {
	defer func() { metrics.SearchRequest(err) }()

	if topK <= 0 {
		topK = DefaultTopK
	}

	qvec, err := e.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	resumes, err := e.corpus.EmbeddedResumes(ctx)
	if err != nil {
		return nil, err
	}

	results = make([]models.SearchResult, 0, len(resumes))
	for _, r := range resumes {
		if len(r.Embedding) == 0 {
			continue
		}
		if len(r.Embedding) != len(qvec) {
			e.logger.Warn("skipping resume with mismatched embedding size",
				zap.Int64(logger.FieldResumeID, r.ID),
				zap.Int("embedding_size", len(r.Embedding)),
				zap.Int("query_size", len(qvec)),
			)
			continue
		}
		results = append(results, models.SearchResult{
			Resume: r,
			Match:  MatchPercentage(embedding.Similarity(qvec, r.Embedding)),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Match > results[j].Match
	})

	if len(results) > topK {
		results = results[:topK]
	}

	for i := range results {
		results[i].Resume.Embedding = nil
	}

	return results, nil
}

// MatchPercentage scales a similarity to 0-100 rounded to 2 decimals.
func MatchPercentage(similarity float64) float64 {
	return math.Round(similarity*10000) / 100
}

// ValidateTopK rejects negative sizes.
func ValidateTopK(topK int) error {
	if topK < 0 {
		return apperrors.Validation("top_k must not be negative")
	}
	return nil
}
