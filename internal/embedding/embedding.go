// Package embedding derives vectors for resumes and queries and compares them.
package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strings"

	"go.uber.org/zap"

	apperrors "resume-matcher/internal/errors"
	"resume-matcher/internal/gemini"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/models"
)

// Cache stores query vectors keyed by a digest of model and text.
type Cache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, vec []float32) error
}

type Service struct {
	embedder gemini.Embedder
	cache    Cache
	model    string
	logger   *zap.Logger
}

// NewService builds a Service. cache may be nil.
func NewService(embedder gemini.Embedder, cache Cache, model string, log *zap.Logger) *Service {
	return &Service{
		embedder: embedder,
		cache:    cache,
		model:    model,
		logger:   logger.OrNop(log),
	}
}

// Embed computes the vector for text without caching.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.Validation("cannot embed empty text")
	}
	return s.embedder.Embed(ctx, text)
}

// EmbedResume computes the stored vector of a parsed resume.
func (s *Service) EmbedResume(ctx context.Context, p *models.ParsedResume) ([]float32, error) {
	return s.Embed(ctx, ResumeText(&p.Profile))
}

// EmbedQuery computes the vector of a search query, consulting the cache
// first. Cache failures are logged and otherwise ignored.
func (s *Service) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.Validation("query text must not be empty")
	}

	key := s.cacheKey(query)
	if s.cache != nil {
		vec, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("embedding cache read failed", zap.Error(err))
		} else if ok {
			return vec, nil
		}
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, vec); err != nil {
			s.logger.Warn("embedding cache write failed", zap.Error(err))
		}
	}
	return vec, nil
}

func (s *Service) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(s.model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// ResumeText is the canonical text a resume is embedded from: name, summary,
// technical skills and programming languages, in that order.
func ResumeText(p *models.Profile) string {
	parts := []string{
		p.Name,
		p.Summary,
		strings.Join(p.TechnicalSkills, " "),
		strings.Join(p.ProgrammingLanguages, " "),
	}
	return strings.Join(parts, " ")
}

// Similarity is the cosine similarity of a and b in [-1, 1]. Vectors of
// different length or with zero magnitude score 0.
func Similarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}

	sim := dot / math.Sqrt(na*nb)
	return math.Max(-1, math.Min(1, sim))
}
