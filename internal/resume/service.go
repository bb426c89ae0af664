// Package resume runs the extract, parse and embed sequence shared by the
// synchronous parse path and the ingestion worker, and guards resume reads.
package resume

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"resume-matcher/internal/document"
	apperrors "resume-matcher/internal/errors"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/models"
)

type TextExtractor interface {
	Extract(ctx context.Context, src document.Source) (string, error)
}

type Parser interface {
	Parse(ctx context.Context, text string) (*models.ParsedResume, error)
}

type Embedder interface {
	EmbedResume(ctx context.Context, p *models.ParsedResume) ([]float32, error)
}

type Store interface {
	SaveResume(ctx context.Context, ownerID int64, parsed *models.ParsedResume, embedding []float32) (*models.ResumeRecord, error)
	ResumeByID(ctx context.Context, id int64) (*models.ResumeRecord, error)
	ResumesByOwner(ctx context.Context, ownerID int64) ([]models.ResumeRecord, error)
	PublicResumes(ctx context.Context) ([]models.ResumeRecord, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

// Prepared is everything needed to persist one resume.
type Prepared struct {
	Parsed    *models.ParsedResume
	Embedding []float32
}

type Service struct {
	extractor TextExtractor
	parser    Parser
	embedder  Embedder
	store     Store
	logger    *zap.Logger
}

func NewService(extractor TextExtractor, parser Parser, embedder Embedder, store Store, log *zap.Logger) *Service {
	return &Service{
		extractor: extractor,
		parser:    parser,
		embedder:  embedder,
		store:     store,
		logger:    logger.OrNop(log),
	}
}

// Prepare extracts, parses and embeds a document without touching the
// database, so that the result can be committed in a single transaction.
func (s *Service) Prepare(ctx context.Context, src document.Source) (*Prepared, error) {
	text, err := s.extractor.Extract(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", src.Name(), err)
	}

	parsed, err := s.parser.Parse(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.Name(), err)
	}

	embedding, err := s.embedder.EmbedResume(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", src.Name(), err)
	}

	return &Prepared{Parsed: parsed, Embedding: embedding}, nil
}

// ParseNow ingests documents on the request path. Each document is committed
// on its own; the first failure stops the run and earlier documents stay saved.
func (s *Service) ParseNow(ctx context.Context, ownerID int64, sources []document.Source) ([]models.ResumeRecord, error) {
	if len(sources) == 0 {
		return nil, apperrors.Validation("no resumes provided")
	}

	saved := make([]models.ResumeRecord, 0, len(sources))
	for _, src := range sources {
		prepared, err := s.Prepare(ctx, src)
		if err != nil {
			return saved, err
		}

		rec, err := s.store.SaveResume(ctx, ownerID, prepared.Parsed, prepared.Embedding)
		if err != nil {
			return saved, fmt.Errorf("save %s: %w", src.Name(), err)
		}

		s.logger.Info("resume parsed",
			zap.Int64(logger.FieldOwnerID, ownerID),
			zap.Int64(logger.FieldResumeID, rec.ID),
			zap.String("filename", src.Name()),
		)
		saved = append(saved, *rec)
	}
	return saved, nil
}

// Get returns a full resume if caller may read it. The owner always may; a
// resume owned by a candidate is also open to HR users.
func (s *Service) Get(ctx context.Context, caller models.User, id int64) (*models.ResumeRecord, error) {
	rec, err := s.store.ResumeByID(ctx, id)
	if err != nil {
		return nil, err
	}

	uploader, err := s.store.UserByID(ctx, rec.OwnerID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NotFound("uploader not found")
	}
	if err != nil {
		return nil, err
	}

	if uploader.ID == caller.ID {
		return rec, nil
	}
	if uploader.Role.IsPublic() && caller.Role == models.RoleHR {
		return rec, nil
	}
	return nil, apperrors.Unauthorized("not authorized to access this resume")
}

func (s *Service) Public(ctx context.Context) ([]models.ResumeRecord, error) {
	return s.store.PublicResumes(ctx)
}

func (s *Service) Mine(ctx context.Context, caller models.User) ([]models.ResumeRecord, error) {
	return s.store.ResumesByOwner(ctx, caller.ID)
}
