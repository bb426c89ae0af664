package geministore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	apperrors "resume-matcher/internal/errors"
	"resume-matcher/internal/gemini"
	"resume-matcher/internal/logger"
)

const provider = "gemini"

type Config struct {
	APIKey            string
	Model             string
	EmbeddingModel    string
	EmbeddingDim      int
	RequestsPerMinute int
}

// models is the part of genai.Models the client calls.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// GeminiClient talks to the Gemini API behind a rate limiter and a circuit
// breaker. Calls are never retried.
type GeminiClient struct {
	models         models
	model          string
	embeddingModel string
	embeddingDim   int32
	limiter        *rate.Limiter
	breaker        *gobreaker.CircuitBreaker
	logger         *zap.Logger
}

func New(ctx context.Context, cfg Config, log *zap.Logger) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newClient(client.Models, cfg, log), nil
}

func newClient(m models, cfg Config, log *zap.Logger) *GeminiClient {
	log = logger.OrNop(log)

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	burst := rpm / 10
	if burst < 1 {
		burst = 1
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// bad input is the caller's problem, not a sign the service is down
			return err == nil || errors.Is(err, apperrors.ErrPermanentFailure)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &GeminiClient{
		models:         m,
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		embeddingDim:   int32(cfg.EmbeddingDim),
		limiter:        rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
		breaker:        breaker,
		logger:         log.With(logger.LLMFields(provider, cfg.Model)...),
	}
}

// Generate sends one prompt and returns the text of the response.
func (g *GeminiClient) Generate(ctx context.Context, req gemini.Request) (string, error) {
	ctx, span := otel.Tracer("geministore").Start(ctx, "gemini.generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", g.model),
		attribute.Int("gemini.prompt_length", len(req.Prompt)),
		attribute.Float64("gemini.temperature", float64(req.Temperature)),
		attribute.Bool("gemini.schema", req.Schema != nil),
	)

	if strings.TrimSpace(req.Prompt) == "" {
		return "", apperrors.Validation("prompt must not be empty")
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.MaxOutputTokens > 0 {
		config.MaxOutputTokens = req.MaxOutputTokens
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = req.Schema
	}

	g.logger.Debug("gemini generate request",
		zap.Int("prompt_length", len(req.Prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(req.Prompt, 200)),
	)

	result, err := g.execute(ctx, func() (any, error) {
		return g.models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), config)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content failed")
		return "", err
	}

	resp, _ := result.(*genai.GenerateContentResponse)
	text := ""
	if resp != nil {
		text = strings.TrimSpace(resp.Text())
	}
	if text == "" {
		span.SetStatus(codes.Error, "empty response")
		return "", apperrors.Upstream("gemini returned an empty response", nil)
	}

	g.logger.Debug("gemini generate response",
		zap.Int("response_length", len(text)),
		zap.String("response_preview", logger.TruncateForLog(text, 200)),
	)

	return text, nil
}

// Embed returns the embedding of text using the configured embedding model.
func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, span := otel.Tracer("geministore").Start(ctx, "gemini.embed")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", g.embeddingModel),
		attribute.Int("gemini.text_length", len(text)),
	)

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	var config *genai.EmbedContentConfig
	if g.embeddingDim > 0 {
		config = &genai.EmbedContentConfig{OutputDimensionality: genai.Ptr(g.embeddingDim)}
	}

	result, err := g.execute(ctx, func() (any, error) {
		return g.models.EmbedContent(ctx, g.embeddingModel, contents, config)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "embed content failed")
		return nil, err
	}

	resp, _ := result.(*genai.EmbedContentResponse)
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, apperrors.Upstream("gemini returned an empty embedding", nil)
	}

	return resp.Embeddings[0].Values, nil
}

func (g *GeminiClient) execute(ctx context.Context, call func() (any, error)) (any, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, apperrors.Upstream("gemini rate limiter", err)
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		res, err := call()
		if err != nil {
			return nil, classify(err)
		}
		return res, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperrors.Upstream("gemini circuit open", err)
		}
		if apperrors.Classified(err) {
			return nil, err
		}
		return nil, apperrors.Upstream("gemini request failed", err)
	}
	return result, nil
}

// classify tags auth and bad-request failures as permanent.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperrors.Upstream("gemini authentication failed", fmt.Errorf("%w: %v", apperrors.ErrPermanentFailure, err))
		case http.StatusBadRequest:
			return apperrors.Upstream("gemini rejected the request", fmt.Errorf("%w: %v", apperrors.ErrPermanentFailure, err))
		}
	}
	return apperrors.Upstream("gemini request failed", err)
}

func (g *GeminiClient) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
