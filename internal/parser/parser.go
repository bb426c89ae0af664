// Package parser turns raw resume text into a validated ParsedResume using an LLM.
package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"go.uber.org/zap"

	apperrors "resume-matcher/internal/errors"
	"resume-matcher/internal/gemini"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/models"
)

type Parser struct {
	llm    gemini.Completer
	logger *zap.Logger
}

func New(llm gemini.Completer, log *zap.Logger) *Parser {
	return &Parser{llm: llm, logger: logger.OrNop(log)}
}

// Parse extracts a ParsedResume from text. It calls the model exactly once;
// a response that does not fit the schema is an upstream error.
func (p *Parser) Parse(ctx context.Context, text string) (*models.ParsedResume, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.Validation("resume text is empty")
	}

	raw, err := p.llm.Generate(ctx, gemini.Request{
		System:      systemPrompt,
		Prompt:      userPromptPrefix + text,
		Schema:      ResumeSchema(),
		Temperature: 0,
	})
	if err != nil {
		return nil, err
	}

	parsed, err := Decode(raw)
	if err != nil {
		p.logger.Warn("llm response did not match resume schema",
			zap.Error(err),
			zap.String("response_preview", logger.TruncateForLog(raw, 300)),
		)
		return nil, apperrors.Upstream("resume extraction returned invalid data", err)
	}

	return parsed, nil
}

// Decode strictly decodes a model response and normalizes it.
func Decode(raw string) (*models.ParsedResume, error) {
	dec := json.NewDecoder(strings.NewReader(cleanJSON(raw)))
	dec.DisallowUnknownFields()

	var parsed models.ParsedResume
	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode resume json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after resume json")
	}

	if err := validate(&parsed); err != nil {
		return nil, err
	}
	normalize(&parsed)
	return &parsed, nil
}

// cleanJSON strips markdown code fences some models wrap around JSON.
func cleanJSON(input string) string {
	clean := strings.TrimSpace(input)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}

func validate(p *models.ParsedResume) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if math.IsNaN(p.TotalExperience) || math.IsInf(p.TotalExperience, 0) || p.TotalExperience < 0 {
		return fmt.Errorf("invalid total_experience %v", p.TotalExperience)
	}
	for i, e := range p.Experiences {
		if strings.TrimSpace(e.Title) == "" {
			return fmt.Errorf("experience %d has no title", i)
		}
	}
	for i, e := range p.Educations {
		if strings.TrimSpace(e.Title) == "" {
			return fmt.Errorf("education %d has no title", i)
		}
	}
	for i, e := range p.Projects {
		if strings.TrimSpace(e.Title) == "" {
			return fmt.Errorf("project %d has no title", i)
		}
	}
	for i, e := range p.Certifications {
		if strings.TrimSpace(e.Title) == "" {
			return fmt.Errorf("certification %d has no title", i)
		}
	}
	return nil
}

func normalize(p *models.ParsedResume) {
	p.Name = strings.TrimSpace(p.Name)
	p.LinkedIn = trimLink(p.LinkedIn, "linkedin.com")
	p.GitHub = trimLink(p.GitHub, "github.com")

	p.TechnicalSkills = nonNil(p.TechnicalSkills)
	p.SoftSkills = nonNil(p.SoftSkills)
	p.ProgrammingLanguages = nonNil(p.ProgrammingLanguages)
	p.Languages = nonNil(p.Languages)

	if p.Experiences == nil {
		p.Experiences = []models.Experience{}
	}
	for i := range p.Experiences {
		e := &p.Experiences[i]
		e.StartDate, e.EndDate = normalizeSpan(e.StartDate, e.EndDate)
	}

	if p.Educations == nil {
		p.Educations = []models.Education{}
	}
	for i := range p.Educations {
		e := &p.Educations[i]
		e.StartDate, e.EndDate = normalizeSpan(e.StartDate, e.EndDate)
	}

	if p.Projects == nil {
		p.Projects = []models.Project{}
	}
	for i := range p.Projects {
		pr := &p.Projects[i]
		pr.StartDate, pr.EndDate = normalizeSpan(pr.StartDate, pr.EndDate)
		pr.Technologies = nonNil(pr.Technologies)
		pr.ProgrammingLanguages = nonNil(pr.ProgrammingLanguages)
	}

	if p.Certifications == nil {
		p.Certifications = []models.Certification{}
	}
	for i := range p.Certifications {
		c := &p.Certifications[i]
		c.EndDate = NormalizeDate(c.EndDate)
	}
}

// trimLink drops the scheme and "www." from a profile URL, keeping
// everything from the host onwards.
func trimLink(link, host string) string {
	link = strings.TrimSpace(link)
	if i := strings.Index(strings.ToLower(link), host); i >= 0 {
		return strings.TrimSuffix(link[i:], "/")
	}
	return link
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
