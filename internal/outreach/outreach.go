// Package outreach drafts recruiter emails to candidates.
package outreach

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	apperrors "resume-matcher/internal/errors"
	"resume-matcher/internal/gemini"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/models"
)

const (
	temperature     = 0.7
	maxOutputTokens = 400
)

// ResumeReader is the access-controlled resume lookup.
type ResumeReader interface {
	Get(ctx context.Context, caller models.User, id int64) (*models.ResumeRecord, error)
}

type Directory interface {
	UserByID(ctx context.Context, id int64) (*models.User, error)
	OnboardingByUserID(ctx context.Context, userID int64) (*models.HROnboarding, error)
}

type Composer struct {
	resumes   ResumeReader
	directory Directory
	llm       gemini.Completer
	logger    *zap.Logger
}

func NewComposer(resumes ResumeReader, directory Directory, llm gemini.Completer, log *zap.Logger) *Composer {
	return &Composer{resumes: resumes, directory: directory, llm: llm, logger: logger.OrNop(log)}
}

// Compose writes an outreach email from an HR caller to the owner of resumeID.
func (c *Composer) Compose(ctx context.Context, caller models.User, resumeID int64) (string, error) {
	if caller.Role != models.RoleHR {
		return "", apperrors.Unauthorized("not authorized: hr only")
	}

	rec, err := c.resumes.Get(ctx, caller, resumeID)
	if err != nil {
		return "", err
	}

	hr, err := c.directory.UserByID(ctx, caller.ID)
	if err != nil {
		return "", err
	}

	onboarding, err := c.directory.OnboardingByUserID(ctx, caller.ID)
	if err != nil {
		return "", err
	}

	email, err := c.llm.Generate(ctx, gemini.Request{
		Prompt:          buildPrompt(hr, onboarding, rec),
		Temperature:     temperature,
		MaxOutputTokens: maxOutputTokens,
	})
	if err != nil {
		return "", err
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return "", apperrors.Upstream("outreach email came back empty", nil)
	}

	c.logger.Info("outreach email generated",
		zap.Int64(logger.FieldOwnerID, caller.ID),
		zap.Int64(logger.FieldResumeID, resumeID),
		zap.Int("length", len(email)),
	)
	return email, nil
}

func buildPrompt(hr *models.User, o *models.HROnboarding, r *models.ResumeRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an HR professional with the following details:\n")
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\n\n", hr.Name, hr.Email)

	fmt.Fprintf(&b, "Company Profile:\n")
	fmt.Fprintf(&b, "Company Size: %s\n", o.CompanySize)
	fmt.Fprintf(&b, "Hiring Timeline: %s\n", o.HiringTimeline)
	fmt.Fprintf(&b, "Industry Focus: %s\n\n", o.IndustryFocus)

	fmt.Fprintf(&b, "You want to reach out to the following candidate:\n")
	fmt.Fprintf(&b, "Name: %s\n", r.Name)
	fmt.Fprintf(&b, "Summary: %s\n", r.Summary)
	fmt.Fprintf(&b, "Technical Skills: %s\n", strings.Join(r.TechnicalSkills, ", "))
	fmt.Fprintf(&b, "Programming Languages: %s\n", strings.Join(r.ProgrammingLanguages, ", "))
	fmt.Fprintf(&b, "LinkedIn: %s\n", r.LinkedIn)
	fmt.Fprintf(&b, "GitHub: %s\n\n", r.GitHub)

	b.WriteString("Write a professional outreach email introducing yourself and your company, and expressing " +
		"interest in the candidate based on their resume. Be concise, friendly, and relevant to the " +
		"candidate's background and your company's focus.")

	return b.String()
}
