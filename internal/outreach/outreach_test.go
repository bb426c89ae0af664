package outreach

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "resume-matcher/internal/errors"
	"resume-matcher/internal/gemini"
	"resume-matcher/internal/models"
	"resume-matcher/mocks"
)

var (
	hrCaller = models.User{ID: 3, Role: models.RoleHR}
	hrUser   = &models.User{ID: 3, Role: models.RoleHR, Name: "Sam Recruiter", Email: "sam@acme.io"}
	record   = &models.ResumeRecord{
		ID:      10,
		OwnerID: 1,
		Profile: models.Profile{
			Name:                 "Jane Doe",
			Summary:              "Backend engineer",
			LinkedIn:             "linkedin.com/in/janedoe",
			GitHub:               "github.com/janedoe",
			TechnicalSkills:      []string{"Docker", "Kubernetes"},
			ProgrammingLanguages: []string{"Go", "Python"},
		},
	}
	onboarding = &models.HROnboarding{UserID: 3, CompanySize: "50-200", HiringTimeline: "Q3", IndustryFocus: "fintech"}
)

func newComposer() (*Composer, *mocks.MockResumeService, *mocks.MockStore, *mocks.MockCompleter) {
	reader := new(mocks.MockResumeService)
	store := new(mocks.MockStore)
	llm := new(mocks.MockCompleter)
	return NewComposer(reader, store, llm, nil), reader, store, llm
}

func TestCompose_Success(t *testing.T) {
	c, reader, store, llm := newComposer()
	reader.On("Get", mock.Anything, hrCaller, int64(10)).Return(record, nil)
	store.On("UserByID", mock.Anything, int64(3)).Return(hrUser, nil)
	store.On("OnboardingByUserID", mock.Anything, int64(3)).Return(onboarding, nil)
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(req gemini.Request) bool {
		return req.Temperature == 0.7 &&
			req.MaxOutputTokens == 400 &&
			req.Schema == nil &&
			strings.Contains(req.Prompt, "Name: Sam Recruiter") &&
			strings.Contains(req.Prompt, "Industry Focus: fintech") &&
			strings.Contains(req.Prompt, "Technical Skills: Docker, Kubernetes") &&
			strings.Contains(req.Prompt, "GitHub: github.com/janedoe")
	})).Return("  Hi Jane,\n\nLet's talk.  \n", nil).Once()

	email, err := c.Compose(context.Background(), hrCaller, 10)

	require.NoError(t, err)
	assert.Equal(t, "Hi Jane,\n\nLet's talk.", email)
	llm.AssertExpectations(t)
}

func TestCompose_NonHRRefused(t *testing.T) {
	c, reader, _, llm := newComposer()

	_, err := c.Compose(context.Background(), models.User{ID: 1, Role: models.RoleCandidate}, 10)

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	reader.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestCompose_MissingOnboardingSkipsLLM(t *testing.T) {
	c, reader, store, llm := newComposer()
	reader.On("Get", mock.Anything, hrCaller, int64(10)).Return(record, nil)
	store.On("UserByID", mock.Anything, int64(3)).Return(hrUser, nil)
	store.On("OnboardingByUserID", mock.Anything, int64(3)).Return(nil, apperrors.NotFound("hr onboarding data not found"))

	_, err := c.Compose(context.Background(), hrCaller, 10)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "hr onboarding data not found", apperrors.PublicMessage(err))
	llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestCompose_ResumeErrorsPropagate(t *testing.T) {
	c, reader, _, llm := newComposer()
	reader.On("Get", mock.Anything, hrCaller, int64(10)).Return(nil, apperrors.Unauthorized("not authorized to access this resume"))

	_, err := c.Compose(context.Background(), hrCaller, 10)

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestCompose_UpstreamFailure(t *testing.T) {
	c, reader, store, llm := newComposer()
	reader.On("Get", mock.Anything, hrCaller, int64(10)).Return(record, nil)
	store.On("UserByID", mock.Anything, int64(3)).Return(hrUser, nil)
	store.On("OnboardingByUserID", mock.Anything, int64(3)).Return(onboarding, nil)
	llm.On("Generate", mock.Anything, mock.Anything).Return("", apperrors.Upstream("gemini request failed", errors.New("503"))).Once()

	_, err := c.Compose(context.Background(), hrCaller, 10)

	assert.ErrorIs(t, err, apperrors.ErrUpstream)
	llm.AssertNumberOfCalls(t, "Generate", 1)
}

func TestCompose_EmptyResponse(t *testing.T) {
	c, reader, store, llm := newComposer()
	reader.On("Get", mock.Anything, hrCaller, int64(10)).Return(record, nil)
	store.On("UserByID", mock.Anything, int64(3)).Return(hrUser, nil)
	store.On("OnboardingByUserID", mock.Anything, int64(3)).Return(onboarding, nil)
	llm.On("Generate", mock.Anything, mock.Anything).Return("   ", nil).Once()

	_, err := c.Compose(context.Background(), hrCaller, 10)

	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}
