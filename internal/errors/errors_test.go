package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsAreDistinguishable(t *testing.T) {
	notFound := NotFound("resume not found")
	forbidden := Unauthorized("not authorized to access this resume")

	assert.True(t, errors.Is(notFound, ErrNotFound))
	assert.False(t, errors.Is(notFound, ErrUnauthorized))
	assert.True(t, errors.Is(forbidden, ErrUnauthorized))
	assert.False(t, errors.Is(forbidden, ErrNotFound))
}

func TestWrappedKindSurvivesFmtWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("save resume: %w", Persistence("insert resume", cause))

	assert.True(t, errors.Is(err, ErrPersistence))
	assert.True(t, errors.Is(err, cause))
	assert.True(t, Classified(err))
	assert.False(t, Classified(cause))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"not found", NotFound("missing"), http.StatusNotFound},
		{"unauthorized", Unauthorized("no"), http.StatusForbidden},
		{"upstream", Upstream("llm", errors.New("boom")), http.StatusBadGateway},
		{"persistence", Persistence("db", errors.New("boom")), http.StatusInternalServerError},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessageHidesCauses(t *testing.T) {
	assert.Equal(t, "resume not found", PublicMessage(NotFound("resume not found")))
	assert.Equal(t, "upstream service unavailable", PublicMessage(Upstream("gemini", errors.New("api key leaked"))))
	assert.Equal(t, "internal server error", PublicMessage(Persistence("insert", errors.New("pq: secret"))))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("raw")))
}
