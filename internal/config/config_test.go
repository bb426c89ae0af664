package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/resumes")
	t.Setenv("S3_BUCKET_NAME", "resume-bucket")
	t.Setenv("GEMINI_API_KEY", "test-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 10*time.Second, cfg.Worker.PollInterval)
	assert.Equal(t, 1, cfg.Worker.Concurrency)
	assert.Equal(t, 30*time.Minute, cfg.Worker.StaleAfter)
	assert.Equal(t, 768, cfg.Gemini.EmbeddingDim)
	assert.Equal(t, "gemini-embedding-001", cfg.Gemini.EmbeddingModel)
	assert.True(t, cfg.Worker.Enabled)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("WORKER_POLL_INTERVAL", "3s")
	t.Setenv("WORKER_CONCURRENCY", "4")
	t.Setenv("API_PORT", "9090")
	t.Setenv("LOG_JSON", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Worker.PollInterval)
	assert.Equal(t, 4, cfg.Worker.Concurrency)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.True(t, cfg.Log.JSON)
}

func TestLoadRequiresDatabase(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestValidateAPI(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.ValidateAPI())

	cfg.API.JWTSecret = "secret"
	assert.NoError(t, cfg.ValidateAPI())
}

func TestLoadTracingAndCORS(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,https://app.example.com")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("OTEL_TRACES_SAMPLER_RATIO", "0.25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.API.CORSOrigins)
	assert.Equal(t, "collector:4317", cfg.Tracing.Endpoint)
	assert.True(t, cfg.Tracing.Insecure)
	assert.InDelta(t, 0.25, cfg.Tracing.SampleRatio, 1e-9)
}

func TestLoadRejectsSampleRatio(t *testing.T) {
	setRequired(t)
	t.Setenv("OTEL_TRACES_SAMPLER_RATIO", "1.5")

	_, err := Load()
	assert.ErrorContains(t, err, "sample ratio")
}
