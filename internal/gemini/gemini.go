package gemini

import (
	"context"

	"google.golang.org/genai"
)

// Request is a single completion call. Schema, when set, constrains the
// response to JSON of that shape.
type Request struct {
	System          string
	Prompt          string
	Schema          *genai.Schema
	Temperature     float32
	MaxOutputTokens int32
}

// Completer is the text-completion collaborator used for extraction and outreach.
type Completer interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Embedder maps text to a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
