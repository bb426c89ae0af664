package logger

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	FieldUploadID = "upload_id"
	FieldOwnerID  = "owner_id"
	FieldResumeID = "resume_id"
	// FieldProvider is the structured log field key for the LLM provider name.
	FieldProvider = "llm_provider"
	// FieldModel is the structured log field key for the model identifier.
	FieldModel = "llm_model"
)

// UploadFields describes an upload record in log entries.
func UploadFields(id uuid.UUID, owner int64) []zap.Field {
	return []zap.Field{
		zap.String(FieldUploadID, id.String()),
		zap.Int64(FieldOwnerID, owner),
	}
}

// LLMFields returns the provider and model fields, skipping empty values.
func LLMFields(provider, model string) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	if p := strings.TrimSpace(provider); p != "" {
		fields = append(fields, zap.String(FieldProvider, p))
	}
	if m := strings.TrimSpace(model); m != "" {
		fields = append(fields, zap.String(FieldModel, m))
	}
	return fields
}
