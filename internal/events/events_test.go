package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusChange_JSONAndRoutingKey(t *testing.T) {
	id := uuid.MustParse("01890a5d-ac96-774b-bcce-b302099a8057")
	resumeID := int64(12)
	change := StatusChange{
		UploadID: id,
		OwnerID:  4,
		Status:   "parsed",
		ResumeID: &resumeID,
		At:       time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, "upload.01890a5d-ac96-774b-bcce-b302099a8057", change.RoutingKey())

	raw, err := json.Marshal(change)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"upload_id": "01890a5d-ac96-774b-bcce-b302099a8057",
		"user_id": 4,
		"status": "parsed",
		"resume_id": 12,
		"at": "2025-06-01T10:00:00Z"
	}`, string(raw))
}

func TestPublish(t *testing.T) {
	url := os.Getenv("RABBITMQ_TEST_URL")
	if url == "" {
		t.Skip("RABBITMQ_TEST_URL not set, skipping integration test")
	}

	p, err := NewPublisher(url, "upload_updates_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	err = p.Publish(context.Background(), StatusChange{
		UploadID: uuid.New(),
		OwnerID:  1,
		Status:   "processing",
		At:       time.Now(),
	})
	assert.NoError(t, err)
}
