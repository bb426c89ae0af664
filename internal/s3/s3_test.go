package s3_test

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/s3"
)

func setUpS3(t *testing.T) *s3.FileStore {
	t.Helper()

	endpoint := os.Getenv("MINIO_ENDPOINT")
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	bucket := os.Getenv("MINIO_BUCKET")

	if endpoint == "" || accessKey == "" || secretKey == "" {
		t.Skip("MinIO configuration not set (MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY), skipping integration test")
	}

	if bucket == "" {
		bucket = "resume-bucket"
	}

	store, err := s3.NewFileStore(context.Background(), s3.S3Config{
		EndpointURL: endpoint,
		Region:      "us-east-1",
		AccessKey:   accessKey,
		SecretKey:   secretKey,
		Bucket:      bucket,
	})
	require.NoError(t, err)

	return store
}

func TestNewFileStore_RequiresBucket(t *testing.T) {
	_, err := s3.NewFileStore(context.Background(), s3.S3Config{Region: "us-east-1"})
	assert.Error(t, err)
}

func TestUploadDownloadDelete(t *testing.T) {
	store := setUpS3(t)
	ctx := context.Background()

	content := []byte("%PDF-1.4\n%Mock PDF content for testing\n%%EOF")
	key := "test-resumes/" + uuid.NewString() + ".pdf"

	require.NoError(t, store.Upload(ctx, bytes.NewReader(content), key, "application/pdf"))

	got, err := store.Download(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	require.NoError(t, store.Delete(ctx, key))

	_, err = store.Download(ctx, key)
	assert.Error(t, err)
}

func TestUploadMultiplePDFs(t *testing.T) {
	store := setUpS3(t)
	ctx := context.Background()

	testCases := []struct {
		name    string
		content string
	}{
		{name: "small-pdf", content: "%PDF-1.4\nSmall test PDF\n%%EOF"},
		{name: "large-pdf", content: "%PDF-1.4\n" + string(make([]byte, 1024*100)) + "\n%%EOF"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			key := "test-resumes/" + tc.name + "-" + uuid.NewString() + ".pdf"

			err := store.Upload(ctx, bytes.NewReader([]byte(tc.content)), key, "application/pdf")
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Delete(ctx, key) })
		})
	}
}

func TestDownloadMissingKey(t *testing.T) {
	store := setUpS3(t)

	_, err := store.Download(context.Background(), "test-resumes/missing-"+uuid.NewString())
	assert.Error(t, err)
}
