package document

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "resume-matcher/internal/errors"
)

type stubFetcher struct {
	data []byte
	err  error
	keys []string
}

func (s *stubFetcher) Download(_ context.Context, key string) ([]byte, error) {
	s.keys = append(s.keys, key)
	return s.data, s.err
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		filename string
		head     []byte
		want     string
	}{
		{"declared pdf", "application/pdf", "cv", nil, MimePDF},
		{"declared with params", "text/plain; charset=utf-8", "cv", nil, MimeText},
		{"extension fallback", "application/octet-stream", "CV.DOCX", nil, MimeDOCX},
		{"sniffed pdf", "", "upload", []byte("%PDF-1.7 rest"), MimePDF},
		{"unknown", "image/png", "photo.png", []byte{0x89, 'P', 'N', 'G'}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectContentType(tt.declared, tt.filename, tt.head))
		})
	}
}

func TestExtract_PlainText(t *testing.T) {
	e := NewExtractor(nil)

	text, err := e.Extract(context.Background(), FromBytes("cv.txt", MimeText, []byte("  Jane Doe\nGo developer \n")))

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo developer", text)
}

func TestExtract_UnsupportedType(t *testing.T) {
	e := NewExtractor(nil)

	_, err := e.Extract(context.Background(), FromBytes("photo.png", "image/png", []byte{0x89, 'P', 'N', 'G'}))

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestExtract_EmptyDocument(t *testing.T) {
	e := NewExtractor(nil)

	_, err := e.Extract(context.Background(), FromBytes("cv.txt", MimeText, nil))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = e.Extract(context.Background(), FromBytes("cv.txt", MimeText, []byte(" \n\t ")))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestExtract_CorruptPDF(t *testing.T) {
	e := NewExtractor(nil)

	_, err := e.Extract(context.Background(), FromBytes("cv.pdf", MimePDF, []byte("%PDF-1.4 garbage without xref")))

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestExtract_FromStorage(t *testing.T) {
	fetcher := &stubFetcher{data: []byte("stored resume")}
	e := NewExtractor(nil)

	text, err := e.Extract(context.Background(), FromStorage(fetcher, "uploads/1/a.txt", "a.txt", MimeText))

	require.NoError(t, err)
	assert.Equal(t, "stored resume", text)
	assert.Equal(t, []string{"uploads/1/a.txt"}, fetcher.keys)
}

func TestExtract_StorageFailure(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("no such key")}
	e := NewExtractor(nil)

	_, err := e.Extract(context.Background(), FromStorage(fetcher, "missing", "a.txt", MimeText))

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrValidation)
}

func TestDocxText(t *testing.T) {
	xmlBody := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Jane</w:t></w:r><w:r><w:t xml:space="preserve"> Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Go</w:t><w:tab/><w:t>Postgres</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	text, err := docxText(xmlBody)

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo\tPostgres\n", text)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".pdf", Extension(MimePDF))
	assert.Equal(t, ".docx", Extension(MimeDOCX))
	assert.Equal(t, "", Extension("image/png"))
}
