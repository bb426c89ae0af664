// Package document reads uploaded resume files and turns them into plain text.
package document

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText = "text/plain"
)

// Source is a readable document, either held in memory or parked in object storage.
type Source interface {
	Name() string
	ContentType() string
	Read(ctx context.Context) ([]byte, error)
}

type memorySource struct {
	name        string
	contentType string
	data        []byte
}

// FromBytes wraps an in-memory upload.
func FromBytes(name, contentType string, data []byte) Source {
	return &memorySource{name: name, contentType: contentType, data: data}
}

func (m *memorySource) Name() string        { return m.name }
func (m *memorySource) ContentType() string { return m.contentType }

func (m *memorySource) Read(ctx context.Context) ([]byte, error) {
	return m.data, ctx.Err()
}

// Fetcher downloads stored objects by key.
type Fetcher interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

type storedSource struct {
	fetcher     Fetcher
	key         string
	name        string
	contentType string
}

// FromStorage refers to an object that is fetched lazily on Read.
func FromStorage(fetcher Fetcher, key, name, contentType string) Source {
	return &storedSource{fetcher: fetcher, key: key, name: name, contentType: contentType}
}

func (s *storedSource) Name() string        { return s.name }
func (s *storedSource) ContentType() string { return s.contentType }

func (s *storedSource) Read(ctx context.Context) ([]byte, error) {
	data, err := s.fetcher.Download(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", s.key, err)
	}
	return data, nil
}

// DetectContentType resolves the document type from the declared content
// type, then the file extension, then the leading bytes. It returns "" when
// nothing matches a supported type.
func DetectContentType(declared, name string, head []byte) string {
	ct := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case MimePDF, MimeDOCX, MimeText:
		return ct
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".txt":
		return MimeText
	}

	switch {
	case bytes.HasPrefix(head, []byte("%PDF-")):
		return MimePDF
	case bytes.HasPrefix(head, []byte("PK\x03\x04")) && bytes.Contains(head, []byte("word/")):
		return MimeDOCX
	}
	return ""
}

// Extension returns the canonical file extension for a supported content type.
func Extension(contentType string) string {
	switch contentType {
	case MimePDF:
		return ".pdf"
	case MimeDOCX:
		return ".docx"
	case MimeText:
		return ".txt"
	default:
		return ""
	}
}
