package document

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"go.uber.org/zap"

	apperrors "resume-matcher/internal/errors"
	"resume-matcher/internal/logger"
)

type Extractor struct {
	logger *zap.Logger
}

func NewExtractor(log *zap.Logger) *Extractor {
	return &Extractor{logger: logger.OrNop(log)}
}

// Extract reads src and returns its text content. Unsupported or unreadable
// documents and documents with no text are validation errors.
func (e *Extractor) Extract(ctx context.Context, src Source) (string, error) {
	data, err := src.Read(ctx)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", apperrors.Validation(fmt.Sprintf("%s is empty", src.Name()))
	}

	ct := DetectContentType(src.ContentType(), src.Name(), head(data))

	var text string
	switch ct {
	case MimePDF:
		text, err = extractPDF(data)
	case MimeDOCX:
		text, err = extractDOCX(data)
	case MimeText:
		if !utf8.Valid(data) {
			err = errors.New("text file is not valid utf-8")
		}
		text = string(data)
	default:
		return "", apperrors.Validation(fmt.Sprintf("unsupported file type %q", src.ContentType()))
	}
	if err != nil {
		return "", apperrors.InvalidInput(fmt.Sprintf("could not read %s", src.Name()), err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperrors.Validation(fmt.Sprintf("no text found in %s", src.Name()))
	}

	e.logger.Debug("extracted document text",
		zap.String("filename", src.Name()),
		zap.String("content_type", ct),
		zap.Int("text_length", len(text)),
	)
	return text, nil
}

func head(data []byte) []byte {
	if len(data) > 512 {
		return data[:512]
	}
	return data
}

func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		if content = strings.TrimSpace(content); content != "" {
			pages = append(pages, content)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return docxText(doc.Editable().GetContent())
}

// docxText pulls the run text out of WordprocessingML, one line per paragraph.
func docxText(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	dec.Strict = false

	var (
		b      strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode docx xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
