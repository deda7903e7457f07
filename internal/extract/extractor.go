// Package extract provides per-page text extraction from document files.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hayasui/kotae/internal/models"
)

// ErrUnsupportedFormat is returned for file extensions with no extractor.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ErrNoContent is returned when a document yields no text.
var ErrNoContent = errors.New("no text content extracted")

// Extractor extracts ordered page text from document files.
type Extractor struct {
	logger *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used to report skipped pages.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// NewExtractor returns an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads the file at path and returns its text as ordered pages.
// The source recorded on each page is the file's base name. PDFs yield one
// page per physical page, spreadsheets one per sheet, and flat formats a
// single page 1.
func (e *Extractor) Extract(path string) ([]models.PageText, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return e.ExtractBytes(content, ext, filepath.Base(path))
}

// ExtractBytes extracts pages from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractBytes(content []byte, ext, source string) ([]models.PageText, error) {
	var (
		pages []models.PageText
		err   error
	)
	switch ext {
	case ".pdf":
		pages, err = e.extractPDF(content, source)
	case ".docx":
		pages, err = extractDOCX(content, source)
	case ".xlsx":
		pages, err = extractExcel(content, source)
	case ".txt", ".md":
		pages, err = extractPlain(content, source)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	kept := pages[:0]
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoContent, source)
	}
	return kept, nil
}

// Supported reports whether the extension has an extractor.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".docx", ".xlsx", ".txt", ".md":
		return true
	}
	return false
}
