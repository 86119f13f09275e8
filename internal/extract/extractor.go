// Package extract converts raw document bytes of various formats into plain text.
package extract

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Format extracts plain text from one document format.
type Format interface {
	Extract(content []byte) (string, error)
}

// Extractor dispatches extraction by normalized file extension. Formats are
// registered in a table so adding one never touches call sites.
type Extractor struct {
	formats map[string]Format
	logger  *zap.Logger
}

// NewExtractor returns an extractor with all built-in formats registered.
// logger may be nil.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Extractor{
		formats: make(map[string]Format),
		logger:  logger,
	}
	plain := plainText{}
	e.Register(".txt", plain)
	e.Register(".md", plain)
	e.Register(".rst", plain)
	e.Register(".pdf", pdfFormat{})
	e.Register(".docx", docxFormat{})
	e.Register(".excalidraw", canvasFormat{})
	e.Register(".xlsx", excelFormat{})
	e.Register(".pptx", pptxFormat{})
	return e
}

// Register maps a normalized extension (leading dot, lower case) to a format.
func (e *Extractor) Register(ext string, f Format) {
	e.formats[normalizeExt(ext)] = f
}

// Supported reports whether ext has a registered format.
func (e *Extractor) Supported(ext string) bool {
	_, ok := e.formats[normalizeExt(ext)]
	return ok
}

// Extract returns the plain text of content for the given extension. An
// unsupported extension yields empty text, and a format failure (corrupt
// file, parser panic) is recovered to empty text and logged; a single bad
// file must never abort a batch.
func (e *Extractor) Extract(name string, content []byte, ext string) string {
	f, ok := e.formats[normalizeExt(ext)]
	if !ok {
		e.logger.Debug("extract: unsupported format skipped",
			zap.String("name", name), zap.String("ext", ext))
		return ""
	}
	text, err := safeExtract(f, content)
	if err != nil {
		e.logger.Warn("extract: format failure, contributing empty text",
			zap.String("name", name), zap.String("ext", ext), zap.Error(err))
		return ""
	}
	return text
}

// safeExtract runs f.Extract and converts panics from format parsers into errors.
func safeExtract(f Format, content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()
	return f.Extract(content)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
