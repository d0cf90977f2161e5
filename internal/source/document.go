// Package source loads the document to index and the reference dataset.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnsupportedFormat signals an input file extension the loader does not handle.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrEmptySource signals an input that yielded no usable content.
	ErrEmptySource = errors.New("empty source")
)

// Load returns the plain text of the document at path.
// PDF files are extracted page by page; everything else must be UTF-8 text.
func Load(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return loadPDF(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s is not valid UTF-8: %w", path, ErrUnsupportedFormat)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "", fmt.Errorf("%s: %w", path, ErrEmptySource)
	}
	return string(data), nil
}

func loadPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if f != nil {
		defer f.Close()
	}
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text %s: %w", path, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text %s: %w", path, err)
	}

	text := buf.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text extracted from %s: %w", path, ErrEmptySource)
	}
	return text, nil
}
