package renderer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrUnknownFormat is returned by NewWriter for unsupported formats.
var ErrUnknownFormat = errors.New("unknown output format")

// Writer persists a rendered Markdown digest and returns the written path.
type Writer interface {
	Write(ctx context.Context, content string, date time.Time) (string, error)
	// Path is the file Write uses for date.
	Path(date time.Time) string
}

// NewWriter returns the writer for format ("markdown", "docx" or "html")
// placing files in dir.
func NewWriter(format, dir string) (Writer, error) {
	switch format {
	case "markdown", "md":
		return &markdownWriter{dir: dir}, nil
	case "docx":
		return &docxWriter{dir: dir}, nil
	case "html":
		return &htmlWriter{dir: dir}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Path returns the file a digest for date is written to.
func Path(dir string, date time.Time, ext string) string {
	return filepath.Join(dir, date.Format(dateLayout)+ext)
}

func prepare(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

type markdownWriter struct {
	dir string
}

func (w *markdownWriter) Path(date time.Time) string {
	return Path(w.dir, date, ".md")
}

func (w *markdownWriter) Write(ctx context.Context, content string, date time.Time) (string, error) {
	if err := prepare(w.dir); err != nil {
		return "", err
	}
	path := w.Path(date)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write digest: %w", err)
	}
	return path, nil
}
