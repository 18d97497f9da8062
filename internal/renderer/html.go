package renderer

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"time"

	"github.com/yuin/goldmark"
)

var md = goldmark.New()

// MarkdownToHTML converts Markdown to an HTML fragment.
func MarkdownToHTML(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// HTMLPage wraps converted Markdown in a standalone page.
func HTMLPage(title string, src []byte) ([]byte, error) {
	body, err := MarkdownToHTML(src)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n",
		html.EscapeString(title))
	buf.Write(body)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

type htmlWriter struct {
	dir string
}

func (w *htmlWriter) Path(date time.Time) string {
	return Path(w.dir, date, ".html")
}

func (w *htmlWriter) Write(ctx context.Context, content string, date time.Time) (string, error) {
	if err := prepare(w.dir); err != nil {
		return "", err
	}
	page, err := HTMLPage(Title(date), []byte(content))
	if err != nil {
		return "", err
	}
	path := w.Path(date)
	if err := os.WriteFile(path, page, 0644); err != nil {
		return "", fmt.Errorf("write digest: %w", err)
	}
	return path, nil
}
