package renderer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName = "Times New Roman"
	fontSize = 12
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
	reQuote   = regexp.MustCompile(`^>\s?(.*)$`)
	reLink    = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

type docxWriter struct {
	dir string
}

func (w *docxWriter) Path(date time.Time) string {
	return Path(w.dir, date, ".docx")
}

func (w *docxWriter) Write(ctx context.Context, content string, date time.Time) (string, error) {
	if err := prepare(w.dir); err != nil {
		return "", err
	}
	path := w.Path(date)
	if err := markdownToDocx(content, path); err != nil {
		return "", fmt.Errorf("write docx digest: %w", err)
	}
	return path, nil
}

// markdownToDocx converts the digest Markdown to a styled docx file.
// The leading level-1 heading becomes the document title.
func markdownToDocx(markdown, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	inFence := false
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			if trimmed != "" {
				doc.AddParagraph("").AddText(trimmed).Font("Courier New").Size(fontSize - 1).Color("444444")
			}
			continue
		}
		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			addStyledRun(doc.AddParagraph(""), m[2], true, headingSize(len(m[1])))
			continue
		}

		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			addRichText(doc.AddParagraph(""), "• "+m[1])
			continue
		}

		if m := reQuote.FindStringSubmatch(trimmed); m != nil {
			run := doc.AddParagraph("").AddText("“" + cleanMarkdownInline(m[1]) + "”")
			run.Font(fontName).Size(fontSize).Color("333333").Italic(true)
			continue
		}

		addRichText(doc.AddParagraph(""), trimmed)
	}

	return doc.SaveTo(outputPath)
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 18
	case 2:
		return 16
	case 3:
		return 14
	default:
		return fontSize + 1
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(cleanMarkdownInline(text)).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize).Color("000000")
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color("000000").Bold(true)
		}
	}
}

// cleanMarkdownInline drops inline markers and keeps link text with its URL.
func cleanMarkdownInline(s string) string {
	s = reLink.ReplaceAllString(s, "$1 ($2)")
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	s = strings.ReplaceAll(s, "*", "")
	return s
}
