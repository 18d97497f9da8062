package transcript

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nguyentantai21042004/podcast-digest/internal/logger"
	"github.com/nguyentantai21042004/podcast-digest/internal/models"
)

const sourceCache = "cache"

var (
	reSrtTime  = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}[,.]\d{3}\s+-->`)
	reSrtIndex = regexp.MustCompile(`^\d+$`)
)

// CacheProvider reads transcripts from <dir>/<episode id>.txt or .srt.
type CacheProvider struct {
	dir    string
	logger logger.Logger
}

// NewCacheProvider creates a provider over dir.
func NewCacheProvider(dir string, log logger.Logger) *CacheProvider {
	return &CacheProvider{dir: dir, logger: log}
}

// Path returns the plain-text cache path for an episode.
func (p *CacheProvider) Path(episodeID string) string {
	return filepath.Join(p.dir, filepath.Base(episodeID)+".txt")
}

func (p *CacheProvider) Transcript(ctx context.Context, episode models.Episode) models.TranscriptResult {
	txt := p.Path(episode.ID)
	data, err := os.ReadFile(txt)
	if err == nil {
		p.logger.Info(ctx, "Using cached transcript for %s", episode.Title)
		return models.Available(string(data), sourceCache)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return models.Failed(sourceCache, fmt.Sprintf("read %s: %v", txt, err))
	}

	srt := strings.TrimSuffix(txt, ".txt") + ".srt"
	data, err = os.ReadFile(srt)
	if err == nil {
		p.logger.Info(ctx, "Using cached subtitle transcript for %s", episode.Title)
		return models.Available(SRTText(string(data)), sourceCache)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return models.Failed(sourceCache, fmt.Sprintf("read %s: %v", srt, err))
	}

	return models.Unavailable(sourceCache)
}

// Store writes a transcript into the cache so later runs can reuse it.
func (p *CacheProvider) Store(episodeID, text string) error {
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(p.Path(episodeID), []byte(text), 0644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// SRTText strips sequence numbers and timestamps from SRT content, keeping
// dialogue lines. A cue line identical to the previous one is dropped.
func SRTText(content string) string {
	var lines []string
	prev := ""
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(strings.TrimPrefix(line, "\ufeff"))
		if trimmed == "" || reSrtIndex.MatchString(trimmed) || reSrtTime.MatchString(trimmed) {
			continue
		}
		if trimmed == prev {
			continue
		}
		prev = trimmed
		lines = append(lines, trimmed)
	}
	return strings.Join(lines, "\n")
}
