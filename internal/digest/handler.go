package digest

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/podcast-digest/internal/logger"
	"github.com/nguyentantai21042004/podcast-digest/internal/watcher"
)

// TranscriptHandler returns a watcher handler that refreshes the episode
// named by a cached transcript file (<episode id>.txt or .srt). Files for
// episodes that already have a summary, including those the transcriber
// itself writes to the cache, leave the digest untouched.
func TranscriptHandler(runner Runner, log logger.Logger) watcher.EventHandler {
	return func(ctx context.Context, path string) error {
		base := filepath.Base(path)
		id := strings.TrimSuffix(base, filepath.Ext(base))

		doc, err := runner.Refresh(ctx, id)
		if err != nil {
			return err
		}
		if doc == nil {
			log.Debug(ctx, "No pending episode for %s", base)
			return nil
		}
		log.Info(ctx, "Transcript %s added to %s", base, doc.OutputPath)
		return nil
	}
}
