package digest

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/podcast-digest/internal/config"
	"github.com/nguyentantai21042004/podcast-digest/internal/models"
)

// Runner produces the daily digest document. Runs on the same day extend
// that day's document.
type Runner interface {
	Run(ctx context.Context, shows []config.ShowConfig) (*models.DigestDocument, error)
	Refresh(ctx context.Context, episodeID string) (*models.DigestDocument, error)
}

// Catalog lists the episodes of a show published after lastProcessed,
// oldest first, together with the show name.
type Catalog interface {
	NewEpisodes(ctx context.Context, showID string, lastProcessed time.Time) (string, []models.Episode, error)
}
