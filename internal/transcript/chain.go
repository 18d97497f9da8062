package transcript

import (
	"context"

	"github.com/nguyentantai21042004/podcast-digest/internal/logger"
	"github.com/nguyentantai21042004/podcast-digest/internal/models"
)

const (
	sourceNone  = "none"
	sourceChain = "chain"
)

// NullProvider reports every transcript as unavailable.
type NullProvider struct {
	logger logger.Logger
}

func NewNullProvider(log logger.Logger) *NullProvider {
	return &NullProvider{logger: log}
}

func (p *NullProvider) Transcript(ctx context.Context, episode models.Episode) models.TranscriptResult {
	p.logger.Warn(ctx, "Transcript unavailable for %s", episode.Title)
	return models.Unavailable(sourceNone)
}

// Chain tries providers in order and returns the first result that is
// available or an error.
type Chain []Provider

func (c Chain) Transcript(ctx context.Context, episode models.Episode) models.TranscriptResult {
	for _, p := range c {
		if res := p.Transcript(ctx, episode); res.Status != models.TranscriptUnavailable {
			return res
		}
	}
	return models.Unavailable(sourceChain)
}
