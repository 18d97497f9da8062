package transcript

import (
	"context"

	"github.com/nguyentantai21042004/podcast-digest/internal/models"
)

// Provider looks up the transcript of an episode. Failures are reported
// through the result status, never as a Go error.
type Provider interface {
	Transcript(ctx context.Context, episode models.Episode) models.TranscriptResult
}
