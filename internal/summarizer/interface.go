package summarizer

import "github.com/nguyentantai21042004/podcast-digest/internal/models"

// Summarizer turns a transcript into a deterministic extractive summary.
type Summarizer interface {
	Summarize(episode models.Episode, transcript string) models.EpisodeSummary
}
