package digest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nguyentantai21042004/podcast-digest/internal/config"
	"github.com/nguyentantai21042004/podcast-digest/internal/models"
	"github.com/nguyentantai21042004/podcast-digest/internal/renderer"
	"github.com/nguyentantai21042004/podcast-digest/internal/spotify"
)

type outcome string

const (
	outcomeSummarized  outcome = "summarized"
	outcomeUnavailable outcome = "unavailable"
	outcomeError       outcome = "error"
)

type episodeBlock struct {
	Episode models.Episode `json:"episode"`
	Outcome outcome        `json:"outcome"`
	Block   string         `json:"block"`
}

type showSection struct {
	ShowID   string         `json:"show_id"`
	ShowName string         `json:"show_name"`
	Episodes []episodeBlock `json:"episodes"`
}

func showID(show config.ShowConfig) string {
	if show.ID != "" {
		return show.ID
	}
	return spotify.ResolveShowID(show.URL)
}

// collectShow fetches the new episodes of a show and renders one block per
// episode, in publish order.
func (r *implRunner) collectShow(ctx context.Context, show config.ShowConfig) (*showSection, error) {
	id := showID(show)

	last, ok, err := r.state.LastProcessed(id)
	if err != nil {
		return nil, fmt.Errorf("read last processed: %w", err)
	}
	if !ok {
		last = time.Time{}
	}

	name, episodes, err := r.catalog.NewEpisodes(ctx, id, last)
	if err != nil {
		return nil, fmt.Errorf("fetch episodes: %w", err)
	}
	if show.Name != "" {
		name = show.Name
	}
	r.logger.Info(ctx, "Show %s: %d new episodes", name, len(episodes))

	blocks, err := r.renderEpisodes(ctx, episodes)
	if err != nil {
		return nil, err
	}
	return &showSection{ShowID: id, ShowName: name, Episodes: blocks}, nil
}

// renderEpisodes looks up transcripts concurrently, bounded by maxConcurrent.
func (r *implRunner) renderEpisodes(ctx context.Context, episodes []models.Episode) ([]episodeBlock, error) {
	blocks := make([]episodeBlock, len(episodes))
	sem := newSemaphore(r.maxConcurrent)

	var wg sync.WaitGroup
	for i, ep := range episodes {
		if err := sem.acquire(ctx); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.release()
			blocks[i] = r.renderEpisode(ctx, ep)
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *implRunner) renderEpisode(ctx context.Context, ep models.Episode) episodeBlock {
	res := r.transcripts.Transcript(ctx, ep)
	switch {
	case res.Status == models.TranscriptAvailable && res.Text != "":
		summary := r.summarizer.Summarize(ep, res.Text)
		r.logger.Debug(ctx, "Summarized %s from %s: %d segments", ep.Title, res.Source, len(summary.Segments))
		return episodeBlock{Episode: ep, Outcome: outcomeSummarized, Block: renderer.RenderEpisode(summary)}
	case res.Status == models.TranscriptError:
		r.logger.Warn(ctx, "Transcript error for %s: %s", ep.Title, res.Error)
		return episodeBlock{Episode: ep, Outcome: outcomeError, Block: renderer.RenderTranscriptError(ep, res.Error)}
	default:
		return episodeBlock{Episode: ep, Outcome: outcomeUnavailable, Block: renderer.RenderUnavailable(ep)}
	}
}
