package digest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/podcast-digest/internal/config"
	"github.com/nguyentantai21042004/podcast-digest/internal/models"
	"github.com/nguyentantai21042004/podcast-digest/internal/renderer"
)

// Run collects every show, adds the new episodes to today's digest, writes
// it and then advances the state markers of the new episodes. Episodes of
// today's digest that still lack a summary are looked up again. A show that
// fails is logged and left out.
func (r *implRunner) Run(ctx context.Context, shows []config.ShowConfig) (*models.DigestDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := uuid.NewString()
	startTime := time.Now()
	r.logger.Info(ctx, "Digest run %s started for %d shows", runID, len(shows))

	date := r.now().In(r.location)
	day, err := r.loadJournal(date.Format(dayLayout))
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	if retry := day.pending(); len(retry) > 0 {
		r.logger.Info(ctx, "Run %s: looking up %d earlier episodes without a summary", runID, len(retry))
		blocks, err := r.renderEpisodes(ctx, retry)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", runID, err)
		}
		day.replace(blocks)
	}

	var sections []*showSection
	for _, show := range shows {
		section, err := r.collectShow(ctx, show)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("run %s: %w", runID, ctx.Err())
			}
			r.logger.Error(ctx, "Run %s: skipping show %s: %v", runID, showID(show), err)
			continue
		}
		sections = append(sections, section)
		day.merge(section)
	}

	doc, err := r.publish(ctx, date, day)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	doc.RunID = runID

	for _, s := range sections {
		for _, eb := range s.Episodes {
			if err := r.state.UpdateLastProcessed(s.ShowID, eb.Episode.PublishedAt); err != nil {
				return nil, fmt.Errorf("run %s: update state for %s: %w", runID, s.ShowID, err)
			}
		}
	}

	r.logger.Info(ctx, "Digest run %s written to %s (%d episodes, %d summarized, %d unavailable) in %s",
		runID, doc.OutputPath, doc.Stats.Total, doc.Stats.Summarized, doc.Stats.Unavailable, time.Since(startTime))
	return doc, nil
}

// Refresh looks up the transcript of one episode of today's digest again and
// rewrites the digest when it now yields a summary. It returns nil when the
// episode is not in today's digest, is already summarized, or still has no
// transcript.
func (r *implRunner) Refresh(ctx context.Context, episodeID string) (*models.DigestDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	date := r.now().In(r.location)
	day, err := r.loadJournal(date.Format(dayLayout))
	if err != nil {
		return nil, err
	}
	eb := day.find(episodeID)
	if eb == nil || eb.Outcome == outcomeSummarized {
		return nil, nil
	}

	fresh := r.renderEpisode(ctx, eb.Episode)
	if fresh.Outcome != outcomeSummarized {
		r.logger.Debug(ctx, "Episode %s still has no transcript", episodeID)
		return nil, nil
	}
	*eb = fresh

	doc, err := r.publish(ctx, date, day)
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", episodeID, err)
	}
	doc.RunID = uuid.NewString()
	r.logger.Info(ctx, "Digest run %s: summarized %s, rewrote %s", doc.RunID, episodeID, doc.OutputPath)
	return doc, nil
}

// publish renders day and writes it. An empty day never replaces a digest
// already on disk for that date.
func (r *implRunner) publish(ctx context.Context, date time.Time, day *dayJournal) (*models.DigestDocument, error) {
	stats, rendered := day.render()
	overview := renderer.RenderDailyOverview(date, renderer.DailyOverviewText(stats), stats)
	doc := &models.DigestDocument{
		Date:         date,
		Stats:        stats,
		Overview:     overview,
		ShowSections: rendered,
	}
	if rendered == nil {
		doc.ShowSections = []string{}
	}

	if stats.Total == 0 {
		existing := r.writer.Path(date)
		if _, err := os.Stat(existing); err == nil {
			r.logger.Info(ctx, "Nothing new for %s, keeping %s", day.Date, existing)
			doc.OutputPath = existing
			return doc, nil
		}
	}

	path, err := r.writer.Write(ctx, renderer.BuildDocument(overview, rendered), date)
	if err != nil {
		return nil, err
	}
	if err := r.saveJournal(day); err != nil {
		return nil, err
	}
	doc.OutputPath = path
	return doc, nil
}
