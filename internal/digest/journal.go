package digest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/podcast-digest/internal/models"
	"github.com/nguyentantai21042004/podcast-digest/internal/renderer"
)

const dayLayout = "2006-01-02"

// dayJournal records every episode rendered into one day's digest, so a
// later run on the same day extends the document instead of replacing it.
type dayJournal struct {
	Date  string         `json:"date"`
	Shows []*showSection `json:"shows"`
}

func (d *dayJournal) clone() *dayJournal {
	c := &dayJournal{Date: d.Date, Shows: make([]*showSection, len(d.Shows))}
	for i, s := range d.Shows {
		c.Shows[i] = &showSection{
			ShowID:   s.ShowID,
			ShowName: s.ShowName,
			Episodes: append([]episodeBlock(nil), s.Episodes...),
		}
	}
	return c
}

// merge adds the blocks of a freshly collected show. An episode already
// present is replaced in place.
func (d *dayJournal) merge(section *showSection) {
	var target *showSection
	for _, s := range d.Shows {
		if s.ShowID == section.ShowID {
			target = s
			break
		}
	}
	if target == nil {
		target = &showSection{ShowID: section.ShowID}
		d.Shows = append(d.Shows, target)
	}
	target.ShowName = section.ShowName

	for _, eb := range section.Episodes {
		if existing := target.find(eb.Episode.ID); existing != nil {
			*existing = eb
			continue
		}
		target.Episodes = append(target.Episodes, eb)
	}
}

// pending lists the episodes that have no summary yet.
func (d *dayJournal) pending() []models.Episode {
	var out []models.Episode
	for _, s := range d.Shows {
		for _, eb := range s.Episodes {
			if eb.Outcome != outcomeSummarized {
				out = append(out, eb.Episode)
			}
		}
	}
	return out
}

func (d *dayJournal) find(episodeID string) *episodeBlock {
	for _, s := range d.Shows {
		if eb := s.find(episodeID); eb != nil {
			return eb
		}
	}
	return nil
}

// replace swaps in re-rendered blocks, matched by episode id.
func (d *dayJournal) replace(blocks []episodeBlock) {
	for _, b := range blocks {
		if eb := d.find(b.Episode.ID); eb != nil {
			*eb = b
		}
	}
}

// render returns the counters and the show sections of the day's digest.
// Transcript errors count as unavailable.
func (d *dayJournal) render() (models.DigestStats, []string) {
	var stats models.DigestStats
	var rendered []string
	for _, s := range d.Shows {
		if len(s.Episodes) == 0 {
			continue
		}
		rendered = append(rendered, renderer.RenderShowHeading(s.ShowName))
		for _, eb := range s.Episodes {
			rendered = append(rendered, eb.Block)
			stats.Total++
			if eb.Outcome == outcomeSummarized {
				stats.Summarized++
			} else {
				stats.Unavailable++
			}
		}
	}
	return stats, rendered
}

func (s *showSection) find(episodeID string) *episodeBlock {
	for i := range s.Episodes {
		if s.Episodes[i].Episode.ID == episodeID {
			return &s.Episodes[i]
		}
	}
	return nil
}

func (r *implRunner) journalPath(date string) string {
	return filepath.Join(r.journalDir, date+".json")
}

// loadJournal returns a working copy of the journal for date. Without a
// journal directory only the in-memory journal of this process is used.
func (r *implRunner) loadJournal(date string) (*dayJournal, error) {
	if r.journal != nil && r.journal.Date == date {
		return r.journal.clone(), nil
	}
	day := &dayJournal{Date: date}
	if r.journalDir == "" {
		return day, nil
	}

	raw, err := os.ReadFile(r.journalPath(date))
	if errors.Is(err, fs.ErrNotExist) {
		return day, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	if err := json.Unmarshal(raw, day); err != nil {
		return nil, fmt.Errorf("decode journal %s: %w", r.journalPath(date), err)
	}
	day.Date = date
	return day, nil
}

// saveJournal persists day and makes it the current in-memory journal.
func (r *implRunner) saveJournal(day *dayJournal) error {
	if r.journalDir != "" {
		if err := os.MkdirAll(r.journalDir, 0755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
		raw, err := json.MarshalIndent(day, "", "  ")
		if err != nil {
			return fmt.Errorf("encode journal: %w", err)
		}
		path := r.journalPath(day.Date)
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, raw, 0644); err != nil {
			return fmt.Errorf("write journal: %w", err)
		}
		if err := os.Rename(tmp, path); err != nil {
			return fmt.Errorf("replace journal: %w", err)
		}
	}
	r.journal = day
	return nil
}
