package spotify

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nguyentantai21042004/podcast-digest/internal/models"
)

// Show is the subset of the show object the digest needs.
type Show struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RawEpisode is a simplified episode object as returned by the API.
type RawEpisode struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	Description          string            `json:"description"`
	ReleaseDate          string            `json:"release_date"`
	ReleaseDatePrecision string            `json:"release_date_precision"`
	DurationMS           int               `json:"duration_ms"`
	ExternalURLs         map[string]string `json:"external_urls"`
	Show                 *Show             `json:"show,omitempty"`
}

type episodePage struct {
	Items []RawEpisode `json:"items"`
	Next  *string      `json:"next"`
}

// ParseReleaseDate parses a release date according to its precision
// ("day", "month" or "year"). An empty precision is inferred from the length.
func ParseReleaseDate(date, precision string) (time.Time, error) {
	layout := "2006-01-02"
	switch precision {
	case "year":
		layout = "2006"
	case "month":
		layout = "2006-01"
	case "day":
	default:
		switch len(date) {
		case 4:
			layout = "2006"
		case 7:
			layout = "2006-01"
		}
	}
	t, err := time.Parse(layout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse release date %q: %w", date, err)
	}
	return t, nil
}

// MapEpisode converts an API episode into the digest model.
func MapEpisode(raw RawEpisode, showID, showName string) (models.Episode, error) {
	published, err := ParseReleaseDate(raw.ReleaseDate, raw.ReleaseDatePrecision)
	if err != nil {
		return models.Episode{}, fmt.Errorf("episode %s: %w", raw.ID, err)
	}
	if raw.Show != nil && raw.Show.ID != "" {
		showID = raw.Show.ID
	}
	return models.Episode{
		ID:          raw.ID,
		ShowID:      showID,
		ShowName:    showName,
		Title:       raw.Name,
		Description: raw.Description,
		PublishedAt: published,
		DurationMS:  raw.DurationMS,
		URL:         raw.ExternalURLs["spotify"],
	}, nil
}

// NewEpisodes returns the show name and the episodes published after
// lastProcessed, oldest first. A zero lastProcessed returns every episode.
func (c *Client) NewEpisodes(ctx context.Context, showID string, lastProcessed time.Time) (string, []models.Episode, error) {
	show, err := c.Show(ctx, showID)
	if err != nil {
		return "", nil, fmt.Errorf("fetch show %s: %w", showID, err)
	}
	name := show.Name
	if name == "" {
		name = showID
	}

	var episodes []models.Episode
	err = c.EachEpisode(ctx, showID, func(raw RawEpisode) (bool, error) {
		ep, err := MapEpisode(raw, showID, name)
		if err != nil {
			return false, err
		}
		// The API lists newest first, so the first old episode ends the scan.
		if !lastProcessed.IsZero() && !ep.PublishedAt.After(lastProcessed) {
			return false, nil
		}
		episodes = append(episodes, ep)
		return true, nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("list episodes for %s: %w", showID, err)
	}
	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].PublishedAt.Before(episodes[j].PublishedAt)
	})
	return name, episodes, nil
}
