package models

import "time"

// Episode is one catalog item considered for the digest.
type Episode struct {
	ID          string    `json:"id"`
	ShowID      string    `json:"show_id"`
	ShowName    string    `json:"show_name"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	DurationMS  int       `json:"duration_ms"`
	URL         string    `json:"url"`
}

// DurationMinutes returns the whole minutes of the episode length.
func (e Episode) DurationMinutes() int {
	return e.DurationMS / 60000
}
