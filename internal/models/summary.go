package models

import "time"

// SummarySection is one segment of the structured breakdown.
type SummarySection struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// EpisodeSummary is the extractive summary of one transcript.
type EpisodeSummary struct {
	Episode       Episode          `json:"episode"`
	Overview      string           `json:"overview"`
	Segments      []SummarySection `json:"segments"`
	Takeaways     []string         `json:"takeaways"`
	Quotes        []string         `json:"quotes"`
	ActionItems   []string         `json:"action_items"`
	OpenQuestions []string         `json:"open_questions"`
}

// DigestStats counts the episodes of one digest run.
type DigestStats struct {
	Total       int `json:"total"`
	Summarized  int `json:"summarized"`
	Unavailable int `json:"unavailable"`
}

// DigestDocument describes a written digest.
type DigestDocument struct {
	RunID        string      `json:"run_id"`
	Date         time.Time   `json:"date"`
	Stats        DigestStats `json:"stats"`
	Overview     string      `json:"overview"`
	ShowSections []string    `json:"show_sections"`
	OutputPath   string      `json:"output_path"`
}
