package models

// TranscriptStatus is the availability of an episode transcript.
type TranscriptStatus string

const (
	TranscriptAvailable   TranscriptStatus = "available"
	TranscriptUnavailable TranscriptStatus = "unavailable"
	TranscriptError       TranscriptStatus = "error"
)

// TranscriptResult is what a transcript provider returns for an episode.
// Text is set only when Status is available, Error only when Status is error.
type TranscriptResult struct {
	Status TranscriptStatus `json:"status"`
	Text   string           `json:"text,omitempty"`
	Source string           `json:"source,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func Available(text, source string) TranscriptResult {
	return TranscriptResult{Status: TranscriptAvailable, Text: text, Source: source}
}

func Unavailable(source string) TranscriptResult {
	return TranscriptResult{Status: TranscriptUnavailable, Source: source}
}

func Failed(source, message string) TranscriptResult {
	return TranscriptResult{Status: TranscriptError, Source: source, Error: message}
}
