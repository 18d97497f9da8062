package summarizer

type implSummarizer struct{}

// New creates a Summarizer. It holds no state and is safe for concurrent use.
func New() Summarizer {
	return implSummarizer{}
}
