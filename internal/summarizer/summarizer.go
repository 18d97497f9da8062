package summarizer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nguyentantai21042004/podcast-digest/internal/models"
)

const (
	// NoContentOverview is the overview of a transcript with no sentences.
	NoContentOverview = "Transcript provided no readable content."

	overviewSentences = 4
	headingPrefixLen  = 80
	headingMinLen     = 10
	takeawaySentences = 2
	quoteMaxLen       = 180

	maxTakeaways     = 20
	maxQuotes        = 10
	maxQuoteFallback = 5
	maxActionItems   = 10
	maxOpenQuestions = 8
)

var actionMarkers = []string{"should", "try", "plan", "recommend"}

// Summarize builds the extractive summary of transcript. It never fails:
// blank transcripts produce the fallback overview and empty lists.
func (implSummarizer) Summarize(episode models.Episode, transcript string) models.EpisodeSummary {
	return Summarize(episode, transcript)
}

// Summarize is the stateless form of Summarizer.Summarize.
func Summarize(episode models.Episode, transcript string) models.EpisodeSummary {
	sentences := SplitSentences(transcript)
	segments := buildSegments(Segment(sentences, SegmentCount(len(sentences))))

	return models.EpisodeSummary{
		Episode:       episode,
		Overview:      overview(sentences),
		Segments:      segments,
		Takeaways:     takeaways(segments),
		Quotes:        quotes(sentences),
		ActionItems:   actionItems(sentences),
		OpenQuestions: openQuestions(sentences),
	}
}

func overview(sentences []string) string {
	if len(sentences) == 0 {
		return NoContentOverview
	}
	return strings.Join(sentences[:min(overviewSentences, len(sentences))], " ")
}

func buildSegments(chunks [][]string) []models.SummarySection {
	sections := make([]models.SummarySection, 0, len(chunks))
	for i, chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		sections = append(sections, models.SummarySection{
			Heading: heading(i+1, chunk[0]),
			Body:    strings.Join(chunk, " "),
		})
	}
	return sections
}

func heading(index int, first string) string {
	prefix := truncateRunes(first, headingPrefixLen)
	if utf8.RuneCountInString(prefix) > headingMinLen {
		return fmt.Sprintf("Segment %d: %s", index, prefix)
	}
	return fmt.Sprintf("Segment %d", index)
}

func takeaways(segments []models.SummarySection) []string {
	out := make([]string, 0, min(len(segments), maxTakeaways))
	for _, seg := range segments {
		sample := seg.Body
		if parts := SplitSentences(seg.Body); len(parts) > 0 {
			sample = strings.Join(parts[:min(takeawaySentences, len(parts))], " ")
		}
		if sample != "" {
			out = append(out, sample)
		}
	}
	return out[:min(len(out), maxTakeaways)]
}

func quotes(sentences []string) []string {
	out := make([]string, 0, maxQuotes)
	for _, s := range sentences {
		if len(out) == maxQuotes {
			break
		}
		if utf8.RuneCountInString(s) < quoteMaxLen {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(sentences) > 0 {
		out = append(out, sentences[:min(maxQuoteFallback, len(sentences))]...)
	}
	return out
}

func actionItems(sentences []string) []string {
	out := make([]string, 0)
	for _, s := range sentences {
		if len(out) == maxActionItems {
			break
		}
		if containsAny(strings.ToLower(s), actionMarkers) {
			out = append(out, s)
		}
	}
	return out
}

func openQuestions(sentences []string) []string {
	out := make([]string, 0)
	for _, s := range sentences {
		if len(out) == maxOpenQuestions {
			break
		}
		if strings.HasSuffix(s, "?") {
			out = append(out, s)
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
