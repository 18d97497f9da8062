package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/podcast-digest/internal/models"
)

const (
	// UnavailableNotice marks an episode block without a summary.
	UnavailableNotice = "Transcript unavailable"

	publishedLayout = "2006-01-02T15:04:05"
	dateLayout      = "2006-01-02"
)

// Title is the document title of the digest for date.
func Title(date time.Time) string {
	return "Podcast Digest: " + date.Format(dateLayout)
}

// RenderEpisode renders one summarized episode as a Markdown block.
func RenderEpisode(summary models.EpisodeSummary) string {
	ep := summary.Episode
	var b strings.Builder

	fmt.Fprintf(&b, "### %s\n", ep.Title)
	fmt.Fprintf(&b, "*Published:* %s | *Duration:* %d min | [Spotify](%s)\n\n",
		ep.PublishedAt.Format(publishedLayout), ep.DurationMinutes(), ep.URL)

	b.WriteString("#### Overview\n")
	b.WriteString(summary.Overview + "\n\n")

	b.WriteString("#### Structured breakdown\n")
	for _, seg := range summary.Segments {
		fmt.Fprintf(&b, "* **%s**: %s\n", seg.Heading, seg.Body)
	}

	b.WriteString("\n#### Key takeaways\n")
	for _, t := range summary.Takeaways {
		fmt.Fprintf(&b, "* %s\n", t)
	}

	b.WriteString("\n#### Notable quotes\n")
	for _, q := range summary.Quotes {
		fmt.Fprintf(&b, "> %s\n\n", q)
	}

	b.WriteString("\n#### Action items / recommendations\n")
	writeList(&b, summary.ActionItems, "No explicit action items were captured in the transcript.")

	b.WriteString("\n#### Open questions\n")
	writeList(&b, summary.OpenQuestions, "No open questions were recorded in the transcript.")

	return b.String()
}

func writeList(b *strings.Builder, items []string, empty string) {
	if len(items) == 0 {
		fmt.Fprintf(b, "* %s\n", empty)
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "* %s\n", item)
	}
}

// RenderUnavailable renders an episode whose transcript could not be found.
func RenderUnavailable(ep models.Episode) string {
	return fmt.Sprintf("### %s\n**%s: summary not generated**\n\nPublished: %s | Duration: %d min\n\nSpotify: %s\n",
		ep.Title, UnavailableNotice, ep.PublishedAt.Format(publishedLayout), ep.DurationMinutes(), ep.URL)
}

// RenderTranscriptError renders an episode whose transcript lookup failed.
func RenderTranscriptError(ep models.Episode, message string) string {
	block := fmt.Sprintf("### %s\n**%s: error fetching transcript**\n", ep.Title, UnavailableNotice)
	if message = strings.TrimSpace(message); message != "" {
		block += "\n```\n" + message + "\n```\n"
	}
	return block
}

// RenderShowHeading renders the heading that opens a show section.
func RenderShowHeading(showName string) string {
	return "## " + showName + "\n"
}

// DailyOverviewText is the one-paragraph overview of a run.
func DailyOverviewText(stats models.DigestStats) string {
	if stats.Summarized == 0 {
		return "No new transcripts were available today."
	}
	return fmt.Sprintf("Generated summaries for %d episodes across %d new releases.", stats.Summarized, stats.Total)
}

// RenderDailyOverview renders the document header, overview and counters.
func RenderDailyOverview(date time.Time, overview string, stats models.DigestStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", Title(date))
	b.WriteString("## Daily overview\n\n")
	b.WriteString(strings.TrimSpace(overview) + "\n\n")
	fmt.Fprintf(&b, "New episodes: %d | Summarized: %d | Transcript unavailable: %d\n",
		stats.Total, stats.Summarized, stats.Unavailable)
	return b.String()
}

// BuildDocument joins the overview and the show sections into one document.
func BuildDocument(overview string, sections []string) string {
	return strings.Join(append([]string{overview}, sections...), "\n")
}
