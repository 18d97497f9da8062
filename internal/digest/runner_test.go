package digest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nguyentantai21042004/podcast-digest/internal/config"
	"github.com/nguyentantai21042004/podcast-digest/internal/logger"
	"github.com/nguyentantai21042004/podcast-digest/internal/models"
	"github.com/nguyentantai21042004/podcast-digest/internal/renderer"
	"github.com/nguyentantai21042004/podcast-digest/internal/state"
	"github.com/nguyentantai21042004/podcast-digest/internal/transcript"
	"github.com/nguyentantai21042004/podcast-digest/internal/watcher"
)

type fakeCatalog struct {
	mu       sync.Mutex
	name     map[string]string
	episodes map[string][]models.Episode
	fail     map[string]error
	since    map[string]time.Time
}

func (f *fakeCatalog) NewEpisodes(ctx context.Context, showID string, last time.Time) (string, []models.Episode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.since == nil {
		f.since = map[string]time.Time{}
	}
	f.since[showID] = last
	if err := f.fail[showID]; err != nil {
		return "", nil, err
	}
	var out []models.Episode
	for _, ep := range f.episodes[showID] {
		if ep.PublishedAt.After(last) {
			out = append(out, ep)
		}
	}
	return f.name[showID], out, nil
}

type fakeTranscripts struct {
	results map[string]models.TranscriptResult
	delay   time.Duration

	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeTranscripts) Transcript(ctx context.Context, ep models.Episode) models.TranscriptResult {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(f.delay)
	if res, ok := f.results[ep.ID]; ok {
		return res
	}
	return models.Unavailable("fake")
}

type failingWriter struct{}

func (failingWriter) Write(ctx context.Context, content string, date time.Time) (string, error) {
	return "", errors.New("disk full")
}

func (failingWriter) Path(date time.Time) string {
	return filepath.Join("/nonexistent", date.Format("2006-01-02")+".md")
}

func episode(id, show string, day int) models.Episode {
	return models.Episode{
		ID:          id,
		ShowID:      show,
		ShowName:    "Demo Show",
		Title:       "Episode " + id,
		PublishedAt: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		DurationMS:  600000,
		URL:         "http://spotify/" + id,
	}
}

type fixture struct {
	dir         string
	catalog     *fakeCatalog
	transcripts *fakeTranscripts
	store       state.Store
	deps        Deps
	runner      Runner
}

func newFixture(t *testing.T, deps func(*Deps)) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := state.OpenJSON(filepath.Join(dir, "state.json"))
	if err != nil {
		t.Fatal(err)
	}
	writer, err := renderer.NewWriter("markdown", filepath.Join(dir, "output"))
	if err != nil {
		t.Fatal(err)
	}

	f := &fixture{
		dir: dir,
		catalog: &fakeCatalog{
			name: map[string]string{"demo": "Demo Show", "other": "Other Show"},
			episodes: map[string][]models.Episode{
				"demo": {episode("ep1", "demo", 1), episode("ep2", "demo", 2), episode("ep3", "demo", 3)},
			},
		},
		transcripts: &fakeTranscripts{results: map[string]models.TranscriptResult{
			"ep1": models.Available("Should we try this? It works great. We recommend it highly. What comes next?", "fake"),
			"ep3": models.Failed("fake", "transcriber crashed"),
		}},
		store: store,
	}

	d := Deps{
		Catalog:       f.catalog,
		Transcripts:   f.transcripts,
		State:         store,
		Writer:        writer,
		Logger:        logger.Nop(),
		MaxConcurrent: 2,
		Now:           func() time.Time { return time.Date(2024, 1, 4, 23, 30, 0, 0, time.UTC) },
	}
	if deps != nil {
		deps(&d)
	}
	f.deps = d
	f.runner = New(d)
	return f
}

func TestRunWritesDigestAndUpdatesState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	doc, err := f.runner.Run(ctx, []config.ShowConfig{{ID: "demo"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := models.DigestStats{Total: 3, Summarized: 1, Unavailable: 2}
	if doc.Stats != want {
		t.Errorf("Stats = %+v, want %+v", doc.Stats, want)
	}
	if doc.RunID == "" {
		t.Error("RunID is empty")
	}
	if doc.OutputPath != filepath.Join(f.dir, "output", "2024-01-04.md") {
		t.Errorf("OutputPath = %q", doc.OutputPath)
	}

	raw, err := os.ReadFile(doc.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	content := string(raw)
	for _, want := range []string{
		"# Podcast Digest: 2024-01-04",
		"Generated summaries for 1 episodes across 3 new releases.",
		"New episodes: 3 | Summarized: 1 | Transcript unavailable: 2",
		"## Demo Show",
		"#### Open questions\n* What comes next?",
		"### Episode ep2\n**Transcript unavailable: summary not generated**",
		"### Episode ep3\n**Transcript unavailable: error fetching transcript**",
		"transcriber crashed",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("digest missing %q", want)
		}
	}
	if i1, i2, i3 := strings.Index(content, "Episode ep1"), strings.Index(content, "Episode ep2"), strings.Index(content, "Episode ep3"); !(i1 < i2 && i2 < i3) {
		t.Errorf("episodes out of publish order: %d %d %d", i1, i2, i3)
	}

	last, ok, err := f.store.LastProcessed("demo")
	if err != nil || !ok || !last.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("LastProcessed = %v, %v, %v", last, ok, err)
	}

	// The next run sees nothing new and keeps the day's episodes.
	doc, err = f.runner.Run(ctx, []config.ShowConfig{{ID: "demo"}})
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if doc.Stats != want {
		t.Errorf("second run Stats = %+v, want %+v", doc.Stats, want)
	}
	raw, err = os.ReadFile(doc.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "#### Open questions\n* What comes next?") {
		t.Error("second run dropped the summary of ep1")
	}
	if !f.catalog.since["demo"].Equal(last) {
		t.Errorf("catalog asked since %v, want %v", f.catalog.since["demo"], last)
	}
}

func TestRunUnavailableOnly(t *testing.T) {
	f := newFixture(t, nil)
	f.catalog.episodes["demo"] = []models.Episode{episode("ep2", "demo", 2)}

	doc, err := f.runner.Run(context.Background(), []config.ShowConfig{{ID: "demo"}})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Stats != (models.DigestStats{Total: 1, Unavailable: 1}) {
		t.Errorf("Stats = %+v", doc.Stats)
	}
	last, _, _ := f.store.LastProcessed("demo")
	if !last.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("LastProcessed = %v", last)
	}
}

func TestRunSkipsFailingShow(t *testing.T) {
	f := newFixture(t, nil)
	f.catalog.fail = map[string]error{"other": errors.New("503")}

	doc, err := f.runner.Run(context.Background(), []config.ShowConfig{
		{URL: "https://open.spotify.com/show/other?si=x"},
		{ID: "demo", Name: "Configured Name"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if doc.Stats.Total != 3 {
		t.Errorf("Stats = %+v", doc.Stats)
	}
	if doc.ShowSections[0] != "## Configured Name\n" {
		t.Errorf("first section = %q", doc.ShowSections[0])
	}
	if _, ok, _ := f.store.LastProcessed("other"); ok {
		t.Error("failing show should not get a marker")
	}
	if _, asked := f.catalog.since["other"]; !asked {
		t.Error("show URL was not resolved to its id")
	}
}

func TestRunWriteFailureKeepsState(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.Writer = failingWriter{} })

	if _, err := f.runner.Run(context.Background(), []config.ShowConfig{{ID: "demo"}}); err == nil {
		t.Fatal("Run() should fail when the digest cannot be written")
	}
	if _, ok, _ := f.store.LastProcessed("demo"); ok {
		t.Error("state advanced although the digest was not written")
	}
}

func TestRunUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	f := newFixture(t, func(d *Deps) { d.Location = tokyo })

	doc, err := f.runner.Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	// 23:30 UTC on Jan 4 is already Jan 5 in Tokyo.
	if filepath.Base(doc.OutputPath) != "2024-01-05.md" {
		t.Errorf("OutputPath = %q", doc.OutputPath)
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	f := newFixture(t, nil)
	var eps []models.Episode
	for day := 1; day <= 8; day++ {
		eps = append(eps, episode(string(rune('a'+day)), "demo", day))
	}
	f.catalog.episodes["demo"] = eps
	f.transcripts.delay = 20 * time.Millisecond

	if _, err := f.runner.Run(context.Background(), []config.ShowConfig{{ID: "demo"}}); err != nil {
		t.Fatal(err)
	}
	if peak := f.transcripts.peak.Load(); peak > 2 {
		t.Errorf("peak concurrent lookups = %d, want <= 2", peak)
	}
}

func TestRunCanceled(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.runner.Run(ctx, []config.ShowConfig{{ID: "demo"}}); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func readDigest(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}

func TestRunRetriesEpisodesWithoutSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	shows := []config.ShowConfig{{ID: "demo"}}

	if _, err := f.runner.Run(ctx, shows); err != nil {
		t.Fatal(err)
	}
	f.transcripts.results["ep2"] = models.Available("Late transcript arrived. It is short.", "fake")

	doc, err := f.runner.Run(ctx, shows)
	if err != nil {
		t.Fatal(err)
	}
	if want := (models.DigestStats{Total: 3, Summarized: 2, Unavailable: 1}); doc.Stats != want {
		t.Errorf("Stats = %+v, want %+v", doc.Stats, want)
	}
	content := readDigest(t, doc.OutputPath)
	if !strings.Contains(content, "Late transcript arrived. It is short.") {
		t.Error("digest missing the late summary")
	}
	if strings.Contains(content, "### Episode ep2\n**Transcript unavailable") {
		t.Error("ep2 still rendered as unavailable")
	}
}

func TestRunNewEpisodesExtendPersistedDay(t *testing.T) {
	ctx := context.Background()
	journal := filepath.Join(t.TempDir(), "journal")
	f := newFixture(t, func(d *Deps) { d.JournalDir = journal })
	shows := []config.ShowConfig{{ID: "demo"}}

	if _, err := f.runner.Run(ctx, shows); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(journal, "2024-01-04.json")); err != nil {
		t.Fatalf("journal not written: %v", err)
	}

	// A new process picks up the day from the journal.
	f.catalog.episodes["demo"] = append(f.catalog.episodes["demo"], episode("ep4", "demo", 4))
	doc, err := New(f.deps).Run(ctx, shows)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Stats.Total != 4 {
		t.Errorf("Stats = %+v, want 4 episodes", doc.Stats)
	}
	content := readDigest(t, doc.OutputPath)
	for _, want := range []string{"Episode ep1", "Episode ep4", "New episodes: 4"} {
		if !strings.Contains(content, want) {
			t.Errorf("digest missing %q", want)
		}
	}
	if strings.Count(content, "## Demo Show") != 1 {
		t.Error("show heading repeated")
	}
}

func TestRunEmptyDayKeepsExistingDigest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	shows := []config.ShowConfig{{ID: "demo"}}

	first, err := f.runner.Run(ctx, shows)
	if err != nil {
		t.Fatal(err)
	}

	// No journal: a new runner knows nothing about the day.
	doc, err := New(f.deps).Run(ctx, shows)
	if err != nil {
		t.Fatal(err)
	}
	if doc.OutputPath != first.OutputPath {
		t.Errorf("OutputPath = %q, want %q", doc.OutputPath, first.OutputPath)
	}
	content := readDigest(t, doc.OutputPath)
	if !strings.Contains(content, "Episode ep1") || !strings.Contains(content, "New episodes: 3") {
		t.Errorf("existing digest was replaced:\n%s", content)
	}
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	if _, err := f.runner.Run(ctx, []config.ShowConfig{{ID: "demo"}}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		id   string
	}{
		{"unknown episode", "ep9"},
		{"already summarized", "ep1"},
		{"still unavailable", "ep2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := f.runner.Refresh(ctx, tt.id)
			if err != nil || doc != nil {
				t.Errorf("Refresh(%q) = %+v, %v, want nil, nil", tt.id, doc, err)
			}
		})
	}

	f.transcripts.results["ep2"] = models.Available("Now we have words. Plenty of them.", "fake")
	doc, err := f.runner.Refresh(ctx, "ep2")
	if err != nil || doc == nil {
		t.Fatalf("Refresh() = %+v, %v", doc, err)
	}
	if want := (models.DigestStats{Total: 3, Summarized: 2, Unavailable: 1}); doc.Stats != want {
		t.Errorf("Stats = %+v, want %+v", doc.Stats, want)
	}
	content := readDigest(t, doc.OutputPath)
	if !strings.Contains(content, "Now we have words. Plenty of them.") || !strings.Contains(content, "Episode ep1") {
		t.Errorf("digest after refresh:\n%s", content)
	}
}

func TestTranscriptHandlerUpdatesDigest(t *testing.T) {
	cacheDir := t.TempDir()
	f := newFixture(t, func(d *Deps) {
		d.Transcripts = transcript.NewCacheProvider(cacheDir, logger.Nop())
	})
	f.catalog.episodes["demo"] = []models.Episode{episode("ep2", "demo", 2)}

	doc, err := f.runner.Run(context.Background(), []config.ShowConfig{{ID: "demo"}})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Stats.Summarized != 0 {
		t.Fatalf("Stats = %+v", doc.Stats)
	}

	w, err := watcher.New(cacheDir, TranscriptHandler(f.runner, logger.Nop()), logger.Nop(), 1, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(cacheDir, "ep2.txt"), []byte("The transcript landed. Summaries follow."), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		content := readDigest(t, doc.OutputPath)
		if strings.Contains(content, "Summarized: 1") {
			if !strings.Contains(content, "The transcript landed. Summaries follow.") {
				t.Errorf("digest missing summary:\n%s", content)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("digest not updated:\n%s", content)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
