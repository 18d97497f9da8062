package digest

import (
	"sync"
	"time"

	"github.com/nguyentantai21042004/podcast-digest/internal/logger"
	"github.com/nguyentantai21042004/podcast-digest/internal/renderer"
	"github.com/nguyentantai21042004/podcast-digest/internal/state"
	"github.com/nguyentantai21042004/podcast-digest/internal/summarizer"
	"github.com/nguyentantai21042004/podcast-digest/internal/transcript"
)

// Deps are the collaborators of a Runner.
type Deps struct {
	Catalog       Catalog
	Transcripts   transcript.Provider
	State         state.Store
	Summarizer    summarizer.Summarizer
	Writer        renderer.Writer
	Logger        logger.Logger
	Location      *time.Location
	MaxConcurrent int
	// JournalDir keeps one record per day of the episodes in that day's
	// digest. Empty keeps the record in memory only.
	JournalDir string
	// Now defaults to time.Now.
	Now func() time.Time
}

type implRunner struct {
	catalog       Catalog
	transcripts   transcript.Provider
	state         state.Store
	summarizer    summarizer.Summarizer
	writer        renderer.Writer
	logger        logger.Logger
	location      *time.Location
	maxConcurrent int
	now           func() time.Time
	journalDir    string
	journal       *dayJournal

	// one run at a time keeps state markers consistent
	mu sync.Mutex
}

// New creates a Runner from deps.
func New(deps Deps) Runner {
	r := &implRunner{
		catalog:       deps.Catalog,
		transcripts:   deps.Transcripts,
		state:         deps.State,
		summarizer:    deps.Summarizer,
		writer:        deps.Writer,
		logger:        deps.Logger,
		location:      deps.Location,
		maxConcurrent: deps.MaxConcurrent,
		now:           deps.Now,
		journalDir:    deps.JournalDir,
	}
	if r.summarizer == nil {
		r.summarizer = summarizer.New()
	}
	if r.logger == nil {
		r.logger = logger.Nop()
	}
	if r.location == nil {
		r.location = time.UTC
	}
	if r.maxConcurrent <= 0 {
		r.maxConcurrent = 1
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}
