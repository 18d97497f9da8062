package transcript

import (
	"context"
	"strings"
	"time"

	"github.com/nguyentantai21042004/podcast-digest/internal/logger"
	"github.com/nguyentantai21042004/podcast-digest/internal/models"
	"github.com/nguyentantai21042004/podcast-digest/pkg/executor"
)

const sourceCommand = "command"

// CommandProvider runs an external transcriber. Arguments may contain the
// placeholders {id}, {url} and {title}. Successful output is written back to
// the cache when one is set.
type CommandProvider struct {
	executor executor.Executor
	logger   logger.Logger
	binary   string
	args     []string
	timeout  time.Duration
	cache    *CacheProvider
}

// NewCommandProvider creates a provider running binary with args.
// A zero timeout means no limit beyond the caller's context.
func NewCommandProvider(exec executor.Executor, log logger.Logger, binary string, args []string, timeout time.Duration, cache *CacheProvider) *CommandProvider {
	return &CommandProvider{
		executor: exec,
		logger:   log,
		binary:   binary,
		args:     args,
		timeout:  timeout,
		cache:    cache,
	}
}

func (p *CommandProvider) Transcript(ctx context.Context, episode models.Episode) models.TranscriptResult {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	replacer := strings.NewReplacer("{id}", episode.ID, "{url}", episode.URL, "{title}", episode.Title)
	args := make([]string, len(p.args))
	for i, a := range p.args {
		args[i] = replacer.Replace(a)
	}

	p.logger.Info(ctx, "Transcribing %s with %s", episode.Title, p.binary)
	out, err := p.executor.Execute(ctx, p.binary, args...)
	if err != nil {
		p.logger.Error(ctx, "Transcriber failed for %s: %v", episode.Title, err)
		return models.Failed(sourceCommand, err.Error())
	}
	if strings.TrimSpace(out) == "" {
		return models.Unavailable(sourceCommand)
	}

	if p.cache != nil {
		if err := p.cache.Store(episode.ID, out); err != nil {
			p.logger.Warn(ctx, "Failed to cache transcript for %s: %v", episode.Title, err)
		}
	}
	return models.Available(out, sourceCommand)
}
