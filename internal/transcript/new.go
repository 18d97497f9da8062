package transcript

import (
	"fmt"
	"os"

	"github.com/nguyentantai21042004/podcast-digest/internal/config"
	"github.com/nguyentantai21042004/podcast-digest/internal/logger"
	"github.com/nguyentantai21042004/podcast-digest/pkg/executor"
)

// New builds the default chain: cache, then the external transcriber when
// configured, then the null provider.
func New(cfg config.TranscriptsConfig, exec executor.Executor, log logger.Logger) (Provider, error) {
	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create transcript cache %s: %w", cfg.CacheDir, err)
	}

	cache := NewCacheProvider(cfg.CacheDir, log)
	chain := Chain{cache}
	if cfg.Command.Binary != "" {
		chain = append(chain, NewCommandProvider(exec, log, cfg.Command.Binary, cfg.Command.Args, cfg.Command.Timeout, cache))
	}
	return append(chain, NewNullProvider(log)), nil
}
