package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nguyentantai21042004/podcast-digest/internal/config"
	"github.com/nguyentantai21042004/podcast-digest/internal/digest"
	"github.com/nguyentantai21042004/podcast-digest/internal/logger"
	"github.com/nguyentantai21042004/podcast-digest/internal/renderer"
	"github.com/nguyentantai21042004/podcast-digest/internal/server"
	"github.com/nguyentantai21042004/podcast-digest/internal/spotify"
	"github.com/nguyentantai21042004/podcast-digest/internal/state"
	"github.com/nguyentantai21042004/podcast-digest/internal/summarizer"
	"github.com/nguyentantai21042004/podcast-digest/internal/transcript"
	"github.com/nguyentantai21042004/podcast-digest/internal/watcher"
	"github.com/nguyentantai21042004/podcast-digest/pkg/executor"
)

const usage = `Usage: digest [command] [-config path]

Commands:
  run     generate today's digest (default)
  watch   regenerate the digest whenever transcripts land in the cache
  serve   serve generated digests over HTTP
`

func main() {
	command := "run"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		command, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config YAML")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging.Level)

	// Cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case "run":
		err = runOnce(ctx, cfg, log)
	case "watch":
		err = watch(ctx, cfg, log)
	case "serve":
		err = serve(ctx, cfg, log)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, "%s failed: %v", command, err)
		os.Exit(1)
	}
}

// buildRunner wires the digest pipeline. The returned cleanup closes the state store.
func buildRunner(cfg *config.Config, log logger.Logger) (digest.Runner, func(), error) {
	if err := cfg.RequireSpotify(); err != nil {
		return nil, nil, err
	}

	catalog := spotify.NewClient(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret,
		spotify.WithMarket(cfg.Spotify.Market),
		spotify.WithPageSize(cfg.Spotify.PageSize),
		spotify.WithTimeout(cfg.Spotify.Timeout),
	)

	provider, err := transcript.New(cfg.Transcripts, executor.New(), log)
	if err != nil {
		return nil, nil, err
	}

	store, err := state.Open(cfg.State.Driver, cfg.State.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open state: %w", err)
	}

	writer, err := renderer.NewWriter(cfg.Output.Format, cfg.Output.Dir)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	runner := digest.New(digest.Deps{
		Catalog:       catalog,
		Transcripts:   provider,
		State:         store,
		Summarizer:    summarizer.New(),
		Writer:        writer,
		Logger:        log,
		Location:      cfg.Location(),
		MaxConcurrent: cfg.Performance.MaxConcurrent,
		JournalDir:    cfg.State.JournalDir,
	})
	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Warn(context.Background(), "Failed to close state store: %v", err)
		}
	}
	return runner, cleanup, nil
}

func runOnce(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	runner, cleanup, err := buildRunner(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	doc, err := runner.Run(ctx, cfg.Shows)
	if err != nil {
		return err
	}
	log.Info(ctx, "Digest written to %s", doc.OutputPath)
	return nil
}

func watch(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	runner, cleanup, err := buildRunner(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := os.MkdirAll(cfg.Transcripts.CacheDir, 0755); err != nil {
		return fmt.Errorf("create transcript cache: %w", err)
	}
	w, err := watcher.New(cfg.Transcripts.CacheDir, digest.TranscriptHandler(runner, log), log, 1, 0)
	if err != nil {
		return err
	}
	defer w.Stop()

	// The watcher is registered first so transcripts written during this
	// run are not missed.
	doc, err := runner.Run(ctx, cfg.Shows)
	if err != nil {
		return err
	}
	log.Info(ctx, "Digest written to %s", doc.OutputPath)

	log.Info(ctx, "Watching %s for transcripts. Press Ctrl+C to stop", cfg.Transcripts.CacheDir)
	return w.Start(ctx)
}

func serve(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.New(cfg.Output.Dir, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info(ctx, "Serving digests from %s on %s", cfg.Output.Dir, cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info(ctx, "Shutdown signal received")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
