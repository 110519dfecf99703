package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bnema/showsaver/config"
	"github.com/bnema/showsaver/internal/adapter/extractor/ytdlp"
	HTTPAdapter "github.com/bnema/showsaver/internal/adapter/http"
	"github.com/bnema/showsaver/internal/adapter/probe"
	"github.com/bnema/showsaver/internal/adapter/sonarr"
	"github.com/bnema/showsaver/internal/adapter/storage/memory"
	"github.com/bnema/showsaver/internal/infrastructure/logger"
	"github.com/bnema/showsaver/internal/service"
)

const queueCapacity = 256

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error.Printf("failed to load config: %v", err)
		os.Exit(1)
	}

	logger.Info.Printf("starting showsaver on port %d, show dir=%s", cfg.Port, cfg.ShowDir)

	for _, dir := range []string{cfg.ConfigDir, cfg.ShowDir, cfg.TmpDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error.Printf("failed to create directory %s: %v", dir, err)
			os.Exit(1)
		}
	}
	if err := ensureScaffolding(cfg.ConfigDir); err != nil {
		logger.Error.Printf("failed to prepare config dir: %v", err)
		os.Exit(1)
	}

	store := memory.NewStore()
	queueSvc := service.NewQueueService(store, queueCapacity)
	eventBus := service.NewEventBus()

	extractor := ytdlp.New(cfg.ConfigDir, cfg.TmpDir, cfg.NewReleasesURL)
	prober := probe.NewClient(10 * time.Second)
	corrector := service.NewCorrector(prober, extractor, cfg.AnthologyMarker, cfg.AnthologyBaseURL)
	library := sonarr.New(cfg.SonarrURL, cfg.SonarrAPIKey, cfg.ShowNameOverrides)

	downloadSvc := service.NewDownloadService(
		extractor, corrector, library,
		cfg.ShowDir, cfg.ShowNameOverrides, cfg.DoCleanup,
	)
	browseSvc := service.NewBrowseService(extractor, 5*time.Minute)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	worker := service.NewWorker(queueSvc, store, downloadSvc, eventBus)
	worker.Start(workerCtx)

	seedURLs(cfg, queueSvc)

	server := HTTPAdapter.NewServer(queueSvc, browseSvc, eventBus)

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // SSE streams stay open indefinitely
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info.Printf("received %s, shutting down", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("http shutdown error: %v", err)
		}

		// Stop the worker (interrupts the in-flight download)
		workerCancel()

		logger.Info.Printf("shutdown complete")
	}()

	logger.Info.Printf("server listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error.Printf("server failed: %v", err)
		os.Exit(1)
	}
}

// ensureScaffolding creates the credential and seed files a fresh
// install expects, so users have something to edit on first run.
func ensureScaffolding(configDir string) error {
	files := map[string]string{
		".netrc":   "machine watch.dropout.tv login EMAIL password PASSWORD\n",
		"urls.txt": "",
	}
	for name, content := range files {
		path := filepath.Join(configDir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

// seedURLs enqueues the SHOW_URL env var and every non-blank line of
// urls.txt at boot. Bad entries are logged and skipped.
func seedURLs(cfg *config.Config, queue *service.QueueService) {
	submit := func(url, source string) {
		if _, _, err := queue.Submit(url); err != nil {
			logger.Warn.Printf("skipping seed URL from %s: %v", source, err)
			return
		}
		logger.Info.Printf("seeded download from %s: %s", source, logger.SanitizeForLog(url))
	}

	if cfg.ShowURL != "" {
		submit(cfg.ShowURL, "SHOW_URL")
	}

	path := filepath.Join(cfg.ConfigDir, "urls.txt")
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn.Printf("could not read %s: %v", path, err)
		}
		return
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		submit(line, "urls.txt")
	}
	if err := scanner.Err(); err != nil {
		logger.Warn.Printf("error reading %s: %v", path, err)
	}
}
