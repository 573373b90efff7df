// Package main provides the NochGPT server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nochlab/nochgpt/internal/archive"
	"github.com/nochlab/nochgpt/internal/bot"
	"github.com/nochlab/nochgpt/internal/buildinfo"
	"github.com/nochlab/nochgpt/internal/cache"
	"github.com/nochlab/nochgpt/internal/config"
	"github.com/nochlab/nochgpt/internal/llm"
	"github.com/nochlab/nochgpt/internal/logger"
	"github.com/nochlab/nochgpt/internal/media"
	"github.com/nochlab/nochgpt/internal/metrics"
	"github.com/nochlab/nochgpt/internal/ratelimit"
	"github.com/nochlab/nochgpt/internal/sentry"
	"github.com/nochlab/nochgpt/internal/store"
	"github.com/nochlab/nochgpt/internal/ticket"
	"github.com/nochlab/nochgpt/internal/wa"
	"github.com/nochlab/nochgpt/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterstackToken:    cfg.BetterstackToken,
		BetterstackEndpoint: cfg.BetterstackEndpoint,
	})
	log.WithField("version", buildinfo.Version).Info("Starting NochGPT server")

	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.Version,
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed, continuing without it")
	}

	// Restore the latest snapshot when the database does not exist locally,
	// so a redeployed instance keeps its tickets and conversation state.
	var objStore *archive.ObjectStore
	if cfg.ArchiveEnabled() {
		objStore, err = archive.NewObjectStore(context.Background(), archive.StoreConfig{
			Endpoint:    cfg.ArchiveEndpoint,
			Region:      cfg.ArchiveRegion,
			AccessKeyID: cfg.ArchiveAccessKey,
			SecretKey:   cfg.ArchiveSecretKey,
			Bucket:      cfg.ArchiveBucket,
		})
		if err != nil {
			log.WithError(err).Error("Failed to create archive store")
			os.Exit(1)
		}

		if _, statErr := os.Stat(cfg.SQLitePath()); os.IsNotExist(statErr) {
			restoreCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			restored, restoreErr := archive.Restore(restoreCtx, objStore, cfg.ArchiveKey, cfg.SQLitePath())
			cancel()
			if restoreErr != nil {
				log.WithError(restoreErr).Warn("Snapshot restore failed, starting with a fresh database")
			} else if restored {
				log.Info("Database restored from snapshot")
			}
		}
	}

	db, err := store.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Error("Failed to open database")
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())
	m := metrics.New(registry)

	responseCache := cache.New(cfg.CacheTTL, cfg.CacheMaxEntries)

	senderLimiter := ratelimit.NewPerSenderLimiter(ratelimit.PerSenderConfig{
		MaxMessages: cfg.SenderWindowMax,
		Window:      cfg.SenderWindow,
	})
	senderLimiter.OnDrop(func(sender string) {
		m.RecordRateLimiterDrop("sender")
	})
	defer senderLimiter.Stop()

	sendLimiter := ratelimit.New(cfg.GlobalSendRPS, cfg.GlobalSendRPS)

	graph := wa.NewClient(wa.ClientConfig{
		BaseURL: cfg.GraphBaseURL,
		Token:   cfg.WhatsAppToken,
		PhoneID: cfg.WhatsAppPhoneID,
		Limiter: sendLimiter,
		Metrics: m,
		Logger:  log,
	})

	model := llm.NewClient(llm.Config{
		APIKey:          cfg.OpenAIAPIKey,
		BaseURL:         cfg.OpenAIBaseURL,
		Model:           cfg.OpenAIModel,
		TranscribeModel: cfg.OpenAITranscribeModel,
		TranscribeRetry: cfg.OpenAITranscribeRetry,
		Temperature:     cfg.OpenAITemperature,
		VerifyLanguage:  cfg.VerifyReplyLanguage,
		Metrics:         m,
		Logger:          log,
	})

	pipeline := media.NewPipeline(media.Config{
		Graph:    graph,
		LLM:      model,
		MaxBytes: cfg.MaxMediaBytes,
		Metrics:  m,
		Logger:   log,
	})

	sink := ticket.NewSheetSink(cfg.SheetWebhookURL, m)
	if sink == nil {
		log.Info("Spreadsheet mirror disabled")
	}
	tickets := ticket.NewService(db, sink, m, log)

	processor := bot.New(bot.Config{
		DB:      db,
		Graph:   graph,
		LLM:     model,
		Media:   pipeline,
		Cache:   responseCache,
		Tickets: tickets,
		Limiter: senderLimiter,
		Metrics: m,
		Logger:  log,
	})

	webhookHandler := webhook.New(webhook.Config{
		Processor:   processor,
		DB:          db,
		AppSecret:   cfg.AppSecret,
		VerifyToken: cfg.VerifyToken,
		Timeout:     cfg.ProcessingTimeout,
		Metrics:     m,
		Logger:      log,
	})

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(corsMiddleware(cfg.CORSAllowOrigin))
	if sentry.IsEnabled() {
		router.Use(sentryMiddleware())
	}
	router.Use(loggingMiddleware(log))

	setupRoutes(router, webhookHandler, processor, tickets, db, responseCache, registry, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  config.WebhookHTTPRead,
		WriteTimeout: config.WebhookHTTPWrite,
		IdleTimeout:  config.WebhookHTTPIdle,
	}

	// Background maintenance goroutines.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		sweepResponseCache(ctx, responseCache, m, log)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		pruneStore(ctx, db, cfg.DedupRetention, log)
	}()

	var archiveManager *archive.Manager
	if objStore != nil {
		archiveManager = archive.NewManager(objStore, db, archive.Config{
			Key:      cfg.ArchiveKey,
			Interval: cfg.ArchiveInterval,
			TempDir:  cfg.DataDir,
			Metrics:  m,
			Logger:   log,
		})
		archiveManager.Start(ctx)
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Failed to start server")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// Stop accepting requests, then drain in-flight message processing.
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	if err := webhookHandler.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Webhook drain incomplete")
	}

	cancel()
	wg.Wait()

	if archiveManager != nil {
		archiveManager.Stop()
		// Final snapshot so nothing since the last interval is lost.
		uploadCtx, uploadCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := archiveManager.UploadSnapshot(uploadCtx); err != nil {
			log.WithError(err).Error("Final snapshot upload failed")
		}
		uploadCancel()
	}

	if err := db.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = log.Shutdown(flushCtx)
	flushCancel()
	sentry.Flush(2 * time.Second)

	log.Info("Server stopped")
}
