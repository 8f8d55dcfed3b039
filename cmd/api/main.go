package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ginvite/ginvite-api/internal/handlers"
	"github.com/ginvite/ginvite-api/internal/platform/config"
	"github.com/ginvite/ginvite-api/internal/platform/observability"
	"github.com/ginvite/ginvite-api/internal/platform/remote"
	"github.com/ginvite/ginvite-api/internal/platform/savecache"
	"github.com/ginvite/ginvite-api/internal/platform/storage"
	"github.com/ginvite/ginvite-api/internal/services"
	"github.com/ginvite/ginvite-api/internal/themes"
)

const (
	memoryCleanupInterval  = time.Minute
	sitemapPublishInterval = time.Hour
	shutdownTimeout        = 10 * time.Second
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)
	metrics := observability.DefaultMetrics()

	client, err := remote.New(cfg.Remote.BaseURL,
		remote.WithTimeout(cfg.Remote.Timeout),
		remote.WithRetries(cfg.Remote.Retries),
	)
	if err != nil {
		logger.Fatal("failed to initialise content client", zap.Error(err))
	}

	registry, err := themes.NewDefaultRegistry(themes.WithMetrics(metrics))
	if err != nil {
		logger.Fatal("failed to initialise theme registry", zap.Error(err))
	}

	site := services.SiteSettings{
		BaseURL:             cfg.Site.BaseURL,
		Location:            cfg.Site.Location,
		PlaceholderImageURL: cfg.Site.PlaceholderImageURL,
		CalendarURL:         cfg.Site.CalendarURL,
	}

	invitationService, err := services.NewInvitationService(services.InvitationServiceDeps{
		Source:  client,
		Themes:  registry,
		Site:    site,
		Metrics: metrics,
	})
	if err != nil {
		logger.Fatal("failed to initialise invitation service", zap.Error(err))
	}

	sitemapDeps := services.SitemapServiceDeps{
		Source:  client,
		Site:    site,
		Workers: cfg.Sitemap.Workers,
	}
	if bucket := strings.TrimSpace(cfg.Sitemap.Bucket); bucket != "" {
		gcsClient, err := storage.NewGCSClient(ctx, storage.ClientOptions{})
		if err != nil {
			logger.Fatal("failed to initialise storage client", zap.Error(err))
		}
		defer func() {
			if err := gcsClient.Close(); err != nil {
				logger.Warn("storage client close error", zap.Error(err))
			}
		}()
		publisher, err := storage.NewPublisher(gcsClient)
		if err != nil {
			logger.Fatal("failed to initialise sitemap publisher", zap.Error(err))
		}
		sitemapDeps.Publisher = storage.SitemapTarget{Publisher: publisher, Bucket: bucket, Object: cfg.Sitemap.Object}
	}
	sitemapService, err := services.NewSitemapService(sitemapDeps)
	if err != nil {
		logger.Fatal("failed to initialise sitemap service", zap.Error(err))
	}

	healthOpts := []handlers.HealthOption{
		handlers.WithHealthBuildInfo(buildInfoFromEnv(startedAt)),
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	var cleanupWG sync.WaitGroup
	var cleanupTicker *time.Ticker

	var draftCache savecache.Store
	if cfg.Redis.Enabled() {
		pool := savecache.NewRedisPool(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.TLS)
		defer func() {
			if err := pool.Close(); err != nil {
				logger.Warn("redis pool close error", zap.Error(err))
			}
		}()
		redisStore := savecache.NewRedisStore(pool, cfg.Redis.Prefix)
		draftCache = redisStore
		healthOpts = append(healthOpts, handlers.WithReadinessCheck("redis", redisStore.Ping))
		logger.Info("draft dedup uses redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		memoryStore := savecache.NewMemoryStore()
		draftCache = memoryStore
		cleanupTicker = time.NewTicker(memoryCleanupInterval)
		cleanupWG.Add(1)
		go func() {
			defer cleanupWG.Done()
			for {
				select {
				case <-cleanupCtx.Done():
					return
				case <-cleanupTicker.C:
					if removed := memoryStore.CleanupExpired(time.Now()); removed > 0 {
						logger.Debug("draft dedup cache cleaned", zap.Int("removed", removed))
					}
				}
			}
		}()
	}

	if sitemapDeps.Publisher != nil {
		publishTicker := time.NewTicker(sitemapPublishInterval)
		publishLogger := logger.Named("sitemap")
		publish := func() {
			publishCtx := observability.WithLogger(cleanupCtx, publishLogger)
			if _, err := sitemapService.Publish(publishCtx); err != nil && !errors.Is(err, context.Canceled) {
				publishLogger.Warn("sitemap publish failed", zap.Error(err))
			}
		}
		cleanupWG.Add(1)
		go func() {
			defer cleanupWG.Done()
			defer publishTicker.Stop()
			publish()
			for {
				select {
				case <-cleanupCtx.Done():
					return
				case <-publishTicker.C:
					publish()
				}
			}
		}()
	}

	draftService, err := services.NewDraftService(services.DraftServiceDeps{
		Cache:     draftCache,
		Submitter: client,
		Window:    cfg.Drafts.DedupWindow,
		Timeout:   cfg.Drafts.SubmitTimeout,
		Metrics:   metrics,
	})
	if err != nil {
		logger.Fatal("failed to initialise draft service", zap.Error(err))
	}

	projectID := strings.TrimSpace(cfg.Trace.ProjectID)
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(),
	}

	invitationHandlers := handlers.NewInvitationHandlers(invitationService, registry)
	draftHandlers := handlers.NewDraftHandlers(draftService)
	pageHandlers := handlers.NewPageHandlers(invitationService, sitemapService)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(healthOpts...)),
		handlers.WithAPIRoutes(invitationHandlers.Routes, draftHandlers.Routes),
		handlers.WithPageRoutes(pageHandlers.Routes),
	)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("ginvite api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	if cleanupTicker != nil {
		cleanupTicker.Stop()
	}
	cleanupCancel()
	cleanupWG.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildInfoFromEnv(started time.Time) handlers.BuildInfo {
	version := strings.TrimSpace(os.Getenv("GINVITE_BUILD_VERSION"))
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(os.Getenv("GINVITE_BUILD_COMMIT_SHA"))
	if commit == "" {
		commit = "unknown"
	}
	return handlers.BuildInfo{
		Version:   version,
		CommitSHA: commit,
		StartedAt: started,
	}
}
