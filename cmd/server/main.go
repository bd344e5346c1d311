package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"bubbleview/internal/adapters/cache"
	"bubbleview/internal/adapters/metadata"
	"bubbleview/internal/adapters/remote"
	"bubbleview/internal/adapters/store"
	"bubbleview/internal/adapters/web"
	"bubbleview/internal/config"
	"bubbleview/internal/domain"
	"bubbleview/internal/preview"
	"bubbleview/internal/usecases"
	"bubbleview/pkg/log"
	"bubbleview/pkg/log/transporters"
)

func main() {
	logger := log.New(log.Info, transporters.NewStdout())
	log.SetDefault(logger)
	defer logger.Close()

	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	if err := run(cfg); err != nil {
		log.GlobalError("server stopped", "error", err)
		logger.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// Local bubbles
	bubbleStore, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer bubbleStore.Close()

	// Local store first, then the upstream artifact API and its legacy endpoint
	sources := usecases.ChainSource{bubbleStore}
	if cfg.UpstreamBaseURL != "" {
		sources = append(sources,
			remote.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamUserID, remote.WithEndpoint(remote.Artifacts)),
			remote.NewClient(cfg.UpstreamBaseURL, "", remote.WithEndpoint(remote.Bubbles)),
		)
	}

	bubbleCache := cache.NewMemoryCache[*domain.Bubble](cfg.CacheTTL)
	defer bubbleCache.Close()

	// Link host labels, optionally from a hot-reloaded YAML file
	var hosts preview.HostLabeler
	if cfg.HostsFile != "" {
		table, err := preview.LoadHosts(cfg.HostsFile, 5*time.Second)
		if err != nil {
			return err
		}
		defer table.Close()
		hosts = table
	}

	// Link metadata: plain HTTP, falling back to a headless browser when configured
	var links metadata.Fetcher = metadata.NewHTTPFetcher(cfg.MetadataMaxBody, 10*time.Second)
	if cfg.MetadataBrowser != "" {
		var opts []metadata.PoolOption
		if strings.HasPrefix(cfg.MetadataBrowser, "ws://") || strings.HasPrefix(cfg.MetadataBrowser, "wss://") {
			opts = append(opts, metadata.WithRemoteURL(cfg.MetadataBrowser))
		}
		pool, err := metadata.NewBrowserPool(opts...)
		if err != nil {
			return err
		}
		defer pool.Close()
		links = metadata.Fallback{
			Primary:   links,
			Secondary: metadata.NewBrowserFetcher(pool, 20*time.Second),
		}
	}
	linkCache := cache.NewMemoryCache[*domain.LinkMetadata](cfg.CacheTTL)
	defer linkCache.Close()

	// Use cases
	getBubble := usecases.NewGetBubbleUseCase(bubbleCache, sources)
	viewBubble := usecases.NewViewBubbleUseCase(getBubble, preview.NewDispatcher(hosts),
		usecases.WithLinkMetadata(metadata.NewCached(links, linkCache)),
		usecases.WithImageProber(metadata.NewProber(5*time.Second)),
	)
	createBubble := usecases.NewCreateBubbleUseCase(bubbleStore, cfg.ShareBaseURL)

	// Web layer
	metrics := web.NewMetrics()
	sessions := web.NewSessions(cfg.SessionTTL, cfg.SelectionDelay, metrics)
	defer sessions.Close()
	rateLimiter := web.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rateLimiter.Close()

	handlers := web.NewHandlers(getBubble, viewBubble, createBubble, sessions, metrics)

	app := fiber.New(fiber.Config{
		AppName:      "Bubbleview",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(web.RequestIDConfig()))
	app.Use(web.RequestIDToContextMiddleware())
	app.Use(web.RequestLoggerMiddleware(metrics))

	web.SetupRoutes(app, handlers, rateLimiter, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.GlobalInfo("starting bubbleview", "port", cfg.Port)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.GlobalInfo("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}
