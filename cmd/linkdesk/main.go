package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"linkdesk/internal/auth"
	"linkdesk/internal/bot"
	"linkdesk/internal/cache"
	"linkdesk/internal/config"
	"linkdesk/internal/domain"
	"linkdesk/internal/metrics"
	"linkdesk/internal/repository"
	"linkdesk/internal/scraper"
	"linkdesk/internal/service"
	"linkdesk/internal/storage"
	"linkdesk/internal/web"
)

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	backend, err := storage.Backend(cfg.StoreURL)
	if err != nil {
		log.Fatalf("Invalid store configuration: %v", err)
	}
	log.WithFields(logrus.Fields{
		"backend":   backend,
		"http_addr": cfg.HTTPAddr,
		"cache_ttl": cfg.CacheTTL.String(),
	}).Info("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Initialize Components ---
	store, err := storage.Open(ctx, cfg.StoreURL, cfg.StoreAPIKey, log)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() {
		log.Info("Closing store...")
		if err := store.Close(); err != nil {
			log.WithError(err).Error("Error closing store")
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	domainRepo := repository.NewDomains(store, cache.New[[]domain.Domain](cfg.CacheTTL), m, log)
	publisherRepo := repository.NewPublishers(store, cache.New[[]domain.Publisher](cfg.CacheTTL), m, log)
	domains := service.NewDomainService(domainRepo, log)
	publishers := service.NewPublisherService(publisherRepo, domains, log)

	var authenticator auth.Authenticator
	if backend == storage.BackendREST {
		authenticator = auth.NewRemote(cfg.StoreURL, cfg.StoreAPIKey, nil, log)
	} else {
		if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
			log.Warn("ADMIN_EMAIL/ADMIN_PASSWORD not set, logins will be rejected")
		}
		authenticator = auth.NewLocal(cfg.AdminEmail, cfg.AdminPassword, cfg.SessionTTL, log)
	}

	scraperService, err := scraper.New(cfg.ScraperBackend, log)
	if err != nil {
		log.Fatalf("Failed to initialize scraper: %v", err)
	}

	server := web.NewServer(cfg.HTTPAddr, web.Deps{
		Domains:       domains,
		Publishers:    publishers,
		Auth:          authenticator,
		Sessions:      auth.NewJWTManager(cfg.SessionSecret, cfg.SessionTTL),
		Previewer:     scraper.NewPreviewer(scraperService, log),
		Gatherer:      reg,
		SecureCookies: cfg.CookieSecure,
	}, log)

	// Bot Handler
	if cfg.TelegramBotToken != "" {
		allowed, _ := cfg.AllowedUsers()
		botHandler, err := bot.NewHandler(cfg.TelegramBotToken, allowed, domains, publishers, log)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram bot handler: %v", err)
		}
		go botHandler.Start(ctx)
	}

	// --- Application Startup ---
	log.Info("linkdesk is running. Press Ctrl+C to exit.")
	if err := server.Run(ctx); err != nil {
		log.WithError(err).Error("HTTP server stopped with error")
	}

	// --- Graceful Shutdown ---
	stop()
	log.Info("linkdesk shut down gracefully.")
}
