package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/careerdesk/internal/advice"
	"github.com/ashureev/careerdesk/internal/api"
	"github.com/ashureev/careerdesk/internal/config"
	"github.com/ashureev/careerdesk/internal/events"
	"github.com/ashureev/careerdesk/internal/github"
	"github.com/ashureev/careerdesk/internal/linkedin"
	"github.com/ashureev/careerdesk/internal/logging"
	"github.com/ashureev/careerdesk/internal/middleware"
	"github.com/ashureev/careerdesk/internal/notion"
	"github.com/ashureev/careerdesk/internal/oauth"
	"github.com/ashureev/careerdesk/internal/profile"
	"github.com/ashureev/careerdesk/internal/store"
	"github.com/ashureev/careerdesk/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func serve(ctx context.Context, v *viper.Viper, configFile string) error {
	envErr := godotenv.Load()

	cfg, err := config.Load(v, configFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Info("No .env file found, using environment variables")
	}
	logger.Info("Starting server",
		zap.String("version", version),
		zap.String("port", cfg.Port),
		zap.Bool("dev", cfg.IsDevelopment()),
	)
	if cfg.AppURL == "" {
		logger.Warn("APP_URL is not set, OAuth connectors will refuse to start a flow")
	}

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Error("Failed to close repository", zap.Error(closeErr))
		}
	}()

	if err := repo.Ping(ctx); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	logger.Info("Database connected", zap.String("path", cfg.DBPath))

	profiles := profile.NewService(repo, cfg.Notion.InternalSecret, logger)
	hub := events.NewHub(logger, cfg.CORSOrigins)
	outbound := &http.Client{Timeout: cfg.HTTPTimeout}

	deps := oauth.Deps{Tokens: profiles, Events: hub, HTTPClient: outbound, Logger: logger}
	registry := oauth.NewRegistry(profiles,
		oauth.NewConnector(oauth.NotionProvider(cfg.Notion), cfg.AppURL, deps),
		oauth.NewConnector(oauth.GitHubProvider(cfg.GitHub), cfg.AppURL, deps),
		oauth.NewConnector(oauth.LinkedInProvider(cfg.LinkedIn), cfg.AppURL, deps),
	)

	model, err := buildModel(ctx, cfg.AI, logger)
	if err != nil {
		return err
	}

	generator := advice.NewGenerator(model, logger)
	h := api.NewHandler(api.Deps{
		Repo:       repo,
		Profiles:   profiles,
		Connectors: registry,
		Notion:     notion.NewClient(cfg.Notion.APIURL, outbound, logger),
		GitHub:     github.NewClient(cfg.GitHub.APIURL, outbound, logger),
		LinkedIn:   linkedin.NewUpdater(profiles, logger),
		Advice:     generator,
		Logger:     logger,
	})
	healthHandler := api.NewHealthHandler(repo, generator.Available(), logger)

	// Setup router.
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	healthHandler.RegisterHealth(r)
	h.RegisterRoutes(r)
	r.Get("/ws/events", hub.ServeHTTP)

	if cfg.MCPEnabled {
		var mcpHandler http.Handler = server.NewStreamableHTTPServer(h.NewMCPServer(version))
		if cfg.MCPToken != "" {
			mcpHandler = middleware.BearerAuth(cfg.MCPToken)(mcpHandler)
		} else {
			logger.Warn("MCP endpoint is enabled without a token")
		}
		r.Handle("/mcp", mcpHandler)
		logger.Info("MCP endpoint enabled", zap.Bool("auth", cfg.MCPToken != ""))
	}

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler(logger))

	// No WriteTimeout: /ws/events and /mcp hold long-lived connections.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}
	stop()

	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server stopped successfully")
	return nil
}

// buildModel returns the advice model for the configured keys, or nil when
// no key is set.
func buildModel(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (advice.Model, error) {
	var primary advice.Model
	if cfg.GeminiAPIKey != "" {
		client, err := advice.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		primary = advice.NewGeminiModel(client, cfg.GeminiModel, logger)
	}

	var secondary advice.Model
	if oa := advice.NewOpenAIModel(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger); oa != nil {
		secondary = oa
	}

	switch {
	case primary == nil && secondary == nil:
		logger.Warn("AI features disabled (GEMINI_API_KEY and OPENAI_API_KEY not set)")
		return nil, nil
	case primary == nil:
		logger.Info("Using OpenAI as the only advice model", zap.String("model", secondary.Name()))
		return secondary, nil
	case secondary == nil || !cfg.EnableFallback:
		logger.Info("Advice model configured", zap.String("model", primary.Name()))
		return primary, nil
	default:
		logger.Info("Advice model configured with fallback",
			zap.String("primary", primary.Name()),
			zap.String("fallback", secondary.Name()),
		)
		return advice.NewFallbackModel(primary, secondary, logger), nil
	}
}
