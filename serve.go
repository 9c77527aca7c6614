package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/config"
	"github.com/smartcourt/smartcourt-engine/pkg/database"
	"github.com/smartcourt/smartcourt-engine/pkg/handlers"
	"github.com/smartcourt/smartcourt-engine/pkg/llm"
	"github.com/smartcourt/smartcourt-engine/pkg/mcp"
	"github.com/smartcourt/smartcourt-engine/pkg/mcp/tools"
	"github.com/smartcourt/smartcourt-engine/pkg/middleware"
	"github.com/smartcourt/smartcourt-engine/pkg/repositories"
	"github.com/smartcourt/smartcourt-engine/pkg/retrieval"
	"github.com/smartcourt/smartcourt-engine/pkg/secrets"
	"github.com/smartcourt/smartcourt-engine/pkg/services"
	"github.com/smartcourt/smartcourt-engine/pkg/session"
)

const shutdownTimeout = 30 * time.Second

// ServeFlags configures the serve command.
type ServeFlags struct {
	SweepInterval time.Duration
}

// NewServeCommand starts the HTTP API.
func NewServeCommand() *cobra.Command {
	f := &ServeFlags{SweepInterval: time.Minute}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the comparison API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger, f)
		},
	}
	cmd.Flags().DurationVar(&f.SweepInterval, "session-sweep-interval", f.SweepInterval,
		"How often idle sessions are expired")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger, f *ServeFlags) error {
	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("database", cfg.Database.Path),
		zap.Strings("models", cfg.ModelKeys()),
		zap.Bool("vault", cfg.Vault.Enabled),
		zap.Bool("mcp", cfg.MCP.Enabled))

	// Secrets: environment first, then the secret store. Missing required
	// credentials stop startup here rather than at the first request.
	provider, err := secrets.NewProvider(&cfg.Vault, logger.Named("secrets"))
	if err != nil {
		return err
	}
	if err := secrets.Resolve(ctx, cfg, provider, logger.Named("secrets")); err != nil {
		return err
	}

	db, err := database.Open(&cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}()

	convRepo := repositories.NewConversationRepository(db)
	feedbackRepo := repositories.NewFeedbackRepository(db)
	analyticsRepo := repositories.NewAnalyticsRepository(db)

	retriever, err := retrieval.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("create retrieval client: %w", err)
	}

	clients, err := llm.NewClientFactory(cfg, logger).CreateAll()
	if err != nil {
		return err
	}
	invoker := llm.NewInvoker(cfg, clients, logger)

	compareService := services.NewCompareService(cfg, invoker, logger)
	suggestionService := services.NewSuggestionService(cfg, invoker, logger)
	chatService := services.NewChatService(cfg, retriever, compareService, suggestionService, convRepo, logger)
	feedbackService := services.NewFeedbackService(convRepo, feedbackRepo, logger)
	historyService := services.NewHistoryService(convRepo, logger)
	analyticsService := services.NewAnalyticsService(analyticsRepo, logger)
	exportService := services.NewExportService(&cfg.Export, convRepo, analyticsService, logger)

	sessions := session.NewManager(&cfg.Session, logger)
	go sessions.Run(ctx, f.SweepInterval)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, sessions, retriever.Enabled(), logger).RegisterRoutes(mux)
	handlers.NewSessionHandler(sessions, logger).RegisterRoutes(mux)
	handlers.NewCatalogHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAskHandler(chatService, sessions, logger).RegisterRoutes(mux)
	handlers.NewFeedbackHandler(feedbackService, sessions, logger).RegisterRoutes(mux)
	handlers.NewHistoryHandler(historyService, sessions, logger).RegisterRoutes(mux)
	handlers.NewExportHandler(exportService, sessions, logger).RegisterRoutes(mux)
	handlers.NewAdminHandler(analyticsService, exportService, sessions, logger).RegisterRoutes(mux)
	handlers.RegisterMetricsRoute(mux)

	if cfg.MCP.Enabled {
		mcpServer := mcp.NewServer("smartcourt-engine", cfg.Version, logger)
		tools.RegisterAll(mcpServer.MCP(), &tools.ToolDeps{
			Config:           cfg,
			Chat:             chatService,
			History:          historyService,
			Version:          cfg.Version,
			RetrievalEnabled: retriever.Enabled(),
			Logger:           logger.Named("mcp-tools"),
		})
		handlers.NewMCPHandler(mcpServer, logger).RegisterRoutes(mux)
	}

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
		// A turn runs every model call, then suggestions, on one response.
		WriteTimeout: cfg.Invocation.Timeout() + cfg.Suggestions.Timeout() + time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting smartcourt-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server shutdown complete")
	return nil
}
