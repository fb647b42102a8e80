package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/JonnyWalker81/moodtrack/backend/internal/config"
	"github.com/JonnyWalker81/moodtrack/backend/internal/handlers"
	"github.com/JonnyWalker81/moodtrack/backend/internal/logger"
	"github.com/JonnyWalker81/moodtrack/backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and listen for requests.`,
	RunE:  runServe,
}

var (
	port string
)

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if port != "" {
		cfg.Server.Port = port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLog.Info("starting moodtrack API server",
		logger.String("env", cfg.Server.Env),
		logger.String("store", cfg.Store.Driver),
	)

	a, err := newApp(ctx, cfg, appLog)
	if err != nil {
		return err
	}
	defer a.close(appLog)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := newRouter(cfg, a, appLog)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("server listening", logger.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	appLog.Info("shutting down server")

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}

// newRouter wires middleware and routes
func newRouter(cfg *config.Config, a *app, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(log))
	router.Use(middleware.SecurityHeaders(cfg.Server.Env == "production"))
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.NoRoute(handlers.NotFound)

	router.GET("/health", handlers.Health(cfg.Server.Env, cfg.Store.Driver))
	router.GET("/metrics", gin.WrapH(a.metrics.Handler()))

	insightsHandler := handlers.NewInsightsHandler(a.insights, a.access)

	v1 := router.Group("/api/v1")
	{
		insights := v1.Group("/insights")
		insights.Use(middleware.Auth(a.supabase))
		insights.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerMinute))
		{
			insights.GET("/weekly-summary", insightsHandler.GetWeeklySummary)
			insights.GET("/triggers", insightsHandler.GetMoodTriggers)
			insights.GET("/recommendations", insightsHandler.GetRecommendations)
		}
	}

	return router
}
