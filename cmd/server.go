package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/physio-intake/internal/dashboard"
	"github.com/ziadkadry99/physio-intake/internal/ingest"
	"github.com/ziadkadry99/physio-intake/internal/intake"
	"github.com/ziadkadry99/physio-intake/internal/observability"
	"github.com/ziadkadry99/physio-intake/internal/server"
)

var (
	serverPort    int
	serverMetrics bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the intake HTTP server",
	Long:  `Starts the REST API for intake conversations and knowledge ingestion, the chat dashboard, and the Prometheus metrics endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}

		logger := newLogger(true)
		var metrics *observability.Metrics
		if serverMetrics {
			metrics = observability.NewMetrics("physio")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		knowledge, err := openKnowledge(ctx, cfg, logger)
		if err != nil {
			return err
		}
		conversations, err := openConversations(ctx, cfg)
		if err != nil {
			return err
		}
		defer conversations.Close()

		engine, err := newEngine(cfg, conversations, knowledge, logger, metrics)
		if err != nil {
			return err
		}
		ingester := ingest.NewIngester(knowledge, cfg.KnowledgeDir(),
			ingest.WithLogger(logger),
			ingest.WithMetrics(metrics),
		)

		srv := server.New(server.Config{
			Port:     cfg.Server.Port,
			AllowAll: cfg.Server.AllowAllOrigins,
		}, logger, metrics)

		api := srv.API()
		intake.RegisterRoutes(api, engine)
		ingest.RegisterRoutes(api, ingester)
		dashboard.New(engine, knowledge, logger).RegisterRoutes(srv.Router())

		go func() {
			<-ctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		logger.Info("physio-intake server starting",
			"version", Version,
			"port", cfg.Server.Port,
			"provider", cfg.Provider,
			"model", cfg.Model,
			"database", cfg.Database.Driver,
			"documents", knowledge.Count(),
		)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8002, "port to listen on (overrides server.port)")
	serverCmd.Flags().BoolVar(&serverMetrics, "metrics", true, "expose Prometheus metrics at /metrics")
	rootCmd.AddCommand(serverCmd)
}
