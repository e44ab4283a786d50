package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/itaxotools/abcd-validator/internal/config"
	"github.com/itaxotools/abcd-validator/internal/core"
	"github.com/itaxotools/abcd-validator/internal/history"
	"github.com/itaxotools/abcd-validator/internal/logging"
	"github.com/itaxotools/abcd-validator/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the validation web shell",
	Long: `Serve starts an HTTP server that accepts the three table files as a
multipart upload and returns the validation report as JSON or HTML.
When DATABASE_URL is set, finished runs are stored for later retrieval.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load .env if present; real environment variables win
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	reg, err := buildRegistry()
	if err != nil {
		return err
	}
	runner := core.NewRunner(reg)

	ctx := cmd.Context()

	var store *history.Store
	if cfg.HistoryEnabled() {
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			return err
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxConns)
		poolConfig.MinConns = int32(cfg.Database.MinConns)
		poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return err
		}
		store = history.NewStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		slog.Info("run history enabled")
	} else {
		slog.Info("run history disabled, set DATABASE_URL to enable")
	}

	server := web.NewServer(runner, store, cfg)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		return err
	}
	slog.Info("server stopped")
	return nil
}
