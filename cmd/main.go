package main

//
//  @title           spimexpulse API
//  @version         1.0
//  @description     SPIMEX oil products bulletin ingestion & query service.
//  @termsOfService  https://github.com/guttosm/spimexpulse
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/spimexpulse
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        trading
//  @tag.description Endpoints for querying ingested bulletin rows
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/guttosm/spimexpulse/config"
	_ "github.com/guttosm/spimexpulse/docs" // swagger docs
	"github.com/guttosm/spimexpulse/internal/app"
	"github.com/guttosm/spimexpulse/internal/ingestion"
	"github.com/guttosm/spimexpulse/internal/logger"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (DB pool, Redis client).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// runIngest performs one ingestion run over the newest `links` bulletins.
//
// The timing sidecar is written whether or not the run succeeds.
func runIngest(ctx context.Context, cfg config.Config, links int) (err error) {
	start := time.Now()
	defer func() {
		if werr := ingestion.WriteElapsed(cfg.Ingestion.TimingFile, time.Since(start)); werr != nil {
			logger.L().Error().Err(werr).Msg("timing file not written")
		}
	}()

	db, repo, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	pipeline, err := app.NewPipeline(cfg, repo)
	if err != nil {
		return err
	}

	stats, err := pipeline.Run(ctx, links)
	if err != nil {
		return err
	}
	logger.L().Info().
		Str("run_id", stats.RunID).
		Int("links", stats.Links).
		Int("inserted", stats.Consumed.Inserted).
		Msg("ingestion completed successfully")
	return nil
}

// newRootCmd builds the CLI.
//
// Commands:
//   - ingest: discover, download, parse and persist bulletins.
//     --months N limits the run to the newest N bulletin links (default: months since INGEST_START_DATE).
//   - serve:  start the REST API over the persisted rows.
//     --port overrides SERVER_PORT.
func newRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "spimexpulse",
		Short:         "SPIMEX oil products bulletin ingestion & query service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Download and persist trading bulletins",
		Long: `Walks the bulletin listing, downloads up to --months bulletins with at most
INGEST_CONCURRENCY downloads in flight and stores every row of trade dates
that are not in the database yet, in a single transaction.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			months, _ := cmd.Flags().GetInt("months")
			if !cmd.Flags().Changed("months") {
				months = ingestion.MonthsSince(cfg.Ingestion.StartDate, time.Now())
			}
			logger.L().Info().Int("months", months).Msg("running ingestion")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runIngest(ctx, cfg, months)
		},
	}
	ingestCmd.Flags().IntP("months", "m", 0, "Number of newest bulletins to ingest")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			port, _ := cmd.Flags().GetString("port")
			logger.L().Info().Msg("starting API server")

			router, cleanup, err := app.InitializeApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			server := startServer(router, port)
			gracefulShutdown(context.Background(), server, cleanup)
			return nil
		},
	}
	serveCmd.Flags().StringP("port", "p", cfg.Server.Port, "Port for the API server")

	root.AddCommand(ingestCmd, serveCmd)
	return root
}

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.Log)

	if err := newRootCmd(cfg).ExecuteContext(context.Background()); err != nil {
		logger.L().Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
