package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chatvault/internal/api"
	"chatvault/internal/search"
)

var (
	serveDB   string
	servePort string
)

func init() {
	serveCmd.Flags().StringVar(&serveDB, "db", "", "database path (default $CHATVAULT_DB)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default $PORT)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP search service",
	Long: `Serves the search API over HTTP: available bots, paginated ranked search,
and chat detail views. The store is opened read-mostly; ingestion runs can
write to it concurrently.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := openExistingStore(serveDB)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(cmd.Context()); err != nil {
		return err
	}

	engine := search.NewEngine(store, logger)
	router := api.NewRouter(logger, store, engine)

	port := servePort
	if port == "" {
		port = cfg.Port
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", port).
			Str("env", cfg.Env).
			Msg("starting chatvault search service")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
	return nil
}
