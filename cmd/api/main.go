package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/expense-extractor/internal/api"
	"github.com/dvloznov/expense-extractor/internal/app"
	"github.com/dvloznov/expense-extractor/internal/jobs/inmemory"
	"github.com/dvloznov/expense-extractor/internal/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to expense-extractor.yaml")
		port       = flag.String("port", "", "HTTP server port (overrides config and PORT)")
	)
	flag.Parse()

	boot := logger.New()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, app.Options{Ledger: true, Storage: true, Warehouse: true, Notion: true})
	if err != nil {
		boot.Fatal().Err(err).Msg("Failed to initialise")
	}
	defer a.Close()
	log := a.Log

	handler := a.Handler()
	log.Info().Strs("sinks", handler.SinkNames()).Bool("ai", a.Registry.AIEnabled()).Msg("Backends ready")

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Server.QueueSize, jobStore,
		inmemory.WithWorkers(cfg.Server.Workers),
		inmemory.WithMaxRetries(cfg.Server.MaxRetries),
		inmemory.WithLogger(log),
	)

	workerCtx, cancelWorker := context.WithCancel(logger.WithContext(ctx, log))
	defer cancelWorker()
	if err := jobQueue.Start(workerCtx, handler.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	deps := api.Deps{
		Registry:    a.Registry,
		Publisher:   jobQueue,
		Store:       jobStore,
		ValidateJob: handler.Validate,
		Log:         log,
	}
	if a.Ledger != nil {
		deps.Billers = a.Ledger
		deps.Reload = a.Reload
	}
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(deps)

	if cfg.Server.ReloadInterval > 0 {
		go reloadLoop(workerCtx, a, cfg.Server.ReloadInterval)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // synchronous parses may wait on the AI pass
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// in-flight jobs finish before the workers' context goes away
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}

// reloadLoop picks up biller overrides written by the CLI or straight into
// the warehouse while the server runs.
func reloadLoop(ctx context.Context, a *app.App, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.Reload(ctx); err != nil {
				a.Log.Warn().Err(err).Msg("Mapping table reload failed")
			}
		}
	}
}
