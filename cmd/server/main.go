package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/clintrovert/firstissue/internal/api/rest"
	"github.com/clintrovert/firstissue/internal/bootstrap"
	"github.com/clintrovert/firstissue/internal/config"
	"github.com/clintrovert/firstissue/internal/temporal"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	pipeline, err := bootstrap.NewPipeline(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create curation pipeline", zap.Error(err))
	}

	// Durable curations are optional
	var runner rest.CurationRunner
	if cfg.DurableEnabled() {
		temporalClient, err := temporal.NewClient(cfg.TemporalAddress, cfg.TemporalNamespace, cfg.TaskQueue, logger)
		if err != nil {
			logger.Fatal("failed to create temporal client", zap.Error(err))
		}
		defer temporalClient.Close()
		runner = temporalClient
	} else {
		logger.Info("TEMPORAL_ADDRESS not set, durable curations disabled")
	}

	router := rest.NewRouter(rest.NewHandler(pipeline, runner, logger))

	restAddr := fmt.Sprintf(":%s", cfg.RESTPort)
	restServer := &http.Server{
		Addr:    restAddr,
		Handler: router,
	}

	go func() {
		logger.Info("starting REST API server", zap.String("address", restAddr))
		if err := restServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start REST server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down REST server", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
