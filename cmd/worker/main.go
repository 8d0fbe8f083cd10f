package main

import (
	"log"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/clintrovert/firstissue/internal/activities"
	"github.com/clintrovert/firstissue/internal/bootstrap"
	"github.com/clintrovert/firstissue/internal/config"
	"github.com/clintrovert/firstissue/internal/temporal/workflows"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	temporalAddress := cfg.TemporalAddress
	if temporalAddress == "" {
		temporalAddress = client.DefaultHostPort
	}

	// Create Temporal client
	c, err := client.Dial(client.Options{
		HostPort:  temporalAddress,
		Namespace: cfg.TemporalNamespace,
	})
	if err != nil {
		logger.Fatal("failed to create temporal client", zap.Error(err))
	}
	defer c.Close()

	// One pipeline, and so one repository cache, for the worker's lifetime
	pipeline, err := bootstrap.NewPipeline(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create curation pipeline", zap.Error(err))
	}

	w := worker.New(c, cfg.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.CurationWorkflow)
	w.RegisterActivity(activities.NewCurationActivities(pipeline, logger))

	logger.Info("starting worker",
		zap.String("task_queue", cfg.TaskQueue),
		zap.String("namespace", cfg.TemporalNamespace),
	)

	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatal("worker failed", zap.Error(err))
	}

	logger.Info("shutting down worker")
}
