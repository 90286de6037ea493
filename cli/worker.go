package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gobarber/services/queue"
)

func newWorkerCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run background jobs from Redis",
		Long:  "Consume jobs enqueued by the API when QUEUE_BACKEND=asynq.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(cmd.Context(), env)
		},
	}
}

func runWorker(parent context.Context, env *environment) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := context.WithCancel(parent)
	defer stop()

	cfg, logger := env.cfg, env.logger
	if cfg.QueueBackend != "asynq" {
		logger.Warn("worker: QUEUE_BACKEND is not asynq, the API runs jobs itself", zap.String("backend", cfg.QueueBackend))
	}

	a := newApp(env)
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("worker: cleanup failed", zap.Error(err))
		}
	}()
	if err := a.openRedis(ctx); err != nil {
		return err
	}

	worker := queue.NewAsynqWorker(a.asynqConfig(), a.jobRegistry(), a.reporter(queue.NewMetrics(a.metrics)))
	if err := worker.Start(ctx); err != nil {
		return fmt.Errorf("worker: %w", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("worker: shutting down, waiting for running jobs")
	worker.Shutdown()
	logger.Info("worker: stopped")
	return nil
}
