package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// AsynqConfig describes the Redis-backed queue shared by producer and worker.
type AsynqConfig struct {
	Redis       asynq.RedisClientOpt
	Queue       string // asynq queue name, "default" when empty
	MaxRetry    int    // extra attempts after the first; zero means attempted once
	Concurrency int
}

func (c AsynqConfig) queueName() string {
	if c.Queue == "" {
		return "default"
	}
	return c.Queue
}

// AsynqQueue is the producer side: it persists jobs to Redis for an AsynqWorker.
type AsynqQueue struct {
	client *asynq.Client
	cfg    AsynqConfig
	report Reporter
}

func NewAsynqQueue(cfg AsynqConfig, report Reporter) *AsynqQueue {
	return &AsynqQueue{
		client: asynq.NewClient(cfg.Redis),
		cfg:    cfg,
		report: report,
	}
}

func (q *AsynqQueue) Add(ctx context.Context, key string, payload any, opts ...Option) {
	o := collectOptions(opts)

	data, err := json.Marshal(payload)
	if err != nil {
		q.report.rejected(key, fmt.Errorf("encode payload: %w", err))
		return
	}

	taskOpts := []asynq.Option{
		asynq.Queue(q.cfg.queueName()),
		asynq.MaxRetry(q.cfg.MaxRetry),
	}
	if o.uniqueID != "" {
		taskOpts = append(taskOpts, asynq.TaskID(o.uniqueID))
	}

	info, err := q.client.EnqueueContext(ctx, asynq.NewTask(key, data), taskOpts...)
	switch {
	case errors.Is(err, asynq.ErrTaskIDConflict), errors.Is(err, asynq.ErrDuplicateTask):
		q.report.duplicate(key, o.uniqueID)
	case err != nil:
		q.report.rejected(key, fmt.Errorf("enqueue: %w", err))
	default:
		q.report.enqueued(key)
		q.report.logger().Debug("Job enqueued",
			zap.String("key", key),
			zap.String("task_id", info.ID),
			zap.String("queue", info.Queue))
	}
}

func (q *AsynqQueue) Close() error {
	return q.client.Close()
}

// AsynqWorker consumes jobs written by AsynqQueue and dispatches them through a Registry.
type AsynqWorker struct {
	server   *asynq.Server
	registry *Registry
	report   Reporter
}

func NewAsynqWorker(cfg AsynqConfig, registry *Registry, report Reporter) *AsynqWorker {
	w := &AsynqWorker{registry: registry, report: report}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	w.server = asynq.NewServer(cfg.Redis, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{cfg.queueName(): 1},
		Logger:      report.logger().Sugar(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			w.report.failed(task.Type(), err, 0)
		}),
	})
	return w
}

// ProcessTask implements asynq.Handler. Unknown keys are not retried.
func (w *AsynqWorker) ProcessTask(ctx context.Context, task *asynq.Task) error {
	h, ok := w.registry.Lookup(task.Type())
	if !ok {
		return fmt.Errorf("%w: %s: %w", ErrNoHandler, task.Type(), asynq.SkipRetry)
	}
	start := time.Now()
	if err := h.Handle(ctx, task.Payload()); err != nil {
		return err
	}
	w.report.succeeded(task.Type(), time.Since(start))
	return nil
}

// Start launches the asynq server, retrying with a linear backoff when Redis
// is not reachable yet.
func (w *AsynqWorker) Start(ctx context.Context) error {
	const maxAttempts = 5
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = w.server.Start(w); err == nil {
			w.report.logger().Info("Asynq worker started", zap.Strings("keys", w.registry.Keys()))
			return nil
		}
		w.report.logger().Warn("Asynq worker failed to start",
			zap.Int("attempt", attempt), zap.Int("max_attempts", maxAttempts), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*2) * time.Second):
		}
	}
	return fmt.Errorf("start asynq worker: %w", err)
}

// Shutdown waits for in-flight jobs and stops the server.
func (w *AsynqWorker) Shutdown() {
	w.server.Shutdown()
}
