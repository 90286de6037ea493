package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MemoryConfig sizes an in-process queue.
type MemoryConfig struct {
	Workers    int           // parallel workers; jobs sharing a key always land on the same one
	JobTimeout time.Duration // per-job deadline, zero means none
}

// MemoryQueue runs jobs on goroutines of the current process. Jobs are
// attempted once; a failure or panic is reported and the job is dropped.
type MemoryQueue struct {
	registry *Registry
	report   Reporter
	timeout  time.Duration
	shards   []*shard

	mu      sync.Mutex
	active  map[string]struct{} // unique ids pending or running
	closed  bool
	started bool

	stop chan struct{}
	wg   sync.WaitGroup
}

type shard struct {
	mu      sync.Mutex
	pending []envelope
	wake    chan struct{}
}

type envelope struct {
	key      string
	payload  []byte
	uniqueID string
}

func NewMemoryQueue(registry *Registry, cfg MemoryConfig, report Reporter) *MemoryQueue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	q := &MemoryQueue{
		registry: registry,
		report:   report,
		timeout:  cfg.JobTimeout,
		shards:   make([]*shard, cfg.Workers),
		active:   make(map[string]struct{}),
		stop:     make(chan struct{}),
	}
	for i := range q.shards {
		q.shards[i] = &shard{wake: make(chan struct{}, 1)}
	}
	return q
}

// Start launches the workers. Jobs added before Start wait in their shard.
func (q *MemoryQueue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	for i, s := range q.shards {
		q.wg.Add(1)
		go q.work(ctx, s, i)
	}
}

// Add encodes payload and schedules it. It never blocks on job execution.
func (q *MemoryQueue) Add(_ context.Context, key string, payload any, opts ...Option) {
	o := collectOptions(opts)

	data, err := json.Marshal(payload)
	if err != nil {
		q.report.rejected(key, fmt.Errorf("encode payload: %w", err))
		return
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.report.rejected(key, ErrClosed)
		return
	}
	if o.uniqueID != "" {
		if _, dup := q.active[o.uniqueID]; dup {
			q.mu.Unlock()
			q.report.duplicate(key, o.uniqueID)
			return
		}
		q.active[o.uniqueID] = struct{}{}
	}
	q.mu.Unlock()

	s := q.shardFor(key)
	s.mu.Lock()
	s.pending = append(s.pending, envelope{key: key, payload: data, uniqueID: o.uniqueID})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	q.report.enqueued(key)
}

// Shutdown stops accepting jobs and waits for workers to drain what is pending.
func (q *MemoryQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	started := q.started
	q.mu.Unlock()

	close(q.stop)
	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("queue drain: %w", ctx.Err())
	}
}

func (q *MemoryQueue) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return q.shards[h.Sum32()%uint32(len(q.shards))]
}

func (q *MemoryQueue) work(ctx context.Context, s *shard, idx int) {
	defer q.wg.Done()
	logger := q.report.logger().With(zap.Int("worker", idx))
	logger.Debug("Queue worker started")

	for {
		if env, ok := s.pop(); ok {
			q.run(ctx, env)
			continue
		}
		select {
		case <-s.wake:
		case <-q.stop:
			// Drain whatever is still queued on this shard, then exit.
			for env, ok := s.pop(); ok; env, ok = s.pop() {
				q.run(ctx, env)
			}
			logger.Debug("Queue worker stopped")
			return
		case <-ctx.Done():
			logger.Debug("Queue worker canceled", zap.Error(ctx.Err()))
			return
		}
	}
}

func (s *shard) pop() (envelope, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return envelope{}, false
	}
	env := s.pending[0]
	s.pending[0] = envelope{}
	s.pending = s.pending[1:]
	return env, true
}

func (q *MemoryQueue) run(ctx context.Context, env envelope) {
	defer q.release(env.uniqueID)

	start := time.Now()
	err := q.dispatch(ctx, env)
	if err != nil {
		q.report.failed(env.key, err, time.Since(start))
		return
	}
	q.report.succeeded(env.key, time.Since(start))
}

func (q *MemoryQueue) dispatch(ctx context.Context, env envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	h, ok := q.registry.Lookup(env.key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, env.key)
	}
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}
	return h.Handle(ctx, env.payload)
}

func (q *MemoryQueue) release(uniqueID string) {
	if uniqueID == "" {
		return
	}
	q.mu.Lock()
	delete(q.active, uniqueID)
	q.mu.Unlock()
}
